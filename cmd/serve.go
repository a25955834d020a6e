package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrism/discord-chatwork-task-bot/internal/chat"
	"github.com/hrism/discord-chatwork-task-bot/internal/notify"
	"github.com/hrism/discord-chatwork-task-bot/internal/scheduler"
	"github.com/hrism/discord-chatwork-task-bot/internal/telemetry"
	"github.com/hrism/discord-chatwork-task-bot/internal/ui"
)

var serveNoConsole bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot: chat console, daily digest and deadline reminders",
	Long: `Run the bot until interrupted.

On start, pending tasks whose deadline has passed are removed and the Chatwork
credentials are checked. The scheduler then posts the digest every morning at
notify.morningHour and checks each hour for tasks due in about an hour.
Messages typed on stdin are handled like chat messages. Changes to
notify.morningHour in the config file are picked up without a restart.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			logLevel.Set(slog.LevelInfo)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		taskStore, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = taskStore.Close() }()

		if count, err := taskStore.ArchiveExpired(nowFunc()); err != nil {
			slog.Warn("startup archive failed", "error", err)
		} else if count > 0 {
			slog.Info("removed expired tasks on startup", "count", count)
		}

		notifier := startupNotifier(ctx)
		cfg := GetConfig()

		_, chatworkReady := notifier.(*notify.ChatworkClient)
		session := telemetry.NewSession(tracker, nowFunc, telemetry.Properties{
			"chatwork":   chatworkReady,
			"console":    !serveNoConsole,
			"classifier": cfg.LLM.Enabled,
		})
		defer session.End()

		sched := scheduler.New(taskStore, notifier, scheduler.Config{
			MorningHour:  cfg.Notify.MorningHour,
			UpcomingDays: cfg.Notify.UpcomingDays,
			Location:     taskStore.Location(),
		}, scheduler.WithClock(nowFunc), scheduler.WithLogger(slog.Default()), scheduler.WithTelemetry(session))
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()

		watchConfig(sched)

		r := newRouter(ctx, taskStore, notifier, session)

		if serveNoConsole {
			<-ctx.Done()
			return nil
		}

		out := cmd.OutOrStdout()
		opts := []chat.Option{chat.WithLogger(slog.Default())}
		if ui.IsInteractive() {
			fmt.Fprintln(out, ui.NewPanel("taskbot", "メッセージを入力してください。「ヘルプ」で使い方を表示します。").Render())
			opts = append(opts, chat.WithPrompt("> "))
		}
		console := chat.NewConsole(cmd.InOrStdin(), out, cfg.Chat.AuthorID, opts...)
		return console.Run(ctx, r)
	},
}

// startupNotifier checks the Chatwork credentials once. Without them the bot
// still runs and notifications go to the log.
func startupNotifier(ctx context.Context) notify.Notifier {
	client, err := newChatworkClient()
	if err != nil {
		slog.Warn("chatwork not configured, notifications will only be logged")
		return notify.LogNotifier{Logger: slog.Default()}
	}
	name, err := client.Ping(ctx)
	if err != nil {
		slog.Warn("chatwork connection check failed", "error", err)
	} else {
		slog.Info("connected to chatwork", "account", name)
	}
	return client
}

// watchConfig applies morning hour changes from the config file to the
// running scheduler.
func watchConfig(sched *scheduler.Scheduler) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		reloadMorningHour(sched, e.Name)
	})
	viper.WatchConfig()
}

// reloadMorningHour reports whether the scheduler's hour changed.
func reloadMorningHour(sched *scheduler.Scheduler, source string) bool {
	hour := viper.GetInt("notify.morningHour")
	if hour < 0 || hour > 23 {
		slog.Warn("ignoring invalid notify.morningHour", "value", hour, "file", source)
		return false
	}
	if hour == sched.MorningHour() {
		return false
	}
	sched.SetMorningHour(hour)
	slog.Info("config reloaded", "file", source, "morningHour", hour)
	return true
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveNoConsole, "no-console", false, "run only the scheduler; do not read stdin")
}
