package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hrism/discord-chatwork-task-bot/internal/scheduler"
)

var notifyDeadlines bool

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send the daily digest now",
	Long: `Send the morning digest (today's tasks and the next days) immediately.
With --deadlines the one-hour deadline reminders are checked as well.
Without Chatwork credentials the messages are written to the log.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		taskStore, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = taskStore.Close() }()

		cfg := GetConfig()
		sched := scheduler.New(taskStore, newNotifier(), scheduler.Config{
			MorningHour:  cfg.Notify.MorningHour,
			UpcomingDays: cfg.Notify.UpcomingDays,
			Location:     taskStore.Location(),
		}, scheduler.WithClock(nowFunc), scheduler.WithLogger(slog.Default()))

		if err := sched.RunDailyNow(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "📋 タスク通知を送信しました。")

		if notifyDeadlines {
			sent, err := sched.CheckDeadlines(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "⏰ 期限通知を%d件送信しました。\n", sent)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.Flags().BoolVar(&notifyDeadlines, "deadlines", false, "also send reminders for tasks due in about an hour")
}
