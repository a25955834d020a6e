/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hrism/discord-chatwork-task-bot/internal/telemetry"
	"github.com/hrism/discord-chatwork-task-bot/internal/ui"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables debug logging.
	verbose bool
	// plain disables colour output.
	plain bool
	// jsonOutput prints machine readable results.
	jsonOutput bool
	// version is the application version.
	version = "0.1.0"

	// logLevel is shared by the default logger so serve can raise it.
	logLevel = new(slog.LevelVar)
)

// GetVersion returns the bot version.
func GetVersion() string {
	return version
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "taskbot",
	Short: "Chat task tracker with Chatwork reminders",
	Long: `taskbot registers tasks from Japanese chat messages, resolves phrases like
"明日15時" or "来週金曜" into deadlines and posts reminders to a Chatwork room.

Run 'taskbot serve' for the interactive bot, or use the subcommands to manage
the task file directly.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		if err := InitConfig(cmd.Root().PersistentFlags()); err != nil {
			return err
		}
		ui.ConfigureColor(plain || !ui.IsInteractive())
		tracker = newTracker()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		tracker.Track(telemetry.EventCommandExecuted, telemetry.Properties{
			"command": cmd.Name(),
		})
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	closeTracker()
	if err != nil {
		PrintError(userMessage(err), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.taskbot/.taskbot.yaml or $HOME/.taskbot.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "disable colours")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// bindFlags ties the persistent flags to viper. It runs on every InitConfig
// because viper.Reset drops earlier bindings.
func bindFlags(flags *pflag.FlagSet) {
	if flags == nil {
		return
	}
	for _, name := range []string{"config", "verbose", "json"} {
		if f := flags.Lookup(name); f != nil {
			_ = viper.BindPFlag(name, f)
		}
	}
}

func setupLogging() {
	if verbose {
		logLevel.Set(slog.LevelDebug)
	} else {
		logLevel.Set(slog.LevelWarn)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
