/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/hrism/discord-chatwork-task-bot/internal/ui"
	"github.com/hrism/discord-chatwork-task-bot/models"
	"github.com/hrism/discord-chatwork-task-bot/store"
)

var (
	listStatus   string
	upcomingDays int
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long:    `List tasks in the order they were registered. Use --status to show only pending or completed tasks.`,
	Example: `  taskbot list
  taskbot list --status completed
  taskbot ls --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, ok := store.ParseFilter(listStatus)
		if !ok {
			return fmt.Errorf("invalid --status %q (want pending, completed or all)", listStatus)
		}
		return runTaskQuery(cmd.OutOrStdout(), func(s *store.FileTaskStore, _ time.Time) ([]models.Task, error) {
			return s.ListTasks(filter)
		})
	},
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "List pending tasks due today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTaskQuery(cmd.OutOrStdout(), func(s *store.FileTaskStore, now time.Time) ([]models.Task, error) {
			return s.ListDueToday(now)
		})
	},
}

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "List pending tasks due within the next days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days := upcomingDays
		if days <= 0 {
			days = GetConfig().Notify.UpcomingDays
		}
		return runTaskQuery(cmd.OutOrStdout(), func(s *store.FileTaskStore, now time.Time) ([]models.Task, error) {
			return s.ListUpcoming(now, days)
		})
	},
}

func runTaskQuery(out io.Writer, query func(s *store.FileTaskStore, now time.Time) ([]models.Task, error)) error {
	taskStore, err := GetStore()
	if err != nil {
		return err
	}
	defer func() { _ = taskStore.Close() }()

	now := nowFunc()
	tasks, err := query(taskStore, now)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	if isJSON() {
		if tasks == nil {
			tasks = []models.Task{}
		}
		return printJSON(out, tasks)
	}
	fmt.Fprint(out, ui.RenderTasks(tasks, now, taskStore.Location()))
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd, todayCmd, upcomingCmd)
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "all", "filter by status: pending, completed, all")
	upcomingCmd.Flags().IntVarP(&upcomingDays, "days", "d", 0, "days ahead to include (default notify.upcomingDays)")
}
