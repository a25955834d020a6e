package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hrism/discord-chatwork-task-bot/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <task_id>",
	Short: "Show every field of one task",
	Long:  `Show a task by its 8 character short id, its full id, or its position in the pending list.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskStore, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = taskStore.Close() }()

		task, err := resolveTaskReference(taskStore, args[0])
		if err != nil {
			return fmt.Errorf("could not find task %q: %w", args[0], err)
		}
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), task)
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderTaskDetail(task, taskStore.Location()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
