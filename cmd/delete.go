package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hrism/discord-chatwork-task-bot/internal/ui"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <task_id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
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
		removed, err := taskStore.DeleteTask(task.ID)
		if err != nil {
			return fmt.Errorf("failed to delete task %s: %w", task.ShortID(), err)
		}
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), map[string]any{"id": task.ID, "deleted": removed})
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.StyleSuccess.Render("✅ タスクを削除しました: "+task.Title))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
