package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hrism/discord-chatwork-task-bot/internal/ui"
)

// doneCmd represents the done command
var doneCmd = &cobra.Command{
	Use:     "done <task_id>",
	Aliases: []string{"complete", "d"},
	Short:   "Mark a task as completed",
	Example: `  taskbot done be4bc269
  taskbot done 2`,
	Args: cobra.ExactArgs(1),
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
		if !task.IsPending() {
			fmt.Fprintf(cmd.OutOrStdout(), "タスク「%s」は既に完了しています。\n", task.Title)
			return nil
		}

		updated, err := taskStore.CompleteTask(task.ID)
		if err != nil {
			return fmt.Errorf("failed to complete task %s: %w", task.ShortID(), err)
		}
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), updated)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.StyleSuccess.Render("✅ タスクを完了しました: "+updated.Title))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doneCmd)
}
