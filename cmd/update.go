package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hrism/discord-chatwork-task-bot/internal/notify"
	"github.com/hrism/discord-chatwork-task-bot/internal/ui"
)

var rescheduleDeadline string

var rescheduleCmd = &cobra.Command{
	Use:     "reschedule <task_id> [date text]",
	Aliases: []string{"due"},
	Short:   "Change a task's deadline",
	Long: `Change the deadline of a task. The date text is resolved the same way as
when adding (明日, 10/25, 来週月曜 15時, ...). The title is left untouched.`,
	Example: `  taskbot reschedule be4bc269 明日
  taskbot reschedule be4bc269 --deadline 2025-06-20T10:00:00+09:00`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dateText := strings.Join(args[1:], " ")
		if dateText == "" && rescheduleDeadline == "" {
			return errors.New("provide date text or --deadline")
		}

		taskStore, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = taskStore.Close() }()

		loc := taskStore.Location()
		explicit, err := parseDeadlineFlag(rescheduleDeadline, loc)
		if err != nil {
			return err
		}

		task, err := resolveTaskReference(taskStore, args[0])
		if err != nil {
			return fmt.Errorf("could not find task %q: %w", args[0], err)
		}
		updated, err := taskStore.UpdateDeadline(task.ID, dateText, explicit)
		if err != nil {
			return fmt.Errorf("failed to reschedule task %s: %w", task.ShortID(), err)
		}
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), updated)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.StyleSuccess.Render(fmt.Sprintf("✅ タスクの期限を変更しました: %s\n新しい期限: %s",
			updated.Title, notify.FormatLong(updated.Deadline, loc))))
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <task_id> <title>",
	Short: "Replace a task's title",
	Long:  `Replace the title of a task verbatim. The deadline is not re-resolved.`,
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.TrimSpace(strings.Join(args[1:], " "))
		if title == "" {
			return errors.New("title cannot be empty")
		}

		taskStore, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = taskStore.Close() }()

		task, err := resolveTaskReference(taskStore, args[0])
		if err != nil {
			return fmt.Errorf("could not find task %q: %w", args[0], err)
		}
		updated, err := taskStore.UpdateContent(task.ID, title)
		if err != nil {
			return fmt.Errorf("failed to edit task %s: %w", task.ShortID(), err)
		}
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), updated)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.StyleSuccess.Render("✅ タスクの内容を変更しました: "+updated.Title))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rescheduleCmd, editCmd)
	rescheduleCmd.Flags().StringVar(&rescheduleDeadline, "deadline", "", "explicit deadline (RFC3339); skips date parsing")
}
