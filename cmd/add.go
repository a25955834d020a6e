/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hrism/discord-chatwork-task-bot/internal/notify"
	"github.com/hrism/discord-chatwork-task-bot/internal/ui"
)

var (
	addDeadline string
	addAuthor   string
	addNotify   bool
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:     "add <text>",
	Aliases: []string{"a"},
	Short:   "Register a task from natural language text",
	Long: `Register a task. The deadline and priority are read from the text itself:
date phrases such as 明日, 来週金曜, 6/15 or 3日後, time phrases such as 15時 or
午後3時半, and 重要/緊急/至急 for urgent tasks. Without a date the task is due
today at 23:59.`,
	Example: `  taskbot add 明日15時 レポート提出
  taskbot add 至急 見積書送付
  taskbot add 定例資料 --deadline 2025-06-20T10:00:00+09:00`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskStore, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = taskStore.Close() }()

		loc := taskStore.Location()
		explicit, err := parseDeadlineFlag(addDeadline, loc)
		if err != nil {
			return err
		}

		author := addAuthor
		if author == "" {
			author = GetConfig().Chat.AuthorID
		}

		task, err := taskStore.CreateTask(strings.Join(args, " "), author, explicit)
		if err != nil {
			return err
		}

		if addNotify {
			if err := newNotifier().Send(cmd.Context(), notify.FormatNewTask(task, loc)); err != nil {
				slog.Warn("new task notification failed", "task", task.ShortID(), "error", err)
			}
		}

		if isJSON() {
			return printJSON(cmd.OutOrStdout(), task)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSuccessPanel("タスクを登録しました", ui.RenderTaskDetail(task, loc)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addDeadline, "deadline", "", "explicit deadline (RFC3339); skips date parsing")
	addCmd.Flags().StringVar(&addAuthor, "author", "", "creator recorded on the task (default chat.authorID)")
	addCmd.Flags().BoolVar(&addNotify, "notify", false, "post the new task notice to Chatwork")
}
