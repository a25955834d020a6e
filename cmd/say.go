package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hrism/discord-chatwork-task-bot/internal/router"
)

var sayAuthor string

// sayCmd sends one message through the same router the bot uses.
var sayCmd = &cobra.Command{
	Use:   "say <message>",
	Short: "Handle one chat message and print the bot's reply",
	Example: `  taskbot say 明日15時 レポート提出
  taskbot say リスト
  taskbot say be4bc269 完了`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskStore, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = taskStore.Close() }()

		author := sayAuthor
		if author == "" {
			author = GetConfig().Chat.AuthorID
		}

		r := newRouter(cmd.Context(), taskStore, newNotifier(), tracker)
		reply, err := r.Handle(cmd.Context(), router.Message{
			AuthorID: author,
			Content:  strings.Join(args, " "),
		})
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"action": string(reply.Action),
				"reply":  reply.Text,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
		if err != nil {
			LogError("message handling failed", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sayCmd)
	sayCmd.Flags().StringVar(&sayAuthor, "author", "", "author id recorded on added tasks (default chat.authorID)")
}
