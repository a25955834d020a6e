package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Delete pending tasks whose deadline has passed",
	Long: `Remove every pending task whose deadline is already in the past. Completed
tasks are kept. The same sweep runs once when 'serve' starts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		taskStore, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = taskStore.Close() }()

		count, err := taskStore.ArchiveExpired(nowFunc())
		if err != nil {
			return fmt.Errorf("failed to archive expired tasks: %w", err)
		}
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), map[string]int{"archived": count})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "期限切れのタスクを%d件削除しました。\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
}
