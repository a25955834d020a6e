package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hrism/discord-chatwork-task-bot/models"
	"github.com/hrism/discord-chatwork-task-bot/store"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every task as JSON or YAML",
	Example: `  taskbot export --format yaml
  taskbot export -o tasks-2025-06.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportFormat != "json" && exportFormat != "yaml" {
			return fmt.Errorf("invalid --format %q (want json or yaml)", exportFormat)
		}

		taskStore, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = taskStore.Close() }()

		tasks, err := taskStore.ListTasks(store.FilterAll)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		if tasks == nil {
			tasks = []models.Task{}
		}
		doc := models.TaskList{Tasks: tasks}

		if exportOutput == "" {
			return writeExport(cmd.OutOrStdout(), doc)
		}
		f, err := appFs.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOutput, err)
		}
		if err := writeExport(f, doc); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", exportOutput, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d件のタスクを %s に書き出しました。\n", len(tasks), exportOutput)
		return nil
	},
}

func writeExport(w io.Writer, doc models.TaskList) error {
	if exportFormat == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	return printJSON(w, doc)
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format: json or yaml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to a file instead of stdout")
}
