package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hrism/discord-chatwork-task-bot/internal/dateparse"
	"github.com/hrism/discord-chatwork-task-bot/internal/notify"
	"github.com/hrism/discord-chatwork-task-bot/internal/ui"
)

var (
	parseNow   string
	parseRules bool
)

type parseResult struct {
	Input    string    `json:"input"`
	Now      time.Time `json:"now"`
	Deadline time.Time `json:"deadline"`
	Priority string    `json:"priority"`
	Title    string    `json:"title"`
}

// parseCmd runs the date resolver without touching the task file.
var parseCmd = &cobra.Command{
	Use:   "parse <text>",
	Short: "Show how a message would be resolved into a deadline",
	Example: `  taskbot parse 来週金曜15時 定例
  taskbot parse 月末 --now 2025-02-10T09:00:00+09:00
  taskbot parse --rules`,
	Args: func(cmd *cobra.Command, args []string) error {
		if parseRules {
			return nil
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if parseRules {
			fmt.Fprintln(out, ui.StyleTitle.Render("date rules"))
			for i, name := range dateparse.DateRuleNames() {
				fmt.Fprintf(out, "  %2d. %s\n", i+1, name)
			}
			fmt.Fprintln(out, ui.StyleTitle.Render("time rules"))
			for i, name := range dateparse.TimeRuleNames() {
				fmt.Fprintf(out, "  %2d. %s\n", i+1, name)
			}
			return nil
		}

		loc, err := dateparse.LoadLocation(GetConfig().Timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone: %w", err)
		}
		now := nowFunc().In(loc)
		if parseNow != "" {
			if now, err = time.ParseInLocation(time.RFC3339, parseNow, loc); err != nil {
				return fmt.Errorf("invalid --now %q: %w", parseNow, err)
			}
		}

		text := strings.Join(args, " ")
		res := dateparse.Resolve(text, now, loc)
		if isJSON() {
			return printJSON(out, parseResult{
				Input:    text,
				Now:      now,
				Deadline: res.Deadline,
				Priority: string(res.Priority),
				Title:    res.Title,
			})
		}

		t := &ui.Table{Headers: []string{"項目", "値"}}
		t.Rows = [][]string{
			{"基準", notify.FormatLong(now, loc)},
			{"期限", notify.FormatLong(res.Deadline, loc)},
			{"優先度", string(res.Priority)},
			{"タスク", res.Title},
		}
		fmt.Fprint(out, t.Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVar(&parseNow, "now", "", "reference time (RFC3339) instead of the current time")
	parseCmd.Flags().BoolVar(&parseRules, "rules", false, "list the resolver rules in evaluation order")
}
