package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrism/discord-chatwork-task-bot/models"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestTable_ColumnWidthsCountsCells(t *testing.T) {
	table := &Table{
		Headers: []string{"ID", "タスク"},
		Rows: [][]string{
			{"abc123", "資料作成"},
			{"def456", "short"},
		},
	}

	widths := table.ColumnWidths()
	assert.Equal(t, 6, widths[0])
	assert.Equal(t, 8, widths[1], "four full-width runes take eight cells")
}

func TestTable_ColumnWidths_MaxWidth(t *testing.T) {
	table := &Table{
		Headers:  []string{"ID", "Description"},
		Rows:     [][]string{{"a", "This is a very long description that should be truncated"}},
		MaxWidth: 20,
	}
	assert.Equal(t, []int{2, 20}, table.ColumnWidths())

	out := table.Render()
	assert.Contains(t, out, "This is a very long…")
}

func TestTable_Render_Empty(t *testing.T) {
	assert.Equal(t, "", (&Table{}).Render())
}

func TestTruncateCells(t *testing.T) {
	assert.Equal(t, "abc", truncateCells("abc", 5))
	assert.Equal(t, "資料…", truncateCells("資料作成", 5))
	assert.Equal(t, "…", truncateCells("資料作成", 1))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "資料  ", padRight("資料", 6))
	assert.Equal(t, "abc", padRight("abc", 2))
}

func TestRenderTasks(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, jst)
	tasks := []models.Task{
		models.NewTask("be4bc269-aaaa-4000-8000-000000000001", "レポート提出", time.Date(2025, 6, 11, 23, 59, 0, 0, jst), models.PriorityUrgent, "u", now),
		models.NewTask("0123abcd-aaaa-4000-8000-000000000002", "資料作成", time.Date(2025, 6, 9, 18, 0, 0, 0, jst), models.PriorityNormal, "u", now),
	}

	out := RenderTasks(tasks, now, jst)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "期限")
	assert.Contains(t, lines[2], "be4bc269")
	assert.Contains(t, lines[2], "06/11 23:59")
	assert.Contains(t, lines[2], "緊急")
	assert.Contains(t, lines[3], "未完了")

	assert.Contains(t, RenderTasks(nil, now, jst), "タスクはありません。")
}

func TestRenderTaskDetail(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, jst)
	task := models.NewTask("be4bc269-aaaa-4000-8000-000000000001", "レポート提出", now.Add(time.Hour), models.PriorityNormal, "u1", now)

	out := RenderTaskDetail(task, jst)
	assert.Contains(t, out, "be4bc269-aaaa-4000-8000-000000000001")
	assert.Contains(t, out, "2025年06月10日 10:00")
	assert.NotContains(t, out, "完了日時")

	done := now.Add(2 * time.Hour)
	task.CompletedAt = &done
	task.Status = models.StatusCompleted
	assert.Contains(t, RenderTaskDetail(task, jst), "完了日時")
}
