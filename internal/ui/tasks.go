package ui

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hrism/discord-chatwork-task-bot/internal/notify"
	"github.com/hrism/discord-chatwork-task-bot/models"
)

// maxTitleWidth keeps long titles from wrapping the table.
const maxTitleWidth = 48

// RenderTasks renders tasks as a table with id, deadline, priority, status
// and title columns. Overdue pending tasks are highlighted relative to now.
func RenderTasks(tasks []models.Task, now time.Time, loc *time.Location) string {
	if len(tasks) == 0 {
		return StyleSubtle.Render("タスクはありません。") + "\n"
	}

	t := &Table{
		Headers: []string{"ID", "期限", "優先度", "状態", "タスク"},
	}
	for _, task := range tasks {
		t.Rows = append(t.Rows, []string{
			task.ShortID(),
			notify.FormatShort(task.Deadline, loc),
			priorityLabel(task.Priority),
			statusLabel(task.Status),
			truncateCells(task.Title, maxTitleWidth),
		})
	}
	t.RowStyle = func(i int) lipgloss.Style {
		task := tasks[i]
		switch {
		case task.Status == models.StatusCompleted:
			return StyleCompleted
		case task.Deadline.Before(now):
			return StyleOverdue
		case task.Priority == models.PriorityUrgent:
			return StyleUrgent
		}
		return StyleText
	}
	return t.Render()
}

// RenderTaskDetail renders every field of one task.
func RenderTaskDetail(task models.Task, loc *time.Location) string {
	t := &Table{Headers: []string{"項目", "値"}}
	t.Rows = [][]string{
		{"ID", task.ID},
		{"タスク", task.Title},
		{"期限", notify.FormatLong(task.Deadline, loc)},
		{"優先度", priorityLabel(task.Priority)},
		{"状態", statusLabel(task.Status)},
		{"作成者", task.CreatedBy},
		{"作成日時", notify.FormatLong(task.CreatedAt, loc)},
	}
	if task.CompletedAt != nil {
		t.Rows = append(t.Rows, []string{"完了日時", notify.FormatLong(*task.CompletedAt, loc)})
	}
	return t.Render()
}

func priorityLabel(p models.TaskPriority) string {
	if p == models.PriorityUrgent {
		return "緊急"
	}
	return "通常"
}

func statusLabel(s models.TaskStatus) string {
	if s == models.StatusCompleted {
		return "完了"
	}
	return "未完了"
}
