// Package notify renders task notices for the Chatwork room and delivers them.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/hrism/discord-chatwork-task-bot/models"
)

// FormatLong renders t as 2006年01月02日 15:04 in loc.
func FormatLong(t time.Time, loc *time.Location) string {
	return in(t, loc).Format("2006年01月02日 15:04")
}

// FormatShort renders t as 01/02 15:04 in loc.
func FormatShort(t time.Time, loc *time.Location) string {
	return in(t, loc).Format("01/02 15:04")
}

func in(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}

func priorityIcon(p models.TaskPriority) string {
	if p == models.PriorityUrgent {
		return "🔴"
	}
	return "⚪"
}

// FormatTaskList renders a numbered list, one task per line, in the order given.
func FormatTaskList(tasks []models.Task, loc *time.Location) string {
	if len(tasks) == 0 {
		return "タスクはありません。"
	}
	lines := make([]string, 0, len(tasks))
	for i, task := range tasks {
		lines = append(lines, fmt.Sprintf("%d. %s [%s] %s (%s)",
			i+1, priorityIcon(task.Priority), task.ShortID(), task.Title, FormatLong(task.Deadline, loc)))
	}
	return strings.Join(lines, "\n")
}

// FormatDaily builds the morning digest. upcoming is filtered to tasks due on
// or after the start of tomorrow so nothing is listed twice.
func FormatDaily(now time.Time, today, upcoming []models.Task, loc *time.Location) string {
	local := in(now, loc)
	var b strings.Builder
	fmt.Fprintf(&b, "[info][title]📋 タスク通知 - %d年%d月%d日[/title]\n", local.Year(), int(local.Month()), local.Day())

	b.WriteString("\n【今日期限のタスク】\n")
	if len(today) == 0 {
		b.WriteString("なし\n")
	}
	for _, task := range today {
		fmt.Fprintf(&b, "🔴 %s (%s)\n", task.Title, in(task.Deadline, loc).Format("15:04"))
	}

	tomorrow := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, local.Location())
	var later []models.Task
	for _, task := range upcoming {
		if !task.Deadline.Before(tomorrow) {
			later = append(later, task)
		}
	}
	if len(later) > 0 {
		b.WriteString("\n【3日以内のタスク】\n")
		for _, task := range later {
			d := in(task.Deadline, loc)
			fmt.Fprintf(&b, "🟡 %s (%d/%d %s)\n", task.Title, int(d.Month()), d.Day(), d.Format("15:04"))
		}
	}

	b.WriteString("[/info]")
	return b.String()
}

// FormatNewTask is pushed to the room when a task is registered.
func FormatNewTask(task models.Task, loc *time.Location) string {
	d := in(task.Deadline, loc)
	shortID := task.ShortID()
	return "[info][title]📝 新規タスク登録[/title]\n" +
		fmt.Sprintf("タスクID: %s\n", shortID) +
		fmt.Sprintf("タスク: %s\n", task.Title) +
		fmt.Sprintf("期限: %d月%d日 %s\n\n", int(d.Month()), d.Day(), d.Format("15:04")) +
		fmt.Sprintf("完了する場合は、Discordで「完了 %s」または「%s完了」と送信してください。\n[/info]", shortID, shortID)
}

// FormatDeadline warns that a task is due in about an hour.
func FormatDeadline(task models.Task, loc *time.Location) string {
	return "[info][title]⏰ タスク期限通知[/title]\n" +
		fmt.Sprintf("タスク: %s\n", task.Title) +
		fmt.Sprintf("期限: あと1時間 (%s)\n[/info]", in(task.Deadline, loc).Format("15:04"))
}
