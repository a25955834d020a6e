package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/hrism/discord-chatwork-task-bot/models"
	"github.com/stretchr/testify/assert"
)

var jst = time.FixedZone("JST", 9*60*60)

func task(id, title string, deadline time.Time, p models.TaskPriority) models.Task {
	return models.NewTask(id, title, deadline, p, "u1", deadline.Add(-48*time.Hour))
}

func TestFormatLongAndShort(t *testing.T) {
	d := time.Date(2025, 6, 11, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "2025年06月11日 23:05", FormatLong(d, jst))
	assert.Equal(t, "06/11 23:05", FormatShort(d, jst))
}

func TestFormatTaskList(t *testing.T) {
	assert.Equal(t, "タスクはありません。", FormatTaskList(nil, jst))

	tasks := []models.Task{
		task("be4bc269-aaaa-4000-8000-000000000001", "レポート提出", time.Date(2025, 6, 11, 23, 59, 0, 0, jst), models.PriorityNormal),
		task("0123abcd-aaaa-4000-8000-000000000002", "重要 請求書", time.Date(2025, 6, 30, 23, 59, 0, 0, jst), models.PriorityUrgent),
	}
	got := FormatTaskList(tasks, jst)
	assert.Equal(t,
		"1. ⚪ [be4bc269] レポート提出 (2025年06月11日 23:59)\n"+
			"2. 🔴 [0123abcd] 重要 請求書 (2025年06月30日 23:59)", got)
}

func TestFormatDaily(t *testing.T) {
	now := time.Date(2025, 6, 10, 8, 0, 0, 0, jst)
	today := []models.Task{
		task("a0000000-0000-4000-8000-000000000001", "朝会", time.Date(2025, 6, 10, 10, 0, 0, 0, jst), models.PriorityNormal),
	}
	upcoming := []models.Task{
		today[0],
		task("b0000000-0000-4000-8000-000000000002", "資料作成", time.Date(2025, 6, 12, 15, 0, 0, 0, jst), models.PriorityNormal),
	}

	got := FormatDaily(now, today, upcoming, jst)
	assert.True(t, strings.HasPrefix(got, "[info][title]📋 タスク通知 - 2025年6月10日[/title]\n"))
	assert.Contains(t, got, "【今日期限のタスク】\n🔴 朝会 (10:00)\n")
	assert.Contains(t, got, "【3日以内のタスク】\n🟡 資料作成 (6/12 15:00)\n")
	assert.Equal(t, 1, strings.Count(got, "朝会"), "today's task must not repeat in the upcoming section")
	assert.True(t, strings.HasSuffix(got, "[/info]"))
}

func TestFormatDaily_Empty(t *testing.T) {
	now := time.Date(2025, 6, 10, 8, 0, 0, 0, jst)
	got := FormatDaily(now, nil, nil, jst)
	assert.Equal(t, "[info][title]📋 タスク通知 - 2025年6月10日[/title]\n\n【今日期限のタスク】\nなし\n[/info]", got)
}

func TestFormatNewTask(t *testing.T) {
	tk := task("be4bc269-aaaa-4000-8000-000000000001", "レポート提出", time.Date(2025, 6, 11, 23, 59, 0, 0, jst), models.PriorityNormal)
	got := FormatNewTask(tk, jst)
	assert.Contains(t, got, "[title]📝 新規タスク登録[/title]")
	assert.Contains(t, got, "タスクID: be4bc269\n")
	assert.Contains(t, got, "タスク: レポート提出\n")
	assert.Contains(t, got, "期限: 6月11日 23:59\n")
	assert.Contains(t, got, "「完了 be4bc269」または「be4bc269完了」")
}

func TestFormatDeadline(t *testing.T) {
	tk := task("be4bc269-aaaa-4000-8000-000000000001", "打ち合わせ", time.Date(2025, 6, 11, 6, 0, 0, 0, time.UTC), models.PriorityNormal)
	assert.Equal(t, "[info][title]⏰ タスク期限通知[/title]\nタスク: 打ち合わせ\n期限: あと1時間 (15:00)\n[/info]", FormatDeadline(tk, jst))
}
