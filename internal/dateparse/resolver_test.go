package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrism/discord-chatwork-task-bot/models"
)

var jst = time.FixedZone("JST", 9*60*60)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, jst)
}

func TestRuleOrder(t *testing.T) {
	names := DateRuleNames()
	require.Len(t, names, 28)
	assert.Equal(t, []string{
		"ymd", "md", "kanji-md",
		"today", "tomorrow", "day-after-tomorrow", "yesterday",
		"days-later", "weeks-later", "months-later",
		"this-month-end", "next-month-end", "this-month-start", "next-month-start",
	}, names[:14])
	assert.Equal(t, "this-week-monday", names[14])
	assert.Equal(t, "this-week-sunday", names[20])
	assert.Equal(t, "next-week-monday", names[21])
	assert.Equal(t, "next-week-sunday", names[27])

	assert.Equal(t, []string{"hour-minute", "am", "pm", "colon"}, TimeRuleNames())
}

func TestResolveDate(t *testing.T) {
	tuesday := at(2025, time.June, 10, 9, 0)
	monday := at(2025, time.June, 9, 9, 0)

	tests := []struct {
		name string
		text string
		now  time.Time
		want time.Time
	}{
		{"full date", "2025/12/31 納品", tuesday, at(2025, time.December, 31, 23, 59)},
		{"md past rolls forward", "3/1 申請", at(2025, time.October, 1, 9, 0), at(2026, time.March, 1, 23, 59)},
		{"md future stays", "12/1 申請", at(2025, time.October, 1, 9, 0), at(2025, time.December, 1, 23, 59)},
		{"md today stays", "10/1 申請", at(2025, time.October, 1, 9, 0), at(2025, time.October, 1, 23, 59)},
		{"kanji past rolls forward", "3月1日 申請", at(2025, time.October, 1, 9, 0), at(2026, time.March, 1, 23, 59)},
		{"kanji future stays", "12月1日 申請", at(2025, time.October, 1, 9, 0), at(2025, time.December, 1, 23, 59)},
		{"today", "今日 掃除", tuesday, at(2025, time.June, 10, 23, 59)},
		{"tomorrow", "明日 掃除", tuesday, at(2025, time.June, 11, 23, 59)},
		{"day after tomorrow", "明後日 掃除", tuesday, at(2025, time.June, 12, 23, 59)},
		{"yesterday", "昨日 掃除", tuesday, at(2025, time.June, 9, 23, 59)},
		{"days later", "3日後に会議", tuesday, at(2025, time.June, 13, 23, 59)},
		{"weeks later", "2週間後 レビュー", tuesday, at(2025, time.June, 24, 23, 59)},
		{"weeks later short", "1週後 レビュー", tuesday, at(2025, time.June, 17, 23, 59)},
		{"months later", "2ヶ月後 更新", tuesday, at(2025, time.August, 10, 23, 59)},
		{"months later clamps", "1ヶ月後 更新", at(2025, time.January, 31, 9, 0), at(2025, time.February, 28, 23, 59)},
		{"month end", "月末までに請求書", tuesday, at(2025, time.June, 30, 23, 59)},
		{"this month end", "今月末 請求書", tuesday, at(2025, time.June, 30, 23, 59)},
		{"next month end", "来月末 請求書", tuesday, at(2025, time.July, 31, 23, 59)},
		{"month start", "月初 棚卸し", tuesday, at(2025, time.June, 1, 23, 59)},
		{"next month start", "来月初 棚卸し", tuesday, at(2025, time.July, 1, 23, 59)},
		{"next month end across year", "来月末", at(2025, time.December, 15, 9, 0), at(2026, time.January, 31, 23, 59)},
		{"bare weekday includes today", "月曜 定例", monday, at(2025, time.June, 9, 23, 59)},
		{"this week weekday", "今週の金曜 打ち合わせ", monday, at(2025, time.June, 13, 23, 59)},
		{"this week weekday no particle", "今週金曜 打ち合わせ", monday, at(2025, time.June, 13, 23, 59)},
		{"weekday wraps", "日曜 買い物", monday, at(2025, time.June, 15, 23, 59)},
		{"weekday already passed this week", "月曜 定例", tuesday, at(2025, time.June, 16, 23, 59)},
		{"next week weekday", "来週月曜に資料作成", monday, at(2025, time.June, 16, 23, 59)},
		{"next week weekday with particle", "来週の水曜 面談", tuesday, at(2025, time.June, 18, 23, 59)},
		{"next week weekday with space", "来週 金曜 面談", tuesday, at(2025, time.June, 20, 23, 59)},
		{"no date defaults to today", "会議", tuesday, at(2025, time.June, 10, 23, 59)},
		{"invalid md falls through", "13/40 明日", tuesday, at(2025, time.June, 11, 23, 59)},
		{"leap day rolls to next valid year", "2/29", at(2027, time.March, 1, 9, 0), at(2028, time.February, 29, 23, 59)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDeadline(tt.text, tt.now, jst)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestResolvePrecedence(t *testing.T) {
	monday := at(2025, time.June, 9, 9, 0)

	tests := []struct {
		name    string
		text    string
		earlier string
	}{
		{"tomorrow beats weekday", "明日 金曜の件", "明日"},
		{"md beats tomorrow", "明日ではなく 7/1", "7/1"},
		{"kanji beats relative", "3日後じゃなくて7月1日", "7月1日"},
		{"ymd beats md", "2026/01/05", "2026/01/05"},
		{"today beats month end", "今日か月末", "今日"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			combined := ResolveDeadline(tt.text, monday, jst)
			alone := ResolveDeadline(tt.earlier, monday, jst)
			assert.True(t, alone.Equal(combined), "want %s, got %s", alone, combined)
		})
	}
}

func TestResolveTime(t *testing.T) {
	now := at(2025, time.June, 10, 9, 0)

	tests := []struct {
		text   string
		hour   int
		minute int
	}{
		{"会議", 23, 59},
		{"15時 打ち合わせ", 15, 0},
		{"15時30分 打ち合わせ", 15, 30},
		{"午前9時 朝会", 9, 0},
		{"午後3時 来客", 15, 0},
		{"午後12時 昼", 12, 0},
		{"午後 3時 来客", 15, 0},
		{"午前 10時 朝会", 10, 0},
		{"午後  4時", 16, 0},
		{"10:30 歯医者", 10, 30},
		{"9:05 電話", 9, 5},
		{"25時 深夜", 23, 59},
		{"25:00 深夜", 23, 59},
		{"8時 と 10:30", 8, 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ResolveDeadline(tt.text, now, jst)
			assert.Equal(t, tt.hour, got.Hour())
			assert.Equal(t, tt.minute, got.Minute())
			assert.Equal(t, 0, got.Second())
			assert.Equal(t, 0, got.Nanosecond())
		})
	}
}

func TestResolveFullWidthDigits(t *testing.T) {
	now := at(2025, time.June, 10, 9, 0)
	res := Resolve("１２／２５ １５：００ 忘年会", now, jst)
	assert.True(t, at(2025, time.December, 25, 15, 0).Equal(res.Deadline), "got %s", res.Deadline)
	assert.Equal(t, "１２／２５ １５：００ 忘年会", res.Title)
}

func TestResolveUsesLocationForToday(t *testing.T) {
	// 20:00 UTC on the 9th is already the 10th in Tokyo.
	now := time.Date(2025, time.June, 9, 20, 0, 0, 0, time.UTC)
	got := ResolveDeadline("今日", now, jst)
	assert.True(t, at(2025, time.June, 10, 23, 59).Equal(got), "got %s", got)
}

func TestResolveNilLocationUsesDefaultTimezone(t *testing.T) {
	now := time.Date(2025, time.June, 9, 20, 0, 0, 0, time.UTC)
	got := ResolveDeadline("今日", now, nil)
	assert.True(t, at(2025, time.June, 10, 23, 59).Equal(got), "got %s", got)
}

func TestDetectPriority(t *testing.T) {
	assert.Equal(t, models.PriorityUrgent, DetectPriority("緊急 レポート提出"))
	assert.Equal(t, models.PriorityUrgent, DetectPriority("重要: 契約書"))
	assert.Equal(t, models.PriorityUrgent, DetectPriority("至急 返信"))
	assert.Equal(t, models.PriorityNormal, DetectPriority("レポート提出"))
}

func TestResolve_EndToEnd(t *testing.T) {
	now := at(2025, time.June, 10, 9, 0)
	res := Resolve("  明日15時 資料作成 ", now, jst)

	assert.True(t, at(2025, time.June, 11, 15, 0).Equal(res.Deadline), "got %s", res.Deadline)
	assert.Equal(t, "2025-06-11T15:00:00+09:00", res.Deadline.Format(time.RFC3339))
	assert.Equal(t, models.PriorityNormal, res.Priority)
	assert.Equal(t, "明日15時 資料作成", res.Title)
}

func TestLoadLocationDefault(t *testing.T) {
	loc, err := LoadLocation("UTC")
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = LoadLocation("Not/AZone")
	assert.Error(t, err)
}
