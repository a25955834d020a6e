// Package dateparse turns Japanese free text into an absolute deadline.
//
// Resolution runs two independent passes over the same text, a date pass and a
// time-of-day pass. Each pass walks an ordered rule slice and stops at the
// first rule that matches. The slice order is the precedence contract.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/width"

	"github.com/hrism/discord-chatwork-task-bot/models"
)

// DefaultTimezone is used when no location is configured.
const DefaultTimezone = "Asia/Tokyo"

// Default time of day when the text carries no time expression.
const (
	DefaultHour   = 23
	DefaultMinute = 59
)

// urgentKeywords mark a task as urgent when present anywhere in the text.
var urgentKeywords = []string{"重要", "緊急", "至急"}

// Result is the outcome of resolving one message.
type Result struct {
	Deadline time.Time
	Priority models.TaskPriority
	Title    string
}

// Resolve parses text relative to now in loc. It never fails: text without a
// recognised date falls back to today, text without a time falls back to 23:59.
// Title is the trimmed input; date and time phrases are not stripped.
func Resolve(text string, now time.Time, loc *time.Location) Result {
	return Result{
		Deadline: ResolveDeadline(text, now, loc),
		Priority: DetectPriority(text),
		Title:    strings.TrimSpace(text),
	}
}

// ResolveDeadline runs only the date and time passes.
func ResolveDeadline(text string, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = DefaultLocation()
	}
	normalized := normalize(text)
	today := startOfDay(now.In(loc))

	date := resolveDate(normalized, today)
	hour, minute := resolveTime(normalized)

	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc)
}

// DetectPriority reports urgent when any urgency keyword occurs in text.
func DetectPriority(text string) models.TaskPriority {
	for _, kw := range urgentKeywords {
		if strings.Contains(text, kw) {
			return models.PriorityUrgent
		}
	}
	return models.PriorityNormal
}

// DefaultLocation is DefaultTimezone, or a fixed +09:00 zone when the
// timezone database is unavailable.
func DefaultLocation() *time.Location {
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.FixedZone("JST", 9*60*60)
}

// LoadLocation resolves a timezone name, falling back to DefaultTimezone for "".
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	return time.LoadLocation(name)
}

// normalize folds full-width digits and punctuation (１２／２５, １５：００) to ASCII.
func normalize(text string) string {
	return width.Fold.String(text)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// rule is one entry of an ordered first-match-wins cascade. match returns the
// submatches of the accepted occurrence or nil.
type rule[T any] struct {
	name    string
	match   func(text string) []string
	resolve func(m []string, today time.Time) (T, bool)
}

type clock struct{ hour, minute int }

func regex(expr string) func(string) []string {
	re := regexp.MustCompile(expr)
	return re.FindStringSubmatch
}

// regexNotAfter matches expr, skipping occurrences preceded by any of the
// given prefixes, with optional whitespace in between. It keeps 来月末 out of
// the 月末 rule and 午後 3時 out of 3時.
func regexNotAfter(expr string, prefixes ...string) func(string) []string {
	re := regexp.MustCompile(expr)
	return func(text string) []string {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			before := strings.TrimRight(text[:loc[0]], " \t")
			blocked := false
			for _, p := range prefixes {
				if strings.HasSuffix(before, p) {
					blocked = true
					break
				}
			}
			if blocked {
				continue
			}
			m := make([]string, len(loc)/2)
			for i := range m {
				if loc[2*i] >= 0 {
					m[i] = text[loc[2*i]:loc[2*i+1]]
				}
			}
			return m
		}
		return nil
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// calendarDate validates y/m/d and returns midnight of that date.
func calendarDate(y, m, d int, loc *time.Location) (time.Time, bool) {
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	if t.Month() != time.Month(m) || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// monthDay resolves a yearless month/day, rolling to next year when the date
// this year is already past.
func monthDay(m []string, today time.Time) (time.Time, bool) {
	month, day := atoi(m[1]), atoi(m[2])
	t, ok := calendarDate(today.Year(), month, day, today.Location())
	if !ok {
		// 2/29 outside a leap year: try the following year.
		return calendarDate(today.Year()+1, month, day, today.Location())
	}
	if t.Before(today) {
		return calendarDate(today.Year()+1, month, day, today.Location())
	}
	return t, true
}

func offsetDays(n int) func([]string, time.Time) (time.Time, bool) {
	return func(_ []string, today time.Time) (time.Time, bool) {
		return today.AddDate(0, 0, n), true
	}
}

// addMonths adds n calendar months, clamping to the last day of the target month.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := endOfMonth(first).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func endOfMonth(t time.Time) time.Time {
	return startOfMonth(t).AddDate(0, 1, -1)
}

// nextWeekday returns the first date on or after today falling on wd.
func nextWeekday(today time.Time, wd time.Weekday) time.Time {
	diff := (int(wd) - int(today.Weekday()) + 7) % 7
	return today.AddDate(0, 0, diff)
}

var weekdayNames = []struct {
	kanji string
	day   time.Weekday
}{
	{"月曜", time.Monday},
	{"火曜", time.Tuesday},
	{"水曜", time.Wednesday},
	{"木曜", time.Thursday},
	{"金曜", time.Friday},
	{"土曜", time.Saturday},
	{"日曜", time.Sunday},
}

// dateRules is the date pass in precedence order.
var dateRules = buildDateRules()

func buildDateRules() []rule[time.Time] {
	rules := []rule[time.Time]{
		{
			name:  "ymd",
			match: regex(`(\d{4})/(\d{1,2})/(\d{1,2})`),
			resolve: func(m []string, today time.Time) (time.Time, bool) {
				return calendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), today.Location())
			},
		},
		{name: "md", match: regex(`(\d{1,2})/(\d{1,2})`), resolve: monthDay},
		{name: "kanji-md", match: regex(`(\d{1,2})月(\d{1,2})日`), resolve: monthDay},
		{name: "today", match: regex(`今日`), resolve: offsetDays(0)},
		{name: "tomorrow", match: regex(`明日`), resolve: offsetDays(1)},
		{name: "day-after-tomorrow", match: regex(`明後日`), resolve: offsetDays(2)},
		{name: "yesterday", match: regex(`昨日`), resolve: offsetDays(-1)},
		{
			name:  "days-later",
			match: regex(`(\d+)日後`),
			resolve: func(m []string, today time.Time) (time.Time, bool) {
				return today.AddDate(0, 0, atoi(m[1])), true
			},
		},
		{
			name:  "weeks-later",
			match: regex(`(\d+)週間?後`),
			resolve: func(m []string, today time.Time) (time.Time, bool) {
				return today.AddDate(0, 0, 7*atoi(m[1])), true
			},
		},
		{
			name:  "months-later",
			match: regex(`(\d+)[ヶかカケ]?月後`),
			resolve: func(m []string, today time.Time) (time.Time, bool) {
				return addMonths(today, atoi(m[1])), true
			},
		},
		{
			name:  "this-month-end",
			match: regexNotAfter(`今月末|月末`, "来"),
			resolve: func(_ []string, today time.Time) (time.Time, bool) {
				return endOfMonth(today), true
			},
		},
		{
			name:  "next-month-end",
			match: regex(`来月末`),
			resolve: func(_ []string, today time.Time) (time.Time, bool) {
				return endOfMonth(addMonths(startOfMonth(today), 1)), true
			},
		},
		{
			name:  "this-month-start",
			match: regexNotAfter(`今月初|月初`, "来"),
			resolve: func(_ []string, today time.Time) (time.Time, bool) {
				return startOfMonth(today), true
			},
		},
		{
			name:  "next-month-start",
			match: regex(`来月初`),
			resolve: func(_ []string, today time.Time) (time.Time, bool) {
				return addMonths(startOfMonth(today), 1), true
			},
		},
	}

	for _, w := range weekdayNames {
		wd := w.day
		rules = append(rules, rule[time.Time]{
			name:  "this-week-" + strings.ToLower(wd.String()),
			match: regexNotAfter(`(?:今週の?)?`+w.kanji, "来週", "来週の"),
			resolve: func(_ []string, today time.Time) (time.Time, bool) {
				return nextWeekday(today, wd), true
			},
		})
	}
	for _, w := range weekdayNames {
		wd := w.day
		rules = append(rules, rule[time.Time]{
			name:  "next-week-" + strings.ToLower(wd.String()),
			match: regex(`来週\s*の?\s*` + w.kanji),
			resolve: func(_ []string, today time.Time) (time.Time, bool) {
				return nextWeekday(today, wd).AddDate(0, 0, 7), true
			},
		})
	}
	return rules
}

func validClock(h, m int) (clock, bool) {
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return clock{}, false
	}
	return clock{h, m}, true
}

// timeRules is the time-of-day pass in precedence order.
var timeRules = []rule[clock]{
	{
		name:  "hour-minute",
		match: regexNotAfter(`(\d{1,2})時(?:(\d{1,2})分)?`, "午前", "午後"),
		resolve: func(m []string, _ time.Time) (clock, bool) {
			minute := 0
			if m[2] != "" {
				minute = atoi(m[2])
			}
			return validClock(atoi(m[1]), minute)
		},
	},
	{
		name:  "am",
		match: regex(`午前\s*(\d{1,2})時`),
		resolve: func(m []string, _ time.Time) (clock, bool) {
			return validClock(atoi(m[1]), 0)
		},
	},
	{
		name:  "pm",
		match: regex(`午後\s*(\d{1,2})時`),
		resolve: func(m []string, _ time.Time) (clock, bool) {
			h := atoi(m[1])
			if h < 12 {
				h += 12
			}
			return validClock(h, 0)
		},
	},
	{
		name:  "colon",
		match: regex(`(\d{1,2}):(\d{2})`),
		resolve: func(m []string, _ time.Time) (clock, bool) {
			return validClock(atoi(m[1]), atoi(m[2]))
		},
	},
}

func resolveDate(text string, today time.Time) time.Time {
	if t, ok := firstMatch(dateRules, text, today); ok {
		return t
	}
	return today
}

func resolveTime(text string) (int, int) {
	if c, ok := firstMatch(timeRules, text, time.Time{}); ok {
		return c.hour, c.minute
	}
	return DefaultHour, DefaultMinute
}

// firstMatch evaluates rules in slice order. A rule whose match fails
// validation (e.g. 13/40) does not consume the text.
func firstMatch[T any](rules []rule[T], text string, today time.Time) (T, bool) {
	for _, r := range rules {
		m := r.match(text)
		if m == nil {
			continue
		}
		if v, ok := r.resolve(m, today); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// DateRuleNames lists the date pass in evaluation order.
func DateRuleNames() []string {
	names := make([]string, len(dateRules))
	for i, r := range dateRules {
		names[i] = r.name
	}
	return names
}

// TimeRuleNames lists the time pass in evaluation order.
func TimeRuleNames() []string {
	names := make([]string, len(timeRules))
	for i, r := range timeRules {
		names[i] = r.name
	}
	return names
}
