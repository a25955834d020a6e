package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hrism/discord-chatwork-task-bot/models"
	"github.com/hrism/discord-chatwork-task-bot/store"
)

// resolveTaskReference accepts an 8 character short id, a full id, or the
// 1-based position in the pending list.
func resolveTaskReference(s store.TaskStore, ref string) (models.Task, error) {
	if len(ref) < models.ShortIDLength {
		if n, err := strconv.Atoi(ref); err == nil {
			return s.GetTaskByIndex(n)
		}
	}
	if len(ref) > models.ShortIDLength {
		return s.GetTask(ref)
	}
	return s.FindByShortID(ref)
}

// parseDeadlineFlag reads an RFC 3339 timestamp. Empty means none.
func parseDeadlineFlag(value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(time.RFC3339, value, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid --deadline %q (want RFC3339, e.g. 2025-06-10T15:00:00+09:00): %w", value, err)
	}
	return &t, nil
}
