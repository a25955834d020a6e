package store

import (
	"time"

	"github.com/hrism/discord-chatwork-task-bot/models"
)

// Filter selects tasks by status for ListTasks.
type Filter string

const (
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
	FilterAll       Filter = "all"
)

// ParseFilter maps a user-supplied string to a Filter. Empty means all.
func ParseFilter(s string) (Filter, bool) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, true
	case FilterPending, FilterCompleted:
		return Filter(s), true
	}
	return "", false
}

// TaskStore defines the interface for task persistence.
// Lookups that miss return ErrTaskNotFound; write failures wrap ErrWriteFailure.
type TaskStore interface {
	// Initialize configures the store with the data file, backup file and
	// timezone. It should be called before any other store operations.
	Initialize(config map[string]string) error

	// CreateTask registers text as a new pending task. When explicitDeadline is
	// nil the deadline and priority come from the date resolver; otherwise the
	// deadline is used as given and priority is normal.
	CreateTask(text, createdBy string, explicitDeadline *time.Time) (models.Task, error)

	// GetTask retrieves a task by its full identifier.
	GetTask(id string) (models.Task, error)

	// FindByShortID returns the first task, in collection order, whose id starts
	// with the given 8 character prefix.
	FindByShortID(shortID string) (models.Task, error)

	// GetTaskByIndex returns the n-th (1-based) pending task by ascending deadline.
	GetTaskByIndex(index int) (models.Task, error)

	// ListTasks returns tasks matching the filter in collection order.
	ListTasks(filter Filter) ([]models.Task, error)

	// ListDueToday returns pending tasks due within the local calendar day of now.
	ListDueToday(now time.Time) ([]models.Task, error)

	// ListUpcoming returns pending tasks due in [now, now+days], sorted by deadline.
	ListUpcoming(now time.Time, days int) ([]models.Task, error)

	// CompleteTask marks a task completed and stamps CompletedAt.
	CompleteTask(id string) (models.Task, error)

	// DeleteTask removes a task and reports whether anything was removed.
	DeleteTask(id string) (bool, error)

	// UpdateDeadline replaces the deadline, either resolved from dateText or
	// taken from explicitDeadline when it is non-nil. The title is untouched.
	UpdateDeadline(id, dateText string, explicitDeadline *time.Time) (models.Task, error)

	// UpdateContent replaces the title verbatim.
	UpdateContent(id, title string) (models.Task, error)

	// ArchiveExpired deletes every pending task whose deadline is before now and
	// returns how many were removed. Nothing is moved to a separate archive.
	ArchiveExpired(now time.Time) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
