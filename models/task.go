package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TaskStatus represents the possible statuses of a task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

// TaskPriority represents the priority levels of a task.
type TaskPriority string

const (
	PriorityNormal TaskPriority = "normal"
	PriorityUrgent TaskPriority = "urgent"
)

// ShortIDLength is the number of leading id characters used for human addressing.
const ShortIDLength = 8

// Task represents a unit of work registered from a chat message.
type Task struct {
	ID          string       `json:"id" yaml:"id" validate:"required,uuid"`
	Title       string       `json:"title" yaml:"title" validate:"required"`
	Deadline    time.Time    `json:"deadline" yaml:"deadline" validate:"required"`
	Priority    TaskPriority `json:"priority" yaml:"priority" validate:"required,oneof=normal urgent"`
	Status      TaskStatus   `json:"status" yaml:"status" validate:"required,oneof=pending completed"`
	CreatedAt   time.Time    `json:"createdAt" yaml:"createdAt" validate:"required"`
	CompletedAt *time.Time   `json:"completedAt,omitempty" yaml:"completedAt,omitempty"` // set only on pending -> completed
	CreatedBy   string       `json:"createdBy" yaml:"createdBy"`
}

// ShortID returns the first eight characters of the task ID.
func (t Task) ShortID() string {
	if len(t.ID) <= ShortIDLength {
		return t.ID
	}
	return t.ID[:ShortIDLength]
}

// IsPending reports whether the task is still open.
func (t Task) IsPending() bool {
	return t.Status == StatusPending
}

// TaskList is the on-disk document: { "tasks": [...] }.
type TaskList struct {
	Tasks []Task `json:"tasks" yaml:"tasks" validate:"dive"`
}

// SortByDeadline orders tasks by ascending deadline in place and returns the slice.
func SortByDeadline(tasks []Task) []Task {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Deadline.Before(tasks[j].Deadline)
	})
	return tasks
}

// global validator instance
var validate = validator.New()

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var errorMessages []string
	for _, e := range validationErrors {
		errorMessages = append(errorMessages, fmt.Sprintf("Validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("%s", strings.Join(errorMessages, "; "))
}

// NewTask builds a pending task with the given id, title and deadline.
func NewTask(id, title string, deadline time.Time, priority TaskPriority, createdBy string, now time.Time) Task {
	if priority == "" {
		priority = PriorityNormal
	}
	return Task{
		ID:        id,
		Title:     title,
		Deadline:  deadline,
		Priority:  priority,
		Status:    StatusPending,
		CreatedAt: now,
		CreatedBy: createdBy,
	}
}
