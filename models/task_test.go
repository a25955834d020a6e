package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_ValidateStruct(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	valid := func() Task {
		return NewTask(uuid.NewString(), "資料作成", now.Add(time.Hour), PriorityNormal, "u1", now)
	}

	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr bool
	}{
		{name: "valid task", mutate: func(*Task) {}},
		{name: "empty title", mutate: func(t *Task) { t.Title = "" }, wantErr: true},
		{name: "invalid status", mutate: func(t *Task) { t.Status = "doing" }, wantErr: true},
		{name: "invalid priority", mutate: func(t *Task) { t.Priority = "high" }, wantErr: true},
		{name: "invalid UUID", mutate: func(t *Task) { t.ID = "not-a-uuid" }, wantErr: true},
		{name: "zero deadline", mutate: func(t *Task) { t.Deadline = time.Time{} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := valid()
			tt.mutate(&task)
			err := ValidateStruct(task)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTask_ShortID(t *testing.T) {
	task := Task{ID: "be4bc269-1111-4222-8333-444455556666"}
	assert.Equal(t, "be4bc269", task.ShortID())

	assert.Equal(t, "abc", Task{ID: "abc"}.ShortID())
}

func TestNewTask_DefaultsPriority(t *testing.T) {
	now := time.Now()
	task := NewTask("id", "title", now, "", "author", now)
	assert.Equal(t, PriorityNormal, task.Priority)
	assert.Equal(t, StatusPending, task.Status)
	assert.Nil(t, task.CompletedAt)
	assert.True(t, task.IsPending())
}

func TestTaskJSONFieldNames(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	deadline := time.Date(2025, 6, 11, 15, 0, 0, 0, loc)
	task := NewTask("be4bc269-1111-4222-8333-444455556666", "明日15時 資料作成", deadline, PriorityUrgent, "42", deadline.Add(-time.Hour))

	data, err := json.Marshal(task)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"id", "title", "deadline", "priority", "status", "createdAt", "createdBy"} {
		assert.Contains(t, raw, key)
	}
	assert.NotContains(t, raw, "completedAt")
	assert.Equal(t, "2025-06-11T15:00:00+09:00", raw["deadline"])
}

func TestSortByDeadline(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: "c", Deadline: base.Add(3 * time.Hour)},
		{ID: "a", Deadline: base.Add(1 * time.Hour)},
		{ID: "b", Deadline: base.Add(2 * time.Hour)},
	}
	SortByDeadline(tasks)
	assert.Equal(t, "a", tasks[0].ID)
	assert.Equal(t, "b", tasks[1].ID)
	assert.Equal(t, "c", tasks[2].ID)
}
