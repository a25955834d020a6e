package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/hrism/discord-chatwork-task-bot/internal/dateparse"
	"github.com/hrism/discord-chatwork-task-bot/models"
)

const (
	defaultDataFile   = "tasks.json"
	defaultBackupFile = "tasks.backup.json"
	dataFileKey       = "dataFile"
	backupFileKey     = "backupFile"
	timezoneKey       = "timezone"
)

var (
	// ErrTaskNotFound is returned when no task matches an id, short id or index.
	ErrTaskNotFound = errors.New("task not found")
	// ErrWriteFailure wraps any failure to persist the collection.
	ErrWriteFailure = errors.New("task store write failed")
)

// loadSource records where the in-memory collection came from.
type loadSource int

const (
	sourcePrimary loadSource = iota
	sourceMissing            // no primary file yet
	sourceBackup             // primary unreadable, backup used
	sourceEmpty              // primary and backup both unreadable
)

// snapshot is one full load of the collection.
type snapshot struct {
	list   models.TaskList
	raw    []byte // primary file bytes when source is sourcePrimary
	source loadSource
}

// FileTaskStore implements TaskStore on top of a pretty-printed JSON file with a
// one-generation backup next to it. Every mutation runs load, mutate and save
// under one exclusive lock; reads share a read lock.
type FileTaskStore struct {
	mu         sync.RWMutex
	fs         afero.Fs
	filePath   string
	backupPath string
	loc        *time.Location
	now        func() time.Time
	newID      func() string
	logger     *slog.Logger
}

// Option customises a FileTaskStore.
type Option func(*FileTaskStore)

// WithFs sets the filesystem. Tests use afero.NewMemMapFs().
func WithFs(fsys afero.Fs) Option {
	return func(s *FileTaskStore) { s.fs = fsys }
}

// WithClock sets the time source used for createdAt, completedAt and resolving.
func WithClock(now func() time.Time) Option {
	return func(s *FileTaskStore) { s.now = now }
}

// WithIDGenerator sets the id source. The default is uuid.NewString.
func WithIDGenerator(gen func() string) Option {
	return func(s *FileTaskStore) { s.newID = gen }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *FileTaskStore) { s.logger = l }
}

// NewFileTaskStore creates a new instance of FileTaskStore.
// It does not initialize the store; Initialize must be called separately.
func NewFileTaskStore(opts ...Option) *FileTaskStore {
	s := &FileTaskStore{
		fs:     afero.NewOsFs(),
		loc:    dateparse.DefaultLocation(),
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize configures the FileTaskStore.
// Recognised keys: 'dataFile' (default tasks.json), 'backupFile' (default
// tasks.backup.json next to the data file) and 'timezone' (default Asia/Tokyo).
func (s *FileTaskStore) Initialize(config map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filePath = defaultDataFile
	if val := config[dataFileKey]; val != "" {
		s.filePath = val
	}
	s.backupPath = filepath.Join(filepath.Dir(s.filePath), defaultBackupFile)
	if val := config[backupFileKey]; val != "" {
		s.backupPath = val
	}

	loc, err := dateparse.LoadLocation(config[timezoneKey])
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", config[timezoneKey], err)
	}
	s.loc = loc

	for _, p := range []string{s.filePath, s.backupPath} {
		dir := filepath.Dir(p)
		if dir == "." || dir == "" {
			continue
		}
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Location returns the timezone used for resolving and day boundaries.
func (s *FileTaskStore) Location() *time.Location {
	return s.loc
}

// FilePath returns the primary data file path.
func (s *FileTaskStore) FilePath() string {
	return s.filePath
}

func (s *FileTaskStore) decode(data []byte) (models.TaskList, error) {
	var list models.TaskList
	if err := json.Unmarshal(data, &list); err != nil {
		return models.TaskList{}, err
	}
	if list.Tasks == nil {
		list.Tasks = []models.Task{}
	}
	return list, nil
}

// loadInternal reads the collection. It never fails: a missing file is an empty
// collection, an unreadable one falls back to the backup, and an unreadable
// backup yields an empty collection. The last case loses data and is logged.
func (s *FileTaskStore) loadInternal() snapshot {
	data, err := afero.ReadFile(s.fs, s.filePath)
	if err == nil {
		list, decErr := s.decode(data)
		if decErr == nil {
			return snapshot{list: list, raw: data, source: sourcePrimary}
		}
		err = decErr
	} else if errors.Is(err, fs.ErrNotExist) {
		return snapshot{list: models.TaskList{Tasks: []models.Task{}}, source: sourceMissing}
	}

	s.logger.Warn("task file unreadable, restoring from backup", "path", s.filePath, "error", err)
	backup, bErr := afero.ReadFile(s.fs, s.backupPath)
	if bErr == nil {
		list, decErr := s.decode(backup)
		if decErr == nil {
			return snapshot{list: list, source: sourceBackup}
		}
		bErr = decErr
	}
	s.logger.Warn("backup file unreadable, starting with an empty task list", "path", s.backupPath, "error", bErr)
	return snapshot{list: models.TaskList{Tasks: []models.Task{}}, source: sourceEmpty}
}

// writeAtomic writes data to a temp file beside path and renames it into place.
func (s *FileTaskStore) writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	defer func() { _ = s.fs.Remove(tmp) }()

	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmp, path, err)
	}
	return nil
}

// saveInternal writes the mutated collection. The previous generation goes to
// the backup first (best effort), then the primary is replaced atomically.
func (s *FileTaskStore) saveInternal(before snapshot, after models.TaskList) error {
	data, err := json.MarshalIndent(after, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal tasks: %w", ErrWriteFailure, err)
	}

	var prior []byte
	switch before.source {
	case sourcePrimary:
		prior = before.raw
	case sourceEmpty:
		// Both files were unreadable; replace the bad backup with the
		// recovered (empty) generation so the pair is valid again.
		prior, _ = json.MarshalIndent(before.list, "", "  ")
	case sourceMissing, sourceBackup:
		// Nothing to copy, or the backup already holds the prior generation.
	}
	if prior != nil {
		if err := s.writeAtomic(s.backupPath, prior); err != nil {
			s.logger.Warn("failed to write task backup", "path", s.backupPath, "error", err)
		}
	}

	if err := s.writeAtomic(s.filePath, data); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	return nil
}

// mutate runs fn against a fresh load under the write lock and persists the
// result when fn reports a change.
func (s *FileTaskStore) mutate(fn func(list *models.TaskList) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.loadInternal()
	after := models.TaskList{Tasks: append([]models.Task(nil), before.list.Tasks...)}

	changed, err := fn(&after)
	if err != nil || !changed {
		return err
	}
	return s.saveInternal(before, after)
}

// read runs fn against a fresh load under the read lock.
func (s *FileTaskStore) read(fn func(list models.TaskList)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.loadInternal().list)
}

func indexOf(tasks []models.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// CreateTask adds a new task to the store.
func (s *FileTaskStore) CreateTask(text, createdBy string, explicitDeadline *time.Time) (models.Task, error) {
	now := s.now().In(s.loc)

	var task models.Task
	if explicitDeadline != nil {
		task = models.NewTask(s.newID(), strings.TrimSpace(text), explicitDeadline.In(s.loc), models.PriorityNormal, createdBy, now)
	} else {
		res := dateparse.Resolve(text, now, s.loc)
		task = models.NewTask(s.newID(), res.Title, res.Deadline, res.Priority, createdBy, now)
	}

	if err := models.ValidateStruct(task); err != nil {
		return models.Task{}, fmt.Errorf("validation failed for new task: %w", err)
	}

	err := s.mutate(func(list *models.TaskList) (bool, error) {
		if indexOf(list.Tasks, task.ID) >= 0 {
			return false, fmt.Errorf("task with ID '%s' already exists", task.ID)
		}
		list.Tasks = append(list.Tasks, task)
		return true, nil
	})
	if err != nil {
		return models.Task{}, err
	}

	s.logger.Debug("task created", "id", task.ID, "deadline", task.Deadline.Format(time.RFC3339), "priority", task.Priority)
	return task, nil
}

// GetTask retrieves a task by its unique identifier.
func (s *FileTaskStore) GetTask(id string) (models.Task, error) {
	var (
		found models.Task
		ok    bool
	)
	s.read(func(list models.TaskList) {
		if i := indexOf(list.Tasks, id); i >= 0 {
			found, ok = list.Tasks[i], true
		}
	})
	if !ok {
		return models.Task{}, fmt.Errorf("task with ID %s: %w", id, ErrTaskNotFound)
	}
	return found, nil
}

// FindByShortID scans in collection order and returns the first task whose
// 8 character id prefix equals shortID (case-insensitive). Two ids sharing a
// prefix are not disambiguated.
func (s *FileTaskStore) FindByShortID(shortID string) (models.Task, error) {
	shortID = strings.TrimSpace(shortID)
	var (
		found models.Task
		ok    bool
	)
	if shortID != "" {
		s.read(func(list models.TaskList) {
			for _, t := range list.Tasks {
				if strings.EqualFold(t.ShortID(), shortID) {
					found, ok = t, true
					return
				}
			}
		})
	}
	if !ok {
		return models.Task{}, fmt.Errorf("task with short ID %q: %w", shortID, ErrTaskNotFound)
	}
	return found, nil
}

// GetTaskByIndex returns the n-th pending task ordered by deadline, 1-based.
func (s *FileTaskStore) GetTaskByIndex(index int) (models.Task, error) {
	pending, err := s.ListTasks(FilterPending)
	if err != nil {
		return models.Task{}, err
	}
	models.SortByDeadline(pending)
	if index < 1 || index > len(pending) {
		return models.Task{}, fmt.Errorf("task #%d: %w", index, ErrTaskNotFound)
	}
	return pending[index-1], nil
}

// ListTasks retrieves tasks matching the filter in collection order.
func (s *FileTaskStore) ListTasks(filter Filter) ([]models.Task, error) {
	if _, ok := ParseFilter(string(filter)); !ok {
		return nil, fmt.Errorf("unknown status filter %q", filter)
	}
	return s.collect(func(t models.Task) bool {
		return filter == FilterAll || filter == "" || string(t.Status) == string(filter)
	}), nil
}

func (s *FileTaskStore) collect(keep func(models.Task) bool) []models.Task {
	result := []models.Task{}
	s.read(func(list models.TaskList) {
		for _, t := range list.Tasks {
			if keep(t) {
				result = append(result, t)
			}
		}
	})
	return result
}

// ListDueToday returns pending tasks due in [start of local day, +1 day).
func (s *FileTaskStore) ListDueToday(now time.Time) ([]models.Task, error) {
	local := now.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, 1)
	return s.collect(func(t models.Task) bool {
		return t.IsPending() && !t.Deadline.Before(start) && t.Deadline.Before(end)
	}), nil
}

// ListUpcoming returns pending tasks due in [now, now+days], sorted by deadline.
func (s *FileTaskStore) ListUpcoming(now time.Time, days int) ([]models.Task, error) {
	horizon := now.In(s.loc).AddDate(0, 0, days)
	tasks := s.collect(func(t models.Task) bool {
		return t.IsPending() && !t.Deadline.Before(now) && !t.Deadline.After(horizon)
	})
	return models.SortByDeadline(tasks), nil
}

// update applies fn to the task with id and saves the collection.
func (s *FileTaskStore) update(id string, fn func(t *models.Task)) (models.Task, error) {
	var updated models.Task
	err := s.mutate(func(list *models.TaskList) (bool, error) {
		i := indexOf(list.Tasks, id)
		if i < 0 {
			return false, fmt.Errorf("task with ID '%s': %w", id, ErrTaskNotFound)
		}
		task := list.Tasks[i]
		fn(&task)
		if err := models.ValidateStruct(task); err != nil {
			return false, fmt.Errorf("validation failed for updated task: %w", err)
		}
		list.Tasks[i] = task
		updated = task
		return true, nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

// CompleteTask marks a task as completed. Completing an already completed task
// stamps CompletedAt again.
func (s *FileTaskStore) CompleteTask(id string) (models.Task, error) {
	now := s.now().In(s.loc)
	return s.update(id, func(t *models.Task) {
		t.Status = models.StatusCompleted
		t.CompletedAt = &now
	})
}

// DeleteTask removes a task from the store by its unique identifier.
func (s *FileTaskStore) DeleteTask(id string) (bool, error) {
	removed := false
	err := s.mutate(func(list *models.TaskList) (bool, error) {
		i := indexOf(list.Tasks, id)
		if i < 0 {
			return false, nil
		}
		list.Tasks = append(list.Tasks[:i], list.Tasks[i+1:]...)
		removed = true
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// UpdateDeadline re-resolves the deadline of a task. Only the date and time
// passes of the resolver are used; the title stays as it was.
func (s *FileTaskStore) UpdateDeadline(id, dateText string, explicitDeadline *time.Time) (models.Task, error) {
	var deadline time.Time
	if explicitDeadline != nil {
		deadline = explicitDeadline.In(s.loc)
	} else {
		deadline = dateparse.ResolveDeadline(dateText, s.now(), s.loc)
	}
	return s.update(id, func(t *models.Task) {
		t.Deadline = deadline
	})
}

// UpdateContent replaces the task title verbatim.
func (s *FileTaskStore) UpdateContent(id, title string) (models.Task, error) {
	return s.update(id, func(t *models.Task) {
		t.Title = title
	})
}

// ArchiveExpired deletes pending tasks whose deadline is before now. Despite the
// name nothing is kept: the records are gone from the collection.
func (s *FileTaskStore) ArchiveExpired(now time.Time) (int, error) {
	count := 0
	err := s.mutate(func(list *models.TaskList) (bool, error) {
		kept := list.Tasks[:0]
		for _, t := range list.Tasks {
			if t.IsPending() && t.Deadline.Before(now) {
				count++
				continue
			}
			kept = append(kept, t)
		}
		list.Tasks = kept
		return count > 0, nil
	})
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("archived expired tasks", "count", count)
	}
	return count, nil
}

// Close releases any resources held by the store. The file store holds none
// between calls.
func (s *FileTaskStore) Close() error {
	return nil
}
