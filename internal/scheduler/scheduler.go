// Package scheduler sends the morning digest and the one-hour deadline
// reminders on wall-clock schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hrism/discord-chatwork-task-bot/internal/dateparse"
	"github.com/hrism/discord-chatwork-task-bot/internal/notify"
	"github.com/hrism/discord-chatwork-task-bot/internal/telemetry"
	"github.com/hrism/discord-chatwork-task-bot/internal/utils"
	"github.com/hrism/discord-chatwork-task-bot/models"
	"github.com/hrism/discord-chatwork-task-bot/store"
)

// Reminder window: a task is announced once, on the hourly check that finds
// its deadline in (now+60m, now+70m].
const (
	ReminderLead   = 60 * time.Minute
	ReminderWindow = 10 * time.Minute
)

// logTitleLen caps task titles in log lines.
const logTitleLen = 40

// TaskSource is the part of the store the jobs read from.
type TaskSource interface {
	ListTasks(filter store.Filter) ([]models.Task, error)
	ListDueToday(now time.Time) ([]models.Task, error)
	ListUpcoming(now time.Time, days int) ([]models.Task, error)
}

// Config holds scheduler settings.
type Config struct {
	MorningHour  int
	UpcomingDays int
	Location     *time.Location
}

// Scheduler runs the daily and hourly jobs until stopped.
type Scheduler struct {
	tasks    TaskSource
	notifier notify.Notifier
	tracker  telemetry.Client
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger

	morningHour  atomic.Int32
	upcomingDays int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	dailyRuns     atomic.Int64
	remindersSent atomic.Int64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithTelemetry records each notification attempt.
func WithTelemetry(c telemetry.Client) Option {
	return func(s *Scheduler) { s.tracker = c }
}

// New creates a scheduler. It does nothing until Start is called.
func New(tasks TaskSource, notifier notify.Notifier, cfg Config, opts ...Option) *Scheduler {
	s := &Scheduler{
		tasks:        tasks,
		notifier:     notifier,
		tracker:      telemetry.NewNoopClient(),
		loc:          cfg.Location,
		now:          time.Now,
		logger:       slog.Default(),
		upcomingDays: cfg.UpcomingDays,
	}
	if s.loc == nil {
		s.loc = dateparse.DefaultLocation()
	}
	if s.upcomingDays <= 0 {
		s.upcomingDays = 3
	}
	s.morningHour.Store(int32(clampHour(cfg.MorningHour)))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func clampHour(h int) int {
	if h < 0 || h > 23 {
		return 8
	}
	return h
}

// SetMorningHour changes the digest hour. It takes effect from the next
// scheduled run.
func (s *Scheduler) SetMorningHour(h int) {
	s.morningHour.Store(int32(clampHour(h)))
}

// MorningHour returns the current digest hour.
func (s *Scheduler) MorningHour() int {
	return int(s.morningHour.Load())
}

// Start launches the job loops.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	s.running = true

	subCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(2)
	go s.loop(subCtx, "daily", func(now time.Time) time.Time {
		return NextDaily(now, s.MorningHour(), s.loc)
	}, s.runDaily)
	go s.loop(subCtx, "deadline", NextHourly, s.runHourly)

	s.logger.Info("scheduler started",
		"morningHour", s.MorningHour(),
		"timezone", s.loc.String())
	return nil
}

// Stop cancels the loops and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped",
		"dailyRuns", s.dailyRuns.Load(),
		"remindersSent", s.remindersSent.Load())
}

func (s *Scheduler) loop(ctx context.Context, name string, next func(time.Time) time.Time, job func(context.Context)) {
	defer s.wg.Done()
	var last time.Time
	for {
		fireAt := nextFire(next, s.now(), last)
		last = fireAt
		timer := time.NewTimer(fireAt.Sub(s.now()))
		s.logger.Debug("job scheduled", "job", name, "at", fireAt)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			job(ctx)
		}
	}
}

func (s *Scheduler) runDaily(ctx context.Context) {
	if err := s.RunDailyNow(ctx); err != nil {
		s.logger.Error("daily notification failed", "error", err)
	}
}

func (s *Scheduler) runHourly(ctx context.Context) {
	if _, err := s.CheckDeadlines(ctx); err != nil {
		s.logger.Error("deadline check failed", "error", err)
	}
}

// RunDailyNow sends the digest of today's and upcoming tasks immediately.
func (s *Scheduler) RunDailyNow(ctx context.Context) error {
	now := s.now()
	today, err := s.tasks.ListDueToday(now)
	if err != nil {
		return fmt.Errorf("list today: %w", err)
	}
	upcoming, err := s.tasks.ListUpcoming(now, s.upcomingDays)
	if err != nil {
		return fmt.Errorf("list upcoming: %w", err)
	}

	err = s.notifier.Send(ctx, notify.FormatDaily(now, today, upcoming, s.loc))
	telemetry.TrackNotification(s.tracker, telemetry.KindDaily, err)
	if err != nil {
		return fmt.Errorf("send daily: %w", err)
	}
	s.dailyRuns.Add(1)
	s.logger.Info("daily notification sent", "today", len(today), "upcoming", len(upcoming))
	return nil
}

// CheckDeadlines sends a reminder for every pending task due in
// (now+60m, now+70m] and returns how many were sent. A failed send is logged
// and does not stop the others.
func (s *Scheduler) CheckDeadlines(ctx context.Context) (int, error) {
	pending, err := s.tasks.ListTasks(store.FilterPending)
	if err != nil {
		return 0, fmt.Errorf("list pending: %w", err)
	}

	now := s.now()
	from := now.Add(ReminderLead)
	to := from.Add(ReminderWindow)

	sent := 0
	for _, task := range pending {
		if !task.Deadline.After(from) || task.Deadline.After(to) {
			continue
		}
		err := s.notifier.Send(ctx, notify.FormatDeadline(task, s.loc))
		telemetry.TrackNotification(s.tracker, telemetry.KindDeadline, err)
		if err != nil {
			s.logger.Error("deadline notification failed", "task", task.ShortID(), "error", err)
			continue
		}
		sent++
		s.logger.Info("deadline notification sent", "task", task.ShortID(), "title", utils.Truncate(task.Title, logTitleLen))
	}
	s.remindersSent.Add(int64(sent))
	return sent, nil
}

// nextFire returns next(now), moved past last when the wall clock has stepped
// back far enough to yield a slot that already fired.
func nextFire(next func(time.Time) time.Time, now, last time.Time) time.Time {
	fireAt := next(now)
	if !last.IsZero() && !fireAt.After(last) {
		fireAt = next(last)
	}
	return fireAt
}

// NextDaily returns the next instant strictly after now at hour:00 in loc.
func NextDaily(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, 0, 0, 0, loc)
	}
	return next
}

// NextHourly returns the next top of the hour strictly after now. Zones with
// a fractional-hour offset fire on the UTC hour.
func NextHourly(now time.Time) time.Time {
	return now.Truncate(time.Hour).Add(time.Hour)
}
