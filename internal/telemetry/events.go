package telemetry

import (
	"sync"
	"time"
)

// Event names.
const (
	EventCommandExecuted  = "command_executed"
	EventMessageHandled   = "message_handled"
	EventNotificationSent = "notification_sent"
	EventServeStarted     = "serve_started"
	EventServeStopped     = "serve_stopped"
)

// NotificationKind names the Chatwork message templates.
type NotificationKind string

const (
	KindNewTask  NotificationKind = "new_task"
	KindDaily    NotificationKind = "daily"
	KindDeadline NotificationKind = "deadline"
)

// TrackMessage records one router dispatch.
func TrackMessage(c Client, action string, err error, elapsed time.Duration) {
	c.Track(EventMessageHandled, Properties{
		"action":     action,
		"success":    err == nil,
		"durationMs": elapsed.Milliseconds(),
	})
}

// TrackNotification records one Chatwork send attempt.
func TrackNotification(c Client, kind NotificationKind, err error) {
	c.Track(EventNotificationSent, Properties{
		"kind":    string(kind),
		"success": err == nil,
	})
}

// Session wraps a Client for one serve run. It counts what passes through it
// and reports the totals with serve_stopped when End is called.
type Session struct {
	Client

	now   func() time.Time
	start time.Time

	mu            sync.Mutex
	messages      int
	notifications map[string]int
	failures      int
	ended         bool
}

// NewSession tracks serve_started with props and returns the session.
func NewSession(c Client, now func() time.Time, props Properties) *Session {
	if now == nil {
		now = time.Now
	}
	s := &Session{
		Client:        c,
		now:           now,
		start:         now(),
		notifications: make(map[string]int),
	}
	c.Track(EventServeStarted, props)
	return s
}

// Track counts the event and forwards it.
func (s *Session) Track(event string, properties Properties) {
	s.mu.Lock()
	switch event {
	case EventMessageHandled:
		s.messages++
	case EventNotificationSent:
		kind, _ := properties["kind"].(string)
		s.notifications[kind]++
		if ok, _ := properties["success"].(bool); !ok {
			s.failures++
		}
	}
	s.mu.Unlock()
	s.Client.Track(event, properties)
}

// End tracks serve_stopped once. It does not close the wrapped client.
func (s *Session) End() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	props := Properties{
		"uptimeSec":            int64(s.now().Sub(s.start).Seconds()),
		"messages":             s.messages,
		"notificationFailures": s.failures,
	}
	for kind, n := range s.notifications {
		props["notifications_"+kind] = n
	}
	s.mu.Unlock()
	s.Client.Track(EventServeStopped, props)
}

// Close is a no-op; the wrapped client belongs to the caller.
func (s *Session) Close() error { return nil }
