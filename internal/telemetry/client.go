// Package telemetry sends opt-in, anonymous bot usage events to PostHog.
// Events describe which router actions ran and which Chatwork notifications
// went out; task titles and message text are never sent.
package telemetry

import (
	"io"
	"maps"
	"runtime"
	"sync"
	"time"

	"github.com/posthog/posthog-go"
)

// Client records events. Implementations must be safe for concurrent use:
// the console, the scheduler loops and the CLI all share one.
type Client interface {
	Track(event string, properties Properties)
	Close() error
}

// Properties is a type alias for event properties.
type Properties = map[string]any

// enqueuer is the subset of the PostHog client used here.
type enqueuer interface {
	io.Closer
	Enqueue(msg posthog.Message) error
}

// ClientConfig holds configuration for initializing the telemetry client.
type ClientConfig struct {
	APIKey  string
	Version string
	// Config is the persisted state from LoadConfig.
	Config *Config
	// Endpoint overrides the PostHog host for self-hosted instances.
	Endpoint string
}

// flushInterval bounds how long a long-running serve holds queued events.
const flushInterval = 30 * time.Second

// New returns a PostHog client when telemetry is enabled and an API key is
// present, and a NoopClient otherwise.
func New(cfg ClientConfig) (Client, error) {
	if cfg.APIKey == "" || cfg.Config == nil || !cfg.Config.Enabled {
		return NewNoopClient(), nil
	}

	phConfig := posthog.Config{
		BatchSize: 10,
		Interval:  flushInterval,
		Logger:    quietPostHogLogger{},
	}
	if cfg.Endpoint != "" {
		phConfig.Endpoint = cfg.Endpoint
	}
	client, err := posthog.NewWithConfig(cfg.APIKey, phConfig)
	if err != nil {
		return nil, err
	}
	return newPostHogClient(client, cfg.Config.AnonymousID, cfg.Version), nil
}

// PostHogClient enqueues events under one anonymous install id.
type PostHogClient struct {
	enq        enqueuer
	distinctID string
	base       Properties
	closeOnce  sync.Once
	closeErr   error
}

func newPostHogClient(enq enqueuer, distinctID, version string) *PostHogClient {
	return &PostHogClient{
		enq:        enq,
		distinctID: distinctID,
		base: Properties{
			"os":                      runtime.GOOS,
			"arch":                    runtime.GOARCH,
			"bot_version":             version,
			"$process_person_profile": false,
		},
	}
}

// Track enqueues event. Enqueue failures are dropped.
func (c *PostHogClient) Track(event string, properties Properties) {
	props := posthog.NewProperties()
	maps.Copy(props, c.base)
	maps.Copy(props, properties)

	_ = c.enq.Enqueue(posthog.Capture{
		DistinctId: c.distinctID,
		Event:      event,
		Properties: props,
	})
}

// Close flushes pending events. Later calls return the first result.
func (c *PostHogClient) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.enq.Close()
	})
	return c.closeErr
}

// NoopClient is a telemetry client that does nothing.
type NoopClient struct{}

// Track is a no-op.
func (c *NoopClient) Track(string, Properties) {}

// Close is a no-op.
func (c *NoopClient) Close() error { return nil }

// NewNoopClient returns a client that does nothing.
func NewNoopClient() *NoopClient {
	return &NoopClient{}
}

type quietPostHogLogger struct{}

func (quietPostHogLogger) Debugf(string, ...interface{}) {}
func (quietPostHogLogger) Logf(string, ...interface{})   {}
func (quietPostHogLogger) Warnf(string, ...interface{})  {}
func (quietPostHogLogger) Errorf(string, ...interface{}) {}
