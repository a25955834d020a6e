package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/hrism/discord-chatwork-task-bot/internal/intent"
	"github.com/hrism/discord-chatwork-task-bot/internal/llm"
	"github.com/hrism/discord-chatwork-task-bot/internal/logger"
	"github.com/hrism/discord-chatwork-task-bot/internal/notify"
	"github.com/hrism/discord-chatwork-task-bot/internal/router"
	"github.com/hrism/discord-chatwork-task-bot/internal/telemetry"
	"github.com/hrism/discord-chatwork-task-bot/store"
)

var (
	// appFs backs the task file, crash logs and telemetry state. Tests swap in a MemMapFs.
	appFs afero.Fs = afero.NewOsFs()
	// nowFunc is the clock used by every command.
	nowFunc = time.Now
	// tracker receives usage events; it is a no-op unless telemetry is enabled.
	tracker telemetry.Client = telemetry.NewNoopClient()
)

func isJSON() bool {
	return viper.GetBool("json")
}

func printJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// GetStore initializes and returns the task store from the loaded config.
func GetStore() (*store.FileTaskStore, error) {
	cfg := GetConfig()
	s := store.NewFileTaskStore(
		store.WithFs(appFs),
		store.WithClock(nowFunc),
		store.WithLogger(slog.Default()),
	)

	taskFilePath := GetTaskFilePath()
	err := s.Initialize(map[string]string{
		"dataFile":   taskFilePath,
		"backupFile": GetBackupFilePath(),
		"timezone":   cfg.Timezone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store at %s: %w", taskFilePath, err)
	}
	return s, nil
}

// newChatworkClient returns the configured Chatwork client, or
// notify.ErrNotConfigured when the token or room is missing.
func newChatworkClient() (*notify.ChatworkClient, error) {
	cfg := GetConfig().Chatwork
	return notify.NewChatworkClient(notify.ChatworkConfig{
		BaseURL:    cfg.BaseURL,
		Token:      cfg.Token,
		RoomID:     cfg.RoomID,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	}, slog.Default())
}

// newNotifier falls back to logging notifications when Chatwork is not configured.
func newNotifier() notify.Notifier {
	client, err := newChatworkClient()
	if err != nil {
		slog.Debug("chatwork not configured, notifications are logged only")
		return notify.LogNotifier{Logger: slog.Default()}
	}
	return client
}

func newTracker() telemetry.Client {
	cfg := GetConfig()
	if !cfg.Telemetry.Enabled {
		return telemetry.NewNoopClient()
	}
	state, err := telemetry.LoadConfig(appFs, cfg.Data.Dir, true)
	if err != nil {
		slog.Debug("telemetry disabled", "error", err)
		return telemetry.NewNoopClient()
	}
	client, err := telemetry.New(telemetry.ClientConfig{
		APIKey:   cfg.Telemetry.APIKey,
		Version:  GetVersion(),
		Config:   state,
		Endpoint: cfg.Telemetry.Endpoint,
	})
	if err != nil {
		slog.Debug("telemetry disabled", "error", err)
		return telemetry.NewNoopClient()
	}
	return client
}

func closeTracker() {
	if err := tracker.Close(); err != nil {
		slog.Debug("telemetry close failed", "error", err)
	}
	tracker = telemetry.NewNoopClient()
}

// newClassifier returns nil when the model is disabled or cannot be built;
// the router then uses its keyword rules only.
func newClassifier(ctx context.Context) router.Classifier {
	cfg := GetConfig().LLM
	if !cfg.Enabled {
		return nil
	}
	provider, err := llm.ValidateProvider(cfg.Provider)
	if err != nil {
		slog.Warn("intent classifier disabled", "error", err)
		return nil
	}
	c, err := intent.NewFromConfig(ctx, llm.Config{
		Provider:    provider,
		Model:       cfg.ModelName,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Temperature: float32(cfg.Temperature),
		MaxTokens:   cfg.MaxTokens,
	}, slog.Default())
	if err != nil {
		slog.Debug("intent classifier disabled", "error", err)
		return nil
	}
	return c
}

// newRouter wires the router the same way for say and serve.
func newRouter(ctx context.Context, st *store.FileTaskStore, n notify.Notifier, t telemetry.Client) *router.Router {
	opts := []router.Option{
		router.WithCrashRecorder(logger.NewRecorder(appFs, GetConfig().Data.Dir, GetVersion(), slog.Default())),
		router.WithTelemetry(t),
		router.WithLocation(st.Location()),
		router.WithClock(nowFunc),
		router.WithLogger(slog.Default()),
	}
	if c := newClassifier(ctx); c != nil {
		opts = append(opts, router.WithClassifier(c))
	}
	return router.New(st, n, opts...)
}
