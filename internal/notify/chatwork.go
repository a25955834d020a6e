package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultChatworkBaseURL is the public Chatwork v2 API root.
const DefaultChatworkBaseURL = "https://api.chatwork.com/v2"

// Retry defaults for a single Send.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
)

// ErrNotConfigured is returned when the client lacks a token or room id.
var ErrNotConfigured = errors.New("chatwork client is not configured")

// Notifier delivers a rendered message to the team channel.
type Notifier interface {
	Send(ctx context.Context, body string) error
}

// ChatworkConfig holds configuration for the Chatwork client.
type ChatworkConfig struct {
	// BaseURL is the API root (default: https://api.chatwork.com/v2)
	BaseURL string

	Token  string
	RoomID string

	// MaxRetries is the total number of attempts per message (default: 3)
	MaxRetries int

	// RetryDelay is the pause between attempts (default: 2s)
	RetryDelay time.Duration

	// Timeout for each HTTP request (default: 30s)
	Timeout time.Duration
}

// ChatworkClient posts messages to one Chatwork room.
type ChatworkClient struct {
	baseURL    string
	token      string
	roomID     string
	maxRetries int
	retryDelay time.Duration
	client     *http.Client
	logger     *slog.Logger
}

// NewChatworkClient creates a new Chatwork client.
func NewChatworkClient(cfg ChatworkConfig, logger *slog.Logger) (*ChatworkClient, error) {
	if cfg.Token == "" || cfg.RoomID == "" {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultChatworkBaseURL
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ChatworkClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		roomID:     cfg.RoomID,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

// Send posts body to the room, retrying failed attempts after RetryDelay.
func (c *ChatworkClient) Send(ctx context.Context, body string) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		lastErr = c.post(ctx, body)
		if lastErr == nil {
			return nil
		}
		c.logger.Warn("chatwork send failed",
			"attempt", attempt,
			"maxRetries", c.maxRetries,
			"error", lastErr)

		if attempt == c.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
	return fmt.Errorf("chatwork send failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *ChatworkClient) post(ctx context.Context, body string) error {
	form := url.Values{"body": {body}}
	endpoint := fmt.Sprintf("%s/rooms/%s/messages", c.baseURL, url.PathEscape(c.roomID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-ChatWorkToken", c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("chatwork returned status %d: %s", resp.StatusCode, string(respBody))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type meResponse struct {
	AccountID int    `json:"account_id"`
	Name      string `json:"name"`
}

// Ping checks the token against GET /me and returns the account name.
func (c *ChatworkClient) Ping(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-ChatWorkToken", c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("chatwork returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var me meResponse
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return me.Name, nil
}

// LogNotifier writes messages to the logger instead of a chat room. It is
// used when no Chatwork credentials are configured.
type LogNotifier struct {
	Logger *slog.Logger
}

// Send implements Notifier.
func (n LogNotifier) Send(_ context.Context, body string) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification", "body", body)
	return nil
}
