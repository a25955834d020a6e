// Package intent turns a free-form chat message into a structured command
// using a chat model. It is optional: the router falls back to its keyword
// rules whenever classification fails.
package intent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/hrism/discord-chatwork-task-bot/internal/llm"
	"github.com/hrism/discord-chatwork-task-bot/internal/utils"
)

// Action is what the user wants the bot to do.
type Action string

const (
	ActionList     Action = "list"
	ActionToday    Action = "today"
	ActionHelp     Action = "help"
	ActionComplete Action = "complete"
	ActionDelete   Action = "delete"
	ActionEdit     Action = "edit"
	ActionUpdate   Action = "update"
	ActionAdd      Action = "add"
)

var (
	// ErrUnknownAction is returned when the model answers with an action outside the known set.
	ErrUnknownAction = errors.New("unknown intent action")
	// ErrMissingTaskID is returned when an action that targets a task carries no usable id.
	ErrMissingTaskID = errors.New("intent requires a task id")
)

var shortIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}$`)

// Intent is the structured reading of one message.
type Intent struct {
	Action   Action  `json:"action"`
	TaskID   *string `json:"taskId"`
	Content  *string `json:"content"`
	DateText *string `json:"dateText"`
}

// NeedsTask reports whether the action operates on an existing task.
func (a Action) NeedsTask() bool {
	switch a {
	case ActionComplete, ActionDelete, ActionEdit, ActionUpdate:
		return true
	}
	return false
}

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionList, ActionToday, ActionHelp, ActionComplete, ActionDelete, ActionEdit, ActionUpdate, ActionAdd:
		return true
	}
	return false
}

// StringOr returns the dereferenced value of p, or def when p is nil or blank.
func StringOr(p *string, def string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return def
	}
	return strings.TrimSpace(*p)
}

// Classifier asks a chat model for the intent of a message.
type Classifier struct {
	chatModel   model.BaseChatModel
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

// NewClassifier wraps an existing chat model.
func NewClassifier(chatModel model.BaseChatModel, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		chatModel:   chatModel,
		temperature: llm.DefaultTemperature,
		maxTokens:   llm.DefaultMaxTokens,
		logger:      logger,
	}
}

// NewFromConfig builds the chat model for cfg and wraps it.
func NewFromConfig(ctx context.Context, cfg llm.Config, logger *slog.Logger) (*Classifier, error) {
	chatModel, err := llm.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	c := NewClassifier(chatModel, logger)
	if cfg.Temperature > 0 {
		c.temperature = cfg.Temperature
	}
	if cfg.MaxTokens > 0 {
		c.maxTokens = cfg.MaxTokens
	}
	return c, nil
}

// Classify returns the intent of message. Any error means the caller should
// use its own rules instead.
func (c *Classifier) Classify(ctx context.Context, message string) (*Intent, error) {
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(message),
	}

	resp, err := c.chatModel.Generate(ctx, messages,
		model.WithTemperature(c.temperature),
		model.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("LLM generate: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("LLM generate: empty response")
	}

	parsed, err := utils.ExtractAndParseJSON[Intent](resp.Content)
	if err != nil {
		return nil, err
	}
	parsed.Action = Action(strings.ToLower(strings.TrimSpace(string(parsed.Action))))
	if err := parsed.validate(); err != nil {
		return nil, err
	}

	c.logger.Debug("intent classified",
		"action", parsed.Action,
		"taskId", StringOr(parsed.TaskID, ""),
		"dateText", StringOr(parsed.DateText, ""))
	return &parsed, nil
}

func (i *Intent) validate() error {
	if !i.Action.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, i.Action)
	}
	if i.Action.NeedsTask() && !shortIDPattern.MatchString(StringOr(i.TaskID, "")) {
		return fmt.Errorf("%w: action %s", ErrMissingTaskID, i.Action)
	}
	return nil
}
