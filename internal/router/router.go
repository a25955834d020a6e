// Package router maps inbound chat messages to task store operations and
// renders the reply text.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/hrism/discord-chatwork-task-bot/internal/dateparse"
	"github.com/hrism/discord-chatwork-task-bot/internal/intent"
	"github.com/hrism/discord-chatwork-task-bot/internal/logger"
	"github.com/hrism/discord-chatwork-task-bot/internal/notify"
	"github.com/hrism/discord-chatwork-task-bot/internal/telemetry"
	"github.com/hrism/discord-chatwork-task-bot/internal/utils"
	"github.com/hrism/discord-chatwork-task-bot/models"
	"github.com/hrism/discord-chatwork-task-bot/store"
)

// Fixed replies.
const (
	ReplyError        = "エラーが発生しました。もう一度お試しください。"
	ReplyNotFound     = "指定されたIDのタスクが見つかりません。"
	ReplyAddFailed    = "タスクの登録に失敗しました。日付の形式を確認してください。"
	ReplyDeleteFailed = "タスクの削除に失敗しました。"
)

// logMessageLen caps message text in log lines.
const logMessageLen = 40

// shortIDPattern finds the first 8-hex run anywhere in a message.
var shortIDPattern = regexp.MustCompile(`(?i)[a-f0-9]{8}`)

// updateNoise is stripped from a reschedule message to leave the date text.
var updateNoise = regexp.MustCompile(`変更|を|に`)

// Message is one inbound chat message.
type Message struct {
	AuthorID string
	Content  string
}

// Reply is the text to send back and the action that produced it.
type Reply struct {
	Action intent.Action
	Text   string
}

// Classifier is the optional model-backed intent detector.
type Classifier interface {
	Classify(ctx context.Context, message string) (*intent.Intent, error)
}

// Router dispatches messages. It is safe for concurrent use when the store is.
type Router struct {
	store      store.TaskStore
	notifier   notify.Notifier
	classifier Classifier
	crash      *logger.Recorder
	tracker    telemetry.Client
	loc        *time.Location
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithClassifier runs c before the keyword rules.
func WithClassifier(c Classifier) Option {
	return func(r *Router) { r.classifier = c }
}

// WithCrashRecorder records panics raised while handling a message.
func WithCrashRecorder(rec *logger.Recorder) Option {
	return func(r *Router) { r.crash = rec }
}

// WithTelemetry reports one event per handled message.
func WithTelemetry(c telemetry.Client) Option {
	return func(r *Router) { r.tracker = c }
}

// WithLocation sets the zone used to render deadlines.
func WithLocation(loc *time.Location) Option {
	return func(r *Router) { r.loc = loc }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// New creates a router over st. Notices about new tasks go to n.
func New(st store.TaskStore, n notify.Notifier, opts ...Option) *Router {
	r := &Router{
		store:    st,
		notifier: n,
		tracker:  telemetry.NewNoopClient(),
		loc:      dateparse.DefaultLocation(),
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle processes one message. The returned Reply is always sendable; a
// non-nil error reports the failure behind an error reply.
func (r *Router) Handle(ctx context.Context, msg Message) (reply Reply, err error) {
	content := strings.TrimSpace(msg.Content)
	if r.crash != nil {
		defer r.crash.Recover("router", content, func(string) {
			reply = Reply{Text: ReplyError}
			err = fmt.Errorf("panic while handling message")
		})
	}

	start := r.now()
	reply, err = r.dispatch(ctx, msg.AuthorID, content)
	if err != nil {
		r.logger.Error("message handling failed",
			"action", reply.Action,
			"message", utils.Truncate(content, logMessageLen),
			"error", err)
	}
	telemetry.TrackMessage(r.tracker, string(reply.Action), err, r.now().Sub(start))
	return reply, err
}

func (r *Router) dispatch(ctx context.Context, author, content string) (Reply, error) {
	if r.classifier != nil {
		in, err := r.classifier.Classify(ctx, content)
		if err == nil && in != nil {
			return r.dispatchIntent(ctx, author, content, in)
		}
		r.logger.Debug("classifier unavailable, using keyword rules", "error", err)
	}
	return r.dispatchRules(ctx, author, content)
}

// dispatchRules applies the keyword rules in order; the first match wins.
func (r *Router) dispatchRules(ctx context.Context, author, content string) (Reply, error) {
	switch {
	case content == "リスト" || content == "一覧":
		return r.list()
	case content == "今日":
		return r.today()
	case content == "ヘルプ" || content == "help":
		return Reply{Action: intent.ActionHelp, Text: HelpText}, nil
	}

	shortID := shortIDPattern.FindString(content)
	switch {
	case shortID != "" && strings.Contains(content, "削除"):
		return r.delete(shortID)
	case shortID != "" && strings.Contains(content, "完了"):
		return r.complete(shortID)
	case shortID != "" && strings.Contains(content, "変更"):
		dateText := strings.Replace(content, shortID, "", 1)
		dateText = strings.TrimSpace(updateNoise.ReplaceAllString(dateText, ""))
		return r.updateDeadline(shortID, dateText)
	}
	return r.add(ctx, author, content)
}

func (r *Router) dispatchIntent(ctx context.Context, author, content string, in *intent.Intent) (Reply, error) {
	shortID := intent.StringOr(in.TaskID, "")
	switch in.Action {
	case intent.ActionList:
		return r.list()
	case intent.ActionToday:
		return r.today()
	case intent.ActionHelp:
		return Reply{Action: intent.ActionHelp, Text: HelpText}, nil
	case intent.ActionDelete:
		return r.delete(shortID)
	case intent.ActionComplete:
		return r.complete(shortID)
	case intent.ActionUpdate:
		return r.updateDeadline(shortID, intent.StringOr(in.DateText, ""))
	case intent.ActionEdit:
		return r.edit(shortID, intent.StringOr(in.Content, ""))
	default:
		return r.add(ctx, author, content)
	}
}

func (r *Router) list() (Reply, error) {
	tasks, err := r.store.ListTasks(store.FilterPending)
	if err != nil {
		return Reply{Action: intent.ActionList, Text: ReplyError}, err
	}
	models.SortByDeadline(tasks)
	return Reply{
		Action: intent.ActionList,
		Text:   "**タスク一覧**\n```\n" + notify.FormatTaskList(tasks, r.loc) + "\n```",
	}, nil
}

func (r *Router) today() (Reply, error) {
	tasks, err := r.store.ListDueToday(r.now())
	if err != nil {
		return Reply{Action: intent.ActionToday, Text: ReplyError}, err
	}
	return Reply{
		Action: intent.ActionToday,
		Text:   "**今日のタスク**\n```\n" + notify.FormatTaskList(tasks, r.loc) + "\n```",
	}, nil
}

// lookup resolves a short id. A miss yields the not-found reply and no error.
func (r *Router) lookup(action intent.Action, shortID string) (models.Task, *Reply, error) {
	task, err := r.store.FindByShortID(shortID)
	if errors.Is(err, store.ErrTaskNotFound) {
		return models.Task{}, &Reply{Action: action, Text: ReplyNotFound}, nil
	}
	if err != nil {
		return models.Task{}, &Reply{Action: action, Text: ReplyError}, err
	}
	return task, nil, nil
}

func (r *Router) delete(shortID string) (Reply, error) {
	task, miss, err := r.lookup(intent.ActionDelete, shortID)
	if miss != nil {
		return *miss, err
	}
	deleted, err := r.store.DeleteTask(task.ID)
	if err != nil {
		return Reply{Action: intent.ActionDelete, Text: ReplyError}, err
	}
	if !deleted {
		return Reply{Action: intent.ActionDelete, Text: ReplyDeleteFailed}, nil
	}
	r.logger.Info("task deleted", "task", task.ShortID())
	return Reply{Action: intent.ActionDelete, Text: "✅ タスクを削除しました: " + task.Title}, nil
}

func (r *Router) complete(shortID string) (Reply, error) {
	task, miss, err := r.lookup(intent.ActionComplete, shortID)
	if miss != nil {
		return *miss, err
	}
	if _, err := r.store.CompleteTask(task.ID); err != nil {
		return Reply{Action: intent.ActionComplete, Text: ReplyError}, err
	}
	r.logger.Info("task completed", "task", task.ShortID())
	return Reply{Action: intent.ActionComplete, Text: "✅ タスクを完了しました: " + task.Title}, nil
}

func (r *Router) updateDeadline(shortID, dateText string) (Reply, error) {
	task, miss, err := r.lookup(intent.ActionUpdate, shortID)
	if miss != nil {
		return *miss, err
	}
	if dateText == "" {
		return Reply{
			Action: intent.ActionUpdate,
			Text:   fmt.Sprintf("新しい日付を指定してください。\n例: `%s 10/25` または `%s 明日`", shortID, shortID),
		}, nil
	}
	updated, err := r.store.UpdateDeadline(task.ID, dateText, nil)
	if err != nil {
		return Reply{Action: intent.ActionUpdate, Text: ReplyError}, err
	}
	return Reply{
		Action: intent.ActionUpdate,
		Text: fmt.Sprintf("✅ タスクの期限を変更しました: %s\n新しい期限: %s",
			updated.Title, notify.FormatLong(updated.Deadline, r.loc)),
	}, nil
}

func (r *Router) edit(shortID, content string) (Reply, error) {
	task, miss, err := r.lookup(intent.ActionEdit, shortID)
	if miss != nil {
		return *miss, err
	}
	if content == "" {
		return Reply{
			Action: intent.ActionEdit,
			Text:   fmt.Sprintf("新しいタスク内容を指定してください。\n例: `%s 編集 資料作成`", shortID),
		}, nil
	}
	updated, err := r.store.UpdateContent(task.ID, content)
	if err != nil {
		return Reply{Action: intent.ActionEdit, Text: ReplyError}, err
	}
	return Reply{Action: intent.ActionEdit, Text: "✅ タスクの内容を変更しました: " + updated.Title}, nil
}

func (r *Router) add(ctx context.Context, author, content string) (Reply, error) {
	task, err := r.store.CreateTask(content, author, nil)
	if err != nil {
		return Reply{Action: intent.ActionAdd, Text: ReplyAddFailed}, err
	}

	text := fmt.Sprintf("✅ タスクを登録しました!\nタスクID: %s\nタスク: %s\n期限: %s",
		task.ShortID(), task.Title, notify.FormatLong(task.Deadline, r.loc))

	if r.notifier != nil {
		err := r.notifier.Send(ctx, notify.FormatNewTask(task, r.loc))
		if err != nil {
			r.logger.Error("new task notification failed", "task", task.ShortID(), "error", err)
		}
		telemetry.TrackNotification(r.tracker, telemetry.KindNewTask, err)
	}
	return Reply{Action: intent.ActionAdd, Text: text}, nil
}
