// Package chat connects a line-oriented text stream to the message router.
// The console adapter stands in for a chat platform client: every input line
// is one message and every reply is written back to the output.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/hrism/discord-chatwork-task-bot/internal/router"
)

// Handler processes one message.
type Handler interface {
	Handle(ctx context.Context, msg router.Message) (router.Reply, error)
}

// Console reads messages from in and writes replies to out.
type Console struct {
	in       io.Reader
	out      io.Writer
	authorID string
	prompt   string
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Option configures a Console.
type Option func(*Console)

// WithPrompt prints p before each read.
func WithPrompt(p string) Option {
	return func(c *Console) { c.prompt = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Console) { c.logger = l }
}

// NewConsole creates a console adapter. authorID is recorded as the creator
// of tasks added through it.
func NewConsole(in io.Reader, out io.Writer, authorID string, opts ...Option) *Console {
	c := &Console{
		in:       in,
		out:      out,
		authorID: authorID,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run delivers lines to h until the input ends, ctx is cancelled or Stop is
// called. Handler errors are logged; the reply is still written.
func (c *Console) Run(ctx context.Context, h Handler) error {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	c.showPrompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}
			c.handleLine(ctx, h, line)
			c.showPrompt()
		}
	}
}

// Stop ends a running Run.
func (c *Console) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Console) handleLine(ctx context.Context, h Handler, line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	reply, err := h.Handle(ctx, router.Message{AuthorID: c.authorID, Content: line})
	if err != nil {
		c.logger.Warn("message failed", "action", reply.Action, "error", err)
	}
	if reply.Text != "" {
		_, _ = fmt.Fprintln(c.out, reply.Text)
	}
}

func (c *Console) showPrompt() {
	if c.prompt != "" {
		_, _ = fmt.Fprint(c.out, c.prompt)
	}
}
