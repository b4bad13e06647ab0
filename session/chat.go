// Package session keeps a conversation between generations: it feeds the stored
// pairs to the orchestrator and records each answer.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	errorspkg "github.com/sweetpotato0/chatroute/errors"
	"github.com/sweetpotato0/chatroute/generation"
	"github.com/sweetpotato0/chatroute/message"
	"github.com/sweetpotato0/chatroute/pkg/logging"
	"github.com/sweetpotato0/chatroute/websearch"
)

// ChatOption configures a Chat.
type ChatOption func(*Chat)

// WithStore persists the chat after every answered turn.
func WithStore(s Store) ChatOption {
	return func(c *Chat) {
		c.store = s
	}
}

// WithWebSearch sets the web search mode of every turn.
func WithWebSearch(mode websearch.Mode) ChatOption {
	return func(c *Chat) {
		c.webSearch = mode
	}
}

// WithLanguage sets the response language of every turn.
func WithLanguage(lang string) ChatOption {
	return func(c *Chat) {
		c.language = lang
	}
}

// WithSystemPrompt sets the system prompt of every turn.
func WithSystemPrompt(prompt string) ChatOption {
	return func(c *Chat) {
		c.systemPrompt = prompt
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ChatOption {
	return func(c *Chat) {
		if l != nil {
			c.logger = l
		}
	}
}

// Chat is one conversation bound to an orchestrator.
type Chat struct {
	mu           sync.Mutex
	record       *Record
	orch         *generation.Orchestrator
	store        Store
	webSearch    websearch.Mode
	language     string
	systemPrompt string
	logger       *slog.Logger
}

// NewChat wraps record. The record is copied.
func NewChat(record *Record, orch *generation.Orchestrator, opts ...ChatOption) *Chat {
	if record == nil {
		record = NewRecord("", "")
	}
	c := &Chat{
		record:    record.Clone(),
		orch:      orch,
		webSearch: websearch.ModeOff,
		logger:    logging.WithComponent("session"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadChat restores a chat from store; the store is kept for later saves.
func LoadChat(ctx context.Context, store Store, id string, orch *generation.Orchestrator, opts ...ChatOption) (*Chat, error) {
	record, err := store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewChat(record, orch, append([]ChatOption{WithStore(store)}, opts...)...), nil
}

// ID returns the chat identifier.
func (c *Chat) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record.ID
}

// Record returns a copy of the chat state.
func (c *Chat) Record() *Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record.Clone()
}

// Pairs returns a copy of the conversation.
func (c *Chat) Pairs() []*message.Pair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return message.ClonePairs(c.record.Pairs)
}

// Stop asks the running turn to stop; it finishes with the text generated so far.
func (c *Chat) Stop() {
	c.orch.Stop()
}

// Send asks query and appends the answered pair. A cancelled turn is kept with its
// partial answer; a failed turn leaves the chat unchanged. When saving fails the
// result is returned together with the error.
func (c *Chat) Send(ctx context.Context, query string, onUpdate func(string), files ...string) (*generation.Result, error) {
	if query == "" {
		return nil, fmt.Errorf("empty query: %w", errorspkg.ErrInvalidInput)
	}

	c.mu.Lock()
	history := message.ClonePairs(c.record.Pairs)
	c.mu.Unlock()

	pair := message.NewPair(query, "", message.WithFiles(files...))
	res, err := c.generate(ctx, append(history, pair), onUpdate)
	if err != nil {
		return nil, err
	}

	pair.Answer = res.Text
	c.mu.Lock()
	c.record.Pairs = append(c.record.Pairs, pair)
	c.mu.Unlock()

	return res, c.save(ctx)
}

// Regenerate asks the last prompt again and replaces its answer.
func (c *Chat) Regenerate(ctx context.Context, onUpdate func(string)) (*generation.Result, error) {
	c.mu.Lock()
	n := len(c.record.Pairs)
	if n == 0 {
		c.mu.Unlock()
		return nil, fmt.Errorf("chat %q has nothing to regenerate: %w", c.record.ID, errorspkg.ErrInvalidInput)
	}
	history := message.ClonePairs(c.record.Pairs)
	target := c.record.Pairs[n-1].ID
	c.mu.Unlock()

	history[n-1].Answer = ""
	res, err := c.generate(ctx, history, onUpdate)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for _, p := range c.record.Pairs {
		if p.ID == target {
			p.Answer = res.Text
		}
	}
	c.mu.Unlock()

	return res, c.save(ctx)
}

func (c *Chat) generate(ctx context.Context, pairs []*message.Pair, onUpdate func(string)) (*generation.Result, error) {
	c.mu.Lock()
	req := generation.Request{
		Pairs:        pairs,
		Selector:     c.record.Selector(),
		SystemPrompt: c.systemPrompt,
		WebSearch:    c.webSearch,
		Options:      c.record.Options.Clone(),
		Language:     c.language,
		OnUpdate:     onUpdate,
	}
	c.mu.Unlock()

	if status := c.orch.Status(); !status.Loading() {
		status.ClearStop()
	}
	return c.orch.Generate(ctx, req)
}

func (c *Chat) save(ctx context.Context) error {
	c.mu.Lock()
	c.record.UpdatedAt = time.Now()
	snapshot := c.record.Clone()
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if err := c.store.Save(ctx, snapshot); err != nil {
		c.logger.Error("failed to save chat", "chat", snapshot.ID, "error", err)
		return fmt.Errorf("save chat %s: %w", snapshot.ID, err)
	}
	return nil
}
