package message

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Pair is a stored prompt/answer unit of a conversation. A sequence of pairs is the
// durable conversation representation; it is flattened into Messages before it is
// sent to a provider.
type Pair struct {
	ID        string         `json:"id"`
	Prompt    string         `json:"prompt"`
	Answer    string         `json:"answer"`
	Files     []string       `json:"files,omitempty"`
	Visible   bool           `json:"visible"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// PairOption configures a Pair at construction.
type PairOption func(*Pair)

// Hidden marks the pair as not rendered in history (system priming pairs).
func Hidden() PairOption {
	return func(p *Pair) {
		p.Visible = false
	}
}

// WithFiles attaches file references to the prompt half.
func WithFiles(files ...string) PairOption {
	return func(p *Pair) {
		p.Files = slices.Clone(files)
	}
}

// WithMetadata sets a metadata entry.
func WithMetadata(key string, value any) PairOption {
	return func(p *Pair) {
		if p.Metadata == nil {
			p.Metadata = make(map[string]any)
		}
		p.Metadata[key] = value
	}
}

// NewPair creates a visible pair. An empty answer means the prompt is still unanswered.
func NewPair(prompt, answer string, opts ...PairOption) *Pair {
	p := &Pair{
		ID:        uuid.NewString(),
		Prompt:    prompt,
		Answer:    answer,
		Visible:   true,
		CreatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Answered reports whether the pair carries an answer.
func (p *Pair) Answered() bool {
	return p.Answer != ""
}

// Messages expands the pair into its prompt message followed by its answer, if any.
func (p *Pair) Messages() []Message {
	msgs := []Message{NewMessage(RoleUser, p.Prompt, p.Files...)}
	if p.Answered() {
		msgs = append(msgs, NewMessage(RoleAssistant, p.Answer))
	}
	return msgs
}

// Clone creates a deep copy of the pair.
func (p *Pair) Clone() *Pair {
	if p == nil {
		return nil
	}
	cloned := *p
	cloned.Files = slices.Clone(p.Files)
	if p.Metadata != nil {
		cloned.Metadata = maps.Clone(p.Metadata)
	}
	return &cloned
}

// ClonePairs copies a slice of pairs.
func ClonePairs(pairs []*Pair) []*Pair {
	if len(pairs) == 0 {
		return nil
	}
	clones := make([]*Pair, 0, len(pairs))
	for _, p := range pairs {
		clones = append(clones, p.Clone())
	}
	return clones
}

// Flatten expands pairs in order into prompt-then-answer messages. Nil pairs are skipped.
func Flatten(pairs []*Pair) []Message {
	msgs := make([]Message, 0, 2*len(pairs))
	for _, p := range pairs {
		if p == nil {
			continue
		}
		msgs = append(msgs, p.Messages()...)
	}
	return msgs
}

// BuildContext flattens pairs and, when query is not empty, appends it as a final
// user message. A separate query is used when regenerating from stored history.
func BuildContext(pairs []*Pair, query string) []Message {
	msgs := Flatten(pairs)
	if query != "" {
		msgs = append(msgs, NewMessage(RoleUser, query))
	}
	return msgs
}
