package session

import (
	"context"
	"time"

	"github.com/sweetpotato0/chatroute/message"
	"github.com/sweetpotato0/chatroute/provider"
)

// Store defines the interface for chat storage backends that operate on
// serializable chat records.
type Store interface {
	Save(ctx context.Context, record *Record) error
	// Load fails with an error wrapping errors.ErrNotFound for unknown ids.
	Load(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// Record is the persisted form of a chat.
type Record struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
	// Provider is the registry identifier; empty means the registry default.
	Provider string `json:"provider,omitempty" bson:"provider,omitempty"`
	// Preset replaces Provider as the selector when set.
	Preset    *provider.Preset `json:"preset,omitempty" bson:"preset,omitempty"`
	Options   provider.Options `json:"options,omitempty" bson:"options,omitempty"`
	Pairs     []*message.Pair  `json:"pairs" bson:"pairs"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" bson:"updated_at"`
}

// NewRecord creates an empty record.
func NewRecord(id, name string) *Record {
	now := time.Now()
	return &Record{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Selector returns the provider selector stored with the chat.
func (r *Record) Selector() provider.Selector {
	if r.Preset != nil {
		return provider.ByPreset(r.Preset)
	}
	return provider.ByID(r.Provider)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cloned := *r
	if r.Preset != nil {
		preset := *r.Preset
		preset.Options = r.Preset.Options.Clone()
		cloned.Preset = &preset
	}
	cloned.Options = r.Options.Clone()
	cloned.Pairs = message.ClonePairs(r.Pairs)
	return &cloned
}
