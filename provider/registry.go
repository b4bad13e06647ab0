package provider

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	errorspkg "github.com/sweetpotato0/chatroute/errors"
)

// DefaultContextTokens is used when an Info leaves ContextTokens unset.
const DefaultContextTokens = 8000

// Info is the resolved description of a provider for one request. It is derived once
// per request and not mutated afterwards; Resolve hands out copies.
type Info struct {
	// ID is the registry identifier, e.g. "openai/gpt-4o-mini".
	ID string
	// Name is the display name and the identity used by response normalization.
	Name     string
	Provider Provider
	// Stream is set when Invoke returns fragments. A non-streaming provider that
	// returns fragments is malformed.
	Stream bool
	// NativeWebSearch is set when the backend searches the web on its own.
	NativeWebSearch bool
	// ReplaceFragments is set when every fragment is the complete text so far
	// rather than a delta.
	ReplaceFragments bool
	// CustomStream is set when the backend calls Callbacks.StreamUpdate itself.
	// Only such a backend may return Handled.
	CustomStream bool
	// ContextTokens is the prompt budget used for truncation.
	ContextTokens int
	// Options holds the provider defaults, merged with preset options once a
	// preset has been applied.
	Options Options
}

// IsStreaming reports whether the provider streams.
func (i Info) IsStreaming() bool { return i.Stream }

// SupportsNativeWebSearch reports whether the provider searches the web itself.
func (i Info) SupportsNativeWebSearch() bool { return i.NativeWebSearch }

// Budget returns the truncation budget in tokens.
func (i Info) Budget() int {
	if i.ContextTokens > 0 {
		return i.ContextTokens
	}
	return DefaultContextTokens
}

// MergeOptions overlays per-call options over the resolved ones.
func (i Info) MergeOptions(call Options) Options {
	return MergeOptions(i.Options, call)
}

func (i Info) clone() Info {
	i.Options = i.Options.Clone()
	return i
}

// Registry maps identifiers to provider descriptions.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Info
	fallback  string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Info),
	}
}

// Register adds a provider description. The first registered provider becomes the
// default until SetDefault is called.
func (r *Registry) Register(info Info) error {
	if info.ID == "" {
		return fmt.Errorf("provider id cannot be empty: %w", errorspkg.ErrInvalidInput)
	}
	if info.Provider == nil {
		return fmt.Errorf("provider %s has no invocation capability: %w", info.ID, errorspkg.ErrInvalidInput)
	}
	if info.Name == "" {
		info.Name = info.ID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[info.ID]; exists {
		return fmt.Errorf("provider %s: %w", info.ID, errorspkg.ErrAlreadyExists)
	}
	r.providers[info.ID] = info.clone()
	if r.fallback == "" {
		r.fallback = info.ID
	}
	return nil
}

// MustRegister is Register that panics on error, for static wiring.
func (r *Registry) MustRegister(infos ...Info) *Registry {
	for _, info := range infos {
		if err := r.Register(info); err != nil {
			panic(err)
		}
	}
	return r
}

// SetDefault changes the default provider.
func (r *Registry) SetDefault(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[id]; !ok {
		return fmt.Errorf("provider %q: %w", id, errorspkg.ErrUnknownProvider)
	}
	r.fallback = id
	return nil
}

// Default returns the default provider identifier.
func (r *Registry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

// Resolve returns a fresh Info for id. An empty id resolves the default provider.
func (r *Registry) Resolve(id string) (Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id == "" {
		id = r.fallback
	}
	info, ok := r.providers[id]
	if !ok {
		return Info{}, fmt.Errorf("provider %q: %w", id, errorspkg.ErrUnknownProvider)
	}
	return info.clone(), nil
}

// Select resolves a selector, applying the preset option layer when present.
func (r *Registry) Select(sel Selector) (Info, error) {
	if sel.Preset == nil {
		return r.Resolve(sel.ID)
	}
	info, err := r.Resolve(sel.Preset.Provider)
	if err != nil {
		return Info{}, err
	}
	info.Options = MergeOptions(info.Options, sel.Preset.LayerOptions())
	return info, nil
}

// IsStreaming reports whether id streams; unknown ids report false.
func (r *Registry) IsStreaming(id string) bool {
	info, err := r.Resolve(id)
	return err == nil && info.Stream
}

// SupportsNativeWebSearch reports whether id searches natively; unknown ids report false.
func (r *Registry) SupportsNativeWebSearch(id string) bool {
	info, err := r.Resolve(id)
	return err == nil && info.NativeWebSearch
}

// List returns all registered providers ordered by identifier.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.providers))
	for _, info := range r.providers {
		infos = append(infos, info.clone())
	}
	slices.SortFunc(infos, func(a, b Info) int {
		return strings.Compare(a.ID, b.ID)
	})
	return infos
}

// Selector picks a provider either by identifier or through a preset.
type Selector struct {
	ID     string
	Preset *Preset
}

// ByID selects a provider by registry identifier.
func ByID(id string) Selector {
	return Selector{ID: id}
}

// ByPreset selects the provider named by a preset and layers its options.
func ByPreset(p *Preset) Selector {
	return Selector{Preset: p}
}

// String renders the selector for logs.
func (s Selector) String() string {
	if s.Preset != nil {
		return fmt.Sprintf("preset:%s(%s)", s.Preset.Name, s.Preset.Provider)
	}
	return s.ID
}
