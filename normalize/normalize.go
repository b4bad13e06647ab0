// Package normalize cleans provider-specific artifacts out of generated text.
//
// Rules are data: a pattern and what to do with a match. Normalize applies a
// provider's rules repeatedly until the text stops changing, so the result is a fixed
// point and normalizing twice equals normalizing once.
package normalize

import (
	"regexp"
	"sync"
)

// Action is what a rule does with its match.
type Action int

const (
	// Remove deletes every match.
	Remove Action = iota
	// KeepAfter discards the first match and everything before it.
	KeepAfter
)

// Rule is one pattern/action entry.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Action  Action
}

// apply runs the rule once. Every change strictly shortens text.
func (r Rule) apply(text string) string {
	switch r.Action {
	case KeepAfter:
		loc := r.Pattern.FindStringIndex(text)
		if loc == nil {
			return text
		}
		return text[loc[1]:]
	default:
		return r.Pattern.ReplaceAllString(text, "")
	}
}

// Blackbox banners: "$@$v=v1.13$@$" version tags and a "$~~~$[...]$~~~$" sources block
// that precedes the answer.
var (
	BlackboxVersion = Rule{
		Name:    "blackbox-version",
		Pattern: regexp.MustCompile(`\$@\$v=.{1,30}\$@\$`),
		Action:  Remove,
	}
	BlackboxSources = Rule{
		Name:    "blackbox-sources",
		Pattern: regexp.MustCompile(`(?s)\$~~~\$\[.*\]\$~~~\$`),
		Action:  KeepAfter,
	}
)

// Table maps a provider identity to its rules, applied in order.
type Table struct {
	mu    sync.RWMutex
	rules map[string][]Rule
}

// NewTable creates an empty rule table.
func NewTable() *Table {
	return &Table{rules: make(map[string][]Rule)}
}

// DefaultTable returns a table holding the built-in rules.
func DefaultTable() *Table {
	t := NewTable()
	t.Register("Blackbox", BlackboxVersion, BlackboxSources)
	return t
}

// Register appends rules for a provider identity.
func (t *Table) Register(provider string, rules ...Rule) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules[provider] = append(t.rules[provider], rules...)
}

// Rules returns a copy of the rules registered for provider.
func (t *Table) Rules(provider string) []Rule {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Rule(nil), t.rules[provider]...)
}

// Normalize cleans text for provider. Providers without rules pass through.
func (t *Table) Normalize(text, provider string) string {
	rules := t.Rules(provider)
	if len(rules) == 0 {
		return text
	}
	for {
		next := text
		for _, r := range rules {
			next = r.apply(next)
		}
		if next == text {
			return text
		}
		text = next
	}
}

var defaultTable = DefaultTable()

// Normalize cleans text with the built-in rules.
func Normalize(text, provider string) string {
	return defaultTable.Normalize(text, provider)
}
