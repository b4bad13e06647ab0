// Package websearch decides when a request is augmented with web results, holds the
// priming prompts sent with augmented requests and fetches the results themselves.
package websearch

import (
	"fmt"
	"strings"

	errorspkg "github.com/sweetpotato0/chatroute/errors"
)

// Mode controls web-search augmentation.
type Mode string

const (
	// ModeOff never augments.
	ModeOff Mode = "off"
	// ModeAuto augments only when the provider cannot search on its own.
	ModeAuto Mode = "auto"
	// ModeAlways augments every request.
	ModeAlways Mode = "always"
)

// ParseMode parses a configured mode. An empty string means ModeOff.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeOff:
		return ModeOff, nil
	case ModeAuto, ModeAlways:
		return m, nil
	}
	return ModeOff, fmt.Errorf("web search mode %q: %w", s, errorspkg.ErrInvalidInput)
}

// Applies reports whether a request in this mode is augmented for a provider with the
// given native search capability.
func (m Mode) Applies(nativeSearch bool) bool {
	switch m {
	case ModeAlways:
		return true
	case ModeAuto:
		return !nativeSearch
	}
	return false
}

// SystemPrompt instructs the model how to use the appended results.
const SystemPrompt = `You have access to web search results. When a user message ends with a block ` +
	`delimited by ` + BlockStart + ` and ` + BlockEnd + `, it contains search results fetched for the ` +
	`user's query. Use them to give an accurate, current answer and cite the relevant sources ` +
	`by URL. If the results are not relevant, answer from your own knowledge and do not mention them.`

// SystemResponse is the assistant acknowledgement paired with a priming prompt.
const SystemResponse = "Understood. I will follow these instructions."
