package message

import (
	"math"
	"unicode/utf8"
)

// TokenCounter estimates how many tokens a text costs a provider.
type TokenCounter interface {
	CountTokens(text string) int
}

// CharEstimator approximates tokens from the rune count.
type CharEstimator struct {
	// CharsPerToken defaults to 4 when zero.
	CharsPerToken float64
}

// CountTokens implements TokenCounter.
func (e CharEstimator) CountTokens(text string) int {
	ratio := e.CharsPerToken
	if ratio <= 0 {
		ratio = 4
	}
	return int(math.Ceil(float64(utf8.RuneCountInString(text)) / ratio))
}

// Truncate drops the oldest messages until the remaining ones fit in budget tokens.
// The most recent message is always kept, even when it alone exceeds the budget.
// An answer whose prompt was dropped goes with it. A non-positive budget disables
// truncation. A nil counter uses CharEstimator.
func Truncate(msgs []Message, budget int, counter TokenCounter) []Message {
	if budget <= 0 || len(msgs) <= 1 {
		return msgs
	}
	if counter == nil {
		counter = CharEstimator{}
	}

	start := len(msgs) - 1
	used := counter.CountTokens(msgs[start].content)
	for start > 0 {
		cost := counter.CountTokens(msgs[start-1].content)
		if used+cost > budget {
			break
		}
		used += cost
		start--
	}
	if start > 0 && start < len(msgs)-1 && msgs[start].role == RoleAssistant {
		start++
	}
	return msgs[start:]
}
