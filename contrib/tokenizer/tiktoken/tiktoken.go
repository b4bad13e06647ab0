// Package tiktoken counts tokens with OpenAI's BPE encodings for prompt truncation.
package tiktoken

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sweetpotato0/chatroute/message"
)

// DefaultEncoding is the encoding of the GPT-3.5/GPT-4 family.
const DefaultEncoding = "cl100k_base"

var _ message.TokenCounter = (*Tokenizer)(nil)

// Tokenizer implements message.TokenCounter.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// New loads the encoding of a model name ("gpt-4o") or an encoding name
// ("cl100k_base").
func New(name string) (*Tokenizer, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := tiktoken.EncodingForModel(name)
	if err != nil {
		enc, err = tiktoken.GetEncoding(name)
		if err != nil {
			return nil, fmt.Errorf("load tiktoken encoding %q: %w", name, err)
		}
	}
	return &Tokenizer{enc: enc}, nil
}

// Counter returns a tokenizer for name, or the character estimate when the
// encoding cannot be loaded.
func Counter(name string) message.TokenCounter {
	t, err := New(name)
	if err != nil {
		return message.CharEstimator{}
	}
	return t
}

// Encode returns the token ids of text.
func (t *Tokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

// CountTokens implements message.TokenCounter.
func (t *Tokenizer) CountTokens(text string) int {
	return len(t.Encode(text))
}

// Decode turns token ids back into text.
func (t *Tokenizer) Decode(ids []int) string {
	return t.enc.Decode(ids)
}
