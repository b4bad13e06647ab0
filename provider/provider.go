// Package provider describes text-generation backends: the invocation contract every
// backend satisfies, the static capability record the registry keeps for it, and the
// option layering applied before each call.
package provider

import (
	"context"
	"iter"

	"github.com/sweetpotato0/chatroute/message"
)

// Provider is the invocation capability of a backend.
//
// Invoke returns either the full text (for non-streaming backends), a fragment
// sequence (for streaming backends), or Handled when the backend drove
// Callbacks.StreamUpdate itself. Transport failures must be reported through the
// error, never through a sentinel Result.
type Provider interface {
	Invoke(ctx context.Context, msgs []message.Message, opts Options, cb Callbacks) (Result, error)
}

// Func adapts a function to the Provider interface.
type Func func(ctx context.Context, msgs []message.Message, opts Options, cb Callbacks) (Result, error)

// Invoke implements Provider.
func (f Func) Invoke(ctx context.Context, msgs []message.Message, opts Options, cb Callbacks) (Result, error) {
	return f(ctx, msgs, opts, cb)
}

// Callbacks are handed to providers that stream on their own.
type Callbacks struct {
	// StreamUpdate receives the full text generated so far. It is safe to call
	// from any goroutine until Invoke returns.
	StreamUpdate func(text string)
}

// ResultKind tags the variant held by a Result.
type ResultKind int

const (
	// KindNone is the zero Result; a provider returning it is malformed.
	KindNone ResultKind = iota
	// KindText carries a complete response.
	KindText
	// KindFragments carries a lazy fragment sequence.
	KindFragments
	// KindHandled means the provider already reported its output via Callbacks.
	KindHandled
)

func (k ResultKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindFragments:
		return "fragments"
	case KindHandled:
		return "handled"
	default:
		return "none"
	}
}

// Result is the outcome of one Invoke call.
type Result struct {
	kind      ResultKind
	text      string
	fragments iter.Seq2[string, error]
}

// Text wraps a complete response.
func Text(s string) Result {
	return Result{kind: KindText, text: s}
}

// Fragments wraps a fragment sequence. A nil sequence yields a malformed Result.
func Fragments(seq iter.Seq2[string, error]) Result {
	if seq == nil {
		return Result{}
	}
	return Result{kind: KindFragments, fragments: seq}
}

// Handled reports that output was delivered through Callbacks.StreamUpdate.
func Handled() Result {
	return Result{kind: KindHandled}
}

// Kind returns the variant tag.
func (r Result) Kind() ResultKind { return r.kind }

// Text returns the complete response for KindText results.
func (r Result) Text() string { return r.text }

// Fragments returns the sequence for KindFragments results.
func (r Result) Fragments() iter.Seq2[string, error] { return r.fragments }

// SliceFragments returns a sequence yielding each element of parts. Useful for
// backends that receive a whole body but want to stream it, and for tests.
func SliceFragments(parts ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, p := range parts {
			if !yield(p, nil) {
				return
			}
		}
	}
}
