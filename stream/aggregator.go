// Package stream turns a provider's fragment sequence into a sequence of full-text
// snapshots.
package stream

import (
	"context"
	"errors"
	"iter"
)

// DefaultMarker is appended to in-progress snapshots when the cursor is enabled.
const DefaultMarker = " ●"

// DefaultStride is how many fragments pass between two stop checks.
const DefaultStride = 16

// ErrConsumed is returned when an Aggregator is iterated a second time.
var ErrConsumed = errors.New("stream: aggregator already consumed")

// State is the lifecycle of one aggregation.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// StopProbe reports whether the caller asked generation to stop.
type StopProbe interface {
	Stopped() bool
}

// ProbeFunc adapts a function to StopProbe.
type ProbeFunc func() bool

// Stopped implements StopProbe.
func (f ProbeFunc) Stopped() bool { return f() }

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithReplace makes every fragment replace the text instead of extending it.
func WithReplace(replace bool) Option {
	return func(a *Aggregator) {
		a.replace = replace
	}
}

// WithMarker appends marker to every in-progress snapshot. An empty marker disables it.
func WithMarker(marker string) Option {
	return func(a *Aggregator) {
		a.marker = marker
	}
}

// WithProbe sets the cooperative stop probe.
func WithProbe(p StopProbe) Option {
	return func(a *Aggregator) {
		a.probe = p
	}
}

// WithStride changes the number of fragments between stop checks.
func WithStride(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.stride = n
		}
	}
}

// Aggregator merges fragments of one generation. It is single-use and not safe for
// concurrent use.
type Aggregator struct {
	fragments iter.Seq2[string, error]
	replace   bool
	marker    string
	probe     StopProbe
	stride    int

	state    State
	text     string
	consumed int
	err      error
}

// New creates an aggregator over fragments.
func New(fragments iter.Seq2[string, error], opts ...Option) *Aggregator {
	a := &Aggregator{
		fragments: fragments,
		stride:    DefaultStride,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State returns the current lifecycle state.
func (a *Aggregator) State() State { return a.state }

// Text returns the merged text so far, without marker.
func (a *Aggregator) Text() string { return a.text }

// Consumed returns how many fragments were merged.
func (a *Aggregator) Consumed() int { return a.consumed }

// Err returns the stream failure, if any.
func (a *Aggregator) Err() error { return a.err }

func (a *Aggregator) stopped(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return a.probe != nil && a.probe.Stopped()
}

func (a *Aggregator) snapshot() string {
	if a.marker == "" {
		return a.text
	}
	return a.text + a.marker
}

// Snapshots yields the full text after each merged fragment. With a marker, each
// snapshot carries it and one last snapshot without the marker follows the end of
// the stream or a cancellation. A failing stream yields its error once and stops.
//
// The stop probe and ctx are checked before fragments 0, stride, 2*stride, ...;
// a stop therefore takes effect within stride-1 further fragments.
func (a *Aggregator) Snapshots(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if a.state != StateIdle {
			yield("", ErrConsumed)
			return
		}
		if a.fragments == nil {
			a.state = StateCompleted
			if a.marker != "" {
				yield(a.text, nil)
			}
			return
		}
		a.state = StateStreaming

		for frag, err := range a.fragments {
			if err != nil {
				if a.stopped(ctx) {
					a.state = StateCancelled
					break
				}
				a.state = StateFailed
				a.err = err
				yield("", err)
				return
			}
			if a.consumed%a.stride == 0 && a.stopped(ctx) {
				a.state = StateCancelled
				break
			}

			if a.replace {
				a.text = frag
			} else {
				a.text += frag
			}
			a.consumed++

			if !yield(a.snapshot(), nil) {
				a.state = StateCancelled
				return
			}
		}

		if a.state == StateStreaming {
			a.state = StateCompleted
		}
		if a.marker != "" {
			yield(a.text, nil)
		}
	}
}

// Drive consumes the stream, calling onSnapshot for every snapshot when it is not
// nil, and returns the final text without marker. Cancellation is not an error.
func (a *Aggregator) Drive(ctx context.Context, onSnapshot func(string)) (string, error) {
	for snap, err := range a.Snapshots(ctx) {
		if err != nil {
			return "", err
		}
		if onSnapshot != nil {
			onSnapshot(snap)
		}
	}
	return a.text, nil
}
