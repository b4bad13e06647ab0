package generation

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// minElapsed keeps the throughput finite for instant responses.
const minElapsed = time.Millisecond

// Metrics describe the throughput of a generation at some point in time.
type Metrics struct {
	Chars   int
	Elapsed time.Duration
}

func newMetrics(text string, elapsed time.Duration) Metrics {
	return Metrics{Chars: utf8.RuneCountInString(text), Elapsed: elapsed}
}

// Seconds returns the elapsed time in seconds, never less than one millisecond.
func (m Metrics) Seconds() float64 {
	return max(m.Elapsed, minElapsed).Seconds()
}

// CharsPerSec returns the throughput.
func (m Metrics) CharsPerSec() float64 {
	return float64(m.Chars) / m.Seconds()
}

// String renders the metrics as "11 chars (22.0 / sec) | 0.5 sec".
func (m Metrics) String() string {
	return fmt.Sprintf("%d chars (%.1f / sec) | %.1f sec", m.Chars, m.CharsPerSec(), m.Seconds())
}
