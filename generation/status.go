package generation

import "sync/atomic"

// Status is the admission gate and stop flag shared by every generation of a
// process. Loading is owned by the orchestrator; the stop flag is raised by the
// caller and only read by the orchestrator.
type Status struct {
	loading atomic.Bool
	stop    atomic.Bool
}

var defaultStatus = NewStatus()

// NewStatus returns an idle status with no stop requested.
func NewStatus() *Status {
	return &Status{}
}

// DefaultStatus returns the process-wide status used by orchestrators built
// without WithStatus.
func DefaultStatus() *Status {
	return defaultStatus
}

// Loading reports whether a generation holds the gate.
func (s *Status) Loading() bool { return s.loading.Load() }

// Stopped reports whether a stop was requested.
func (s *Status) Stopped() bool { return s.stop.Load() }

// RequestStop asks the running generation to stop at its next check point.
func (s *Status) RequestStop() { s.stop.Store(true) }

// ClearStop resets the stop flag. Callers clear it between requests.
func (s *Status) ClearStop() { s.stop.Store(false) }

func (s *Status) acquire() bool { return s.loading.CompareAndSwap(false, true) }

func (s *Status) release() { s.loading.Store(false) }
