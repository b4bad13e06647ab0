package generation

import (
	"errors"
	"fmt"

	errorspkg "github.com/sweetpotato0/chatroute/errors"
)

// Kind classifies a failed generation.
type Kind int

const (
	// KindTransport means the provider rejected the call or its stream broke.
	KindTransport Kind = iota
	// KindUnknownProvider means the selector matched no registered provider.
	KindUnknownProvider
	// KindMalformed means the provider returned a result of the wrong shape.
	KindMalformed
	// KindInProgress means another generation held the admission gate.
	KindInProgress
	// KindRejected means a middleware refused the request or the response.
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnknownProvider:
		return "unknown_provider"
	case KindMalformed:
		return "malformed_response"
	case KindInProgress:
		return "in_progress"
	case KindRejected:
		return "rejected"
	}
	return "unknown"
}

func (k Kind) sentinel() error {
	switch k {
	case KindUnknownProvider:
		return errorspkg.ErrUnknownProvider
	case KindMalformed:
		return errorspkg.ErrMalformedResponse
	case KindInProgress:
		return errorspkg.ErrGenerationInProgress
	case KindRejected:
		return errorspkg.ErrInvalidInput
	}
	return errorspkg.ErrTransport
}

// Error is the uniform failure returned by the orchestrator. It matches both the
// sentinel of its kind and the underlying cause with errors.Is.
type Error struct {
	Kind     Kind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("generation %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("generation %s (%s): %v", e.Kind, e.Provider, e.Err)
}

// Unwrap returns the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	return []error{e.Kind.sentinel(), e.Err}
}

func asError(err error, providerID string) error {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr
	}
	return &Error{Kind: KindRejected, Provider: providerID, Err: err}
}

// KindOf returns the kind of a generation error, and false for other errors.
func KindOf(err error) (Kind, bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind, true
	}
	return 0, false
}
