package middleware

import "errors"

var (
	// ErrInputRejected indicates an input validator refused the conversation
	ErrInputRejected = errors.New("input rejected")

	// ErrResponseRejected indicates a response filter refused the generated text
	ErrResponseRejected = errors.New("response rejected")
)
