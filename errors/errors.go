package errors

import "errors"

// Sentinel errors for common error conditions
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput indicates that input validation failed
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownProvider indicates that a selector has no registered provider
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrTransport indicates that a provider invocation was rejected
	// (network, auth, quota or any other backend failure)
	ErrTransport = errors.New("provider transport failure")

	// ErrMalformedResponse indicates that a provider returned a result of the wrong shape
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrGenerationInProgress indicates that another generation holds the admission gate
	ErrGenerationInProgress = errors.New("generation already in progress")
)
