package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sweetpotato0/chatroute/middleware"
)

// ValidatorFunc validates the input, the content of the last user message
type ValidatorFunc func(string) error

// FilterFunc inspects the final response
type FilterFunc func(string) error

// InputValidator validates the outgoing query
type InputValidator struct {
	validator ValidatorFunc
}

// NewInputValidator creates an input validation middleware
func NewInputValidator(validator ValidatorFunc) *InputValidator {
	return &InputValidator{validator: validator}
}

// NonEmpty rejects blank input
func NonEmpty() *InputValidator {
	return NewInputValidator(func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("empty query: %w", middleware.ErrInputRejected)
		}
		return nil
	})
}

// MaxLength rejects input longer than n characters
func MaxLength(n int) *InputValidator {
	return NewInputValidator(func(input string) error {
		if l := utf8.RuneCountInString(input); l > n {
			return fmt.Errorf("query is %d characters, limit %d: %w", l, n, middleware.ErrInputRejected)
		}
		return nil
	})
}

// Name returns the middleware name
func (m *InputValidator) Name() string {
	return "InputValidator"
}

// Execute validates the input
func (m *InputValidator) Execute(ctx *middleware.Context, next middleware.Handler) error {
	if m.validator != nil {
		if err := m.validator(ctx.Input()); err != nil {
			return err
		}
	}
	return next(ctx)
}

// ResponseFilter checks the response once dispatch succeeded
type ResponseFilter struct {
	filter FilterFunc
}

// NewResponseFilter creates a response filtering middleware
func NewResponseFilter(filter FilterFunc) *ResponseFilter {
	return &ResponseFilter{filter: filter}
}

// Name returns the middleware name
func (m *ResponseFilter) Name() string {
	return "ResponseFilter"
}

// Execute filters the response
func (m *ResponseFilter) Execute(ctx *middleware.Context, next middleware.Handler) error {
	err := next(ctx)
	if err != nil {
		return err
	}
	if m.filter != nil {
		return m.filter(ctx.Response)
	}
	return nil
}
