package logger

import (
	"log/slog"
	"time"

	"github.com/sweetpotato0/chatroute/middleware"
	"github.com/sweetpotato0/chatroute/pkg/logging"
)

// RequestLogger logs the outgoing conversation of a generation
type RequestLogger struct {
	logger *slog.Logger
}

// NewRequestLogger creates a request logging middleware. A nil logger uses the process logger
func NewRequestLogger(logger *slog.Logger) *RequestLogger {
	if logger == nil {
		logger = logging.WithComponent("middleware")
	}
	return &RequestLogger{logger: logger}
}

// Name returns the middleware name
func (m *RequestLogger) Name() string {
	return "RequestLogger"
}

// Execute logs the request
func (m *RequestLogger) Execute(ctx *middleware.Context, next middleware.Handler) error {
	m.logger.Debug("generation request",
		"provider", ctx.Provider,
		"messages", len(ctx.Messages),
		"input_chars", len([]rune(ctx.Input())),
	)
	return next(ctx)
}

// ResponseLogger logs the outcome of the dispatch and how long it took
type ResponseLogger struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewResponseLogger creates a response logging middleware. A nil logger uses the process logger
func NewResponseLogger(logger *slog.Logger) *ResponseLogger {
	if logger == nil {
		logger = logging.WithComponent("middleware")
	}
	return &ResponseLogger{logger: logger, now: time.Now}
}

// Name returns the middleware name
func (m *ResponseLogger) Name() string {
	return "ResponseLogger"
}

// Execute logs the response
func (m *ResponseLogger) Execute(ctx *middleware.Context, next middleware.Handler) error {
	start := m.now()
	err := next(ctx)
	elapsed := m.now().Sub(start)
	if err != nil {
		m.logger.Debug("generation dispatch failed", "provider", ctx.Provider, "elapsed", elapsed, "error", err)
		return err
	}
	m.logger.Debug("generation response",
		"provider", ctx.Provider,
		"response_chars", len([]rune(ctx.Response)),
		"elapsed", elapsed,
	)
	return nil
}
