package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sweetpotato0/chatroute/message"
	"github.com/sweetpotato0/chatroute/middleware"
	"github.com/sweetpotato0/chatroute/pkg/logging"
)

func TestRequestLogger(t *testing.T) {
	t.Run("logs request metadata", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewRequestLogger(logging.New(&buf, "text", "debug"))

		ctx := &middleware.Context{
			Provider: "openai",
			Messages: []message.Message{message.NewMessage(message.RoleUser, "test input")},
		}
		err := logger.Execute(ctx, func(c *middleware.Context) error { return nil })

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "provider=openai") || !strings.Contains(out, "input_chars=10") {
			t.Errorf("unexpected log output: %s", out)
		}
	})

	t.Run("nil logger falls back to process logger", func(t *testing.T) {
		logging.SetLogger(logging.Discard())
		logger := NewRequestLogger(nil)
		if err := logger.Execute(&middleware.Context{}, func(c *middleware.Context) error { return nil }); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestResponseLogger(t *testing.T) {
	t.Run("logs response size", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewResponseLogger(logging.New(&buf, "text", "debug"))

		ctx := &middleware.Context{Provider: "claude"}
		err := logger.Execute(ctx, func(c *middleware.Context) error {
			c.Response = "test response"
			return nil
		})

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "response_chars=13") {
			t.Errorf("unexpected log output: %s", buf.String())
		}
	})

	t.Run("passes errors through", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewResponseLogger(logging.New(&buf, "text", "debug"))
		boom := errors.New("boom")

		err := logger.Execute(&middleware.Context{}, func(c *middleware.Context) error { return boom })
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if !strings.Contains(buf.String(), "dispatch failed") {
			t.Errorf("failure not logged: %s", buf.String())
		}
	})
}
