package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/sweetpotato0/chatroute/message"
)

type TestMiddleware struct {
	name  string
	err   error
	order *[]string
}

func (m *TestMiddleware) Name() string {
	return m.name
}

func (m *TestMiddleware) Execute(ctx *Context, next Handler) error {
	*m.order = append(*m.order, m.name)
	if m.err != nil {
		return m.err
	}
	return next(ctx)
}

func TestChain(t *testing.T) {
	t.Run("empty chain executes final handler", func(t *testing.T) {
		chain := NewChain()
		executed := false

		err := chain.Execute(&Context{}, func(ctx *Context) error {
			executed = true
			return nil
		})

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !executed {
			t.Error("final handler was not executed")
		}
	})

	t.Run("nil chain executes final handler", func(t *testing.T) {
		var chain *Chain
		executed := false
		if err := chain.Execute(&Context{}, func(*Context) error { executed = true; return nil }); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !executed || chain.Len() != 0 {
			t.Error("nil chain should behave as empty")
		}
	})

	t.Run("middleware chain executes in order", func(t *testing.T) {
		order := []string{}

		chain := NewChain(&TestMiddleware{name: "m1", order: &order})
		chain.Add(&TestMiddleware{name: "m2", order: &order})

		chain.Execute(&Context{}, func(c *Context) error {
			order = append(order, "final")
			return nil
		})

		expected := []string{"m1", "m2", "final"}
		if len(order) != len(expected) {
			t.Fatalf("expected %d steps, got %d", len(expected), len(order))
		}
		for i, e := range expected {
			if order[i] != e {
				t.Errorf("expected step %d to be %s, got %s", i, e, order[i])
			}
		}
	})

	t.Run("error stops chain execution", func(t *testing.T) {
		order := []string{}
		boom := errors.New("test error")
		chain := NewChain(&TestMiddleware{name: "m1", err: boom, order: &order}, &TestMiddleware{name: "m2", order: &order})

		finalCalled := false
		err := chain.Execute(&Context{}, func(c *Context) error {
			finalCalled = true
			return nil
		})

		if !errors.Is(err, boom) {
			t.Errorf("expected middleware error, got %v", err)
		}
		if finalCalled {
			t.Error("final handler should not be called after middleware error")
		}
		if len(order) != 1 {
			t.Errorf("m2 should not run, order %v", order)
		}
	})
}

func TestContext(t *testing.T) {
	t.Run("input is the last user message", func(t *testing.T) {
		ctx := NewContext(context.Background())
		ctx.Messages = []message.Message{
			message.NewMessage(message.RoleUser, "first"),
			message.NewMessage(message.RoleAssistant, "reply"),
			message.NewMessage(message.RoleUser, "second"),
		}
		if ctx.Input() != "second" {
			t.Errorf("unexpected input %q", ctx.Input())
		}
	})

	t.Run("no trailing user message", func(t *testing.T) {
		ctx := &Context{Messages: []message.Message{message.NewMessage(message.RoleAssistant, "reply")}}
		if ctx.Input() != "" {
			t.Errorf("expected empty input, got %q", ctx.Input())
		}
		if ctx.Context() == nil {
			t.Error("zero context should fall back to background")
		}
	})
}
