// Package middleware wraps the provider dispatch of a generation in a chain of
// interceptors that can inspect the outgoing conversation and the final response.
package middleware

import (
	"context"

	"github.com/sweetpotato0/chatroute/message"
	"github.com/sweetpotato0/chatroute/provider"
)

// Context represents the middleware execution context of one generation
type Context struct {
	// Provider is the resolved provider identifier
	Provider string

	// Messages is the truncated conversation about to be sent
	Messages []message.Message

	// Options are the merged generation options
	Options provider.Options

	// Response is the final normalized text, set once dispatch returns
	Response string

	// Metadata for passing data between middlewares
	Metadata map[string]any

	context context.Context
}

// NewContext creates a new middleware context
func NewContext(ctx context.Context) *Context {
	return &Context{
		Metadata: make(map[string]any),
		context:  ctx,
	}
}

// Context returns the underlying context.Context
func (c *Context) Context() context.Context {
	if c.context == nil {
		return context.Background()
	}
	return c.context
}

// Input returns the content of the last user message, or "" when there is none
func (c *Context) Input() string {
	last, ok := message.Last(c.Messages)
	if !ok || last.Role() != message.RoleUser {
		return ""
	}
	return last.Content()
}

// Middleware intercepts the dispatch of a generation
type Middleware interface {
	// Name returns the name of the middleware for logging and debugging
	Name() string

	// Execute runs the middleware logic. Calling next continues the chain;
	// returning an error stops it and fails the generation
	Execute(ctx *Context, next Handler) error
}

// Handler is the function called to pass control to the next middleware
type Handler func(*Context) error

// Chain represents a sequence of middleware to be executed
type Chain struct {
	middlewares []Middleware
}

// NewChain creates a new middleware chain
func NewChain(middlewares ...Middleware) *Chain {
	return &Chain{
		middlewares: middlewares,
	}
}

// Add appends a middleware to the chain
func (c *Chain) Add(m Middleware) *Chain {
	c.middlewares = append(c.middlewares, m)
	return c
}

// Len returns the number of middlewares
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.middlewares)
}

// Execute runs all middlewares in the chain, then finalHandler. A nil chain runs
// finalHandler directly
func (c *Chain) Execute(ctx *Context, finalHandler Handler) error {
	if c == nil {
		return finalHandler(ctx)
	}
	return c.executeMiddleware(ctx, 0, finalHandler)
}

func (c *Chain) executeMiddleware(ctx *Context, index int, finalHandler Handler) error {
	if index >= len(c.middlewares) {
		return finalHandler(ctx)
	}

	nextHandler := func(ctx *Context) error {
		return c.executeMiddleware(ctx, index+1, finalHandler)
	}

	return c.middlewares[index].Execute(ctx, nextHandler)
}
