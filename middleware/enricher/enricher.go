package enricher

import (
	"github.com/google/uuid"

	"github.com/sweetpotato0/chatroute/middleware"
)

// RequestIDKey is the metadata key set by RequestID
const RequestIDKey = "request_id"

// EnricherFunc enriches the context
type EnricherFunc func(*middleware.Context) error

// ContextEnricher adds additional data to the middleware context
type ContextEnricher struct {
	enricher EnricherFunc
}

// NewContextEnricher creates a context enriching middleware
func NewContextEnricher(enricher EnricherFunc) *ContextEnricher {
	return &ContextEnricher{enricher: enricher}
}

// RequestID tags every generation with a fresh identifier, keeping one already present
func RequestID() *ContextEnricher {
	return NewContextEnricher(func(ctx *middleware.Context) error {
		if _, ok := ctx.Metadata[RequestIDKey]; ok {
			return nil
		}
		if ctx.Metadata == nil {
			ctx.Metadata = make(map[string]any)
		}
		ctx.Metadata[RequestIDKey] = uuid.NewString()
		return nil
	})
}

// Name returns the middleware name
func (m *ContextEnricher) Name() string {
	return "ContextEnricher"
}

// Execute enriches the context
func (m *ContextEnricher) Execute(ctx *middleware.Context, next middleware.Handler) error {
	if m.enricher != nil {
		if err := m.enricher(ctx); err != nil {
			return err
		}
	}
	return next(ctx)
}
