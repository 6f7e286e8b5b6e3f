package common

import (
	"context"

	"github.com/google/uuid"
)

type traceKey struct{}

// NewTraceID returns a fresh request trace id.
func NewTraceID() string {
	return uuid.New().String()
}

// WithTraceID stores id on ctx.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// TraceID returns the id stored on ctx, or "-" when there is none.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return "-"
	}
	if id, ok := ctx.Value(traceKey{}).(string); ok && id != "" {
		return id
	}
	return "-"
}
