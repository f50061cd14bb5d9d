package context

import (
	"context"
)

// Current carries per-request metadata through the request context.
type Current struct {
	RequestID string
	ClientIP  string
	Method    string
	Path      string
	UserAgent string
}

type contextKey string

const currentKey contextKey = "current"

func SetCurrent(ctx context.Context, current *Current) context.Context {
	return context.WithValue(ctx, currentKey, current)
}

func FromContext(ctx context.Context) (*Current, bool) {
	current, ok := ctx.Value(currentKey).(*Current)
	return current, ok
}

// RequestID returns the request id stored in ctx, or "" when there is none.
func RequestID(ctx context.Context) string {
	if current, ok := FromContext(ctx); ok {
		return current.RequestID
	}

	return ""
}
