package core

import "context"

// Context keys for run options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	runUUIDKey        contextKey = "runUUID"
)

// WithSuppressHeader marks the context so runs print no header or progress lines.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// WithRunUUID pins the identifier of the next run, which is otherwise generated.
func WithRunUUID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runUUIDKey, id)
}

// runUUIDFrom returns the pinned run identifier, if any.
func runUUIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runUUIDKey).(string)
	return id
}
