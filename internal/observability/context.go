package observability

import "context"

type contextKey string

const runIDKey contextKey = "run_id"

// ContextWithRunID returns a context carrying the analysis run ID.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext extracts the analysis run ID from the context, returning
// an empty string when none is set.
func RunIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(runIDKey).(string); ok {
		return v
	}
	return ""
}
