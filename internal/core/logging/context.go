package logging

import "context"

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	viewKey      contextKey = "view"
)

// WithSessionID tags ctx with the review session being worked on.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// WithView tags ctx with the surface the process is running
// (dashboard, candidate, timer, cli).
func WithView(ctx context.Context, view string) context.Context {
	return context.WithValue(ctx, viewKey, view)
}

// GetSessionID returns the session ID stored in ctx, or "".
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// GetView returns the view name stored in ctx, or "".
func GetView(ctx context.Context) string {
	if v, ok := ctx.Value(viewKey).(string); ok {
		return v
	}
	return ""
}
