package domain

import "context"

type contextKey string

const userIDContextKey contextKey = "user_id"

// ContextWithUserID attaches the authenticated user id to the context.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the authenticated user id, if a session exists.
// No session means local-only mode: the sync engine skips the remote mirror.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok && userID != ""
}
