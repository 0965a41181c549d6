package domain

import "context"

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
)

// WithUser returns a context carrying the authenticated identity.
func WithUser(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, KeyUserID, userID)
	return context.WithValue(ctx, KeyUserEmail, email)
}

// UserIDFromContext returns the authenticated user ID, or "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(KeyUserID).(string)
	return id
}
