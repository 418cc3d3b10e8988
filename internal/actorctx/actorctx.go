package actorctx

import (
	"context"

	"github.com/geocoder89/jobboard/internal/auth"
)

type (
	ctxKey       struct{}
	requestIDKey struct{}
)

// WithSession stores the caller's validated session on ctx.
func WithSession(ctx context.Context, s auth.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// SessionFrom returns the session stored by WithSession, or nil when the
// request is anonymous.
func SessionFrom(ctx context.Context) *auth.Session {
	s, ok := ctx.Value(ctxKey{}).(auth.Session)
	if !ok || s.UserID == "" {
		return nil
	}

	return &s
}

func UserIDFrom(ctx context.Context) (string, bool) {
	s := SessionFrom(ctx)
	if s == nil {
		return "", false
	}

	return s.UserID, true
}

// WithRequestID stores the id assigned to the inbound request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
