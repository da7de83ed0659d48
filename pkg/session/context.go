package session

import (
	"context"

	"github.com/dmitrymomot/venuehub/pkg/auth"
)

type sessionContextKey struct{}

func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

func FromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*Session)
	return session, ok && session != nil
}

// StateFromContext returns the identity slot of the request's session.
// Requests without a session are anonymous.
func StateFromContext(ctx context.Context) auth.State {
	session, ok := FromContext(ctx)
	if !ok {
		return auth.Anonymous()
	}
	return session.Auth
}
