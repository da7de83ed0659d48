package auth

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/venuehub/pkg/audit"
	domain "github.com/dmitrymomot/venuehub/pkg/auth"
	"github.com/dmitrymomot/venuehub/pkg/logger"
)

type identityContextKey struct{}

// WithIdentity stores the authenticated identity for the rest of the chain.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext returns the identity set by RequireAuth or RequireAdmin.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(domain.Identity)
	return id, ok
}

// LoggerExtractor adds user_id to log records of authenticated requests.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IdentityFromContext(ctx); ok {
			return logger.UserID(id.AccountID), true
		}
		return slog.Attr{}, false
	}
}

// AuditExtractor reports the signed-in account as the actor of audit events.
func AuditExtractor() audit.ContextExtractor {
	return func(ctx context.Context) (string, bool) {
		if id, ok := IdentityFromContext(ctx); ok {
			return id.AccountID.String(), true
		}
		return "", false
	}
}
