package auth

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/venuehub/handler"
	domain "github.com/dmitrymomot/venuehub/pkg/auth"
	"github.com/dmitrymomot/venuehub/pkg/session"
)

// AdminChecker confirms that a session belongs to an account that is an admin
// right now. *auth.Service satisfies it.
type AdminChecker interface {
	RequireAdmin(ctx context.Context, state domain.State) (domain.Identity, error)
}

// RequireAuth rejects requests whose session is not authenticated with 401.
// Pending sessions count as unauthenticated.
func RequireAuth(onError handler.ErrorHandler[handler.Context]) func(http.Handler) http.Handler {
	return guard(onError, func(_ context.Context, state domain.State) (domain.Identity, error) {
		id, ok := state.Identity()
		if !ok {
			return domain.Identity{}, domain.ErrUnauthenticated
		}
		return id, nil
	})
}

// RequireAdmin is RequireAuth plus 403 unless the stored account has the
// admin role. The role recorded in the session at login is not trusted.
func RequireAdmin(checker AdminChecker, onError handler.ErrorHandler[handler.Context]) func(http.Handler) http.Handler {
	return guard(onError, checker.RequireAdmin)
}

func guard(onError handler.ErrorHandler[handler.Context], check func(context.Context, domain.State) (domain.Identity, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			id, err := check(ctx, session.StateFromContext(ctx))
			if err != nil {
				onError(handler.NewContext(w, r), err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id)))
		})
	}
}
