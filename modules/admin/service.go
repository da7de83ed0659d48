package admin

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/venuehub/handler"
	"github.com/dmitrymomot/venuehub/pkg/audit"
	"github.com/dmitrymomot/venuehub/pkg/auth"
	"github.com/dmitrymomot/venuehub/pkg/binder"
	"github.com/dmitrymomot/venuehub/pkg/logger"
	authhttp "github.com/dmitrymomot/venuehub/svc/auth"
)

// Service is the user management back office. Every route requires an
// authenticated admin session.
type Service struct {
	auth    *auth.Service
	trail   AuditReader
	logger  *slog.Logger
	onError handler.ErrorHandler[handler.Context]
}

// AuditReader reads the security audit trail. *audit.Logger satisfies it.
type AuditReader interface {
	Query(ctx context.Context, criteria audit.Criteria) ([]audit.Event, error)
}

type Option func(*Service)

// WithAuditTrail exposes GET /audit.
func WithAuditTrail(r AuditReader) Option {
	return func(s *Service) { s.trail = r }
}

func NewService(authSvc *auth.Service, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.Discard()
	}
	s := &Service{
		auth:    authSvc,
		logger:  log,
		onError: handler.NewErrorHandler(log, authhttp.Classify),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type usernameParam struct {
	Username string `path:"username"`
}

type createRequest struct {
	Username string    `json:"username"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role"`
}

type updateRequest struct {
	Username string     `path:"username" json:"-"`
	Password *string    `json:"password"`
	Role     *auth.Role `json:"role"`
}

type accountResponse struct {
	ID               uuid.UUID            `json:"id"`
	Username         string               `json:"username"`
	Role             auth.Role            `json:"role"`
	TwoFactorEnabled bool                 `json:"twoFactorEnabled"`
	TwoFactorStatus  auth.TwoFactorStatus `json:"twoFactorStatus"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

func toAccountResponse(a *auth.Account) accountResponse {
	return accountResponse{
		ID:               a.ID,
		Username:         a.Username,
		Role:             a.Role,
		TwoFactorEnabled: a.TwoFactorEnabled,
		TwoFactorStatus:  a.TwoFactorStatus(),
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// Register adds /users and, with an audit trail, /audit routes to r behind
// the admin guard.
func (s *Service) Register(r chi.Router) {
	pathBinder := binder.Path(chi.URLParam)

	r.Group(func(r chi.Router) {
		r.Use(authhttp.RequireAdmin(s.auth, s.onError))

		r.Get("/users", handler.Wrap(s.list,
			handler.WithErrorHandler[handler.Context, struct{}](s.onError),
		))
		r.Post("/users", handler.Wrap(s.create,
			handler.WithBinders[handler.Context, createRequest](binder.JSON()),
			handler.WithErrorHandler[handler.Context, createRequest](s.onError),
		))
		r.Get("/users/{username}", handler.Wrap(s.get,
			handler.WithBinders[handler.Context, usernameParam](pathBinder),
			handler.WithErrorHandler[handler.Context, usernameParam](s.onError),
		))
		r.Put("/users/{username}", handler.Wrap(s.update,
			handler.WithBinders[handler.Context, updateRequest](binder.JSON(), pathBinder),
			handler.WithErrorHandler[handler.Context, updateRequest](s.onError),
		))
		r.Delete("/users/{username}", handler.Wrap(s.delete,
			handler.WithBinders[handler.Context, usernameParam](pathBinder),
			handler.WithErrorHandler[handler.Context, usernameParam](s.onError),
		))
		r.Post("/users/{username}/reset-2fa", handler.Wrap(s.resetTwoFactor,
			handler.WithBinders[handler.Context, usernameParam](pathBinder),
			handler.WithErrorHandler[handler.Context, usernameParam](s.onError),
		))
		if s.trail != nil {
			r.Get("/audit", handler.Wrap(s.auditTrail,
				handler.WithBinders[handler.Context, auditQuery](binder.Query()),
				handler.WithErrorHandler[handler.Context, auditQuery](s.onError),
			))
		}
	})
}
