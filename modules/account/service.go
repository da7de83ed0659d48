package account

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/venuehub/handler"
	"github.com/dmitrymomot/venuehub/pkg/auth"
	"github.com/dmitrymomot/venuehub/pkg/binder"
	"github.com/dmitrymomot/venuehub/pkg/logger"
	"github.com/dmitrymomot/venuehub/pkg/session"
	authhttp "github.com/dmitrymomot/venuehub/svc/auth"
)

// Service serves login, logout and the 2FA endpoints. The session
// middleware must run before it.
type Service struct {
	auth     *auth.Service
	sessions *session.Manager
	logger   *slog.Logger

	onError      handler.ErrorHandler[handler.Context]
	onLoginError handler.ErrorHandler[handler.Context]

	loginLimit    func(http.Handler) http.Handler
	recoveryLimit func(http.Handler) http.Handler
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLoginLimit wraps POST /login, typically with a per-IP limiter.
func WithLoginLimit(mw func(http.Handler) http.Handler) Option {
	return func(s *Service) { s.loginLimit = mw }
}

// WithRecoveryLimit wraps POST /2fa/reset-with-emergency-code.
func WithRecoveryLimit(mw func(http.Handler) http.Handler) Option {
	return func(s *Service) { s.recoveryLimit = mw }
}

func NewService(authSvc *auth.Service, sessions *session.Manager, opts ...Option) *Service {
	s := &Service{
		auth:     authSvc,
		sessions: sessions,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.onError = handler.NewErrorHandler(s.logger, authhttp.Classify)
	s.onLoginError = handler.NewErrorHandler(s.logger, authhttp.ClassifyLogin)
	return s
}

func passthrough(next http.Handler) http.Handler { return next }

func orPassthrough(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return passthrough
	}
	return mw
}

// Register adds the account routes to r.
func (s *Service) Register(r chi.Router) {
	r.With(orPassthrough(s.loginLimit)).Post("/login", handler.Wrap(s.login,
		handler.WithBinders[handler.Context, loginRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, loginRequest](s.onLoginError),
	))
	r.With(authhttp.RequireAuth(s.onError)).Get("/login/me", handler.Wrap(s.me,
		handler.WithErrorHandler[handler.Context, struct{}](s.onError),
	))
	r.Post("/logout", handler.Wrap(s.logout,
		handler.WithErrorHandler[handler.Context, struct{}](s.onError),
	))

	r.Route("/2fa", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authhttp.RequireAuth(s.onError))

			r.Post("/setup", handler.Wrap(s.setup,
				handler.WithErrorHandler[handler.Context, struct{}](s.onError),
			))
			r.Post("/enable", handler.Wrap(s.enable,
				handler.WithBinders[handler.Context, enableRequest](binder.JSON()),
				handler.WithErrorHandler[handler.Context, enableRequest](s.onError),
			))
			r.Post("/disable", handler.Wrap(s.disable,
				handler.WithBinders[handler.Context, disableRequest](binder.JSON()),
				handler.WithErrorHandler[handler.Context, disableRequest](s.onError),
			))
			r.Get("/status", handler.Wrap(s.status,
				handler.WithErrorHandler[handler.Context, struct{}](s.onError),
			))
		})

		// Emergency reset is for users who cannot log in.
		r.With(orPassthrough(s.recoveryLimit)).Post("/reset-with-emergency-code", handler.Wrap(s.resetWithEmergencyCode,
			handler.WithBinders[handler.Context, emergencyResetRequest](binder.JSON()),
			handler.WithErrorHandler[handler.Context, emergencyResetRequest](s.onError),
		))
	})
}
