package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/venuehub/modules/account"
	"github.com/dmitrymomot/venuehub/modules/admin"
	"github.com/dmitrymomot/venuehub/pkg/audit"
	"github.com/dmitrymomot/venuehub/pkg/auth"
	"github.com/dmitrymomot/venuehub/pkg/clientip"
	"github.com/dmitrymomot/venuehub/pkg/environment"
	"github.com/dmitrymomot/venuehub/pkg/httpserver"
	"github.com/dmitrymomot/venuehub/pkg/requestid"
	"github.com/dmitrymomot/venuehub/pkg/session"
)

type routerDeps struct {
	app      appConfig
	env      environment.Environment
	log      *slog.Logger
	auth     *auth.Service
	trail    *audit.Logger
	sessions *session.Manager

	loginLimit    func(http.Handler) http.Handler
	recoveryLimit func(http.Handler) http.Handler

	metrics  *httpMetrics
	gatherer prometheus.Gatherer
	checks   []httpserver.Check
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		requestid.Middleware,
		clientip.Middleware(d.app.TrustProxy),
		environment.Middleware(d.env),
		d.metrics.middleware,
	)
	if len(d.app.CORSOrigins) > 0 {
		allowed := []string{"Accept", "Content-Type", requestid.Header}
		exposed := []string{requestid.Header, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"}
		if h := d.app.SessionHeader; h != "" {
			allowed = append(allowed, h)
			exposed = append(exposed, h, h+"-Expires")
		}
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.app.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   allowed,
			ExposedHeaders:   exposed,
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health/live", httpserver.HealthHandler(d.log, d.app.HealthTimeout))
	r.Get("/health/ready", httpserver.HealthHandler(d.log, d.app.HealthTimeout, d.checks...))
	r.Handle("/metrics", promhttp.HandlerFor(d.gatherer, promhttp.HandlerOpts{}))

	var adminOpts []admin.Option
	if d.trail != nil {
		adminOpts = append(adminOpts, admin.WithAuditTrail(d.trail))
	}
	r.Group(func(r chi.Router) {
		r.Use(d.sessions.Middleware)
		r.Mount("/", account.Router(account.RouterOptions{
			Account: account.NewService(d.auth, d.sessions,
				account.WithLogger(d.log),
				account.WithLoginLimit(d.loginLimit),
				account.WithRecoveryLimit(d.recoveryLimit),
			),
			Admin: admin.NewService(d.auth, d.log, adminOpts...),
		}))
	})
	return r
}
