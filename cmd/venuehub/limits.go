package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/httprate"

	"github.com/dmitrymomot/venuehub/handler"
	"github.com/dmitrymomot/venuehub/pkg/clientip"
	"github.com/dmitrymomot/venuehub/pkg/logger"
	"github.com/dmitrymomot/venuehub/pkg/ratelimiter"
)

// loginLimiter throttles POST /login per client IP. Counters are local to the
// process.
func loginLimiter(limits rateLimitConfig) func(http.Handler) http.Handler {
	if limits.LoginRequests <= 0 {
		return nil
	}
	return httprate.Limit(limits.LoginRequests, limits.LoginWindow,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return clientip.FromRequest(r), nil
		}),
		httprate.WithLimitHandler(tooManyRequests),
	)
}

// recoveryLimiter throttles the emergency reset per client IP on the shared
// limiter store, so the budget holds across instances when Redis is used.
func recoveryLimiter(store ratelimiter.Store, limits rateLimitConfig, log *slog.Logger) (func(http.Handler) http.Handler, error) {
	if limits.RecoveryRequests <= 0 {
		return nil, nil
	}
	bucket, err := ratelimiter.NewBucket(store, ratelimiter.PerWindow(limits.RecoveryRequests, limits.RecoveryWindow))
	if err != nil {
		return nil, err
	}
	return ratelimiter.Middleware(bucket,
		ratelimiter.Composite(ratelimiter.Static("recovery"), ratelimiter.KeyByIP),
		ratelimiter.WithErrorResponder(func(w http.ResponseWriter, r *http.Request, _ *ratelimiter.Result, err error) {
			if err != nil {
				log.ErrorContext(r.Context(), "rate limiter failed", logger.Error(err))
				_ = handler.JSONError(handler.ErrInternalServerError, nil).Render(w, r)
				return
			}
			tooManyRequests(w, r)
		}),
	), nil
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	_ = handler.JSONError(handler.ErrTooManyRequests, nil).Render(w, r)
}
