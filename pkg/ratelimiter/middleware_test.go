package ratelimiter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/venuehub/pkg/ratelimiter"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (*ratelimiter.Result, error) {
	return nil, ratelimiter.ErrStoreUnavailable
}

func (failingLimiter) AllowN(context.Context, string, int) (*ratelimiter.Result, error) {
	return nil, ratelimiter.ErrStoreUnavailable
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("limits per key", func(t *testing.T) {
		t.Parallel()
		b, _ := newBucket(t, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Minute})
		h := ratelimiter.Middleware(b, ratelimiter.KeyByIP)(okHandler())

		codes := make([]int, 0, 3)
		for range 3 {
			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			codes = append(codes, rec.Code)
			assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		}
		assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("empty key skips", func(t *testing.T) {
		t.Parallel()
		h := ratelimiter.Middleware(failingLimiter{}, func(*http.Request) string { return "" })(okHandler())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()
		h := ratelimiter.Middleware(failingLimiter{}, ratelimiter.Static("k"))(okHandler())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("custom responder", func(t *testing.T) {
		t.Parallel()
		var gotErr error
		responder := func(w http.ResponseWriter, _ *http.Request, result *ratelimiter.Result, err error) {
			gotErr = err
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		h := ratelimiter.Middleware(failingLimiter{}, ratelimiter.Static("k"),
			ratelimiter.WithErrorResponder(responder))(okHandler())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.True(t, errors.Is(gotErr, ratelimiter.ErrStoreUnavailable))
	})
}

func TestComposite(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	key := ratelimiter.Composite(ratelimiter.Static("login"), func(*http.Request) string { return "" }, ratelimiter.Static("1.2.3.4"))(req)
	assert.Equal(t, "login:1.2.3.4", key)

	long := ratelimiter.Composite(ratelimiter.Static(strings.Repeat("x", 80)))(req)
	require.NotEmpty(t, long)
	assert.LessOrEqual(t, len(long), 64)
	assert.Equal(t, long, ratelimiter.Composite(ratelimiter.Static(strings.Repeat("x", 80)))(req))
}
