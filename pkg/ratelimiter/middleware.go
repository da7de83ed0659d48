package ratelimiter

import (
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/venuehub/pkg/clientip"
)

// maxKeyLength bounds storage keys; longer composite keys are hashed.
const maxKeyLength = 64

// KeyFunc extracts a rate limit key from the request. An empty key skips limiting.
type KeyFunc func(r *http.Request) string

// Composite joins the non-empty keys of several KeyFuncs with ':'.
// Results longer than 64 characters are replaced by their FNV-1a hash.
func Composite(keyFuncs ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(keyFuncs))
		for _, fn := range keyFuncs {
			if key := fn(r); key != "" {
				parts = append(parts, key)
			}
		}
		combined := strings.Join(parts, ":")
		if len(combined) <= maxKeyLength {
			return combined
		}
		h := fnv.New64a()
		_, _ = h.Write([]byte(combined))
		return strconv.FormatUint(h.Sum64(), 36)
	}
}

// Static returns a KeyFunc that always yields key, for namespacing composites.
func Static(key string) KeyFunc {
	return func(*http.Request) string { return key }
}

// KeyByIP keys on the client IP resolved by clientip.Middleware.
func KeyByIP(r *http.Request) string {
	return clientip.FromRequest(r)
}

// ErrorResponder writes the response for rejected or failed checks.
// result is nil when err is set.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, result *Result, err error)

type middlewareOptions struct {
	responder ErrorResponder
}

type MiddlewareOption func(*middlewareOptions)

func WithErrorResponder(fn ErrorResponder) MiddlewareOption {
	return func(o *middlewareOptions) {
		if fn != nil {
			o.responder = fn
		}
	}
}

func defaultResponder(w http.ResponseWriter, _ *http.Request, result *Result, err error) {
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
}

// Middleware consumes one token per request and sets X-RateLimit-* headers.
// Rejected requests get Retry-After and the responder's output.
func Middleware(limiter RateLimiter, keyFunc KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	o := middlewareOptions{responder: defaultResponder}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := limiter.Allow(r.Context(), key)
			if err != nil {
				o.responder(w, r, nil, err)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed() {
				if secs := int(result.RetryAfter().Seconds()); secs > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				o.responder(w, r, result, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
