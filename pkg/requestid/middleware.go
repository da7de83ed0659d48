package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

// Header carries the request ID in both directions.
const Header = "X-Request-ID"

// Client-supplied IDs are reused only when short and free of odd characters,
// since they end up in logs.
var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,128}$`)

// Middleware reuses a valid incoming X-Request-ID or generates a UUID, stores
// it in the context and echoes it back.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if !validID.MatchString(id) {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
	})
}
