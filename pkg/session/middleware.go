package session

import (
	"net/http"
)

// Middleware attaches the request's session, if any, to the context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.Load(r.Context(), r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		m.touch(session)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}
