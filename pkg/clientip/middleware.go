package clientip

import "net/http"

// Middleware stores the caller IP in the request context. Proxy headers are
// honoured only when trustProxy is set; otherwise clients could spoof them.
func Middleware(trustProxy bool) func(http.Handler) http.Handler {
	resolve := RemoteIP
	if trustProxy {
		resolve = GetIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(SetIPToContext(r.Context(), resolve(r))))
		})
	}
}
