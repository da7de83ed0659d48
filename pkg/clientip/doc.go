// Package clientip resolves the caller's IP address for logging and
// per-address throttling.
//
// Behind a reverse proxy, enable trustProxy so CF-Connecting-IP,
// DO-Connecting-IP, X-Real-IP and X-Forwarded-For are used; otherwise only the
// TCP peer address counts.
//
//	r.Use(clientip.Middleware(cfg.TrustProxy))
//	ip := clientip.FromRequest(req)
package clientip
