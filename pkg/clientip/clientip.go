package clientip

import (
	"net"
	"net/http"
	"strings"
)

// proxyHeaders are consulted in order when proxy headers are trusted.
var proxyHeaders = []string{"CF-Connecting-IP", "DO-Connecting-IP", "X-Real-IP"}

// GetIP returns the caller address, preferring proxy headers. Only use it
// behind a proxy that overwrites those headers.
func GetIP(r *http.Request) string {
	for _, h := range proxyHeaders {
		if ip := parseIP(r.Header.Get(h)); ip != "" {
			return ip
		}
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for ip := range strings.SplitSeq(forwarded, ",") {
			if parsed := parseIP(ip); parsed != "" {
				return parsed
			}
		}
	}
	return RemoteIP(r)
}

// RemoteIP returns the address of the TCP peer, ignoring headers.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
