package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/dmitrymomot/venuehub/pkg/clientip"
)

// Generate hashes the browser-identifying parts of r into a 32-character hex
// string. The client IP is taken from clientip.FromRequest, so the
// proxy-trust decision made by clientip.Middleware applies here too.
func Generate(r *http.Request) string {
	return hash(
		r.UserAgent(),
		r.Header.Get("Accept-Language"),
		clientip.FromRequest(r),
	)
}

// GenerateWithoutIP is Generate minus the IP, for clients that roam between
// networks (venue Wi-Fi to mobile data) during a shift.
func GenerateWithoutIP(r *http.Request) string {
	return hash(
		r.UserAgent(),
		r.Header.Get("Accept-Language"),
	)
}

// Validate reports whether r still produces fingerprint using gen.
func Validate(r *http.Request, fingerprint string, gen func(*http.Request) string) bool {
	return fingerprint != "" && gen(r) == fingerprint
}

func hash(components ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(components, "|")))
	return hex.EncodeToString(sum[:16])
}
