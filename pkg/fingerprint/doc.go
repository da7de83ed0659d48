// Package fingerprint derives a coarse device identifier from request headers.
// Sessions can be bound to it so a stolen cookie replayed from another
// browser is rejected:
//
//	sessions := session.New(
//		session.WithCookieManager(cookieMgr),
//		session.WithFingerprint(fingerprint.Generate),
//	)
package fingerprint
