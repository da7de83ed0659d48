// Package totp implements RFC 6238 time-based one-time passwords together with
// the helpers needed to store second-factor material safely.
//
// Secrets are 20 random bytes encoded as unpadded Base32. Codes are six digits
// over 30-second steps using HMAC-SHA1. Verify accepts a window of steps on
// either side of the current one and rejects malformed codes before computing
// anything.
//
// SecretBox seals secrets at rest with AES-256-GCM using the base64 key from
// TOTP_ENCRYPTION_KEY.
//
// Emergency codes are 16 uppercase hex characters. Only their SHA-256 digest is
// stored; MatchEmergencyCode performs a linear constant-time scan.
//
// Example:
//
//	secret, _ := totp.GenerateSecretKey()
//	uri, _ := totp.GetTOTPURI(totp.URIParams{Secret: secret, AccountName: "alice", Issuer: "VenueHub"})
//	ok := totp.Verify(secret, "123456", 1)
package totp
