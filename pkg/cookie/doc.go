// Package cookie manages HTTP cookies with shared defaults and AES-256-GCM
// encrypted values.
//
// The first configured secret seals new values; every secret is tried when
// opening, so secrets can be rotated by prepending a new one. Secrets must be
// at least 32 characters.
//
//	man, err := cookie.New([]string{os.Getenv("COOKIE_SECRETS")}, cookie.WithSecure(true))
//	if err != nil {
//		return err
//	}
//	_ = man.SetEncrypted(w, "sid", token, cookie.WithMaxAge(3600))
//	token, err := man.GetEncrypted(r, "sid")
//
// Config can be populated from the environment with pkg/config.
package cookie
