// Package auth connects the auth domain service to HTTP: it maps domain
// errors to statuses and guards routes using the session's auth state.
package auth
