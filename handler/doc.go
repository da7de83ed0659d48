// Package handler turns typed handler functions into http.HandlerFunc values.
//
// A HandlerFunc receives a Context and a request struct filled by the
// configured binders, and returns a Response. Every JSON endpoint answers
// with the same envelope:
//
//	{"data": ..., "meta": {...}, "error": {"code": "...", "message": "...", "details": {...}}}
//
// Errors returned by binders or responses go to the ErrorHandler. The one
// built by NewErrorHandler logs them and renders the envelope, mapping
// domain errors through the supplied Classifiers first.
package handler
