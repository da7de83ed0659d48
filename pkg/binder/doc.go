// Package binder fills request structs for handler.Wrap.
//
// JSON decodes bodies strictly (unknown fields and trailing data are
// rejected, size is bounded) and leaves string values exactly as sent.
// Path copies router parameters into fields tagged `path:"name"`.
package binder
