package binder

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMissingContentType   = errors.New("missing content type")
	ErrFailedToParseJSON    = errors.New("failed to parse JSON request body")
	ErrRequestTooLarge      = errors.New("request body too large")
	ErrFailedToParsePath    = errors.New("failed to parse path parameters")
	ErrInvalidQuery         = errors.New("invalid query parameters")
)
