package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/venuehub/pkg/binder"
	"github.com/dmitrymomot/venuehub/pkg/logger"
	"github.com/dmitrymomot/venuehub/pkg/validator"
)

// Classifier maps domain errors to HTTP errors. It reports false for errors
// it does not recognise.
type Classifier func(err error) (HTTPError, bool)

var errValidation = HTTPError{
	Code:    http.StatusUnprocessableEntity,
	Key:     "validation_error",
	Message: "validation failed",
}

// Classify maps err to an HTTP error using the package's built-in rules:
// HTTPError values, validation errors with field details, binder failures,
// and 500 for everything else.
func Classify(err error) (HTTPError, map[string][]string) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, nil
	}
	if ve := validator.ExtractValidationErrors(err); len(ve) > 0 {
		return errValidation, ve.Map()
	}
	switch {
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return ErrUnsupportedMediaType, nil
	case errors.Is(err, binder.ErrRequestTooLarge):
		return HTTPError{Code: http.StatusRequestEntityTooLarge, Key: "request_entity_too_large"}, nil
	case errors.Is(err, binder.ErrFailedToParseJSON), errors.Is(err, binder.ErrFailedToParsePath):
		return HTTPError{Code: http.StatusBadRequest, Key: "bad_request", Message: "malformed request body"}, nil
	case errors.Is(err, binder.ErrInvalidQuery):
		return HTTPError{Code: http.StatusBadRequest, Key: "bad_request", Message: "malformed query parameters"}, nil
	}
	return ErrInternalServerError, nil
}

// NewErrorHandler logs the error (warn for 4xx, error for 5xx) and renders
// the JSON envelope. Classifiers run before the built-in rules; the first
// match wins.
func NewErrorHandler(log *slog.Logger, classifiers ...Classifier) ErrorHandler[Context] {
	if log == nil {
		log = logger.Discard()
	}
	return func(ctx Context, err error) {
		httpErr, details := classify(err, classifiers)

		level := slog.LevelWarn
		if httpErr.Code >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		r := ctx.Request()
		log.LogAttrs(r.Context(), level, "request failed",
			logger.Error(err),
			slog.Int("status", httpErr.Code),
			slog.String("code", httpErr.Key),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("http"),
		)

		if renderErr := JSONError(httpErr, details).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response", logger.Error(renderErr))
		}
	}
}

func classify(err error, classifiers []Classifier) (HTTPError, map[string][]string) {
	for _, c := range classifiers {
		if httpErr, ok := c(err); ok {
			if httpErr.Key == errValidation.Key {
				if ve := validator.ExtractValidationErrors(err); len(ve) > 0 {
					return httpErr, ve.Map()
				}
			}
			return httpErr, nil
		}
	}
	return Classify(err)
}
