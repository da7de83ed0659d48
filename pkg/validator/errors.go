package validator

import "errors"

// ErrValidationFailed is a generic sentinel for callers that need one.
var ErrValidationFailed = errors.New("validation failed")
