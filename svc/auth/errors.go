package auth

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/venuehub/handler"
	domain "github.com/dmitrymomot/venuehub/pkg/auth"
)

var kindStatus = map[domain.Kind]int{
	domain.KindAuthentication: http.StatusUnauthorized,
	domain.KindAuthorization:  http.StatusForbidden,
	domain.KindValidation:     http.StatusBadRequest,
	domain.KindConflict:       http.StatusConflict,
	domain.KindPrecondition:   http.StatusPreconditionFailed,
	domain.KindInvalidToken:   http.StatusUnauthorized,
	domain.KindNotFound:       http.StatusNotFound,
	domain.KindRateLimited:    http.StatusTooManyRequests,
}

// Classify maps auth domain errors to HTTP errors: the status follows the
// error kind, the code is the error's key. Field validation errors are left
// to the handler package, which renders them as 422 with details.
func Classify(err error) (handler.HTTPError, bool) {
	var e domain.Error
	if !errors.As(err, &e) {
		return handler.HTTPError{}, false
	}
	status, ok := kindStatus[e.Kind]
	if !ok {
		return handler.ErrInternalServerError, true
	}
	return handler.NewHTTPError(status, e.Key, e.Message), true
}

// ClassifyLogin is Classify with wrong second-factor codes reported exactly
// like wrong passwords, so a login response never reveals which factor failed.
func ClassifyLogin(err error) (handler.HTTPError, bool) {
	if errors.Is(err, domain.ErrInvalidTOTP) {
		err = domain.ErrInvalidCredentials
	}
	return Classify(err)
}
