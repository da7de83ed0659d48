package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/venuehub/handler"
	"github.com/dmitrymomot/venuehub/pkg/binder"
	"github.com/dmitrymomot/venuehub/pkg/validator"
)

type echoRequest struct {
	Name string `json:"name"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) handler.JSONResponse {
	t.Helper()
	var body handler.JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("binds and renders", func(t *testing.T) {
		t.Parallel()
		h := handler.Wrap(func(ctx handler.Context, req echoRequest) handler.Response {
			return handler.JSON(map[string]string{"hello": req.Name}, handler.WithJSONStatus(http.StatusCreated))
		}, handler.WithBinders[handler.Context, echoRequest](binder.JSON()))

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"alice"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"data":{"hello":"alice"}}`, rec.Body.String())
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})

	t.Run("bind error", func(t *testing.T) {
		t.Parallel()
		called := false
		h := handler.Wrap(func(ctx handler.Context, req echoRequest) handler.Response {
			called = true
			return handler.Empty()
		}, handler.WithBinders[handler.Context, echoRequest](binder.JSON()))

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "bad_request", decode(t, rec).Error.Code)
	})

	t.Run("decorators run outermost first", func(t *testing.T) {
		t.Parallel()
		var order []string
		mark := func(name string) handler.Decorator[handler.Context, echoRequest] {
			return func(next handler.HandlerFunc[handler.Context, echoRequest]) handler.HandlerFunc[handler.Context, echoRequest] {
				return func(ctx handler.Context, req echoRequest) handler.Response {
					order = append(order, name)
					return next(ctx, req)
				}
			}
		}
		h := handler.Wrap(func(handler.Context, echoRequest) handler.Response {
			order = append(order, "handler")
			return handler.Empty()
		}, handler.WithDecorators(mark("outer"), mark("inner")))

		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, []string{"outer", "inner", "handler"}, order)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		h := handler.Wrap(func(handler.Context, echoRequest) handler.Response { return nil })
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestNewErrorHandler(t *testing.T) {
	t.Parallel()

	errDomain := errors.New("domain failure")
	classifier := func(err error) (handler.HTTPError, bool) {
		if errors.Is(err, errDomain) {
			return handler.NewHTTPError(http.StatusConflict, "conflict", "already done"), true
		}
		return handler.HTTPError{}, false
	}

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
		details map[string][]string
		level   string
	}{
		{"classified", errDomain, http.StatusConflict, "conflict", "already done", nil, "WARN"},
		{"http error", handler.ErrForbidden, http.StatusForbidden, "forbidden", "Forbidden", nil, "WARN"},
		{
			name:    "validation",
			err:     validator.Apply(validator.RequiredString("username", "")),
			status:  http.StatusUnprocessableEntity,
			code:    "validation_error",
			message: "validation failed",
			details: map[string][]string{"username": {"field is required"}},
			level:   "WARN",
		},
		{"internal hides message", errors.New("db password leaked"), http.StatusInternalServerError, "internal_server_error", "Internal Server Error", nil, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var logs bytes.Buffer
			log := slog.New(slog.NewTextHandler(&logs, nil))
			h := handler.Wrap(func(handler.Context, echoRequest) handler.Response {
				return handler.Error(tt.err)
			}, handler.WithErrorHandler[handler.Context, echoRequest](handler.NewErrorHandler(log, classifier)))

			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodPost, "/x", nil))

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.message, body.Error.Message)
			if tt.details != nil {
				assert.Equal(t, tt.details, body.Error.Details)
			}
			assert.Contains(t, logs.String(), "level="+tt.level)
		})
	}
}
