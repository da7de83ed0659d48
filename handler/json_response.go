package handler

import (
	"encoding/json"
	"net/http"
)

// JSONResponse is the envelope every JSON endpoint writes.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status  int
	headers http.Header
	body    JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	for k, v := range j.headers {
		w.Header()[k] = v
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

type JSONOption func(*jsonResponse)

func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) { r.status = status }
}

func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) { r.body.Meta = meta }
}

func WithJSONHeader(key, value string) JSONOption {
	return func(r *jsonResponse) {
		if r.headers == nil {
			r.headers = make(http.Header)
		}
		r.headers.Set(key, value)
	}
}

// JSON wraps v in the data field with status 200 unless overridden.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: JSONResponse{Data: v}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError renders e in the error field with e.Code as status.
// Server errors never expose their message.
func JSONError(e HTTPError, details map[string][]string, opts ...JSONOption) Response {
	msg := e.Message
	if msg == "" || e.Code >= http.StatusInternalServerError {
		msg = http.StatusText(e.Code)
	}
	r := &jsonResponse{
		status: e.Code,
		body: JSONResponse{Error: &ErrorDetail{
			Code:    e.Key,
			Message: msg,
			Details: details,
		}},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
