// Package httputil holds the shared HTTP response helpers. Every handler
// writes JSON through these so error shape and status mapping stay uniform.
package httputil

import (
	"encoding/json"
	"net/http"

	"registrar/pkg/derrors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteError maps a coded error onto an HTTP status and an error body.
// Internal and unavailable errors omit the description so database and
// registry details never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := derrors.CodeOf(err)
	status := statusFor(code)
	body := errorBody{Error: string(code)}
	if status < http.StatusInternalServerError {
		body.Description = err.Error()
	}
	WriteJSON(w, status, body)
}

func statusFor(code derrors.Code) int {
	switch code {
	case derrors.CodeInvalidInput, derrors.CodeBadRequest:
		return http.StatusBadRequest
	case derrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case derrors.CodeForbidden:
		return http.StatusForbidden
	case derrors.CodeNotFound:
		return http.StatusNotFound
	case derrors.CodeConflict, derrors.CodeInvariantViolation:
		return http.StatusConflict
	case derrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Decode parses the request body into T. A malformed body yields a coded
// bad-request error ready for WriteError.
func Decode[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, derrors.Wrap(err, derrors.CodeBadRequest, "malformed request body")
	}
	return v, nil
}
