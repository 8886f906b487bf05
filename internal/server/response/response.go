// Package response provides the HTTP response helpers of the development
// backend. Successful responses carry the resource itself as the JSON body;
// failures carry an Error body.
package response

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/agentstation/tasksync/pkg/errors"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

// Fail creates an error body.
func Fail(code, message string) Error {
	return Error{Code: code, Message: message}
}

// JSON writes v as JSON with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding errors are ignored as headers are already sent (best effort)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a successful response with 200 status.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a successful response with 201 status.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, Fail("BAD_REQUEST", message))
}

// Unauthorized writes a 401 error response.
func Unauthorized(w http.ResponseWriter, message string) {
	JSON(w, http.StatusUnauthorized, Fail("UNAUTHORIZED", message))
}

// Forbidden writes a 403 error response.
func Forbidden(w http.ResponseWriter, message string) {
	JSON(w, http.StatusForbidden, Fail("FORBIDDEN", message))
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, message string) {
	JSON(w, http.StatusNotFound, Fail("NOT_FOUND", message))
}

// MethodNotAllowed writes a 405 error response.
func MethodNotAllowed(w http.ResponseWriter, method string) {
	JSON(w, http.StatusMethodNotAllowed, Fail("METHOD_NOT_ALLOWED", "Method "+method+" is not supported for this endpoint"))
}

// InternalError writes a 500 error response.
func InternalError(w http.ResponseWriter, _ error) {
	// Details stay in the server log; the client only learns that it failed.
	JSON(w, http.StatusInternalServerError, Fail("INTERNAL_ERROR", "Internal server error"))
}

// ServiceUnavailable writes a 503 error response.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	JSON(w, http.StatusServiceUnavailable, Fail("SERVICE_UNAVAILABLE", message))
}

// ErrorFromType maps typed errors to appropriate HTTP responses.
// A data-layer ErrUnauthorized means the caller is authenticated but not
// allowed to touch the resource, so it maps to 403.
func ErrorFromType(w http.ResponseWriter, err error) {
	var (
		nf *errors.NotFoundError
		ve *errors.ValidationError
	)
	switch {
	case stderrors.As(err, &nf):
		NotFound(w, nf.Error())
	case stderrors.As(err, &ve):
		BadRequest(w, ve.Error())
	case errors.IsUnauthorized(err):
		Forbidden(w, err.Error())
	case errors.IsUnavailable(err):
		ServiceUnavailable(w, err.Error())
	default:
		InternalError(w, err)
	}
}
