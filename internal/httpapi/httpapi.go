// Package httpapi defines the JSON error envelope and response helpers shared by
// all HTTP handlers. Internal errors are mapped to the envelope at the boundary;
// raw driver or signing errors never reach clients.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
)

// Error is an API error with the HTTP status it maps to. Code is a stable
// machine-readable identifier; Message is safe to show to clients.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Code + ": " + e.Message }

// BadRequest returns a 400 error for missing or malformed input.
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: message}
}

// Unauthorized returns a 401 error for missing or failed authentication.
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

// Forbidden returns a 403 error for rejected credentials or tokens.
func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: message}
}

// NotFound returns a 404 error.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: message}
}

// Conflict returns a 409 error for duplicate resources.
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Code: "CONFLICT", Message: message}
}

// Unavailable returns a 503 error for transient backend failures; clients may retry.
func Unavailable(message string) *Error {
	return &Error{Status: http.StatusServiceUnavailable, Code: "STORE_UNAVAILABLE", Message: message}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("httpapi: encode response: %v", err)
		}
	}
}

// WriteError writes err as the JSON error envelope. Errors that are not *Error
// are logged and returned as an opaque 500.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *Error
	if e, ok := err.(*Error); ok {
		apiErr = e
	} else {
		log.Printf("httpapi: internal error: %v", err)
		apiErr = &Error{Status: http.StatusInternalServerError, Code: "INTERNAL", Message: "internal server error"}
	}
	WriteJSON(w, apiErr.Status, apiErr)
}
