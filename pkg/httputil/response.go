// Package httputil provides HTTP handler utilities for consistent error handling,
// JSON encoding/decoding, and request parsing.
package httputil

import (
	"encoding/json"
	"net/http"
	"time"
)

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful response (200 OK) with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteCreated writes a successful creation response (201 Created) with JSON data
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// ErrorResponse is the standardized error body. ValidationErrors carries
// field-level detail for 400 responses.
type ErrorResponse struct {
	Error            string            `json:"error"`
	Message          string            `json:"message,omitempty"`
	Status           int               `json:"status"`
	Timestamp        string            `json:"timestamp"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

// WriteErrorMessage writes a JSON error response with a custom message
func WriteErrorMessage(w http.ResponseWriter, status int, title, message string) {
	WriteJSON(w, status, ErrorResponse{
		Error:     title,
		Message:   message,
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// WriteValidationError writes a 400 response with a field-level error map
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:            "Validation Error",
		Message:          "Invalid request data",
		Status:           http.StatusBadRequest,
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		ValidationErrors: fieldErrors,
	})
}

// WriteBadRequest writes a bad request error (400)
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusBadRequest, "Bad Request", message)
}

// WriteTooManyRequests writes a rate limit error (429)
func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusTooManyRequests, "Too Many Requests", message)
}

// WriteInternalError writes a generic 500 response. Internal details are
// never surfaced to the client; callers log them server-side.
func WriteInternalError(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred")
}
