package proxy

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error envelope returned for the fatal error classes
// defined in spec.md §6/§7: bad_request and upstream_connection_error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// sendError writes an ErrorResponse with the given HTTP status.
func sendError(w http.ResponseWriter, errType, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: errType, Message: message}) //nolint:errcheck
}
