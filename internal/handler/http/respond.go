package http

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error body shape shared by every endpoint. Success
// payloads never carry an "error" key, so callers can always tell the two
// apart structurally.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code, message string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: code, Message: message}, statusCode)
}
