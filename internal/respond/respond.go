// Package respond centralizes JSON response writing so every handler and
// middleware answers with the same envelope, even on failure.
package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorBody is the error envelope returned by every failing endpoint.
type ErrorBody struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}

// JSON writes a success payload with the given status.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}

// Error writes the error envelope with a short error label and an optional
// human-readable message.
func Error(w http.ResponseWriter, status int, errLabel, message string) {
	JSON(w, status, ErrorBody{Error: errLabel, Message: message})
}

// ValidationError writes a 400 with the list of individual field problems.
func ValidationError(w http.ResponseWriter, errLabel string, details []string) {
	JSON(w, http.StatusBadRequest, ErrorBody{Error: errLabel, Details: details})
}

// Internal writes a generic 500. The underlying cause is logged server-side
// and never leaked to the client.
func Internal(w http.ResponseWriter, op string, err error) {
	log.Printf("%s: %v", op, err)
	Error(w, http.StatusInternalServerError, "internal server error", "")
}
