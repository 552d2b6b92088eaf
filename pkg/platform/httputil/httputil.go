// Package httputil centralizes JSON response writing so every endpoint emits
// the same envelope: a boolean success flag plus a human-readable message.
package httputil

import (
	"encoding/json"
	"net/http"

	"inova/pkg/apierrors"
)

// envelope is the common failure response wrapper.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a success envelope merged with the given payload
// fields. Payload keys must not collide with the envelope keys.
func WriteSuccess(w http.ResponseWriter, status int, message string, payload map[string]any) {
	body := map[string]any{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	WriteJSON(w, status, body)
}

// WriteError translates a service error into the failure envelope. Internal
// errors are collapsed to a generic message so nothing sensitive leaks.
func WriteError(w http.ResponseWriter, err error) {
	code := apierrors.CodeOf(err)
	WriteJSON(w, apierrors.ToHTTPStatus(code), envelope{
		Success: false,
		Error:   string(code),
		Message: apierrors.MessageOf(err),
	})
}
