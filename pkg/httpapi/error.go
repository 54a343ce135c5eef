package httpapi

import (
	"encoding/json"
	"net/http"
)

// ErrorEnvelope standardizes JSON error responses.
type ErrorEnvelope struct {
	Error string            `json:"error"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// MessageEnvelope is the body of successful commands that return no data.
type MessageEnvelope struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Error: message,
		Meta:  meta,
	})
}

func WriteMessage(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, &MessageEnvelope{Message: message})
}

// NotFound and MethodNotAllowed are the router fallbacks.
func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = WriteError(w, http.StatusNotFound, "Not found", map[string]string{"path": r.URL.Path})
	})
}

func MethodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", map[string]string{"path": r.URL.Path})
	})
}
