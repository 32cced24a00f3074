// Package httputil contains shared HTTP utilities for consistent response
// formatting across handlers.
package httputil

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

// WriteJSONError writes the API's error shape: {"message": ...}.
func WriteJSONError(w http.ResponseWriter, message string, status int) {
	WriteJSON(w, map[string]string{"message": message}, status)
}
