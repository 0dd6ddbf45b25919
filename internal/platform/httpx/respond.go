// Package httpx provides JSON response utilities shared by the HTTP handlers.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ResponseBody is the success envelope returned to portal clients.
type ResponseBody struct {
	Response string `json:"response"`
}

// ErrorBody is the failure envelope returned to portal clients.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Respond writes a 200 response carrying a human-readable message.
func Respond(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, ResponseBody{Response: message})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
