package http

import (
	"encoding/json"
	"net/http"
	"time"
)

// Problem is the JSON body returned for every error response.
type Problem struct {
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteProblem writes an error response.
func WriteProblem(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Problem{
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}
