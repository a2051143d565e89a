package httpapi

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response shape: code 1 on success, 0 on failure.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Code: 1, Message: "success", Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Code: 0, Message: message})
}
