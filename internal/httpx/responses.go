package httpx

import (
	"encoding/json"
	"io"
	"net/http"
)

// Text writes body as a plain-text 200 response.
func Text(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

// JSON writes v as a 200 response without any envelope.
func JSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

// ServerError writes a terminating plain-text 500.
func ServerError(w http.ResponseWriter) {
	http.Error(w, "server error", http.StatusInternalServerError)
}
