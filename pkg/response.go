package pkg

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

var ContentType = struct {
	JSON string
	Text string
	HTML string
}{
	JSON: "application/json",
	Text: "text/plain; charset=utf-8",
	HTML: "text/html; charset=utf-8",
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteResponseBytes(w http.ResponseWriter, contentType string, message []byte, statusCode int) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(statusCode)

	if _, err := w.Write(message); err != nil {
		log.Errorf("failed to write response [%d]: %s", statusCode, err)
	}
}

func WriteTextResponseOK(w http.ResponseWriter, message string) {
	WriteResponseBytes(w, ContentType.Text, []byte(message), http.StatusOK)
}

// WriteJSON marshals v and writes it with the given status code.
// A marshal failure is logged and turned into a 500 with the generic error body.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	resp, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal json response: %s", err)
		WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteResponseBytes(w, ContentType.JSON, resp, statusCode)
}

func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	resp, _ := json.Marshal(ErrorResponse{Error: message})
	WriteResponseBytes(w, ContentType.JSON, resp, statusCode)
}
