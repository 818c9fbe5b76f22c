package web

// errors.go provides unified response handling for the web layer. Every
// response uses the same envelope: {"data": ...} on success, {"error": ...}
// on failure. Technical errors are logged server-side with the request id;
// the client only ever sees the mapped user message.

import (
	"encoding/json"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/brightclass/dataimport/internal/importer"
)

type envelope struct {
	Data  any                   `json:"data,omitempty"`
	Error *importer.UserMessage `json:"error,omitempty"`
}

// respondError logs the technical error and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := importer.MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", chimw.GetReqID(r.Context()),
	)

	respondErrorJSON(w, userMsg, statusCode)
}

func respondErrorJSON(w http.ResponseWriter, msg importer.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope{Error: &msg})
}

// respondJSON writes a success envelope. Encoding failures are logged since
// the header is already gone.
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(envelope{Data: data}); err != nil {
		slog.Error("json encode failed", "error", err)
	}
}
