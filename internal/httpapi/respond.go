package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/avelardo/infratrack/internal/auth"
	"github.com/avelardo/infratrack/internal/domain"
)

// StatusCSRFMismatch is the 419 used for CSRF failures, distinct from 403
// so clients know to re-fetch the token rather than escalate privileges.
const StatusCSRFMismatch = 419

// envelope is the JSON response shape for every API action.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message})
}

// writeError maps the error taxonomy onto HTTP statuses. Validation and
// authorization failures carry their descriptive message; anything
// unclassified is a persistence or internal error and the client gets a
// generic message while the detail goes to the server log.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, auth.ErrCSRFMismatch):
		writeJSON(w, StatusCSRFMismatch, envelope{Success: false, Message: "invalid or missing CSRF token"})
	case errors.Is(err, auth.ErrUnauthenticated):
		// API context: unauthenticated is a 403 JSON, not a redirect.
		writeJSON(w, http.StatusForbidden, envelope{Success: false, Message: "authentication required"})
	case errors.Is(err, auth.ErrForbidden):
		writeJSON(w, http.StatusForbidden, envelope{Success: false, Message: "you do not have permission to perform this action"})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Success: false, Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: err.Error()})
	default:
		if logger != nil {
			logger.Error("internal error", "error", err)
		}
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: "an internal error occurred"})
	}
}
