// Package handler binds the services to named HTTP endpoints and owns
// response encoding. Handlers translate HTTP to service calls and back —
// no business logic lives here.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/readmegen/internal/apperror"
	"github.com/sakif/readmegen/internal/sanitize"
)

// ErrorResponse is the standard error shape returned by all API endpoints.
// RequiresAuth tells the frontend whether offering a login is a plausible
// remedy for this failure.
type ErrorResponse struct {
	Error        string `json:"error"`   // machine-readable kind code
	Message      string `json:"message"` // human-readable, classified — never an upstream body
	RequiresAuth bool   `json:"requiresAuth"`
}

// writeJSON sends a JSON response with the given status. Every structured
// payload passes through the sanitizer on its way out — this is the choke
// point that makes redaction uniform across handlers.
func writeJSON(w http.ResponseWriter, status int, data any) {
	clean, err := sanitize.Payload(data)
	if err != nil {
		// Unencodable payload is a programming error; nothing useful to
		// send the client beyond a bare 500.
		slog.Error("failed to sanitize response payload", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(clean); err != nil {
		// Headers already sent — logging is all that's left.
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError maps a classified error to its HTTP status and the standard
// error shape. The kind carries the status and the auth hint itself, so
// there is no mapping table to drift out of sync here.
func writeError(w http.ResponseWriter, err error) {
	kind := apperror.KindOf(err)

	message := "An internal error occurred"
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		// AppError.Message is our own classified text; the wrapped cause
		// (which may quote upstream details) stays out of the response.
		message = appErr.Message
	}

	writeJSON(w, kind.Status, ErrorResponse{
		Error:        kind.Code,
		Message:      message,
		RequiresAuth: kind.RequiresAuth,
	})
}

// errNoSession covers routes reached without the session middleware — a
// wiring mistake, not something a client can trigger.
func errNoSession() error {
	return apperror.New(apperror.Storage, "no session attached to request")
}
