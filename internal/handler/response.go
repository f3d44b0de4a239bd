// Package handler contains the HTTP layer: request parsing, the JSON
// response envelope, and the translation of domain errors to status codes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/idealab/internal/apperror"
)

// Response is the envelope every JSON endpoint answers with. Success is
// redundant with Status (false exactly when the status is 4xx/5xx) but
// spares every client a numeric comparison.
type Response struct {
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// defaultMessage supplies the envelope message when the handler has
// nothing more specific to say.
func defaultMessage(status int) string {
	switch status {
	case http.StatusOK:
		return "OK"
	case http.StatusCreated:
		return "Created"
	case http.StatusBadRequest:
		return "Bad request"
	case http.StatusUnauthorized:
		return "Authentication required"
	case http.StatusForbidden:
		return "Not allowed"
	case http.StatusNotFound:
		return "Not found"
	case http.StatusConflict:
		return "Conflict"
	default:
		return "Server error"
	}
}

// writeStatus sends the envelope for a status code. An empty message takes
// the status's default. Headers must be set before the body is written,
// hence the fixed order here.
func writeStatus(w http.ResponseWriter, status int, message string, data any) {
	if message == "" {
		message = defaultMessage(status)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Response{
		Status:  status,
		Success: status < 400,
		Message: message,
		Data:    data,
	}); err != nil {
		// Headers are already gone; all we can do is log.
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError maps a domain error to its envelope. The service layer
// returns apperror sentinels; this is the single place they become HTTP
// status codes, so nothing below the handler layer ever sees one.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthenticated):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		}
		writeStatus(w, status, appErr.Message, nil)
		return
	}

	// Unknown error — generic 500. The raw message may contain SQL or
	// file paths; it goes to the log, never to the client.
	writeStatus(w, http.StatusInternalServerError, "", nil)
}

// NotFound is the router's catch-all for paths that match nothing. The
// envelope keeps even lost requests on the JSON contract.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusNotFound, "You've reached an unknown corner of this universe", nil)
}
