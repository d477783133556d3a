package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/kanban-board/internal/apperror"
)

// HandleHealth reports liveness.
//
// HTTP: GET /healthz
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// APINotFound answers unknown /api routes with a JSON 404 instead of the
// browser app.
func APINotFound(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, logger, &apperror.AppError{
			Err:     apperror.ErrNotFound,
			Message: "Not Found",
		})
	}
}
