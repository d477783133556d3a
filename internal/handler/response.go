package handler

// RESPONSE HELPERS:
// Every error response from the API has the same shape:
//
//	{"error": "Task not found with id abc123", "code": "not_found"}
//
// "error" is meant for people, "code" for programs.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/kanban-board/internal/apperror"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeJSON sends a JSON response with the given status code. Headers must
// be set before WriteHeader; anything set after is silently dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorStatus maps a domain error to its HTTP status and machine code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError translates err into a JSON error response. Errors that are not
// *apperror.AppError become a generic 500; their details are logged, never
// sent, because they may contain file paths or SQL.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status, code := errorStatus(err)
		writeJSON(w, status, ErrorResponse{Error: appErr.Message, Code: code})
		return
	}

	logger.Error("internal error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: "An internal error occurred",
		Code:  "internal_error",
	})
}

// WriteError is writeError for callers outside the package (middleware,
// router fallbacks).
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error) {
	writeError(w, logger, err)
}

// decodeJSON reads a single JSON value from the body into dst, enforcing
// maxBytes. Malformed, empty and oversized bodies are validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperror.ValidationFailed("", fmt.Sprintf("Request body must not exceed %d bytes", tooLarge.Limit))
		case errors.Is(err, io.EOF):
			return apperror.ValidationFailed("", "Request body is required")
		default:
			return apperror.ValidationFailed("", "Invalid JSON body")
		}
	}
	if dec.More() {
		return apperror.ValidationFailed("", "Request body must contain a single JSON value")
	}
	return nil
}
