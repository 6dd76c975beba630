package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rzbill/bytelog/internal/services/logsvc"
)

// Helper functions for common HTTP responses

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps log service errors onto HTTP statuses.
//
// Invalid offsets are the caller's fault, exhausted budgets map to
// Insufficient Storage, and zero-progress transfers report the boundary
// fault without implying log corruption.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, logsvc.ErrInvalidOffset):
		writeError(w, http.StatusBadRequest, "Invalid offset")
	case errors.Is(err, logsvc.ErrNoSpace):
		writeError(w, http.StatusInsufficientStorage, "Log memory budget exhausted")
	case errors.Is(err, logsvc.ErrShortTransfer):
		writeError(w, http.StatusBadRequest, "Transfer made no progress")
	default:
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}

// parseInt64 parses s, returning def for empty input and !ok for junk.
func parseInt64(s string, def int64) (int64, bool) {
	if s == "" {
		return def, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// formatInt64 renders n for response headers.
func formatInt64(n int64) string {
	return strconv.FormatInt(n, 10)
}

// parseLimit parses a limit string and returns a valid limit value.
//
// Returns 0 for empty strings or invalid values.
func parseLimit(limitStr string) int {
	if limitStr == "" {
		return 0
	}
	if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
		return limit
	}
	return 0
}
