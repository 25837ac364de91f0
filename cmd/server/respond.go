package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/exportquote/internal/calculator"
	"github.com/Simplici0/exportquote/internal/distance"
	"github.com/Simplici0/exportquote/internal/history"
	"github.com/Simplici0/exportquote/internal/masterdata"
	"github.com/Simplici0/exportquote/internal/observability"
	"github.com/Simplici0/exportquote/internal/packing"
	"github.com/Simplici0/exportquote/internal/pricing"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorJSON writes {"error": {"code": string, "message": string}}.
func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// decodeJSON reads a JSON body into dst and answers invalid_json on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return false
	}
	return true
}

// writeServiceError maps domain errors onto the error envelope.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var selErr *pricing.SelectionError
	switch {
	case errors.As(err, &selErr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{
				"code":    "missing_selection",
				"message": err.Error(),
				"missing": selErr.Missing,
			},
		})
	case errors.Is(err, packing.ErrBoxTooLarge):
		writeErrorJSON(w, http.StatusUnprocessableEntity, "box_too_large", err.Error())
	case errors.Is(err, packing.ErrInvalidBox):
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, distance.ErrLocationNotResolved):
		writeErrorJSON(w, http.StatusUnprocessableEntity, "location_not_resolved", err.Error())
	case errors.Is(err, distance.ErrPortNotResolved):
		writeErrorJSON(w, http.StatusUnprocessableEntity, "port_not_resolved", err.Error())
	case errors.Is(err, masterdata.ErrNotFound), errors.Is(err, history.ErrNotFound):
		writeErrorJSON(w, http.StatusNotFound, "resource_not_found", err.Error())
	case errors.Is(err, masterdata.ErrInvalid), errors.Is(err, calculator.ErrInvalidRequest):
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		observability.FromContext(r.Context()).Error("request failed", zap.Error(err))
		writeErrorJSON(w, http.StatusInternalServerError, "db_error", "db error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return 0, false
	}
	return id, true
}

func queryID(r *http.Request, key string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get(key)), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
