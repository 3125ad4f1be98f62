// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API handlers for the student assembly site:
// the public content endpoints and the admin back office.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/assembly-go/internal/middleware"
	"github.com/olegiv/assembly-go/internal/store"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db              *sql.DB
	queries         *store.Queries
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, sm *scs.SessionManager, lp *middleware.LoginProtection) *Handler {
	return &Handler{
		db:              db,
		queries:         store.New(db),
		sessionManager:  sm,
		loginProtection: lp,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response. Every error body is {"error": message}.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeInternalError logs the underlying error and writes a generic 500
// response without internal detail.
func writeInternalError(w http.ResponseWriter, action string, err error) {
	slog.Error("request failed", "action", action, "error", err)
	writeError(w, http.StatusInternalServerError, "Something went wrong")
}

// decodeJSON decodes the request body into dst. On failure it writes a 400
// response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// parseIDParam extracts the numeric {id} route parameter.
func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// entityFetcher is a function that fetches an entity by ID.
type entityFetcher[T any] func(id int64) (T, error)

// requireEntityByID parses an ID from the URL and fetches the entity.
// Returns the entity and true if successful, or the zero value and false
// after writing the error response. The entityName is used in messages
// (e.g. "Publication", "Event").
func requireEntityByID[T any](w http.ResponseWriter, r *http.Request, entityName string, fetch entityFetcher[T]) (T, bool) {
	var zero T

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, entityName+" not found")
		return zero, false
	}

	entity, err := fetch(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, entityName+" not found")
		} else {
			writeInternalError(w, "fetch "+entityName, err)
		}
		return zero, false
	}

	return entity, true
}

// decodeStringList parses a JSON array column into a string slice.
// Invalid or empty stored values decode to an empty slice.
func decodeStringList(raw string) []string {
	if raw == "" || raw == "[]" {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return []string{}
	}
	return list
}

// encodeStringList serializes a string slice for a JSON array column.
func encodeStringList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(raw)
}
