// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/olegiv/assembly-go/internal/store"
	"github.com/olegiv/assembly-go/internal/util"
)

// auditEntryResponse is the wire form of an audit log row.
type auditEntryResponse struct {
	ID        int64          `json:"id"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	UserID    *int64         `json:"userId"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"createdAt"`
}

func auditEntryFromStore(e store.AuditEntry) auditEntryResponse {
	metadata := map[string]any{}
	_ = json.Unmarshal([]byte(e.Metadata), &metadata)

	return auditEntryResponse{
		ID:        e.ID,
		Level:     e.Level,
		Category:  e.Category,
		Message:   e.Message,
		UserID:    util.PtrFromNullInt64(e.UserID),
		Metadata:  metadata,
		CreatedAt: e.CreatedAt,
	}
}

// AdminListAudit handles GET /api/admin/audit.
func (h *Handler) AdminListAudit(w http.ResponseWriter, r *http.Request) {
	page := parsePageParam(r)
	limit := parseLimitParam(r)

	params := store.ListAuditEntriesParams{
		Category: r.URL.Query().Get("category"),
		Level:    r.URL.Query().Get("level"),
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}

	entries, err := h.queries.ListAuditEntries(r.Context(), params)
	if err != nil {
		writeInternalError(w, "list audit log", err)
		return
	}
	total, err := h.queries.CountAuditEntries(r.Context(), params)
	if err != nil {
		writeInternalError(w, "count audit log", err)
		return
	}

	items := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, auditEntryFromStore(e))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries":    items,
		"pagination": newPagination(page, limit, total),
	})
}
