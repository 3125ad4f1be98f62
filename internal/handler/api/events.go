// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/assembly-go/internal/middleware"
	"github.com/olegiv/assembly-go/internal/model"
	"github.com/olegiv/assembly-go/internal/store"
)

// eventResponse is the wire form of an event.
type eventResponse struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Location      string     `json:"location"`
	Description   string     `json:"description"`
	StartDateTime time.Time  `json:"startDateTime"`
	EndDateTime   *time.Time `json:"endDateTime,omitempty"`
	Published     bool       `json:"published"`
	CreatedByID   int64      `json:"createdById"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func eventFromStore(e store.Event) eventResponse {
	resp := eventResponse{
		ID:            e.ID,
		Title:         e.Title,
		Location:      e.Location,
		Description:   e.Description,
		StartDateTime: e.StartAt,
		Published:     e.Published,
		CreatedByID:   e.CreatedBy,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
	if e.EndAt.Valid {
		t := e.EndAt.Time
		resp.EndDateTime = &t
	}
	return resp
}

// eventRequest is the create request body. The start instant arrives as
// separate date and time strings that must be supplied together.
type eventRequest struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
	EventDate   string `json:"eventDate"`
	Time        string `json:"time"`
	EndDate     string `json:"endDate"`
	EndTime     string `json:"endTime"`
	Published   bool   `json:"published"`
}

// CreateEvent handles POST /api/admin/events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if req.Location == "" {
		writeError(w, http.StatusBadRequest, "Location is required")
		return
	}

	startAt, err := model.CombineDateTime(req.EventDate, req.Time)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var endAt sql.NullTime
	if req.EndDate != "" || req.EndTime != "" {
		end, err := model.CombineDateTime(req.EndDate, req.EndTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		endAt = sql.NullTime{Time: end, Valid: true}
	}

	event, err := h.queries.CreateEvent(r.Context(), store.CreateEventParams{
		Title:       req.Title,
		Location:    req.Location,
		Description: req.Description,
		StartAt:     startAt,
		EndAt:       endAt,
		Published:   req.Published,
		CreatedBy:   middleware.GetUserID(r),
	})
	if err != nil {
		writeInternalError(w, "create event", err)
		return
	}

	slog.Info("event created",
		"category", model.AuditCategoryEvent,
		"event_id", event.ID, "user_id", middleware.GetUserID(r))

	writeJSON(w, http.StatusCreated, eventFromStore(event))
}

// AdminListEvents handles GET /api/admin/events.
func (h *Handler) AdminListEvents(w http.ResponseWriter, r *http.Request) {
	page := parsePageParam(r)
	limit := parseLimitParam(r)

	params := store.ListEventsParams{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if published := parseBoolParam(r, "published"); published != nil {
		params.Published = sql.NullBool{Bool: *published, Valid: true}
	}

	h.listEvents(w, r, params, page, limit)
}

// ListEvents handles GET /api/events. Visibility is gated by published,
// identically to publications.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	page := parsePageParam(r)
	limit := parseLimitParam(r)

	params := store.ListEventsParams{
		Search:    r.URL.Query().Get("search"),
		Published: sql.NullBool{Bool: true, Valid: true},
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}

	h.listEvents(w, r, params, page, limit)
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request, params store.ListEventsParams, page, limit int64) {
	events, err := h.queries.ListEvents(r.Context(), params)
	if err != nil {
		writeInternalError(w, "list events", err)
		return
	}
	total, err := h.queries.CountEvents(r.Context(), params)
	if err != nil {
		writeInternalError(w, "count events", err)
		return
	}

	items := make([]eventResponse, 0, len(events))
	for _, e := range events {
		items = append(items, eventFromStore(e))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events":     items,
		"pagination": newPagination(page, limit, total),
	})
}

// AdminGetEvent handles GET /api/admin/events/{id}.
func (h *Handler) AdminGetEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := requireEntityByID(w, r, "Event", func(id int64) (store.Event, error) {
		return h.queries.GetEventByID(r.Context(), id)
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, eventFromStore(event))
}

// GetEvent handles GET /api/events/{id}. Drafts read as 404.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := requireEntityByID(w, r, "Event", func(id int64) (store.Event, error) {
		return h.queries.GetPublishedEventByID(r.Context(), id)
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, eventFromStore(event))
}

// eventPatchRequest carries the optional fields of a partial update.
type eventPatchRequest struct {
	Title       *string `json:"title"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	EventDate   *string `json:"eventDate"`
	Time        *string `json:"time"`
	EndDate     *string `json:"endDate"`
	EndTime     *string `json:"endTime"`
	Published   *bool   `json:"published"`
}

// PatchEvent handles PATCH /api/admin/events/{id}. Rescheduling requires both
// date and time parts together, exactly as on create.
func (h *Handler) PatchEvent(w http.ResponseWriter, r *http.Request) {
	existing, ok := requireEntityByID(w, r, "Event", func(id int64) (store.Event, error) {
		return h.queries.GetEventByID(r.Context(), id)
	})
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(keys) == 0 {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	var req eventPatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	params := store.UpdateEventParams{
		ID:          existing.ID,
		Title:       existing.Title,
		Location:    existing.Location,
		Description: existing.Description,
		StartAt:     existing.StartAt,
		EndAt:       existing.EndAt,
		Published:   existing.Published,
	}

	if req.Title != nil {
		if *req.Title == "" {
			writeError(w, http.StatusBadRequest, "Title is required")
			return
		}
		params.Title = *req.Title
	}
	if req.Location != nil {
		if *req.Location == "" {
			writeError(w, http.StatusBadRequest, "Location is required")
			return
		}
		params.Location = *req.Location
	}
	if req.Description != nil {
		params.Description = *req.Description
	}

	if req.EventDate != nil || req.Time != nil {
		var date, clock string
		if req.EventDate != nil {
			date = *req.EventDate
		}
		if req.Time != nil {
			clock = *req.Time
		}
		startAt, err := model.CombineDateTime(date, clock)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		params.StartAt = startAt
	}

	if req.EndDate != nil || req.EndTime != nil {
		var date, clock string
		if req.EndDate != nil {
			date = *req.EndDate
		}
		if req.EndTime != nil {
			clock = *req.EndTime
		}
		if date == "" && clock == "" {
			// Clearing both removes the end instant
			params.EndAt = sql.NullTime{}
		} else {
			endAt, err := model.CombineDateTime(date, clock)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			params.EndAt = sql.NullTime{Time: endAt, Valid: true}
		}
	}

	if req.Published != nil {
		params.Published = *req.Published
	}

	event, err := h.queries.UpdateEvent(r.Context(), params)
	if err != nil {
		writeInternalError(w, "update event", err)
		return
	}

	writeJSON(w, http.StatusOK, eventFromStore(event))
}

// DeleteEvent handles DELETE /api/admin/events/{id}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	event, ok := requireEntityByID(w, r, "Event", func(id int64) (store.Event, error) {
		return h.queries.GetEventByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteEvent(r.Context(), event.ID); err != nil {
		writeInternalError(w, "delete event", err)
		return
	}

	slog.Info("event deleted",
		"category", model.AuditCategoryEvent,
		"event_id", event.ID, "user_id", middleware.GetUserID(r))

	writeJSON(w, http.StatusOK, map[string]string{"message": "Event deleted successfully"})
}
