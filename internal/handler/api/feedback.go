// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/assembly-go/internal/middleware"
	"github.com/olegiv/assembly-go/internal/model"
	"github.com/olegiv/assembly-go/internal/store"
	"github.com/olegiv/assembly-go/internal/util"
)

// feedbackResponse is the admin-facing wire form of a feedback entry.
type feedbackResponse struct {
	ID          int64     `json:"id"`
	FeedbackID  string    `json:"feedbackId"`
	Name        *string   `json:"name"`
	Email       *string   `json:"email"`
	PhoneNumber *string   `json:"phoneNumber"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	IPAddress   *string   `json:"ipAddress,omitempty"`
	UserAgent   *string   `json:"userAgent,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func feedbackFromStore(f store.Feedback) feedbackResponse {
	return feedbackResponse{
		ID:          f.ID,
		FeedbackID:  f.Reference,
		Name:        util.PtrFromNullString(f.Name),
		Email:       util.PtrFromNullString(f.Email),
		PhoneNumber: util.PtrFromNullString(f.PhoneNumber),
		Message:     f.Message,
		Read:        f.IsRead,
		IPAddress:   util.PtrFromNullString(f.IpAddress),
		UserAgent:   util.PtrFromNullString(f.UserAgent),
		CreatedAt:   f.CreatedAt,
	}
}

// feedbackRequest is the public submission body.
type feedbackRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
}

// SubmitFeedback handles POST /api/feedback. No authentication is required.
// The response carries an opaque reference and timestamp, never the stored
// message, so arbitrary input is not reflected back.
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	message, err := model.ValidateFeedbackMessage(req.Message)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	email, err := model.ValidateFeedbackEmail(req.Email)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	phone, err := model.ValidateFeedbackPhone(req.PhoneNumber)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fb, err := h.queries.CreateFeedback(r.Context(), store.CreateFeedbackParams{
		Reference:   uuid.NewString(),
		Name:        util.NullStringFromValue(req.Name),
		Email:       util.NullStringFromValue(email),
		PhoneNumber: util.NullStringFromValue(phone),
		Message:     message,
		IpAddress:   util.NullStringFromValue(clientIP(r)),
		UserAgent:   util.NullStringFromValue(r.UserAgent()),
	})
	if err != nil {
		writeInternalError(w, "create feedback", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Feedback submitted successfully",
		"feedbackId": fb.Reference,
		"createdAt":  fb.CreatedAt,
	})
}

// clientIP extracts the submitter's IP for moderation context.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// AdminListFeedbacks handles GET /api/admin/feedbacks.
func (h *Handler) AdminListFeedbacks(w http.ResponseWriter, r *http.Request) {
	page := parsePageParam(r)
	limit := parseLimitParam(r)

	params := store.ListFeedbackParams{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if read := parseBoolParam(r, "read"); read != nil {
		params.IsRead = sql.NullBool{Bool: *read, Valid: true}
	}

	entries, err := h.queries.ListFeedback(r.Context(), params)
	if err != nil {
		writeInternalError(w, "list feedback", err)
		return
	}
	total, err := h.queries.CountFeedback(r.Context(), params)
	if err != nil {
		writeInternalError(w, "count feedback", err)
		return
	}

	items := make([]feedbackResponse, 0, len(entries))
	for _, f := range entries {
		items = append(items, feedbackFromStore(f))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"feedbacks":  items,
		"pagination": newPagination(page, limit, total),
	})
}

// feedbackPatchRequest toggles the read flag; nothing else is mutable.
type feedbackPatchRequest struct {
	Read *bool `json:"read"`
}

// PatchFeedback handles PATCH /api/admin/feedbacks/{id}.
func (h *Handler) PatchFeedback(w http.ResponseWriter, r *http.Request) {
	existing, ok := requireEntityByID(w, r, "Feedback", func(id int64) (store.Feedback, error) {
		return h.queries.GetFeedbackByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req feedbackPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Read == nil {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	fb, err := h.queries.SetFeedbackRead(r.Context(), store.SetFeedbackReadParams{
		ID:     existing.ID,
		IsRead: *req.Read,
	})
	if err != nil {
		writeInternalError(w, "update feedback", err)
		return
	}

	writeJSON(w, http.StatusOK, feedbackFromStore(fb))
}

// DeleteFeedback handles DELETE /api/admin/feedbacks/{id}.
func (h *Handler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	fb, ok := requireEntityByID(w, r, "Feedback", func(id int64) (store.Feedback, error) {
		return h.queries.GetFeedbackByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteFeedback(r.Context(), fb.ID); err != nil {
		writeInternalError(w, "delete feedback", err)
		return
	}

	slog.Info("feedback deleted",
		"category", model.AuditCategoryFeedback,
		"feedback_id", fb.ID, "user_id", middleware.GetUserID(r))

	writeJSON(w, http.StatusOK, map[string]string{"message": "Feedback deleted successfully"})
}
