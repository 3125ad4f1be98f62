// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/assembly-go/internal/markdown"
	"github.com/olegiv/assembly-go/internal/middleware"
	"github.com/olegiv/assembly-go/internal/model"
	"github.com/olegiv/assembly-go/internal/store"
	"github.com/olegiv/assembly-go/internal/util"
)

// publicationResponse is the wire form of a publication.
type publicationResponse struct {
	ID          int64      `json:"id"`
	Category    string     `json:"category"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	ContentHTML string     `json:"contentHtml,omitempty"`
	Description string     `json:"description"`
	FileURL     string     `json:"fileUrl"`
	AudioURL    string     `json:"audioUrl"`
	ImageURL    string     `json:"imageUrl"`
	Images      []string   `json:"images"`
	Tags        []string   `json:"tags"`
	Author      string     `json:"author"`
	ReferenceNo string     `json:"referenceNo"`
	Duration    *int64     `json:"duration"`
	FileSize    *int64     `json:"fileSize"`
	Published   bool       `json:"published"`
	CreatedByID int64      `json:"createdById"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

func publicationFromStore(p store.Publication) publicationResponse {
	resp := publicationResponse{
		ID:          p.ID,
		Category:    p.Category,
		Title:       p.Title,
		Slug:        p.Slug,
		Content:     p.Content,
		Description: p.Description,
		FileURL:     p.FileUrl,
		AudioURL:    p.AudioUrl,
		ImageURL:    p.ImageUrl,
		Images:      decodeStringList(p.Images),
		Tags:        decodeStringList(p.Tags),
		Author:      p.Author,
		ReferenceNo: p.ReferenceNo,
		Duration:    util.PtrFromNullInt64(p.DurationSeconds),
		FileSize:    util.PtrFromNullInt64(p.FileSizeBytes),
		Published:   p.Published,
		CreatedByID: p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.PublishedAt.Valid {
		t := p.PublishedAt.Time
		resp.PublishedAt = &t
	}
	return resp
}

// withContentHTML attaches rendered HTML to the response for markdown
// categories. Used on public detail responses only.
func withContentHTML(resp publicationResponse) publicationResponse {
	if !model.RequiresMarkdown(resp.Category) || resp.Content == "" {
		return resp
	}
	html, err := markdown.ToHTML(resp.Content)
	if err != nil {
		slog.Error("failed to render publication content",
			"category", model.AuditCategoryPublication, "publication_id", resp.ID, "error", err)
		return resp
	}
	resp.ContentHTML = html
	return resp
}

// publicationRequest is the create/replace request body.
type publicationRequest struct {
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	FileURL     string   `json:"fileUrl"`
	AudioURL    string   `json:"audioUrl"`
	ImageURL    string   `json:"imageUrl"`
	Images      []string `json:"images"`
	Tags        []string `json:"tags"`
	Author      string   `json:"author"`
	ReferenceNo string   `json:"referenceNo"`
	Duration    *int64   `json:"duration"`
	FileSize    *int64   `json:"fileSize"`
	Published   bool     `json:"published"`
}

// validatePublicationRequest applies the creation rules: title and category
// present, category in the fixed vocabulary, then the category-specific
// requiredness rule. Returns the user-facing message on violation.
func validatePublicationRequest(req publicationRequest) (string, bool) {
	if req.Title == "" {
		return "Title is required", false
	}
	if req.Category == "" {
		return "Category is required", false
	}
	if !model.IsValidCategory(req.Category) {
		return "Invalid category", false
	}
	_, message, ok := model.ValidateCategoryFields(req.Category, model.PublicationFields{
		Content:  req.Content,
		FileURL:  req.FileURL,
		AudioURL: req.AudioURL,
	})
	if !ok {
		return message, false
	}
	return "", true
}

// uniquePublicationSlug generates a slug from the title, appending a numeric
// suffix until it is unique.
func (h *Handler) uniquePublicationSlug(ctx context.Context, title string) (string, error) {
	base := util.Slugify(title)
	if base == "" {
		base = "publication"
	}

	slug := base
	for i := 2; ; i++ {
		count, err := h.queries.CountPublicationsBySlug(ctx, slug)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// CreatePublication handles POST /api/admin/publications.
func (h *Handler) CreatePublication(w http.ResponseWriter, r *http.Request) {
	var req publicationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if message, ok := validatePublicationRequest(req); !ok {
		writeError(w, http.StatusBadRequest, message)
		return
	}

	slug, err := h.uniquePublicationSlug(r.Context(), req.Title)
	if err != nil {
		writeInternalError(w, "generate publication slug", err)
		return
	}

	pub, err := h.queries.CreatePublication(r.Context(), store.CreatePublicationParams{
		Category:        req.Category,
		Title:           req.Title,
		Slug:            slug,
		Content:         req.Content,
		Description:     req.Description,
		FileUrl:         req.FileURL,
		AudioUrl:        req.AudioURL,
		ImageUrl:        req.ImageURL,
		Images:          encodeStringList(req.Images),
		Tags:            encodeStringList(req.Tags),
		Author:          req.Author,
		ReferenceNo:     req.ReferenceNo,
		DurationSeconds: util.NullInt64FromPtr(req.Duration),
		FileSizeBytes:   util.NullInt64FromPtr(req.FileSize),
		Published:       req.Published,
		CreatedBy:       middleware.GetUserID(r),
	})
	if err != nil {
		writeInternalError(w, "create publication", err)
		return
	}

	slog.Info("publication created",
		"category", model.AuditCategoryPublication,
		"publication_id", pub.ID, "publication_category", pub.Category,
		"user_id", middleware.GetUserID(r))

	writeJSON(w, http.StatusCreated, publicationFromStore(pub))
}

// AdminListPublications handles GET /api/admin/publications.
func (h *Handler) AdminListPublications(w http.ResponseWriter, r *http.Request) {
	page := parsePageParam(r)
	limit := parseLimitParam(r)

	params := store.ListPublicationsParams{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}
	if published := parseBoolParam(r, "published"); published != nil {
		params.Published = sql.NullBool{Bool: *published, Valid: true}
	}

	h.listPublications(w, r, params, page, limit)
}

// ListPublications handles GET /api/publications. The public surface only
// ever sees published records.
func (h *Handler) ListPublications(w http.ResponseWriter, r *http.Request) {
	page := parsePageParam(r)
	limit := parseLimitParam(r)

	params := store.ListPublicationsParams{
		Category:  r.URL.Query().Get("category"),
		Search:    r.URL.Query().Get("search"),
		Published: sql.NullBool{Bool: true, Valid: true},
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}

	h.listPublications(w, r, params, page, limit)
}

func (h *Handler) listPublications(w http.ResponseWriter, r *http.Request, params store.ListPublicationsParams, page, limit int64) {
	pubs, err := h.queries.ListPublications(r.Context(), params)
	if err != nil {
		writeInternalError(w, "list publications", err)
		return
	}
	total, err := h.queries.CountPublications(r.Context(), params)
	if err != nil {
		writeInternalError(w, "count publications", err)
		return
	}

	items := make([]publicationResponse, 0, len(pubs))
	for _, p := range pubs {
		items = append(items, publicationFromStore(p))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"publications": items,
		"pagination":   newPagination(page, limit, total),
	})
}

// AdminGetPublication handles GET /api/admin/publications/{id}.
func (h *Handler) AdminGetPublication(w http.ResponseWriter, r *http.Request) {
	pub, ok := requireEntityByID(w, r, "Publication", func(id int64) (store.Publication, error) {
		return h.queries.GetPublicationByID(r.Context(), id)
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, publicationFromStore(pub))
}

// GetPublication handles GET /api/publications/{id}. Drafts are
// indistinguishable from nonexistent records.
func (h *Handler) GetPublication(w http.ResponseWriter, r *http.Request) {
	pub, ok := requireEntityByID(w, r, "Publication", func(id int64) (store.Publication, error) {
		return h.queries.GetPublishedPublicationByID(r.Context(), id)
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, withContentHTML(publicationFromStore(pub)))
}

// GetPublicationBySlug handles GET /api/publications/slug/{slug}.
func (h *Handler) GetPublicationBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	pub, err := h.queries.GetPublishedPublicationBySlug(r.Context(), slug)
	if err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "Publication not found")
		} else {
			writeInternalError(w, "fetch publication by slug", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, withContentHTML(publicationFromStore(pub)))
}

// ReplacePublication handles PUT /api/admin/publications/{id}. All category
// rules are re-validated as if creating new; the category itself is immutable.
func (h *Handler) ReplacePublication(w http.ResponseWriter, r *http.Request) {
	existing, ok := requireEntityByID(w, r, "Publication", func(id int64) (store.Publication, error) {
		return h.queries.GetPublicationByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req publicationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Category != "" && req.Category != existing.Category {
		if !model.IsValidCategory(req.Category) {
			writeError(w, http.StatusBadRequest, "Invalid category")
			return
		}
		writeError(w, http.StatusBadRequest, "Category cannot be changed")
		return
	}
	req.Category = existing.Category

	if message, ok := validatePublicationRequest(req); !ok {
		writeError(w, http.StatusBadRequest, message)
		return
	}

	slug := existing.Slug
	if req.Title != existing.Title {
		var err error
		slug, err = h.uniquePublicationSlug(r.Context(), req.Title)
		if err != nil {
			writeInternalError(w, "generate publication slug", err)
			return
		}
	}

	pub, err := h.queries.UpdatePublication(r.Context(), store.UpdatePublicationParams{
		ID:              existing.ID,
		Title:           req.Title,
		Slug:            slug,
		Content:         req.Content,
		Description:     req.Description,
		FileUrl:         req.FileURL,
		AudioUrl:        req.AudioURL,
		ImageUrl:        req.ImageURL,
		Images:          encodeStringList(req.Images),
		Tags:            encodeStringList(req.Tags),
		Author:          req.Author,
		ReferenceNo:     req.ReferenceNo,
		DurationSeconds: util.NullInt64FromPtr(req.Duration),
		FileSizeBytes:   util.NullInt64FromPtr(req.FileSize),
		Published:       req.Published,
		PublishedAt:     publishedAt(existing.PublishedAt, req.Published),
	})
	if err != nil {
		writeInternalError(w, "update publication", err)
		return
	}

	writeJSON(w, http.StatusOK, publicationFromStore(pub))
}

// publicationPatchRequest carries the optional fields of a partial update.
// Pointers distinguish "absent" from zero values.
type publicationPatchRequest struct {
	Category    *string   `json:"category"`
	Title       *string   `json:"title"`
	Content     *string   `json:"content"`
	Description *string   `json:"description"`
	FileURL     *string   `json:"fileUrl"`
	AudioURL    *string   `json:"audioUrl"`
	ImageURL    *string   `json:"imageUrl"`
	Images      *[]string `json:"images"`
	Tags        *[]string `json:"tags"`
	Author      *string   `json:"author"`
	ReferenceNo *string   `json:"referenceNo"`
	Duration    *int64    `json:"duration"`
	FileSize    *int64    `json:"fileSize"`
	Published   *bool     `json:"published"`
}

// PatchPublication handles PATCH /api/admin/publications/{id}. Only keys
// present in the request body are applied.
func (h *Handler) PatchPublication(w http.ResponseWriter, r *http.Request) {
	existing, ok := requireEntityByID(w, r, "Publication", func(id int64) (store.Publication, error) {
		return h.queries.GetPublicationByID(r.Context(), id)
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

	var req publicationPatchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Category != nil {
		if !model.IsValidCategory(*req.Category) {
			writeError(w, http.StatusBadRequest, "Invalid category")
			return
		}
		if *req.Category != existing.Category {
			writeError(w, http.StatusBadRequest, "Category cannot be changed")
			return
		}
	}

	params := store.UpdatePublicationParams{
		ID:              existing.ID,
		Title:           existing.Title,
		Slug:            existing.Slug,
		Content:         existing.Content,
		Description:     existing.Description,
		FileUrl:         existing.FileUrl,
		AudioUrl:        existing.AudioUrl,
		ImageUrl:        existing.ImageUrl,
		Images:          existing.Images,
		Tags:            existing.Tags,
		Author:          existing.Author,
		ReferenceNo:     existing.ReferenceNo,
		DurationSeconds: existing.DurationSeconds,
		FileSizeBytes:   existing.FileSizeBytes,
		Published:       existing.Published,
		PublishedAt:     existing.PublishedAt,
	}

	if req.Title != nil {
		if *req.Title == "" {
			writeError(w, http.StatusBadRequest, "Title is required")
			return
		}
		params.Title = *req.Title
		if *req.Title != existing.Title {
			slug, err := h.uniquePublicationSlug(r.Context(), *req.Title)
			if err != nil {
				writeInternalError(w, "generate publication slug", err)
				return
			}
			params.Slug = slug
		}
	}
	if req.Content != nil {
		params.Content = *req.Content
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.FileURL != nil {
		params.FileUrl = *req.FileURL
	}
	if req.AudioURL != nil {
		params.AudioUrl = *req.AudioURL
	}
	if req.ImageURL != nil {
		params.ImageUrl = *req.ImageURL
	}
	if req.Images != nil {
		params.Images = encodeStringList(*req.Images)
	}
	if req.Tags != nil {
		params.Tags = encodeStringList(*req.Tags)
	}
	if req.Author != nil {
		params.Author = *req.Author
	}
	if req.ReferenceNo != nil {
		params.ReferenceNo = *req.ReferenceNo
	}
	// duration and fileSize are nullable; a present key with a null value
	// clears the stored value.
	if _, present := keys["duration"]; present {
		params.DurationSeconds = util.NullInt64FromPtr(req.Duration)
	}
	if _, present := keys["fileSize"]; present {
		params.FileSizeBytes = util.NullInt64FromPtr(req.FileSize)
	}
	if req.Published != nil {
		params.Published = *req.Published
		params.PublishedAt = publishedAt(existing.PublishedAt, *req.Published)
	}

	// The merged record must still satisfy the category rule
	if _, message, ok := model.ValidateCategoryFields(existing.Category, model.PublicationFields{
		Content:  params.Content,
		FileURL:  params.FileUrl,
		AudioURL: params.AudioUrl,
	}); !ok {
		writeError(w, http.StatusBadRequest, message)
		return
	}

	pub, err := h.queries.UpdatePublication(r.Context(), params)
	if err != nil {
		writeInternalError(w, "update publication", err)
		return
	}

	writeJSON(w, http.StatusOK, publicationFromStore(pub))
}

// DeletePublication handles DELETE /api/admin/publications/{id}. Existence is
// checked first so a missing record reads as 404, not success.
func (h *Handler) DeletePublication(w http.ResponseWriter, r *http.Request) {
	pub, ok := requireEntityByID(w, r, "Publication", func(id int64) (store.Publication, error) {
		return h.queries.GetPublicationByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeletePublication(r.Context(), pub.ID); err != nil {
		writeInternalError(w, "delete publication", err)
		return
	}

	slog.Info("publication deleted",
		"category", model.AuditCategoryPublication,
		"publication_id", pub.ID, "user_id", middleware.GetUserID(r))

	writeJSON(w, http.StatusOK, map[string]string{"message": "Publication deleted successfully"})
}

// publishedAt keeps the first-publish timestamp stable: it is set once when a
// record first flips to published and never cleared by unpublishing.
func publishedAt(existing sql.NullTime, published bool) sql.NullTime {
	if published && !existing.Valid {
		return sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}
	return existing
}
