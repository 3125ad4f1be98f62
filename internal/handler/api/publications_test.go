// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func articleBody(title string) map[string]any {
	return map[string]any{
		"category":  "ARTICLE",
		"title":     title,
		"content":   "# Heading\n\nSome **markdown** body.",
		"published": true,
	}
}

func TestCreatePublicationValidation(t *testing.T) {
	a := newTestAPI(t)

	tests := []struct {
		name        string
		body        map[string]any
		wantMessage string
	}{
		{
			name:        "missing title",
			body:        map[string]any{"category": "ARTICLE", "content": "x"},
			wantMessage: "Title is required",
		},
		{
			name:        "missing category",
			body:        map[string]any{"title": "T"},
			wantMessage: "Category is required",
		},
		{
			name:        "unknown category",
			body:        map[string]any{"title": "T", "category": "VIDEO"},
			wantMessage: "Invalid category",
		},
		{
			name:        "article without content",
			body:        map[string]any{"title": "T", "category": "ARTICLE"},
			wantMessage: "Articles require content",
		},
		{
			name:        "newsletter without content",
			body:        map[string]any{"title": "T", "category": "NEWSLETTER"},
			wantMessage: "Newsletters require content",
		},
		{
			name:        "official letter without file",
			body:        map[string]any{"title": "T", "category": "OFFICIAL_LETTER"},
			wantMessage: "Official letters require a file",
		},
		{
			name:        "podcast without audio",
			body:        map[string]any{"title": "T", "category": "PODCAST"},
			wantMessage: "Podcasts require an audio file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(t, http.MethodPost, "/api/admin/publications", tt.body)
			assertErrorResponse(t, rec, http.StatusBadRequest, tt.wantMessage)
		})
	}
}

func TestCreatePublicationRoundTrip(t *testing.T) {
	a := newTestAPI(t)

	created := a.createPublication(t, articleBody("Assembly Budget 2026"))
	if created["slug"] != "assembly-budget-2026" {
		t.Errorf("slug = %v, want assembly-budget-2026", created["slug"])
	}
	if created["category"] != "ARTICLE" {
		t.Errorf("category = %v", created["category"])
	}
	if created["published"] != true {
		t.Error("publication not published")
	}
	if created["publishedAt"] == nil {
		t.Error("published publication has no publishedAt")
	}
	if created["createdById"] != float64(a.admin.ID) {
		t.Errorf("createdById = %v, want %d", created["createdById"], a.admin.ID)
	}
	// List responses never carry rendered HTML
	if _, ok := created["contentHtml"]; ok {
		t.Error("create response carries contentHtml")
	}

	id := respID(t, created)

	// Public detail renders markdown for articles
	rec := a.do(t, http.MethodGet, fmt.Sprintf("/api/publications/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public detail status = %d", rec.Code)
	}
	var got map[string]any
	decodeResponse(t, rec, &got)
	html, _ := got["contentHtml"].(string)
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<strong>") {
		t.Errorf("contentHtml = %q, want rendered markdown", html)
	}

	// Slug lookup returns the same record
	rec = a.do(t, http.MethodGet, "/api/publications/slug/assembly-budget-2026", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("slug lookup status = %d", rec.Code)
	}
	decodeResponse(t, rec, &got)
	if respID(t, got) != id {
		t.Errorf("slug lookup id = %d, want %d", respID(t, got), id)
	}
}

func TestPublicationSlugUniquified(t *testing.T) {
	a := newTestAPI(t)

	first := a.createPublication(t, articleBody("Same Title"))
	second := a.createPublication(t, articleBody("Same Title"))
	third := a.createPublication(t, articleBody("Same Title"))

	if first["slug"] != "same-title" {
		t.Errorf("first slug = %v", first["slug"])
	}
	if second["slug"] != "same-title-2" {
		t.Errorf("second slug = %v", second["slug"])
	}
	if third["slug"] != "same-title-3" {
		t.Errorf("third slug = %v", third["slug"])
	}
}

func TestDraftPublicationHiddenFromPublic(t *testing.T) {
	a := newTestAPI(t)

	body := articleBody("Internal Draft")
	body["published"] = false
	draft := a.createPublication(t, body)
	id := respID(t, draft)

	// Draft and nonexistent records are indistinguishable publicly
	rec := a.do(t, http.MethodGet, fmt.Sprintf("/api/publications/%d", id), nil)
	assertErrorResponse(t, rec, http.StatusNotFound, "Publication not found")

	rec = a.do(t, http.MethodGet, "/api/publications/slug/internal-draft", nil)
	assertErrorResponse(t, rec, http.StatusNotFound, "Publication not found")

	rec = a.do(t, http.MethodGet, "/api/publications", nil)
	var list struct {
		Publications []map[string]any `json:"publications"`
	}
	decodeResponse(t, rec, &list)
	if len(list.Publications) != 0 {
		t.Errorf("public list shows %d drafts", len(list.Publications))
	}

	// The admin surface sees it
	rec = a.do(t, http.MethodGet, fmt.Sprintf("/api/admin/publications/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("admin detail status = %d", rec.Code)
	}
}

func TestListPublicationsPagination(t *testing.T) {
	a := newTestAPI(t)

	for i := 1; i <= 5; i++ {
		a.createPublication(t, articleBody(fmt.Sprintf("Article %d", i)))
	}

	rec := a.do(t, http.MethodGet, "/api/publications?page=2&limit=2", nil)
	var list struct {
		Publications []map[string]any `json:"publications"`
		Pagination   Pagination       `json:"pagination"`
	}
	decodeResponse(t, rec, &list)

	if len(list.Publications) != 2 {
		t.Errorf("page size = %d, want 2", len(list.Publications))
	}
	want := Pagination{Page: 2, Limit: 2, Total: 5, TotalPages: 3, HasMore: true}
	if list.Pagination != want {
		t.Errorf("pagination = %+v, want %+v", list.Pagination, want)
	}
}

func TestAdminListPublicationsFilters(t *testing.T) {
	a := newTestAPI(t)

	a.createPublication(t, articleBody("Budget news"))
	a.createPublication(t, map[string]any{
		"category": "PODCAST", "title": "Campus voices", "audioUrl": "/a.mp3",
	})

	rec := a.do(t, http.MethodGet, "/api/admin/publications?category=PODCAST", nil)
	var list struct {
		Publications []map[string]any `json:"publications"`
	}
	decodeResponse(t, rec, &list)
	if len(list.Publications) != 1 || list.Publications[0]["category"] != "PODCAST" {
		t.Errorf("category filter returned %+v", list.Publications)
	}

	rec = a.do(t, http.MethodGet, "/api/admin/publications?published=false", nil)
	decodeResponse(t, rec, &list)
	if len(list.Publications) != 1 || list.Publications[0]["title"] != "Campus voices" {
		t.Errorf("published filter returned %+v", list.Publications)
	}

	rec = a.do(t, http.MethodGet, "/api/admin/publications?search=budget", nil)
	decodeResponse(t, rec, &list)
	if len(list.Publications) != 1 || list.Publications[0]["title"] != "Budget news" {
		t.Errorf("search filter returned %+v", list.Publications)
	}
}

func TestReplacePublicationCategoryImmutable(t *testing.T) {
	a := newTestAPI(t)

	created := a.createPublication(t, articleBody("Fixed Category"))
	id := respID(t, created)

	body := articleBody("Fixed Category")
	body["category"] = "NEWSLETTER"
	rec := a.do(t, http.MethodPut, fmt.Sprintf("/api/admin/publications/%d", id), body)
	assertErrorResponse(t, rec, http.StatusBadRequest, "Category cannot be changed")

	body["category"] = "VIDEO"
	rec = a.do(t, http.MethodPut, fmt.Sprintf("/api/admin/publications/%d", id), body)
	assertErrorResponse(t, rec, http.StatusBadRequest, "Invalid category")

	// Omitting the category keeps the existing one
	body = map[string]any{"title": "Fixed Category", "content": "updated body"}
	rec = a.do(t, http.MethodPut, fmt.Sprintf("/api/admin/publications/%d", id), body)
	if rec.Code != http.StatusOK {
		t.Fatalf("replace status = %d (body: %s)", rec.Code, rec.Body.String())
	}
	var got map[string]any
	decodeResponse(t, rec, &got)
	if got["category"] != "ARTICLE" {
		t.Errorf("category after replace = %v, want ARTICLE", got["category"])
	}
	if got["content"] != "updated body" {
		t.Errorf("content = %v", got["content"])
	}
}

func TestPatchPublication(t *testing.T) {
	a := newTestAPI(t)

	body := articleBody("Patch Target")
	body["published"] = false
	created := a.createPublication(t, body)
	id := respID(t, created)
	path := fmt.Sprintf("/api/admin/publications/%d", id)

	// Empty patch is rejected
	rec := a.do(t, http.MethodPatch, path, map[string]any{})
	assertErrorResponse(t, rec, http.StatusBadRequest, "No fields to update")

	// Category key with the same value is accepted, a different one is not
	rec = a.do(t, http.MethodPatch, path, map[string]any{"category": "PODCAST"})
	assertErrorResponse(t, rec, http.StatusBadRequest, "Category cannot be changed")

	// The merged record must still satisfy the category rule
	rec = a.do(t, http.MethodPatch, path, map[string]any{"content": ""})
	assertErrorResponse(t, rec, http.StatusBadRequest, "Articles require content")

	// Retitling regenerates the slug
	rec = a.do(t, http.MethodPatch, path, map[string]any{"title": "Renamed Target"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d (body: %s)", rec.Code, rec.Body.String())
	}
	var got map[string]any
	decodeResponse(t, rec, &got)
	if got["slug"] != "renamed-target" {
		t.Errorf("slug = %v, want renamed-target", got["slug"])
	}

	// Publishing sets publishedAt once
	rec = a.do(t, http.MethodPatch, path, map[string]any{"published": true})
	decodeResponse(t, rec, &got)
	publishedAt, _ := got["publishedAt"].(string)
	if publishedAt == "" {
		t.Fatal("publishedAt not set on first publish")
	}

	// Unpublishing keeps the original publishedAt
	rec = a.do(t, http.MethodPatch, path, map[string]any{"published": false})
	decodeResponse(t, rec, &got)
	if got["published"] != false {
		t.Error("publication still published")
	}
	if got["publishedAt"] != publishedAt {
		t.Errorf("publishedAt changed on unpublish: %v -> %v", publishedAt, got["publishedAt"])
	}
}

func TestPatchPublicationNullClearsDuration(t *testing.T) {
	a := newTestAPI(t)

	created := a.createPublication(t, map[string]any{
		"category": "PODCAST",
		"title":    "Episode 12",
		"audioUrl": "https://cdn.example.org/ep12.mp3",
		"duration": 120,
		"fileSize": 4096,
	})
	path := fmt.Sprintf("/api/admin/publications/%d", respID(t, created))

	// An explicit null clears the stored value
	rec := a.do(t, http.MethodPatch, path, map[string]any{"duration": nil})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d (body: %s)", rec.Code, rec.Body.String())
	}
	var got map[string]any
	decodeResponse(t, rec, &got)
	if got["duration"] != nil {
		t.Errorf("duration = %v, want null", got["duration"])
	}
	if got["fileSize"] != float64(4096) {
		t.Errorf("fileSize = %v, want 4096", got["fileSize"])
	}

	// An absent key leaves the value alone
	rec = a.do(t, http.MethodPatch, path, map[string]any{"fileSize": 8192})
	decodeResponse(t, rec, &got)
	if got["duration"] != nil {
		t.Errorf("duration = %v after unrelated patch, want null", got["duration"])
	}
	if got["fileSize"] != float64(8192) {
		t.Errorf("fileSize = %v, want 8192", got["fileSize"])
	}
}

func TestDeletePublication(t *testing.T) {
	a := newTestAPI(t)

	created := a.createPublication(t, articleBody("Doomed"))
	id := respID(t, created)
	path := fmt.Sprintf("/api/admin/publications/%d", id)

	rec := a.do(t, http.MethodDelete, path, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	var body map[string]string
	decodeResponse(t, rec, &body)
	if body["message"] != "Publication deleted successfully" {
		t.Errorf("message = %q", body["message"])
	}

	// Deleting again reads as not found
	rec = a.do(t, http.MethodDelete, path, nil)
	assertErrorResponse(t, rec, http.StatusNotFound, "Publication not found")
}

func TestGetPublicationBadID(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/publications/not-a-number", nil)
	assertErrorResponse(t, rec, http.StatusNotFound, "Publication not found")
}
