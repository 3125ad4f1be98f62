// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"

	"github.com/olegiv/assembly-go/internal/auth"
	"github.com/olegiv/assembly-go/internal/middleware"
	"github.com/olegiv/assembly-go/internal/model"
	"github.com/olegiv/assembly-go/internal/store"
)

// testAdminPassword is the password of the admin account every test API
// starts with.
const testAdminPassword = "admin-password-123"

// testAPI bundles a handler, its backing store and a router that mirrors the
// production route layout. Admin routes run with the test admin already in
// context, standing in for a live session.
type testAPI struct {
	handler *Handler
	queries *store.Queries
	admin   store.User
	router  chi.Router
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	// A pooled :memory: database gives every connection its own database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	queries := store.New(db)

	hash, err := auth.HashPassword(testAdminPassword)
	if err != nil {
		t.Fatalf("hashing admin password: %v", err)
	}
	admin, err := queries.CreateUser(context.Background(), store.CreateUserParams{
		Email:        "admin@example.com",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Name:         "Admin",
	})
	if err != nil {
		t.Fatalf("creating admin: %v", err)
	}

	sm := scs.New()
	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit:       1000,
		IPBurst:           1000,
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
	h := NewHandler(db, sm, lp)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)

	r.Route("/api", func(r chi.Router) {
		r.Post("/feedback", h.SubmitFeedback)
		r.Get("/publications", h.ListPublications)
		r.Get("/publications/slug/{slug}", h.GetPublicationBySlug)
		r.Get("/publications/{id}", h.GetPublication)
		r.Get("/events", h.ListEvents)
		r.Get("/events/{id}", h.GetEvent)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Login)

			r.Group(func(r chi.Router) {
				r.Use(injectUser(admin))

				r.Post("/logout", h.Logout)
				r.Get("/me", h.Me)

				r.Get("/publications", h.AdminListPublications)
				r.Post("/publications", h.CreatePublication)
				r.Get("/publications/{id}", h.AdminGetPublication)
				r.Put("/publications/{id}", h.ReplacePublication)
				r.Patch("/publications/{id}", h.PatchPublication)
				r.Delete("/publications/{id}", h.DeletePublication)

				r.Get("/events", h.AdminListEvents)
				r.Post("/events", h.CreateEvent)
				r.Get("/events/{id}", h.AdminGetEvent)
				r.Patch("/events/{id}", h.PatchEvent)
				r.Delete("/events/{id}", h.DeleteEvent)

				r.Get("/feedbacks", h.AdminListFeedbacks)
				r.Patch("/feedbacks/{id}", h.PatchFeedback)
				r.Delete("/feedbacks/{id}", h.DeleteFeedback)

				r.Get("/users", h.AdminListUsers)
				r.Patch("/users/{id}", h.PatchUser)
				r.Delete("/users/{id}", h.DeleteUser)
				r.Post("/register", h.Register)

				r.Get("/audit", h.AdminListAudit)
			})
		})
	})

	return &testAPI{handler: h, queries: queries, admin: admin, router: r}
}

// injectUser places a user into the request context the way LoadUser does
// after resolving a session.
func injectUser(user store.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// do performs a request against the test router with an optional JSON body.
func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:4242"
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// decodeResponse unmarshals the recorded JSON body into dst.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

// assertErrorResponse checks the status code and the {"error": message} body.
func assertErrorResponse(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, wantMessage string) {
	t.Helper()
	if rec.Code != wantStatus {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, wantStatus, rec.Body.String())
	}
	var body map[string]string
	decodeResponse(t, rec, &body)
	if body["error"] != wantMessage {
		t.Errorf("error = %q, want %q", body["error"], wantMessage)
	}
}

// createPublication creates a publication through the API and returns its
// decoded response.
func (a *testAPI) createPublication(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/admin/publications", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating publication: status = %d (body: %s)", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	decodeResponse(t, rec, &resp)
	return resp
}

// createEvent creates an event through the API and returns its decoded response.
func (a *testAPI) createEvent(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/admin/events", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating event: status = %d (body: %s)", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	decodeResponse(t, rec, &resp)
	return resp
}

// respID extracts the numeric id from a decoded response map.
func respID(t *testing.T, resp map[string]any) int64 {
	t.Helper()
	id, ok := resp["id"].(float64)
	if !ok {
		t.Fatalf("response has no numeric id: %+v", resp)
	}
	return int64(id)
}
