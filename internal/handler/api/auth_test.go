// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestLoginSuccess(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/admin/login", map[string]any{
		"email":    a.admin.Email,
		"password": testAdminPassword,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body: %s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message string         `json:"message"`
		User    map[string]any `json:"user"`
	}
	decodeResponse(t, rec, &resp)
	if resp.Message != "Logged in successfully" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.User["email"] != a.admin.Email {
		t.Errorf("user email = %v", resp.User["email"])
	}
	if strings.Contains(rec.Body.String(), "argon2id") {
		t.Error("login response leaks hash material")
	}

	// A session cookie is issued
	if len(rec.Result().Cookies()) == 0 {
		t.Error("no session cookie issued on login")
	}
}

func TestLoginMissingFields(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/admin/login", map[string]any{"email": a.admin.Email})
	assertErrorResponse(t, rec, http.StatusBadRequest, "Email and password are required")

	rec = a.do(t, http.MethodPost, "/api/admin/login", map[string]any{"password": "x"})
	assertErrorResponse(t, rec, http.StatusBadRequest, "Email and password are required")
}

func TestLoginRejectionsAreUniform(t *testing.T) {
	a := newTestAPI(t)

	// Wrong password on an existing account
	rec := a.do(t, http.MethodPost, "/api/admin/login", map[string]any{
		"email": a.admin.Email, "password": "wrong-password",
	})
	assertErrorResponse(t, rec, http.StatusUnauthorized, "Invalid email or password")

	// Unknown account reads exactly the same
	rec = a.do(t, http.MethodPost, "/api/admin/login", map[string]any{
		"email": "ghost@example.com", "password": "whatever-here",
	})
	assertErrorResponse(t, rec, http.StatusUnauthorized, "Invalid email or password")
}

func TestLoginLockout(t *testing.T) {
	a := newTestAPI(t)

	body := map[string]any{"email": a.admin.Email, "password": "wrong-password"}

	// The test config locks after three failures
	for i := 0; i < 2; i++ {
		rec := a.do(t, http.MethodPost, "/api/admin/login", body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, rec.Code)
		}
	}

	rec := a.do(t, http.MethodPost, "/api/admin/login", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("locking attempt: status = %d, want 429 (body: %s)", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	decodeResponse(t, rec, &resp)
	if !strings.HasPrefix(resp["error"], "Account temporarily locked.") {
		t.Errorf("error = %q", resp["error"])
	}

	// Even the correct password is rejected while locked
	rec = a.do(t, http.MethodPost, "/api/admin/login", map[string]any{
		"email": a.admin.Email, "password": testAdminPassword,
	})
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("locked login with correct password: status = %d, want 429", rec.Code)
	}
}

func TestLoginRecordsLastLogin(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/admin/login", map[string]any{
		"email": a.admin.Email, "password": testAdminPassword,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}

	stored, err := a.queries.GetUserByID(context.Background(), a.admin.ID)
	if err != nil {
		t.Fatalf("fetching admin: %v", err)
	}
	if !stored.LastLoginAt.Valid {
		t.Error("last_login_at not recorded after login")
	}
}

func TestLogoutAndMe(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodGet, "/api/admin/me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d", rec.Code)
	}
	var me map[string]any
	decodeResponse(t, rec, &me)
	if me["email"] != a.admin.Email {
		t.Errorf("me email = %v", me["email"])
	}

	rec = a.do(t, http.MethodPost, "/api/admin/logout", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d (body: %s)", rec.Code, rec.Body.String())
	}
	var msg map[string]string
	decodeResponse(t, rec, &msg)
	if msg["message"] != "Logged out successfully" {
		t.Errorf("message = %q", msg["message"])
	}
}

func TestFormatLockout(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{10, "1 minute"},
		{60, "1 minute"},
		{90, "1 minute"},
		{120, "2 minutes"},
		{900, "15 minutes"},
	}

	for _, tt := range tests {
		d := time.Duration(tt.seconds) * time.Second
		if got := formatLockout(d); got != tt.want {
			t.Errorf("formatLockout(%ds) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
