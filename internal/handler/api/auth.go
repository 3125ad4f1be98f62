// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/assembly-go/internal/auth"
	"github.com/olegiv/assembly-go/internal/middleware"
	"github.com/olegiv/assembly-go/internal/model"
)

// loginRequest is the login body.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/admin/login. It sits outside the admin gate and is
// guarded by the IP rate limit and account lockout instead.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	if locked, remaining := h.loginProtection.IsAccountLocked(req.Email); locked {
		slog.Warn("login attempt on locked account",
			"category", model.AuditCategoryAuth,
			"email", req.Email, "remaining", remaining.Round(time.Second).String())
		writeError(w, http.StatusTooManyRequests,
			fmt.Sprintf("Account temporarily locked. Try again in %s.", formatLockout(remaining)))
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			writeInternalError(w, "fetch user", err)
			return
		}
		// Burn a hash comparison so missing accounts cost the same as
		// wrong passwords.
		_, _ = auth.CheckPassword(req.Password, auth.DummyHash)
		h.recordFailedLogin(w, req.Email)
		return
	}

	match, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !match {
		h.recordFailedLogin(w, req.Email)
		return
	}

	h.loginProtection.RecordSuccessfulLogin(req.Email)

	// Rotate the session token on privilege change
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		writeInternalError(w, "renew session", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	if err := h.queries.UpdateUserLastLogin(r.Context(), user.ID); err != nil {
		slog.Error("failed to record last login", "user_id", user.ID, "error", err)
	}

	slog.Info("user logged in",
		"category", model.AuditCategoryAuth,
		"user_id", user.ID, "email", user.Email)

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Logged in successfully",
		"user":    userFromStore(user),
	})
}

// recordFailedLogin tracks the failure and writes the uniform rejection. The
// response never says whether the email or the password was wrong.
func (h *Handler) recordFailedLogin(w http.ResponseWriter, email string) {
	locked, duration := h.loginProtection.RecordFailedAttempt(email)
	if locked {
		slog.Warn("account locked after repeated failures",
			"category", model.AuditCategoryAuth, "email", email)
		writeError(w, http.StatusTooManyRequests,
			fmt.Sprintf("Account temporarily locked. Try again in %s.", formatLockout(duration)))
		return
	}
	writeError(w, http.StatusUnauthorized, "Invalid email or password")
}

// formatLockout renders a lockout duration in whole minutes for the caller.
func formatLockout(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

// Logout handles POST /api/admin/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		writeInternalError(w, "destroy session", err)
		return
	}

	slog.Info("user logged out",
		"category", model.AuditCategoryAuth, "user_id", userID)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Me handles GET /api/admin/me and returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, userFromStore(*user))
}
