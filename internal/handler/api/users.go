// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/olegiv/assembly-go/internal/auth"
	"github.com/olegiv/assembly-go/internal/middleware"
	"github.com/olegiv/assembly-go/internal/model"
	"github.com/olegiv/assembly-go/internal/store"
)

// MinPasswordLength is the minimum accepted password length for new accounts.
const MinPasswordLength = 8

// userResponse is the wire form of a user. The password hash never leaves
// the store layer.
type userResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func userFromStore(u store.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.LastLoginAt.Valid {
		t := u.LastLoginAt.Time
		resp.LastLoginAt = &t
	}
	return resp
}

// AdminListUsers handles GET /api/admin/users.
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	page := parsePageParam(r)
	limit := parseLimitParam(r)

	users, err := h.queries.ListUsers(r.Context(), store.ListUsersParams{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		writeInternalError(w, "list users", err)
		return
	}
	total, err := h.queries.CountUsers(r.Context())
	if err != nil {
		writeInternalError(w, "count users", err)
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, userFromStore(u))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users":      items,
		"pagination": newPagination(page, limit, total),
	})
}

// assertNotSelf guards the self-protection invariant shared by role updates
// and deletion: an admin may never act destructively on their own account.
// It writes the 403 response and returns false when the guard trips.
// This check runs before the target's existence is ever looked up.
func assertNotSelf(w http.ResponseWriter, actingID, targetID int64, message string) bool {
	if actingID == targetID {
		writeError(w, http.StatusForbidden, message)
		return false
	}
	return true
}

// userPatchRequest carries the role and password update body.
type userPatchRequest struct {
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

// PatchUser handles PATCH /api/admin/users/{id}. The mutable fields are the
// role and the password.
func (h *Handler) PatchUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	var req userPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Role == nil && req.Password == nil {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}
	if req.Role != nil && !model.IsValidRole(*req.Role) {
		writeError(w, http.StatusBadRequest, "Role must be USER or ADMIN")
		return
	}
	if req.Password != nil && len(*req.Password) < MinPasswordLength {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters long")
		return
	}

	actingID := middleware.GetUserID(r)
	if req.Role != nil && *req.Role == model.RoleUser {
		if !assertNotSelf(w, actingID, targetID, "You cannot remove your own admin privileges") {
			return
		}
	}

	user, err := h.queries.GetUserByID(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "User not found")
		} else {
			writeInternalError(w, "fetch user", err)
		}
		return
	}

	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			writeInternalError(w, "hash password", err)
			return
		}
		if err := h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
			ID:           targetID,
			PasswordHash: hash,
		}); err != nil {
			writeInternalError(w, "update user password", err)
			return
		}
		slog.Warn("user password changed",
			"category", model.AuditCategoryUser,
			"target_user_id", targetID, "user_id", actingID)
	}

	if req.Role != nil {
		user, err = h.queries.UpdateUserRole(r.Context(), store.UpdateUserRoleParams{
			ID:   targetID,
			Role: *req.Role,
		})
		if err != nil {
			writeInternalError(w, "update user role", err)
			return
		}
		slog.Warn("user role changed",
			"category", model.AuditCategoryUser,
			"target_user_id", user.ID, "new_role", user.Role, "user_id", actingID)
	} else {
		user, err = h.queries.GetUserByID(r.Context(), targetID)
		if err != nil {
			writeInternalError(w, "fetch user", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, userFromStore(user))
}

// DeleteUser handles DELETE /api/admin/users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	actingID := middleware.GetUserID(r)
	if !assertNotSelf(w, actingID, targetID, "You cannot delete your own account") {
		return
	}

	user, err := h.queries.GetUserByID(r.Context(), targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "User not found")
		} else {
			writeInternalError(w, "fetch user", err)
		}
		return
	}

	if err := h.queries.DeleteUser(r.Context(), user.ID); err != nil {
		writeInternalError(w, "delete user", err)
		return
	}

	slog.Warn("user deleted",
		"category", model.AuditCategoryUser,
		"target_user_id", user.ID, "target_email", user.Email, "user_id", actingID)

	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

// registerRequest is the account creation body.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/admin/register. Accounts are always created with
// role USER; promotion to ADMIN is a separate explicit action.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email address")
		return
	}
	if len(req.Password) < MinPasswordLength {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters long")
		return
	}

	if _, err := h.queries.GetUserByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusBadRequest, "Email is already registered")
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		writeInternalError(w, "check email", err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeInternalError(w, "hash password", err)
		return
	}

	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Name:         req.Name,
	})
	if err != nil {
		writeInternalError(w, "create user", err)
		return
	}

	slog.Info("user registered",
		"category", model.AuditCategoryUser,
		"target_user_id", user.ID, "user_id", middleware.GetUserID(r))

	writeJSON(w, http.StatusCreated, userFromStore(user))
}
