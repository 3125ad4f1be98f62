// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/assembly-go/internal/auth"
	"github.com/olegiv/assembly-go/internal/model"
)

// SeedAdminEmail is the email of the bootstrap administrator account.
const SeedAdminEmail = "admin@assembly.local"

// Seed creates the bootstrap admin account if no administrator exists yet.
// The generated password is logged once; it must be changed after first login.
func Seed(ctx context.Context, queries *Queries, logger *slog.Logger) error {
	_, err := queries.GetUserByEmail(ctx, SeedAdminEmail)
	if err == nil {
		return nil // already seeded
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking seed admin: %w", err)
	}

	// A database that holds only USER accounts is unmanageable, so the
	// guard counts admins, not users.
	admins, err := queries.CountUsersByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("counting admins: %w", err)
	}
	if admins > 0 {
		return nil
	}

	password, err := generatePassword()
	if err != nil {
		return fmt.Errorf("generating password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        SeedAdminEmail,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Name:         "Administrator",
	})
	if err != nil {
		return fmt.Errorf("creating seed admin: %w", err)
	}

	logger.Warn("created bootstrap admin account, change the password after first login",
		"email", user.Email, "password", password)
	return nil
}

func generatePassword() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
