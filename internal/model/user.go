// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain vocabulary and validation rules for the
// student assembly site: users and roles, publications with their
// category-specific requirements, scheduled events, and public feedback.
package model

// User roles. The wire and storage spellings are identical.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// ValidRoles contains all valid user roles.
var ValidRoles = []string{RoleUser, RoleAdmin}

// IsValidRole reports whether role is one of the known role values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
