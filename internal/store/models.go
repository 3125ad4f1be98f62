// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

// User is a row in the users table.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  sql.NullTime
}

// Publication is a row in the publications table. Images and Tags hold JSON
// arrays of strings; the API layer converts them to and from slices.
type Publication struct {
	ID              int64
	Category        string
	Title           string
	Slug            string
	Content         string
	Description     string
	FileUrl         string
	AudioUrl        string
	ImageUrl        string
	Images          string
	Tags            string
	Author          string
	ReferenceNo     string
	DurationSeconds sql.NullInt64
	FileSizeBytes   sql.NullInt64
	Published       bool
	CreatedBy       int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PublishedAt     sql.NullTime
}

// Event is a row in the events table.
type Event struct {
	ID          int64
	Title       string
	Location    string
	Description string
	StartAt     time.Time
	EndAt       sql.NullTime
	Published   bool
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Feedback is a row in the feedback table. Optional contact fields are NULL
// when the submitter left them blank.
type Feedback struct {
	ID          int64
	Reference   string
	Name        sql.NullString
	Email       sql.NullString
	PhoneNumber sql.NullString
	Message     string
	IsRead      bool
	IpAddress   sql.NullString
	UserAgent   sql.NullString
	CreatedAt   time.Time
}

// AuditEntry is a row in the audit_log table.
type AuditEntry struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string // JSON object
	CreatedAt time.Time
}
