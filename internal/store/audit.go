// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// CreateAuditEntryParams holds the fields for CreateAuditEntry.
type CreateAuditEntryParams struct {
	Level    string
	Category string
	Message  string
	UserID   sql.NullInt64
	Metadata string
}

// CreateAuditEntry appends a row to the audit log.
func (q *Queries) CreateAuditEntry(ctx context.Context, arg CreateAuditEntryParams) error {
	metadata := arg.Metadata
	if metadata == "" {
		metadata = "{}"
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO audit_log (level, category, message, user_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Level, arg.Category, arg.Message, arg.UserID, metadata, time.Now().UTC())
	return err
}

// ListAuditEntriesParams filters and paginates audit log listings.
type ListAuditEntriesParams struct {
	Category string // exact category, empty for any
	Level    string // exact level, empty for any
	Limit    int64
	Offset   int64
}

func auditFilter(arg ListAuditEntriesParams) (string, []any) {
	var where string
	var args []any
	switch {
	case arg.Category != "" && arg.Level != "":
		where = ` WHERE category = ? AND level = ?`
		args = append(args, arg.Category, arg.Level)
	case arg.Category != "":
		where = ` WHERE category = ?`
		args = append(args, arg.Category)
	case arg.Level != "":
		where = ` WHERE level = ?`
		args = append(args, arg.Level)
	}
	return where, args
}

// ListAuditEntries returns audit log rows, newest first.
func (q *Queries) ListAuditEntries(ctx context.Context, arg ListAuditEntriesParams) ([]AuditEntry, error) {
	where, args := auditFilter(arg)
	args = append(args, arg.Limit, arg.Offset)
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, level, category, message, user_id, metadata, created_at
		FROM audit_log`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message,
			&e.UserID, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountAuditEntries returns the number of audit log rows matching the filter.
func (q *Queries) CountAuditEntries(ctx context.Context, arg ListAuditEntriesParams) (int64, error) {
	where, args := auditFilter(arg)
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_log`+where, args...).Scan(&n)
	return n, err
}
