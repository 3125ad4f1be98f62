// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const feedbackColumns = `id, reference, name, email, phone_number, message,
	is_read, ip_address, user_agent, created_at`

func scanFeedbackRow(scan func(dest ...any) error) (Feedback, error) {
	var f Feedback
	err := scan(&f.ID, &f.Reference, &f.Name, &f.Email, &f.PhoneNumber, &f.Message,
		&f.IsRead, &f.IpAddress, &f.UserAgent, &f.CreatedAt)
	return f, err
}

// CreateFeedbackParams holds the fields for CreateFeedback.
type CreateFeedbackParams struct {
	Reference   string
	Name        sql.NullString
	Email       sql.NullString
	PhoneNumber sql.NullString
	Message     string
	IpAddress   sql.NullString
	UserAgent   sql.NullString
}

// CreateFeedback inserts a new feedback submission and returns the created row.
func (q *Queries) CreateFeedback(ctx context.Context, arg CreateFeedbackParams) (Feedback, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO feedback (reference, name, email, phone_number, message,
			ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Reference, arg.Name, arg.Email, arg.PhoneNumber, arg.Message,
		arg.IpAddress, arg.UserAgent, time.Now().UTC())
	if err != nil {
		return Feedback{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Feedback{}, err
	}
	return q.GetFeedbackByID(ctx, id)
}

// GetFeedbackByID returns the feedback entry with the given ID.
func (q *Queries) GetFeedbackByID(ctx context.Context, id int64) (Feedback, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+feedbackColumns+` FROM feedback WHERE id = ?`, id)
	return scanFeedbackRow(row.Scan)
}

// ListFeedbackParams filters and paginates feedback listings.
type ListFeedbackParams struct {
	IsRead sql.NullBool // read state, invalid for any
	Limit  int64
	Offset int64
}

// ListFeedback returns feedback entries, newest first.
func (q *Queries) ListFeedback(ctx context.Context, arg ListFeedbackParams) ([]Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedback`
	var args []any
	if arg.IsRead.Valid {
		query += ` WHERE is_read = ?`
		args = append(args, arg.IsRead.Bool)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Feedback
	for rows.Next() {
		f, err := scanFeedbackRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, f)
	}
	return entries, rows.Err()
}

// CountFeedback returns the number of feedback entries matching the filter.
func (q *Queries) CountFeedback(ctx context.Context, arg ListFeedbackParams) (int64, error) {
	query := `SELECT COUNT(*) FROM feedback`
	var args []any
	if arg.IsRead.Valid {
		query += ` WHERE is_read = ?`
		args = append(args, arg.IsRead.Bool)
	}
	var n int64
	err := q.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// SetFeedbackReadParams holds the fields for SetFeedbackRead.
type SetFeedbackReadParams struct {
	ID     int64
	IsRead bool
}

// SetFeedbackRead marks a feedback entry read or unread and returns the updated row.
func (q *Queries) SetFeedbackRead(ctx context.Context, arg SetFeedbackReadParams) (Feedback, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE feedback SET is_read = ? WHERE id = ?`, arg.IsRead, arg.ID)
	if err != nil {
		return Feedback{}, err
	}
	return q.GetFeedbackByID(ctx, arg.ID)
}

// DeleteFeedback removes a feedback entry.
func (q *Queries) DeleteFeedback(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM feedback WHERE id = ?`, id)
	return err
}
