// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

const eventColumns = `id, title, location, description, start_at, end_at,
	published, created_by, created_at, updated_at`

func scanEventRow(scan func(dest ...any) error) (Event, error) {
	var e Event
	err := scan(&e.ID, &e.Title, &e.Location, &e.Description, &e.StartAt, &e.EndAt,
		&e.Published, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// CreateEventParams holds the fields for CreateEvent.
type CreateEventParams struct {
	Title       string
	Location    string
	Description string
	StartAt     time.Time
	EndAt       sql.NullTime
	Published   bool
	CreatedBy   int64
}

// CreateEvent inserts a new event and returns the created row.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO events (title, location, description, start_at, end_at,
			published, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Location, arg.Description, arg.StartAt, arg.EndAt,
		arg.Published, arg.CreatedBy, now, now)
	if err != nil {
		return Event{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Event{}, err
	}
	return q.GetEventByID(ctx, id)
}

// GetEventByID returns the event with the given ID.
func (q *Queries) GetEventByID(ctx context.Context, id int64) (Event, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEventRow(row.Scan)
}

// GetPublishedEventByID returns the event only if it is published.
func (q *Queries) GetPublishedEventByID(ctx context.Context, id int64) (Event, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ? AND published = 1`, id)
	return scanEventRow(row.Scan)
}

// ListEventsParams filters and paginates event listings.
type ListEventsParams struct {
	Published sql.NullBool // published state, invalid for any
	Search    string       // substring match on title and location
	Limit     int64
	Offset    int64
}

func eventFilter(arg ListEventsParams) (string, []any) {
	var conds []string
	var args []any
	if arg.Published.Valid {
		conds = append(conds, "published = ?")
		args = append(args, arg.Published.Bool)
	}
	if arg.Search != "" {
		pattern := "%" + arg.Search + "%"
		conds = append(conds, "(title LIKE ? OR location LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListEvents returns events matching the filter, soonest start first.
func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]Event, error) {
	where, args := eventFilter(arg)
	args = append(args, arg.Limit, arg.Offset)
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events`+where+
			` ORDER BY start_at ASC, id ASC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEventRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEvents returns the number of events matching the filter.
func (q *Queries) CountEvents(ctx context.Context, arg ListEventsParams) (int64, error) {
	where, args := eventFilter(arg)
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events`+where, args...).Scan(&n)
	return n, err
}

// UpdateEventParams holds the full replacement state for UpdateEvent.
type UpdateEventParams struct {
	ID          int64
	Title       string
	Location    string
	Description string
	StartAt     time.Time
	EndAt       sql.NullTime
	Published   bool
}

// UpdateEvent replaces all mutable fields of an event and returns the updated row.
func (q *Queries) UpdateEvent(ctx context.Context, arg UpdateEventParams) (Event, error) {
	_, err := q.db.ExecContext(ctx, `
		UPDATE events SET title = ?, location = ?, description = ?,
			start_at = ?, end_at = ?, published = ?, updated_at = ?
		WHERE id = ?`,
		arg.Title, arg.Location, arg.Description,
		arg.StartAt, arg.EndAt, arg.Published, time.Now().UTC(), arg.ID)
	if err != nil {
		return Event{}, err
	}
	return q.GetEventByID(ctx, arg.ID)
}

// DeleteEvent removes an event.
func (q *Queries) DeleteEvent(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	return err
}
