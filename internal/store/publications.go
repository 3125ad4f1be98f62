// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

const publicationColumns = `id, category, title, slug, content, description,
	file_url, audio_url, image_url, images, tags, author, reference_no,
	duration_seconds, file_size_bytes, published, created_by,
	created_at, updated_at, published_at`

func scanPublicationRow(scan func(dest ...any) error) (Publication, error) {
	var p Publication
	err := scan(&p.ID, &p.Category, &p.Title, &p.Slug, &p.Content, &p.Description,
		&p.FileUrl, &p.AudioUrl, &p.ImageUrl, &p.Images, &p.Tags, &p.Author, &p.ReferenceNo,
		&p.DurationSeconds, &p.FileSizeBytes, &p.Published, &p.CreatedBy,
		&p.CreatedAt, &p.UpdatedAt, &p.PublishedAt)
	return p, err
}

// CreatePublicationParams holds the fields for CreatePublication.
type CreatePublicationParams struct {
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
}

// CreatePublication inserts a new publication and returns the created row.
func (q *Queries) CreatePublication(ctx context.Context, arg CreatePublicationParams) (Publication, error) {
	now := time.Now().UTC()
	var publishedAt sql.NullTime
	if arg.Published {
		publishedAt = sql.NullTime{Time: now, Valid: true}
	}
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO publications (category, title, slug, content, description,
			file_url, audio_url, image_url, images, tags, author, reference_no,
			duration_seconds, file_size_bytes, published, created_by,
			created_at, updated_at, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Category, arg.Title, arg.Slug, arg.Content, arg.Description,
		arg.FileUrl, arg.AudioUrl, arg.ImageUrl, arg.Images, arg.Tags, arg.Author, arg.ReferenceNo,
		arg.DurationSeconds, arg.FileSizeBytes, arg.Published, arg.CreatedBy,
		now, now, publishedAt)
	if err != nil {
		return Publication{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Publication{}, err
	}
	return q.GetPublicationByID(ctx, id)
}

// GetPublicationByID returns the publication with the given ID.
func (q *Queries) GetPublicationByID(ctx context.Context, id int64) (Publication, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+publicationColumns+` FROM publications WHERE id = ?`, id)
	return scanPublicationRow(row.Scan)
}

// GetPublishedPublicationByID returns the publication only if it is published.
func (q *Queries) GetPublishedPublicationByID(ctx context.Context, id int64) (Publication, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+publicationColumns+` FROM publications WHERE id = ? AND published = 1`, id)
	return scanPublicationRow(row.Scan)
}

// GetPublishedPublicationBySlug returns the published publication with the given slug.
func (q *Queries) GetPublishedPublicationBySlug(ctx context.Context, slug string) (Publication, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+publicationColumns+` FROM publications WHERE slug = ? AND published = 1`, slug)
	return scanPublicationRow(row.Scan)
}

// CountPublicationsBySlug returns how many publications use the given slug.
func (q *Queries) CountPublicationsBySlug(ctx context.Context, slug string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM publications WHERE slug = ?`, slug).Scan(&n)
	return n, err
}

// ListPublicationsParams filters and paginates publication listings.
// Zero-valued filters match everything.
type ListPublicationsParams struct {
	Category  string       // exact category, empty for any
	Published sql.NullBool // published state, invalid for any
	Search    string       // substring match on title and description
	Limit     int64
	Offset    int64
}

func publicationFilter(arg ListPublicationsParams) (string, []any) {
	var conds []string
	var args []any
	if arg.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, arg.Category)
	}
	if arg.Published.Valid {
		conds = append(conds, "published = ?")
		args = append(args, arg.Published.Bool)
	}
	if arg.Search != "" {
		pattern := "%" + arg.Search + "%"
		conds = append(conds, "(title LIKE ? OR description LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListPublications returns publications matching the filter, newest first.
func (q *Queries) ListPublications(ctx context.Context, arg ListPublicationsParams) ([]Publication, error) {
	where, args := publicationFilter(arg)
	args = append(args, arg.Limit, arg.Offset)
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+publicationColumns+` FROM publications`+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pubs []Publication
	for rows.Next() {
		p, err := scanPublicationRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, p)
	}
	return pubs, rows.Err()
}

// CountPublications returns the number of publications matching the filter.
func (q *Queries) CountPublications(ctx context.Context, arg ListPublicationsParams) (int64, error) {
	where, args := publicationFilter(arg)
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM publications`+where, args...).Scan(&n)
	return n, err
}

// UpdatePublicationParams holds the full replacement state for UpdatePublication.
type UpdatePublicationParams struct {
	ID              int64
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
	PublishedAt     sql.NullTime
}

// UpdatePublication replaces all mutable fields of a publication and returns
// the updated row. The category is immutable and not part of the update.
func (q *Queries) UpdatePublication(ctx context.Context, arg UpdatePublicationParams) (Publication, error) {
	_, err := q.db.ExecContext(ctx, `
		UPDATE publications SET title = ?, slug = ?, content = ?, description = ?,
			file_url = ?, audio_url = ?, image_url = ?, images = ?, tags = ?,
			author = ?, reference_no = ?, duration_seconds = ?, file_size_bytes = ?,
			published = ?, published_at = ?, updated_at = ?
		WHERE id = ?`,
		arg.Title, arg.Slug, arg.Content, arg.Description,
		arg.FileUrl, arg.AudioUrl, arg.ImageUrl, arg.Images, arg.Tags,
		arg.Author, arg.ReferenceNo, arg.DurationSeconds, arg.FileSizeBytes,
		arg.Published, arg.PublishedAt, time.Now().UTC(), arg.ID)
	if err != nil {
		return Publication{}, err
	}
	return q.GetPublicationByID(ctx, arg.ID)
}

// DeletePublication removes a publication.
func (q *Queries) DeletePublication(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM publications WHERE id = ?`, id)
	return err
}
