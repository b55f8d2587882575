package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/cutline/internal/apperr"
	"github.com/starford/cutline/internal/models"
)

func scanNote(s scanner) (*models.Note, error) {
	var (
		n   models.Note
		raw string
	)
	if err := s.Scan(&n.ID, &n.ProjectID, &raw, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &n.Data); err != nil {
		return nil, fmt.Errorf("store: decode note %s: %w", n.ID, err)
	}
	if n.Data == nil {
		n.Data = map[string]any{}
	}
	return &n, nil
}

// CreateNote inserts a note. The project must exist.
func (db *DB) CreateNote(ctx context.Context, n models.Note) (*models.Note, error) {
	if n.Data == nil {
		n.Data = map[string]any{}
	}
	data, err := json.Marshal(n.Data)
	if err != nil {
		return nil, fmt.Errorf("store: encode note: %w", err)
	}
	now := time.Now().UTC()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO notes (id, project_id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, n.ID, n.ProjectID, string(data), now, now)
	switch {
	case isConstraint(err, sqlite3.ErrConstraintPrimaryKey):
		return nil, apperr.ErrAlreadyExists
	case isConstraint(err, sqlite3.ErrConstraintForeignKey):
		return nil, apperr.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("store: insert note: %w", err)
	}
	n.CreatedAt = now
	n.UpdatedAt = now
	return &n, nil
}

// GetNote returns the note with the given id.
func (db *DB) GetNote(ctx context.Context, id string) (*models.Note, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, project_id, data, created_at, updated_at FROM notes WHERE id = ?
	`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get note: %w", err)
	}
	return n, nil
}

// ListNotes returns the notes of a project, oldest first. An empty projectID
// lists every note.
func (db *DB) ListNotes(ctx context.Context, projectID string) ([]models.Note, error) {
	q := `SELECT id, project_id, data, created_at, updated_at FROM notes`
	var args []any
	if projectID != "" {
		q += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	q += ` ORDER BY created_at, id`

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	out := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// UpdateNote replaces a note's data.
func (db *DB) UpdateNote(ctx context.Context, id string, data map[string]any) (*models.Note, error) {
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("store: encode note: %w", err)
	}
	res, err := db.conn.ExecContext(ctx, `UPDATE notes SET data = ?, updated_at = ? WHERE id = ?`,
		string(raw), time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("store: update note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperr.ErrNotFound
	}
	return db.GetNote(ctx, id)
}

// DeleteNote removes a note.
func (db *DB) DeleteNote(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
