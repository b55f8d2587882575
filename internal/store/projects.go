package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/cutline/internal/apperr"
	"github.com/starford/cutline/internal/checksum"
	"github.com/starford/cutline/internal/models"
)

// SearchResult represents one project search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Snippet string `json:"snippet"`
}

// ProjectUpdate holds the fields of a project replace. A nil Timeline keeps
// the stored one.
type ProjectUpdate struct {
	Name     string
	Timeline *models.Snapshot
}

const projectColumns = `id, name, timeline, checksum, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*models.Project, error) {
	var (
		p   models.Project
		raw sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Name, &raw, &p.Checksum, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if raw.Valid && raw.String != "" {
		var snap models.Snapshot
		if err := json.Unmarshal([]byte(raw.String), &snap); err != nil {
			return nil, fmt.Errorf("store: decode timeline %s: %w", p.ID, err)
		}
		p.Timeline = &snap
	}
	return &p, nil
}

// encodeTimeline returns the stored JSON form of s (NULL for nil), the
// duration column value and the project checksum.
func encodeTimeline(name string, s *models.Snapshot) (sql.NullString, float64, string, error) {
	if s == nil {
		return sql.NullString{}, 0, checksum.Project(name, nil), nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return sql.NullString{}, 0, "", fmt.Errorf("store: encode timeline: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, s.Duration, checksum.Project(name, data), nil
}

// searchText collects the project name and clip names for indexing.
func searchText(name string, s *models.Snapshot) (string, string) {
	if s == nil {
		return name, ""
	}
	var clips []string
	for _, tr := range s.Tracks {
		for _, c := range tr.Clips {
			if n := c.Payload.Name(); n != "" {
				clips = append(clips, n)
			}
		}
	}
	return name, strings.Join(clips, " ")
}

// CreateProject inserts a new project. CreatedAt and UpdatedAt are set to now.
func (db *DB) CreateProject(ctx context.Context, p models.Project) (*models.Project, error) {
	raw, duration, sum, err := encodeTimeline(p.Name, p.Timeline)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (id, name, timeline, duration, checksum, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, raw, duration, sum, now, now)
	if err != nil {
		if isConstraint(err, sqlite3.ErrConstraintPrimaryKey) {
			return nil, apperr.ErrAlreadyExists
		}
		return nil, fmt.Errorf("store: insert project: %w", err)
	}
	name, clips := searchText(p.Name, p.Timeline)
	if err := ftsUpsert(tx, p.ID, name, clips); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}

	p.Checksum = sum
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Timeline != nil {
		cp := p.Timeline.Clone()
		p.Timeline = &cp
	}
	return &p, nil
}

// GetProject returns the project with the given id.
func (db *DB) GetProject(ctx context.Context, id string) (*models.Project, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get project: %w", err)
	}
	return p, nil
}

// ListProjects returns a page of projects, most recently updated first, and
// the total count.
func (db *DB) ListProjects(ctx context.Context, limit, offset int) ([]models.ProjectMetadata, int, error) {
	if limit <= 0 {
		limit = 50
	}
	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM projects`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count projects: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, duration, checksum, updated_at
		FROM projects
		ORDER BY updated_at DESC, id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list projects: %w", err)
	}
	defer rows.Close()

	out := []models.ProjectMetadata{}
	for rows.Next() {
		var m models.ProjectMetadata
		if err := rows.Scan(&m.ID, &m.Name, &m.Duration, &m.Checksum, &m.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// UpdateProject replaces the project's name and, when set, its timeline.
// A non-empty ifMatch must equal the stored checksum or ErrConflict is
// returned.
func (db *DB) UpdateProject(ctx context.Context, id string, u ProjectUpdate, ifMatch string) (*models.Project, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	cur, err := scanProject(tx.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get project: %w", err)
	}
	if ifMatch != "" && ifMatch != cur.Checksum {
		return nil, apperr.ErrConflict
	}

	snap := cur.Timeline
	if u.Timeline != nil {
		cp := u.Timeline.Clone()
		snap = &cp
	}
	raw, duration, sum, err := encodeTimeline(u.Name, snap)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE projects
		SET name = ?, timeline = ?, duration = ?, checksum = ?, updated_at = ?
		WHERE id = ?
	`, u.Name, raw, duration, sum, now, id)
	if err != nil {
		return nil, fmt.Errorf("store: update project: %w", err)
	}
	name, clips := searchText(u.Name, snap)
	if err := ftsUpsert(tx, id, name, clips); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}

	cur.Name = u.Name
	cur.Timeline = snap
	cur.Checksum = sum
	cur.UpdatedAt = now
	return cur, nil
}

// DeleteProject removes a project and its notes.
func (db *DB) DeleteProject(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	ftsDelete(tx, id)
	return tx.Commit()
}

// LoadTimeline returns the stored snapshot of a project, nil when the project
// has never been saved.
func (db *DB) LoadTimeline(ctx context.Context, projectID string) (*models.Snapshot, error) {
	p, err := db.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return p.Timeline, nil
}

// SaveTimeline stores s as the project's timeline.
func (db *DB) SaveTimeline(ctx context.Context, projectID string, s models.Snapshot) error {
	p, err := db.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	_, err = db.UpdateProject(ctx, projectID, ProjectUpdate{Name: p.Name, Timeline: &s}, "")
	return err
}

// ImportTimeline creates or replaces a project's timeline from a library
// file and records the file checksum unless it is empty. It reports whether
// the project was created.
func (db *DB) ImportTimeline(ctx context.Context, id, name string, s models.Snapshot, sourceChecksum string) (bool, error) {
	p, err := db.GetProject(ctx, id)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		if name == "" {
			name = id
		}
		if _, err := db.CreateProject(ctx, models.Project{ID: id, Name: name, Timeline: &s}); err != nil {
			return false, err
		}
		return true, db.recordSource(ctx, id, sourceChecksum)
	case err != nil:
		return false, err
	}

	if name == "" {
		name = p.Name
	}
	if _, err := db.UpdateProject(ctx, id, ProjectUpdate{Name: name, Timeline: &s}, ""); err != nil {
		return false, err
	}
	return false, db.recordSource(ctx, id, sourceChecksum)
}

func (db *DB) recordSource(ctx context.Context, id, sum string) error {
	if sum == "" {
		return nil
	}
	return db.SetSourceChecksum(ctx, id, sum)
}

// SourceChecksums returns the library file checksum recorded per project.
// Projects never imported or exported are omitted.
func (db *DB) SourceChecksums(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, source_checksum FROM projects WHERE source_checksum != ''`)
	if err != nil {
		return nil, fmt.Errorf("store: source checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// SetSourceChecksum records the checksum of the library file last imported
// from or exported to for a project.
func (db *DB) SetSourceChecksum(ctx context.Context, id, sum string) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE projects SET source_checksum = ? WHERE id = ?`, sum, id)
	if err != nil {
		return fmt.Errorf("store: set source checksum: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
