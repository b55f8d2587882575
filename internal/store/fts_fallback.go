//go:build !sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE on the projects table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _ string) error {
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

// SearchProjects performs a LIKE-based search over project names and stored
// timelines (fallback when FTS5 is not compiled in).
func (db *DB) SearchProjects(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, substr(coalesce(timeline, ''), 1, 200)
		FROM projects
		WHERE name LIKE ? OR timeline LIKE ?
		LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Name, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
