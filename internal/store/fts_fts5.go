//go:build sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS projects_fts USING fts5(
			id UNINDEXED,
			name,
			clips,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, name, clips string) error {
	_, _ = tx.Exec(`DELETE FROM projects_fts WHERE id = ?`, id)
	_, err := tx.Exec(`INSERT INTO projects_fts (id, name, clips) VALUES (?, ?, ?)`, id, name, clips)
	if err != nil {
		return fmt.Errorf("store: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM projects_fts WHERE id = ?`, id)
}

// SearchProjects performs an FTS5 search over project and clip names.
func (db *DB) SearchProjects(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id,
		       name,
		       snippet(projects_fts, 2, '<b>', '</b>', '...', 32)
		FROM projects_fts
		WHERE projects_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
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
