package library

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/cutline/internal/checksum"
	"github.com/starford/cutline/internal/models"
	"github.com/starford/cutline/internal/parser"
)

// Importer is the part of the project store the library writes to.
type Importer interface {
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ImportTimeline(ctx context.Context, id, name string, s models.Snapshot, sourceChecksum string) (bool, error)
	SourceChecksums(ctx context.Context) (map[string]string, error)
	SetSourceChecksum(ctx context.Context, id, sum string) error
}

// EventCallback is called after a library-driven project change.
// kind is one of "created", "updated".
type EventCallback func(kind string, projectID string)

// Sync walks the library and imports every timeline file whose checksum
// differs from the one recorded for its project. Files removed from disk
// leave their projects in place.
func Sync(ctx context.Context, db Importer, store Provider, logger *slog.Logger, cb EventCallback) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.SourceChecksums(ctx)
	if err != nil {
		return err
	}

	for _, m := range metas {
		if checksums[m.ProjectID] == m.Checksum {
			continue
		}
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		created, err := importFile(ctx, db, m.ProjectID, data)
		if err != nil {
			logger.Warn("sync: import failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		// A project may appear under several file names; the last one wins.
		checksums[m.ProjectID] = m.Checksum
		logger.Debug("sync: imported", slog.String("path", m.Path), slog.String("project_id", m.ProjectID))
		if cb != nil {
			cb(kindOf(created), m.ProjectID)
		}
	}
	return nil
}

// importFile parses data and stores it as the project's timeline.
func importFile(ctx context.Context, db Importer, projectID string, data []byte) (bool, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return false, err
	}
	return db.ImportTimeline(ctx, projectID, res.Name, res.Snapshot, checksum.Sum(data))
}

// Export writes the project's stored timeline into the library and records
// the file checksum so the watcher does not import it back. It returns the
// written path.
func Export(ctx context.Context, db Importer, store Provider, projectID string, format parser.Format) (string, error) {
	p, err := db.GetProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	snap := models.Snapshot{Tracks: []models.Track{}}
	if p.Timeline != nil {
		snap = *p.Timeline
	}
	data, err := parser.Encode(p.Name, snap, format)
	if err != nil {
		return "", err
	}
	sums, err := db.SourceChecksums(ctx)
	if err != nil {
		return "", err
	}
	path := parser.FileName(projectID, format)
	// Record first: the watcher may see the file before Write returns.
	if err := db.SetSourceChecksum(ctx, projectID, checksum.Sum(data)); err != nil {
		return "", err
	}
	if err := store.Write(path, data); err != nil {
		_ = db.SetSourceChecksum(ctx, projectID, sums[projectID])
		return "", fmt.Errorf("library: export %s: %w", projectID, err)
	}
	return path, nil
}

func kindOf(created bool) string {
	if created {
		return "created"
	}
	return "updated"
}
