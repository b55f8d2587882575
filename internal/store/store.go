package store

import (
	"context"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/cutline/internal/editor"
	"github.com/starford/cutline/internal/models"
)

// ProjectStore defines the project, timeline and note persistence operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type ProjectStore interface {
	editor.Persister

	CreateProject(ctx context.Context, p models.Project) (*models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context, limit, offset int) ([]models.ProjectMetadata, int, error)
	UpdateProject(ctx context.Context, id string, u ProjectUpdate, ifMatch string) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	SearchProjects(ctx context.Context, query string, limit int) ([]SearchResult, error)

	ImportTimeline(ctx context.Context, id, name string, s models.Snapshot, sourceChecksum string) (bool, error)
	SourceChecksums(ctx context.Context) (map[string]string, error)
	SetSourceChecksum(ctx context.Context, id, sum string) error

	CreateNote(ctx context.Context, n models.Note) (*models.Note, error)
	GetNote(ctx context.Context, id string) (*models.Note, error)
	ListNotes(ctx context.Context, projectID string) ([]models.Note, error)
	UpdateNote(ctx context.Context, id string, data map[string]any) (*models.Note, error)
	DeleteNote(ctx context.Context, id string) error

	Ping() error
	Close() error
}

// Verify *DB satisfies ProjectStore at compile time.
var _ ProjectStore = (*DB)(nil)

func isConstraint(err error, code sqlite3.ErrNoExtended) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == code
}
