// Package projectservice coordinates the project store, the editing sessions
// and the timeline library for the API and MCP layers.
package projectservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/cutline/internal/apperr"
	"github.com/starford/cutline/internal/editor"
	"github.com/starford/cutline/internal/library"
	"github.com/starford/cutline/internal/models"
	"github.com/starford/cutline/internal/parser"
	"github.com/starford/cutline/internal/store"
)

// Publisher receives project lifecycle notifications.
type Publisher interface {
	PublishProjectEvent(kind, projectID string)
}

// Service coordinates store, session and library operations.
type Service struct {
	db       store.ProjectStore
	sessions *editor.Registry
	lib      library.Provider
	pub      Publisher
	logger   *slog.Logger
	newID    func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLibrary enables export and import through the timeline library.
func WithLibrary(lib library.Provider) Option {
	return func(s *Service) {
		s.lib = lib
	}
}

// WithPublisher sets the receiver of project events.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.pub = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator overrides how project and note ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService creates a new project service.
func NewService(db store.ProjectStore, sessions *editor.Registry, opts ...Option) *Service {
	s := &Service{
		db:       db,
		sessions: sessions,
		logger:   slog.Default(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) publish(kind, projectID string) {
	if s.pub != nil {
		s.pub.PublishProjectEvent(kind, projectID)
	}
}

// ListProjects returns a page of project metadata and the total count.
func (s *Service) ListProjects(ctx context.Context, limit, offset int) ([]models.ProjectMetadata, int, error) {
	return s.db.ListProjects(ctx, limit, offset)
}

// SearchProjects searches project and clip names.
func (s *Service) SearchProjects(ctx context.Context, query string, limit int) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return []store.SearchResult{}, nil
	}
	res, err := s.db.SearchProjects(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(res), nil
}

// GetProject returns the stored project.
func (s *Service) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return s.db.GetProject(ctx, id)
}

// CreateProject stores a new project with a fresh id.
func (s *Service) CreateProject(ctx context.Context, name string, timeline *models.Snapshot) (*models.Project, error) {
	p, err := s.db.CreateProject(ctx, models.Project{ID: s.newID(), Name: name, Timeline: timeline})
	if err != nil {
		return nil, err
	}
	s.publish("created", p.ID)
	return p, nil
}

// UpdateProject replaces a project's name and optionally its timeline. When
// the timeline changes, an open session is reloaded from it.
func (s *Service) UpdateProject(ctx context.Context, id, name string, timeline *models.Snapshot, ifMatch string) (*models.Project, error) {
	p, err := s.db.UpdateProject(ctx, id, store.ProjectUpdate{Name: name, Timeline: timeline}, ifMatch)
	if err != nil {
		return nil, err
	}
	if timeline != nil {
		if err := s.sessions.Reload(ctx, id); err != nil {
			s.logger.Warn("reload after update failed", slog.String("project_id", id), slog.String("error", err.Error()))
		}
	}
	s.publish("updated", id)
	return p, nil
}

// DeleteProject closes the project's session, discarding unsaved edits, and
// removes it with its notes.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	s.sessions.Close(id)
	if err := s.db.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.publish("deleted", id)
	return nil
}

// SaveTimeline persists the live timeline of a project. A non-empty ifMatch
// must equal the stored checksum.
func (s *Service) SaveTimeline(ctx context.Context, id, ifMatch string) (*models.Project, error) {
	if ifMatch != "" {
		cur, err := s.db.GetProject(ctx, id)
		if err != nil {
			return nil, err
		}
		if cur.Checksum != ifMatch {
			return nil, apperr.ErrConflict
		}
	}
	err := s.sessions.Do(ctx, id, func(e *editor.Editor) error {
		_, err := e.Save(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish("updated", id)
	return s.db.GetProject(ctx, id)
}

// Export writes the stored timeline of a project into the library.
func (s *Service) Export(ctx context.Context, id string, format parser.Format) (string, error) {
	if s.lib == nil {
		return "", errors.New("projectservice: no library configured")
	}
	return library.Export(ctx, s.db, s.lib, id, format)
}

// Import stores a timeline file as the project's timeline, creating the
// project when needed.
func (s *Service) Import(ctx context.Context, id string, data []byte) (*models.Project, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	created, err := s.db.ImportTimeline(ctx, id, res.Name, res.Snapshot, "")
	if err != nil {
		return nil, err
	}
	s.HandleLibraryEvent(kindOf(created), id)
	return s.db.GetProject(ctx, id)
}

// HandleLibraryEvent reloads an open session after its project was imported
// from the library and publishes the change. It matches
// library.EventCallback.
func (s *Service) HandleLibraryEvent(kind, projectID string) {
	if err := s.sessions.Reload(context.Background(), projectID); err != nil {
		s.logger.Warn("reload after import failed", slog.String("project_id", projectID), slog.String("error", err.Error()))
	}
	s.publish(kind, projectID)
}

func kindOf(created bool) string {
	if created {
		return "created"
	}
	return "updated"
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
