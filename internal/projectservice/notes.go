package projectservice

import (
	"context"

	"github.com/starford/cutline/internal/models"
)

// ListNotes returns a project's notes, or every note for an empty projectID.
func (s *Service) ListNotes(ctx context.Context, projectID string) ([]models.Note, error) {
	return s.db.ListNotes(ctx, projectID)
}

// GetNote returns one note.
func (s *Service) GetNote(ctx context.Context, id string) (*models.Note, error) {
	return s.db.GetNote(ctx, id)
}

// CreateNote attaches a new note to a project.
func (s *Service) CreateNote(ctx context.Context, projectID string, data map[string]any) (*models.Note, error) {
	return s.db.CreateNote(ctx, models.Note{ID: s.newID(), ProjectID: projectID, Data: data})
}

// UpdateNote replaces a note's data.
func (s *Service) UpdateNote(ctx context.Context, id string, data map[string]any) (*models.Note, error) {
	return s.db.UpdateNote(ctx, id, data)
}

// DeleteNote removes a note.
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	return s.db.DeleteNote(ctx, id)
}
