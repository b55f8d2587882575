package api

import (
	"errors"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/cutline/internal/models"
	"github.com/starford/cutline/internal/projectservice"
	"github.com/starford/cutline/internal/store"
)

// CreateProjectRequest is the request body for creating a project.
type CreateProjectRequest struct {
	Name     string           `json:"name" example:"Trailer cut" validate:"required"`
	Timeline *models.Snapshot `json:"timeline,omitempty"`
}

// Validate implements validation.Validatable.
func (r CreateProjectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
	)
}

// UpdateProjectRequest is the request body for updating a project. A missing
// timeline keeps the stored one.
type UpdateProjectRequest struct {
	Name     string           `json:"name" example:"Trailer cut v2" validate:"required"`
	Timeline *models.Snapshot `json:"timeline,omitempty"`
}

// Validate implements validation.Validatable.
func (r UpdateProjectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
	)
}

// AddTrackRequest is the request body for adding a track. An empty type
// follows the fill policy.
type AddTrackRequest struct {
	Type models.TrackType `json:"type,omitempty" example:"audio" enums:"background,video,audio"`
	Name string           `json:"name,omitempty" example:"Narration"`
}

// Validate implements validation.Validatable.
func (r AddTrackRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.In(models.TrackBackground, models.TrackVideo, models.TrackAudio)),
		validation.Field(&r.Name, validation.Length(0, 200)),
	)
}

// ClipRequest is the request body for adding or patching a clip. Missing
// fields keep their defaults or current values.
type ClipRequest struct {
	StartTime *float64       `json:"startTime,omitempty" example:"0"`
	EndTime   *float64       `json:"endTime,omitempty" example:"5"`
	Payload   models.Payload `json:"payload,omitempty"`
}

// Validate implements validation.Validatable.
func (r ClipRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.StartTime, validation.By(finite)),
		validation.Field(&r.EndTime, validation.By(finite)),
	)
}

// SplitClipRequest is the request body for splitting a clip. A missing time
// splits at the playhead.
type SplitClipRequest struct {
	At *float64 `json:"at,omitempty" example:"2.5"`
}

// Validate implements validation.Validatable.
func (r SplitClipRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.At, validation.By(finite)),
	)
}

// MoveClipRequest is the request body for moving a clip.
type MoveClipRequest struct {
	StartTime *float64 `json:"startTime" example:"12" validate:"required"`
}

// Validate implements validation.Validatable.
func (r MoveClipRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.StartTime, validation.NotNil, validation.By(finite)),
	)
}

// PlayheadRequest is the request body for moving the playhead.
type PlayheadRequest struct {
	Position *float64 `json:"position" example:"3.2" validate:"required"`
}

// Validate implements validation.Validatable.
func (r PlayheadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Position, validation.NotNil, validation.By(finite)),
	)
}

// ZoomRequest is the request body for setting the zoom factor.
type ZoomRequest struct {
	Zoom *float64 `json:"zoom" example:"1.5" validate:"required"`
}

// Validate implements validation.Validatable.
func (r ZoomRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Zoom, validation.NotNil, validation.By(finite)),
	)
}

// SelectionRequest is the request body for selecting a clip. An empty id
// clears the selection.
type SelectionRequest struct {
	ClipID string `json:"clipId" example:"3f1c2a9e-0000-4000-8000-000000000000"`
}

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	ProjectID string         `json:"projectId" validate:"required"`
	Data      map[string]any `json:"data" validate:"required"`
}

// Validate implements validation.Validatable.
func (r CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProjectID, validation.Required),
		validation.Field(&r.Data, validation.NotNil),
	)
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Data map[string]any `json:"data" validate:"required"`
}

// Validate implements validation.Validatable.
func (r UpdateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Data, validation.NotNil),
	)
}

// ProjectListResponse wraps paginated project listings.
type ProjectListResponse struct {
	Projects []models.ProjectMetadata `json:"projects" validate:"required"`
	Total    int                      `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []store.SearchResult `json:"results" validate:"required"`
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.Note `json:"notes" validate:"required"`
}

// ExportResponse reports where a project was written in the library.
type ExportResponse struct {
	Path string `json:"path" example:"trailer.timeline.json" validate:"required"`
}

// EditResponse is the result of a timeline operation (aliased from the
// domain layer).
type EditResponse = projectservice.EditResult

func finite(v any) error {
	f, ok := v.(*float64)
	if !ok || f == nil {
		return nil
	}
	if math.IsNaN(*f) || math.IsInf(*f, 0) {
		return errors.New("must be a finite number")
	}
	return nil
}
