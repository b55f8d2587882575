package projectservice

import (
	"context"

	"github.com/starford/cutline/internal/apperr"
	"github.com/starford/cutline/internal/editor"
	"github.com/starford/cutline/internal/timeline"
)

// EditResult is the outcome of a timeline operation: the editor state after
// it ran and the id of a track or clip it created.
type EditResult struct {
	State   editor.State `json:"state"`
	TrackID string       `json:"trackId,omitempty"`
	ClipID  string       `json:"clipId,omitempty"`
	Changed bool         `json:"changed"`
}

// edit runs fn on the project's session and captures the resulting state in
// the same step.
func (s *Service) edit(ctx context.Context, projectID string, fn func(e *editor.Editor, res *EditResult) error) (*EditResult, error) {
	res := &EditResult{}
	err := s.sessions.Do(ctx, projectID, func(e *editor.Editor) error {
		if err := fn(e, res); err != nil {
			return err
		}
		res.State = e.State()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Timeline returns the live editor state of a project.
func (s *Service) Timeline(ctx context.Context, projectID string) (*EditResult, error) {
	return s.edit(ctx, projectID, func(*editor.Editor, *EditResult) error { return nil })
}

// AddTrack appends a track. An empty type follows the fill policy.
func (s *Service) AddTrack(ctx context.Context, projectID string, spec timeline.TrackSpec) (*EditResult, error) {
	return s.edit(ctx, projectID, func(e *editor.Editor, res *EditResult) error {
		tr, ok := e.Timeline().AddTrack(spec)
		if !ok {
			return apperr.ErrInvalid
		}
		res.TrackID, res.Changed = tr.ID, true
		return nil
	})
}

// RemoveTrack deletes a track and its clips.
func (s *Service) RemoveTrack(ctx context.Context, projectID, trackID string) (*EditResult, error) {
	return s.edit(ctx, projectID, func(e *editor.Editor, res *EditResult) error {
		if !e.Timeline().RemoveTrack(trackID) {
			return apperr.ErrNotFound
		}
		res.TrackID, res.Changed = trackID, true
		return nil
	})
}

// AddClip inserts a clip into a track.
func (s *Service) AddClip(ctx context.Context, projectID, trackID string, spec timeline.ClipSpec) (*EditResult, error) {
	return s.edit(ctx, projectID, func(e *editor.Editor, res *EditResult) error {
		tl := e.Timeline()
		if _, ok := tl.Track(trackID); !ok {
			return apperr.ErrNotFound
		}
		c, ok := tl.AddClip(trackID, spec)
		if !ok {
			return apperr.ErrInvalidRange
		}
		res.TrackID, res.ClipID, res.Changed = trackID, c.ID, true
		return nil
	})
}

// UpdateClip merges a patch into a clip.
func (s *Service) UpdateClip(ctx context.Context, projectID, clipID string, patch timeline.ClipPatch) (*EditResult, error) {
	return s.edit(ctx, projectID, func(e *editor.Editor, res *EditResult) error {
		tl := e.Timeline()
		trackID, _, ok := tl.Clip(clipID)
		if !ok {
			return apperr.ErrNotFound
		}
		if !tl.UpdateClip(clipID, patch) {
			return apperr.ErrInvalidRange
		}
		res.TrackID, res.ClipID, res.Changed = trackID, clipID, true
		return nil
	})
}

// RemoveClip deletes a clip.
func (s *Service) RemoveClip(ctx context.Context, projectID, clipID string) (*EditResult, error) {
	return s.edit(ctx, projectID, func(e *editor.Editor, res *EditResult) error {
		if !e.Timeline().RemoveClip(clipID) {
			return apperr.ErrNotFound
		}
		res.ClipID, res.Changed = clipID, true
		return nil
	})
}

// SplitClip cuts a clip at the given time, or at the playhead when at is nil.
// ClipID of the result is the new right-hand clip.
func (s *Service) SplitClip(ctx context.Context, projectID, clipID string, at *float64) (*EditResult, error) {
	return s.edit(ctx, projectID, func(e *editor.Editor, res *EditResult) error {
		tl := e.Timeline()
		trackID, _, ok := tl.Clip(clipID)
		if !ok {
			return apperr.ErrNotFound
		}
		point := tl.Playhead()
		if at != nil {
			point = *at
		}
		right, ok := tl.SplitClip(clipID, point)
		if !ok {
			return apperr.ErrInvalidRange
		}
		res.TrackID, res.ClipID, res.Changed = trackID, right.ID, true
		return nil
	})
}

// MoveClip shifts a clip to start at newStart, keeping its length.
func (s *Service) MoveClip(ctx context.Context, projectID, clipID string, newStart float64) (*EditResult, error) {
	return s.edit(ctx, projectID, func(e *editor.Editor, res *EditResult) error {
		tl := e.Timeline()
		trackID, _, ok := tl.Clip(clipID)
		if !ok {
			return apperr.ErrNotFound
		}
		if !tl.MoveClip(clipID, newStart) {
			return apperr.ErrInvalidRange
		}
		res.TrackID, res.ClipID, res.Changed = trackID, clipID, true
		return nil
	})
}

// SetPlayhead moves the playhead, clamped to the timeline.
func (s *Service) SetPlayhead(ctx context.Context, projectID string, pos float64) (*EditResult, error) {
	return s.edit(ctx, projectID, func(e *editor.Editor, res *EditResult) error {
		before := e.Timeline().Playhead()
		e.Timeline().SetPlayhead(pos)
		res.Changed = e.Timeline().Playhead() != before
		return nil
	})
}

// SetZoom sets the zoom factor, clamped to the allowed range.
func (s *Service) SetZoom(ctx context.Context, projectID string, factor float64) (*EditResult, error) {
	return s.edit(ctx, projectID, func(e *editor.Editor, res *EditResult) error {
		before := e.Timeline().Zoom()
		e.Timeline().SetZoom(factor)
		res.Changed = e.Timeline().Zoom() != before
		return nil
	})
}

// Select marks a clip as selected; an empty id clears the selection.
func (s *Service) Select(ctx context.Context, projectID, clipID string) (*EditResult, error) {
	return s.edit(ctx, projectID, func(e *editor.Editor, res *EditResult) error {
		before := e.Timeline().SelectedClipID()
		if !e.Timeline().Select(clipID) {
			return apperr.ErrNotFound
		}
		res.ClipID, res.Changed = clipID, before != clipID
		return nil
	})
}

// Undo restores the previous history entry. Changed is false when there was
// nothing to undo.
func (s *Service) Undo(ctx context.Context, projectID string) (*EditResult, error) {
	return s.edit(ctx, projectID, func(e *editor.Editor, res *EditResult) error {
		res.Changed = e.Undo()
		return nil
	})
}

// Redo restores the next history entry.
func (s *Service) Redo(ctx context.Context, projectID string) (*EditResult, error) {
	return s.edit(ctx, projectID, func(e *editor.Editor, res *EditResult) error {
		res.Changed = e.Redo()
		return nil
	})
}

// Play starts playback.
func (s *Service) Play(ctx context.Context, projectID string) (*EditResult, error) {
	return s.edit(ctx, projectID, func(e *editor.Editor, res *EditResult) error {
		res.Changed = e.Play()
		return nil
	})
}

// Pause stops playback.
func (s *Service) Pause(ctx context.Context, projectID string) (*EditResult, error) {
	return s.edit(ctx, projectID, func(e *editor.Editor, res *EditResult) error {
		res.Changed = e.Pause()
		return nil
	})
}
