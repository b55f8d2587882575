// Package timeline implements the in-memory track/clip model of an editing
// project together with playhead, zoom and selection state.
//
// A Timeline is not safe for concurrent use. Callers serialize access; the
// editor package does so with a per-project event loop.
package timeline

import (
	"github.com/google/uuid"

	"github.com/starford/cutline/internal/interval"
	"github.com/starford/cutline/internal/models"
)

// Zoom bounds and clip defaults.
const (
	MinZoom           = 0.1
	MaxZoom           = 10
	DefaultClipLength = 10.0
)

// Timeline is the aggregate of tracks, derived duration and transient view state.
type Timeline struct {
	tracks   []models.Track
	duration float64
	playhead float64
	zoom     float64

	selectedClipID string
	activeClipID   string

	newID     func() string
	listeners []subscription
	nextSub   int
}

// Option configures a Timeline.
type Option func(*Timeline)

// WithIDGenerator overrides how track and clip ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(t *Timeline) {
		if fn != nil {
			t.newID = fn
		}
	}
}

// New returns an empty timeline at zoom 1.
func New(opts ...Option) *Timeline {
	t := &Timeline{
		tracks: []models.Track{},
		zoom:   1,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tracks returns a deep copy of the track list in display order.
func (t *Timeline) Tracks() []models.Track {
	out := make([]models.Track, len(t.tracks))
	for i, tr := range t.tracks {
		out[i] = tr.Clone()
	}
	return out
}

// Track returns a copy of the track with the given id.
func (t *Timeline) Track(id string) (models.Track, bool) {
	if i := t.trackIndex(id); i >= 0 {
		return t.tracks[i].Clone(), true
	}
	return models.Track{}, false
}

// Clip returns a copy of the clip with the given id and the id of its track.
func (t *Timeline) Clip(id string) (string, models.Clip, bool) {
	ti, ci := t.clipIndex(id)
	if ti < 0 {
		return "", models.Clip{}, false
	}
	return t.tracks[ti].ID, t.tracks[ti].Clips[ci].Clone(), true
}

// Duration returns the timeline length in seconds.
func (t *Timeline) Duration() float64 { return t.duration }

// Playhead returns the playhead position in seconds.
func (t *Timeline) Playhead() float64 { return t.playhead }

// Zoom returns the display zoom factor.
func (t *Timeline) Zoom() float64 { return t.zoom }

// SelectedClipID returns the selected clip id, or "" when nothing is selected.
func (t *Timeline) SelectedClipID() string { return t.selectedClipID }

// ActiveClipID returns the clip under the playhead as last resolved, or "".
func (t *Timeline) ActiveClipID() string { return t.activeClipID }

// SetPlayhead moves the playhead, clamped to [0, duration].
func (t *Timeline) SetPlayhead(pos float64) {
	pos = interval.Clamp(pos, 0, t.duration)
	if pos == t.playhead {
		return
	}
	t.playhead = pos
	t.notify(Change{Kind: KindPlayhead})
}

// SetZoom sets the zoom factor, clamped to [MinZoom, MaxZoom].
func (t *Timeline) SetZoom(factor float64) {
	factor = interval.Clamp(factor, MinZoom, MaxZoom)
	if factor == t.zoom {
		return
	}
	t.zoom = factor
	t.notify(Change{Kind: KindZoom})
}

// ExportSnapshot returns an independent copy of the tracks and duration.
func (t *Timeline) ExportSnapshot() models.Snapshot {
	return models.Snapshot{Tracks: t.Tracks(), Duration: t.duration}
}

// InitializeFrom replaces tracks and duration with s (or an empty timeline when
// s is nil) and rewinds the playhead to 0. Selection survives only when the
// selected clip still exists.
func (t *Timeline) InitializeFrom(s *models.Snapshot) {
	t.replace(s)
	t.playhead = 0
	t.notify(Change{Kind: KindInitialized})
}

// Restore replaces tracks and duration with s, keeping the playhead where it
// was as far as the restored duration allows. Used by undo and redo.
func (t *Timeline) Restore(s models.Snapshot) {
	t.replace(&s)
	t.playhead = interval.Clamp(t.playhead, 0, t.duration)
	t.notify(Change{Kind: KindRestored})
}

func (t *Timeline) replace(s *models.Snapshot) {
	if s == nil {
		t.tracks = []models.Track{}
		t.duration = 0
	} else {
		cp := s.Clone()
		t.tracks = cp.Tracks
		t.duration = max(cp.Duration, models.MaxEnd(cp.Tracks), 0)
	}
	t.dropDanglingRefs()
}

// recompute refreshes duration after a structural change. With floor set the
// duration never drops below its previous value.
func (t *Timeline) recompute(floor bool) {
	end := models.MaxEnd(t.tracks)
	if floor {
		end = max(end, t.duration)
	}
	t.duration = end
	t.playhead = interval.Clamp(t.playhead, 0, t.duration)
}

func (t *Timeline) dropDanglingRefs() {
	if t.selectedClipID != "" {
		if ti, _ := t.clipIndex(t.selectedClipID); ti < 0 {
			t.selectedClipID = ""
		}
	}
	if t.activeClipID != "" {
		if ti, _ := t.clipIndex(t.activeClipID); ti < 0 {
			t.activeClipID = ""
		}
	}
}

func (t *Timeline) trackIndex(id string) int {
	for i := range t.tracks {
		if t.tracks[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Timeline) clipIndex(id string) (int, int) {
	if id == "" {
		return -1, -1
	}
	for ti := range t.tracks {
		for ci := range t.tracks[ti].Clips {
			if t.tracks[ti].Clips[ci].ID == id {
				return ti, ci
			}
		}
	}
	return -1, -1
}
