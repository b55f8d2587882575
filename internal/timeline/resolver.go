package timeline

import (
	"github.com/starford/cutline/internal/interval"
	"github.com/starford/cutline/internal/models"
)

// Hit pairs a clip with the track that owns it.
type Hit struct {
	Track models.Track
	Clip  models.Clip
}

// ClipAtPlayhead returns the first clip, scanning tracks in display order,
// whose [start, end) range contains the playhead.
func (t *Timeline) ClipAtPlayhead() (Hit, bool) {
	return t.ClipAt(t.playhead)
}

// ClipAt returns the first clip in track order that contains at.
func (t *Timeline) ClipAt(at float64) (Hit, bool) {
	for _, tr := range t.tracks {
		for _, c := range tr.Clips {
			if interval.Contains(c.StartTime, c.EndTime, at) {
				return Hit{Track: tr.Clone(), Clip: c.Clone()}, true
			}
		}
	}
	return Hit{}, false
}

// ClipsAt returns every clip that contains at, in track order.
func (t *Timeline) ClipsAt(at float64) []Hit {
	var out []Hit
	for _, tr := range t.tracks {
		for _, c := range tr.Clips {
			if interval.Contains(c.StartTime, c.EndTime, at) {
				out = append(out, Hit{Track: tr.Clone(), Clip: c.Clone()})
			}
		}
	}
	return out
}

// ClipsInRange returns every clip overlapping [start, end), in track order.
func (t *Timeline) ClipsInRange(start, end float64) []Hit {
	var out []Hit
	for _, tr := range t.tracks {
		for _, c := range tr.Clips {
			if interval.Overlaps(c.StartTime, c.EndTime, start, end) {
				out = append(out, Hit{Track: tr.Clone(), Clip: c.Clone()})
			}
		}
	}
	return out
}

// Select marks a clip as selected; "" clears the selection. Unknown ids are a
// no-op.
func (t *Timeline) Select(clipID string) bool {
	if clipID != "" {
		if ti, _ := t.clipIndex(clipID); ti < 0 {
			return false
		}
	}
	if t.selectedClipID != clipID {
		t.selectedClipID = clipID
		t.notify(Change{Kind: KindSelection, ClipID: clipID})
	}
	return true
}

// SetActive records the clip under the playhead; "" clears it. Unknown ids are
// a no-op.
func (t *Timeline) SetActive(clipID string) bool {
	if clipID != "" {
		if ti, _ := t.clipIndex(clipID); ti < 0 {
			return false
		}
	}
	if t.activeClipID != clipID {
		t.activeClipID = clipID
		t.notify(Change{Kind: KindActive, ClipID: clipID})
	}
	return true
}

// SyncActive re-resolves the clip under the playhead and stores it as the
// active clip. Returns the active clip id, or "".
func (t *Timeline) SyncActive() string {
	id := ""
	if hit, ok := t.ClipAtPlayhead(); ok {
		id = hit.Clip.ID
	}
	t.SetActive(id)
	return id
}
