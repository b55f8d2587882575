package timeline

import (
	"math"
	"slices"

	"github.com/starford/cutline/internal/interval"
	"github.com/starford/cutline/internal/models"
)

// ClipSpec describes a clip to add. Nil bounds take defaults: start 0 and
// end start+DefaultClipLength.
type ClipSpec struct {
	StartTime *float64
	EndTime   *float64
	Payload   models.Payload
}

// ClipPatch holds the fields to merge into an existing clip. Payload keys are
// merged over the clip's existing payload.
type ClipPatch struct {
	StartTime *float64
	EndTime   *float64
	Payload   models.Payload
}

// AddClip inserts a clip into a track, keeping the track ordered by start time
// (ties keep insertion order). ok is false when the track does not exist or
// the bounds do not form a non-empty range starting at or after 0.
func (t *Timeline) AddClip(trackID string, spec ClipSpec) (models.Clip, bool) {
	ti := t.trackIndex(trackID)
	if ti < 0 {
		return models.Clip{}, false
	}
	start := 0.0
	if spec.StartTime != nil {
		start = *spec.StartTime
	}
	end := start + DefaultClipLength
	if spec.EndTime != nil {
		end = *spec.EndTime
	}
	if !interval.Valid(start, end) {
		return models.Clip{}, false
	}
	payload := spec.Payload.Clone()
	if payload == nil {
		payload = models.Payload{}
	}
	c := models.Clip{ID: t.newID(), StartTime: start, EndTime: end, Payload: payload}

	tr := &t.tracks[ti]
	at := slices.IndexFunc(tr.Clips, func(x models.Clip) bool { return x.StartTime > start })
	if at < 0 {
		at = len(tr.Clips)
	}
	tr.Clips = slices.Insert(tr.Clips, at, c)

	t.recompute(true)
	t.notify(Change{Kind: KindClipAdded, TrackID: trackID, ClipID: c.ID})
	return c.Clone(), true
}

// UpdateClip merges patch into the clip with the given id, wherever it lives.
// Unknown ids and patches that would leave an empty or negative range are a
// no-op. The track is not re-sorted.
func (t *Timeline) UpdateClip(id string, patch ClipPatch) bool {
	ti, ci := t.clipIndex(id)
	if ti < 0 {
		return false
	}
	c := t.tracks[ti].Clips[ci]
	if patch.StartTime != nil {
		c.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		c.EndTime = *patch.EndTime
	}
	if !interval.Valid(c.StartTime, c.EndTime) {
		return false
	}
	if patch.Payload != nil {
		c.Payload = c.Payload.Merge(patch.Payload)
	}
	t.tracks[ti].Clips[ci] = c

	t.recompute(true)
	t.notify(Change{Kind: KindClipUpdated, TrackID: t.tracks[ti].ID, ClipID: id})
	return true
}

// RemoveClip deletes a clip. Unlike the other edits, duration is recomputed
// from the remaining clips and may shrink.
func (t *Timeline) RemoveClip(id string) bool {
	ti, ci := t.clipIndex(id)
	if ti < 0 {
		return false
	}
	tr := &t.tracks[ti]
	tr.Clips = slices.Delete(tr.Clips, ci, ci+1)

	t.recompute(false)
	t.dropDanglingRefs()
	t.notify(Change{Kind: KindClipRemoved, TrackID: tr.ID, ClipID: id})
	return true
}

// SplitClip cuts a clip in two at the given time. The clip keeps
// [start, at) and a new clip with a fresh id and a copy of the payload covers
// [at, end), placed right after it. Split points on or outside the clip bounds
// are a no-op. Returns the new right-hand clip.
func (t *Timeline) SplitClip(id string, at float64) (models.Clip, bool) {
	ti, ci := t.clipIndex(id)
	if ti < 0 {
		return models.Clip{}, false
	}
	tr := &t.tracks[ti]
	orig := tr.Clips[ci]
	if !interval.Strictly(orig.StartTime, orig.EndTime, at) {
		return models.Clip{}, false
	}

	right := orig.Clone()
	right.ID = t.newID()
	right.StartTime = at

	tr.Clips[ci].EndTime = at
	tr.Clips = slices.Insert(tr.Clips, ci+1, right)

	t.recompute(true)
	t.notify(Change{Kind: KindClipSplit, TrackID: tr.ID, ClipID: id})
	return right.Clone(), true
}

// SplitAtPlayhead splits a clip at the current playhead position.
func (t *Timeline) SplitAtPlayhead(id string) (models.Clip, bool) {
	return t.SplitClip(id, t.playhead)
}

// MoveClip shifts a clip so it starts at newStart (clamped to 0), preserving
// its length. The track is not re-sorted, so iteration order can drift from
// time order after a move.
func (t *Timeline) MoveClip(id string, newStart float64) bool {
	ti, ci := t.clipIndex(id)
	if ti < 0 || math.IsNaN(newStart) || math.IsInf(newStart, 0) {
		return false
	}
	c := &t.tracks[ti].Clips[ci]
	length := c.Length()
	start := max(newStart, 0)
	c.StartTime = start
	c.EndTime = start + length

	t.recompute(true)
	t.notify(Change{Kind: KindClipMoved, TrackID: t.tracks[ti].ID, ClipID: id})
	return true
}
