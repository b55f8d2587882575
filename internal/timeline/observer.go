package timeline

// ChangeKind identifies what a Timeline mutation touched.
type ChangeKind string

const (
	KindTrackAdded   ChangeKind = "track.added"
	KindTrackRemoved ChangeKind = "track.removed"
	KindClipAdded    ChangeKind = "clip.added"
	KindClipUpdated  ChangeKind = "clip.updated"
	KindClipRemoved  ChangeKind = "clip.removed"
	KindClipSplit    ChangeKind = "clip.split"
	KindClipMoved    ChangeKind = "clip.moved"
	KindInitialized  ChangeKind = "initialized"
	KindRestored     ChangeKind = "restored"
	KindPlayhead     ChangeKind = "playhead"
	KindZoom         ChangeKind = "zoom"
	KindSelection    ChangeKind = "selection"
	KindActive       ChangeKind = "active"
)

// Structural reports whether the change edited tracks or clips. Only
// structural changes are recorded in history; initialization and restores
// replace state wholesale and are not edits.
func (k ChangeKind) Structural() bool {
	switch k {
	case KindTrackAdded, KindTrackRemoved, KindClipAdded, KindClipUpdated,
		KindClipRemoved, KindClipSplit, KindClipMoved:
		return true
	}
	return false
}

// TracksChanged reports whether the track list may differ after the change.
func (k ChangeKind) TracksChanged() bool {
	return k.Structural() || k == KindInitialized || k == KindRestored
}

// Change describes one completed mutation.
type Change struct {
	Kind    ChangeKind `json:"kind"`
	TrackID string     `json:"trackId,omitempty"`
	ClipID  string     `json:"clipId,omitempty"`
}

// Listener is called synchronously after each mutation, once the timeline is
// consistent again.
type Listener func(Change)

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers l and returns a function that removes it. Calling the
// returned function more than once is a no-op.
func (t *Timeline) Subscribe(l Listener) func() {
	id := t.nextSub
	t.nextSub++
	t.listeners = append(t.listeners, subscription{id: id, fn: l})
	return func() {
		for i, s := range t.listeners {
			if s.id == id {
				t.listeners = append(t.listeners[:i:i], t.listeners[i+1:]...)
				return
			}
		}
	}
}

func (t *Timeline) notify(c Change) {
	for _, s := range t.listeners {
		s.fn(c)
	}
}
