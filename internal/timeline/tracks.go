package timeline

import (
	"fmt"

	"github.com/starford/cutline/internal/models"
)

// TrackSpec describes a track to add. Zero fields are derived.
type TrackSpec struct {
	Type models.TrackType
	Name string
}

var trackLabels = map[models.TrackType]string{
	models.TrackBackground: "Background",
	models.TrackVideo:      "Video Track",
	models.TrackAudio:      "Audio Track",
}

// NextTrackType returns the type the fill policy picks for an untyped track:
// the background slot first, then a single video slot, then audio.
func (t *Timeline) NextTrackType() models.TrackType {
	switch {
	case t.countType(models.TrackBackground) == 0:
		return models.TrackBackground
	case t.countType(models.TrackVideo) == 0:
		return models.TrackVideo
	default:
		return models.TrackAudio
	}
}

// AddTrack appends a track and returns a copy of it. An empty Type follows the
// fill policy; an empty Name is numbered per type ("Audio Track 2").
// ok is false when Type is set but unknown.
func (t *Timeline) AddTrack(spec TrackSpec) (models.Track, bool) {
	typ := spec.Type
	if typ == "" {
		typ = t.NextTrackType()
	}
	if !typ.Valid() {
		return models.Track{}, false
	}
	name := spec.Name
	if name == "" {
		name = fmt.Sprintf("%s %d", trackLabels[typ], t.countType(typ)+1)
	}
	tr := models.Track{
		ID:    t.newID(),
		Type:  typ,
		Name:  name,
		Clips: []models.Clip{},
	}
	t.tracks = append(t.tracks, tr)
	t.notify(Change{Kind: KindTrackAdded, TrackID: tr.ID})
	return tr.Clone(), true
}

// RemoveTrack deletes a track and every clip it owns. Unknown ids are a no-op.
func (t *Timeline) RemoveTrack(id string) bool {
	i := t.trackIndex(id)
	if i < 0 {
		return false
	}
	t.tracks = append(t.tracks[:i:i], t.tracks[i+1:]...)
	t.recompute(true)
	t.dropDanglingRefs()
	t.notify(Change{Kind: KindTrackRemoved, TrackID: id})
	return true
}

func (t *Timeline) countType(typ models.TrackType) int {
	n := 0
	for _, tr := range t.tracks {
		if tr.Type == typ {
			n++
		}
	}
	return n
}
