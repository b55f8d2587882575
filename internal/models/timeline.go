// Package models defines the domain types for Cutline.
package models

// TrackType is the kind of content a track carries.
type TrackType string

// Track types, in the order the add-track policy fills them.
const (
	TrackBackground TrackType = "background"
	TrackVideo      TrackType = "video"
	TrackAudio      TrackType = "audio"
)

// TrackTypes lists every valid track type.
var TrackTypes = []TrackType{TrackBackground, TrackVideo, TrackAudio}

// Valid reports whether t is one of the known track types.
func (t TrackType) Valid() bool {
	switch t {
	case TrackBackground, TrackVideo, TrackAudio:
		return true
	}
	return false
}

// Clip is a time-bounded unit of content on a track. Times are seconds.
type Clip struct {
	ID        string  `json:"id" yaml:"id"`
	StartTime float64 `json:"startTime" yaml:"startTime"`
	EndTime   float64 `json:"endTime" yaml:"endTime"`
	Payload   Payload `json:"data,omitempty" yaml:"data,omitempty"`
}

// Length returns EndTime - StartTime.
func (c Clip) Length() float64 {
	return c.EndTime - c.StartTime
}

// Clone returns a deep copy of c.
func (c Clip) Clone() Clip {
	c.Payload = c.Payload.Clone()
	return c
}

// Track is an ordered lane of clips.
type Track struct {
	ID    string    `json:"id" yaml:"id"`
	Type  TrackType `json:"type" yaml:"type"`
	Name  string    `json:"name" yaml:"name"`
	Clips []Clip    `json:"clips" yaml:"clips"`
}

// Clone returns a deep copy of t.
func (t Track) Clone() Track {
	clips := make([]Clip, len(t.Clips))
	for i, c := range t.Clips {
		clips[i] = c.Clone()
	}
	t.Clips = clips
	return t
}

// Snapshot is the persisted and history-recorded portion of a timeline.
type Snapshot struct {
	Tracks   []Track `json:"tracks" yaml:"tracks"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// Clone returns a deep copy of s; the copy shares no memory with s.
func (s Snapshot) Clone() Snapshot {
	tracks := make([]Track, len(s.Tracks))
	for i, t := range s.Tracks {
		tracks[i] = t.Clone()
	}
	return Snapshot{Tracks: tracks, Duration: s.Duration}
}

// MaxEnd returns the largest clip end time across all tracks, or 0.
func (s Snapshot) MaxEnd() float64 {
	return MaxEnd(s.Tracks)
}

// ClipCount returns the number of clips across all tracks.
func (s Snapshot) ClipCount() int {
	n := 0
	for _, t := range s.Tracks {
		n += len(t.Clips)
	}
	return n
}

// MaxEnd returns the largest clip end time in tracks, or 0 when there are no clips.
func MaxEnd(tracks []Track) float64 {
	var end float64
	for _, t := range tracks {
		for _, c := range t.Clips {
			if c.EndTime > end {
				end = c.EndTime
			}
		}
	}
	return end
}
