package editor

import "github.com/starford/cutline/internal/timeline"

// Event types emitted by an editor.
const (
	EventTimelineUpdated = "timeline.updated"
	EventHistoryUpdated  = "history.updated"
	EventPlaybackStarted = "playback.started"
	EventPlaybackStopped = "playback.stopped"
)

// Event is a change notification for one project.
type Event struct {
	ProjectID string `json:"projectId"`
	Type      string `json:"type"`
	Data      any    `json:"data"`
}

// Notifier receives editor events. It is called from the session loop and
// must not block or call back into the session.
type Notifier func(Event)

// TimelineUpdate is the payload of EventTimelineUpdated.
type TimelineUpdate struct {
	timeline.Change
	Duration float64 `json:"duration"`
	Playhead float64 `json:"playhead"`
}

// HistoryState is the payload of EventHistoryUpdated.
type HistoryState struct {
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
	Index   int  `json:"index"`
	Len     int  `json:"len"`
}

// PlaybackState is the payload of the playback events.
type PlaybackState struct {
	Playing  bool    `json:"playing"`
	Playhead float64 `json:"playhead"`
}
