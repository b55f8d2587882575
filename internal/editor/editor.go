// Package editor binds a timeline to its undo history, playback and
// persistence, and serializes access to it through a per-project session.
package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/cutline/internal/history"
	"github.com/starford/cutline/internal/models"
	"github.com/starford/cutline/internal/timeline"
)

// Persister loads and stores project timelines.
type Persister interface {
	// LoadTimeline returns the stored snapshot, or nil when the project has
	// none yet.
	LoadTimeline(ctx context.Context, projectID string) (*models.Snapshot, error)
	SaveTimeline(ctx context.Context, projectID string, s models.Snapshot) error
}

// State is a point-in-time view of an editor.
type State struct {
	ProjectID      string         `json:"projectId"`
	Tracks         []models.Track `json:"tracks"`
	Duration       float64        `json:"duration"`
	Playhead       float64        `json:"playhead"`
	Zoom           float64        `json:"zoom"`
	SelectedClipID string         `json:"selectedClipId,omitempty"`
	ActiveClipID   string         `json:"activeClipId,omitempty"`
	Playing        bool           `json:"playing"`
	Dirty          bool           `json:"dirty"`
	History        HistoryState   `json:"history"`
}

// Editor is the single-threaded core of a session. Structural timeline edits
// schedule a debounced history capture; undo and redo restore snapshots
// without recording them. An Editor is not safe for concurrent use; Session
// drives it from one goroutine.
type Editor struct {
	projectID string
	timeline  *timeline.Timeline
	history   *history.Manager
	debounce  *history.Debouncer
	player    *Player
	persister Persister
	notifier  Notifier
	logger    *slog.Logger

	dirty       bool
	unsubscribe func()
}

// NewEditor returns an editor with an empty timeline. Call Load to populate it
// from the persister.
func NewEditor(projectID string, p Persister, opts ...Option) *Editor {
	o := buildOptions(opts)

	var tlOpts []timeline.Option
	if o.newID != nil {
		tlOpts = append(tlOpts, timeline.WithIDGenerator(o.newID))
	}
	e := &Editor{
		projectID: projectID,
		timeline:  timeline.New(tlOpts...),
		history:   history.New(o.config.HistoryCapacity),
		debounce:  history.NewDebouncer(o.clock, o.config.Debounce),
		player:    NewPlayer(o.clock, o.config.PlaybackInterval, o.config.PlaybackStep),
		persister: p,
		notifier:  o.notifier,
		logger:    o.logger.With(slog.String("project_id", projectID)),
	}
	e.unsubscribe = e.timeline.Subscribe(e.onChange)
	return e
}

// ProjectID returns the project the editor is bound to.
func (e *Editor) ProjectID() string { return e.projectID }

// Timeline returns the live timeline. Edits made through it are recorded in
// history after the debounce period.
func (e *Editor) Timeline() *timeline.Timeline { return e.timeline }

// Dirty reports whether structural edits were made since the last load or
// save.
func (e *Editor) Dirty() bool { return e.dirty }

// Playing reports whether playback runs.
func (e *Editor) Playing() bool { return e.player.Playing() }

func (e *Editor) onChange(c timeline.Change) {
	if c.Kind.Structural() {
		e.debounce.Trigger()
		e.dirty = true
	}
	if c.Kind.TracksChanged() || c.Kind == timeline.KindPlayhead {
		e.timeline.SyncActive()
	}
	e.emit(EventTimelineUpdated, TimelineUpdate{
		Change:   c,
		Duration: e.timeline.Duration(),
		Playhead: e.timeline.Playhead(),
	})
}

// Load replaces the timeline with the stored snapshot and resets history to a
// single base entry. On error nothing changes.
func (e *Editor) Load(ctx context.Context) error {
	snap, err := e.persister.LoadTimeline(ctx, e.projectID)
	if err != nil {
		return fmt.Errorf("editor: load %s: %w", e.projectID, err)
	}
	e.debounce.Cancel()
	e.stopPlayback()
	e.timeline.InitializeFrom(snap)
	e.history.Clear()
	e.history.Save(e.timeline.ExportSnapshot())
	e.dirty = false
	e.emitHistory()
	return nil
}

// Save exports the timeline and hands it to the persister. It does not touch
// history or the timeline, whether or not it fails.
func (e *Editor) Save(ctx context.Context) (models.Snapshot, error) {
	snap := e.timeline.ExportSnapshot()
	if err := e.persister.SaveTimeline(ctx, e.projectID, snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("editor: save %s: %w", e.projectID, err)
	}
	e.dirty = false
	e.logger.Info("timeline saved", slog.Int("clips", snap.ClipCount()), slog.Float64("duration", snap.Duration))
	return snap, nil
}

// Undo restores the previous history entry. A pending capture is flushed
// first so the latest edit can be redone.
func (e *Editor) Undo() bool {
	e.Flush()
	snap, ok := e.history.Undo()
	if !ok {
		return false
	}
	e.timeline.Restore(snap)
	e.dirty = true
	e.emitHistory()
	return true
}

// Redo restores the next history entry.
func (e *Editor) Redo() bool {
	e.Flush()
	snap, ok := e.history.Redo()
	if !ok {
		return false
	}
	e.timeline.Restore(snap)
	e.dirty = true
	e.emitHistory()
	return true
}

// Flush records a pending capture immediately. It reports whether one was
// pending.
func (e *Editor) Flush() bool {
	if !e.debounce.Cancel() {
		return false
	}
	e.capture()
	return true
}

// HandleDebounce records the capture after the debounce channel delivered.
func (e *Editor) HandleDebounce() {
	e.debounce.Fired()
	e.capture()
}

func (e *Editor) capture() {
	e.history.Save(e.timeline.ExportSnapshot())
	e.logger.Debug("history captured", slog.Int("index", e.history.Index()))
	e.emitHistory()
}

// Play starts playback from the playhead. It is a no-op when already playing
// or when the playhead sits at the end of the timeline.
func (e *Editor) Play() bool {
	if e.player.Playing() || e.timeline.Playhead() >= e.timeline.Duration() {
		return false
	}
	e.player.Start()
	e.emit(EventPlaybackStarted, e.playback())
	return true
}

// Pause stops playback. Pausing a stopped player is a no-op.
func (e *Editor) Pause() bool {
	return e.stopPlayback()
}

func (e *Editor) stopPlayback() bool {
	if !e.player.Stop() {
		return false
	}
	e.emit(EventPlaybackStopped, e.playback())
	return true
}

// HandleTick advances the playhead by one step and stops playback once the
// end is reached.
func (e *Editor) HandleTick() {
	if !e.player.Playing() {
		return
	}
	e.timeline.SetPlayhead(e.timeline.Playhead() + e.player.Step())
	if e.timeline.Playhead() >= e.timeline.Duration() {
		e.stopPlayback()
	}
}

// History returns the undo/redo availability.
func (e *Editor) History() HistoryState {
	return HistoryState{
		CanUndo: e.history.CanUndo(),
		CanRedo: e.history.CanRedo(),
		Index:   e.history.Index(),
		Len:     e.history.Len(),
	}
}

// State returns a copy of the editor state.
func (e *Editor) State() State {
	return State{
		ProjectID:      e.projectID,
		Tracks:         e.timeline.Tracks(),
		Duration:       e.timeline.Duration(),
		Playhead:       e.timeline.Playhead(),
		Zoom:           e.timeline.Zoom(),
		SelectedClipID: e.timeline.SelectedClipID(),
		ActiveClipID:   e.timeline.ActiveClipID(),
		Playing:        e.player.Playing(),
		Dirty:          e.dirty,
		History:        e.History(),
	}
}

// Close stops playback and drops a pending capture.
func (e *Editor) Close() {
	e.debounce.Cancel()
	e.player.Stop()
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
}

func (e *Editor) playback() PlaybackState {
	return PlaybackState{Playing: e.player.Playing(), Playhead: e.timeline.Playhead()}
}

func (e *Editor) emitHistory() {
	e.emit(EventHistoryUpdated, e.History())
}

func (e *Editor) emit(typ string, data any) {
	if e.notifier == nil {
		return
	}
	e.notifier(Event{ProjectID: e.projectID, Type: typ, Data: data})
}
