package projectservice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/starford/cutline/internal/apperr"
	"github.com/starford/cutline/internal/editor"
	"github.com/starford/cutline/internal/models"
	"github.com/starford/cutline/internal/parser"
	"github.com/starford/cutline/internal/testutil"
	"github.com/starford/cutline/internal/timeline"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) PublishProjectEvent(kind, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, kind+":"+id)
}

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func f(v float64) *float64 { return &v }

func testService(t *testing.T) (*Service, *recordingPublisher) {
	t.Helper()
	db := testutil.TestDB(t)
	_, lib := testutil.TestLibrary(t)
	reg := editor.NewRegistry(db, editor.WithIDGenerator(seqIDs("e")))
	t.Cleanup(reg.CloseAll)
	pub := &recordingPublisher{}
	svc := NewService(db, reg,
		WithLibrary(lib),
		WithPublisher(pub),
		WithIDGenerator(seqIDs("p")),
	)
	return svc, pub
}

func TestProjectLifecycle(t *testing.T) {
	svc, pub := testService(t)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, "Demo", nil)
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if p.ID != "p1" {
		t.Errorf("id = %q", p.ID)
	}

	list, total, err := svc.ListProjects(ctx, 10, 0)
	if err != nil || total != 1 || len(list) != 1 {
		t.Fatalf("ListProjects = %v, %d, %v", list, total, err)
	}

	if _, err := svc.UpdateProject(ctx, p.ID, "Renamed", nil, "stale"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale update err = %v", err)
	}
	up, err := svc.UpdateProject(ctx, p.ID, "Renamed", nil, p.Checksum)
	if err != nil || up.Name != "Renamed" {
		t.Fatalf("UpdateProject = %+v, %v", up, err)
	}

	if err := svc.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := svc.GetProject(ctx, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("deleted project err = %v", err)
	}
	want := []string{"created:p1", "updated:p1", "deleted:p1"}
	if fmt.Sprint(pub.events) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", pub.events, want)
	}
}

func TestEditAndSave(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	p, _ := svc.CreateProject(ctx, "Demo", nil)

	tr, err := svc.AddTrack(ctx, p.ID, timeline.TrackSpec{})
	if err != nil {
		t.Fatalf("AddTrack: %v", err)
	}
	if tr.State.Tracks[0].Type != models.TrackBackground {
		t.Errorf("first track type = %s", tr.State.Tracks[0].Type)
	}
	res, err := svc.AddClip(ctx, p.ID, tr.TrackID, timeline.ClipSpec{StartTime: f(0), EndTime: f(10)})
	if err != nil {
		t.Fatalf("AddClip: %v", err)
	}
	clipID := res.ClipID

	if _, err := svc.SetPlayhead(ctx, p.ID, 4); err != nil {
		t.Fatalf("SetPlayhead: %v", err)
	}
	split, err := svc.SplitClip(ctx, p.ID, clipID, nil)
	if err != nil {
		t.Fatalf("SplitClip: %v", err)
	}
	clips := split.State.Tracks[0].Clips
	if len(clips) != 2 || clips[0].EndTime != 4 || clips[1].StartTime != 4 || clips[1].ID != split.ClipID {
		t.Errorf("split clips = %+v", clips)
	}

	saved, err := svc.SaveTimeline(ctx, p.ID, "")
	if err != nil {
		t.Fatalf("SaveTimeline: %v", err)
	}
	if saved.Timeline == nil || saved.Timeline.ClipCount() != 2 {
		t.Errorf("saved timeline = %+v", saved.Timeline)
	}
	if _, err := svc.SaveTimeline(ctx, p.ID, p.Checksum); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("save with stale checksum err = %v", err)
	}
	if _, err := svc.SaveTimeline(ctx, p.ID, saved.Checksum); err != nil {
		t.Errorf("save with current checksum: %v", err)
	}
}

func TestEditErrors(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	p, _ := svc.CreateProject(ctx, "Demo", nil)
	tr, _ := svc.AddTrack(ctx, p.ID, timeline.TrackSpec{Type: models.TrackVideo})
	c, _ := svc.AddClip(ctx, p.ID, tr.TrackID, timeline.ClipSpec{StartTime: f(0), EndTime: f(5)})

	cases := []struct {
		name string
		run  func() error
		want error
	}{
		{"unknown project", func() error { _, err := svc.AddTrack(ctx, "ghost", timeline.TrackSpec{}); return err }, apperr.ErrNotFound},
		{"bad track type", func() error {
			_, err := svc.AddTrack(ctx, p.ID, timeline.TrackSpec{Type: "subtitle"})
			return err
		}, apperr.ErrInvalid},
		{"unknown track", func() error { _, err := svc.AddClip(ctx, p.ID, "nope", timeline.ClipSpec{}); return err }, apperr.ErrNotFound},
		{"empty range", func() error {
			_, err := svc.AddClip(ctx, p.ID, tr.TrackID, timeline.ClipSpec{StartTime: f(3), EndTime: f(3)})
			return err
		}, apperr.ErrInvalidRange},
		{"split on boundary", func() error { _, err := svc.SplitClip(ctx, p.ID, c.ClipID, f(5)); return err }, apperr.ErrInvalidRange},
		{"update to negative", func() error {
			_, err := svc.UpdateClip(ctx, p.ID, c.ClipID, timeline.ClipPatch{StartTime: f(-1)})
			return err
		}, apperr.ErrInvalidRange},
		{"unknown clip", func() error { _, err := svc.RemoveClip(ctx, p.ID, "nope"); return err }, apperr.ErrNotFound},
		{"unknown selection", func() error { _, err := svc.Select(ctx, p.ID, "nope"); return err }, apperr.ErrNotFound},
		{"unknown track removal", func() error { _, err := svc.RemoveTrack(ctx, p.ID, "nope"); return err }, apperr.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestUndoRedoThroughService(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	p, _ := svc.CreateProject(ctx, "Demo", nil)
	tr, _ := svc.AddTrack(ctx, p.ID, timeline.TrackSpec{})

	undone, err := svc.Undo(ctx, p.ID)
	if err != nil || !undone.Changed || len(undone.State.Tracks) != 0 {
		t.Fatalf("Undo = %+v, %v", undone, err)
	}
	redone, err := svc.Redo(ctx, p.ID)
	if err != nil || !redone.Changed || redone.State.Tracks[0].ID != tr.TrackID {
		t.Fatalf("Redo = %+v, %v", redone, err)
	}
	again, _ := svc.Redo(ctx, p.ID)
	if again.Changed {
		t.Error("redo past the newest entry should not change anything")
	}
}

func TestUpdateProjectReloadsOpenSession(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	p, _ := svc.CreateProject(ctx, "Demo", nil)
	_, _ = svc.AddTrack(ctx, p.ID, timeline.TrackSpec{})

	snap := models.Snapshot{Duration: 7, Tracks: []models.Track{}}
	if _, err := svc.UpdateProject(ctx, p.ID, "Demo", &snap, ""); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	st, err := svc.Timeline(ctx, p.ID)
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if st.State.Duration != 7 || len(st.State.Tracks) != 0 {
		t.Errorf("session not reloaded: %+v", st.State)
	}
}

func TestExportImport(t *testing.T) {
	svc, pub := testService(t)
	ctx := context.Background()
	snap := models.Snapshot{Duration: 5, Tracks: []models.Track{{
		ID: "t1", Type: models.TrackVideo, Name: "Video Track 1",
		Clips: []models.Clip{{ID: "c1", StartTime: 0, EndTime: 5}},
	}}}
	p, _ := svc.CreateProject(ctx, "Source", &snap)

	path, err := svc.Export(ctx, p.ID, parser.FormatJSON)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := svc.lib.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	imported, err := svc.Import(ctx, "copy", data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if imported.Name != "Source" || imported.Timeline.ClipCount() != 1 {
		t.Errorf("imported = %+v", imported)
	}
	if _, err := svc.Import(ctx, "bad", []byte(`{"tracks": [{"type": "x"}]}`)); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("bad import err = %v", err)
	}
	found := false
	for _, e := range pub.events {
		if e == "created:copy" {
			found = true
		}
	}
	if !found {
		t.Errorf("events = %v", pub.events)
	}
}

func TestNotes(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	p, _ := svc.CreateProject(ctx, "Demo", nil)

	n, err := svc.CreateNote(ctx, p.ID, map[string]any{"text": "trim intro"})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	notes, _ := svc.ListNotes(ctx, p.ID)
	if len(notes) != 1 || notes[0].ID != n.ID {
		t.Errorf("notes = %+v", notes)
	}
	if _, err := svc.UpdateNote(ctx, n.ID, map[string]any{"text": "done"}); err != nil {
		t.Errorf("UpdateNote: %v", err)
	}
	if err := svc.DeleteNote(ctx, n.ID); err != nil {
		t.Errorf("DeleteNote: %v", err)
	}
	if _, err := svc.CreateNote(ctx, "ghost", nil); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("orphan note err = %v", err)
	}
}
