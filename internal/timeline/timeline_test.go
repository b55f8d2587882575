package timeline

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/starford/cutline/internal/models"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func testTimeline(t *testing.T) *Timeline {
	t.Helper()
	return New(WithIDGenerator(seqIDs()))
}

func f(v float64) *float64 { return &v }

// addClip is a test shortcut that fails the test when the clip is rejected.
func addClip(t *testing.T, tl *Timeline, trackID string, start, end float64) models.Clip {
	t.Helper()
	c, ok := tl.AddClip(trackID, ClipSpec{StartTime: f(start), EndTime: f(end)})
	if !ok {
		t.Fatalf("AddClip(%s, %v, %v) rejected", trackID, start, end)
	}
	return c
}

func clipStarts(tr models.Track) []float64 {
	out := make([]float64, len(tr.Clips))
	for i, c := range tr.Clips {
		out[i] = c.StartTime
	}
	return out
}

func TestAddTrackFillPolicy(t *testing.T) {
	tl := testTimeline(t)
	var types []models.TrackType
	var names []string
	for i := 0; i < 4; i++ {
		tr, ok := tl.AddTrack(TrackSpec{})
		if !ok {
			t.Fatal("AddTrack rejected")
		}
		types = append(types, tr.Type)
		names = append(names, tr.Name)
	}
	wantTypes := []models.TrackType{models.TrackBackground, models.TrackVideo, models.TrackAudio, models.TrackAudio}
	if !reflect.DeepEqual(types, wantTypes) {
		t.Errorf("types = %v, want %v", types, wantTypes)
	}
	wantNames := []string{"Background 1", "Video Track 1", "Audio Track 1", "Audio Track 2"}
	if !reflect.DeepEqual(names, wantNames) {
		t.Errorf("names = %v, want %v", names, wantNames)
	}
}

func TestAddTrackExplicit(t *testing.T) {
	tl := testTimeline(t)
	tr, ok := tl.AddTrack(TrackSpec{Type: models.TrackAudio, Name: "Voiceover"})
	if !ok || tr.Type != models.TrackAudio || tr.Name != "Voiceover" {
		t.Fatalf("AddTrack = %+v, %v", tr, ok)
	}
	if _, ok := tl.AddTrack(TrackSpec{Type: "subtitle"}); ok {
		t.Error("unknown type should be rejected")
	}
	if len(tl.Tracks()) != 1 {
		t.Errorf("tracks = %d, want 1", len(tl.Tracks()))
	}
	// Explicit audio does not occupy the background slot.
	if got := tl.NextTrackType(); got != models.TrackBackground {
		t.Errorf("NextTrackType = %q", got)
	}
}

func TestAddClipDefaultsAndOrdering(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{})

	c, ok := tl.AddClip(tr.ID, ClipSpec{})
	if !ok || c.StartTime != 0 || c.EndTime != 10 {
		t.Fatalf("default clip = %+v", c)
	}
	c, ok = tl.AddClip(tr.ID, ClipSpec{StartTime: f(20)})
	if !ok || c.EndTime != 30 {
		t.Fatalf("start-only clip = %+v", c)
	}
	addClip(t, tl, tr.ID, 5, 8)
	tie := addClip(t, tl, tr.ID, 5, 6)

	got, _ := tl.Track(tr.ID)
	if want := []float64{0, 5, 5, 20}; !reflect.DeepEqual(clipStarts(got), want) {
		t.Errorf("starts = %v, want %v", clipStarts(got), want)
	}
	if got.Clips[2].ID != tie.ID {
		t.Error("ties should keep insertion order")
	}
	if tl.Duration() != 30 {
		t.Errorf("duration = %v, want 30", tl.Duration())
	}
}

func TestAddClipRejectsBadInput(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{})

	if _, ok := tl.AddClip("missing", ClipSpec{}); ok {
		t.Error("unknown track should be a no-op")
	}
	if _, ok := tl.AddClip(tr.ID, ClipSpec{StartTime: f(5), EndTime: f(5)}); ok {
		t.Error("empty range should be rejected")
	}
	if _, ok := tl.AddClip(tr.ID, ClipSpec{StartTime: f(-1), EndTime: f(2)}); ok {
		t.Error("negative start should be rejected")
	}
	if got, _ := tl.Track(tr.ID); len(got.Clips) != 0 || tl.Duration() != 0 {
		t.Errorf("state changed: clips=%d duration=%v", len(got.Clips), tl.Duration())
	}
}

func TestAddClipCopiesPayload(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{})
	p := models.Payload{"name": "intro"}
	c, _ := tl.AddClip(tr.ID, ClipSpec{Payload: p})
	p["name"] = "mutated"
	c.Payload["name"] = "also mutated"

	_, stored, _ := tl.Clip(c.ID)
	if stored.Payload.Name() != "intro" {
		t.Errorf("payload name = %q, want intro", stored.Payload.Name())
	}
}

func TestUpdateClip(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{})
	c := addClip(t, tl, tr.ID, 0, 5)

	if !tl.UpdateClip(c.ID, ClipPatch{EndTime: f(12), Payload: models.Payload{"name": "b"}}) {
		t.Fatal("update rejected")
	}
	_, got, _ := tl.Clip(c.ID)
	if got.EndTime != 12 || got.Payload.Name() != "b" {
		t.Errorf("clip = %+v", got)
	}
	if tl.Duration() != 12 {
		t.Errorf("duration = %v, want 12", tl.Duration())
	}

	if tl.UpdateClip(c.ID, ClipPatch{StartTime: f(12)}) {
		t.Error("update making start == end should be a no-op")
	}
	if tl.UpdateClip("missing", ClipPatch{EndTime: f(3)}) {
		t.Error("unknown clip should be a no-op")
	}
	_, got, _ = tl.Clip(c.ID)
	if got.StartTime != 0 || got.EndTime != 12 {
		t.Errorf("rejected update leaked: %+v", got)
	}
}

// The duration policy is asymmetric: shrinking a clip through UpdateClip keeps
// the old duration while RemoveClip recomputes it from scratch. Both behaviours
// are pinned here until product decides on one rule.
func TestDurationShrinkAsymmetry(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{})
	a := addClip(t, tl, tr.ID, 0, 5)
	b := addClip(t, tl, tr.ID, 5, 20)

	tl.UpdateClip(b.ID, ClipPatch{EndTime: f(8)})
	if tl.Duration() != 20 {
		t.Errorf("after shrinking update duration = %v, want 20 (never shrinks)", tl.Duration())
	}

	tl.RemoveClip(b.ID)
	if tl.Duration() != 5 {
		t.Errorf("after remove duration = %v, want 5 (recomputed)", tl.Duration())
	}

	tl.RemoveClip(a.ID)
	if tl.Duration() != 0 {
		t.Errorf("after removing all duration = %v, want 0", tl.Duration())
	}
}

func TestRemoveClip(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{})
	c := addClip(t, tl, tr.ID, 0, 5)
	tl.Select(c.ID)
	tl.SetPlayhead(4)

	if tl.RemoveClip("missing") {
		t.Error("unknown clip should be a no-op")
	}
	if !tl.RemoveClip(c.ID) {
		t.Fatal("remove rejected")
	}
	if _, _, ok := tl.Clip(c.ID); ok {
		t.Error("clip still present")
	}
	if tl.SelectedClipID() != "" {
		t.Error("selection should be cleared when its clip is removed")
	}
	if tl.Playhead() != 0 {
		t.Errorf("playhead = %v, want clamped to 0", tl.Playhead())
	}
}

func TestRemoveTrackCascades(t *testing.T) {
	tl := testTimeline(t)
	bg, _ := tl.AddTrack(TrackSpec{})
	video, _ := tl.AddTrack(TrackSpec{})
	addClip(t, tl, bg.ID, 0, 30)
	c := addClip(t, tl, video.ID, 0, 5)

	if tl.RemoveTrack("missing") {
		t.Error("unknown track should be a no-op")
	}
	if !tl.RemoveTrack(video.ID) {
		t.Fatal("remove rejected")
	}
	if _, _, ok := tl.Clip(c.ID); ok {
		t.Error("clip of removed track should be gone")
	}
	if len(tl.Tracks()) != 1 {
		t.Errorf("tracks = %d, want 1", len(tl.Tracks()))
	}
	if tl.Duration() != 30 {
		t.Errorf("duration = %v, want 30", tl.Duration())
	}
}

func TestSplitClipPartitions(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{})
	c, _ := tl.AddClip(tr.ID, ClipSpec{StartTime: f(2), EndTime: f(10), Payload: models.Payload{"name": "shot"}})
	addClip(t, tl, tr.ID, 12, 14)

	right, ok := tl.SplitClip(c.ID, 6)
	if !ok {
		t.Fatal("split rejected")
	}
	got, _ := tl.Track(tr.ID)
	if len(got.Clips) != 3 {
		t.Fatalf("clips = %d, want 3", len(got.Clips))
	}
	left := got.Clips[0]
	if left.ID != c.ID || left.StartTime != 2 || left.EndTime != 6 {
		t.Errorf("left = %+v", left)
	}
	if got.Clips[1].ID != right.ID || right.StartTime != 6 || right.EndTime != 10 {
		t.Errorf("right = %+v", right)
	}
	if right.ID == c.ID {
		t.Error("right half needs a fresh id")
	}
	if left.Payload.Name() != "shot" || right.Payload.Name() != "shot" {
		t.Error("payload should be preserved on both halves")
	}

	// Halves must not share payload memory.
	tl.UpdateClip(right.ID, ClipPatch{Payload: models.Payload{"name": "other"}})
	_, l, _ := tl.Clip(c.ID)
	if l.Payload.Name() != "shot" {
		t.Error("halves share payload")
	}
}

func TestSplitClipBoundariesAreNoOps(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{})
	c := addClip(t, tl, tr.ID, 2, 10)
	before := tl.ExportSnapshot()

	for _, at := range []float64{2, 10, 0, 11} {
		if _, ok := tl.SplitClip(c.ID, at); ok {
			t.Errorf("split at %v should be a no-op", at)
		}
	}
	if _, ok := tl.SplitClip("missing", 5); ok {
		t.Error("unknown clip should be a no-op")
	}
	if !reflect.DeepEqual(before, tl.ExportSnapshot()) {
		t.Error("rejected split changed state")
	}
}

func TestSplitAtPlayhead(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{})
	c := addClip(t, tl, tr.ID, 0, 10)
	tl.SetPlayhead(4)

	right, ok := tl.SplitAtPlayhead(c.ID)
	if !ok || right.StartTime != 4 {
		t.Fatalf("split = %+v, %v", right, ok)
	}
}

func TestMoveClipPreservesLength(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{})
	a := addClip(t, tl, tr.ID, 0, 4)
	b := addClip(t, tl, tr.ID, 10, 13)

	for _, start := range []float64{0, 2.5, 40, -7} {
		if !tl.MoveClip(b.ID, start) {
			t.Fatalf("move to %v rejected", start)
		}
		_, got, _ := tl.Clip(b.ID)
		if got.Length() != 3 {
			t.Errorf("move to %v: length = %v, want 3", start, got.Length())
		}
		if start < 0 && got.StartTime != 0 {
			t.Errorf("negative start should clamp to 0, got %v", got.StartTime)
		}
	}
	if tl.MoveClip("missing", 1) {
		t.Error("unknown clip should be a no-op")
	}

	// Moves never re-sort: b now starts at 0 but is still second.
	got, _ := tl.Track(tr.ID)
	if got.Clips[0].ID != a.ID || got.Clips[1].ID != b.ID {
		t.Error("move should not re-sort the track")
	}
	// Moving to 40 grew the duration, and moving back did not shrink it.
	if tl.Duration() != 43 {
		t.Errorf("duration = %v, want 43", tl.Duration())
	}
}

func TestDurationTracksMaxEnd(t *testing.T) {
	tl := testTimeline(t)
	v, _ := tl.AddTrack(TrackSpec{})
	a, _ := tl.AddTrack(TrackSpec{})

	c1 := addClip(t, tl, v.ID, 0, 8)
	c2 := addClip(t, tl, a.ID, 3, 15)
	assertDurationIsMaxEnd(t, tl)

	tl.SplitClip(c2.ID, 9)
	assertDurationIsMaxEnd(t, tl)

	tl.MoveClip(c1.ID, 20)
	assertDurationIsMaxEnd(t, tl)

	tl.RemoveClip(c1.ID)
	assertDurationIsMaxEnd(t, tl)

	snap := tl.ExportSnapshot()
	for _, tr := range snap.Tracks {
		for _, c := range tr.Clips {
			tl.RemoveClip(c.ID)
		}
	}
	assertDurationIsMaxEnd(t, tl)
	if tl.Duration() != 0 {
		t.Errorf("empty timeline duration = %v", tl.Duration())
	}
}

func assertDurationIsMaxEnd(t *testing.T, tl *Timeline) {
	t.Helper()
	if want := models.MaxEnd(tl.Tracks()); tl.Duration() != want {
		t.Errorf("duration = %v, want max end %v", tl.Duration(), want)
	}
}

func TestPlayheadAndZoomClamp(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{})
	addClip(t, tl, tr.ID, 0, 10)

	tl.SetPlayhead(-3)
	if tl.Playhead() != 0 {
		t.Errorf("playhead = %v, want 0", tl.Playhead())
	}
	tl.SetPlayhead(25)
	if tl.Playhead() != 10 {
		t.Errorf("playhead = %v, want 10", tl.Playhead())
	}
	tl.SetZoom(0)
	if tl.Zoom() != MinZoom {
		t.Errorf("zoom = %v, want %v", tl.Zoom(), MinZoom)
	}
	tl.SetZoom(100)
	if tl.Zoom() != MaxZoom {
		t.Errorf("zoom = %v, want %v", tl.Zoom(), MaxZoom)
	}
}

func TestExportSnapshotIsDeepCopy(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{})
	c, _ := tl.AddClip(tr.ID, ClipSpec{Payload: models.Payload{"name": "a"}})

	snap := tl.ExportSnapshot()
	snap.Tracks[0].Clips[0].EndTime = 99
	snap.Tracks[0].Clips[0].Payload["name"] = "b"
	snap.Tracks = append(snap.Tracks, models.Track{ID: "x"})

	_, got, _ := tl.Clip(c.ID)
	if got.EndTime != 10 || got.Payload.Name() != "a" || len(tl.Tracks()) != 1 {
		t.Error("mutating an exported snapshot changed the timeline")
	}
}

func TestInitializeFromRoundTrip(t *testing.T) {
	tl := testTimeline(t)
	v, _ := tl.AddTrack(TrackSpec{})
	a, _ := tl.AddTrack(TrackSpec{})
	c := addClip(t, tl, v.ID, 0, 6)
	addClip(t, tl, a.ID, 2, 9)
	tl.MoveClip(c.ID, 1)
	tl.Select(c.ID)

	before := tl.ExportSnapshot()
	snap := tl.ExportSnapshot()
	tl.InitializeFrom(&snap)

	if !reflect.DeepEqual(before, tl.ExportSnapshot()) {
		t.Errorf("round trip changed state:\nbefore %+v\nafter  %+v", before, tl.ExportSnapshot())
	}
	if tl.SelectedClipID() != c.ID {
		t.Error("selection of a surviving clip should be kept")
	}
}

func TestInitializeFromNilResets(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{})
	addClip(t, tl, tr.ID, 0, 6)
	tl.SetPlayhead(3)

	tl.InitializeFrom(nil)
	if len(tl.Tracks()) != 0 || tl.Duration() != 0 || tl.Playhead() != 0 {
		t.Errorf("not reset: tracks=%d duration=%v playhead=%v", len(tl.Tracks()), tl.Duration(), tl.Playhead())
	}
}

func TestInitializeFromRaisesDurationToMaxEnd(t *testing.T) {
	tl := testTimeline(t)
	tl.InitializeFrom(&models.Snapshot{
		Duration: 2,
		Tracks:   []models.Track{{ID: "t", Type: models.TrackVideo, Clips: []models.Clip{{ID: "c", StartTime: 0, EndTime: 7}}}},
	})
	if tl.Duration() != 7 {
		t.Errorf("duration = %v, want 7", tl.Duration())
	}
}

func TestRestoreKeepsPlayheadWithinDuration(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{})
	addClip(t, tl, tr.ID, 0, 4)
	short := tl.ExportSnapshot()
	addClip(t, tl, tr.ID, 4, 12)
	tl.SetPlayhead(10)

	tl.Restore(short)
	if tl.Playhead() != 4 {
		t.Errorf("playhead = %v, want 4", tl.Playhead())
	}
}

func TestSubscribe(t *testing.T) {
	tl := testTimeline(t)
	var kinds []ChangeKind
	unsub := tl.Subscribe(func(c Change) { kinds = append(kinds, c.Kind) })

	tr, _ := tl.AddTrack(TrackSpec{})
	c := addClip(t, tl, tr.ID, 0, 5)
	tl.SetPlayhead(1)
	tl.SplitClip(c.ID, 2)
	tl.RemoveClip("missing") // no-ops do not notify

	want := []ChangeKind{KindTrackAdded, KindClipAdded, KindPlayhead, KindClipSplit}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("kinds = %v, want %v", kinds, want)
	}

	unsub()
	unsub()
	tl.AddTrack(TrackSpec{})
	if len(kinds) != len(want) {
		t.Error("listener called after unsubscribe")
	}
}

func TestChangeKindStructural(t *testing.T) {
	for _, k := range []ChangeKind{KindTrackAdded, KindClipMoved, KindClipRemoved} {
		if !k.Structural() {
			t.Errorf("%s should be structural", k)
		}
	}
	for _, k := range []ChangeKind{KindPlayhead, KindZoom, KindSelection, KindRestored, KindInitialized} {
		if k.Structural() {
			t.Errorf("%s should not be structural", k)
		}
	}
}
