package timeline

import (
	"testing"

	"github.com/starford/cutline/internal/models"
)

func TestClipAtPlayheadIsEndExclusive(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{})
	c := addClip(t, tl, tr.ID, 0, 5)
	addClip(t, tl, tr.ID, 6, 10)

	tl.SetPlayhead(4.999)
	hit, ok := tl.ClipAtPlayhead()
	if !ok || hit.Clip.ID != c.ID || hit.Track.ID != tr.ID {
		t.Fatalf("at 4.999 got %+v, %v", hit, ok)
	}

	tl.SetPlayhead(5.0)
	if hit, ok := tl.ClipAtPlayhead(); ok {
		t.Errorf("at 5.0 got %s, want none", hit.Clip.ID)
	}
}

func TestClipAtPlayheadTrackOrderWins(t *testing.T) {
	tl := testTimeline(t)
	bg, _ := tl.AddTrack(TrackSpec{})
	video, _ := tl.AddTrack(TrackSpec{})
	addClip(t, tl, video.ID, 0, 10)
	first := addClip(t, tl, bg.ID, 0, 10)

	tl.SetPlayhead(3)
	hit, ok := tl.ClipAtPlayhead()
	if !ok || hit.Clip.ID != first.ID {
		t.Errorf("got %+v, want clip on the first track", hit)
	}
	if hits := tl.ClipsAt(3); len(hits) != 2 {
		t.Errorf("ClipsAt = %d hits, want 2", len(hits))
	}
}

func TestClipsInRange(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{})
	addClip(t, tl, tr.ID, 0, 5)
	addClip(t, tl, tr.ID, 5, 8)
	addClip(t, tl, tr.ID, 12, 14)

	if got := tl.ClipsInRange(4, 6); len(got) != 2 {
		t.Errorf("ClipsInRange(4,6) = %d, want 2", len(got))
	}
	if got := tl.ClipsInRange(8, 12); len(got) != 0 {
		t.Errorf("ClipsInRange(8,12) = %d, want 0", len(got))
	}
}

func TestSelect(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{Type: models.TrackVideo})
	c := addClip(t, tl, tr.ID, 0, 5)

	if !tl.Select(c.ID) || tl.SelectedClipID() != c.ID {
		t.Fatal("select failed")
	}
	if tl.Select("missing") {
		t.Error("unknown clip should be a no-op")
	}
	if tl.SelectedClipID() != c.ID {
		t.Error("failed select changed selection")
	}
	if !tl.Select("") || tl.SelectedClipID() != "" {
		t.Error("empty id should clear the selection")
	}
}

func TestSyncActive(t *testing.T) {
	tl := testTimeline(t)
	tr, _ := tl.AddTrack(TrackSpec{})
	c := addClip(t, tl, tr.ID, 2, 5)
	addClip(t, tl, tr.ID, 7, 9)

	tl.SetPlayhead(3)
	if id := tl.SyncActive(); id != c.ID || tl.ActiveClipID() != c.ID {
		t.Errorf("active = %q, want %q", id, c.ID)
	}
	tl.SetPlayhead(6)
	if id := tl.SyncActive(); id != "" {
		t.Errorf("active in gap = %q, want none", id)
	}
	if tl.SetActive("missing") {
		t.Error("unknown clip should be a no-op")
	}
}
