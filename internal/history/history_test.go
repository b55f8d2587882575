package history

import (
	"reflect"
	"testing"

	"github.com/starford/cutline/internal/models"
)

func snap(duration float64) models.Snapshot {
	return models.Snapshot{
		Duration: duration,
		Tracks: []models.Track{{
			ID:    "t1",
			Type:  models.TrackVideo,
			Name:  "Video Track 1",
			Clips: []models.Clip{{ID: "c1", StartTime: 0, EndTime: duration, Payload: models.Payload{"name": "clip"}}},
		}},
	}
}

func TestEmptyHistory(t *testing.T) {
	m := New(0)
	if m.Capacity() != DefaultCapacity {
		t.Errorf("capacity = %d, want %d", m.Capacity(), DefaultCapacity)
	}
	if m.Index() != -1 || m.CanUndo() || m.CanRedo() {
		t.Errorf("empty history: index=%d undo=%v redo=%v", m.Index(), m.CanUndo(), m.CanRedo())
	}
	if _, ok := m.Undo(); ok {
		t.Error("undo on empty history")
	}
	if _, ok := m.Redo(); ok {
		t.Error("redo on empty history")
	}
	if _, ok := m.Current(); ok {
		t.Error("current on empty history")
	}
}

func TestSingleEntryCannotUndo(t *testing.T) {
	m := New(0)
	m.Save(snap(1))
	if m.CanUndo() {
		t.Error("the base entry cannot be undone")
	}
	if _, ok := m.Undo(); ok {
		t.Error("undo should report none")
	}
	if m.Index() != 0 {
		t.Errorf("index = %d, want 0", m.Index())
	}
}

func TestUndoRedo(t *testing.T) {
	m := New(0)
	a, b := snap(1), snap(2)
	m.Save(a)
	m.Save(b)

	got, ok := m.Undo()
	if !ok || !reflect.DeepEqual(got, a) {
		t.Fatalf("undo = %+v, %v; want A", got, ok)
	}
	if !m.CanRedo() {
		t.Error("redo should be available after undo")
	}
	got, ok = m.Redo()
	if !ok || !reflect.DeepEqual(got, b) {
		t.Fatalf("redo = %+v, %v; want B", got, ok)
	}
	if _, ok := m.Redo(); ok {
		t.Error("redo past the newest entry")
	}
}

func TestSaveAfterUndoDiscardsFuture(t *testing.T) {
	m := New(0)
	m.Save(snap(1))
	m.Save(snap(2))
	m.Undo()
	m.Save(snap(3))

	if m.Len() != 2 {
		t.Errorf("len = %d, want 2", m.Len())
	}
	if _, ok := m.Redo(); ok {
		t.Error("discarded entry should not be redoable")
	}
	cur, _ := m.Current()
	if cur.Duration != 3 {
		t.Errorf("current duration = %v, want 3", cur.Duration)
	}
	prev, _ := m.Undo()
	if prev.Duration != 1 {
		t.Errorf("undo landed on %v, want 1", prev.Duration)
	}
}

func TestCapacityEviction(t *testing.T) {
	m := New(50)
	for i := 1; i <= 60; i++ {
		m.Save(snap(float64(i)))
	}
	if m.Len() != 50 {
		t.Fatalf("len = %d, want 50", m.Len())
	}
	if m.Index() != 49 {
		t.Errorf("index = %d, want 49", m.Index())
	}
	cur, _ := m.Current()
	if cur.Duration != 60 {
		t.Errorf("current = %v, want newest (60)", cur.Duration)
	}

	// Walk back to the oldest surviving entry: 11 (1..10 were evicted).
	var oldest models.Snapshot
	for m.CanUndo() {
		oldest, _ = m.Undo()
	}
	if oldest.Duration != 11 {
		t.Errorf("oldest = %v, want 11", oldest.Duration)
	}
}

func TestEvictionAfterUndoKeepsLogicalEntry(t *testing.T) {
	m := New(3)
	m.Save(snap(1))
	m.Save(snap(2))
	m.Save(snap(3))
	m.Undo() // cursor on 2
	m.Save(snap(4))
	m.Save(snap(5)) // log 1,2,4,5 -> evicts 1

	if m.Len() != 3 || m.Index() != 2 {
		t.Fatalf("len=%d index=%d, want 3/2", m.Len(), m.Index())
	}
	cur, _ := m.Current()
	if cur.Duration != 5 {
		t.Errorf("current = %v, want 5", cur.Duration)
	}
	prev, _ := m.Undo()
	if prev.Duration != 4 {
		t.Errorf("undo = %v, want 4", prev.Duration)
	}
}

func TestEntriesAreIsolated(t *testing.T) {
	m := New(0)
	a := snap(1)
	m.Save(a)
	m.Save(snap(2))

	// Mutating the saved value must not reach history.
	a.Tracks[0].Clips[0].Payload["name"] = "changed"

	got, _ := m.Undo()
	if got.Tracks[0].Clips[0].Payload.Name() != "clip" {
		t.Fatal("history aliased the caller's snapshot")
	}

	// Mutating a returned value must not reach history either.
	got.Tracks[0].Clips[0].EndTime = 99
	again, _ := m.Current()
	if again.Tracks[0].Clips[0].EndTime != 1 {
		t.Fatal("history aliased a returned snapshot")
	}
}

func TestClear(t *testing.T) {
	m := New(0)
	m.Save(snap(1))
	m.Save(snap(2))
	m.Clear()
	if m.Len() != 0 || m.Index() != -1 || m.CanUndo() || m.CanRedo() {
		t.Error("clear left state behind")
	}
}
