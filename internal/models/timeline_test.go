package models

import "testing"

func TestSnapshotCloneIsIndependent(t *testing.T) {
	orig := Snapshot{
		Duration: 10,
		Tracks: []Track{{
			ID:   "t1",
			Type: TrackVideo,
			Name: "Video Track 1",
			Clips: []Clip{{
				ID: "c1", StartTime: 0, EndTime: 10,
				Payload: Payload{"name": "intro", "tags": []any{"a"}, "meta": map[string]any{"fps": 30.0}},
			}},
		}},
	}

	cp := orig.Clone()
	cp.Tracks[0].Name = "changed"
	cp.Tracks[0].Clips[0].EndTime = 99
	cp.Tracks[0].Clips[0].Payload["name"] = "changed"
	cp.Tracks[0].Clips[0].Payload["tags"].([]any)[0] = "b"
	cp.Tracks[0].Clips[0].Payload["meta"].(map[string]any)["fps"] = 60.0
	cp.Tracks[0].Clips = append(cp.Tracks[0].Clips, Clip{ID: "c2"})

	c := orig.Tracks[0].Clips[0]
	if orig.Tracks[0].Name != "Video Track 1" || c.EndTime != 10 || len(orig.Tracks[0].Clips) != 1 {
		t.Fatalf("original mutated: %+v", orig)
	}
	if c.Payload.Name() != "intro" {
		t.Errorf("payload name = %q", c.Payload.Name())
	}
	if c.Payload["tags"].([]any)[0] != "a" {
		t.Error("nested slice shared")
	}
	if c.Payload["meta"].(map[string]any)["fps"] != 30.0 {
		t.Error("nested map shared")
	}
}

func TestMaxEnd(t *testing.T) {
	s := Snapshot{Tracks: []Track{
		{Clips: []Clip{{StartTime: 0, EndTime: 4}, {StartTime: 1, EndTime: 12}}},
		{Clips: []Clip{{StartTime: 3, EndTime: 7}}},
		{},
	}}
	if got := s.MaxEnd(); got != 12 {
		t.Errorf("MaxEnd = %v, want 12", got)
	}
	if got := (Snapshot{}).MaxEnd(); got != 0 {
		t.Errorf("empty MaxEnd = %v, want 0", got)
	}
	if s.ClipCount() != 3 {
		t.Errorf("ClipCount = %d", s.ClipCount())
	}
}

func TestPayloadMerge(t *testing.T) {
	p := Payload{"name": "a", "src": "x.mp4"}
	m := p.Merge(Payload{"name": "b"})
	if m["name"] != "b" || m["src"] != "x.mp4" {
		t.Errorf("merge = %v", m)
	}
	if p["name"] != "a" {
		t.Error("merge mutated receiver")
	}
	var empty Payload
	if got := empty.Merge(Payload{"k": 1}); got["k"] != 1 {
		t.Errorf("merge into nil = %v", got)
	}
}

func TestTrackTypeValid(t *testing.T) {
	for _, tt := range TrackTypes {
		if !tt.Valid() {
			t.Errorf("%q should be valid", tt)
		}
	}
	if TrackType("subtitle").Valid() {
		t.Error("subtitle should be invalid")
	}
}
