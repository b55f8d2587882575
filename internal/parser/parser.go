// Package parser decodes and encodes timeline library files. Files are YAML
// or JSON documents holding an optional project name and a snapshot.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/cutline/internal/models"
)

// Format is a library file encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Suffixes of timeline library files.
const (
	SuffixJSON = ".timeline.json"
	SuffixYAML = ".timeline.yaml"
	SuffixYML  = ".timeline.yml"
)

// Result holds a decoded timeline file.
type Result struct {
	Name     string
	Snapshot models.Snapshot
	Format   Format
}

type document struct {
	Name     string         `json:"name,omitempty" yaml:"name,omitempty"`
	Tracks   []models.Track `json:"tracks" yaml:"tracks"`
	Duration float64        `json:"duration" yaml:"duration"`
}

// ProjectID returns the project id encoded in a library file name and
// whether the name is a timeline file at all.
func ProjectID(filename string) (string, bool) {
	for _, suffix := range []string{SuffixJSON, SuffixYAML, SuffixYML} {
		if id, ok := strings.CutSuffix(filename, suffix); ok && id != "" && !strings.HasPrefix(id, ".") {
			return id, true
		}
	}
	return "", false
}

// FileName returns the library file name for a project.
func FileName(projectID string, f Format) string {
	if f == FormatYAML {
		return projectID + SuffixYAML
	}
	return projectID + SuffixJSON
}

// Parse decodes a timeline file, validates it and normalizes it: clips are
// ordered by start time within each track and duration covers every clip.
func Parse(data []byte) (*Result, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("parser: empty timeline file")
	}
	var doc document
	format := detect(data)
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parser: decode %s: %w", format, err)
	}
	snap, err := Normalize(models.Snapshot{Tracks: doc.Tracks, Duration: doc.Duration})
	if err != nil {
		return nil, err
	}
	return &Result{Name: doc.Name, Snapshot: snap, Format: format}, nil
}

// Normalize validates a snapshot and returns a normalized copy: clips are
// ordered by start time within each track and duration covers every clip.
func Normalize(s models.Snapshot) (models.Snapshot, error) {
	if err := validate(document{Tracks: s.Tracks, Duration: s.Duration}); err != nil {
		return models.Snapshot{}, fmt.Errorf("parser: invalid timeline: %w", err)
	}
	snap := s.Clone()
	if snap.Tracks == nil {
		snap.Tracks = []models.Track{}
	}
	for i := range snap.Tracks {
		if snap.Tracks[i].Clips == nil {
			snap.Tracks[i].Clips = []models.Clip{}
		}
		slices.SortStableFunc(snap.Tracks[i].Clips, func(a, b models.Clip) int {
			switch {
			case a.StartTime < b.StartTime:
				return -1
			case a.StartTime > b.StartTime:
				return 1
			}
			return 0
		})
	}
	snap.Duration = max(snap.Duration, snap.MaxEnd())
	return snap, nil
}

// Encode renders a snapshot as a library file.
func Encode(name string, s models.Snapshot, f Format) ([]byte, error) {
	doc := document{Name: name, Tracks: s.Tracks, Duration: s.Duration}
	if f == FormatYAML {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("parser: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("parser: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("parser: encode json: %w", err)
	}
	return append(data, '\n'), nil
}

func detect(data []byte) Format {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

func validate(doc document) error {
	if err := validation.Validate(doc.Duration, validation.By(finiteNonNegative)); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	ids := make(map[string]struct{})
	claim := func(id string) error {
		if _, dup := ids[id]; dup {
			return fmt.Errorf("duplicate id %q", id)
		}
		ids[id] = struct{}{}
		return nil
	}

	for i, tr := range doc.Tracks {
		err := validation.ValidateStruct(&tr,
			validation.Field(&tr.ID, validation.Required),
			validation.Field(&tr.Type, validation.Required, validation.By(trackType)),
		)
		if err != nil {
			return fmt.Errorf("tracks[%d]: %w", i, err)
		}
		if err := claim(tr.ID); err != nil {
			return fmt.Errorf("tracks[%d]: %w", i, err)
		}
		for j, c := range tr.Clips {
			err := validation.ValidateStruct(&c,
				validation.Field(&c.ID, validation.Required),
				validation.Field(&c.StartTime, validation.By(finiteNonNegative)),
				validation.Field(&c.EndTime, validation.By(finiteNonNegative), validation.By(after(c.StartTime))),
			)
			if err != nil {
				return fmt.Errorf("tracks[%d].clips[%d]: %w", i, j, err)
			}
			if err := claim(c.ID); err != nil {
				return fmt.Errorf("tracks[%d].clips[%d]: %w", i, j, err)
			}
		}
	}
	return nil
}

func trackType(v any) error {
	t, _ := v.(models.TrackType)
	if !t.Valid() {
		return fmt.Errorf("must be one of %v", models.TrackTypes)
	}
	return nil
}

func finiteNonNegative(v any) error {
	f, _ := v.(float64)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.New("must be a finite number")
	}
	if f < 0 {
		return errors.New("must be no less than 0")
	}
	return nil
}

func after(start float64) validation.RuleFunc {
	return func(v any) error {
		if end, _ := v.(float64); end <= start {
			return errors.New("must be greater than startTime")
		}
		return nil
	}
}
