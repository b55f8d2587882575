package models

import "time"

// Project is a stored editing project. Timeline is nil until first saved.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timeline  *Snapshot `json:"timeline,omitempty"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectMetadata is a lightweight representation returned by list operations.
type ProjectMetadata struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Duration  float64   `json:"duration"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Note is a free-form record attached to a project.
type Note struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"projectId"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
