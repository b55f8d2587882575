// Package library keeps project timelines in sync with a directory of
// timeline files (<projectID>.timeline.json|yaml) and stores uploaded media
// alongside them.
package library

import "time"

// MediaDir is the library subdirectory holding uploaded source media.
const MediaDir = "media"

// FileMeta describes one timeline file in the library.
type FileMeta struct {
	Path      string
	ProjectID string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for library file operations. Paths are relative
// to the library root.
type Provider interface {
	// List returns metadata for every timeline file under dir.
	List(dir string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}
