// Package testutil provides shared test helpers for setting up libraries and
// databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/cutline/internal/library"
	"github.com/starford/cutline/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "cutline-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestLibrary creates a temporary timeline library directory.
func TestLibrary(t *testing.T) (string, *library.FS) {
	t.Helper()
	dir := t.TempDir()
	lib, err := library.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, lib
}
