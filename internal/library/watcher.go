package library

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/cutline/internal/checksum"
	"github.com/starford/cutline/internal/parser"
)

const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the library root and imports timeline
// files as they are created or written, until ctx is cancelled. It calls cb
// (if non-nil) after each successful import.
//
// New directories created at runtime are automatically added to the watch
// list. Renames schedule a debounced Sync pass that picks up the file under
// its new name.
func Watch(ctx context.Context, db Importer, store *FS, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, store.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", store.Root()))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			if err := Sync(ctx, db, store, logger, cb); err != nil {
				logger.Warn("reconcile: sync failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					// Files may have landed before the watch was added.
					scheduleReconcile()
					continue
				}
			}

			projectID, ok := parser.ProjectID(filepath.Base(absPath))
			if !ok {
				continue
			}
			rel, relErr := filepath.Rel(store.Root(), absPath)
			if relErr != nil {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				importChanged(ctx, db, store, rel, projectID, logger, cb)

			case ev.Op&fsnotify.Rename != 0:
				scheduleReconcile()

			case ev.Op&fsnotify.Remove != 0:
				logger.Debug("watcher: file removed, project kept", slog.String("path", rel), slog.String("project_id", projectID))
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// importChanged imports one file unless its content matches the checksum
// already recorded for the project.
func importChanged(ctx context.Context, db Importer, store Provider, rel, projectID string, logger *slog.Logger, cb EventCallback) {
	data, err := store.Read(rel)
	if err != nil {
		logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	sums, err := db.SourceChecksums(ctx)
	if err != nil {
		logger.Warn("watcher: checksums failed", slog.String("error", err.Error()))
		return
	}
	if sums[projectID] == checksum.Sum(data) {
		return
	}
	created, err := importFile(ctx, db, projectID, data)
	if err != nil {
		// Editors often write in several steps; a later event retries.
		logger.Warn("watcher: import failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	kind := kindOf(created)
	logger.Debug("watcher: imported", slog.String("path", rel), slog.String("op", kind))
	if cb != nil {
		cb(kind, projectID)
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
