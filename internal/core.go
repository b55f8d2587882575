package internal

import (
	"fmt"
	"log/slog"

	"github.com/starford/cutline/internal/editor"
	"github.com/starford/cutline/internal/library"
	"github.com/starford/cutline/internal/projectservice"
	"github.com/starford/cutline/internal/sse"
	"github.com/starford/cutline/internal/store"
)

// Core bundles the layers shared by the HTTP server, the MCP server and the
// CLI commands.
type Core struct {
	DB       *store.DB
	Library  *library.FS
	Sessions *editor.Registry
	Service  *projectservice.Service
}

// OpenCore opens the database and library named by cfg and wires a session
// registry and project service over them. A non-nil broker receives editor
// and project events.
func OpenCore(cfg *Config, logger *slog.Logger, broker *sse.Broker) (*Core, error) {
	lib, err := library.NewFS(cfg.Library.Path)
	if err != nil {
		return nil, fmt.Errorf("init library: %w", err)
	}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	editorOpts := []editor.Option{
		editor.WithConfig(cfg.Editor.Session()),
		editor.WithLogger(logger),
	}
	serviceOpts := []projectservice.Option{
		projectservice.WithLibrary(lib),
		projectservice.WithLogger(logger),
	}
	if broker != nil {
		editorOpts = append(editorOpts, editor.WithNotifier(forwardTo(broker)))
		serviceOpts = append(serviceOpts, projectservice.WithPublisher(broker))
	}

	sessions := editor.NewRegistry(db, editorOpts...)
	return &Core{
		DB:       db,
		Library:  lib,
		Sessions: sessions,
		Service:  projectservice.NewService(db, sessions, serviceOpts...),
	}, nil
}

// Close discards open sessions and closes the database. Unsaved edits are
// dropped.
func (c *Core) Close() error {
	c.Sessions.CloseAll()
	return c.DB.Close()
}

// forwardTo relays editor events to SSE clients subscribed to the project.
func forwardTo(b *sse.Broker) editor.Notifier {
	return func(e editor.Event) {
		b.Publish(sse.Event{Type: e.Type, ProjectID: e.ProjectID, Data: e.Data})
	}
}
