package editor

import (
	"context"
	"sync"

	"github.com/starford/cutline/internal/apperr"
)

// Registry opens one Session per project on first use and keeps it until the
// project is closed or the registry shuts down.
type Registry struct {
	persister Persister
	opts      []Option

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewRegistry creates a registry whose sessions load and save through p.
func NewRegistry(p Persister, opts ...Option) *Registry {
	return &Registry{
		persister: p,
		opts:      opts,
		sessions:  make(map[string]*Session),
	}
}

// Session returns the open session for projectID, loading it if needed.
func (r *Registry) Session(ctx context.Context, projectID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, apperr.ErrClosed
	}
	if s, ok := r.sessions[projectID]; ok {
		return s, nil
	}
	s, err := OpenSession(ctx, projectID, r.persister, r.opts...)
	if err != nil {
		return nil, err
	}
	r.sessions[projectID] = s
	return s, nil
}

// Do runs fn on the project's session.
func (r *Registry) Do(ctx context.Context, projectID string, fn func(*Editor) error) error {
	s, err := r.Session(ctx, projectID)
	if err != nil {
		return err
	}
	return s.Do(ctx, fn)
}

// Reload re-initializes an open session from the persister. Projects without
// an open session are left alone; they load fresh on next use.
func (r *Registry) Reload(ctx context.Context, projectID string) error {
	r.mu.Lock()
	s, ok := r.sessions[projectID]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Do(ctx, func(e *Editor) error {
		return e.Load(ctx)
	})
}

// IsOpen reports whether the project has a live session.
func (r *Registry) IsOpen(projectID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[projectID]
	return ok
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close closes the project's session, if open.
func (r *Registry) Close(projectID string) {
	r.mu.Lock()
	s, ok := r.sessions[projectID]
	delete(r.sessions, projectID)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// CloseAll closes every session and rejects further use.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.closed = true
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
