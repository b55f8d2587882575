package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/starford/cutline/internal/apperr"
)

type request struct {
	fn   func(*Editor) error
	done chan error
}

// Session owns one project's Editor.
//
// Concurrency model: a single internal event loop (goroutine) owns the editor.
// Callers submit closures through Do, and the loop interleaves them with
// debounce and playback timer deliveries, so no operation ever observes a
// half-applied edit.
type Session struct {
	editor *Editor
	logger *slog.Logger

	reqCh   chan request
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// OpenSession loads the project's timeline and starts its event loop.
func OpenSession(ctx context.Context, projectID string, p Persister, opts ...Option) (*Session, error) {
	e := NewEditor(projectID, p, opts...)
	if err := e.Load(ctx); err != nil {
		e.Close()
		return nil, err
	}

	s := &Session{
		editor:  e,
		logger:  e.logger,
		reqCh:   make(chan request),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.run()

	s.logger.Info("session opened")
	return s, nil
}

func (s *Session) run() {
	defer close(s.stopped)

	for {
		select {
		case <-s.stopCh:
			s.editor.Close()
			return

		case req := <-s.reqCh:
			req.done <- s.call(req.fn)

		case <-s.editor.debounce.C():
			s.editor.HandleDebounce()

		case <-s.editor.player.C():
			s.editor.HandleTick()
		}
	}
}

func (s *Session) call(fn func(*Editor) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session operation panicked", slog.Any("panic", r))
			err = fmt.Errorf("editor: operation panicked: %v", r)
		}
	}()
	return fn(s.editor)
}

// ProjectID returns the project the session is bound to.
func (s *Session) ProjectID() string { return s.editor.projectID }

// Do runs fn on the session loop and returns its error. Once accepted, fn
// runs to completion even if ctx is cancelled meanwhile.
func (s *Session) Do(ctx context.Context, fn func(*Editor) error) error {
	if s.closed.Load() {
		return apperr.ErrClosed
	}

	req := request{fn: fn, done: make(chan error, 1)}
	select {
	case s.reqCh <- req:
	case <-s.stopped:
		return apperr.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-req.done
}

// State returns a copy of the editor state.
func (s *Session) State(ctx context.Context) (State, error) {
	var st State
	err := s.Do(ctx, func(e *Editor) error {
		st = e.State()
		return nil
	})
	return st, err
}

// Close stops the loop, playback and any pending history capture. Unsaved
// edits are discarded. Close is idempotent.
func (s *Session) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.stopCh)
		<-s.stopped
		s.logger.Info("session closed")
		return
	}
	<-s.stopped
}
