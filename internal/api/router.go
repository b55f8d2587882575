package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/cutline/internal/projectservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// libraryRoot is used to resolve the media directory.
func NewRouter(svc *projectservice.Service, authEnabled bool, token string, sseHandler http.Handler, libraryRoot string) chi.Router {
	h := NewHandler(svc)
	mh := NewMediaHandler(libraryRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Projects CRUD.
	r.Get("/projects", h.ListProjects)
	r.Post("/projects", h.CreateProject)
	r.Route("/projects/{id}", func(r chi.Router) {
		r.Get("/", h.GetProject)
		r.Put("/", h.UpdateProject)
		r.Delete("/", h.DeleteProject)

		r.Post("/export", h.ExportProject)
		r.Post("/import", h.ImportProject)

		// Live timeline editing.
		r.Get("/timeline", h.GetTimeline)
		r.Post("/timeline/save", h.SaveTimeline)
		r.Post("/tracks", h.AddTrack)
		r.Delete("/tracks/{trackID}", h.RemoveTrack)
		r.Post("/tracks/{trackID}/clips", h.AddClip)
		r.Patch("/clips/{clipID}", h.UpdateClip)
		r.Delete("/clips/{clipID}", h.RemoveClip)
		r.Post("/clips/{clipID}/split", h.SplitClip)
		r.Post("/clips/{clipID}/move", h.MoveClip)
		r.Put("/playhead", h.SetPlayhead)
		r.Put("/zoom", h.SetZoom)
		r.Put("/selection", h.Select)
		r.Post("/undo", h.Undo)
		r.Post("/redo", h.Redo)
		r.Post("/play", h.Play)
		r.Post("/pause", h.Pause)
	})

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{noteID}", h.GetNote)
	r.Put("/notes/{noteID}", h.UpdateNote)
	r.Delete("/notes/{noteID}", h.DeleteNote)

	// Source media (auth-protected).
	r.Post("/media", mh.Upload)
	r.Get("/media/{filename}", mh.ServeFile)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
