package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/cutline/internal/models"
	"github.com/starford/cutline/internal/parser"
	"github.com/starford/cutline/internal/projectservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *projectservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *projectservice.Service) *Handler {
	return &Handler{svc: svc}
}

func projectID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// normalizeTimeline validates an optional timeline from a request body.
func normalizeTimeline(w http.ResponseWriter, s *models.Snapshot) (*models.Snapshot, bool) {
	if s == nil {
		return nil, true
	}
	norm, err := parser.Normalize(*s)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return nil, false
	}
	return &norm, true
}

// ListProjects handles GET /api/projects.
//
//	@Summary		List projects, or search them when q is set
//	@Tags			projects
//	@Produce		json
//	@Param			q		query		string	false	"Search query over project and clip names"
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	ProjectListResponse
//	@Success		200		{object}	SearchResponse
//	@Security		BearerAuth
//	@Router			/projects [get]
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	if query := q.Get("q"); query != "" {
		results, err := h.svc.SearchProjects(r.Context(), query, limit)
		if err != nil {
			writeError(w, err, "search failed", slog.String("query", query))
			return
		}
		writeJSON(w, http.StatusOK, SearchResponse{Results: results})
		return
	}

	projects, total, err := h.svc.ListProjects(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err, "list projects failed")
		return
	}
	if projects == nil {
		projects = []models.ProjectMetadata{}
	}
	writeJSON(w, http.StatusOK, ProjectListResponse{Projects: projects, Total: total})
}

// GetProject handles GET /api/projects/{id}.
//
//	@Summary		Get a stored project
//	@Tags			projects
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{object}	models.Project
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id} [get]
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := projectID(r)
	p, err := h.svc.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, err, "get project failed", slog.String("project_id", id))
		return
	}
	w.Header().Set("ETag", strconv.Quote(p.Checksum))
	writeJSON(w, http.StatusOK, p)
}

// CreateProject handles POST /api/projects.
//
//	@Summary		Create a project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateProjectRequest	true	"Project"
//	@Success		201		{object}	models.Project
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects [post]
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tl, ok := normalizeTimeline(w, req.Timeline)
	if !ok {
		return
	}
	p, err := h.svc.CreateProject(r.Context(), req.Name, tl)
	if err != nil {
		writeError(w, err, "create project failed", slog.String("name", req.Name))
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdateProject handles PUT /api/projects/{id}.
//
//	@Summary		Update a project (optimistic concurrency via If-Match)
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string					true	"Project ID"
//	@Param			If-Match	header		string					false	"Expected checksum"
//	@Param			body		body		UpdateProjectRequest	true	"Project"
//	@Success		200			{object}	models.Project
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id} [put]
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id := projectID(r)
	var req UpdateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tl, ok := normalizeTimeline(w, req.Timeline)
	if !ok {
		return
	}
	p, err := h.svc.UpdateProject(r.Context(), id, req.Name, tl, ifMatch(r))
	if err != nil {
		writeError(w, err, "update project failed", slog.String("project_id", id))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProject handles DELETE /api/projects/{id}.
//
//	@Summary		Delete a project and its notes
//	@Tags			projects
//	@Param			id	path	string	true	"Project ID"
//	@Success		204	"Project deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id} [delete]
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := projectID(r)
	if err := h.svc.DeleteProject(r.Context(), id); err != nil {
		writeError(w, err, "delete project failed", slog.String("project_id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveTimeline handles POST /api/projects/{id}/timeline/save.
//
//	@Summary		Persist the live timeline (optimistic concurrency via If-Match)
//	@Tags			timeline
//	@Produce		json
//	@Param			id			path		string	true	"Project ID"
//	@Param			If-Match	header		string	false	"Expected checksum"
//	@Success		200			{object}	models.Project
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/timeline/save [post]
func (h *Handler) SaveTimeline(w http.ResponseWriter, r *http.Request) {
	id := projectID(r)
	p, err := h.svc.SaveTimeline(r.Context(), id, ifMatch(r))
	if err != nil {
		writeError(w, err, "save timeline failed", slog.String("project_id", id))
		return
	}
	w.Header().Set("ETag", strconv.Quote(p.Checksum))
	writeJSON(w, http.StatusOK, p)
}

// ExportProject handles POST /api/projects/{id}/export.
//
//	@Summary		Write the stored timeline into the library
//	@Tags			library
//	@Produce		json
//	@Param			id		path		string	true	"Project ID"
//	@Param			format	query		string	false	"File format"	Enums(json, yaml)
//	@Success		200		{object}	ExportResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/export [post]
func (h *Handler) ExportProject(w http.ResponseWriter, r *http.Request) {
	id := projectID(r)
	format := parser.Format(r.URL.Query().Get("format"))
	switch format {
	case "":
		format = parser.FormatJSON
	case parser.FormatJSON, parser.FormatYAML:
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("format must be json or yaml"))
		return
	}
	path, err := h.svc.Export(r.Context(), id, format)
	if err != nil {
		writeError(w, err, "export failed", slog.String("project_id", id))
		return
	}
	writeJSON(w, http.StatusOK, ExportResponse{Path: path})
}

// ImportProject handles POST /api/projects/{id}/import.
//
//	@Summary		Replace a project's timeline from a timeline file, creating the project if needed
//	@Tags			library
//	@Accept			json
//	@Accept			x-yaml
//	@Produce		json
//	@Param			id		path		string	true	"Project ID"
//	@Param			body	body		string	true	"Timeline file (JSON or YAML)"
//	@Success		200		{object}	models.Project
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/import [post]
func (h *Handler) ImportProject(w http.ResponseWriter, r *http.Request) {
	id := projectID(r)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	p, err := h.svc.Import(r.Context(), id, body)
	if err != nil {
		writeError(w, err, "import failed", slog.String("project_id", id))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes, optionally for one project
//	@Tags			notes
//	@Produce		json
//	@Param			projectId	query		string	false	"Project ID"
//	@Success		200			{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	pid := r.URL.Query().Get("projectId")
	notes, err := h.svc.ListNotes(r.Context(), pid)
	if err != nil {
		writeError(w, err, "list notes failed", slog.String("project_id", pid))
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes})
}

// GetNote handles GET /api/notes/{noteID}.
//
//	@Summary		Get a note
//	@Tags			notes
//	@Produce		json
//	@Param			noteID	path		string	true	"Note ID"
//	@Success		200		{object}	models.Note
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{noteID} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "noteID")
	n, err := h.svc.GetNote(r.Context(), id)
	if err != nil {
		writeError(w, err, "get note failed", slog.String("note_id", id))
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a note attached to a project
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note"
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.svc.CreateNote(r.Context(), req.ProjectID, req.Data)
	if err != nil {
		writeError(w, err, "create note failed", slog.String("project_id", req.ProjectID))
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// UpdateNote handles PUT /api/notes/{noteID}.
//
//	@Summary		Replace a note's data
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			noteID	path		string				true	"Note ID"
//	@Param			body	body		UpdateNoteRequest	true	"Note data"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{noteID} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "noteID")
	var req UpdateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.svc.UpdateNote(r.Context(), id, req.Data)
	if err != nil {
		writeError(w, err, "update note failed", slog.String("note_id", id))
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// DeleteNote handles DELETE /api/notes/{noteID}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			noteID	path	string	true	"Note ID"
//	@Success		204		"Note deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{noteID} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "noteID")
	if err := h.svc.DeleteNote(r.Context(), id); err != nil {
		writeError(w, err, "delete note failed", slog.String("note_id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
