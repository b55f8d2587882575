package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/cutline/internal/projectservice"
	"github.com/starford/cutline/internal/timeline"
)

// writeEdit writes the outcome of a timeline operation.
func writeEdit(w http.ResponseWriter, r *http.Request, status int, res *projectservice.EditResult, err error, op string) {
	if err != nil {
		writeError(w, err, op+" failed",
			slog.String("project_id", projectID(r)),
			slog.String("op", op))
		return
	}
	writeJSON(w, status, res)
}

// GetTimeline handles GET /api/projects/{id}/timeline.
//
//	@Summary		Get the live editor state of a project
//	@Tags			timeline
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{object}	EditResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/timeline [get]
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Timeline(r.Context(), projectID(r))
	writeEdit(w, r, http.StatusOK, res, err, "get timeline")
}

// AddTrack handles POST /api/projects/{id}/tracks.
//
//	@Summary		Append a track
//	@Tags			timeline
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Project ID"
//	@Param			body	body		AddTrackRequest	false	"Track"
//	@Success		201		{object}	EditResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/tracks [post]
func (h *Handler) AddTrack(w http.ResponseWriter, r *http.Request) {
	var req AddTrackRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	res, err := h.svc.AddTrack(r.Context(), projectID(r), timeline.TrackSpec{Type: req.Type, Name: req.Name})
	writeEdit(w, r, http.StatusCreated, res, err, "add track")
}

// RemoveTrack handles DELETE /api/projects/{id}/tracks/{trackID}.
//
//	@Summary		Remove a track and its clips
//	@Tags			timeline
//	@Produce		json
//	@Param			id		path		string	true	"Project ID"
//	@Param			trackID	path		string	true	"Track ID"
//	@Success		200		{object}	EditResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/tracks/{trackID} [delete]
func (h *Handler) RemoveTrack(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.RemoveTrack(r.Context(), projectID(r), chi.URLParam(r, "trackID"))
	writeEdit(w, r, http.StatusOK, res, err, "remove track")
}

// AddClip handles POST /api/projects/{id}/tracks/{trackID}/clips.
//
//	@Summary		Insert a clip into a track
//	@Tags			timeline
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Project ID"
//	@Param			trackID	path		string		true	"Track ID"
//	@Param			body	body		ClipRequest	false	"Clip"
//	@Success		201		{object}	EditResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/tracks/{trackID}/clips [post]
func (h *Handler) AddClip(w http.ResponseWriter, r *http.Request) {
	var req ClipRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	spec := timeline.ClipSpec{StartTime: req.StartTime, EndTime: req.EndTime, Payload: req.Payload}
	res, err := h.svc.AddClip(r.Context(), projectID(r), chi.URLParam(r, "trackID"), spec)
	writeEdit(w, r, http.StatusCreated, res, err, "add clip")
}

// UpdateClip handles PATCH /api/projects/{id}/clips/{clipID}.
//
//	@Summary		Merge changes into a clip
//	@Tags			timeline
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Project ID"
//	@Param			clipID	path		string		true	"Clip ID"
//	@Param			body	body		ClipRequest	true	"Clip patch"
//	@Success		200		{object}	EditResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/clips/{clipID} [patch]
func (h *Handler) UpdateClip(w http.ResponseWriter, r *http.Request) {
	var req ClipRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	patch := timeline.ClipPatch{StartTime: req.StartTime, EndTime: req.EndTime, Payload: req.Payload}
	res, err := h.svc.UpdateClip(r.Context(), projectID(r), chi.URLParam(r, "clipID"), patch)
	writeEdit(w, r, http.StatusOK, res, err, "update clip")
}

// RemoveClip handles DELETE /api/projects/{id}/clips/{clipID}.
//
//	@Summary		Remove a clip
//	@Tags			timeline
//	@Produce		json
//	@Param			id		path		string	true	"Project ID"
//	@Param			clipID	path		string	true	"Clip ID"
//	@Success		200		{object}	EditResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/clips/{clipID} [delete]
func (h *Handler) RemoveClip(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.RemoveClip(r.Context(), projectID(r), chi.URLParam(r, "clipID"))
	writeEdit(w, r, http.StatusOK, res, err, "remove clip")
}

// SplitClip handles POST /api/projects/{id}/clips/{clipID}/split.
//
//	@Summary		Split a clip at a time, or at the playhead
//	@Tags			timeline
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Project ID"
//	@Param			clipID	path		string				true	"Clip ID"
//	@Param			body	body		SplitClipRequest	false	"Split point"
//	@Success		200		{object}	EditResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/clips/{clipID}/split [post]
func (h *Handler) SplitClip(w http.ResponseWriter, r *http.Request) {
	var req SplitClipRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	res, err := h.svc.SplitClip(r.Context(), projectID(r), chi.URLParam(r, "clipID"), req.At)
	writeEdit(w, r, http.StatusOK, res, err, "split clip")
}

// MoveClip handles POST /api/projects/{id}/clips/{clipID}/move.
//
//	@Summary		Move a clip to a new start time, keeping its length
//	@Tags			timeline
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Project ID"
//	@Param			clipID	path		string			true	"Clip ID"
//	@Param			body	body		MoveClipRequest	true	"New start"
//	@Success		200		{object}	EditResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/clips/{clipID}/move [post]
func (h *Handler) MoveClip(w http.ResponseWriter, r *http.Request) {
	var req MoveClipRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.MoveClip(r.Context(), projectID(r), chi.URLParam(r, "clipID"), *req.StartTime)
	writeEdit(w, r, http.StatusOK, res, err, "move clip")
}

// SetPlayhead handles PUT /api/projects/{id}/playhead.
//
//	@Summary		Move the playhead
//	@Tags			timeline
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Project ID"
//	@Param			body	body		PlayheadRequest	true	"Position in seconds"
//	@Success		200		{object}	EditResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/playhead [put]
func (h *Handler) SetPlayhead(w http.ResponseWriter, r *http.Request) {
	var req PlayheadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.SetPlayhead(r.Context(), projectID(r), *req.Position)
	writeEdit(w, r, http.StatusOK, res, err, "set playhead")
}

// SetZoom handles PUT /api/projects/{id}/zoom.
//
//	@Summary		Set the zoom factor
//	@Tags			timeline
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Project ID"
//	@Param			body	body		ZoomRequest	true	"Zoom factor"
//	@Success		200		{object}	EditResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/zoom [put]
func (h *Handler) SetZoom(w http.ResponseWriter, r *http.Request) {
	var req ZoomRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.SetZoom(r.Context(), projectID(r), *req.Zoom)
	writeEdit(w, r, http.StatusOK, res, err, "set zoom")
}

// Select handles PUT /api/projects/{id}/selection.
//
//	@Summary		Select a clip, or clear the selection
//	@Tags			timeline
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Project ID"
//	@Param			body	body		SelectionRequest	true	"Clip to select"
//	@Success		200		{object}	EditResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/selection [put]
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Select(r.Context(), projectID(r), req.ClipID)
	writeEdit(w, r, http.StatusOK, res, err, "select")
}

// Undo handles POST /api/projects/{id}/undo.
//
//	@Summary		Undo the last edit
//	@Tags			timeline
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{object}	EditResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/undo [post]
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Undo(r.Context(), projectID(r))
	writeEdit(w, r, http.StatusOK, res, err, "undo")
}

// Redo handles POST /api/projects/{id}/redo.
//
//	@Summary		Redo the last undone edit
//	@Tags			timeline
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{object}	EditResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/redo [post]
func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Redo(r.Context(), projectID(r))
	writeEdit(w, r, http.StatusOK, res, err, "redo")
}

// Play handles POST /api/projects/{id}/play.
//
//	@Summary		Start playback
//	@Tags			playback
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{object}	EditResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/play [post]
func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Play(r.Context(), projectID(r))
	writeEdit(w, r, http.StatusOK, res, err, "play")
}

// Pause handles POST /api/projects/{id}/pause.
//
//	@Summary		Stop playback
//	@Tags			playback
//	@Produce		json
//	@Param			id	path		string	true	"Project ID"
//	@Success		200	{object}	EditResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/pause [post]
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Pause(r.Context(), projectID(r))
	writeEdit(w, r, http.StatusOK, res, err, "pause")
}
