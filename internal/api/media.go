package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/cutline/internal/library"
)

const maxUploadBytes = 512 << 20 // 512 MB

// mediaExts lists the source media types clips can reference, keyed by
// extension.
var mediaExts = map[string]string{
	".mp4":  "video",
	".mov":  "video",
	".webm": "video",
	".mkv":  "video",
	".mp3":  "audio",
	".wav":  "audio",
	".ogg":  "audio",
	".m4a":  "audio",
	".aac":  "audio",
	".flac": "audio",
	".png":  "image",
	".jpg":  "image",
	".jpeg": "image",
	".gif":  "image",
	".webp": "image",
}

// MediaHandler serves and accepts source media files stored in the library.
type MediaHandler struct {
	libraryRoot string
}

// NewMediaHandler creates a handler rooted at the library directory.
func NewMediaHandler(libraryRoot string) *MediaHandler {
	return &MediaHandler{libraryRoot: libraryRoot}
}

func (h *MediaHandler) mediaPath() string {
	return filepath.Join(h.libraryRoot, library.MediaDir)
}

// safeName validates that the filename is a plain media file name (no path
// separators, no traversal, known extension) and returns the absolute path
// under the media dir.
func (h *MediaHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	if _, ok := mediaExts[strings.ToLower(filepath.Ext(cleaned))]; !ok {
		return "", fmt.Errorf("unsupported media type: %s", filepath.Ext(cleaned))
	}
	abs := filepath.Join(h.mediaPath(), cleaned)
	if !strings.HasPrefix(abs, h.mediaPath()+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes media directory")
	}
	return abs, nil
}

// ServeFile handles GET /api/media/{filename}.
func (h *MediaHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	abs, err := h.safeName(chi.URLParam(r, "filename"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	http.ServeFile(w, r, abs)
}

// Upload handles POST /api/media (multipart/form-data, field "file"). The
// returned url can be stored in a clip payload as its source.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	abs, err := h.safeName(header.Filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	if err := os.MkdirAll(h.mediaPath(), 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to create media dir"))
		return
	}

	dst, err := os.Create(abs)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to create file"))
		return
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to write file"))
		return
	}

	name := filepath.Base(abs)
	writeJSON(w, http.StatusCreated, map[string]any{
		"filename": name,
		"kind":     mediaExts[strings.ToLower(filepath.Ext(name))],
		"size":     written,
		"url":      "/api/media/" + name,
	})
}
