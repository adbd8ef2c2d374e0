package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/demo-content/pkg/democontent"
)

// MediaHandler serves stored media read-only
type MediaHandler struct {
	store  democontent.BlobStore
	logger *slog.Logger
}

// NewMediaHandler creates a handler serving files from store
func NewMediaHandler(store democontent.BlobStore, logger *slog.Logger) *MediaHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaHandler{store: store, logger: logger}
}

// Routes returns the media routes, to be mounted under the media URL prefix
func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/*", h.Serve)
	return r
}

// Serve streams the object named by the wildcard path
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if key == "" {
		http.NotFound(w, r)
		return
	}

	reader, err := h.store.Download(r.Context(), key)
	if err != nil {
		if errors.Is(err, democontent.ErrObjectNotFound) || errors.Is(err, democontent.ErrInvalidObjectKey) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("Failed to read media", "key", key, "error", err)
		http.Error(w, "Failed to read media", http.StatusInternalServerError)
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("Failed to stream media", "key", key, "error", err)
	}
}
