package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/lehmann314159/recipes/internal/store"
)

// ImageHandler serves the images of the self-hosted backend.
type ImageHandler struct {
	blobs       store.BlobReader
	bucket      string
	contentType string
	log         zerolog.Logger
}

func NewImageHandler(blobs store.BlobReader, bucket, contentType string, log zerolog.Logger) *ImageHandler {
	return &ImageHandler{blobs: blobs, bucket: bucket, contentType: contentType, log: log}
}

func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	rc, err := h.blobs.Open(r.Context(), h.bucket, chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("open image")
		http.Error(w, "Image unavailable", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", h.contentType)
	w.Header().Set("Cache-Control", "no-cache")
	io.Copy(w, rc)
}
