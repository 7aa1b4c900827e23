package handlers

import (
	"io"
	"net/http"

	"github.com/gharbazaar/backend/internal/api/middleware"
	"github.com/gharbazaar/backend/internal/domain/providers"
	apperrors "github.com/gharbazaar/backend/pkg/errors"
)

// maxUploadBytes caps a single image upload at 10 MiB
const maxUploadBytes = 10 << 20

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// MediaHandler handles image upload and retrieval
type MediaHandler struct {
	store providers.MediaStore
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(store providers.MediaStore) *MediaHandler {
	return &MediaHandler{store: store}
}

// Upload handles POST /api/media. The request body is the raw image; the
// Content-Type header names its format.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if middleware.Principal(r.Context()) == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required to upload media")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if _, ok := allowedImageTypes[contentType]; !ok {
		respondWithError(w, http.StatusUnsupportedMediaType, "unsupported image type")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, "image too large")
		return
	}
	if len(data) == 0 {
		respondWithError(w, http.StatusBadRequest, "empty upload")
		return
	}

	ref, err := h.store.Upload(r.Context(), data, contentType)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, ref)
}

// Get handles GET /api/media/{key...}
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		respondWithError(w, http.StatusBadRequest, "media key is required")
		return
	}

	data, err := h.store.Get(r.Context(), key)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			respondWithError(w, http.StatusNotFound, "media not found")
			return
		}
		respondWithAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
