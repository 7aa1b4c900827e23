package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gharbazaar/backend/internal/api/middleware"
	"github.com/gharbazaar/backend/internal/application/services"
	"github.com/gharbazaar/backend/internal/domain/entities"
)

// PropertyHandler handles listing-related HTTP requests
type PropertyHandler struct {
	service *services.PropertyService
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(service *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// ListProperties handles GET /api/properties
func (h *PropertyHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := h.service.GetAll(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"properties": properties,
		"count":      len(properties),
	})
}

// ListAvailableProperties handles GET /api/properties/available
func (h *PropertyHandler) ListAvailableProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := h.service.GetAvailable(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"properties": properties,
		"count":      len(properties),
	})
}

// SearchProperties handles GET /api/properties/search. Structured filters
// arrive as query parameters; an optional q parameter adds a full-text query
// on top.
func (h *PropertyHandler) SearchProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	raw := entities.RawCriteria{
		Status:       q.Get("status"),
		PropertyType: q.Get("type"),
		City:         q.Get("city"),
		Area:         q.Get("area"),
	}

	var err error
	if raw.MinBedrooms, err = queryInt64(q.Get("min_bedrooms")); err != nil {
		respondWithError(w, http.StatusBadRequest, "min_bedrooms must be an integer")
		return
	}
	if raw.MinBathrooms, err = queryInt64(q.Get("min_bathrooms")); err != nil {
		respondWithError(w, http.StatusBadRequest, "min_bathrooms must be an integer")
		return
	}
	if raw.MinPrice, err = queryInt64(q.Get("min_price")); err != nil {
		respondWithError(w, http.StatusBadRequest, "min_price must be an integer")
		return
	}
	if raw.MaxPrice, err = queryInt64(q.Get("max_price")); err != nil {
		respondWithError(w, http.StatusBadRequest, "max_price must be an integer")
		return
	}

	criteria := entities.BuildCriteria(raw)

	var properties []*entities.Property
	if text := q.Get("q"); text != "" {
		properties, err = h.service.SearchText(r.Context(), text, criteria)
	} else {
		properties, err = h.service.Search(r.Context(), criteria)
	}
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"properties": properties,
		"count":      len(properties),
	})
}

// GetProperty handles GET /api/properties/{id}
func (h *PropertyHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "property id must be an integer")
		return
	}

	property, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, property)
}

// CreateProperty handles POST /api/properties
func (h *PropertyHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var property entities.Property
	if err := json.NewDecoder(r.Body).Decode(&property); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.service.Create(r.Context(), middleware.Principal(r.Context()), &property)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"id":       id,
		"property": property,
	})
}

// UpdateProperty handles PUT /api/properties/{id}. The path id is
// authoritative; an id in the body is ignored.
func (h *PropertyHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "property id must be an integer")
		return
	}

	var property entities.Property
	if err := json.NewDecoder(r.Body).Decode(&property); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	property.ID = id

	if err := h.service.Update(r.Context(), middleware.Principal(r.Context()), &property); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, property)
}

// DeleteProperty handles DELETE /api/properties/{id}
func (h *PropertyHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "property id must be an integer")
		return
	}

	if err := h.service.Delete(r.Context(), middleware.Principal(r.Context()), id); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMyProperties handles GET /api/my/properties
func (h *PropertyHandler) ListMyProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := h.service.GetMyListings(r.Context(), middleware.Principal(r.Context()))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"properties": properties,
		"count":      len(properties),
	})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func queryInt64(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
