package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gharbazaar/backend/internal/api/middleware"
	"github.com/gharbazaar/backend/internal/application/services"
	"github.com/gharbazaar/backend/internal/domain/entities"
)

// ProfileHandler handles user profile HTTP requests
type ProfileHandler struct {
	service *services.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(service *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetProfile handles GET /api/profile. A caller without a stored profile gets
// a 200 with a null profile, not a 404.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Get(r.Context(), middleware.Principal(r.Context()))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"profile": profile,
	})
}

// SaveProfile handles PUT /api/profile
func (h *ProfileHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var profile entities.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.Save(r.Context(), middleware.Principal(r.Context()), &profile); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"profile": profile,
	})
}

type setRoleRequest struct {
	Principal string `json:"principal"`
	Role      string `json:"role"`
}

// SetRole handles POST /api/admin/roles
func (h *ProfileHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Principal == "" {
		respondWithError(w, http.StatusBadRequest, "principal is required")
		return
	}

	callerRole := entities.UserRole(middleware.Role(r.Context()))
	if err := h.service.SetRole(r.Context(), callerRole, req.Principal, entities.UserRole(req.Role)); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"principal": req.Principal,
		"role":      req.Role,
	})
}
