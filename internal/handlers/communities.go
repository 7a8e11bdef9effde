package handlers

import (
	"net/http"

	"community-tickets/internal/models"
	"community-tickets/internal/services"

	"github.com/go-chi/chi/v5"
)

// CommunityHandler handles community organizer endpoints
type CommunityHandler struct {
	communities *services.CommunityService
}

// NewCommunityHandler creates a new community handler
func NewCommunityHandler(communities *services.CommunityService) *CommunityHandler {
	return &CommunityHandler{communities: communities}
}

// ListCommunities handles GET /api/communities
func (h *CommunityHandler) ListCommunities(w http.ResponseWriter, r *http.Request) {
	communities, err := h.communities.ListCommunities()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":          true,
		"communities": communities,
	})
}

// GetCommunity handles GET /api/communities/{slug}
func (h *CommunityHandler) GetCommunity(w http.ResponseWriter, r *http.Request) {
	community, err := h.communities.GetCommunity(chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":        true,
		"community": community,
	})
}

// CreateCommunity handles POST /api/admin/communities
func (h *CommunityHandler) CreateCommunity(w http.ResponseWriter, r *http.Request) {
	var req models.CommunityCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	community, err := h.communities.CreateCommunity(&req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":        true,
		"community": community,
	})
}
