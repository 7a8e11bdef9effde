package handlers

import (
	"net/http"
	"strconv"
	"time"

	"community-tickets/internal/models"
	"community-tickets/internal/services"

	"github.com/go-chi/chi/v5"
)

// EventHandler handles the public event browse and event page API plus
// the admin event management endpoints
type EventHandler struct {
	events *services.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// ListEvents handles GET /api/events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filters := models.EventSearchFilters{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}
	if filters.Search == "" {
		filters.Search = r.URL.Query().Get("q")
	}

	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filters.DateTo = &t
		}
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		filters.Limit, _ = strconv.Atoi(limit)
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		filters.Offset, _ = strconv.Atoi(offset)
	}

	events, err := h.events.SearchEvents(filters)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"events": events,
	})
}

// GetEvent handles GET /api/events/{slug}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	page, err := h.events.GetEventPage(chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":        true,
		"event":     page.Event,
		"organizer": page.Organizer,
		"tiers":     page.Tiers,
	})
}

// CreateEvent handles POST /api/admin/events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.EventCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.events.CreateEvent(&req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":    true,
		"event": event,
	})
}

// PublishEvent handles POST /api/admin/events/{id}/publish
func (h *EventHandler) PublishEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	if err := h.events.PublishEvent(id); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// AddTier handles POST /api/admin/events/{id}/tiers
func (h *EventHandler) AddTier(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req models.TierCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.EventID = id

	tier, err := h.events.AddTier(&req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":   true,
		"tier": tier,
	})
}
