package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"community-tickets/internal/models"
	"community-tickets/internal/services"

	"github.com/go-chi/chi/v5"
)

// LeadHandler handles the public lead intake form and the admin
// console's lead pipeline
type LeadHandler struct {
	leads *services.LeadService
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leads *services.LeadService) *LeadHandler {
	return &LeadHandler{leads: leads}
}

// CreateLead handles POST /api/leads (public intake form)
func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req models.LeadCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lead, err := h.leads.SubmitLead(&req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":   true,
		"lead": lead,
	})
}

// ListLeads handles GET /api/admin/leads. With export=csv the matching
// leads stream back as a CSV download instead of a JSON page.
func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	filters := leadFilters(r)

	if r.URL.Query().Get("export") == "csv" {
		data, err := h.leads.ExportCSV(filters)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="leads-%s.csv"`, time.Now().Format("2006-01-02")))
		w.Write(data)
		return
	}

	leads, total, err := h.leads.ListLeads(filters)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"leads": leads,
		"total": total,
	})
}

// GetLead handles GET /api/admin/leads/{id}
func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	h.withLeadID(w, r, h.leads.GetLead)
}

// UpdateLead handles PUT /api/admin/leads/{id}
func (h *LeadHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	var req models.LeadUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lead, err := h.leads.UpdateLead(id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"lead": lead,
	})
}

// DeleteLead handles DELETE /api/admin/leads/{id}
func (h *LeadHandler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	if err := h.leads.DeleteLead(id); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// ApproveLead handles POST /api/admin/leads/{id}/approve
func (h *LeadHandler) ApproveLead(w http.ResponseWriter, r *http.Request) {
	h.withLeadID(w, r, h.leads.ApproveLead)
}

// RejectLead handles POST /api/admin/leads/{id}/reject
func (h *LeadHandler) RejectLead(w http.ResponseWriter, r *http.Request) {
	h.withLeadID(w, r, h.leads.RejectLead)
}

// RevokeLead handles POST /api/admin/leads/{id}/revoke
func (h *LeadHandler) RevokeLead(w http.ResponseWriter, r *http.Request) {
	h.withLeadID(w, r, h.leads.RevokeLead)
}

// ResendInvite handles POST /api/admin/leads/{id}/resend
func (h *LeadHandler) ResendInvite(w http.ResponseWriter, r *http.Request) {
	h.withLeadID(w, r, h.leads.ResendInvite)
}

// withLeadID parses the lead ID and runs a single-lead service action
func (h *LeadHandler) withLeadID(w http.ResponseWriter, r *http.Request, action func(int) (*models.Lead, error)) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	lead, err := action(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"lead": lead,
	})
}

// leadFilters parses the admin list filters from the query string
func leadFilters(r *http.Request) models.LeadSearchFilters {
	query := r.URL.Query()

	filters := models.LeadSearchFilters{
		Status:      models.LeadStatus(query.Get("status")),
		PackageCode: query.Get("package"),
		Search:      query.Get("q"),
	}

	if from := query.Get("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filters.DateFrom = &t
		}
	}
	if to := query.Get("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			// Include the whole end day.
			end := t.Add(24*time.Hour - time.Nanosecond)
			filters.DateTo = &end
		}
	}
	if limit := query.Get("limit"); limit != "" {
		filters.Limit, _ = strconv.Atoi(limit)
	}
	if offset := query.Get("offset"); offset != "" {
		filters.Offset, _ = strconv.Atoi(offset)
	}

	return filters
}
