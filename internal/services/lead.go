package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"time"

	"community-tickets/internal/models"

	"github.com/google/uuid"
)

// LeadRepository defines the lead data operations the services need
type LeadRepository interface {
	Create(req *models.LeadCreateRequest) (*models.Lead, error)
	GetByID(id int) (*models.Lead, error)
	Update(id int, req *models.LeadUpdateRequest) (*models.Lead, error)
	Delete(id int) error
	Search(filters models.LeadSearchFilters) ([]*models.Lead, int, error)
	SetStatus(id int, status models.LeadStatus, inviteToken string) (*models.Lead, error)
	RecordResend(id int) (*models.Lead, error)
}

// LeadService handles the admin console's lead pipeline: intake,
// review, approval with invite tokens, and CSV export.
type LeadService struct {
	leads LeadRepository
}

// NewLeadService creates a new lead service
func NewLeadService(leads LeadRepository) *LeadService {
	return &LeadService{leads: leads}
}

// SubmitLead registers an inbound organizer application
func (s *LeadService) SubmitLead(req *models.LeadCreateRequest) (*models.Lead, error) {
	return s.leads.Create(req)
}

// GetLead retrieves a lead by ID
func (s *LeadService) GetLead(id int) (*models.Lead, error) {
	return s.leads.GetByID(id)
}

// UpdateLead updates a lead's editable fields
func (s *LeadService) UpdateLead(id int, req *models.LeadUpdateRequest) (*models.Lead, error) {
	return s.leads.Update(id, req)
}

// DeleteLead removes a lead
func (s *LeadService) DeleteLead(id int) error {
	return s.leads.Delete(id)
}

// ListLeads retrieves leads matching the admin filters plus the total
// match count for pagination
func (s *LeadService) ListLeads(filters models.LeadSearchFilters) ([]*models.Lead, int, error) {
	return s.leads.Search(filters)
}

// ApproveLead approves a lead and issues its invite token. Approving a
// revoked lead re-issues a fresh token.
func (s *LeadService) ApproveLead(id int) (*models.Lead, error) {
	lead, err := s.leads.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !lead.CanBeApproved() {
		return nil, fmt.Errorf("lead is %s: %w", lead.Status, models.ErrInvalidInput)
	}

	token := uuid.NewString()
	approved, err := s.leads.SetStatus(id, models.LeadApproved, token)
	if err != nil {
		return nil, err
	}

	log.Printf("Leads: approved lead %d (%s)", approved.ID, approved.Email)
	return approved, nil
}

// RejectLead rejects a pending lead
func (s *LeadService) RejectLead(id int) (*models.Lead, error) {
	lead, err := s.leads.GetByID(id)
	if err != nil {
		return nil, err
	}

	if lead.Status != models.LeadPending {
		return nil, fmt.Errorf("lead is %s: %w", lead.Status, models.ErrInvalidInput)
	}

	return s.leads.SetStatus(id, models.LeadRejected, "")
}

// RevokeLead revokes an approved lead's access, invalidating its invite
func (s *LeadService) RevokeLead(id int) (*models.Lead, error) {
	lead, err := s.leads.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !lead.CanBeRevoked() {
		return nil, fmt.Errorf("lead is %s: %w", lead.Status, models.ErrInvalidInput)
	}

	return s.leads.SetStatus(id, models.LeadRevoked, "")
}

// ResendInvite records an invite resend for an approved lead. The token
// stays the same; the delivery channel is outside this service.
func (s *LeadService) ResendInvite(id int) (*models.Lead, error) {
	lead, err := s.leads.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !lead.CanResendInvite() {
		return nil, fmt.Errorf("lead has no active invite: %w", models.ErrInvalidInput)
	}

	return s.leads.RecordResend(id)
}

// ExportCSV renders the leads matching the filters as a CSV document.
// The export ignores pagination and returns every match.
func (s *LeadService) ExportCSV(filters models.LeadSearchFilters) ([]byte, error) {
	filters.Limit = 500
	filters.Offset = 0

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"id", "name", "email", "phone", "community", "package", "status", "resends", "created"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for {
		leads, total, err := s.leads.Search(filters)
		if err != nil {
			return nil, err
		}

		for _, lead := range leads {
			record := []string{
				strconv.Itoa(lead.ID),
				lead.Name,
				lead.Email,
				lead.Phone,
				lead.Community,
				lead.PackageCode,
				string(lead.Status),
				strconv.Itoa(lead.ResendCount),
				lead.CreatedAt.Format(time.RFC3339),
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}

		filters.Offset += len(leads)
		if len(leads) == 0 || filters.Offset >= total {
			break
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to finalize CSV export: %w", err)
	}

	return buf.Bytes(), nil
}
