package services

import (
	"strings"
	"testing"
	"time"

	"community-tickets/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLeadRepository struct {
	leads  map[int]*models.Lead
	nextID int
}

func newMockLeadRepository() *mockLeadRepository {
	return &mockLeadRepository{leads: make(map[int]*models.Lead), nextID: 1}
}

func (m *mockLeadRepository) Create(req *models.LeadCreateRequest) (*models.Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lead := &models.Lead{
		ID:          m.nextID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Community:   req.Community,
		PackageCode: req.PackageCode,
		Message:     req.Message,
		Status:      models.LeadPending,
		CreatedAt:   time.Now(),
	}
	m.leads[lead.ID] = lead
	m.nextID++
	return lead, nil
}

func (m *mockLeadRepository) GetByID(id int) (*models.Lead, error) {
	lead, exists := m.leads[id]
	if !exists {
		return nil, models.ErrLeadNotFound
	}
	return lead, nil
}

func (m *mockLeadRepository) Update(id int, req *models.LeadUpdateRequest) (*models.Lead, error) {
	lead, exists := m.leads[id]
	if !exists {
		return nil, models.ErrLeadNotFound
	}
	if req.Name != "" {
		lead.Name = req.Name
	}
	if req.Status != "" {
		lead.Status = req.Status
	}
	lead.Phone = req.Phone
	lead.Community = req.Community
	lead.PackageCode = req.PackageCode
	return lead, nil
}

func (m *mockLeadRepository) Delete(id int) error {
	if _, exists := m.leads[id]; !exists {
		return models.ErrLeadNotFound
	}
	delete(m.leads, id)
	return nil
}

func (m *mockLeadRepository) Search(filters models.LeadSearchFilters) ([]*models.Lead, int, error) {
	var matched []*models.Lead
	for _, lead := range m.leads {
		if filters.Status != "" && lead.Status != filters.Status {
			continue
		}
		matched = append(matched, lead)
	}

	total := len(matched)
	if filters.Offset >= total {
		return nil, total, nil
	}
	return matched[filters.Offset:], total, nil
}

func (m *mockLeadRepository) SetStatus(id int, status models.LeadStatus, inviteToken string) (*models.Lead, error) {
	lead, exists := m.leads[id]
	if !exists {
		return nil, models.ErrLeadNotFound
	}
	lead.Status = status
	lead.InviteToken = inviteToken
	return lead, nil
}

func (m *mockLeadRepository) RecordResend(id int) (*models.Lead, error) {
	lead, exists := m.leads[id]
	if !exists {
		return nil, models.ErrLeadNotFound
	}
	lead.ResendCount++
	return lead, nil
}

func leadServiceFixture(t *testing.T) (*LeadService, *models.Lead) {
	t.Helper()
	service := NewLeadService(newMockLeadRepository())

	lead, err := service.SubmitLead(&models.LeadCreateRequest{
		Name:        "Kai Organizer",
		Email:       "kai@example.com",
		Community:   "Riverside Makers",
		PackageCode: "starter",
	})
	require.NoError(t, err)

	return service, lead
}

func TestLeadApprovalLifecycle(t *testing.T) {
	service, lead := leadServiceFixture(t)

	approved, err := service.ApproveLead(lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadApproved, approved.Status)
	assert.NotEmpty(t, approved.InviteToken)

	// Approving twice is rejected.
	_, err = service.ApproveLead(lead.ID)
	assert.Error(t, err)

	resent, err := service.ResendInvite(lead.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resent.ResendCount)

	revoked, err := service.RevokeLead(lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadRevoked, revoked.Status)
	assert.Empty(t, revoked.InviteToken)

	// A revoked lead has no invite to resend.
	_, err = service.ResendInvite(lead.ID)
	assert.Error(t, err)

	// But it can be re-approved with a fresh token.
	reapproved, err := service.ApproveLead(lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadApproved, reapproved.Status)
	assert.NotEmpty(t, reapproved.InviteToken)
}

func TestLeadRejection(t *testing.T) {
	service, lead := leadServiceFixture(t)

	rejected, err := service.RejectLead(lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadRejected, rejected.Status)

	// Rejected leads cannot be approved.
	_, err = service.ApproveLead(lead.ID)
	assert.Error(t, err)
}

func TestLeadExportCSV(t *testing.T) {
	service, lead := leadServiceFixture(t)
	_, err := service.SubmitLead(&models.LeadCreateRequest{
		Name:  "Mo Planner",
		Email: "mo@example.com",
	})
	require.NoError(t, err)

	data, err := service.ExportCSV(models.LeadSearchFilters{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,name,email,phone,community,package,status,resends,created", lines[0])
	assert.Contains(t, string(data), lead.Email)
	assert.Contains(t, string(data), "mo@example.com")
}
