package models

import (
	"errors"
	"strings"
	"time"
)

// LeadStatus represents the review status of a community lead
type LeadStatus string

const (
	LeadPending  LeadStatus = "pending"
	LeadApproved LeadStatus = "approved"
	LeadRejected LeadStatus = "rejected"
	LeadRevoked  LeadStatus = "revoked"
)

// Lead represents an inbound community-organizer application managed
// from the admin console
type Lead struct {
	ID          int        `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Email       string     `json:"email" db:"email"`
	Phone       string     `json:"phone,omitempty" db:"phone"`
	Community   string     `json:"community,omitempty" db:"community"`
	PackageCode string     `json:"packageCode,omitempty" db:"package_code"`
	Message     string     `json:"message,omitempty" db:"message"`
	Status      LeadStatus `json:"status" db:"status"`
	InviteToken string     `json:"inviteToken,omitempty" db:"invite_token"`
	ResendCount int        `json:"resendCount" db:"resend_count"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// LeadCreateRequest represents the data needed to register a new lead
type LeadCreateRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Community   string `json:"community"`
	PackageCode string `json:"packageCode"`
	Message     string `json:"message"`
}

// LeadUpdateRequest represents the fields an admin may edit on a lead
type LeadUpdateRequest struct {
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Community   string     `json:"community"`
	PackageCode string     `json:"packageCode"`
	Status      LeadStatus `json:"status"`
}

// LeadSearchFilters represents the admin console's list filters
type LeadSearchFilters struct {
	Status      LeadStatus
	PackageCode string
	Search      string
	DateFrom    *time.Time
	DateTo      *time.Time
	Limit       int
	Offset      int
}

// Validate validates lead creation data
func (req *LeadCreateRequest) Validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return errors.New("lead name is required")
	}

	if req.Email == "" {
		return errors.New("lead email is required")
	}

	if !emailRegex.MatchString(req.Email) {
		return errors.New("lead email format is invalid")
	}

	return nil
}

// Validate validates lead update data
func (req *LeadUpdateRequest) Validate() error {
	if req.Status == "" {
		return nil // status unchanged
	}
	return validateLeadStatus(req.Status)
}

// validateLeadStatus validates a lead status
func validateLeadStatus(status LeadStatus) error {
	switch status {
	case LeadPending, LeadApproved, LeadRejected, LeadRevoked:
		return nil
	default:
		return errors.New("invalid lead status")
	}
}

// CanBeApproved returns true if the lead can be approved
func (l *Lead) CanBeApproved() bool {
	return l.Status == LeadPending || l.Status == LeadRevoked
}

// CanBeRevoked returns true if the lead's approval can be revoked
func (l *Lead) CanBeRevoked() bool {
	return l.Status == LeadApproved
}

// CanResendInvite returns true if an invite can be resent to the lead
func (l *Lead) CanResendInvite() bool {
	return l.Status == LeadApproved && l.InviteToken != ""
}
