package models

import (
	"errors"
	"strings"
	"time"
)

// Community represents an organizer community that hosts events
type Community struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Slug         string    `json:"slug" db:"slug"`
	Description  string    `json:"description,omitempty" db:"description"`
	BusinessName string    `json:"businessName,omitempty" db:"business_name"`
	ContactEmail string    `json:"contactEmail" db:"contact_email"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// CommunityCreateRequest represents the data needed to create a community
type CommunityCreateRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	BusinessName string `json:"businessName"`
	ContactEmail string `json:"contactEmail"`
}

// Validate validates community creation data
func (req *CommunityCreateRequest) Validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return errors.New("community name is required")
	}

	if len(req.Name) > 100 {
		return errors.New("community name must be less than 100 characters")
	}

	if req.ContactEmail == "" {
		return errors.New("community contact email is required")
	}

	if !emailRegex.MatchString(req.ContactEmail) {
		return errors.New("community contact email format is invalid")
	}

	return nil
}
