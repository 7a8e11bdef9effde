package models

import (
	"errors"
	"strings"
	"time"
)

// EventStatus represents the publication status of an event
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventCancelled EventStatus = "cancelled"
)

// Event represents a community event in the system
type Event struct {
	ID           int           `json:"id" db:"id"`
	CommunityID  int           `json:"communityId" db:"community_id"`
	Title        string        `json:"title" db:"title"`
	Slug         string        `json:"slug" db:"slug"`
	Description  string        `json:"description,omitempty" db:"description"`
	Location     string        `json:"location,omitempty" db:"location"`
	Category     string        `json:"category,omitempty" db:"category"`
	StartTime    time.Time     `json:"startTime" db:"start_time"`
	EndTime      time.Time     `json:"endTime" db:"end_time"`
	Status       EventStatus   `json:"status" db:"status"`
	RefundPolicy string        `json:"refundPolicy,omitempty" db:"refund_policy"`
	FeeStructure *FeeStructure `json:"feeStructure,omitempty"`
	Tax          TaxSettings   `json:"tax"`
	Tiers        []*TicketTier `json:"tiers,omitempty"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt" db:"updated_at"`
}

// EventCreateRequest represents the data needed to create a new event
type EventCreateRequest struct {
	CommunityID  int           `json:"communityId"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Location     string        `json:"location"`
	Category     string        `json:"category"`
	StartTime    time.Time     `json:"startTime"`
	EndTime      time.Time     `json:"endTime"`
	RefundPolicy string        `json:"refundPolicy"`
	FeeStructure *FeeStructure `json:"feeStructure"`
	CollectTax   bool          `json:"collectTax"`
	GSTPercent   float64       `json:"gstPercent"`
	PSTPercent   float64       `json:"pstPercent"`
}

// EventSearchFilters represents filters for browsing events
type EventSearchFilters struct {
	Category string
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// Validate validates the event data
func (e *Event) Validate() error {
	if err := validateEventTitle(e.Title); err != nil {
		return err
	}

	if err := validateEventTimes(e.StartTime, e.EndTime); err != nil {
		return err
	}

	return validateEventStatus(e.Status)
}

// Validate validates event creation data
func (req *EventCreateRequest) Validate() error {
	if err := validateEventTitle(req.Title); err != nil {
		return err
	}

	return validateEventTimes(req.StartTime, req.EndTime)
}

// TaxSettings derives the event's tax configuration from a creation request.
// The creation flow uses collectTax plus named percentages; a collectTax
// without percentages enables both taxes at their defaults.
func (req *EventCreateRequest) TaxSettings() TaxSettings {
	if !req.CollectTax {
		return TaxSettings{}
	}

	return TaxSettings{
		HasGST:     true,
		HasPST:     true,
		GSTPercent: req.GSTPercent,
		PSTPercent: req.PSTPercent,
	}
}

// validateEventTitle validates an event title
func validateEventTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("event title is required")
	}

	if len(title) > 200 {
		return errors.New("event title must be less than 200 characters")
	}

	return nil
}

// validateEventTimes validates event start and end times
func validateEventTimes(start, end time.Time) error {
	if start.IsZero() {
		return errors.New("event start time is required")
	}

	if end.IsZero() {
		return errors.New("event end time is required")
	}

	if start.After(end) {
		return errors.New("event start time must be before end time")
	}

	return nil
}

// validateEventStatus validates an event status
func validateEventStatus(status EventStatus) error {
	switch status {
	case EventDraft, EventPublished, EventCancelled:
		return nil
	default:
		return errors.New("invalid event status")
	}
}

// IsPublished returns true if the event is publicly visible
func (e *Event) IsPublished() bool {
	return e.Status == EventPublished
}

// TierByID returns the tier with the given ID, or nil if absent
func (e *Event) TierByID(tierID int) *TicketTier {
	for _, tier := range e.Tiers {
		if tier.ID == tierID {
			return tier
		}
	}
	return nil
}

// TierByName returns the tier with the given name, or nil if absent
func (e *Event) TierByName(name string) *TicketTier {
	for _, tier := range e.Tiers {
		if tier.Name == name {
			return tier
		}
	}
	return nil
}
