package models

import (
	"errors"
	"time"
)

// TicketStatus represents the status of a ticket
type TicketStatus string

const (
	TicketActive   TicketStatus = "active"
	TicketUsed     TicketStatus = "used"
	TicketRefunded TicketStatus = "refunded"
)

// Ticket represents an individual ticket issued for a completed order.
// The QR token is an opaque string rendered as a scannable code for entry.
type Ticket struct {
	ID        int          `json:"id" db:"id"`
	OrderID   int          `json:"orderId" db:"order_id"`
	TierID    int          `json:"tierId" db:"tier_id"`
	TierName  string       `json:"tierName" db:"tier_name"`
	QRToken   string       `json:"qrToken" db:"qr_token"`
	Status    TicketStatus `json:"status" db:"status"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
}

// Validate validates the ticket data
func (t *Ticket) Validate() error {
	if t.QRToken == "" {
		return errors.New("QR token is required")
	}

	if len(t.QRToken) > 255 {
		return errors.New("QR token must be less than 255 characters")
	}

	return t.validateStatus()
}

// validateStatus validates the ticket status
func (t *Ticket) validateStatus() error {
	switch t.Status {
	case TicketActive, TicketUsed, TicketRefunded:
		return nil
	default:
		return errors.New("invalid ticket status")
	}
}

// IsActive returns true if the ticket is active
func (t *Ticket) IsActive() bool {
	return t.Status == TicketActive
}

// IsUsed returns true if the ticket has been used
func (t *Ticket) IsUsed() bool {
	return t.Status == TicketUsed
}

// CanBeUsed returns true if the ticket can be used (scanned)
func (t *Ticket) CanBeUsed() bool {
	return t.Status == TicketActive
}

// CanBeRefunded returns true if the ticket can be refunded
func (t *Ticket) CanBeRefunded() bool {
	return t.Status == TicketActive
}
