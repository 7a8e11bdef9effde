package models

import (
	"errors"
	"time"
)

// Discount types select between a percentage and a fixed-amount reduction
const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

// DiscountCode represents a code applied to an order's subtotal before
// tax and fees are computed
type DiscountCode struct {
	ID          int        `json:"id" db:"id"`
	Code        string     `json:"code" db:"code"`
	EventID     *int       `json:"eventId,omitempty" db:"event_id"` // nil means platform-wide
	Type        string     `json:"type" db:"discount_type"`
	Percent     float64    `json:"percent,omitempty" db:"percent"`
	AmountCents int        `json:"amountCents,omitempty" db:"amount_cents"`
	Active      bool       `json:"active" db:"active"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

// Validate validates the discount code data
func (d *DiscountCode) Validate() error {
	if d.Code == "" {
		return errors.New("discount code is required")
	}

	switch d.Type {
	case DiscountPercent:
		if d.Percent <= 0 || d.Percent > 100 {
			return errors.New("discount percent must be between 0 and 100")
		}
	case DiscountFixed:
		if d.AmountCents <= 0 {
			return errors.New("discount amount must be greater than 0")
		}
	default:
		return errors.New("invalid discount type")
	}

	return nil
}

// IsUsable returns true if the code may currently be applied to an order
// for the given event
func (d *DiscountCode) IsUsable(eventID int) bool {
	if !d.Active {
		return false
	}

	if d.EventID != nil && *d.EventID != eventID {
		return false
	}

	if d.ExpiresAt != nil && time.Now().After(*d.ExpiresAt) {
		return false
	}

	return true
}

// Apply returns the discount in cents for the given subtotal, never
// exceeding the subtotal itself
func (d *DiscountCode) Apply(subtotalCents int) int {
	var discount int

	switch d.Type {
	case DiscountPercent:
		discount = int(float64(subtotalCents)*d.Percent/100 + 0.5)
	case DiscountFixed:
		discount = d.AmountCents
	}

	if discount > subtotalCents {
		discount = subtotalCents
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
