package models

import (
	"errors"
	"strings"
	"time"
)

// TicketTier represents one purchasable ticket category for an event
type TicketTier struct {
	ID          int        `json:"id" db:"id"`
	EventID     int        `json:"eventId" db:"event_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description,omitempty" db:"description"`
	PriceCents  int        `json:"priceCents" db:"price_cents"`
	Capacity    *int       `json:"capacity" db:"capacity"` // nil means unlimited
	SoldCount   int        `json:"soldCount" db:"sold_count"`
	MinPerOrder int        `json:"minPerOrder" db:"min_per_order"`
	MaxPerOrder int        `json:"maxPerOrder" db:"max_per_order"`
	SaleStart   *time.Time `json:"saleStart,omitempty" db:"sale_start"`
	SaleEnd     *time.Time `json:"saleEnd,omitempty" db:"sale_end"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

// TierCreateRequest represents the data needed to create a new ticket tier
type TierCreateRequest struct {
	EventID     int        `json:"eventId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	PriceCents  int        `json:"priceCents"`
	Capacity    *int       `json:"capacity"`
	MinPerOrder int        `json:"minPerOrder"`
	MaxPerOrder int        `json:"maxPerOrder"`
	SaleStart   *time.Time `json:"saleStart"`
	SaleEnd     *time.Time `json:"saleEnd"`
}

// Validate validates the ticket tier data
func (t *TicketTier) Validate() error {
	if err := validateTierName(t.Name); err != nil {
		return err
	}

	if err := validateTierPrice(t.PriceCents); err != nil {
		return err
	}

	if err := validateTierCapacity(t.Capacity); err != nil {
		return err
	}

	if err := validateTierOrderLimits(t.MinPerOrder, t.MaxPerOrder); err != nil {
		return err
	}

	return validateTierSaleWindow(t.SaleStart, t.SaleEnd)
}

// Validate validates tier creation data
func (req *TierCreateRequest) Validate() error {
	if err := validateTierName(req.Name); err != nil {
		return err
	}

	if err := validateTierPrice(req.PriceCents); err != nil {
		return err
	}

	if err := validateTierCapacity(req.Capacity); err != nil {
		return err
	}

	if err := validateTierOrderLimits(req.MinPerOrder, req.MaxPerOrder); err != nil {
		return err
	}

	return validateTierSaleWindow(req.SaleStart, req.SaleEnd)
}

// validateTierName validates a tier name
func validateTierName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("tier name is required")
	}

	if len(name) > 100 {
		return errors.New("tier name must be less than 100 characters")
	}

	return nil
}

// validateTierPrice validates a tier price
func validateTierPrice(priceCents int) error {
	if priceCents < 0 {
		return errors.New("tier price cannot be negative")
	}

	// Maximum price of $10,000 (1,000,000 cents)
	if priceCents > 1000000 {
		return errors.New("tier price cannot exceed $10,000")
	}

	return nil
}

// validateTierCapacity validates a tier capacity
func validateTierCapacity(capacity *int) error {
	if capacity == nil {
		return nil // unlimited
	}

	if *capacity <= 0 {
		return errors.New("tier capacity must be greater than 0")
	}

	if *capacity > 100000 {
		return errors.New("tier capacity cannot exceed 100,000")
	}

	return nil
}

// validateTierOrderLimits validates per-order quantity bounds
func validateTierOrderLimits(minPerOrder, maxPerOrder int) error {
	if minPerOrder <= 0 {
		return errors.New("minimum per order must be greater than 0")
	}

	if maxPerOrder <= 0 {
		return errors.New("maximum per order must be greater than 0")
	}

	if minPerOrder > maxPerOrder {
		return errors.New("minimum per order cannot exceed maximum per order")
	}

	return nil
}

// validateTierSaleWindow validates an optional sale window
func validateTierSaleWindow(saleStart, saleEnd *time.Time) error {
	if saleStart == nil || saleEnd == nil {
		return nil // open-ended sale
	}

	if saleStart.After(*saleEnd) {
		return errors.New("sale start date must be before sale end date")
	}

	return nil
}

// Remaining returns the number of unsold tickets, clamped to zero.
// A nil result means the tier has unlimited capacity.
func (t *TicketTier) Remaining() *int {
	if t.Capacity == nil {
		return nil
	}

	remaining := *t.Capacity - t.SoldCount
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// IsSoldOut returns true if the tier has no remaining capacity
func (t *TicketTier) IsSoldOut() bool {
	if t.Capacity == nil {
		return false
	}
	return t.SoldCount >= *t.Capacity
}

// IsOnSale returns true if the tier is within its sale window.
// Tiers without a window are always on sale.
func (t *TicketTier) IsOnSale() bool {
	now := time.Now()

	if t.SaleStart != nil && now.Before(*t.SaleStart) {
		return false
	}
	if t.SaleEnd != nil && now.After(*t.SaleEnd) {
		return false
	}
	return true
}

// SaleNotStarted returns true if the sale hasn't started yet
func (t *TicketTier) SaleNotStarted() bool {
	return t.SaleStart != nil && time.Now().Before(*t.SaleStart)
}

// SaleEnded returns true if the sale has ended
func (t *TicketTier) SaleEnded() bool {
	return t.SaleEnd != nil && time.Now().After(*t.SaleEnd)
}

// PriceInCurrency returns the price in the main currency unit as a float.
// Display formatting only; all arithmetic stays in cents.
func (t *TicketTier) PriceInCurrency() float64 {
	return float64(t.PriceCents) / 100.0
}
