// Package checkout implements the ticket pricing, cart, and
// checkout-orchestration core: tier availability, cart mutation and
// validation, price/tax/fee computation, and the payment flow state
// machine. All monetary values are integers in the smallest currency
// unit; rendering layers divide by 100 for display only.
package checkout

import "time"

// CartItem represents a (tier, quantity) selection in the cart
type CartItem struct {
	TierID   int `json:"tierId"`
	Quantity int `json:"quantity"`
}

// Cart is an ordered collection of cart items scoped to a single event.
// Derived values (subtotal, tax, fees, total) are pure functions of the
// cart and the event configuration; the cart itself stores none of them.
type Cart struct {
	EventID   int        `json:"eventId"`
	Items     []CartItem `json:"items"`
	ExpiresAt int64      `json:"expiresAt,omitempty"` // Unix timestamp, 0 means no expiry

	// TierErrors holds per-tier validation errors keyed by tier ID.
	// Not persisted with the cart.
	TierErrors map[int]string `json:"-"`
}

// NewCart creates an empty cart for an event
func NewCart(eventID int) *Cart {
	return &Cart{
		EventID:    eventID,
		TierErrors: make(map[int]string),
	}
}

// SetQuantity updates the quantity for a tier. A quantity of zero or
// less removes the item; a positive quantity replaces the existing one
// or appends a new item. Any recorded validation error for the tier is
// cleared, since the user is actively correcting the value.
func (c *Cart) SetQuantity(tierID, quantity int) {
	c.ClearTierError(tierID)

	if quantity <= 0 {
		for i := range c.Items {
			if c.Items[i].TierID == tierID {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
				return
			}
		}
		return
	}

	for i := range c.Items {
		if c.Items[i].TierID == tierID {
			c.Items[i].Quantity = quantity
			return
		}
	}

	c.Items = append(c.Items, CartItem{TierID: tierID, Quantity: quantity})
}

// Quantity returns the quantity selected for a tier, 0 if absent
func (c *Cart) Quantity(tierID int) int {
	for _, item := range c.Items {
		if item.TierID == tierID {
			return item.Quantity
		}
	}
	return 0
}

// TotalQuantity returns the number of tickets across all items
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// IsEmpty returns true if the cart holds no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clear empties the cart and drops all recorded errors
func (c *Cart) Clear() {
	c.Items = nil
	c.TierErrors = make(map[int]string)
	c.ExpiresAt = 0
}

// SetTierError records a validation error for a tier
func (c *Cart) SetTierError(tierID int, message string) {
	if c.TierErrors == nil {
		c.TierErrors = make(map[int]string)
	}
	c.TierErrors[tierID] = message
}

// ClearTierError drops the recorded validation error for a tier
func (c *Cart) ClearTierError(tierID int) {
	if c.TierErrors != nil {
		delete(c.TierErrors, tierID)
	}
}

// HasErrors returns true if any tier currently has a validation error
func (c *Cart) HasErrors() bool {
	return len(c.TierErrors) > 0
}

// Touch extends the cart's expiry window
func (c *Cart) Touch(ttl time.Duration) {
	c.ExpiresAt = time.Now().Add(ttl).Unix()
}

// IsExpired returns true if the cart has outlived its expiry window
func (c *Cart) IsExpired() bool {
	return c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt
}
