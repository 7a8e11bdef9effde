package models

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
	OrderRefunded  OrderStatus = "refunded"
)

// Order represents a finalized or in-flight purchase
type Order struct {
	ID               int         `json:"id" db:"id"`
	EventID          int         `json:"eventId" db:"event_id"`
	OrderNumber      string      `json:"orderNumber" db:"order_number"`
	SubtotalCents    int         `json:"subtotalCents" db:"subtotal_cents"`
	TaxCents         int         `json:"taxCents" db:"tax_cents"`
	FeeCents         int         `json:"feeCents" db:"fee_cents"`
	DiscountCents    int         `json:"discountCents" db:"discount_cents"`
	TotalCents       int         `json:"totalCents" db:"total_cents"`
	DiscountCode     string      `json:"discountCode,omitempty" db:"discount_code"`
	Status           OrderStatus `json:"status" db:"status"`
	PaymentSessionID string      `json:"paymentSessionId,omitempty" db:"payment_session_id"`
	BuyerEmail       string      `json:"buyerEmail" db:"buyer_email"`
	BuyerName        string      `json:"buyerName" db:"buyer_name"`
	BuyerPhone       string      `json:"buyerPhone,omitempty" db:"buyer_phone"`
	Tickets          []*Ticket   `json:"tickets,omitempty"`
	CreatedAt        time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderCreateRequest represents the data needed to create a new order
type OrderCreateRequest struct {
	EventID       int
	SubtotalCents int
	TaxCents      int
	FeeCents      int
	DiscountCents int
	TotalCents    int
	DiscountCode  string
	Buyer         BuyerInfo
	Status        OrderStatus
}

// Order number format: ORD-YYYYMMDD-XXXXXX (e.g., ORD-20240101-123456)
var orderNumberRegex = regexp.MustCompile(`^ORD-\d{8}-\d{6}$`)

// Validate validates the order data
func (o *Order) Validate() error {
	if err := validateOrderNumber(o.OrderNumber); err != nil {
		return err
	}

	if err := validateOrderAmounts(o.SubtotalCents, o.TaxCents, o.FeeCents, o.DiscountCents, o.TotalCents); err != nil {
		return err
	}

	if err := validateOrderStatus(o.Status); err != nil {
		return err
	}

	buyer := BuyerInfo{Name: o.BuyerName, Email: o.BuyerEmail, Phone: o.BuyerPhone}
	return buyer.Validate()
}

// Validate validates order creation data
func (req *OrderCreateRequest) Validate() error {
	if err := validateOrderAmounts(req.SubtotalCents, req.TaxCents, req.FeeCents, req.DiscountCents, req.TotalCents); err != nil {
		return err
	}

	if err := validateOrderStatus(req.Status); err != nil {
		return err
	}

	return req.Buyer.Validate()
}

// validateOrderNumber validates the order number format
func validateOrderNumber(orderNumber string) error {
	if orderNumber == "" {
		return errors.New("order number is required")
	}

	if !orderNumberRegex.MatchString(orderNumber) {
		return errors.New("order number format is invalid")
	}

	return nil
}

// validateOrderAmounts validates order monetary amounts. The total must
// reconcile exactly with the other components; all values are integer cents.
func validateOrderAmounts(subtotal, tax, fee, discount, total int) error {
	for _, amount := range []int{subtotal, tax, fee, discount, total} {
		if amount < 0 {
			return errors.New("order amounts cannot be negative")
		}
	}

	// Maximum order amount of $100,000 (10,000,000 cents)
	if total > 10000000 {
		return errors.New("order total cannot exceed $100,000")
	}

	if subtotal-discount+tax+fee != total {
		return errors.New("order total does not reconcile with its components")
	}

	return nil
}

// validateOrderStatus validates an order status
func validateOrderStatus(status OrderStatus) error {
	switch status {
	case OrderPending, OrderCompleted, OrderCancelled, OrderRefunded:
		return nil
	default:
		return errors.New("invalid order status")
	}
}

// GenerateOrderNumber generates a unique order number
func GenerateOrderNumber() string {
	now := time.Now()
	dateStr := now.Format("20060102")

	// Generate a 6-digit random number using crypto/rand for better uniqueness
	max := big.NewInt(1000000)
	randomNum, err := rand.Int(rand.Reader, max)
	if err != nil {
		// Fallback to timestamp-based generation if crypto/rand fails
		timestamp := now.UnixNano()
		return fmt.Sprintf("ORD-%s-%06d", dateStr, timestamp%1000000)
	}

	return fmt.Sprintf("ORD-%s-%06d", dateStr, randomNum.Int64())
}

// IsPending returns true if the order is pending
func (o *Order) IsPending() bool {
	return o.Status == OrderPending
}

// IsCompleted returns true if the order is completed
func (o *Order) IsCompleted() bool {
	return o.Status == OrderCompleted
}

// IsFree returns true if the order required no payment
func (o *Order) IsFree() bool {
	return o.TotalCents == 0
}

// CanBeCancelled returns true if the order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderPending
}

// CanBeCompleted returns true if the order can be marked as completed
func (o *Order) CanBeCompleted() bool {
	return o.Status == OrderPending
}

// CanBeRefunded returns true if the order can be refunded
func (o *Order) CanBeRefunded() bool {
	return o.Status == OrderCompleted
}

// IsExpired returns true if a pending order has outlived its payment window
func (o *Order) IsExpired(expirationDuration time.Duration) bool {
	if o.Status != OrderPending {
		return false
	}

	return time.Since(o.CreatedAt) > expirationDuration
}

// TotalInCurrency returns the order total in the main currency unit.
// Display formatting only.
func (o *Order) TotalInCurrency() float64 {
	return float64(o.TotalCents) / 100.0
}

// GetStatusDisplayName returns a human-readable status name
func (o *Order) GetStatusDisplayName() string {
	switch o.Status {
	case OrderPending:
		return "Pending Payment"
	case OrderCompleted:
		return "Completed"
	case OrderCancelled:
		return "Cancelled"
	case OrderRefunded:
		return "Refunded"
	default:
		return string(o.Status)
	}
}

// TicketNames is a convenience for rendering; it is not persisted
func (o *Order) TicketNames() []string {
	names := make([]string, 0, len(o.Tickets))
	for _, t := range o.Tickets {
		names = append(names, strings.TrimSpace(t.TierName))
	}
	return names
}
