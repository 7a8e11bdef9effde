package checkout

import (
	"math"

	"community-tickets/internal/models"
)

// Default placeholder fee model used when an event carries no fee
// structure at all: 2.5% of the subtotal plus 50 cents per ticket.
// This is the legacy platform fee; configured events override it.
const (
	defaultFeePercent        = 2.5
	defaultFeePerTicketCents = 50
)

// PriceBreakdown holds the derived monetary values for a cart. All
// fields are integer cents and Total reconciles exactly:
// Total = Subtotal - Discount + Tax + Fees.
type PriceBreakdown struct {
	SubtotalCents int `json:"subtotalCents"`
	DiscountCents int `json:"discountCents"`
	TaxCents      int `json:"taxCents"`
	FeeCents      int `json:"feeCents"`
	TotalCents    int `json:"totalCents"`
}

// Subtotal sums tier price times quantity over all cart items.
// Items referencing unknown tiers contribute nothing; the validator
// reports those separately.
func Subtotal(cart *Cart, tiers map[int]*models.TicketTier) int {
	subtotal := 0
	for _, item := range cart.Items {
		if tier, ok := tiers[item.TierID]; ok {
			subtotal += tier.PriceCents * item.Quantity
		}
	}
	return subtotal
}

// Tax computes the combined tax on a taxable amount. Each tax component
// is computed and rounded independently before summing, not rounded once
// on the combined rate.
func Tax(taxableCents int, settings models.TaxSettings) int {
	tax := 0
	if rate := settings.GSTRate(); rate > 0 {
		tax += roundPercent(taxableCents, rate)
	}
	if rate := settings.PSTRate(); rate > 0 {
		tax += roundPercent(taxableCents, rate)
	}
	return tax
}

// Fees computes the buyer-visible service fee on a feeable amount.
// Organizer-absorbed fees are always zero for the buyer. A nil fee
// structure falls back to the default placeholder model.
func Fees(feeableCents, ticketCount int, fee *models.FeeStructure) int {
	if fee == nil {
		return roundPercent(feeableCents, defaultFeePercent) + defaultFeePerTicketCents*ticketCount
	}

	if fee.Type != models.FeeBuyerPays {
		return 0
	}

	switch fee.Mode {
	case models.FeeModeFlat:
		// Fixed per-order amount regardless of cart size.
		return fee.AmountCents
	case models.FeeModePercent:
		return roundPercent(feeableCents, fee.Percent)
	default:
		// Legacy structures carry serviceFeePercent without a mode.
		if fee.ServiceFeePercent > 0 {
			return roundPercent(feeableCents, fee.ServiceFeePercent)
		}
		if fee.Percent > 0 {
			return roundPercent(feeableCents, fee.Percent)
		}
		return 0
	}
}

// Price computes the full breakdown for a cart without a discount
func Price(cart *Cart, tiers map[int]*models.TicketTier, fee *models.FeeStructure, tax models.TaxSettings) PriceBreakdown {
	return PriceWithDiscount(cart, tiers, fee, tax, nil)
}

// PriceWithDiscount computes the full breakdown for a cart. The discount
// is applied to the subtotal first; tax and fees are computed on the
// discounted amount.
func PriceWithDiscount(cart *Cart, tiers map[int]*models.TicketTier, fee *models.FeeStructure, tax models.TaxSettings, discount *models.DiscountCode) PriceBreakdown {
	breakdown := PriceBreakdown{}

	breakdown.SubtotalCents = Subtotal(cart, tiers)

	if discount != nil && discount.IsUsable(cart.EventID) {
		breakdown.DiscountCents = discount.Apply(breakdown.SubtotalCents)
	}

	taxable := breakdown.SubtotalCents - breakdown.DiscountCents
	breakdown.TaxCents = Tax(taxable, tax)
	breakdown.FeeCents = Fees(taxable, cart.TotalQuantity(), fee)

	breakdown.TotalCents = taxable + breakdown.TaxCents + breakdown.FeeCents
	return breakdown
}

// roundPercent computes percent of an amount in cents, rounded half up.
// The float excursion is bounded by a single multiplication; results
// are integer cents.
func roundPercent(amountCents int, percent float64) int {
	return int(math.Round(float64(amountCents) * percent / 100))
}
