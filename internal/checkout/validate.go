package checkout

import (
	"fmt"

	"community-tickets/internal/models"
)

// ValidateCart checks every cart item against the latest tier data and
// returns a map of tier ID to error message. Checkout must not proceed
// while the map is non-empty. This is a pre-checkout gate only: the
// server re-validates with real inventory enforcement, and a rejection
// there after a clean local pass is an expected race, not a bug.
func ValidateCart(cart *Cart, tiers map[int]*models.TicketTier) map[int]string {
	errors := make(map[int]string)

	for _, item := range cart.Items {
		tier, ok := tiers[item.TierID]
		if !ok {
			errors[item.TierID] = "this ticket tier is no longer available"
			continue
		}

		availability := TierAvailability(tier)

		switch {
		case !availability.Available:
			errors[item.TierID] = fmt.Sprintf("'%s' is sold out", tier.Name)

		case tier.SaleNotStarted():
			errors[item.TierID] = fmt.Sprintf("sales for '%s' have not started yet", tier.Name)

		case tier.SaleEnded():
			errors[item.TierID] = fmt.Sprintf("sales for '%s' have ended", tier.Name)

		// Remaining capacity is checked before the per-order maximum.
		case availability.Remaining != nil && item.Quantity > *availability.Remaining:
			errors[item.TierID] = fmt.Sprintf("only %d ticket(s) available, please lower the quantity", *availability.Remaining)

		case tier.MaxPerOrder > 0 && item.Quantity > tier.MaxPerOrder:
			errors[item.TierID] = fmt.Sprintf("maximum %d ticket(s) per order for this tier", tier.MaxPerOrder)

		case tier.MinPerOrder > 1 && item.Quantity < tier.MinPerOrder:
			errors[item.TierID] = fmt.Sprintf("minimum %d ticket(s) per order for this tier", tier.MinPerOrder)
		}
	}

	return errors
}
