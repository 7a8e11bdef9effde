package checkout

import "community-tickets/internal/models"

// Availability describes whether a tier can currently be purchased and
// how many tickets remain. A nil Remaining means unlimited capacity.
type Availability struct {
	Available bool `json:"available"`
	Remaining *int `json:"remaining"`
}

// TierAvailability evaluates a tier's availability from its latest
// fetched state. It has no side effects and reserves nothing; true
// inventory enforcement happens at order time in the repository layer.
func TierAvailability(tier *models.TicketTier) Availability {
	if tier.Capacity == nil {
		return Availability{Available: true, Remaining: nil}
	}

	remaining := *tier.Capacity - tier.SoldCount
	if remaining < 0 {
		remaining = 0
	}

	return Availability{Available: remaining > 0, Remaining: &remaining}
}
