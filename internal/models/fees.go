package models

// Fee structure types determine who carries the service fee
const (
	FeeBuyerPays        = "buyer_pays"
	FeeOrganizerAbsorbs = "organizer_absorbs"
)

// Fee modes for buyer-pays structures
const (
	FeeModePercent = "percent"
	FeeModeFlat    = "flat"
)

// FeeStructure describes how the service fee is applied to an order.
// When Type is organizer_absorbs the buyer-visible fee is always zero.
type FeeStructure struct {
	Type              string  `json:"type" db:"fee_type"`
	Mode              string  `json:"mode,omitempty" db:"fee_mode"`
	Percent           float64 `json:"percent,omitempty" db:"fee_percent"`
	AmountCents       int     `json:"amountCents,omitempty" db:"fee_amount_cents"`
	ServiceFeePercent float64 `json:"serviceFeePercent,omitempty" db:"service_fee_percent"` // legacy, percent mode
}

// Default tax rates applied when an event collects tax without overriding them
const (
	DefaultGSTPercent = 5.0
	DefaultPSTPercent = 7.0
)

// TaxSettings determines which of two independent, additive percentage
// taxes apply to an order's subtotal.
type TaxSettings struct {
	HasGST     bool    `json:"hasGST" db:"has_gst"`
	HasPST     bool    `json:"hasPST" db:"has_pst"`
	GSTPercent float64 `json:"gstPercent,omitempty" db:"gst_percent"` // 0 means the 5% default
	PSTPercent float64 `json:"pstPercent,omitempty" db:"pst_percent"` // 0 means the 7% default
}

// GSTRate returns the effective GST percentage, or 0 when GST does not apply
func (ts TaxSettings) GSTRate() float64 {
	if !ts.HasGST {
		return 0
	}
	if ts.GSTPercent > 0 {
		return ts.GSTPercent
	}
	return DefaultGSTPercent
}

// PSTRate returns the effective PST percentage, or 0 when PST does not apply
func (ts TaxSettings) PSTRate() float64 {
	if !ts.HasPST {
		return 0
	}
	if ts.PSTPercent > 0 {
		return ts.PSTPercent
	}
	return DefaultPSTPercent
}
