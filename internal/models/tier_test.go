package models

import (
	"strings"
	"testing"
	"time"
)

func capacity(v int) *int { return &v }

func TestTierCreateRequestValidate(t *testing.T) {
	validReq := func() *TierCreateRequest {
		return &TierCreateRequest{
			EventID:     1,
			Name:        "General Admission",
			PriceCents:  2500,
			Capacity:    capacity(100),
			MinPerOrder: 1,
			MaxPerOrder: 8,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*TierCreateRequest)
		wantErr string
	}{
		{
			name:   "valid request",
			mutate: func(r *TierCreateRequest) {},
		},
		{
			name:   "unlimited capacity",
			mutate: func(r *TierCreateRequest) { r.Capacity = nil },
		},
		{
			name:   "free tier",
			mutate: func(r *TierCreateRequest) { r.PriceCents = 0 },
		},
		{
			name:    "blank name",
			mutate:  func(r *TierCreateRequest) { r.Name = "   " },
			wantErr: "tier name is required",
		},
		{
			name:    "negative price",
			mutate:  func(r *TierCreateRequest) { r.PriceCents = -100 },
			wantErr: "tier price cannot be negative",
		},
		{
			name:    "price above maximum",
			mutate:  func(r *TierCreateRequest) { r.PriceCents = 1000001 },
			wantErr: "tier price cannot exceed $10,000",
		},
		{
			name:    "zero capacity",
			mutate:  func(r *TierCreateRequest) { r.Capacity = capacity(0) },
			wantErr: "tier capacity must be greater than 0",
		},
		{
			name:    "min above max",
			mutate:  func(r *TierCreateRequest) { r.MinPerOrder = 10 },
			wantErr: "minimum per order cannot exceed maximum per order",
		},
		{
			name: "inverted sale window",
			mutate: func(r *TierCreateRequest) {
				start := time.Now().Add(time.Hour)
				end := time.Now()
				r.SaleStart = &start
				r.SaleEnd = &end
			},
			wantErr: "sale start date must be before sale end date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validReq()
			tt.mutate(req)

			err := req.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}

			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestTierRemaining(t *testing.T) {
	t.Run("unlimited", func(t *testing.T) {
		tier := &TicketTier{Capacity: nil, SoldCount: 999}
		if tier.Remaining() != nil {
			t.Error("unlimited tier should report nil remaining")
		}
		if tier.IsSoldOut() {
			t.Error("unlimited tier can never sell out")
		}
	})

	t.Run("counts down", func(t *testing.T) {
		tier := &TicketTier{Capacity: capacity(100), SoldCount: 60}
		if got := tier.Remaining(); got == nil || *got != 40 {
			t.Errorf("Remaining() = %v, want 40", got)
		}
	})

	t.Run("oversold clamps to zero", func(t *testing.T) {
		tier := &TicketTier{Capacity: capacity(100), SoldCount: 104}
		if got := tier.Remaining(); got == nil || *got != 0 {
			t.Errorf("Remaining() = %v, want 0", got)
		}
		if !tier.IsSoldOut() {
			t.Error("oversold tier should report sold out")
		}
	})
}

func TestTierSaleWindow(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name       string
		start, end *time.Time
		onSale     bool
		notStarted bool
		ended      bool
	}{
		{name: "no window", onSale: true},
		{name: "open window", start: &past, end: &future, onSale: true},
		{name: "before start", start: &future, notStarted: true},
		{name: "after end", end: &past, ended: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier := &TicketTier{SaleStart: tt.start, SaleEnd: tt.end}

			if tier.IsOnSale() != tt.onSale {
				t.Errorf("IsOnSale() = %v, want %v", tier.IsOnSale(), tt.onSale)
			}
			if tier.SaleNotStarted() != tt.notStarted {
				t.Errorf("SaleNotStarted() = %v, want %v", tier.SaleNotStarted(), tt.notStarted)
			}
			if tier.SaleEnded() != tt.ended {
				t.Errorf("SaleEnded() = %v, want %v", tier.SaleEnded(), tt.ended)
			}
		})
	}
}
