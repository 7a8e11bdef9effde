package models

import (
	"testing"
	"time"
)

func TestDiscountIsUsable(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	eventScope := 7

	tests := []struct {
		name     string
		discount DiscountCode
		eventID  int
		want     bool
	}{
		{
			name:     "active platform-wide code",
			discount: DiscountCode{Code: "SAVE", Type: DiscountPercent, Percent: 10, Active: true},
			eventID:  1,
			want:     true,
		},
		{
			name:     "inactive code",
			discount: DiscountCode{Code: "SAVE", Type: DiscountPercent, Percent: 10, Active: false},
			eventID:  1,
			want:     false,
		},
		{
			name:     "scoped code on its event",
			discount: DiscountCode{Code: "SAVE", Type: DiscountPercent, Percent: 10, Active: true, EventID: &eventScope},
			eventID:  7,
			want:     true,
		},
		{
			name:     "scoped code on another event",
			discount: DiscountCode{Code: "SAVE", Type: DiscountPercent, Percent: 10, Active: true, EventID: &eventScope},
			eventID:  8,
			want:     false,
		},
		{
			name:     "expired code",
			discount: DiscountCode{Code: "SAVE", Type: DiscountPercent, Percent: 10, Active: true, ExpiresAt: &past},
			eventID:  1,
			want:     false,
		},
		{
			name:     "not yet expired code",
			discount: DiscountCode{Code: "SAVE", Type: DiscountPercent, Percent: 10, Active: true, ExpiresAt: &future},
			eventID:  1,
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.discount.IsUsable(tt.eventID); got != tt.want {
				t.Errorf("IsUsable(%d) = %v, want %v", tt.eventID, got, tt.want)
			}
		})
	}
}

func TestDiscountApply(t *testing.T) {
	tests := []struct {
		name     string
		discount DiscountCode
		subtotal int
		want     int
	}{
		{
			name:     "percent",
			discount: DiscountCode{Type: DiscountPercent, Percent: 10},
			subtotal: 10000,
			want:     1000,
		},
		{
			name:     "percent rounds half up",
			discount: DiscountCode{Type: DiscountPercent, Percent: 15},
			subtotal: 2490, // 373.5
			want:     374,
		},
		{
			name:     "fixed",
			discount: DiscountCode{Type: DiscountFixed, AmountCents: 500},
			subtotal: 10000,
			want:     500,
		},
		{
			name:     "fixed clamps to subtotal",
			discount: DiscountCode{Type: DiscountFixed, AmountCents: 5000},
			subtotal: 2500,
			want:     2500,
		},
		{
			name:     "zero subtotal",
			discount: DiscountCode{Type: DiscountPercent, Percent: 50},
			subtotal: 0,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.discount.Apply(tt.subtotal); got != tt.want {
				t.Errorf("Apply(%d) = %d, want %d", tt.subtotal, got, tt.want)
			}
		})
	}
}
