package checkout

import (
	"testing"
	"time"
)

func TestCartSetQuantity(t *testing.T) {
	t.Run("adds new item", func(t *testing.T) {
		cart := NewCart(1)
		cart.SetQuantity(10, 2)

		if got := cart.Quantity(10); got != 2 {
			t.Errorf("Quantity(10) = %d, want 2", got)
		}
		if cart.TotalQuantity() != 2 {
			t.Errorf("TotalQuantity() = %d, want 2", cart.TotalQuantity())
		}
	})

	t.Run("replaces existing quantity", func(t *testing.T) {
		cart := NewCart(1)
		cart.SetQuantity(10, 2)
		cart.SetQuantity(10, 5)

		if got := cart.Quantity(10); got != 5 {
			t.Errorf("Quantity(10) = %d, want 5", got)
		}
		if len(cart.Items) != 1 {
			t.Errorf("len(Items) = %d, want 1", len(cart.Items))
		}
	})

	t.Run("zero removes item", func(t *testing.T) {
		cart := NewCart(1)
		cart.SetQuantity(10, 2)
		cart.SetQuantity(10, 0)

		if !cart.IsEmpty() {
			t.Error("cart should be empty after removing its only item")
		}
	})

	t.Run("negative removes item", func(t *testing.T) {
		cart := NewCart(1)
		cart.SetQuantity(10, 2)
		cart.SetQuantity(10, -3)

		if !cart.IsEmpty() {
			t.Error("cart should be empty after a negative quantity")
		}
	})

	t.Run("removing absent item is a no-op", func(t *testing.T) {
		cart := NewCart(1)
		cart.SetQuantity(10, 2)
		cart.SetQuantity(99, 0)

		if got := cart.Quantity(10); got != 2 {
			t.Errorf("Quantity(10) = %d, want 2", got)
		}
	})

	t.Run("preserves insertion order", func(t *testing.T) {
		cart := NewCart(1)
		cart.SetQuantity(30, 1)
		cart.SetQuantity(10, 1)
		cart.SetQuantity(20, 1)
		cart.SetQuantity(10, 4)

		want := []int{30, 10, 20}
		for i, item := range cart.Items {
			if item.TierID != want[i] {
				t.Errorf("Items[%d].TierID = %d, want %d", i, item.TierID, want[i])
			}
		}
	})

	t.Run("mutation clears the tier error", func(t *testing.T) {
		cart := NewCart(1)
		cart.SetQuantity(10, 8)
		cart.SetTierError(10, "only 3 ticket(s) available, please lower the quantity")
		cart.SetTierError(20, "'VIP' is sold out")

		cart.SetQuantity(10, 3)

		if _, ok := cart.TierErrors[10]; ok {
			t.Error("error for tier 10 should be cleared by the mutation")
		}
		if _, ok := cart.TierErrors[20]; !ok {
			t.Error("error for tier 20 should be untouched")
		}
	})
}

func TestCartClear(t *testing.T) {
	cart := NewCart(1)
	cart.SetQuantity(10, 2)
	cart.SetQuantity(20, 1)
	cart.SetTierError(10, "sold out")
	cart.Touch(15 * time.Minute)

	cart.Clear()

	if !cart.IsEmpty() {
		t.Error("cart should be empty after Clear")
	}
	if cart.HasErrors() {
		t.Error("cart should have no errors after Clear")
	}
	if cart.ExpiresAt != 0 {
		t.Error("cart expiry should be reset after Clear")
	}
}

func TestCartExpiry(t *testing.T) {
	cart := NewCart(1)

	if cart.IsExpired() {
		t.Error("cart without an expiry should never be expired")
	}

	cart.Touch(15 * time.Minute)
	if cart.IsExpired() {
		t.Error("freshly touched cart should not be expired")
	}

	cart.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	if !cart.IsExpired() {
		t.Error("cart past its expiry should be expired")
	}
}
