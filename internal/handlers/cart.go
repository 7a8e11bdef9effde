package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"community-tickets/internal/checkout"
	"community-tickets/internal/models"
	"community-tickets/internal/services"

	"github.com/gorilla/sessions"
)

const cartSessionKey = "cart"

// CartHandler keeps a per-visitor cart in the session so a selection
// survives page reloads before checkout. The stored cart is advisory;
// checkout rebuilds and re-validates it server-side.
type CartHandler struct {
	store  sessions.Store
	events *services.EventService
	ttl    time.Duration
}

// NewCartHandler creates a new cart handler
func NewCartHandler(store sessions.Store, events *services.EventService, ttl time.Duration) *CartHandler {
	return &CartHandler{store: store, events: events, ttl: ttl}
}

// cartUpdateRequest mutates one tier's quantity in the cart
type cartUpdateRequest struct {
	EventID  int `json:"eventId"`
	TierID   int `json:"tierId"`
	Quantity int `json:"quantity"`
}

// cartView is the cart plus any per-tier validation errors
type cartView struct {
	Cart       *checkout.Cart `json:"cart"`
	TierErrors map[int]string `json:"tierErrors,omitempty"`
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart := h.loadCart(r)
	if cart == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "cart": nil})
		return
	}

	view, err := h.validatedView(cart)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":         true,
		"cart":       view.Cart,
		"tierErrors": view.TierErrors,
	})
}

// UpdateCart handles PUT /api/cart. Setting a quantity replaces the
// line; zero or negative removes it. Switching events starts a new cart.
func (h *CartHandler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	var req cartUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.events.GetEvent(req.EventID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if event.TierByID(req.TierID) == nil {
		writeServiceError(w, models.ErrTierNotFound)
		return
	}

	cart := h.loadCart(r)
	if cart == nil || cart.EventID != req.EventID {
		cart = checkout.NewCart(req.EventID)
	}

	cart.SetQuantity(req.TierID, req.Quantity)
	cart.Touch(h.ttl)

	if err := h.saveCart(w, r, cart); err != nil {
		writeServiceError(w, err)
		return
	}

	view, err := h.validatedView(cart)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":         true,
		"cart":       view.Cart,
		"tierErrors": view.TierErrors,
	})
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	session, _ := h.store.Get(r, "session")
	delete(session.Values, cartSessionKey)
	if err := session.Save(r, w); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// validatedView runs the cart through validation against current tier
// state so the client can show inline availability errors
func (h *CartHandler) validatedView(cart *checkout.Cart) (*cartView, error) {
	event, err := h.events.GetEvent(cart.EventID)
	if err != nil {
		return nil, err
	}

	tiers := make(map[int]*models.TicketTier, len(event.Tiers))
	for _, tier := range event.Tiers {
		tiers[tier.ID] = tier
	}

	return &cartView{
		Cart:       cart,
		TierErrors: checkout.ValidateCart(cart, tiers),
	}, nil
}

// loadCart reads the session cart, dropping it when expired
func (h *CartHandler) loadCart(r *http.Request) *checkout.Cart {
	session, _ := h.store.Get(r, "session")

	raw, ok := session.Values[cartSessionKey].(string)
	if !ok || raw == "" {
		return nil
	}

	var cart checkout.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		log.Printf("Cart: dropping unreadable session cart: %v", err)
		return nil
	}

	if cart.IsExpired() {
		return nil
	}

	return &cart
}

// saveCart writes the cart back to the session
func (h *CartHandler) saveCart(w http.ResponseWriter, r *http.Request, cart *checkout.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	session, _ := h.store.Get(r, "session")
	session.Values[cartSessionKey] = string(raw)
	return session.Save(r, w)
}
