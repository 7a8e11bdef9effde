package handlers

import (
	"fmt"
	"net/http"

	"community-tickets/internal/models"
	"community-tickets/internal/services"

	"github.com/go-chi/chi/v5"
)

// OrderHandler handles the order success page API and ticket rendering
type OrderHandler struct {
	orders  *services.OrderService
	tickets *services.TicketService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *services.OrderService, tickets *services.TicketService) *OrderHandler {
	return &OrderHandler{orders: orders, tickets: tickets}
}

// GetOrder handles GET /api/orders/{ref}. The ref is an order number or
// a payment session ID; the success page reaches here with either.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, event, err := h.orders.GetOrder(chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":        true,
		"order":     order,
		"event":     event,
		"cancelled": order.Status == models.OrderCancelled,
	})
}

// CancelOrder handles POST /api/orders/{ref}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.CancelOrder(chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"order": order,
	})
}

// DownloadTickets handles GET /api/orders/{ref}/tickets.zip
func (h *OrderHandler) DownloadTickets(w http.ResponseWriter, r *http.Request) {
	order, _, err := h.orders.GetOrder(chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	bundle, err := h.tickets.OrderBundle(order)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="tickets-%s.zip"`, order.OrderNumber))
	w.Write(bundle)
}

// TicketQR handles GET /api/tickets/{token}/qr.png
func (h *OrderHandler) TicketQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.tickets.QRCodePNG(chi.URLParam(r, "token"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// CheckInTicket handles POST /api/admin/tickets/{token}/check-in
func (h *OrderHandler) CheckInTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.tickets.CheckIn(chi.URLParam(r, "token"))
	if err != nil {
		// A rejected scan still reports the ticket so door staff can
		// see whether it was already used or refunded.
		if ticket != nil {
			writeJSON(w, http.StatusConflict, map[string]interface{}{
				"ok":     false,
				"ticket": ticket,
				"error":  errorBody{Message: err.Error()},
			})
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"ticket": ticket,
	})
}
