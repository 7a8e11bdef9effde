package handlers

import (
	"net/http"
	"strings"

	"community-tickets/internal/checkout"
	"community-tickets/internal/services"
)

// CheckoutHandler handles the checkout API: payment-intent creation,
// hosted sessions, and payment confirmation.
type CheckoutHandler struct {
	checkout  *services.CheckoutService
	returnURL string
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *services.CheckoutService, returnURL string) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkoutService, returnURL: returnURL}
}

// confirmRequest is the payment confirmation request body
type confirmRequest struct {
	SessionID string `json:"sessionId"`
}

// sessionRequest is the hosted-checkout request body: the intent payload
// plus an optional return URL overriding the configured one
type sessionRequest struct {
	checkout.IntentRequest
	ReturnURL string `json:"returnUrl,omitempty"`
}

// CreatePaymentIntent handles POST /api/checkout/payment-intent
func (h *CheckoutHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req checkout.IntentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.checkout.CreatePaymentIntent(&req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOutcome(w, outcome)
}

// CreateSession handles POST /api/checkout/session (hosted redirect path)
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = h.returnURL
	}

	outcome, err := h.checkout.CreateHostedSession(&req.IntentRequest, returnURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeOutcome(w, outcome)
}

// ConfirmPayment handles POST /api/checkout/confirm
func (h *CheckoutHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	order, err := h.checkout.ConfirmPayment(req.SessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"order": order,
	})
}

// writeOutcome renders a checkout outcome in its wire shape. Each kind
// populates only its own fields so clients can discriminate on them.
func writeOutcome(w http.ResponseWriter, outcome *checkout.Outcome) {
	switch outcome.Kind {
	case checkout.OutcomeFree:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"isFree":  true,
			"orderId": outcome.OrderRef,
			"message": outcome.Message,
		})

	case checkout.OutcomePaymentRequired:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"clientSecret": outcome.ClientSecret,
			"orderId":      outcome.OrderRef,
		})

	case checkout.OutcomeHostedRedirect:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"checkoutUrl": outcome.CheckoutURL,
			"orderId":     outcome.OrderRef,
			"testMode":    outcome.TestMode,
		})

	default:
		status := http.StatusBadRequest
		if strings.Contains(outcome.Err, "insufficient tickets") {
			status = http.StatusConflict
		}
		writeError(w, status, outcome.Err)
	}
}
