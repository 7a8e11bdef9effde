package checkout

import (
	"context"
	"fmt"
	"regexp"

	"community-tickets/internal/models"
)

// FlowState represents a checkout flow state
type FlowState string

const (
	StateIdle                  FlowState = "idle"
	StateValidating            FlowState = "validating"
	StateAwaitingPaymentIntent FlowState = "awaiting_payment_intent"
	StatePaymentRequired       FlowState = "payment_required"
	StateConfirming            FlowState = "confirming"
	StateSucceeded             FlowState = "succeeded"
)

// IntentRequest is the single request issued once local validation
// passes. It carries the cart, buyer info, and optional discount code.
type IntentRequest struct {
	EventID      int        `json:"eventId"`
	Items        []CartItem `json:"items"`
	BuyerEmail   string     `json:"buyerEmail"`
	BuyerName    string     `json:"buyerName"`
	BuyerPhone   string     `json:"buyerPhone,omitempty"`
	DiscountCode string     `json:"discountCode,omitempty"`
}

// IntentClient creates a checkout session against the checkout API.
// Implementations return a decoded Outcome; transport failures are
// returned as errors.
type IntentClient interface {
	CreatePaymentIntent(ctx context.Context, req *IntentRequest) (*Outcome, error)
}

// Server inventory rejections name the tier so the client can map the
// error back onto the offending cart line.
var inventoryErrRegex = regexp.MustCompile(`(?i)insufficient (?:tickets|inventory)[^']*'([^']+)'`)

// Flow owns the checkout state: the cart, buyer inputs, and the state
// machine driving validation, payment-intent creation, and payment
// confirmation. Rendering layers read it; all mutation goes through the
// documented transitions. Cart mutations are applied synchronously and
// never queue behind an in-flight request: a new submission supersedes
// an outstanding one via the generation counter, and callbacks carrying
// a stale generation are ignored.
type Flow struct {
	client IntentClient
	tiers  map[int]*models.TicketTier

	cart         *Cart
	buyer        models.BuyerInfo
	discountCode string

	state        FlowState
	generation   int
	clientSecret string
	orderRef     string
	redirectTo   string
	notice       string
	paymentError string
}

// NewFlow creates an idle checkout flow for an event
func NewFlow(client IntentClient, eventID int, tiers map[int]*models.TicketTier) *Flow {
	return &Flow{
		client: client,
		tiers:  tiers,
		cart:   NewCart(eventID),
		state:  StateIdle,
	}
}

// State returns the current flow state
func (f *Flow) State() FlowState { return f.state }

// Cart returns the flow's cart for read-only inspection
func (f *Flow) Cart() *Cart { return f.cart }

// Generation returns the current flow generation; callbacks must carry
// it back so late arrivals after abandonment can be discarded
func (f *Flow) Generation() int { return f.generation }

// ClientSecret returns the payment secret while payment is required
func (f *Flow) ClientSecret() string { return f.clientSecret }

// OrderRef returns the order reference once one has been issued
func (f *Flow) OrderRef() string { return f.orderRef }

// RedirectTo returns the scheduled redirect target, if any
func (f *Flow) RedirectTo() string { return f.redirectTo }

// Notice returns the current summary notification, if any
func (f *Flow) Notice() string { return f.notice }

// PaymentError returns the payment provider's last error, if any
func (f *Flow) PaymentError() string { return f.paymentError }

// SetQuantity mutates the cart. Allowed in any state: the user may keep
// editing while a request is outstanding, and the next submission will
// pick up the edits.
func (f *Flow) SetQuantity(tierID, quantity int) {
	f.cart.SetQuantity(tierID, quantity)
}

// SetBuyer records the buyer details entered in the checkout form
func (f *Flow) SetBuyer(buyer models.BuyerInfo) {
	f.buyer = buyer
}

// SetDiscountCode records the discount code to send with the request
func (f *Flow) SetDiscountCode(code string) {
	f.discountCode = code
}

// Submit drives Idle -> Validating -> AwaitingPaymentIntent and applies
// the outcome. Validation failures return the flow to Idle with errors
// attached to the offending tiers and never contact the server. A
// transport failure also returns to Idle with the cart preserved. The
// returned error is non-nil only for programming mistakes (submitting
// an empty cart); every expected failure is surfaced through the flow's
// notice and tier errors instead.
func (f *Flow) Submit(ctx context.Context) error {
	if f.cart.IsEmpty() {
		return fmt.Errorf("cannot submit an empty cart")
	}

	f.generation++
	generation := f.generation
	f.notice = ""
	f.paymentError = ""

	f.state = StateValidating

	if err := f.buyer.Validate(); err != nil {
		f.state = StateIdle
		f.notice = err.Error()
		return nil
	}

	if errs := ValidateCart(f.cart, f.tiers); len(errs) > 0 {
		for tierID, msg := range errs {
			f.cart.SetTierError(tierID, msg)
		}
		f.state = StateIdle
		f.notice = "some tickets in your cart are unavailable, please review your selection"
		return nil
	}

	f.state = StateAwaitingPaymentIntent

	outcome, err := f.client.CreatePaymentIntent(ctx, f.intentRequest())

	// A newer submission or abandonment supersedes this one.
	if generation != f.generation {
		return nil
	}

	if err != nil {
		f.state = StateIdle
		f.notice = "checkout failed, please try again"
		return nil
	}

	f.applyOutcome(outcome)
	return nil
}

// intentRequest builds the wire request from the current flow state
func (f *Flow) intentRequest() *IntentRequest {
	items := make([]CartItem, len(f.cart.Items))
	copy(items, f.cart.Items)

	return &IntentRequest{
		EventID:      f.cart.EventID,
		Items:        items,
		BuyerEmail:   f.buyer.Email,
		BuyerName:    f.buyer.Name,
		BuyerPhone:   f.buyer.Phone,
		DiscountCode: f.discountCode,
	}
}

// applyOutcome applies a decoded checkout outcome to the state machine
func (f *Flow) applyOutcome(outcome *Outcome) {
	switch outcome.Kind {
	case OutcomeFree:
		// No payment UI: clear the cart and schedule the success redirect.
		f.state = StateSucceeded
		f.orderRef = outcome.OrderRef
		f.cart.Clear()
		f.redirectTo = successPath(outcome.OrderRef)

	case OutcomePaymentRequired:
		f.state = StatePaymentRequired
		f.clientSecret = outcome.ClientSecret
		f.orderRef = outcome.OrderRef

	case OutcomeHostedRedirect:
		if outcome.TestMode {
			// Test mode: no redirect occurs, the result is shown inline.
			f.state = StateIdle
			f.orderRef = outcome.OrderRef
			f.notice = fmt.Sprintf("test mode checkout created: %s", outcome.CheckoutURL)
			return
		}
		f.state = StatePaymentRequired
		f.orderRef = outcome.OrderRef
		f.redirectTo = outcome.CheckoutURL

	default:
		f.state = StateIdle
		f.reconcileServerError(outcome.Err)
	}
}

// reconcileServerError maps an inventory rejection back onto the named
// tier's inline error; anything else becomes a generic notice. A
// rejection after a clean local validation is an expected race with
// other buyers, so the cart is preserved for correction and retry.
func (f *Flow) reconcileServerError(message string) {
	if message == "" {
		message = "checkout failed, please try again"
	}
	f.notice = message

	match := inventoryErrRegex.FindStringSubmatch(message)
	if match == nil {
		return
	}

	for _, tier := range f.tiers {
		if tier.Name == match[1] {
			f.cart.SetTierError(tier.ID, message)
			return
		}
	}
}

// BeginConfirmation moves the flow into the confirming state and
// returns the generation the payment callbacks must carry back
func (f *Flow) BeginConfirmation() int {
	if f.state == StatePaymentRequired {
		f.state = StateConfirming
	}
	return f.generation
}

// ConfirmSucceeded handles the embedded payment success callback. A
// stale generation means the user abandoned the flow; the callback is
// ignored and the order is reconciled server-side by order reference.
func (f *Flow) ConfirmSucceeded(generation int, orderRef string) {
	if generation != f.generation {
		return
	}

	if f.state != StateConfirming && f.state != StatePaymentRequired {
		return
	}

	f.state = StateSucceeded
	if orderRef != "" {
		f.orderRef = orderRef
	}
	f.cart.Clear()
	f.buyer = models.BuyerInfo{}
	f.clientSecret = ""
	f.redirectTo = successPath(f.orderRef)
}

// ConfirmFailed handles the embedded payment error callback: the
// provider's message is surfaced, the cart is preserved, and the flow
// stays in the payment-required state for retry.
func (f *Flow) ConfirmFailed(generation int, message string) {
	if generation != f.generation {
		return
	}

	if f.state != StateConfirming && f.state != StatePaymentRequired {
		return
	}

	f.state = StatePaymentRequired
	f.paymentError = message
}

// Abandon marks the flow as left by the user. The generation bump makes
// any in-flight request or late payment callback a no-op.
func (f *Flow) Abandon() {
	f.generation++
	f.state = StateIdle
	f.clientSecret = ""
	f.redirectTo = ""
}

// successPath builds the order-success redirect target
func successPath(orderRef string) string {
	return fmt.Sprintf("/orders/%s?success=1", orderRef)
}
