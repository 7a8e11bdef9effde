package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"community-tickets/internal/checkout"
	"community-tickets/internal/models"
	"community-tickets/internal/repositories"
)

// EventRepository defines the event data operations the services need
type EventRepository interface {
	Create(req *models.EventCreateRequest, slug string) (*models.Event, error)
	GetByID(id int) (*models.Event, error)
	GetBySlug(slug string) (*models.Event, error)
	Search(filters models.EventSearchFilters) ([]*models.Event, error)
	Publish(id int) error
	CreateTier(req *models.TierCreateRequest) (*models.TicketTier, error)
}

// OrderRepository defines the order data operations the services need
type OrderRepository interface {
	CreateWithReservation(req *models.OrderCreateRequest, items []repositories.OrderItem) (*models.Order, error)
	GetByRef(ref string) (*models.Order, error)
	GetItems(orderID int) ([]repositories.OrderItem, error)
	SetPaymentSession(orderID int, sessionID string) error
	Complete(orderID int, tickets []repositories.TicketData) error
	Cancel(orderID int) error
	CancelExpired(expiry time.Duration) (int, error)
	GetTicketsByOrder(orderID int) ([]*models.Ticket, error)
	GetTicketByQRToken(token string) (*models.Ticket, error)
	UpdateTicketStatus(ticketID int, status models.TicketStatus) error
}

// DiscountRepository defines the discount code lookups the services need
type DiscountRepository interface {
	GetByCode(code string) (*models.DiscountCode, error)
}

// CheckoutService orchestrates the server side of checkout: it
// re-validates carts against current inventory, prices them, reserves
// tickets atomically, and drives the payment gateway. Client-side
// validation never substitutes for the checks here.
type CheckoutService struct {
	events    EventRepository
	orders    OrderRepository
	discounts DiscountRepository
	gateway   PaymentGateway
	currency  string
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(events EventRepository, orders OrderRepository, discounts DiscountRepository, gateway PaymentGateway, currency string) *CheckoutService {
	if currency == "" {
		currency = "CAD"
	}
	return &CheckoutService{
		events:    events,
		orders:    orders,
		discounts: discounts,
		gateway:   gateway,
		currency:  currency,
	}
}

// preparedOrder carries a priced, reserved order through to payment setup
type preparedOrder struct {
	order     *models.Order
	breakdown checkout.PriceBreakdown
	buyer     models.BuyerInfo
	items     []repositories.OrderItem
}

// CreatePaymentIntent handles the embedded-payment checkout path. A
// free cart finalizes the order immediately; a paid cart reserves the
// tickets and returns a client secret for the payment form. Domain
// rejections come back as error outcomes with buyer-facing messages;
// the returned error is reserved for infrastructure failures.
func (s *CheckoutService) CreatePaymentIntent(req *checkout.IntentRequest) (*checkout.Outcome, error) {
	prepared, rejection, err := s.prepareOrder(req)
	if err != nil {
		return nil, err
	}
	if rejection != nil {
		return rejection, nil
	}

	if prepared.breakdown.TotalCents == 0 {
		return s.finalizeFreeOrder(prepared)
	}

	intent, err := s.gateway.CreateIntent(prepared.breakdown.TotalCents, s.currency, prepared.buyer, prepared.order.OrderNumber)
	if err != nil {
		s.releaseOrder(prepared.order)
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if err := s.orders.SetPaymentSession(prepared.order.ID, intent.SessionID); err != nil {
		s.releaseOrder(prepared.order)
		return nil, err
	}

	return &checkout.Outcome{
		Kind:         checkout.OutcomePaymentRequired,
		ClientSecret: intent.ClientSecret,
		OrderRef:     prepared.order.OrderNumber,
	}, nil
}

// CreateHostedSession handles the redirect-based checkout path (legacy).
// The order is reserved the same way; the buyer completes payment on the
// provider's hosted page and returns via the return URL.
func (s *CheckoutService) CreateHostedSession(req *checkout.IntentRequest, returnURL string) (*checkout.Outcome, error) {
	prepared, rejection, err := s.prepareOrder(req)
	if err != nil {
		return nil, err
	}
	if rejection != nil {
		return rejection, nil
	}

	if prepared.breakdown.TotalCents == 0 {
		return s.finalizeFreeOrder(prepared)
	}

	session, err := s.gateway.CreateHostedSession(prepared.breakdown.TotalCents, s.currency, prepared.buyer, prepared.order.OrderNumber, returnURL)
	if err != nil {
		s.releaseOrder(prepared.order)
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	if err := s.orders.SetPaymentSession(prepared.order.ID, session.SessionID); err != nil {
		s.releaseOrder(prepared.order)
		return nil, err
	}

	return &checkout.Outcome{
		Kind:        checkout.OutcomeHostedRedirect,
		CheckoutURL: session.CheckoutURL,
		TestMode:    session.TestMode,
		OrderRef:    prepared.order.OrderNumber,
	}, nil
}

// prepareOrder runs the shared front half of both checkout paths:
// event lookup, cart rebuild, validation, pricing, and the atomic
// inventory reservation. A non-nil rejection outcome means the request
// was rejected on its merits.
func (s *CheckoutService) prepareOrder(req *checkout.IntentRequest) (*preparedOrder, *checkout.Outcome, error) {
	event, err := s.events.GetByID(req.EventID)
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			return nil, rejectionOutcome("event not found"), nil
		}
		return nil, nil, err
	}

	if !event.IsPublished() {
		return nil, rejectionOutcome("event is not available for ticket sales"), nil
	}

	// Rebuild the cart server-side; duplicate tier entries in the
	// request collapse to the last quantity.
	cart := checkout.NewCart(event.ID)
	for _, item := range req.Items {
		cart.SetQuantity(item.TierID, item.Quantity)
	}
	if cart.IsEmpty() {
		return nil, rejectionOutcome("cart is empty"), nil
	}

	buyer := models.BuyerInfo{
		Name:  req.BuyerName,
		Email: req.BuyerEmail,
		Phone: req.BuyerPhone,
	}
	if err := buyer.Validate(); err != nil {
		return nil, rejectionOutcome(err.Error()), nil
	}

	tiers := make(map[int]*models.TicketTier, len(event.Tiers))
	for _, tier := range event.Tiers {
		tiers[tier.ID] = tier
	}

	if errs := checkout.ValidateCart(cart, tiers); len(errs) > 0 {
		// Report the first failing line in cart order.
		for _, item := range cart.Items {
			if msg, ok := errs[item.TierID]; ok {
				return nil, rejectionOutcome(msg), nil
			}
		}
	}

	var discount *models.DiscountCode
	if req.DiscountCode != "" {
		discount, err = s.discounts.GetByCode(req.DiscountCode)
		if err != nil {
			if errors.Is(err, models.ErrDiscountNotFound) {
				return nil, rejectionOutcome("discount code is not valid"), nil
			}
			return nil, nil, err
		}
		if !discount.IsUsable(event.ID) {
			return nil, rejectionOutcome("discount code is not valid"), nil
		}
	}

	breakdown := checkout.PriceWithDiscount(cart, tiers, event.FeeStructure, event.Tax, discount)

	items := make([]repositories.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		tier := tiers[line.TierID]
		items = append(items, repositories.OrderItem{
			TierID:     tier.ID,
			TierName:   tier.Name,
			Quantity:   line.Quantity,
			PriceCents: tier.PriceCents,
		})
	}

	order, err := s.orders.CreateWithReservation(&models.OrderCreateRequest{
		EventID:       event.ID,
		SubtotalCents: breakdown.SubtotalCents,
		TaxCents:      breakdown.TaxCents,
		FeeCents:      breakdown.FeeCents,
		DiscountCents: breakdown.DiscountCents,
		TotalCents:    breakdown.TotalCents,
		DiscountCode:  req.DiscountCode,
		Buyer:         buyer,
		Status:        models.OrderPending,
	}, items)
	if err != nil {
		// An inventory conflict after clean validation is an expected
		// race with other buyers; the message names the tier so the
		// client can attach it to the right cart line.
		if errors.Is(err, models.ErrInsufficientStock) {
			return nil, rejectionOutcome(err.Error()), nil
		}
		return nil, nil, err
	}

	return &preparedOrder{
		order:     order,
		breakdown: breakdown,
		buyer:     buyer,
		items:     items,
	}, nil, nil
}

// finalizeFreeOrder completes a zero-total order immediately and issues
// its tickets; no payment provider is involved.
func (s *CheckoutService) finalizeFreeOrder(prepared *preparedOrder) (*checkout.Outcome, error) {
	if err := s.orders.Complete(prepared.order.ID, issueTickets(prepared.items)); err != nil {
		return nil, err
	}

	log.Printf("Checkout: free order %s completed", prepared.order.OrderNumber)

	return &checkout.Outcome{
		Kind:     checkout.OutcomeFree,
		OrderRef: prepared.order.OrderNumber,
		Message:  "order confirmed, no payment required",
	}, nil
}

// ConfirmPayment confirms a payment session with the gateway and, on
// success, completes the order and issues its tickets. Confirming an
// already completed order is a no-op and returns the order as is, so
// retried callbacks stay safe.
func (s *CheckoutService) ConfirmPayment(sessionID string) (*models.Order, error) {
	order, err := s.orders.GetByRef(sessionID)
	if err != nil {
		return nil, err
	}

	if order.IsCompleted() {
		return s.withTickets(order)
	}

	if !order.CanBeCompleted() {
		return nil, fmt.Errorf("order %s cannot be completed: %w", order.OrderNumber, models.ErrInvalidInput)
	}

	confirmation, err := s.gateway.ConfirmPayment(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	if !confirmation.Succeeded() {
		return nil, fmt.Errorf("%s: %w", confirmation.ErrorMessage, models.ErrPaymentFailed)
	}

	items, err := s.orders.GetItems(order.ID)
	if err != nil {
		return nil, err
	}

	if err := s.orders.Complete(order.ID, issueTickets(items)); err != nil {
		return nil, err
	}

	order.Status = models.OrderCompleted
	log.Printf("Checkout: order %s completed via session %s", order.OrderNumber, sessionID)

	return s.withTickets(order)
}

// withTickets loads and attaches an order's tickets
func (s *CheckoutService) withTickets(order *models.Order) (*models.Order, error) {
	tickets, err := s.orders.GetTicketsByOrder(order.ID)
	if err != nil {
		return nil, err
	}
	order.Tickets = tickets
	return order, nil
}

// releaseOrder cancels a reserved order after a payment setup failure,
// returning its tickets to the pool. Best effort: a failure here is
// logged and the expiry sweep will reclaim the inventory later.
func (s *CheckoutService) releaseOrder(order *models.Order) {
	if err := s.orders.Cancel(order.ID); err != nil {
		log.Printf("Checkout: failed to release order %s: %v", order.OrderNumber, err)
	}
}

// issueTickets generates one ticket per seat across the order's lines
func issueTickets(items []repositories.OrderItem) []repositories.TicketData {
	var tickets []repositories.TicketData
	for _, item := range items {
		for i := 0; i < item.Quantity; i++ {
			tickets = append(tickets, repositories.TicketData{
				TierID:  item.TierID,
				QRToken: NewQRToken(),
			})
		}
	}
	return tickets
}

// rejectionOutcome wraps a buyer-facing rejection message
func rejectionOutcome(message string) *checkout.Outcome {
	return &checkout.Outcome{Kind: checkout.OutcomeError, Err: message}
}
