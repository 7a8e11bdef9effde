package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"community-tickets/internal/checkout"
	"community-tickets/internal/models"
	"community-tickets/internal/repositories"
)

// Mock implementations for testing

type mockEventRepository struct {
	events map[int]*models.Event
}

func newMockEventRepository() *mockEventRepository {
	return &mockEventRepository{events: make(map[int]*models.Event)}
}

func (m *mockEventRepository) Create(req *models.EventCreateRequest, slug string) (*models.Event, error) {
	return nil, errors.New("not implemented")
}

func (m *mockEventRepository) GetByID(id int) (*models.Event, error) {
	event, exists := m.events[id]
	if !exists {
		return nil, models.ErrEventNotFound
	}
	return event, nil
}

func (m *mockEventRepository) GetBySlug(slug string) (*models.Event, error) {
	for _, event := range m.events {
		if event.Slug == slug {
			return event, nil
		}
	}
	return nil, models.ErrEventNotFound
}

func (m *mockEventRepository) Search(filters models.EventSearchFilters) ([]*models.Event, error) {
	return nil, errors.New("not implemented")
}

func (m *mockEventRepository) Publish(id int) error {
	event, exists := m.events[id]
	if !exists {
		return models.ErrEventNotFound
	}
	event.Status = models.EventPublished
	return nil
}

func (m *mockEventRepository) CreateTier(req *models.TierCreateRequest) (*models.TicketTier, error) {
	return nil, errors.New("not implemented")
}

type mockOrderRepository struct {
	orders       map[int]*models.Order
	itemsByOrder map[int][]repositories.OrderItem
	tickets      map[int][]*models.Ticket
	tiers        map[int]*models.TicketTier
	nextID       int
	nextTicketID int
}

func newMockOrderRepository(tiers map[int]*models.TicketTier) *mockOrderRepository {
	return &mockOrderRepository{
		orders:       make(map[int]*models.Order),
		itemsByOrder: make(map[int][]repositories.OrderItem),
		tickets:      make(map[int][]*models.Ticket),
		tiers:        tiers,
		nextID:       1,
		nextTicketID: 1,
	}
}

func (m *mockOrderRepository) CreateWithReservation(req *models.OrderCreateRequest, items []repositories.OrderItem) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Reject the whole order if any line exceeds remaining capacity.
	for _, item := range items {
		tier := m.tiers[item.TierID]
		if tier.Capacity != nil && tier.SoldCount+item.Quantity > *tier.Capacity {
			available := *tier.Capacity - tier.SoldCount
			if available < 0 {
				available = 0
			}
			return nil, fmt.Errorf("insufficient tickets available for '%s' (requested: %d, available: %d): %w",
				tier.Name, item.Quantity, available, models.ErrInsufficientStock)
		}
	}
	for _, item := range items {
		m.tiers[item.TierID].SoldCount += item.Quantity
	}

	order := &models.Order{
		ID:            m.nextID,
		EventID:       req.EventID,
		OrderNumber:   models.GenerateOrderNumber(),
		SubtotalCents: req.SubtotalCents,
		TaxCents:      req.TaxCents,
		FeeCents:      req.FeeCents,
		DiscountCents: req.DiscountCents,
		TotalCents:    req.TotalCents,
		DiscountCode:  req.DiscountCode,
		Status:        req.Status,
		BuyerEmail:    req.Buyer.Email,
		BuyerName:     req.Buyer.Name,
		BuyerPhone:    req.Buyer.Phone,
		CreatedAt:     time.Now(),
	}
	m.orders[order.ID] = order
	m.itemsByOrder[order.ID] = items
	m.nextID++

	return order, nil
}

func (m *mockOrderRepository) GetByRef(ref string) (*models.Order, error) {
	for _, order := range m.orders {
		if order.OrderNumber == ref || (order.PaymentSessionID != "" && order.PaymentSessionID == ref) {
			return order, nil
		}
	}
	return nil, models.ErrOrderNotFound
}

func (m *mockOrderRepository) GetItems(orderID int) ([]repositories.OrderItem, error) {
	return m.itemsByOrder[orderID], nil
}

func (m *mockOrderRepository) SetPaymentSession(orderID int, sessionID string) error {
	order, exists := m.orders[orderID]
	if !exists {
		return models.ErrOrderNotFound
	}
	order.PaymentSessionID = sessionID
	return nil
}

func (m *mockOrderRepository) Complete(orderID int, tickets []repositories.TicketData) error {
	order, exists := m.orders[orderID]
	if !exists {
		return models.ErrOrderNotFound
	}
	if order.Status != models.OrderPending {
		return fmt.Errorf("order %d is not pending: %w", orderID, models.ErrInvalidInput)
	}

	order.Status = models.OrderCompleted
	for _, data := range tickets {
		m.tickets[orderID] = append(m.tickets[orderID], &models.Ticket{
			ID:      m.nextTicketID,
			OrderID: orderID,
			TierID:  data.TierID,
			QRToken: data.QRToken,
			Status:  models.TicketActive,
		})
		m.nextTicketID++
	}
	return nil
}

func (m *mockOrderRepository) Cancel(orderID int) error {
	order, exists := m.orders[orderID]
	if !exists {
		return models.ErrOrderNotFound
	}
	if order.Status != models.OrderPending {
		return fmt.Errorf("order %d is not pending: %w", orderID, models.ErrInvalidInput)
	}

	order.Status = models.OrderCancelled
	for _, item := range m.itemsByOrder[orderID] {
		m.tiers[item.TierID].SoldCount -= item.Quantity
	}
	return nil
}

func (m *mockOrderRepository) CancelExpired(expiry time.Duration) (int, error) {
	cancelled := 0
	for id, order := range m.orders {
		if order.IsExpired(expiry) {
			if err := m.Cancel(id); err == nil {
				cancelled++
			}
		}
	}
	return cancelled, nil
}

func (m *mockOrderRepository) GetTicketsByOrder(orderID int) ([]*models.Ticket, error) {
	return m.tickets[orderID], nil
}

func (m *mockOrderRepository) GetTicketByQRToken(token string) (*models.Ticket, error) {
	for _, tickets := range m.tickets {
		for _, ticket := range tickets {
			if ticket.QRToken == token {
				return ticket, nil
			}
		}
	}
	return nil, models.ErrTicketNotFound
}

func (m *mockOrderRepository) UpdateTicketStatus(ticketID int, status models.TicketStatus) error {
	for _, tickets := range m.tickets {
		for _, ticket := range tickets {
			if ticket.ID == ticketID {
				ticket.Status = status
				return nil
			}
		}
	}
	return models.ErrTicketNotFound
}

type mockDiscountRepository struct {
	codes map[string]*models.DiscountCode
}

func newMockDiscountRepository() *mockDiscountRepository {
	return &mockDiscountRepository{codes: make(map[string]*models.DiscountCode)}
}

func (m *mockDiscountRepository) GetByCode(code string) (*models.DiscountCode, error) {
	discount, exists := m.codes[strings.ToUpper(code)]
	if !exists {
		return nil, models.ErrDiscountNotFound
	}
	return discount, nil
}

// Test fixtures

func checkoutFixture() (*CheckoutService, *mockEventRepository, *mockOrderRepository, *mockDiscountRepository) {
	generalCapacity := 100
	vipCapacity := 2

	general := &models.TicketTier{
		ID: 1, EventID: 7, Name: "General", PriceCents: 2500,
		Capacity: &generalCapacity, MinPerOrder: 1, MaxPerOrder: 8,
	}
	vip := &models.TicketTier{
		ID: 2, EventID: 7, Name: "VIP", PriceCents: 6000,
		Capacity: &vipCapacity, MinPerOrder: 1, MaxPerOrder: 2,
	}
	free := &models.TicketTier{
		ID: 3, EventID: 7, Name: "Free Entry", PriceCents: 0,
		Capacity: &generalCapacity, MinPerOrder: 1, MaxPerOrder: 4,
	}

	event := &models.Event{
		ID:          7,
		CommunityID: 1,
		Title:       "Autumn Makers Showcase",
		Slug:        "autumn-makers-showcase",
		Status:      models.EventPublished,
		Tax:         models.TaxSettings{HasGST: true, HasPST: true},
		FeeStructure: &models.FeeStructure{
			Type: models.FeeBuyerPays, Mode: models.FeeModePercent, Percent: 3,
		},
		Tiers: []*models.TicketTier{general, vip, free},
	}

	events := newMockEventRepository()
	events.events[7] = event

	orders := newMockOrderRepository(map[int]*models.TicketTier{1: general, 2: vip, 3: free})
	discounts := newMockDiscountRepository()

	service := NewCheckoutService(events, orders, discounts, &TestGateway{environment: "test"}, "CAD")
	return service, events, orders, discounts
}

func intentRequest(items ...checkout.CartItem) *checkout.IntentRequest {
	return &checkout.IntentRequest{
		EventID:    7,
		Items:      items,
		BuyerEmail: "ada@example.com",
		BuyerName:  "Ada Example",
	}
}

func TestCreatePaymentIntentPaidOrder(t *testing.T) {
	service, _, orders, _ := checkoutFixture()

	outcome, err := service.CreatePaymentIntent(intentRequest(checkout.CartItem{TierID: 1, Quantity: 2}))
	if err != nil {
		t.Fatalf("CreatePaymentIntent() error = %v", err)
	}

	if outcome.Kind != checkout.OutcomePaymentRequired {
		t.Fatalf("outcome.Kind = %v, want payment required: %+v", outcome.Kind, outcome)
	}
	if outcome.ClientSecret == "" {
		t.Error("payment-required outcome must carry a client secret")
	}

	order, err := orders.GetByRef(outcome.OrderRef)
	if err != nil {
		t.Fatalf("order not found by ref %q", outcome.OrderRef)
	}
	if !order.IsPending() {
		t.Errorf("order status = %s, want pending", order.Status)
	}
	if order.PaymentSessionID == "" {
		t.Error("order should carry its payment session")
	}

	// 5000 subtotal, 250 GST, 350 PST, 150 fee.
	if order.TotalCents != 5750 {
		t.Errorf("order total = %d, want 5750", order.TotalCents)
	}

	if got := orders.tiers[1].SoldCount; got != 2 {
		t.Errorf("sold count = %d, want 2 after reservation", got)
	}
}

func TestCreatePaymentIntentFreeOrder(t *testing.T) {
	service, _, orders, _ := checkoutFixture()

	outcome, err := service.CreatePaymentIntent(intentRequest(checkout.CartItem{TierID: 3, Quantity: 3}))
	if err != nil {
		t.Fatalf("CreatePaymentIntent() error = %v", err)
	}

	if outcome.Kind != checkout.OutcomeFree {
		t.Fatalf("outcome.Kind = %v, want free: %+v", outcome.Kind, outcome)
	}

	order, err := orders.GetByRef(outcome.OrderRef)
	if err != nil {
		t.Fatalf("order not found by ref %q", outcome.OrderRef)
	}
	if !order.IsCompleted() {
		t.Errorf("free order status = %s, want completed", order.Status)
	}

	tickets, _ := orders.GetTicketsByOrder(order.ID)
	if len(tickets) != 3 {
		t.Errorf("issued %d tickets, want 3", len(tickets))
	}
	for _, ticket := range tickets {
		if ticket.QRToken == "" {
			t.Error("every ticket needs a QR token")
		}
	}
}

func TestCreatePaymentIntentInventoryConflict(t *testing.T) {
	service, _, orders, _ := checkoutFixture()
	orders.tiers[2].SoldCount = 1 // one VIP seat left

	outcome, err := service.CreatePaymentIntent(intentRequest(checkout.CartItem{TierID: 2, Quantity: 1}))
	if err != nil {
		t.Fatalf("CreatePaymentIntent() error = %v", err)
	}
	if outcome.Kind != checkout.OutcomePaymentRequired {
		t.Fatalf("first order should reserve the last seat: %+v", outcome)
	}

	// The tier is now fully sold; a second buyer holding a stale page
	// still passes the request through and must be rejected atomically.
	stale := &models.TicketTier{
		ID: 2, EventID: 7, Name: "VIP", PriceCents: 6000,
		Capacity: intp(2), SoldCount: 1, MinPerOrder: 1, MaxPerOrder: 2,
	}
	serviceEvents := service.events.(*mockEventRepository)
	serviceEvents.events[7].Tiers[1] = stale

	outcome, err = service.CreatePaymentIntent(intentRequest(checkout.CartItem{TierID: 2, Quantity: 1}))
	if err != nil {
		t.Fatalf("CreatePaymentIntent() error = %v", err)
	}

	if outcome.Kind != checkout.OutcomeError {
		t.Fatalf("outcome.Kind = %v, want error: %+v", outcome.Kind, outcome)
	}
	if !strings.Contains(outcome.Err, "insufficient tickets available for 'VIP'") {
		t.Errorf("outcome.Err = %q, want the tier named", outcome.Err)
	}
}

func intp(v int) *int { return &v }

func TestCreatePaymentIntentRejections(t *testing.T) {
	tests := []struct {
		name    string
		request *checkout.IntentRequest
		wantErr string
	}{
		{
			name:    "unknown event",
			request: &checkout.IntentRequest{EventID: 99, Items: []checkout.CartItem{{TierID: 1, Quantity: 1}}, BuyerEmail: "ada@example.com", BuyerName: "Ada"},
			wantErr: "event not found",
		},
		{
			name:    "empty cart",
			request: intentRequest(),
			wantErr: "cart is empty",
		},
		{
			name: "invalid buyer",
			request: &checkout.IntentRequest{
				EventID: 7, Items: []checkout.CartItem{{TierID: 1, Quantity: 1}},
				BuyerEmail: "nope", BuyerName: "Ada",
			},
			wantErr: "buyer email format is invalid",
		},
		{
			name:    "quantity above per-order maximum",
			request: intentRequest(checkout.CartItem{TierID: 1, Quantity: 9}),
			wantErr: "maximum 8 ticket(s) per order for this tier",
		},
		{
			name:    "unknown tier",
			request: intentRequest(checkout.CartItem{TierID: 55, Quantity: 1}),
			wantErr: "no longer available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _, _ := checkoutFixture()

			outcome, err := service.CreatePaymentIntent(tt.request)
			if err != nil {
				t.Fatalf("CreatePaymentIntent() error = %v", err)
			}

			if outcome.Kind != checkout.OutcomeError {
				t.Fatalf("outcome.Kind = %v, want error: %+v", outcome.Kind, outcome)
			}
			if !strings.Contains(outcome.Err, tt.wantErr) {
				t.Errorf("outcome.Err = %q, want %q", outcome.Err, tt.wantErr)
			}
		})
	}
}

func TestCreatePaymentIntentUnpublishedEvent(t *testing.T) {
	service, events, _, _ := checkoutFixture()
	events.events[7].Status = models.EventDraft

	outcome, err := service.CreatePaymentIntent(intentRequest(checkout.CartItem{TierID: 1, Quantity: 1}))
	if err != nil {
		t.Fatalf("CreatePaymentIntent() error = %v", err)
	}

	if outcome.Kind != checkout.OutcomeError {
		t.Fatalf("outcome.Kind = %v, want error", outcome.Kind)
	}
	if !strings.Contains(outcome.Err, "not available") {
		t.Errorf("outcome.Err = %q", outcome.Err)
	}
}

func TestCreatePaymentIntentDiscounts(t *testing.T) {
	t.Run("unknown code rejected", func(t *testing.T) {
		service, _, _, _ := checkoutFixture()

		req := intentRequest(checkout.CartItem{TierID: 1, Quantity: 1})
		req.DiscountCode = "NOPE"

		outcome, err := service.CreatePaymentIntent(req)
		if err != nil {
			t.Fatalf("CreatePaymentIntent() error = %v", err)
		}
		if outcome.Kind != checkout.OutcomeError || outcome.Err != "discount code is not valid" {
			t.Errorf("outcome = %+v, want discount rejection", outcome)
		}
	})

	t.Run("valid code reduces the total", func(t *testing.T) {
		service, _, orders, discounts := checkoutFixture()
		discounts.codes["MAKER10"] = &models.DiscountCode{
			Code: "MAKER10", Type: models.DiscountPercent, Percent: 10, Active: true,
		}

		req := intentRequest(checkout.CartItem{TierID: 1, Quantity: 4}) // 10000
		req.DiscountCode = "maker10"

		outcome, err := service.CreatePaymentIntent(req)
		if err != nil {
			t.Fatalf("CreatePaymentIntent() error = %v", err)
		}
		if outcome.Kind != checkout.OutcomePaymentRequired {
			t.Fatalf("outcome = %+v, want payment required", outcome)
		}

		order, _ := orders.GetByRef(outcome.OrderRef)
		if order.DiscountCents != 1000 {
			t.Errorf("DiscountCents = %d, want 1000", order.DiscountCents)
		}
		// Discounted base 9000: 450 GST + 630 PST + 270 fee.
		if order.TotalCents != 10350 {
			t.Errorf("TotalCents = %d, want 10350", order.TotalCents)
		}
	})
}

func TestConfirmPayment(t *testing.T) {
	newPendingOrder := func(t *testing.T) (*CheckoutService, *mockOrderRepository, string) {
		t.Helper()
		service, _, orders, _ := checkoutFixture()

		outcome, err := service.CreatePaymentIntent(intentRequest(checkout.CartItem{TierID: 1, Quantity: 2}))
		if err != nil {
			t.Fatalf("CreatePaymentIntent() error = %v", err)
		}
		order, _ := orders.GetByRef(outcome.OrderRef)
		return service, orders, order.PaymentSessionID
	}

	t.Run("success completes and issues tickets", func(t *testing.T) {
		service, orders, sessionID := newPendingOrder(t)

		order, err := service.ConfirmPayment(sessionID)
		if err != nil {
			t.Fatalf("ConfirmPayment() error = %v", err)
		}

		if !order.IsCompleted() {
			t.Errorf("order status = %s, want completed", order.Status)
		}
		if len(order.Tickets) != 2 {
			t.Errorf("issued %d tickets, want 2", len(order.Tickets))
		}

		if got := orders.tiers[1].SoldCount; got != 2 {
			t.Errorf("sold count = %d, want 2", got)
		}
	})

	t.Run("repeat confirmation is idempotent", func(t *testing.T) {
		service, orders, sessionID := newPendingOrder(t)

		if _, err := service.ConfirmPayment(sessionID); err != nil {
			t.Fatalf("first ConfirmPayment() error = %v", err)
		}
		order, err := service.ConfirmPayment(sessionID)
		if err != nil {
			t.Fatalf("second ConfirmPayment() error = %v", err)
		}

		tickets, _ := orders.GetTicketsByOrder(order.ID)
		if len(tickets) != 2 {
			t.Errorf("tickets duplicated on repeat confirmation: %d", len(tickets))
		}
	})

	t.Run("declined payment keeps the order pending", func(t *testing.T) {
		service, orders, sessionID := newPendingOrder(t)

		// The test gateway declines sessions carrying a fail marker.
		order, _ := orders.GetByRef(sessionID)
		failing := sessionID + "_fail"
		order.PaymentSessionID = failing

		_, err := service.ConfirmPayment(failing)
		if !errors.Is(err, models.ErrPaymentFailed) {
			t.Fatalf("ConfirmPayment() error = %v, want payment failure", err)
		}

		if !order.IsPending() {
			t.Errorf("order status = %s, want pending after a declined payment", order.Status)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		service, _, _ := newPendingOrder(t)

		_, err := service.ConfirmPayment("ps_unknown")
		if !errors.Is(err, models.ErrOrderNotFound) {
			t.Errorf("ConfirmPayment() error = %v, want order not found", err)
		}
	})
}
