package services

import (
	"log"
	"time"

	"community-tickets/internal/models"
)

// OrderService serves the order success page and the background expiry
// sweep for abandoned pending orders.
type OrderService struct {
	orders OrderRepository
	events EventRepository
}

// NewOrderService creates a new order service
func NewOrderService(orders OrderRepository, events EventRepository) *OrderService {
	return &OrderService{orders: orders, events: events}
}

// GetOrder retrieves an order by order number or payment session ID,
// with its tickets and event attached
func (s *OrderService) GetOrder(ref string) (*models.Order, *models.Event, error) {
	order, err := s.orders.GetByRef(ref)
	if err != nil {
		return nil, nil, err
	}

	tickets, err := s.orders.GetTicketsByOrder(order.ID)
	if err != nil {
		return nil, nil, err
	}
	order.Tickets = tickets

	event, err := s.events.GetByID(order.EventID)
	if err != nil {
		return nil, nil, err
	}

	return order, event, nil
}

// CancelOrder cancels a pending order and releases its inventory
func (s *OrderService) CancelOrder(ref string) (*models.Order, error) {
	order, err := s.orders.GetByRef(ref)
	if err != nil {
		return nil, err
	}

	if err := s.orders.Cancel(order.ID); err != nil {
		return nil, err
	}

	order.Status = models.OrderCancelled
	return order, nil
}

// ExpireStaleOrders cancels pending orders older than the expiry window,
// releasing their reserved tickets. Intended to run on a timer.
func (s *OrderService) ExpireStaleOrders(expiry time.Duration) (int, error) {
	cancelled, err := s.orders.CancelExpired(expiry)
	if err != nil {
		return 0, err
	}

	if cancelled > 0 {
		log.Printf("Orders: expired %d stale pending order(s)", cancelled)
	}

	return cancelled, nil
}

// StartExpirySweep runs the expiry sweep on an interval until the stop
// channel closes
func (s *OrderService) StartExpirySweep(interval, expiry time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.ExpireStaleOrders(expiry); err != nil {
				log.Printf("Orders: expiry sweep failed: %v", err)
			}
		case <-stop:
			return
		}
	}
}
