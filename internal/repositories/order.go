package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"community-tickets/internal/models"
)

// OrderRepository handles order, order item, and ticket data operations.
// It owns the only true inventory enforcement in the system: the atomic
// decrement-or-reject on tier sold counts. Client-side validation is a
// UX optimization, never a correctness guarantee.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// OrderItem represents one tier line on an order
type OrderItem struct {
	TierID     int    `json:"tierId" db:"tier_id"`
	TierName   string `json:"tierName" db:"tier_name"`
	Quantity   int    `json:"quantity" db:"quantity"`
	PriceCents int    `json:"priceCents" db:"price_cents"`
}

// TicketData carries the fields needed to issue one ticket
type TicketData struct {
	TierID  int
	QRToken string
}

const orderColumns = `id, event_id, order_number, subtotal_cents, tax_cents, fee_cents,
	discount_cents, total_cents, discount_code, status, payment_session_id,
	buyer_email, buyer_name, buyer_phone, created_at, updated_at`

// CreateWithReservation creates a pending order and atomically reserves
// its inventory in one transaction. Each tier's sold count is bumped
// with a guarded update; a tier without enough remaining capacity fails
// the whole transaction with an inventory conflict naming that tier.
func (r *OrderRepository) CreateWithReservation(req *models.OrderCreateRequest, items []OrderItem) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Generate a unique order number (retry on collision)
	orderNumber := models.GenerateOrderNumber()
	for i := 0; i < 5; i++ {
		var exists bool
		err = tx.QueryRow("SELECT EXISTS(SELECT 1 FROM orders WHERE order_number = $1)", orderNumber).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check order number uniqueness: %w", err)
		}
		if !exists {
			break
		}
		orderNumber = models.GenerateOrderNumber()
	}

	query := `
		INSERT INTO orders (event_id, order_number, subtotal_cents, tax_cents, fee_cents,
			discount_cents, total_cents, discount_code, status, payment_session_id,
			buyer_email, buyer_name, buyer_phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + orderColumns

	now := time.Now()
	order, err := scanOrder(tx.QueryRow(
		query,
		req.EventID,
		orderNumber,
		req.SubtotalCents,
		req.TaxCents,
		req.FeeCents,
		req.DiscountCents,
		req.TotalCents,
		req.DiscountCode,
		req.Status,
		"",
		req.Buyer.Email,
		req.Buyer.Name,
		req.Buyer.Phone,
		now,
		now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range items {
		if err := reserveTier(tx, item); err != nil {
			return nil, err
		}

		_, err = tx.Exec(
			"INSERT INTO order_items (order_id, tier_id, quantity, price_cents) VALUES ($1, $2, $3, $4)",
			order.ID, item.TierID, item.Quantity, item.PriceCents,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order creation: %w", err)
	}

	return order, nil
}

// reserveTier performs the atomic decrement-or-reject on one tier. The
// guarded update succeeds only while enough capacity remains; zero rows
// affected means another order got there first.
func reserveTier(tx *sql.Tx, item OrderItem) error {
	result, err := tx.Exec(`
		UPDATE ticket_tiers
		SET sold_count = sold_count + $2
		WHERE id = $1 AND (capacity IS NULL OR sold_count + $2 <= capacity)`,
		item.TierID, item.Quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to reserve tickets: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var name string
		var capacity sql.NullInt64
		var sold int
		err = tx.QueryRow("SELECT name, capacity, sold_count FROM ticket_tiers WHERE id = $1", item.TierID).
			Scan(&name, &capacity, &sold)
		if err != nil {
			return models.ErrTierNotFound
		}

		available := 0
		if capacity.Valid {
			available = int(capacity.Int64) - sold
			if available < 0 {
				available = 0
			}
		}
		return fmt.Errorf("insufficient tickets available for '%s' (requested: %d, available: %d): %w",
			name, item.Quantity, available, models.ErrInsufficientStock)
	}

	return nil
}

// GetByID retrieves an order by ID
func (r *OrderRepository) GetByID(id int) (*models.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE id = $1", orderColumns)

	order, err := scanOrder(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// GetByRef retrieves an order by order number or payment session ID
func (r *OrderRepository) GetByRef(ref string) (*models.Order, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM orders WHERE order_number = $1 OR payment_session_id = $1", orderColumns)

	order, err := scanOrder(r.db.QueryRow(query, ref))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// GetItems retrieves an order's tier lines with tier names resolved
func (r *OrderRepository) GetItems(orderID int) ([]OrderItem, error) {
	query := `
		SELECT oi.tier_id, tt.name, oi.quantity, oi.price_cents
		FROM order_items oi
		JOIN ticket_tiers tt ON tt.id = oi.tier_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.TierID, &item.TierName, &item.Quantity, &item.PriceCents); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// SetPaymentSession records the payment session handle on an order
func (r *OrderRepository) SetPaymentSession(orderID int, sessionID string) error {
	result, err := r.db.Exec(
		"UPDATE orders SET payment_session_id = $1, updated_at = $2 WHERE id = $3",
		sessionID, time.Now(), orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to set payment session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}

// UpdateStatus updates an order's status
func (r *OrderRepository) UpdateStatus(orderID int, status models.OrderStatus) error {
	result, err := r.db.Exec(
		"UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now(), orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}

// Complete marks an order completed and issues its tickets in one
// transaction
func (r *OrderRepository) Complete(orderID int, tickets []TicketData) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4",
		models.OrderCompleted, time.Now(), orderID, models.OrderPending,
	)
	if err != nil {
		return fmt.Errorf("failed to complete order: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("order %d is not pending: %w", orderID, models.ErrInvalidInput)
	}

	for _, ticket := range tickets {
		_, err = tx.Exec(
			"INSERT INTO tickets (order_id, tier_id, qr_token, status, created_at) VALUES ($1, $2, $3, $4, $5)",
			orderID, ticket.TierID, ticket.QRToken, models.TicketActive, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("failed to create ticket: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order completion: %w", err)
	}

	return nil
}

// Cancel cancels a pending order and releases its reserved inventory
func (r *OrderRepository) Cancel(orderID int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4",
		models.OrderCancelled, time.Now(), orderID, models.OrderPending,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("order %d is not pending: %w", orderID, models.ErrInvalidInput)
	}

	// Release the reserved inventory back to each tier.
	_, err = tx.Exec(`
		UPDATE ticket_tiers tt
		SET sold_count = sold_count - oi.quantity
		FROM order_items oi
		WHERE oi.order_id = $1 AND oi.tier_id = tt.id AND tt.sold_count >= oi.quantity`,
		orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to release inventory: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order cancellation: %w", err)
	}

	return nil
}

// CancelExpired cancels pending orders older than the expiry window and
// releases their inventory. Returns the number of orders cancelled.
func (r *OrderRepository) CancelExpired(expiry time.Duration) (int, error) {
	cutoff := time.Now().Add(-expiry)

	rows, err := r.db.Query(
		"SELECT id FROM orders WHERE status = $1 AND created_at < $2",
		models.OrderPending, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to find expired orders: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	cancelled := 0
	for _, id := range ids {
		if err := r.Cancel(id); err != nil {
			continue // already completed or cancelled concurrently
		}
		cancelled++
	}

	return cancelled, nil
}

// GetTicketsByOrder retrieves an order's tickets with tier names resolved
func (r *OrderRepository) GetTicketsByOrder(orderID int) ([]*models.Ticket, error) {
	query := `
		SELECT t.id, t.order_id, t.tier_id, tt.name, t.qr_token, t.status, t.created_at
		FROM tickets t
		JOIN ticket_tiers tt ON tt.id = t.tier_id
		WHERE t.order_id = $1
		ORDER BY t.id`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket := &models.Ticket{}
		err := rows.Scan(
			&ticket.ID,
			&ticket.OrderID,
			&ticket.TierID,
			&ticket.TierName,
			&ticket.QRToken,
			&ticket.Status,
			&ticket.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	return tickets, rows.Err()
}

// GetTicketByQRToken retrieves a ticket by its QR token
func (r *OrderRepository) GetTicketByQRToken(token string) (*models.Ticket, error) {
	query := `
		SELECT t.id, t.order_id, t.tier_id, tt.name, t.qr_token, t.status, t.created_at
		FROM tickets t
		JOIN ticket_tiers tt ON tt.id = t.tier_id
		WHERE t.qr_token = $1`

	ticket := &models.Ticket{}
	err := r.db.QueryRow(query, token).Scan(
		&ticket.ID,
		&ticket.OrderID,
		&ticket.TierID,
		&ticket.TierName,
		&ticket.QRToken,
		&ticket.Status,
		&ticket.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return ticket, nil
}

// UpdateTicketStatus updates a ticket's status
func (r *OrderRepository) UpdateTicketStatus(ticketID int, status models.TicketStatus) error {
	result, err := r.db.Exec("UPDATE tickets SET status = $1 WHERE id = $2", status, ticketID)
	if err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrTicketNotFound
	}
	return nil
}

// scanOrder scans a full order row
func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID,
		&order.EventID,
		&order.OrderNumber,
		&order.SubtotalCents,
		&order.TaxCents,
		&order.FeeCents,
		&order.DiscountCents,
		&order.TotalCents,
		&order.DiscountCode,
		&order.Status,
		&order.PaymentSessionID,
		&order.BuyerEmail,
		&order.BuyerName,
		&order.BuyerPhone,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}
