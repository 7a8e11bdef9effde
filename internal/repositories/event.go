package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"community-tickets/internal/models"
)

// EventRepository handles event and ticket tier data operations
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, community_id, title, slug, description, location, category,
	start_time, end_time, status, refund_policy,
	fee_type, fee_mode, fee_percent, fee_amount_cents, service_fee_percent,
	has_gst, has_pst, gst_percent, pst_percent, created_at, updated_at`

// Create creates a new event
func (r *EventRepository) Create(req *models.EventCreateRequest, slug string) (*models.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	tax := req.TaxSettings()

	var feeType, feeMode sql.NullString
	var feePercent, serviceFeePercent float64
	var feeAmountCents int
	if req.FeeStructure != nil {
		feeType = sql.NullString{String: req.FeeStructure.Type, Valid: true}
		if req.FeeStructure.Mode != "" {
			feeMode = sql.NullString{String: req.FeeStructure.Mode, Valid: true}
		}
		feePercent = req.FeeStructure.Percent
		feeAmountCents = req.FeeStructure.AmountCents
		serviceFeePercent = req.FeeStructure.ServiceFeePercent
	}

	query := `
		INSERT INTO events (community_id, title, slug, description, location, category,
			start_time, end_time, status, refund_policy,
			fee_type, fee_mode, fee_percent, fee_amount_cents, service_fee_percent,
			has_gst, has_pst, gst_percent, pst_percent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING ` + eventColumns

	now := time.Now()
	row := r.db.QueryRow(
		query,
		req.CommunityID,
		req.Title,
		slug,
		req.Description,
		req.Location,
		req.Category,
		req.StartTime,
		req.EndTime,
		models.EventDraft,
		req.RefundPolicy,
		feeType,
		feeMode,
		feePercent,
		feeAmountCents,
		serviceFeePercent,
		tax.HasGST,
		tax.HasPST,
		tax.GSTPercent,
		tax.PSTPercent,
		now,
		now,
	)

	event, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}

// GetBySlug retrieves an event by slug, with its tiers loaded
func (r *EventRepository) GetBySlug(slug string) (*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE slug = $1", eventColumns)

	event, err := scanEvent(r.db.QueryRow(query, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	tiers, err := r.GetTiersByEvent(event.ID)
	if err != nil {
		return nil, err
	}
	event.Tiers = tiers

	return event, nil
}

// GetByID retrieves an event by ID, with its tiers loaded
func (r *EventRepository) GetByID(id int) (*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE id = $1", eventColumns)

	event, err := scanEvent(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	tiers, err := r.GetTiersByEvent(event.ID)
	if err != nil {
		return nil, err
	}
	event.Tiers = tiers

	return event, nil
}

// Search retrieves published events matching the browse filters
func (r *EventRepository) Search(filters models.EventSearchFilters) ([]*models.Event, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
	args = append(args, models.EventPublished)
	argIndex++

	if filters.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, filters.Category)
		argIndex++
	}

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filters.Search+"%")
		argIndex++
	}

	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("start_time >= $%d", argIndex))
		args = append(args, *filters.DateFrom)
		argIndex++
	}

	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("start_time <= $%d", argIndex))
		args = append(args, *filters.DateTo)
		argIndex++
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := fmt.Sprintf(
		"SELECT %s FROM events WHERE %s ORDER BY start_time ASC LIMIT $%d OFFSET $%d",
		eventColumns, strings.Join(conditions, " AND "), argIndex, argIndex+1,
	)
	args = append(args, limit, filters.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// Publish marks an event as published
func (r *EventRepository) Publish(id int) error {
	result, err := r.db.Exec(
		"UPDATE events SET status = $1, updated_at = $2 WHERE id = $3",
		models.EventPublished, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrEventNotFound
	}
	return nil
}

// CreateTier creates a new ticket tier for an event
func (r *EventRepository) CreateTier(req *models.TierCreateRequest) (*models.TicketTier, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO ticket_tiers (event_id, name, description, price_cents, capacity,
			sold_count, min_per_order, max_per_order, sale_start, sale_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, event_id, name, description, price_cents, capacity, sold_count,
			min_per_order, max_per_order, sale_start, sale_end, created_at`

	row := r.db.QueryRow(
		query,
		req.EventID,
		req.Name,
		req.Description,
		req.PriceCents,
		req.Capacity,
		0, // Initial sold count
		req.MinPerOrder,
		req.MaxPerOrder,
		req.SaleStart,
		req.SaleEnd,
		time.Now(),
	)

	tier, err := scanTier(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket tier: %w", err)
	}

	return tier, nil
}

// GetTiersByEvent retrieves all ticket tiers for an event in creation order
func (r *EventRepository) GetTiersByEvent(eventID int) ([]*models.TicketTier, error) {
	query := `
		SELECT id, event_id, name, description, price_cents, capacity, sold_count,
			min_per_order, max_per_order, sale_start, sale_end, created_at
		FROM ticket_tiers
		WHERE event_id = $1
		ORDER BY id`

	rows, err := r.db.Query(query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket tiers: %w", err)
	}
	defer rows.Close()

	var tiers []*models.TicketTier
	for rows.Next() {
		tier, err := scanTier(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket tier: %w", err)
		}
		tiers = append(tiers, tier)
	}

	return tiers, rows.Err()
}

// GetTierByID retrieves a ticket tier by ID
func (r *EventRepository) GetTierByID(id int) (*models.TicketTier, error) {
	query := `
		SELECT id, event_id, name, description, price_cents, capacity, sold_count,
			min_per_order, max_per_order, sale_start, sale_end, created_at
		FROM ticket_tiers
		WHERE id = $1`

	tier, err := scanTier(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTierNotFound
		}
		return nil, fmt.Errorf("failed to get ticket tier: %w", err)
	}

	return tier, nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanEvent scans a full event row, mapping nullable fee columns into
// an optional FeeStructure
func scanEvent(row rowScanner) (*models.Event, error) {
	event := &models.Event{}
	var feeType, feeMode sql.NullString
	var feePercent, serviceFeePercent float64
	var feeAmountCents int

	err := row.Scan(
		&event.ID,
		&event.CommunityID,
		&event.Title,
		&event.Slug,
		&event.Description,
		&event.Location,
		&event.Category,
		&event.StartTime,
		&event.EndTime,
		&event.Status,
		&event.RefundPolicy,
		&feeType,
		&feeMode,
		&feePercent,
		&feeAmountCents,
		&serviceFeePercent,
		&event.Tax.HasGST,
		&event.Tax.HasPST,
		&event.Tax.GSTPercent,
		&event.Tax.PSTPercent,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if feeType.Valid {
		event.FeeStructure = &models.FeeStructure{
			Type:              feeType.String,
			Mode:              feeMode.String,
			Percent:           feePercent,
			AmountCents:       feeAmountCents,
			ServiceFeePercent: serviceFeePercent,
		}
	}

	return event, nil
}

// scanTier scans a ticket tier row
func scanTier(row rowScanner) (*models.TicketTier, error) {
	tier := &models.TicketTier{}
	var capacity sql.NullInt64
	var saleStart, saleEnd sql.NullTime

	err := row.Scan(
		&tier.ID,
		&tier.EventID,
		&tier.Name,
		&tier.Description,
		&tier.PriceCents,
		&capacity,
		&tier.SoldCount,
		&tier.MinPerOrder,
		&tier.MaxPerOrder,
		&saleStart,
		&saleEnd,
		&tier.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if capacity.Valid {
		value := int(capacity.Int64)
		tier.Capacity = &value
	}
	if saleStart.Valid {
		tier.SaleStart = &saleStart.Time
	}
	if saleEnd.Valid {
		tier.SaleEnd = &saleEnd.Time
	}

	return tier, nil
}
