package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"community-tickets/internal/models"
)

// DiscountRepository handles discount code data operations
type DiscountRepository struct {
	db *sql.DB
}

// NewDiscountRepository creates a new discount repository
func NewDiscountRepository(db *sql.DB) *DiscountRepository {
	return &DiscountRepository{db: db}
}

const discountColumns = `id, code, event_id, discount_type, percent, amount_cents, active, expires_at, created_at`

// Create creates a new discount code
func (r *DiscountRepository) Create(discount *models.DiscountCode) (*models.DiscountCode, error) {
	if err := discount.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO discount_codes (code, event_id, discount_type, percent, amount_cents, active, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + discountColumns

	created, err := scanDiscount(r.db.QueryRow(
		query,
		strings.ToUpper(discount.Code),
		discount.EventID,
		discount.Type,
		discount.Percent,
		discount.AmountCents,
		discount.Active,
		discount.ExpiresAt,
		time.Now(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create discount code: %w", err)
	}

	return created, nil
}

// GetByCode retrieves a discount code; lookup is case-insensitive
func (r *DiscountRepository) GetByCode(code string) (*models.DiscountCode, error) {
	query := fmt.Sprintf("SELECT %s FROM discount_codes WHERE code = $1", discountColumns)

	discount, err := scanDiscount(r.db.QueryRow(query, strings.ToUpper(code)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrDiscountNotFound
		}
		return nil, fmt.Errorf("failed to get discount code: %w", err)
	}

	return discount, nil
}

// scanDiscount scans a full discount code row
func scanDiscount(row rowScanner) (*models.DiscountCode, error) {
	discount := &models.DiscountCode{}
	var eventID sql.NullInt64
	var expiresAt sql.NullTime

	err := row.Scan(
		&discount.ID,
		&discount.Code,
		&eventID,
		&discount.Type,
		&discount.Percent,
		&discount.AmountCents,
		&discount.Active,
		&expiresAt,
		&discount.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if eventID.Valid {
		value := int(eventID.Int64)
		discount.EventID = &value
	}
	if expiresAt.Valid {
		discount.ExpiresAt = &expiresAt.Time
	}

	return discount, nil
}
