package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"community-tickets/internal/models"
)

// LeadRepository handles admin lead data operations
type LeadRepository struct {
	db *sql.DB
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `id, name, email, phone, community, package_code, message,
	status, invite_token, resend_count, created_at, updated_at`

// Create creates a new lead
func (r *LeadRepository) Create(req *models.LeadCreateRequest) (*models.Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO leads (name, email, phone, community, package_code, message,
			status, invite_token, resend_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + leadColumns

	now := time.Now()
	lead, err := scanLead(r.db.QueryRow(
		query,
		req.Name,
		req.Email,
		req.Phone,
		req.Community,
		req.PackageCode,
		req.Message,
		models.LeadPending,
		"",
		0,
		now,
		now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	return lead, nil
}

// GetByID retrieves a lead by ID
func (r *LeadRepository) GetByID(id int) (*models.Lead, error) {
	query := fmt.Sprintf("SELECT %s FROM leads WHERE id = $1", leadColumns)

	lead, err := scanLead(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	return lead, nil
}

// Update updates a lead's editable fields
func (r *LeadRepository) Update(id int, req *models.LeadUpdateRequest) (*models.Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE leads
		SET name = COALESCE(NULLIF($1, ''), name),
			phone = $2,
			community = $3,
			package_code = $4,
			status = COALESCE(NULLIF($5, '')::VARCHAR, status),
			updated_at = $6
		WHERE id = $7
		RETURNING ` + leadColumns

	lead, err := scanLead(r.db.QueryRow(
		query,
		req.Name,
		req.Phone,
		req.Community,
		req.PackageCode,
		string(req.Status),
		time.Now(),
		id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	return lead, nil
}

// Delete removes a lead
func (r *LeadRepository) Delete(id int) error {
	result, err := r.db.Exec("DELETE FROM leads WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrLeadNotFound
	}
	return nil
}

// Search retrieves leads matching the admin console filters, returning
// the page of results and the total match count
func (r *LeadRepository) Search(filters models.LeadSearchFilters) ([]*models.Lead, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filters.Status)
		argIndex++
	}

	if filters.PackageCode != "" {
		conditions = append(conditions, fmt.Sprintf("package_code = $%d", argIndex))
		args = append(args, filters.PackageCode)
		argIndex++
	}

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR community ILIKE $%d)", argIndex, argIndex, argIndex))
		args = append(args, "%"+filters.Search+"%")
		argIndex++
	}

	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIndex))
		args = append(args, *filters.DateFrom)
		argIndex++
	}

	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIndex))
		args = append(args, *filters.DateTo)
		argIndex++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leads %s", where)
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	query := fmt.Sprintf(
		"SELECT %s FROM leads %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		leadColumns, where, argIndex, argIndex+1,
	)
	args = append(args, limit, filters.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search leads: %w", err)
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}

	return leads, total, rows.Err()
}

// SetStatus updates a lead's status and invite token
func (r *LeadRepository) SetStatus(id int, status models.LeadStatus, inviteToken string) (*models.Lead, error) {
	query := `
		UPDATE leads
		SET status = $1, invite_token = $2, updated_at = $3
		WHERE id = $4
		RETURNING ` + leadColumns

	lead, err := scanLead(r.db.QueryRow(query, status, inviteToken, time.Now(), id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to update lead status: %w", err)
	}

	return lead, nil
}

// RecordResend bumps the resend counter for a lead's invite
func (r *LeadRepository) RecordResend(id int) (*models.Lead, error) {
	query := `
		UPDATE leads
		SET resend_count = resend_count + 1, updated_at = $1
		WHERE id = $2
		RETURNING ` + leadColumns

	lead, err := scanLead(r.db.QueryRow(query, time.Now(), id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to record invite resend: %w", err)
	}

	return lead, nil
}

// scanLead scans a full lead row
func scanLead(row rowScanner) (*models.Lead, error) {
	lead := &models.Lead{}
	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Community,
		&lead.PackageCode,
		&lead.Message,
		&lead.Status,
		&lead.InviteToken,
		&lead.ResendCount,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return lead, nil
}
