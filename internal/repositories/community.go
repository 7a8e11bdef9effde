package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"community-tickets/internal/models"

	"github.com/lib/pq"
)

// CommunityRepository handles community data operations
type CommunityRepository struct {
	db *sql.DB
}

// NewCommunityRepository creates a new community repository
func NewCommunityRepository(db *sql.DB) *CommunityRepository {
	return &CommunityRepository{db: db}
}

const communityColumns = `id, name, slug, description, business_name, contact_email, created_at`

// Create creates a new community
func (r *CommunityRepository) Create(req *models.CommunityCreateRequest, slug string) (*models.Community, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO communities (name, slug, description, business_name, contact_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + communityColumns

	community, err := scanCommunity(r.db.QueryRow(
		query,
		req.Name,
		slug,
		req.Description,
		req.BusinessName,
		req.ContactEmail,
		time.Now(),
	))
	if err != nil {
		// Unique violation on the slug means the name is taken.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, models.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create community: %w", err)
	}

	return community, nil
}

// GetByID retrieves a community by ID
func (r *CommunityRepository) GetByID(id int) (*models.Community, error) {
	query := fmt.Sprintf("SELECT %s FROM communities WHERE id = $1", communityColumns)

	community, err := scanCommunity(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrCommunityNotFound
		}
		return nil, fmt.Errorf("failed to get community: %w", err)
	}

	return community, nil
}

// GetBySlug retrieves a community by slug
func (r *CommunityRepository) GetBySlug(slug string) (*models.Community, error) {
	query := fmt.Sprintf("SELECT %s FROM communities WHERE slug = $1", communityColumns)

	community, err := scanCommunity(r.db.QueryRow(query, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrCommunityNotFound
		}
		return nil, fmt.Errorf("failed to get community: %w", err)
	}

	return community, nil
}

// List retrieves all communities in creation order
func (r *CommunityRepository) List() ([]*models.Community, error) {
	query := fmt.Sprintf("SELECT %s FROM communities ORDER BY created_at DESC", communityColumns)

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list communities: %w", err)
	}
	defer rows.Close()

	var communities []*models.Community
	for rows.Next() {
		community, err := scanCommunity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan community: %w", err)
		}
		communities = append(communities, community)
	}

	return communities, rows.Err()
}

// scanCommunity scans a full community row
func scanCommunity(row rowScanner) (*models.Community, error) {
	community := &models.Community{}
	err := row.Scan(
		&community.ID,
		&community.Name,
		&community.Slug,
		&community.Description,
		&community.BusinessName,
		&community.ContactEmail,
		&community.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return community, nil
}
