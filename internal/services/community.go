package services

import (
	"community-tickets/internal/models"

	"github.com/gosimple/slug"
)

// CommunityService handles community organizer accounts
type CommunityService struct {
	communities CommunityRepository
}

// NewCommunityService creates a new community service
func NewCommunityService(communities CommunityRepository) *CommunityService {
	return &CommunityService{communities: communities}
}

// CreateCommunity creates a community with a slug derived from its name
func (s *CommunityService) CreateCommunity(req *models.CommunityCreateRequest) (*models.Community, error) {
	return s.communities.Create(req, slug.Make(req.Name))
}

// GetCommunity retrieves a community by slug
func (s *CommunityService) GetCommunity(communitySlug string) (*models.Community, error) {
	return s.communities.GetBySlug(communitySlug)
}

// ListCommunities retrieves all communities
func (s *CommunityService) ListCommunities() ([]*models.Community, error) {
	return s.communities.List()
}
