package services

import (
	"errors"
	"fmt"

	"community-tickets/internal/checkout"
	"community-tickets/internal/models"

	"github.com/gosimple/slug"
)

// CommunityRepository defines the community data operations the services need
type CommunityRepository interface {
	Create(req *models.CommunityCreateRequest, slug string) (*models.Community, error)
	GetByID(id int) (*models.Community, error)
	GetBySlug(slug string) (*models.Community, error)
	List() ([]*models.Community, error)
}

// EventService handles event management and the public event page
type EventService struct {
	events      EventRepository
	communities CommunityRepository
}

// NewEventService creates a new event service
func NewEventService(events EventRepository, communities CommunityRepository) *EventService {
	return &EventService{events: events, communities: communities}
}

// TierView is a tier with its live availability attached for display
type TierView struct {
	*models.TicketTier
	Available bool `json:"available"`
	Remaining *int `json:"remaining"`
}

// EventPage is everything the public event page needs in one response
type EventPage struct {
	Event     *models.Event     `json:"event"`
	Organizer *models.Community `json:"organizer"`
	Tiers     []TierView        `json:"tiers"`
}

// CreateEvent creates a draft event with a slug derived from its title.
// Slug collisions get a numeric suffix.
func (s *EventService) CreateEvent(req *models.EventCreateRequest) (*models.Event, error) {
	if _, err := s.communities.GetByID(req.CommunityID); err != nil {
		return nil, err
	}

	eventSlug, err := s.uniqueSlug(req.Title)
	if err != nil {
		return nil, err
	}

	return s.events.Create(req, eventSlug)
}

// uniqueSlug derives a URL slug from a title, suffixing on collision
func (s *EventService) uniqueSlug(title string) (string, error) {
	base := slug.Make(title)

	candidate := base
	for i := 2; ; i++ {
		_, err := s.events.GetBySlug(candidate)
		if errors.Is(err, models.ErrEventNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// GetEvent retrieves an event by ID with its tiers loaded
func (s *EventService) GetEvent(id int) (*models.Event, error) {
	return s.events.GetByID(id)
}

// PublishEvent makes an event publicly visible
func (s *EventService) PublishEvent(id int) error {
	return s.events.Publish(id)
}

// AddTier adds a ticket tier to an event
func (s *EventService) AddTier(req *models.TierCreateRequest) (*models.TicketTier, error) {
	if _, err := s.events.GetByID(req.EventID); err != nil {
		return nil, err
	}

	return s.events.CreateTier(req)
}

// SearchEvents retrieves published events matching the browse filters
func (s *EventService) SearchEvents(filters models.EventSearchFilters) ([]*models.Event, error) {
	return s.events.Search(filters)
}

// GetEventPage retrieves a published event by slug with its organizer
// and per-tier availability. Draft and cancelled events are not found.
func (s *EventService) GetEventPage(eventSlug string) (*EventPage, error) {
	event, err := s.events.GetBySlug(eventSlug)
	if err != nil {
		return nil, err
	}

	if !event.IsPublished() {
		return nil, models.ErrEventNotFound
	}

	organizer, err := s.communities.GetByID(event.CommunityID)
	if err != nil {
		return nil, err
	}

	tiers := make([]TierView, 0, len(event.Tiers))
	for _, tier := range event.Tiers {
		availability := checkout.TierAvailability(tier)
		tiers = append(tiers, TierView{
			TicketTier: tier,
			Available:  availability.Available,
			Remaining:  availability.Remaining,
		})
	}

	return &EventPage{
		Event:     event,
		Organizer: organizer,
		Tiers:     tiers,
	}, nil
}
