package main

import (
	"log"
	"time"

	"community-tickets/internal/config"
	"community-tickets/internal/database"
	"community-tickets/internal/models"
	"community-tickets/internal/repositories"
	"community-tickets/internal/services"
)

// Seeds a demo community with a paid event, a free event, and a
// discount code. Intended for local development only.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	eventRepo := repositories.NewEventRepository(db.DB)
	communityRepo := repositories.NewCommunityRepository(db.DB)
	discountRepo := repositories.NewDiscountRepository(db.DB)

	eventService := services.NewEventService(eventRepo, communityRepo)
	communityService := services.NewCommunityService(communityRepo)

	community, err := communityService.CreateCommunity(&models.CommunityCreateRequest{
		Name:         "Riverside Makers",
		Description:  "A maker collective running workshops and showcases",
		BusinessName: "Riverside Makers Society",
		ContactEmail: "hello@riversidemakers.test",
	})
	if err != nil {
		log.Fatalf("Failed to create community: %v", err)
	}

	start := time.Now().AddDate(0, 1, 0)

	paid, err := eventService.CreateEvent(&models.EventCreateRequest{
		CommunityID: community.ID,
		Title:       "Autumn Makers Showcase",
		Description: "An evening of demos, talks, and hands-on booths.",
		Location:    "Riverside Hall",
		Category:    "showcase",
		StartTime:   start,
		EndTime:     start.Add(4 * time.Hour),
		RefundPolicy: "Full refund up to 48 hours before the event.",
		FeeStructure: &models.FeeStructure{
			Type:    models.FeeBuyerPays,
			Mode:    models.FeeModePercent,
			Percent: 3.0,
		},
		CollectTax: true,
	})
	if err != nil {
		log.Fatalf("Failed to create event: %v", err)
	}

	generalCapacity := 120
	vipCapacity := 20

	tiers := []*models.TierCreateRequest{
		{
			EventID:     paid.ID,
			Name:        "General Admission",
			Description: "Access to all booths and talks",
			PriceCents:  2500,
			Capacity:    &generalCapacity,
			MinPerOrder: 1,
			MaxPerOrder: 8,
		},
		{
			EventID:     paid.ID,
			Name:        "VIP",
			Description: "Early entry and a workshop seat",
			PriceCents:  6000,
			Capacity:    &vipCapacity,
			MinPerOrder: 1,
			MaxPerOrder: 2,
		},
	}
	for _, tier := range tiers {
		if _, err := eventService.AddTier(tier); err != nil {
			log.Fatalf("Failed to create tier %q: %v", tier.Name, err)
		}
	}

	if err := eventService.PublishEvent(paid.ID); err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	free, err := eventService.CreateEvent(&models.EventCreateRequest{
		CommunityID: community.ID,
		Title:       "Open Shop Night",
		Description: "Drop in, meet the makers, use the tools.",
		Location:    "Riverside Hall",
		Category:    "social",
		StartTime:   start.AddDate(0, 0, 7),
		EndTime:     start.AddDate(0, 0, 7).Add(3 * time.Hour),
	})
	if err != nil {
		log.Fatalf("Failed to create event: %v", err)
	}

	openCapacity := 60
	if _, err := eventService.AddTier(&models.TierCreateRequest{
		EventID:     free.ID,
		Name:        "Free Entry",
		PriceCents:  0,
		Capacity:    &openCapacity,
		MinPerOrder: 1,
		MaxPerOrder: 4,
	}); err != nil {
		log.Fatalf("Failed to create tier: %v", err)
	}

	if err := eventService.PublishEvent(free.ID); err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	if _, err := discountRepo.Create(&models.DiscountCode{
		Code:    "MAKER10",
		EventID: &paid.ID,
		Type:    models.DiscountPercent,
		Percent: 10,
		Active:  true,
	}); err != nil {
		log.Fatalf("Failed to create discount code: %v", err)
	}

	log.Printf("Seeded community %q with events %q and %q", community.Name, paid.Title, free.Title)
}
