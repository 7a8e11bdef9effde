package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"community-tickets/internal/config"
	"community-tickets/internal/database"
	"community-tickets/internal/handlers"
	"community-tickets/internal/middleware"
	"community-tickets/internal/repositories"
	"community-tickets/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
)

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

	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		Secure:   cfg.Server.Env == "production",
		SameSite: http.SameSiteLaxMode,
	}

	// Repositories
	eventRepo := repositories.NewEventRepository(db.DB)
	orderRepo := repositories.NewOrderRepository(db.DB)
	discountRepo := repositories.NewDiscountRepository(db.DB)
	leadRepo := repositories.NewLeadRepository(db.DB)
	communityRepo := repositories.NewCommunityRepository(db.DB)

	// Services
	gateway := services.NewTestGateway(cfg.Payment)
	checkoutService := services.NewCheckoutService(eventRepo, orderRepo, discountRepo, gateway, cfg.Ticketing.Currency)
	eventService := services.NewEventService(eventRepo, communityRepo)
	orderService := services.NewOrderService(orderRepo, eventRepo)
	ticketService := services.NewTicketService(orderRepo)
	leadService := services.NewLeadService(leadRepo)
	communityService := services.NewCommunityService(communityRepo)

	// Handlers
	eventHandler := handlers.NewEventHandler(eventService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, cfg.Payment.ReturnURL)
	orderHandler := handlers.NewOrderHandler(orderService, ticketService)
	cartHandler := handlers.NewCartHandler(sessionStore, eventService,
		time.Duration(cfg.Ticketing.CartTTLMinutes)*time.Minute)
	leadHandler := handlers.NewLeadHandler(leadService)
	communityHandler := handlers.NewCommunityHandler(communityService)

	checkoutLimiter := middleware.NewCheckoutRateLimiter(10, time.Minute)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig()))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Route("/api", func(r chi.Router) {
		// Public browse and order endpoints
		r.Get("/events", eventHandler.ListEvents)
		r.Get("/events/{slug}", eventHandler.GetEvent)
		r.Get("/communities", communityHandler.ListCommunities)
		r.Get("/communities/{slug}", communityHandler.GetCommunity)
		r.Get("/orders/{ref}", orderHandler.GetOrder)
		r.Get("/orders/{ref}/tickets.zip", orderHandler.DownloadTickets)
		r.Get("/tickets/{token}/qr.png", orderHandler.TicketQR)
		r.Post("/leads", leadHandler.CreateLead)

		// Cart and checkout, gated behind the ticketing flag
		r.Group(func(r chi.Router) {
			r.Use(middleware.TicketingEnabledMiddleware(cfg.Ticketing.Enabled))

			r.Get("/cart", cartHandler.GetCart)
			r.Put("/cart", cartHandler.UpdateCart)
			r.Delete("/cart", cartHandler.ClearCart)

			r.Group(func(r chi.Router) {
				r.Use(checkoutLimiter.Middleware)
				r.Post("/checkout/payment-intent", checkoutHandler.CreatePaymentIntent)
				r.Post("/checkout/session", checkoutHandler.CreateSession)
			})
			r.Post("/checkout/confirm", checkoutHandler.ConfirmPayment)
			r.Post("/orders/{ref}/cancel", orderHandler.CancelOrder)
		})

		// Admin console
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminKeyMiddleware(cfg.Admin.KeyHash))

			r.Post("/events", eventHandler.CreateEvent)
			r.Post("/events/{id}/publish", eventHandler.PublishEvent)
			r.Post("/events/{id}/tiers", eventHandler.AddTier)
			r.Post("/communities", communityHandler.CreateCommunity)

			r.Get("/leads", leadHandler.ListLeads)
			r.Get("/leads/{id}", leadHandler.GetLead)
			r.Put("/leads/{id}", leadHandler.UpdateLead)
			r.Delete("/leads/{id}", leadHandler.DeleteLead)
			r.Post("/leads/{id}/approve", leadHandler.ApproveLead)
			r.Post("/leads/{id}/reject", leadHandler.RejectLead)
			r.Post("/leads/{id}/revoke", leadHandler.RevokeLead)
			r.Post("/leads/{id}/resend", leadHandler.ResendInvite)

			r.Post("/tickets/{token}/check-in", orderHandler.CheckInTicket)
		})
	})

	// Reclaim inventory from abandoned pending orders.
	stopSweep := make(chan struct{})
	go orderService.StartExpirySweep(
		time.Minute,
		time.Duration(cfg.Ticketing.OrderExpiryMinutes)*time.Minute,
		stopSweep,
	)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	close(stopSweep)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
