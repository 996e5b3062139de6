package routes

import (
	"greetops/internal/adapters/http/handlers"
	"greetops/internal/adapters/http/middleware"
	"greetops/internal/adapters/persistence/repositories"
	"greetops/internal/config"
	"greetops/internal/core/services"
	"greetops/internal/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application. The sink receives
// committed lifecycle facts for live delivery; nil disables it.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, sink services.EventSink) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	missionRepo := repositories.NewMissionRepository(db)
	eventRepo := repositories.NewMissionEventRepository(db)
	locationRepo := repositories.NewLocationLogRepository(db)
	rateCardRepo := repositories.NewRateCardRepository(db)

	// External file storage
	store := storage.New(cfg.Storage.BaseURL)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo, missionRepo)
	pricingService := services.NewPricingService(rateCardRepo)
	rateCardService := services.NewRateCardService(rateCardRepo)
	missionService := services.NewMissionService(missionRepo, userRepo, pricingService, sink)
	locationService := services.NewLocationService(locationRepo, missionRepo, sink)
	eventService := services.NewEventService(eventRepo, missionRepo, store)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	missionHandler := handlers.NewMissionHandler(missionService, eventService)
	locationHandler := handlers.NewLocationHandler(locationService)
	rateCardHandler := handlers.NewRateCardHandler(rateCardService, pricingService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/health/db", healthHandler.DBHealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler, missionHandler,
		locationHandler, rateCardHandler, dashboardHandler, cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	missionHandler *handlers.MissionHandler,
	locationHandler *handlers.LocationHandler,
	rateCardHandler *handlers.RateCardHandler,
	dashboardHandler *handlers.DashboardHandler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public + provider webhook)
	authRoutes := router.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User directory routes (Authenticated)
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Post("/onboarding/client", userHandler.CompleteClientOnboarding)
	userRoutes.Post("/onboarding/agent", userHandler.CompleteAgentOnboarding)
	userRoutes.Get("/", middleware.AdminOnly(), userHandler.List)

	agentRoutes := router.Group("/agents")
	agentRoutes.Use(middleware.AuthMiddleware(cfg))
	agentRoutes.Get("/", userHandler.ListAgents)
	agentRoutes.Get("/available", userHandler.ListAvailableAgents)
	agentRoutes.Get("/pending", middleware.AdminOnly(), userHandler.ListPendingAgents)

	clientRoutes := router.Group("/clients")
	clientRoutes.Use(middleware.AuthMiddleware(cfg))
	clientRoutes.Get("/", middleware.AdminOnly(), userHandler.ListClients)
	clientRoutes.Get("/:id/rate-cards", rateCardHandler.ListForClient)

	// Mission routes (Authenticated; per-mission authorization in services)
	missionRoutes := router.Group("/missions")
	missionRoutes.Use(middleware.AuthMiddleware(cfg))
	setupMissionRoutes(missionRoutes, missionHandler, locationHandler)

	// Rate card routes
	rateCardRoutes := router.Group("/rate-cards")
	rateCardRoutes.Use(middleware.AuthMiddleware(cfg))
	rateCardRoutes.Get("/", middleware.AdminOnly(), middleware.RateCardCache(), rateCardHandler.List)
	rateCardRoutes.Get("/defaults", middleware.RateCardCache(), rateCardHandler.ListDefaults)
	rateCardRoutes.Post("/", middleware.AdminOnly(), rateCardHandler.Create)
	rateCardRoutes.Patch("/:id", middleware.AdminOnly(), rateCardHandler.Update)
	rateCardRoutes.Delete("/:id", middleware.AdminOnly(), rateCardHandler.Delete)

	// Quote calculation (Authenticated)
	router.Post("/quotes", middleware.AuthMiddleware(cfg), rateCardHandler.Quote)

	// Dashboard routes (Admin only)
	dashboardRoutes := router.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Get("/stats", middleware.AdminOnly(), dashboardHandler.GetStats)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Identity provider webhook (shared-secret protected, rate limited)
	router.Post("/sync", middleware.AuthRateLimiter(), handler.Sync)

	// Session routes
	router.Post("/refresh", middleware.AuthRateLimiter(), handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders(), handler.Me)
}

// setupMissionRoutes configures mission lifecycle routes
func setupMissionRoutes(router fiber.Router, missionHandler *handlers.MissionHandler, locationHandler *handlers.LocationHandler) {
	router.Post("/", missionHandler.Create)
	router.Get("/", missionHandler.List)
	router.Get("/active", locationHandler.ActiveMissions)
	router.Post("/upload-url", middleware.AgentOrAdmin(), missionHandler.UploadURL)
	router.Get("/:id", missionHandler.Get)

	// State machine
	router.Post("/:id/advance", missionHandler.Advance)
	router.Patch("/:id/status", missionHandler.SetStatus)
	router.Post("/:id/assign", middleware.ClientOrAdmin(), missionHandler.AssignAgent)

	// Event trail
	router.Get("/:id/events", missionHandler.ListEvents)
	router.Post("/:id/notes", missionHandler.AddNote)
	router.Post("/:id/photos", middleware.AgentOrAdmin(), missionHandler.AddPhoto)

	// Document attachments
	router.Post("/:id/attachments", missionHandler.AddAttachment)
	router.Get("/:id/attachments", missionHandler.ListAttachments)

	// Location ledger
	router.Post("/:id/locations", middleware.AgentOrAdmin(), locationHandler.Record)
	router.Get("/:id/locations", locationHandler.History)
	router.Get("/:id/locations/latest", locationHandler.Latest)
}
