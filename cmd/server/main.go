package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"greetops/internal/adapters/http/middleware"
	"greetops/internal/adapters/http/routes"
	"greetops/internal/adapters/persistence/models"
	"greetops/internal/adapters/persistence/repositories"
	"greetops/internal/config"
	"greetops/internal/core/services"
	"greetops/internal/notify"
	"greetops/internal/tracking"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed platform-default rate cards
	if err := config.SeedRateCards(db); err != nil {
		log.Printf("⚠️ Warning: Failed to seed rate cards: %v", err)
	}

	// Message broker is optional: live delivery degrades to websocket-only
	var publisher *notify.Publisher
	if cfg.AMQP.URL != "" {
		amqpClient, err := notify.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Printf("⚠️ Warning: AMQP unavailable, broker delivery disabled: %v", err)
		} else {
			defer amqpClient.Close()
			publisher = notify.NewPublisher(amqpClient)
			log.Println("✅ Connected to message broker")
		}
	}

	// Live tracking hub + sink
	hub := tracking.NewHub()
	sink := tracking.NewSink(hub, publisher)

	// Tracking websocket server on its own listener
	missionRepo := repositories.NewMissionRepository(db)
	trackingSrv := tracking.NewServer(hub, missionRepo, cfg)
	go func() {
		if err := trackingSrv.ListenAndServe(); err != nil {
			log.Printf("❌ Tracking server stopped: %v", err)
		}
	}()

	// Start cron service for token cleanup
	cronService := services.NewCronService(db)
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron jobs: %v", err)
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "GreetOps API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg, sink)

	// Graceful shutdown
	go gracefulShutdown(app, trackingSrv)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, trackingSrv *tracking.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := trackingSrv.Shutdown(ctx); err != nil {
		log.Printf("❌ Error during tracking shutdown: %v", err)
	}

	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
