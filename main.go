package main

import (
	"context"
	"log"

	"practicetests/config"
	"practicetests/handlers"
	"practicetests/middleware"
	"practicetests/models"
	"practicetests/routes"
	"practicetests/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)
	if redisClient != nil {
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Printf("Redis unavailable, question cache disabled: %v", err)
			redisClient = nil
		}
	}

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiration)
	questionService := services.NewQuestionService(db, redisClient, cfg.CacheTTL)

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	questionHandler := handlers.NewQuestionHandler(questionService, hub)

	// Setup Gin router
	router := gin.Default()

	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, questionHandler, hub, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on %s", cfg.Addr())
	if err := router.Run(cfg.Addr()); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
