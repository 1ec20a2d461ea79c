package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solar_estimator/internal/api"
	"solar_estimator/internal/calculator"
	"solar_estimator/internal/config"
	"solar_estimator/internal/service"
	"solar_estimator/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Initialize logger
	logger.Init()
	logger.Info("Starting Solar Estimation Service")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Load calculation tables (with optional pricing override)
	tables, err := calculator.LoadTables(cfg.PricingFile)
	if err != nil {
		log.Fatal("Failed to load calculation tables:", err)
	}
	logger.Infof("Calculation tables loaded (pricing: %s, updated %s)",
		tables.Pricing.Source, tables.LastUpdated)

	// Initialize audit store (optional)
	db, err := config.InitInflux(cfg)
	if err != nil {
		log.Fatal("Failed to initialize InfluxDB:", err)
	}
	if db != nil {
		defer db.Close()
		logger.Infof("Audit trail enabled: %s (token %s)", cfg.InfluxDatabase, config.MaskToken(cfg.InfluxToken))
	}

	// Initialize services
	svc := service.NewService(cfg, tables, db)
	defer svc.Close()

	// Setup HTTP server
	router := setupRouter(cfg, svc)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Server starting on port %d", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error:", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced shutdown:", err)
	}

	logger.Info("Server stopped gracefully")
}

func setupRouter(cfg *config.Config, svc *service.Service) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	api.RegisterValidations()

	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(api.RequestID())
	r.Use(api.Logger())
	r.Use(api.CORS())
	r.Use(api.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	// API routes
	api.SetupRoutes(r, svc)

	return r
}
