package main

import (
	"log"

	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/api"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/config"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/database"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/events"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/logger"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/pipeline"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	publisher := events.NewPublisher(cfg.KafkaBrokers, logger)
	defer publisher.Close()

	p, err := pipeline.FromConfig(cfg, logger, db, publisher)
	if err != nil {
		logger.Fatal("Failed to build pipeline: %v", err)
	}

	// Initialize API server
	server := api.New(cfg, logger, db, publisher, p)

	// Start server
	logger.Info("Starting API server on port " + cfg.APIPort)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
