package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/config"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/database"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/events"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/logger"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/pipeline"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/worker"
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

	// Initialize worker
	w := worker.New(cfg, logger, p)

	// Start worker
	logger.Info("Starting worker...")
	go w.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	w.Stop()
}
