package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/config"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/database"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/logger"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/pipeline"
)

func main() {
	phase := flag.String("phase", "full", "phase to run: full, extract or insert")
	saveRaw := flag.Bool("save-raw", false, "also stage raw merged items")
	flush := flag.Bool("flush", true, "flush the staging store before extraction")
	flag.Parse()

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

	p, err := pipeline.FromConfig(cfg, logger, db, nil)
	if err != nil {
		logger.Fatal("Failed to build pipeline: %v", err)
	}

	ctx := context.Background()
	opts := pipeline.ExtractOptions{SaveRaw: *saveRaw, Flush: *flush}

	switch *phase {
	case "extract":
		_, err = p.Extract(ctx, opts)
	case "insert":
		_, err = p.Insert(ctx)
	case "full":
		err = p.Run(ctx, opts)
	default:
		logger.Fatal("Unknown phase: %s", *phase)
	}

	if err != nil {
		logger.Error("Sync failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Sync completed")
}
