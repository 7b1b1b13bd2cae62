package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shoppingstore/ingest/internal/config"
	"shoppingstore/ingest/internal/container"

	log "github.com/sirupsen/logrus"
)

func main() {
	// log.Fatalf would skip the deferred cleanup inside run.
	if err := run(); err != nil {
		log.Errorf("Application exited with error: %v", err)
		os.Exit(1)
	}

	log.Info("Application finished successfully")
}

func run() error {
	log.Info("Starting catalog ingestion...")

	// Load configuration using viper
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Info("Configuration loaded successfully")

	// Initialize container with all dependencies
	app, err := container.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer app.Close()

	// A cancelled run still reports what it ingested before the signal.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mode := "ingest"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	switch mode {
	case "ingest":
		return app.RunIngestion(ctx)
	case "normalize-skus":
		return app.RunSKUNormalization(ctx)
	case "attach-facets":
		return app.RunFacetAttachment(ctx)
	default:
		return fmt.Errorf("unknown mode %q (expected ingest, normalize-skus or attach-facets)", mode)
	}
}
