package container

import (
	"context"
	"fmt"

	"shoppingstore/ingest/internal/client"
	"shoppingstore/ingest/internal/config"
	"shoppingstore/ingest/internal/domain"
	"shoppingstore/ingest/internal/repository"
	"shoppingstore/ingest/internal/service"
	"shoppingstore/ingest/internal/state"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config   *config.Config
	Client   client.CatalogClient
	Store    repository.Store
	Progress state.ProgressTracker

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	db, err := pgxpool.New(context.Background(),
		fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Name,
		))
	if err != nil {
		return nil, err
	}
	container.db = db
	container.Store = repository.NewStore(db)

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("Connected to Redis successfully")

	container.redis = rdb
	container.Progress = state.NewRedisProgressTracker(rdb)

	container.Client = client.NewCatalogClient(cfg.Catalog)

	container.Service = service.NewService(
		container.Store,
		container.Client,
		container.Progress,
		cfg.Catalog,
	)

	return container, nil
}

// RunIngestion executes a full catalog ingestion over the configured categories
// and logs the resulting report.
func (c *Container) RunIngestion(ctx context.Context) error {
	report, err := c.Service.Ingest(ctx, c.Config.CategorySpecs())
	logReport(report)
	return err
}

// RunSKUNormalization executes the standalone SKU cleanup pass.
func (c *Container) RunSKUNormalization(ctx context.Context) error {
	updated, err := c.Service.NormalizeSKUs(ctx)
	if err != nil {
		return err
	}
	log.Infof("SKU normalization finished, %d products updated", updated)
	return nil
}

// RunFacetAttachment attaches configured facet lists to their categories.
func (c *Container) RunFacetAttachment(ctx context.Context) error {
	for categoryName, facets := range c.Config.Facets {
		if err := c.Service.AttachFacets(ctx, categoryName, facets); err != nil {
			return fmt.Errorf("attach facets to %s: %w", categoryName, err)
		}
	}
	return nil
}

func logReport(report *domain.IngestReport) {
	if report == nil {
		return
	}

	for _, categoryReport := range report.Categories {
		if categoryReport.FatalError != "" {
			log.Warnf("Category %s aborted after %d/%d pages (%d ingested, %d skipped): %s",
				categoryReport.Category, categoryReport.PagesSucceeded, categoryReport.PagesAttempted,
				categoryReport.Ingested, len(categoryReport.Skipped), categoryReport.FatalError)
			continue
		}
		log.Infof("Category %s: %d/%d pages, %d ingested, %d skipped",
			categoryReport.Category, categoryReport.PagesSucceeded, categoryReport.PagesAttempted,
			categoryReport.Ingested, len(categoryReport.Skipped))

		for _, skipped := range categoryReport.Skipped {
			log.Warnf("  skipped %s (%s): %s", skipped.Code, skipped.Name, skipped.Reason)
		}
	}

	log.Infof("Ingestion finished: %d products ingested, %d skipped, %d categories failed",
		report.TotalIngested(), report.TotalSkipped(), len(report.FailedCategories()))
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	c.db.Close()
	c.redis.Close()

	log.Info("Container shut down successfully")
	return nil
}
