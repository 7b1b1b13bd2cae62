package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"shoppingstore/ingest/internal/client"
	"shoppingstore/ingest/internal/config"
	"shoppingstore/ingest/internal/domain"
	"shoppingstore/ingest/internal/extract"
	"shoppingstore/ingest/internal/repository"
	"shoppingstore/ingest/internal/state"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Service drives the catalog ingestion pipeline and the maintenance passes over
// already persisted data.
type Service struct {
	store    repository.Store
	client   client.CatalogClient
	progress state.ProgressTracker
	cfg      config.CatalogConfig
}

func NewService(
	store repository.Store,
	client client.CatalogClient,
	progress state.ProgressTracker,
	cfg config.CatalogConfig,
) *Service {
	return &Service{
		store:    store,
		client:   client,
		progress: progress,
		cfg:      cfg,
	}
}

// Ingest traverses every configured category: page by page, summary by summary,
// enriching each product with detail attributes and flushing one batch per
// category. Per-item problems are skips, a page failure aborts the rest of that
// category, a missing category aborts only that category. Only store failures
// and cancellation end the run early; the report always reflects what was
// ingested before the run stopped.
func (s *Service) Ingest(ctx context.Context, specs []domain.CategorySpec) (*domain.IngestReport, error) {
	report := &domain.IngestReport{}

	for _, spec := range specs {
		categoryReport := &domain.CategoryReport{Category: spec.Name}
		report.Categories = append(report.Categories, categoryReport)

		log.Infof("Ingesting category %s (code %s, %d pages)", spec.Name, spec.Code, spec.Pages)

		category, err := s.store.FindCategoryByName(ctx, spec.Name)
		if err != nil {
			if errors.Is(err, domain.ErrMissingCategory) {
				log.Errorf("Category %s is not seeded, skipping its traversal: %v", spec.Name, err)
				categoryReport.FatalError = err.Error()
				continue
			}
			categoryReport.FatalError = err.Error()
			return report, err
		}

		batch, traverseErr := s.traverseCategory(ctx, spec, category, categoryReport)

		// Whatever was assembled before an abort still gets flushed, even when
		// the abort was a cancellation; a store failure here is fatal for the
		// whole run.
		if len(batch) > 0 {
			if err := s.store.SaveProducts(context.WithoutCancel(ctx), batch); err != nil {
				log.Errorf("Failed to flush %d products for category %s: %v", len(batch), spec.Name, err)
				categoryReport.FatalError = err.Error()
				return report, err
			}
			categoryReport.Ingested = len(batch)
		}

		if traverseErr != nil {
			return report, traverseErr
		}

		if s.progress != nil && categoryReport.FatalError == "" {
			if err := s.progress.Clear(ctx, spec.Name); err != nil {
				log.Warnf("Failed to clear progress for category %s: %v", spec.Name, err)
			}
		}

		log.Infof("Completed category %s: %d ingested, %d skipped, %d/%d pages",
			spec.Name, categoryReport.Ingested, len(categoryReport.Skipped),
			categoryReport.PagesSucceeded, categoryReport.PagesAttempted)
	}

	return report, nil
}

// traverseCategory walks the category's pages in order and returns the batch
// assembled so far. A non-nil error is only returned for cancellation; page
// fetch failures are recorded on the report and abort the remaining pages.
func (s *Service) traverseCategory(
	ctx context.Context,
	spec domain.CategorySpec,
	category *domain.Category,
	categoryReport *domain.CategoryReport,
) ([]*domain.Product, error) {
	startPage := 0
	if s.progress != nil {
		completed, err := s.progress.CompletedPages(ctx, spec.Name)
		if err != nil {
			log.Warnf("Failed to read progress for category %s, starting from page 0: %v", spec.Name, err)
		} else if completed > 0 {
			log.Infof("Resuming category %s from page %d", spec.Name, completed)
			startPage = completed
		}
	}

	var batch []*domain.Product

	for pageIndex := startPage; pageIndex < spec.Pages; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		categoryReport.PagesAttempted++

		summaries, err := s.client.GetCategoryPage(ctx, spec.Code, pageIndex, s.cfg.PageSize)
		if err != nil {
			if ctx.Err() != nil {
				return batch, ctx.Err()
			}
			log.Errorf("Page %d of category %s failed, aborting remaining pages: %v", pageIndex, spec.Name, err)
			categoryReport.FatalError = err.Error()
			return batch, nil
		}
		categoryReport.PagesSucceeded++

		// An empty page is valid; traversal continues.
		batch = append(batch, s.processPage(ctx, category, pageIndex, summaries, categoryReport)...)

		if s.progress != nil {
			if err := s.progress.SetCompletedPages(ctx, spec.Name, pageIndex+1); err != nil {
				log.Warnf("Failed to record progress for category %s: %v", spec.Name, err)
			}
		}
	}

	return batch, nil
}

// processPage enriches every summary on a page into a full product. Detail
// fetches run in parallel, bounded by MaxWorkers; no ordering is guaranteed
// between products, only within each product's attribute list.
func (s *Service) processPage(
	ctx context.Context,
	category *domain.Category,
	pageIndex int,
	summaries []domain.ProductSummary,
	categoryReport *domain.CategoryReport,
) []*domain.Product {
	var mu sync.Mutex
	products := make([]*domain.Product, 0, len(summaries))

	// A non-positive worker count would make every g.Go block forever.
	workers := s.cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, summary := range summaries {
		summary := summary
		g.Go(func() error {
			product, err := s.buildProduct(gctx, category, pageIndex, summary)
			if err != nil {
				log.Warnf("Skipping product %s (%s): %v", summary.Code, summary.Name, err)
				mu.Lock()
				categoryReport.Skipped = append(categoryReport.Skipped, domain.SkippedProduct{
					Code:   summary.Code,
					Name:   summary.Name,
					Reason: err.Error(),
				})
				mu.Unlock()
				return nil
			}

			mu.Lock()
			products = append(products, product)
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; per-item failures are recorded as skips.
	_ = g.Wait()

	return products
}

func (s *Service) buildProduct(
	ctx context.Context,
	category *domain.Category,
	pageIndex int,
	summary domain.ProductSummary,
) (*domain.Product, error) {
	if len(summary.Media) == 0 {
		return nil, fmt.Errorf("%w: product %s has no media entries", domain.ErrExtraction, summary.Code)
	}

	listPrice, err := decimal.NewFromString(summary.ListPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: product %s has unparseable list price %q", domain.ErrExtraction, summary.Code, summary.ListPrice)
	}

	classifications, err := s.client.GetProductDetail(ctx, summary.Code)
	if err != nil {
		return nil, err
	}

	// Description and SKU default to the raw name; NormalizeSKUs cleans SKUs up
	// in a separate maintenance pass.
	return &domain.Product{
		Name:         summary.Name,
		Description:  summary.Name,
		SKU:          summary.Name,
		ImageURL:     s.cfg.BaseURL + summary.Media[0],
		Price:        extract.ConvertPrice(listPrice, s.cfg.PriceDivisor, s.cfg.PriceScale),
		Manufacturer: extract.Manufacturer(summary.Name),
		Quantity:     s.cfg.DefaultQuantity,
		Featured:     pageIndex%12 == 0,
		Category:     category,
		Attributes:   extract.Attributes(classifications),
	}, nil
}

// NormalizeSKUs rewrites persisted SKUs, replacing spaces and slashes with
// hyphens. Returns how many products were updated. Safe to run repeatedly.
func (s *Service) NormalizeSKUs(ctx context.Context) (int, error) {
	products, err := s.store.FindAllProducts(ctx)
	if err != nil {
		return 0, err
	}

	changed := make([]*domain.Product, 0, len(products))
	for _, product := range products {
		if normalized := extract.NormalizeSKU(product.SKU); normalized != product.SKU {
			product.SKU = normalized
			changed = append(changed, product)
		}
	}

	if len(changed) == 0 {
		log.Info("All SKUs already normalized")
		return 0, nil
	}

	if err := s.store.SaveProducts(ctx, changed); err != nil {
		return 0, err
	}

	log.Infof("Normalized SKUs for %d of %d products", len(changed), len(products))
	return len(changed), nil
}

// AttachFacets sets the filterable facet names on a category and re-saves the
// category's products so they reference the updated category.
func (s *Service) AttachFacets(ctx context.Context, categoryName string, facets []string) error {
	category, err := s.store.FindCategoryByName(ctx, categoryName)
	if err != nil {
		return err
	}

	category.PossibleFacets = facets

	products, err := s.store.FindProductsByCategory(ctx, category)
	if err != nil {
		return err
	}
	for _, product := range products {
		product.Category = category
	}

	if err := s.store.SaveCategory(ctx, category); err != nil {
		return err
	}

	if len(products) > 0 {
		if err := s.store.SaveProducts(ctx, products); err != nil {
			return err
		}
	}

	log.Infof("Attached %d facets to category %s (%d products refreshed)", len(facets), categoryName, len(products))
	return nil
}
