package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"shoppingstore/ingest/internal/config"
	"shoppingstore/ingest/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// CatalogClient fetches listing pages and product detail from the remote
// pagedata endpoint. Neither call retries beyond the transport layer; failure
// policy belongs to the orchestrator.
type CatalogClient interface {
	GetCategoryPage(ctx context.Context, categoryCode string, pageIndex, pageSize int) ([]domain.ProductSummary, error)
	GetProductDetail(ctx context.Context, productCode string) ([]domain.Classification, error)
}

type catalogClient struct {
	rl          ratelimit.Limiter
	config      config.CatalogConfig
	pageDataURL string
	httpClient  *resty.Client
}

func NewCatalogClient(cfg config.CatalogConfig) CatalogClient {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(2*time.Second).
		SetRetryMaxWaitTime(10*time.Second).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36").
		SetHeader("Accept", "application/json")

	return &catalogClient{
		rl:          ratelimit.New(cfg.MaxRequestsPerSecond),
		config:      cfg,
		pageDataURL: cfg.BaseURL + cfg.PageDataPath,
		httpClient:  client,
	}
}

func (c *catalogClient) GetCategoryPage(ctx context.Context, categoryCode string, pageIndex, pageSize int) ([]domain.ProductSummary, error) {
	body, err := c.fetchJSON(ctx, map[string]string{
		"pageType":     "categoryPage",
		"categoryCode": categoryCode,
		"searchQuery":  ":relevance",
		"page":         strconv.Itoa(pageIndex),
		"size":         strconv.Itoa(pageSize),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: page %d of category %s: %v", domain.ErrRemoteFetch, pageIndex, categoryCode, err)
	}

	summaries, err := decodeListEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d of category %s: %v", domain.ErrRemoteFetch, pageIndex, categoryCode, err)
	}

	log.Debugf("Fetched page %d of category %s with %d products", pageIndex, categoryCode, len(summaries))
	return summaries, nil
}

func (c *catalogClient) GetProductDetail(ctx context.Context, productCode string) ([]domain.Classification, error) {
	body, err := c.fetchJSON(ctx, map[string]string{
		"pageType":    "productPage",
		"pageId":      "productPage",
		"productCode": productCode,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: detail for product %s: %v", domain.ErrRemoteFetch, productCode, err)
	}

	classifications, err := decodeDetailEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("%w: detail for product %s: %v", domain.ErrRemoteFetch, productCode, err)
	}

	log.Debugf("Fetched detail for product %s with %d classifications", productCode, len(classifications))
	return classifications, nil
}

func (c *catalogClient) fetchJSON(ctx context.Context, params map[string]string) ([]byte, error) {
	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(c.pageDataURL)

	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	return []byte(resp.String()), nil
}
