package gios

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
)

// Client downloads yearly archives from the GIOŚ archive endpoint.
type Client struct {
	baseURL    string
	catalogue  Catalogue
	httpClient *http.Client
	backoff    BackoffConfig
	cb         *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an archive client. retries is the number of attempts made
// after the first failed one.
func NewClient(baseURL string, catalogue Catalogue, timeout time.Duration, retries int, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL:    baseURL,
		catalogue:  catalogue,
		httpClient: &http.Client{Timeout: timeout},
		backoff: BackoffConfig{
			MaxRetries:      retries,
			InitialInterval: time.Second,
			MaxInterval:     15 * time.Second,
		},
		cb:      newBreaker("gios-archive"),
		metrics: metrics,
		logger:  logger,
	}
}

// FetchRawTable downloads the archive for year and reads its PM2.5 workbook.
func (c *Client) FetchRawTable(ctx context.Context, year int) (domain.RawTable, error) {
	archive, err := c.catalogue.Lookup(year)
	if err != nil {
		return domain.RawTable{}, err
	}

	start := time.Now()
	url := c.baseURL + archive.ID
	c.logger.Info("downloading archive", "year", year, "url", url)

	data, err := download(ctx, c.httpClient, c.cb, c.backoff, url)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("download archive %d: %w", year, err)
	}

	raw, err := ExtractRawTable(data, archive)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("extract archive %d: %w", year, err)
	}

	c.metrics.ArchiveFetchDuration.Observe(time.Since(start).Seconds())
	c.logger.Info("archive downloaded", "year", year, "bytes", len(data), "rows", len(raw.Rows), "duration", time.Since(start))
	return raw, nil
}
