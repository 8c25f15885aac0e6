package dataset

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/iwvelando/capital-lab/pkg/constants"
	"go.uber.org/zap"
)

// Fetcher retrieves a fresh copy of the benchmark table.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Industry, error)
	Name() string
}

// HTTPFetcher downloads and parses the remote benchmark CSV. Transient
// failures are retried with exponential backoff; HTTP status errors other
// than server-side ones are treated as permanent.
type HTTPFetcher struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewHTTPFetcher constructs a fetcher for the given URL. An empty URL
// selects the default Damodaran dataset.
func NewHTTPFetcher(url string, logger *zap.Logger) *HTTPFetcher {
	if url == "" {
		url = constants.DefaultDatasetURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPFetcher{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Name identifies the source in snapshots and logs.
func (f *HTTPFetcher) Name() string {
	return "remote CSV"
}

// Fetch downloads the CSV with up to three attempts.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]Industry, error) {
	operation := func() ([]Industry, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch dataset: %w", err)
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("dataset fetch returned status %d", resp.StatusCode)
			if resp.StatusCode >= 500 {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}

		industries, err := ParseCSV(resp.Body)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		return industries, nil
	}

	industries, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3),
	)
	if err != nil {
		f.logger.Warn("remote dataset unavailable",
			zap.String("op", "dataset.Fetch"),
			zap.String("url", f.url),
			zap.Error(err),
		)
		return nil, err
	}

	f.logger.Info("remote dataset fetched",
		zap.String("op", "dataset.Fetch"),
		zap.Int("industries", len(industries)),
	)
	return industries, nil
}
