package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"StockPredictor/internal/model"
)

// MockFetcher serves fixed pages for development and testing.
type MockFetcher struct {
	Pages map[string]string // keyed by URL
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPage(_ context.Context, url string) (string, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	page, ok := m.Pages[url]
	if !ok {
		return "", &FetchError{URL: url, StatusCode: 404}
	}
	return page, nil
}

// Batch is the outcome of scraping one history page.
type Batch struct {
	URL       string
	Records   []model.PriceRecord // source order
	Skipped   int
	FetchedAt time.Time
}

// Collector fetches history pages and turns them into price records.
type Collector struct {
	Fetcher   PageFetcher
	Extractor Extractor
}

// NewCollector creates a Collector using the default Yahoo page layout.
func NewCollector(fetcher PageFetcher) *Collector {
	return &Collector{Fetcher: fetcher, Extractor: DefaultExtractor()}
}

// Collect fetches url and extracts every price row from it.
func (c *Collector) Collect(ctx context.Context, url string) (*Batch, error) {
	page, err := c.Fetcher.FetchPage(ctx, url)
	if err != nil {
		return nil, err
	}

	records, skipped, err := c.Extractor.Extract(page)
	if err != nil {
		return nil, fmt.Errorf("%s page: %w", c.Fetcher.Name(), err)
	}
	if skipped > 0 {
		log.Printf("[WARN] %s: skipped %d non-price or duplicate rows", url, skipped)
	}

	return &Batch{
		URL:       url,
		Records:   records,
		Skipped:   skipped,
		FetchedAt: time.Now(),
	}, nil
}
