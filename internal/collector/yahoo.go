package collector

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "Mozilla/5.0"

// YahooFetcher downloads Yahoo Finance history pages.
type YahooFetcher struct {
	Client    *resty.Client
	UserAgent string
}

// NewYahooFetcher creates a fetcher with optional proxy support.
func NewYahooFetcher(proxyURL string, timeout time.Duration, userAgent string) *YahooFetcher {
	client := resty.New()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client.SetTimeout(timeout)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &YahooFetcher{Client: client, UserAgent: userAgent}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// FetchPage performs a single GET. Failures are not retried.
func (f *YahooFetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	resp, err := f.Client.R().
		SetContext(ctx).
		SetHeader("User-Agent", f.UserAgent).
		Get(pageURL)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}
	if !resp.IsSuccess() {
		return "", &FetchError{URL: pageURL, StatusCode: resp.StatusCode()}
	}
	return resp.String(), nil
}

// HistoryURL builds the daily history page address for a ticker between two dates.
func HistoryURL(ticker string, from, to time.Time) string {
	return fmt.Sprintf("https://finance.yahoo.com/quote/%s/history?period1=%d&period2=%d&interval=1d&filter=history&frequency=1d",
		url.PathEscape(ticker), from.Unix(), to.Unix())
}
