package collector

import (
	"context"
	"fmt"
)

// PageFetcher retrieves the raw text of a history page.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
	Name() string
}

// FetchError reports a network failure or a non-success HTTP status.
type FetchError struct {
	URL        string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a page whose embedded price block is missing or malformed.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse price data: %s: %v", e.Reason, e.Err)
	}
	return "parse price data: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }
