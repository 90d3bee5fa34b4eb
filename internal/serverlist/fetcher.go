// Package serverlist loads the destination addresses the experiments run
// against: a published iperf3 server CSV, a local CSV, or a plain-text file.
package serverlist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	pkgerrors "pathprobe/pkg/errors"
)

// DefaultURL is the public iperf3 server-list CSV export.
const DefaultURL = "https://export.iperf3serverlist.net/listed_iperf3_servers.csv"

// Fetcher handles HTTP requests for the server list with retry logic.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	retryDelay time.Duration
}

// FetcherConfig represents fetcher configuration.
type FetcherConfig struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultFetcherConfig returns default fetcher configuration.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		UserAgent:  "pathprobe/1.0",
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
	}
}

// NewFetcher creates a new server-list fetcher.
func NewFetcher(config FetcherConfig) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent:  config.UserAgent,
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
	}
}

// Fetch fetches the server-list content from a URL with retry logic.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.retryDelay * time.Duration(attempt)):
			}
		}

		content, err := f.doFetch(ctx, url)
		if err == nil {
			return content, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			break
		}

		// Don't retry on client errors (4xx)
		if httpErr, ok := err.(*pkgerrors.HTTPError); ok {
			if httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
				break
			}
		}
	}

	return nil, &pkgerrors.FetchError{
		URL: url,
		Err: fmt.Errorf("fetch failed after %d attempts: %w", f.maxRetries+1, lastErr),
	}
}

// FetchAddresses fetches the CSV export and extracts the address column.
func (f *Fetcher) FetchAddresses(ctx context.Context, url string) ([]string, error) {
	if url == "" {
		url = DefaultURL
	}
	content, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseCSV(bytesReader(content))
}

func (f *Fetcher) doFetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/csv, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &pkgerrors.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        url,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}
