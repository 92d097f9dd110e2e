// Package extractor pulls earnings-call material for tracked companies from
// SEC EDGAR and Alpha Vantage, falling back to generated sample transcripts
// when neither source can serve a period.
package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	// SEC fair-access guidance; Alpha Vantage free tier is stricter still.
	defaultRateLimit = 1.0
	maxAttempts      = 3
	retryBackoff     = 2 * time.Second
)

// httpClient wraps http.Client with per-source rate limiting and retries on
// transient server errors.
type httpClient struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

func newHTTPClient(userAgent string) *httpClient {
	return &httpClient{
		client:    &http.Client{Timeout: defaultTimeout},
		limiter:   rate.NewLimiter(rate.Limit(defaultRateLimit), 1),
		userAgent: userAgent,
	}
}

// get fetches a URL, retrying up to maxAttempts times on network errors and
// 5xx responses. Client errors fail immediately.
func (c *httpClient) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json, text/html")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error %d from %s", resp.StatusCode, url)
			continue
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
		}

		return body, nil
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxAttempts, lastErr)
}
