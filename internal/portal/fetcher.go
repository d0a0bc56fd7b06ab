package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxBodySize = 32 << 20

// Fetcher retrieves portal resources
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches over HTTP with a fixed user agent and an optional
// session cookie obtained by logging in outside the crawler
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	cookie    string
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout
func NewHTTPFetcher(timeout time.Duration, userAgent, cookie string) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		cookie:    cookie,
	}
}

// Fetch implements Fetcher. Each call is a fresh request.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: status %s", url, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}
