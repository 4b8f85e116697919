package hcard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Profile documents larger than this are cut off; an identity page is a few
// kilobytes of markup, not a media file.
const maxDocumentSize = 1 << 20

// Fetcher retrieves a remote identity document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (http.Header, []byte, error)
}

// HTTPFetcher fetches over HTTP with a bounded timeout so a slow identity
// host cannot stall an authentication request past the extraction timeout.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (http.Header, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("hcard: build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("hcard: fetch %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, fmt.Errorf("hcard: fetch %q: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, nil, fmt.Errorf("hcard: read %q: %w", url, err)
	}
	return resp.Header, body, nil
}
