package helpers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SiteResponse is a plain HTTP response from the site under test.
type SiteResponse struct {
	// StatusCode is the HTTP status code (e.g., 200, 404, 500).
	StatusCode int

	// Body contains the raw response body bytes.
	Body []byte

	// Headers contains the response headers.
	Headers http.Header
}

// String returns the response body as a string.
func (r *SiteResponse) String() string {
	return string(r.Body)
}

// SiteClient fetches pages of the site under test without a browser.
//
// Use this helper to:
//   - Wait for the site to come up before launching a browser
//   - Check that every page a suite navigates to is served
//
// SiteClient never follows redirects so a request sees the status the site
// actually returned.
type SiteClient struct {
	baseURL string
	client  *http.Client
}

// NewSiteClient creates a client for the site at baseURL
// (e.g., "http://localhost:8090").
func NewSiteClient(baseURL string) *SiteClient {
	return &SiteClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Get requests path relative to the base URL.
//
//	resp, err := site.Get(ctx, "/popups/")
//
// HTTP error status codes are NOT treated as errors; check resp.StatusCode.
func (c *SiteClient) Get(ctx context.Context, path string) (*SiteResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &SiteResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    resp.Header,
	}, nil
}

// WaitReady polls path until it answers 200 OK or ctx ends.
func (c *SiteClient) WaitReady(ctx context.Context, path string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last error
	for {
		resp, err := c.Get(ctx, path)
		switch {
		case err != nil:
			if last == nil || ctx.Err() == nil {
				last = err
			}
		case resp.StatusCode == http.StatusOK:
			return nil
		default:
			last = fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("site at %s not ready: %w", c.baseURL, last)
		case <-ticker.C:
		}
	}
}
