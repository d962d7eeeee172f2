// Package client fetches the analysis payload for the dashboard and
// tracks the fetch lifecycle.
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/HengWoo/TA-flagger/internal/httputil"
	"github.com/HengWoo/TA-flagger/internal/models"
)

// DefaultURL is the endpoint the dashboard reads when none is configured.
const DefaultURL = "http://localhost:8000/api/sugar-options-data"

// Fetcher loads one payload.
type Fetcher interface {
	Fetch(ctx context.Context) (*models.Payload, error)
}

type DashboardClient struct {
	url        string
	apiKey     string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

// NewDashboardClient returns a client for a fixed payload URL. The fetch
// is attempted once; failures surface to the caller as they are.
func NewDashboardClient(url, apiKey string, timeout time.Duration) *DashboardClient {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DashboardClient{
		url:        url,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		retry:      httputil.NoRetry,
	}
}

func (c *DashboardClient) URL() string { return c.url }

// Fetch performs the GET and decodes the payload. Non-2xx responses
// return a *httputil.StatusError; malformed bodies a *PayloadError.
func (c *DashboardClient) Fetch(ctx context.Context) (*models.Payload, error) {
	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("dashboard fetch: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("dashboard fetch: %w", err)
	}

	p, err := DecodePayload(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dashboard decode: %w", err)
	}
	return p, nil
}
