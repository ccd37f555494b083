// Package provider fetches comparable sales from external real-estate APIs.
//
// Adapters never return transport errors to the caller. Any failure is
// logged and collapsed to an empty payload, which the comps normalizer
// treats as "no comps found".
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/evcraddock/arv/internal/comps"
)

// ErrUnknownProvider is returned by New for a provider it cannot build.
var ErrUnknownProvider = errors.New("unknown provider")

const (
	defaultTimeout           = 30 * time.Second
	defaultRequestsPerSecond = 2
	userAgent                = "arv/1.0"
)

// Fetcher retrieves the raw comps payload for a subject.
type Fetcher interface {
	Provider() comps.Provider
	Fetch(ctx context.Context, s comps.Subject, b comps.SearchBounds) []byte
}

// Config holds the connection settings for one provider.
type Config struct {
	APIKey            string
	BaseURL           string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// New returns the adapter for p.
func New(p comps.Provider, cfg Config) (Fetcher, error) {
	switch p {
	case comps.ProviderPropwire:
		return NewPropwireClient(cfg), nil
	case comps.ProviderATTOM:
		return NewATTOMClient(cfg), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, p)
}

// client holds the HTTP plumbing shared by every adapter.
type client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
}

func newClient(cfg Config, defaultBaseURL string) client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
	}
}

// getJSON performs a throttled GET and returns the body if it is valid JSON.
func (c *client) getJSON(ctx context.Context, endpoint string, header http.Header) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	// A close error after a complete read does not invalidate the payload.
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Debug("closing response body", "url", req.URL.Redacted(), "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if !json.Valid(raw) {
		return nil, fmt.Errorf("response is not valid JSON")
	}

	return raw, nil
}

// collapse logs a fetch failure and returns the empty payload.
func collapse(p comps.Provider, address string, err error) []byte {
	slog.Warn("comps fetch failed",
		"provider", string(p),
		"address", address,
		"error", err,
	)
	return nil
}
