package provider

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/evcraddock/arv/internal/comps"
)

const defaultATTOMURL = "https://api.attomdata.com"

// ATTOMClient fetches sales history from the ATTOM property API.
// ATTOM looks up by address only; the search bounds are not sent.
type ATTOMClient struct {
	client
}

// NewATTOMClient creates an ATTOM adapter.
func NewATTOMClient(cfg Config) *ATTOMClient {
	return &ATTOMClient{client: newClient(cfg, defaultATTOMURL)}
}

// Provider implements Fetcher.
func (c *ATTOMClient) Provider() comps.Provider { return comps.ProviderATTOM }

// Fetch implements Fetcher.
func (c *ATTOMClient) Fetch(ctx context.Context, s comps.Subject, _ comps.SearchBounds) []byte {
	if c.apiKey == "" {
		return collapse(comps.ProviderATTOM, s.Address, errors.New("no API key configured"))
	}

	params := url.Values{"address": {s.Address}}
	header := http.Header{}
	header.Set("apikey", c.apiKey)

	body, err := c.getJSON(ctx, c.baseURL+"/propertyapi/v1.0.0/saleshistory?"+params.Encode(), header)
	if err != nil {
		return collapse(comps.ProviderATTOM, s.Address, err)
	}
	return body
}
