package provider

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/evcraddock/arv/internal/comps"
)

const defaultPropwireURL = "https://api.propwire.com"

// PropwireClient fetches comps from the Propwire comps endpoint, which
// filters by radius, lookback window and the sqft/lot search bounds.
type PropwireClient struct {
	client
}

// NewPropwireClient creates a Propwire adapter.
func NewPropwireClient(cfg Config) *PropwireClient {
	return &PropwireClient{client: newClient(cfg, defaultPropwireURL)}
}

// Provider implements Fetcher.
func (c *PropwireClient) Provider() comps.Provider { return comps.ProviderPropwire }

// Fetch implements Fetcher.
func (c *PropwireClient) Fetch(ctx context.Context, s comps.Subject, b comps.SearchBounds) []byte {
	if c.apiKey == "" {
		return collapse(comps.ProviderPropwire, s.Address, errors.New("no API key configured"))
	}

	params := url.Values{
		"address":  {s.Address},
		"radius":   {strconv.FormatFloat(b.RadiusMiles, 'f', -1, 64)},
		"days":     {strconv.Itoa(b.LookbackDays)},
		"min_sqft": {strconv.FormatInt(b.MinSqft, 10)},
		"max_sqft": {strconv.FormatInt(b.MaxSqft, 10)},
		"min_lot":  {strconv.FormatInt(b.MinLot, 10)},
		"max_lot":  {strconv.FormatInt(b.MaxLot, 10)},
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	body, err := c.getJSON(ctx, c.baseURL+"/v1/comps?"+params.Encode(), header)
	if err != nil {
		return collapse(comps.ProviderPropwire, s.Address, err)
	}
	return body
}
