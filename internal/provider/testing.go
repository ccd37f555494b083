package provider

// SetTestURL points an adapter at a test server.
// This should only be used in tests.
func SetTestURL(f Fetcher, baseURL string) {
	switch c := f.(type) {
	case *PropwireClient:
		c.baseURL = baseURL
	case *ATTOMClient:
		c.baseURL = baseURL
	}
}
