package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evcraddock/arv/internal/comps"
	"github.com/evcraddock/arv/internal/db"
	"github.com/evcraddock/arv/internal/report"
	"github.com/evcraddock/arv/internal/valuation"
)

type stubFetcher struct {
	payload string
}

func (f stubFetcher) Provider() comps.Provider { return comps.ProviderPropwire }

func (f stubFetcher) Fetch(context.Context, comps.Subject, comps.SearchBounds) []byte {
	if f.payload == "" {
		return nil
	}
	return []byte(f.payload)
}

const threeComps = `{"results": [
	{"address": "comp1", "sqft": 1050, "lot_size": 5100, "price": 200000, "beds": 3},
	{"address": "comp2", "sqft": 1400, "lot_size": 6000, "price": 250000},
	{"address": "comp3", "sqft": 950, "lot_size": 4900, "price": 190000}
]}`

func testServer(t *testing.T, payload string, opts ...Option) (*Server, *report.Repository) {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	repo := report.NewRepository(d)
	svc := valuation.NewService(stubFetcher{payload: payload}, comps.DefaultOptions(), repo)
	return NewServer(svc, append([]Option{WithReports(repo)}, opts...)...), repo
}

func apiRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestCreateValuation(t *testing.T) {
	srv, _ := testServer(t, threeComps)

	rec := apiRequest(t, srv, "POST", "/api/valuations", map[string]any{
		"address": "100 Main St", "sqft": 1000, "lot_size": 5000,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Status   string         `json:"status"`
		ARV      *int64         `json:"arv"`
		Ranked   bool           `json:"ranked"`
		Columns  []string       `json:"columns"`
		Top      []comps.Record `json:"top_matches"`
		Comps    []comps.Record `json:"comps"`
		ReportID int64          `json:"report_id"`
	}
	decode(t, rec, &resp)

	assert.Equal(t, "ranked", resp.Status)
	assert.True(t, resp.Ranked)
	require.NotNil(t, resp.ARV)
	assert.Equal(t, int64(213333), *resp.ARV)
	assert.Len(t, resp.Comps, 3)
	require.Len(t, resp.Top, 3)
	assert.Equal(t, "comp3", resp.Top[1].Address)
	assert.Contains(t, resp.Columns, "beds")
	assert.Zero(t, resp.ReportID)
}

func TestCreateValuationNoComps(t *testing.T) {
	srv, _ := testServer(t, "")

	rec := apiRequest(t, srv, "POST", "/api/valuations", map[string]any{
		"address": "100 Main St", "sqft": 1000, "lot_size": 5000,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	decode(t, rec, &resp)
	assert.Equal(t, "no_comps", resp["status"])
	_, hasARV := resp["arv"]
	assert.False(t, hasARV, "no ARV must be absent, not zero")
}

func TestCreateValuationInvalid(t *testing.T) {
	srv, _ := testServer(t, threeComps)

	tests := []struct {
		name string
		body any
	}{
		{"small house", map[string]any{"address": "1 A St", "sqft": 100, "lot_size": 5000}},
		{"missing address", map[string]any{"sqft": 1000, "lot_size": 5000}},
		{"not json", "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec *httptest.ResponseRecorder
			if s, ok := tt.body.(string); ok {
				req := httptest.NewRequest("POST", "/api/valuations", bytes.NewBufferString(s))
				rec = httptest.NewRecorder()
				srv.ServeHTTP(rec, req)
			} else {
				rec = apiRequest(t, srv, "POST", "/api/valuations", tt.body)
			}
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSaveListGetDelete(t *testing.T) {
	srv, _ := testServer(t, threeComps)

	rec := apiRequest(t, srv, "POST", "/api/valuations", map[string]any{
		"address": "100 Main St", "sqft": 1000, "lot_size": 5000, "save": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		ReportID int64 `json:"report_id"`
	}
	decode(t, rec, &created)
	require.NotZero(t, created.ReportID)

	rec = apiRequest(t, srv, "GET", "/api/valuations?address=main", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []report.Report
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.ReportID, list[0].ID)

	path := fmt.Sprintf("/api/valuations/%d", created.ReportID)
	rec = apiRequest(t, srv, "GET", path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got report.Report
	decode(t, rec, &got)
	require.NotNil(t, got.Valuation)
	assert.Equal(t, int64(213333), *got.Valuation.ARV)

	rec = apiRequest(t, srv, "DELETE", path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = apiRequest(t, srv, "GET", path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListEmpty(t *testing.T) {
	srv, _ := testServer(t, threeComps)

	rec := apiRequest(t, srv, "GET", "/api/valuations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = apiRequest(t, srv, "GET", "/api/valuations?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValuationRouteErrors(t *testing.T) {
	srv, _ := testServer(t, threeComps)

	assert.Equal(t, http.StatusBadRequest, apiRequest(t, srv, "GET", "/api/valuations/abc", nil).Code)
	assert.Equal(t, http.StatusNotFound, apiRequest(t, srv, "DELETE", "/api/valuations/42", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, apiRequest(t, srv, "PUT", "/api/valuations/1", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, apiRequest(t, srv, "PATCH", "/api/valuations", nil).Code)
}

func TestHistoryUnavailable(t *testing.T) {
	svc := valuation.NewService(stubFetcher{payload: threeComps}, comps.DefaultOptions(), nil)
	srv := NewServer(svc)

	assert.Equal(t, http.StatusServiceUnavailable, apiRequest(t, srv, "GET", "/api/valuations", nil).Code)
	rec := apiRequest(t, srv, "POST", "/api/valuations", map[string]any{
		"address": "100 Main St", "sqft": 1000, "lot_size": 5000, "save": true,
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAPIToken(t *testing.T) {
	srv, _ := testServer(t, threeComps, WithAPIToken("s3cret"))
	h := srv.Handler()

	rec := apiRequest(t, h, "GET", "/api/valuations", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest("GET", "/api/valuations", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = apiRequest(t, h, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "health is public")
}
