package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosiris15/debt-review-sub000/api"
	"github.com/cosiris15/debt-review-sub000/engine"
	"github.com/cosiris15/debt-review-sub000/ratetable"
	"github.com/cosiris15/debt-review-sub000/report"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	rates, err := ratetable.Load()
	require.NoError(t, err)

	wb, err := report.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { wb.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	h := api.NewHandler(engine.New(rates), rates, wb, log)
	srv := httptest.NewServer(api.NewRouter(h, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func errorKind(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "expected an error envelope, got %v", body)
	kind, _ := errObj["kind"].(string)
	return kind
}

// =============================================================================
// CALCULATIONS
// =============================================================================

func TestCalculate_Simple(t *testing.T) {
	// GIVEN: A simple-interest request over leap year 2024
	// WHEN: POSTing to /api/calculations
	// THEN: 200 with the rounded total, the period table and audit rows

	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/calculations", `{
		"mode": "simple",
		"principal": "100000",
		"start_date": "2024-01-01",
		"end_date": "2024-12-31",
		"annual_rate_percent": "4.35",
		"base_days": 360
	}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "4422.50", body["total_interest"])
	assert.Equal(t, "simple", body["mode"])

	periods, ok := body["periods"].([]interface{})
	require.True(t, ok)
	require.Len(t, periods, 1)
	period := periods[0].(map[string]interface{})
	assert.Equal(t, float64(366), period["days"])
	assert.NotEmpty(t, period["formula"])

	rows, ok := body["audit_rows"].([]interface{})
	require.True(t, ok)
	assert.Len(t, rows, 2, "one period row plus the total row")
}

func TestCalculate_FloatingSplitsAtBenchmarkChanges(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/calculations", `{
		"mode": "floating",
		"principal": "200000",
		"start_date": "2023-06-01",
		"end_date": "2023-08-21",
		"term": "short",
		"multiplier": "1.5",
		"base_days": 360
	}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	periods, ok := body["periods"].([]interface{})
	require.True(t, ok)
	assert.Len(t, periods, 3, "benchmark changed on 2023-06-20 and 2023-08-21")
}

func TestCalculate_PenaltyReportsBothTotals(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/calculations", `{
		"mode": "penalty",
		"principal": "100000",
		"start_date": "2024-01-01",
		"end_date": "2024-06-30",
		"annual_rate_percent": "24",
		"term": "short",
		"basis_context": "judicial"
	}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["capped_total"])
	assert.NotEmpty(t, body["effective_total"])
	assert.Equal(t, body["capped_total"], body["effective_total"],
		"24 percent is far above 4x the benchmark")
}

func TestCalculate_WithPaymentReturnsAllocation(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/calculations", `{
		"mode": "simple",
		"principal": "100000",
		"start_date": "2024-01-01",
		"end_date": "2024-01-31",
		"annual_rate_percent": "3.6",
		"base_days": 360,
		"accrued_interest": "5000",
		"payments": [{"date": "2024-01-10", "amount": "7000"}],
		"payment_offset_policy": "general"
	}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	allocs, ok := body["allocations"].([]interface{})
	require.True(t, ok)
	require.Len(t, allocs, 1)

	alloc := allocs[0].(map[string]interface{})
	assert.Equal(t, "5100.00", alloc["to_interest"])
	assert.Equal(t, "1900.00", alloc["to_principal"])
	assert.Equal(t, "98100.00", body["remaining_principal"])
}

// =============================================================================
// REJECTIONS
// =============================================================================

func TestCalculate_UnknownJSONFieldRejected(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/calculations", `{
		"mode": "simple",
		"principal": "100000",
		"start_date": "2024-01-01",
		"end_date": "2024-12-31",
		"annual_rate_percent": "4.35",
		"base_days": 360,
		"surprise": true
	}`)

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_request", errorKind(t, body))
}

func TestCalculate_ModeContradictionsRejected(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKind   string
	}{
		{
			"rate supplied for delayed mode",
			`{"mode": "delayed", "principal": "100000",
			  "start_date": "2024-06-01", "end_date": "2024-12-31",
			  "annual_rate_percent": "4.35"}`,
			http.StatusBadRequest, "invalid_parameter",
		},
		{
			"compound without a cycle",
			`{"mode": "compound", "principal": "100000",
			  "start_date": "2024-01-01", "end_date": "2024-12-31",
			  "annual_rate_percent": "12", "base_days": 360}`,
			http.StatusBadRequest, "missing_cycle",
		},
		{
			"unparseable date",
			`{"mode": "simple", "principal": "100000",
			  "start_date": "01/01/2024", "end_date": "2024-12-31",
			  "annual_rate_percent": "4.35", "base_days": 360}`,
			http.StatusBadRequest, "validation_error",
		},
		{
			"floating before the rate history",
			`{"mode": "floating", "principal": "100000",
			  "start_date": "2015-01-01", "end_date": "2015-12-31",
			  "term": "short", "base_days": 360}`,
			http.StatusUnprocessableEntity, "rate_not_found",
		},
		{
			"payment outside the range",
			`{"mode": "simple", "principal": "100000",
			  "start_date": "2024-01-01", "end_date": "2024-12-31",
			  "annual_rate_percent": "4.35", "base_days": 360,
			  "payments": [{"date": "2023-06-01", "amount": "100"}]}`,
			http.StatusBadRequest, "invalid_payment_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postJSON(t, srv.URL+"/api/calculations", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantKind, errorKind(t, body))
		})
	}
}

// =============================================================================
// REPORTS
// =============================================================================

func TestReports_AppendListAndRows(t *testing.T) {
	// GIVEN: A fresh workbook behind the API
	// WHEN: Appending a section, then listing and fetching its rows
	// THEN: The stored section reflects the calculation just run

	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/reports/sections", `{
		"case_ref": "BK-2024-010",
		"title": "contract interest",
		"legal_citation": "loan agreement art. 5",
		"calculation": {
			"mode": "simple",
			"principal": "100000",
			"start_date": "2024-01-01",
			"end_date": "2024-12-31",
			"annual_rate_percent": "4.35",
			"base_days": 360
		}
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	sectionID, ok := body["section_id"].(float64)
	require.True(t, ok)

	listResp, err := http.Get(srv.URL + "/api/reports/BK-2024-010")
	require.NoError(t, err)
	defer listResp.Body.Close()
	var sections []map[string]interface{}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&sections))
	require.Len(t, sections, 1)
	assert.Equal(t, "contract interest", sections[0]["title"])
	assert.Equal(t, "4422.50", sections[0]["total_interest"])
	assert.NotEmpty(t, sections[0]["created_at"])

	rowsResp, err := http.Get(fmt.Sprintf("%s/api/reports/BK-2024-010/sections/%d", srv.URL, int64(sectionID)))
	require.NoError(t, err)
	defer rowsResp.Body.Close()
	var rows []map[string]interface{}
	require.NoError(t, json.NewDecoder(rowsResp.Body).Decode(&rows))
	assert.Len(t, rows, 2)
}

func TestReports_UnknownCaseIs404(t *testing.T) {
	srv := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/api/reports/BK-0000-000")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", errorKind(t, body))
}

func TestReports_MissingMetadataRejected(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/reports/sections", `{
		"title": "contract interest",
		"calculation": {
			"mode": "delayed",
			"principal": "100000",
			"start_date": "2024-06-01",
			"end_date": "2024-12-31"
		}
	}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_request", errorKind(t, body))
}

func TestReports_FailedCalculationWritesNothing(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := postJSON(t, srv.URL+"/api/reports/sections", `{
		"case_ref": "BK-2024-011",
		"title": "bad section",
		"calculation": {
			"mode": "floating",
			"principal": "100000",
			"start_date": "2015-01-01",
			"end_date": "2015-12-31",
			"term": "short",
			"base_days": 360
		}
	}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = getJSON(t, srv.URL+"/api/reports/BK-2024-011")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode,
		"a failed calculation must leave no section behind")
}

// =============================================================================
// RATES
// =============================================================================

func TestRates_ListAndLookup(t *testing.T) {
	srv := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/api/rates/short")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["snapshot_version"])
	entries, ok := body["entries"].([]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, entries)

	resp, body = getJSON(t, srv.URL+"/api/rates/short/lookup?date=2023-07-01")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "3.55", body["annual_rate_percent"])

	resp, body = getJSON(t, srv.URL+"/api/rates/medium")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_request", errorKind(t, body))

	resp, body = getJSON(t, srv.URL+"/api/rates/short/lookup?date=2015-01-01")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "rate_not_found", errorKind(t, body))
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}
