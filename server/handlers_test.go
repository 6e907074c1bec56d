package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrodash/dataset"
	"agrodash/internal/cache"
	"agrodash/server/services"
	"agrodash/source"
)

type fixedProvider struct {
	data map[string]*dataset.RawDataset
}

func (p *fixedProvider) Fetch(_ context.Context, spec source.DatasetSpec) *dataset.RawDataset {
	if ds, ok := p.data[spec.Name]; ok {
		return ds
	}
	return &dataset.RawDataset{}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	provider := &fixedProvider{data: map[string]*dataset.RawDataset{
		source.DatasetProduction: {
			Columns: []string{"Fecha", "Lote", "Rend/Hr", "Meta", "Labor", "Salario"},
			Rows: []dataset.Row{
				{"Fecha": "04/03/2024", "Lote": "001", "Rend/Hr": "50", "Meta": "40", "Labor": "Poda", "Salario": "85"},
				{"Fecha": "05/03/2024", "Lote": "2", "Rend/Hr": "30", "Meta": "40", "Labor": "Raspa", "Salario": "90"},
			},
		},
		source.DatasetQuality: {
			Columns: []string{"Fecha", "Lote", "Asistente", "Nota"},
			Rows: []dataset.Row{
				{"Fecha": "04/03/2024", "Lote": "Lote 1", "Asistente": "Ana", "Nota": "18"},
				{"Fecha": "05/03/2024", "Lote": "Lote 2", "Asistente": "Luis", "Nota": "16"},
			},
		},
	}}

	svc := services.NewReconciliationService(
		provider,
		source.DatasetSpec{Name: source.DatasetProduction},
		source.DatasetSpec{Name: source.DatasetQuality},
		cache.NewMemo(time.Minute),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return New(svc, 0.6, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func doRequest(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestWeeksEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/weeks")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Weeks []int `json:"weeks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []int{10}, body.Weeks)
}

func TestReconcileEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/reconcile?week=10&weight=0.6")
	require.Equal(t, http.StatusOK, rec.Code)

	var result services.ReconcileResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "1", result.Rows[0].LotID)
	assert.InDelta(t, 1.04, result.Rows[0].WeightedScore, 1e-9)
}

func TestReconcileEndpointDefaultWeight(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/reconcile?week=10")
	require.Equal(t, http.StatusOK, rec.Code)

	var result services.ReconcileResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.InDelta(t, 0.6, result.QualityWeight, 1e-9)
}

func TestReconcileEndpointLotFilterCanonicalized(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/reconcile?week=10&lot=Lote%20002")
	require.Equal(t, http.StatusOK, rec.Code)

	var result services.ReconcileResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "2", result.Rows[0].LotID)
}

func TestReconcileEndpointValidation(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name   string
		target string
	}{
		{"missing week", "/api/reconcile"},
		{"bad week", "/api/reconcile?week=abc"},
		{"bad weight", "/api/reconcile?week=10&weight=x"},
		{"weight out of range", "/api/reconcile?week=10&weight=1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodGet, tc.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestReconcileEmptyWeekCarriesReason(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/reconcile?week=20")
	require.Equal(t, http.StatusOK, rec.Code)

	var result services.ReconcileResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Empty(t, result.Rows)
	assert.Equal(t, "no_production_in_week", string(result.Reason))
}

func TestExportEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/reconcile/export?week=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "reconciliation_week_10.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,lot_id,actor_id,efficiency,quality_score,weighted_score", lines[0])
}

func TestProductionSummaryEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/production/summary?from=2024-03-01&to=2024-03-31")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary struct {
		Records   int     `json:"records"`
		MeanRate  float64 `json:"mean_rate"`
		TotalWage float64 `json:"total_wage"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Records)
	assert.InDelta(t, 175, summary.TotalWage, 1e-9)
}

func TestProductionSummaryBadDates(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/production/summary?from=03-01-2024")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "refreshed")
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}
