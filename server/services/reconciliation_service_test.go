package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrodash/dataset"
	"agrodash/internal/cache"
	"agrodash/reconcile"
	"agrodash/source"
)

// stubProvider serves fixed datasets and counts fetches.
type stubProvider struct {
	data    map[string]*dataset.RawDataset
	fetches int
}

func (p *stubProvider) Fetch(_ context.Context, spec source.DatasetSpec) *dataset.RawDataset {
	p.fetches++
	if ds, ok := p.data[spec.Name]; ok {
		return ds
	}
	return &dataset.RawDataset{}
}

func fixtureProvider() *stubProvider {
	return &stubProvider{data: map[string]*dataset.RawDataset{
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
}

func newTestService(p DatasetProvider, ttl time.Duration) *ReconciliationService {
	return NewReconciliationService(
		p,
		source.DatasetSpec{Name: source.DatasetProduction},
		source.DatasetSpec{Name: source.DatasetQuality},
		cache.NewMemo(ttl),
		nil,
	)
}

func TestReconcileServiceEndToEnd(t *testing.T) {
	svc := newTestService(fixtureProvider(), time.Minute)

	weeks := svc.Weeks(context.Background())
	require.Equal(t, []int{10}, weeks)

	result := svc.Reconcile(context.Background(), ReconcileRequest{Week: 10, QualityWeight: 0.6})
	require.Equal(t, reconcile.ReasonNone, result.Reason)
	require.Len(t, result.Rows, 2)

	first := result.Rows[0]
	assert.Equal(t, "1", first.LotID)
	assert.Equal(t, "ANA", first.ActorID)
	assert.InDelta(t, 1.25, first.Efficiency, 1e-9)
	assert.InDelta(t, 0.9, first.QualityScore, 1e-9)
	assert.InDelta(t, 1.04, first.WeightedScore, 1e-9)

	assert.Len(t, result.Actors, 2)
	assert.Len(t, result.Lots, 2)
	assert.Equal(t, 2, result.ProductionRecords)
	assert.Empty(t, result.MissingSources)
}

func TestReconcileServiceLotFilter(t *testing.T) {
	svc := newTestService(fixtureProvider(), time.Minute)
	result := svc.Reconcile(context.Background(), ReconcileRequest{Week: 10, QualityWeight: 0.6, LotFilter: "2"})
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "2", result.Rows[0].LotID)
}

func TestReconcileServiceLotFilterNoMatch(t *testing.T) {
	svc := newTestService(fixtureProvider(), time.Minute)
	result := svc.Reconcile(context.Background(), ReconcileRequest{Week: 10, QualityWeight: 0.6, LotFilter: "99"})
	assert.Empty(t, result.Rows)
	assert.Equal(t, reconcile.ReasonNoOverlap, result.Reason)
}

func TestReconcileServiceMemoizes(t *testing.T) {
	p := fixtureProvider()
	svc := newTestService(p, time.Minute)

	req := ReconcileRequest{Week: 10, QualityWeight: 0.6}
	first := svc.Reconcile(context.Background(), req)
	second := svc.Reconcile(context.Background(), req)

	assert.Same(t, first, second, "identical requests within TTL must hit the memo")
	assert.Equal(t, 2, p.fetches, "sources fetched once, not per request")
}

func TestReconcileServiceRefresh(t *testing.T) {
	p := fixtureProvider()
	svc := newTestService(p, time.Minute)

	svc.Reconcile(context.Background(), ReconcileRequest{Week: 10, QualityWeight: 0.6})
	svc.Refresh()
	svc.Reconcile(context.Background(), ReconcileRequest{Week: 10, QualityWeight: 0.6})

	assert.Equal(t, 4, p.fetches, "refresh must force a re-fetch")
}

func TestReconcileServiceMissingSources(t *testing.T) {
	p := &stubProvider{data: map[string]*dataset.RawDataset{}}
	svc := newTestService(p, time.Minute)

	result := svc.Reconcile(context.Background(), ReconcileRequest{Week: 10, QualityWeight: 0.6})
	assert.Empty(t, result.Rows)
	assert.Equal(t, reconcile.ReasonNoProduction, result.Reason)
	assert.ElementsMatch(t, []string{"production", "quality"}, result.MissingSources)
}

func TestReconcileServiceExportCSV(t *testing.T) {
	svc := newTestService(fixtureProvider(), time.Minute)

	var sb strings.Builder
	err := svc.ExportCSV(context.Background(), ReconcileRequest{Week: 10, QualityWeight: 0.6}, &sb)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,lot_id,actor_id,efficiency,quality_score,weighted_score", lines[0])
	assert.Contains(t, lines[1], "2024-03-04,1,ANA")
}

func TestProductionSummaryThroughService(t *testing.T) {
	svc := newTestService(fixtureProvider(), time.Minute)

	summary := svc.ProductionSummary(context.Background(), time.Time{}, time.Time{}, "")
	assert.Equal(t, 2, summary.Records)
	assert.InDelta(t, 40, summary.MeanRate, 1e-9)
	assert.InDelta(t, 175, summary.TotalWage, 1e-9)

	labors := svc.Labors(context.Background())
	assert.Equal(t, []string{"PODA", "RASPA"}, labors)
}
