// Package services orchestrates sources, cleaning and the join engine
// behind the HTTP handlers.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"agrodash/cleaning"
	"agrodash/dataset"
	"agrodash/internal/cache"
	"agrodash/reconcile"
	"agrodash/source"
)

// rankingSize bounds the top/bottom lot rankings in the result.
const rankingSize = 10

// DatasetProvider yields raw datasets; implemented by source.Provider.
type DatasetProvider interface {
	Fetch(ctx context.Context, spec source.DatasetSpec) *dataset.RawDataset
}

// ReconcileRequest parameterizes one reconciliation.
type ReconcileRequest struct {
	Week          int     `json:"week"`
	QualityWeight float64 `json:"quality_weight"`
	LotFilter     string  `json:"lot_filter,omitempty"`
}

// ReconcileResult is the full engine output for one request: the
// reconciled rows, every derived view, and the degenerate-state
// discriminators. Immutable once produced.
type ReconcileResult struct {
	Week          int     `json:"week"`
	QualityWeight float64 `json:"quality_weight"`
	LotFilter     string  `json:"lot_filter,omitempty"`

	Rows   []reconcile.ReconciledRow `json:"rows"`
	Reason reconcile.EmptyReason     `json:"reason,omitempty"`

	Actors     []reconcile.ActorPerformance `json:"actors"`
	Lots       []reconcile.LotSummary       `json:"lots"`
	TopLots    []reconcile.LotSummary       `json:"top_lots"`
	BottomLots []reconcile.LotSummary       `json:"bottom_lots"`
	Pivot      reconcile.Pivot              `json:"pivot"`

	ProductionRecords int      `json:"production_records"`
	QualityRecords    int      `json:"quality_records"`
	MissingSources    []string `json:"missing_sources,omitempty"`
}

// datasets is the cleaned snapshot both request paths share.
type datasets struct {
	production []cleaning.ProductionRecord
	quality    []cleaning.QualityRecord
	missing    []string
}

// ReconciliationService loads, cleans and reconciles on demand. All
// computation is re-derived per request; the memo only short-circuits
// identical requests within its TTL.
type ReconciliationService struct {
	provider DatasetProvider
	prodSpec source.DatasetSpec
	qualSpec source.DatasetSpec
	memo     *cache.Memo
	logger   *slog.Logger
}

// NewReconciliationService wires the service. memo may be nil to
// disable memoization.
func NewReconciliationService(provider DatasetProvider, prodSpec, qualSpec source.DatasetSpec, memo *cache.Memo, logger *slog.Logger) *ReconciliationService {
	if logger == nil {
		logger = slog.Default()
	}
	if memo == nil {
		memo = cache.NewMemo(0)
	}
	return &ReconciliationService{
		provider: provider,
		prodSpec: prodSpec,
		qualSpec: qualSpec,
		memo:     memo,
		logger:   logger,
	}
}

func (s *ReconciliationService) loadDatasets(ctx context.Context) *datasets {
	if cached, ok := s.memo.Get("datasets"); ok {
		return cached.(*datasets)
	}

	start := time.Now()
	prodRaw := s.provider.Fetch(ctx, s.prodSpec)
	qualRaw := s.provider.Fetch(ctx, s.qualSpec)

	ds := &datasets{}
	if prodRaw.IsEmpty() {
		ds.missing = append(ds.missing, source.DatasetProduction)
	}
	if qualRaw.IsEmpty() {
		ds.missing = append(ds.missing, source.DatasetQuality)
	}

	ds.production, _ = cleaning.CleanProduction(prodRaw)
	ds.quality, _ = cleaning.CleanQuality(qualRaw)

	s.logger.Info("datasets cleaned",
		"production_raw", prodRaw.Len(),
		"production_clean", len(ds.production),
		"quality_raw", qualRaw.Len(),
		"quality_clean", len(ds.quality),
		"duration", time.Since(start))

	s.memo.Set("datasets", ds)
	return ds
}

// Weeks lists the selectable analysis weeks.
func (s *ReconciliationService) Weeks(ctx context.Context) []int {
	return reconcile.Weeks(s.loadDatasets(ctx).quality)
}

// Labors lists the production labor types for the filter control.
func (s *ReconciliationService) Labors(ctx context.Context) []string {
	return reconcile.Labors(s.loadDatasets(ctx).production)
}

// Reconcile runs the join engine and derives every view.
func (s *ReconciliationService) Reconcile(ctx context.Context, req ReconcileRequest) *ReconcileResult {
	key := fmt.Sprintf("reconcile:%d:%.4f:%s", req.Week, req.QualityWeight, req.LotFilter)
	if cached, ok := s.memo.Get(key); ok {
		return cached.(*ReconcileResult)
	}

	ds := s.loadDatasets(ctx)

	rows, reason := reconcile.Reconcile(ds.production, ds.quality, req.Week, req.QualityWeight)
	rows = reconcile.FilterLot(rows, req.LotFilter)
	if len(rows) == 0 && reason == reconcile.ReasonNone {
		reason = reconcile.ReasonNoOverlap
	}

	result := &ReconcileResult{
		Week:              req.Week,
		QualityWeight:     req.QualityWeight,
		LotFilter:         req.LotFilter,
		Rows:              rows,
		Reason:            reason,
		Actors:            reconcile.ByActor(rows),
		Lots:              reconcile.ByLot(rows),
		TopLots:           reconcile.TopLotsByEfficiency(rows, rankingSize),
		BottomLots:        reconcile.BottomLotsByEfficiency(rows, rankingSize),
		Pivot:             reconcile.PivotWeighted(rows),
		ProductionRecords: len(ds.production),
		QualityRecords:    len(ds.quality),
		MissingSources:    ds.missing,
	}

	s.logger.Info("reconciliation computed",
		"week", req.Week,
		"quality_weight", req.QualityWeight,
		"rows", len(rows),
		"reason", string(reason))

	s.memo.Set(key, result)
	return result
}

// ExportCSV streams the reconciled table for a request.
func (s *ReconciliationService) ExportCSV(ctx context.Context, req ReconcileRequest, w io.Writer) error {
	result := s.Reconcile(ctx, req)
	return reconcile.WriteCSV(w, result.Rows)
}

// ProductionSummary aggregates cleaned production records over an
// optional date range and labor filter.
func (s *ReconciliationService) ProductionSummary(ctx context.Context, from, to time.Time, labor string) reconcile.ProductionSummary {
	return reconcile.SummarizeProduction(s.loadDatasets(ctx).production, from, to, labor)
}

// Refresh drops the memo so the next request re-fetches the sources.
func (s *ReconciliationService) Refresh() {
	s.memo.Invalidate()
}
