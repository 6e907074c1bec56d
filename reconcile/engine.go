// Package reconcile joins cleaned production and quality records on
// (date, lot) within a week bucket and derives the blended performance
// score plus its aggregate views.
package reconcile

import (
	"sort"
	"time"

	"agrodash/cleaning"
)

// EmptyReason discriminates the degenerate empty results. All are
// informative states, never errors.
type EmptyReason string

const (
	ReasonNone         EmptyReason = ""
	ReasonNoProduction EmptyReason = "no_production_in_week"
	ReasonNoQuality    EmptyReason = "no_quality_in_week"
	ReasonNoOverlap    EmptyReason = "no_overlapping_pairs"
)

// ReconciledRow is one (date, lot, actor) cell of the performance
// matrix. Efficiency and QualityScore are side-level means; the
// weighted score is their convex combination.
type ReconciledRow struct {
	Date          time.Time `json:"date"`
	LotID         string    `json:"lot_id"`
	ActorID       string    `json:"actor_id"`
	Efficiency    float64   `json:"efficiency"`
	QualityScore  float64   `json:"quality_score"`
	WeightedScore float64   `json:"weighted_score"`
}

type joinKey struct {
	date time.Time
	lot  string
}

type actorKey struct {
	date  time.Time
	lot   string
	actor string
}

type meanAcc struct {
	sum   float64
	count int
}

func (a *meanAcc) add(v float64) { a.sum += v; a.count++ }

func (a *meanAcc) mean() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

// Reconcile computes the performance matrix for one week.
//
// Production is aggregated by (date, lot) as the mean of defined
// per-row efficiencies; rows with an undefined efficiency do not pull
// the mean toward zero, and a (date, lot) group with no defined
// efficiency at all yields no score rather than a guessed one. Quality
// is aggregated by (date, lot, actor). The two sides are inner-joined
// on (date, lot): pairs present on only one side are dropped.
//
// qualityWeight is clamped to [0, 1].
func Reconcile(prod []cleaning.ProductionRecord, qual []cleaning.QualityRecord, week int, qualityWeight float64) ([]ReconciledRow, EmptyReason) {
	if qualityWeight < 0 {
		qualityWeight = 0
	}
	if qualityWeight > 1 {
		qualityWeight = 1
	}

	prodAgg := make(map[joinKey]*meanAcc)
	for _, rec := range prod {
		if cleaning.WeekBucket(rec.Date) != week {
			continue
		}
		key := joinKey{date: rec.Date, lot: rec.LotID}
		if prodAgg[key] == nil {
			prodAgg[key] = &meanAcc{}
		}
		if rec.Efficiency != nil {
			prodAgg[key].add(*rec.Efficiency)
		}
	}
	if len(prodAgg) == 0 {
		return nil, ReasonNoProduction
	}

	qualAgg := make(map[actorKey]*meanAcc)
	for _, rec := range qual {
		if cleaning.WeekBucket(rec.Date) != week {
			continue
		}
		key := actorKey{date: rec.Date, lot: rec.LotID, actor: rec.ActorID}
		if qualAgg[key] == nil {
			qualAgg[key] = &meanAcc{}
		}
		qualAgg[key].add(rec.QualityScore)
	}
	if len(qualAgg) == 0 {
		return nil, ReasonNoQuality
	}

	rows := make([]ReconciledRow, 0, len(qualAgg))
	for key, quality := range qualAgg {
		production, ok := prodAgg[joinKey{date: key.date, lot: key.lot}]
		if !ok || production.count == 0 {
			continue
		}
		eff := production.mean()
		score := quality.mean()
		rows = append(rows, ReconciledRow{
			Date:          key.date,
			LotID:         key.lot,
			ActorID:       key.actor,
			Efficiency:    eff,
			QualityScore:  score,
			WeightedScore: score*qualityWeight + eff*(1-qualityWeight),
		})
	}
	if len(rows) == 0 {
		return nil, ReasonNoOverlap
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		if rows[i].LotID != rows[j].LotID {
			return rows[i].LotID < rows[j].LotID
		}
		return rows[i].ActorID < rows[j].ActorID
	})

	return rows, ReasonNone
}

// FilterLot keeps only rows for one canonical lot id. An empty filter
// returns the input unchanged.
func FilterLot(rows []ReconciledRow, lotID string) []ReconciledRow {
	if lotID == "" {
		return rows
	}
	filtered := make([]ReconciledRow, 0, len(rows))
	for _, row := range rows {
		if row.LotID == lotID {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// Weeks lists the distinct week buckets present on the quality side,
// ascending. The dashboard offers these as the selectable analysis
// weeks, mirroring how the join is quality-driven.
func Weeks(qual []cleaning.QualityRecord) []int {
	seen := make(map[int]bool)
	for _, rec := range qual {
		seen[cleaning.WeekBucket(rec.Date)] = true
	}
	weeks := make([]int, 0, len(seen))
	for wk := range seen {
		weeks = append(weeks, wk)
	}
	sort.Ints(weeks)
	return weeks
}
