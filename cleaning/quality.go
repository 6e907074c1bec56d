package cleaning

import (
	"time"

	"agrodash/dataset"
	"agrodash/normalization"
)

// QualityRecord is one cleaned inspection row. QualityScore is always
// in [0, 1]; 1.0 means no defects.
type QualityRecord struct {
	Date         time.Time `json:"date"`
	LotID        string    `json:"lot_id"`
	ActorID      string    `json:"actor_id"`
	DefectType   string    `json:"defect_type"`
	QualityScore float64   `json:"quality_score"`
}

// CleanQuality resolves the quality columns and produces typed records.
//
// Score derivation priority:
//  1. direct score column, rescaled by its inferred scale — the
//     inspectors file grades over 20 or over 100 depending on the
//     campaign, so the divisor is chosen from the column's observed
//     maximum (>20 means percent scale, >1 means the 0–20 scale);
//  2. deviation column, as 1 − deviation with a percent rescale when
//     the observed maximum exceeds 1.0;
//  3. neither present: 1.0 (assume no defects were worth recording).
//
// The result is clamped to [0, 1].
func CleanQuality(raw *dataset.RawDataset) ([]QualityRecord, dataset.ColumnMap) {
	if raw.IsEmpty() {
		return nil, dataset.ColumnMap{}
	}

	cols := dataset.ResolveFields(raw.Columns, QualityFields)
	if !cols.Resolved(FieldDate) {
		// Without dates nothing can join; the whole batch is unusable.
		return nil, cols
	}

	scores := deriveScores(raw, cols)

	records := make([]QualityRecord, 0, len(raw.Rows))
	for i, row := range raw.Rows {
		date, ok := ParseDate(row[cols.Column(FieldDate)])
		if !ok {
			continue
		}

		rec := QualityRecord{
			Date:         date,
			LotID:        LotUnknown,
			ActorID:      ActorUnassigned,
			DefectType:   DefectNoDetail,
			QualityScore: clamp01(scores[i]),
		}

		if cols.Resolved(FieldLot) {
			rec.LotID = normalization.CanonicalLotID(row[cols.Column(FieldLot)])
			if rec.LotID == "" {
				rec.LotID = LotUnknown
			}
		}
		if cols.Resolved(FieldInspector) {
			if actor := normalization.NormalizeText(row[cols.Column(FieldInspector)]); actor != "" {
				rec.ActorID = actor
			}
		}
		if cols.Resolved(FieldDefect) {
			rec.DefectType = normalization.CanonicalLabel(row[cols.Column(FieldDefect)])
		}

		records = append(records, rec)
	}

	return records, cols
}

// deriveScores computes the per-row raw quality score (pre-clamp) for
// the whole dataset. Scale inference needs the column maximum, so this
// is a dataset-level pass, indexed parallel to raw.Rows.
func deriveScores(raw *dataset.RawDataset, cols dataset.ColumnMap) []float64 {
	scores := make([]float64, len(raw.Rows))

	switch {
	case cols.Resolved(FieldScore):
		col := cols.Column(FieldScore)
		maxVal := 0.0
		for i, row := range raw.Rows {
			scores[i] = normalization.ToNumber(row[col])
			if scores[i] > maxVal {
				maxVal = scores[i]
			}
		}
		divisor := 1.0
		if maxVal > 20 {
			divisor = 100
		} else if maxVal > 1 {
			divisor = 20
		}
		for i := range scores {
			scores[i] /= divisor
		}

	case cols.Resolved(FieldDeviation):
		col := cols.Column(FieldDeviation)
		maxVal := 0.0
		for i, row := range raw.Rows {
			scores[i] = normalization.ToNumber(row[col])
			if scores[i] > maxVal {
				maxVal = scores[i]
			}
		}
		// Deviations above 1.0 were recorded as percentages.
		for i := range scores {
			dev := scores[i]
			if maxVal > 1.0 {
				dev /= 100
			}
			scores[i] = 1.0 - dev
		}

	default:
		for i := range scores {
			scores[i] = 1.0
		}
	}

	return scores
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
