package cleaning

import (
	"strings"
	"time"

	"github.com/spf13/cast"

	"agrodash/dataset"
	"agrodash/normalization"
)

// ProductionRecord is one cleaned harvest-productivity row.
type ProductionRecord struct {
	Date        time.Time `json:"date"`
	LotID       string    `json:"lot_id"`
	WorkerID    string    `json:"worker_id,omitempty"`
	LaborType   string    `json:"labor_type,omitempty"`
	RatePerHour float64   `json:"rate_per_hour"`
	TargetRate  float64   `json:"target_rate"`
	Wage        float64   `json:"wage"`

	// Efficiency is RatePerHour / TargetRate; nil when the target rate
	// is zero or the target column is absent. Nil rows are excluded
	// from efficiency means, never counted as zero.
	Efficiency *float64 `json:"efficiency,omitempty"`
}

// CleanProduction resolves the production columns and produces typed
// records. Rows without a parseable date are dropped; every other
// oddity degrades to a default. The raw dataset is never mutated.
func CleanProduction(raw *dataset.RawDataset) ([]ProductionRecord, dataset.ColumnMap) {
	if raw.IsEmpty() {
		return nil, dataset.ColumnMap{}
	}

	cols := dataset.ResolveFields(raw.Columns, ProductionFields)
	records := make([]ProductionRecord, 0, len(raw.Rows))

	for _, row := range raw.Rows {
		if !cols.Resolved(FieldDate) {
			break
		}
		date, ok := ParseDate(row[cols.Column(FieldDate)])
		if !ok {
			continue
		}

		rec := ProductionRecord{Date: date, LotID: LotGeneric}

		if cols.Resolved(FieldLot) {
			rec.LotID = normalization.CanonicalLotID(row[cols.Column(FieldLot)])
			if rec.LotID == "" {
				rec.LotID = LotGeneric
			}
		}
		if cols.Resolved(FieldWorker) {
			rec.WorkerID = strings.TrimSpace(cast.ToString(row[cols.Column(FieldWorker)]))
		}
		if cols.Resolved(FieldLabor) {
			rec.LaborType = normalization.CanonicalLabel(row[cols.Column(FieldLabor)])
		}
		if cols.Resolved(FieldRate) {
			rec.RatePerHour = normalization.ToNumber(row[cols.Column(FieldRate)])
		}
		if cols.Resolved(FieldTarget) {
			rec.TargetRate = normalization.ToNumber(row[cols.Column(FieldTarget)])
		}
		if cols.Resolved(FieldWage) {
			rec.Wage = normalization.ToNumber(row[cols.Column(FieldWage)])
		}

		if rec.TargetRate > 0 {
			eff := rec.RatePerHour / rec.TargetRate
			rec.Efficiency = &eff
		}

		records = append(records, rec)
	}

	return records, cols
}
