package reconcile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVHeader is the stable export column order; downstream sheets key on
// these names.
var CSVHeader = []string{"date", "lot_id", "actor_id", "efficiency", "quality_score", "weighted_score"}

const exportDateLayout = "2006-01-02"

// WriteCSV serializes the reconciled table as delimited text.
func WriteCSV(w io.Writer, rows []ReconciledRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Date.Format(exportDateLayout),
			row.LotID,
			row.ActorID,
			formatScore(row.Efficiency),
			formatScore(row.QualityScore),
			formatScore(row.WeightedScore),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
