package reconcile

import (
	"sort"
	"time"
)

// ActorPerformance is the per-actor slice of the matrix.
type ActorPerformance struct {
	ActorID      string  `json:"actor_id"`
	MeanQuality  float64 `json:"mean_quality"`
	MeanWeighted float64 `json:"mean_weighted"`
	Reconciled   int     `json:"reconciled"`
}

// LotSummary is the per-lot (efficiency, quality) pair used for
// correlation plotting and rankings.
type LotSummary struct {
	LotID          string  `json:"lot_id"`
	MeanEfficiency float64 `json:"mean_efficiency"`
	MeanQuality    float64 `json:"mean_quality"`
	MeanWeighted   float64 `json:"mean_weighted"`
	Reconciled     int     `json:"reconciled"`
}

// ByActor reduces the matrix to per-actor means, best weighted score
// first. Empty input yields an empty slice.
func ByActor(rows []ReconciledRow) []ActorPerformance {
	quality := make(map[string]*meanAcc)
	weighted := make(map[string]*meanAcc)
	for _, row := range rows {
		if quality[row.ActorID] == nil {
			quality[row.ActorID] = &meanAcc{}
			weighted[row.ActorID] = &meanAcc{}
		}
		quality[row.ActorID].add(row.QualityScore)
		weighted[row.ActorID].add(row.WeightedScore)
	}

	out := make([]ActorPerformance, 0, len(quality))
	for actor, acc := range quality {
		out = append(out, ActorPerformance{
			ActorID:      actor,
			MeanQuality:  acc.mean(),
			MeanWeighted: weighted[actor].mean(),
			Reconciled:   acc.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanWeighted != out[j].MeanWeighted {
			return out[i].MeanWeighted > out[j].MeanWeighted
		}
		return out[i].ActorID < out[j].ActorID
	})
	return out
}

// ByLot reduces the matrix to per-lot means, best weighted score first.
func ByLot(rows []ReconciledRow) []LotSummary {
	eff := make(map[string]*meanAcc)
	quality := make(map[string]*meanAcc)
	weighted := make(map[string]*meanAcc)
	for _, row := range rows {
		if eff[row.LotID] == nil {
			eff[row.LotID] = &meanAcc{}
			quality[row.LotID] = &meanAcc{}
			weighted[row.LotID] = &meanAcc{}
		}
		eff[row.LotID].add(row.Efficiency)
		quality[row.LotID].add(row.QualityScore)
		weighted[row.LotID].add(row.WeightedScore)
	}

	out := make([]LotSummary, 0, len(eff))
	for lot, acc := range eff {
		out = append(out, LotSummary{
			LotID:          lot,
			MeanEfficiency: acc.mean(),
			MeanQuality:    quality[lot].mean(),
			MeanWeighted:   weighted[lot].mean(),
			Reconciled:     acc.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanWeighted != out[j].MeanWeighted {
			return out[i].MeanWeighted > out[j].MeanWeighted
		}
		return out[i].LotID < out[j].LotID
	})
	return out
}

// TopLotsByEfficiency returns the n best lots by mean efficiency.
func TopLotsByEfficiency(rows []ReconciledRow, n int) []LotSummary {
	return rankLots(rows, n, true)
}

// BottomLotsByEfficiency returns the n worst lots by mean efficiency.
func BottomLotsByEfficiency(rows []ReconciledRow, n int) []LotSummary {
	return rankLots(rows, n, false)
}

func rankLots(rows []ReconciledRow, n int, best bool) []LotSummary {
	lots := ByLot(rows)
	sort.Slice(lots, func(i, j int) bool {
		if lots[i].MeanEfficiency != lots[j].MeanEfficiency {
			if best {
				return lots[i].MeanEfficiency > lots[j].MeanEfficiency
			}
			return lots[i].MeanEfficiency < lots[j].MeanEfficiency
		}
		return lots[i].LotID < lots[j].LotID
	})
	if n > 0 && len(lots) > n {
		lots = lots[:n]
	}
	return lots
}

// Pivot is the actor×date weighted-score table with trailing averages.
// Cells are nil where an actor has no reconciled rows for a date.
type Pivot struct {
	Dates      []string     `json:"dates"`
	Actors     []string     `json:"actors"`
	Cells      [][]*float64 `json:"cells"`
	RowAvg     []float64    `json:"row_avg"`
	ColumnAvg  []float64    `json:"column_avg"`
	OverallAvg float64      `json:"overall_avg"`
}

const pivotDateLayout = "2006-01-02"

// PivotWeighted builds the actor×date pivot over weighted scores.
// Multiple rows per (actor, date) collapse to their mean.
func PivotWeighted(rows []ReconciledRow) Pivot {
	if len(rows) == 0 {
		return Pivot{}
	}

	dateSet := make(map[string]time.Time)
	actorSet := make(map[string]bool)
	cellAcc := make(map[string]*meanAcc)
	for _, row := range rows {
		d := row.Date.Format(pivotDateLayout)
		dateSet[d] = row.Date
		actorSet[row.ActorID] = true
		key := row.ActorID + "\x00" + d
		if cellAcc[key] == nil {
			cellAcc[key] = &meanAcc{}
		}
		cellAcc[key].add(row.WeightedScore)
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	actors := make([]string, 0, len(actorSet))
	for a := range actorSet {
		actors = append(actors, a)
	}
	sort.Strings(actors)

	p := Pivot{
		Dates:     dates,
		Actors:    actors,
		Cells:     make([][]*float64, len(actors)),
		RowAvg:    make([]float64, len(actors)),
		ColumnAvg: make([]float64, len(dates)),
	}

	colAcc := make([]meanAcc, len(dates))
	var overall meanAcc
	for i, actor := range actors {
		p.Cells[i] = make([]*float64, len(dates))
		var rowAcc meanAcc
		for j, d := range dates {
			acc, ok := cellAcc[actor+"\x00"+d]
			if !ok {
				continue
			}
			v := acc.mean()
			p.Cells[i][j] = &v
			rowAcc.add(v)
			colAcc[j].add(v)
			overall.add(v)
		}
		p.RowAvg[i] = rowAcc.mean()
	}
	for j := range dates {
		p.ColumnAvg[j] = colAcc[j].mean()
	}
	p.OverallAvg = overall.mean()

	return p
}
