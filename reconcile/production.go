package reconcile

import (
	"sort"
	"time"

	"agrodash/cleaning"
)

// DailyRate is the mean hourly rate for one day.
type DailyRate struct {
	Date     time.Time `json:"date"`
	MeanRate float64   `json:"mean_rate"`
	Records  int       `json:"records"`
}

// LotWage is the total wage spend attributed to one lot.
type LotWage struct {
	LotID     string  `json:"lot_id"`
	TotalWage float64 `json:"total_wage"`
	Records   int     `json:"records"`
}

// ProductionSummary aggregates cleaned production rows for the
// operational and payroll dashboard tabs.
type ProductionSummary struct {
	Records   int         `json:"records"`
	MeanRate  float64     `json:"mean_rate"`
	TotalWage float64     `json:"total_wage"`
	Daily     []DailyRate `json:"daily"`
	WageByLot []LotWage   `json:"wage_by_lot"`
}

// SummarizeProduction reduces production records over an optional date
// range and labor filter. Zero From/To bounds are open; labor matches
// the canonical labor type exactly. Empty input yields zero values,
// never an error.
func SummarizeProduction(records []cleaning.ProductionRecord, from, to time.Time, labor string) ProductionSummary {
	var summary ProductionSummary
	var rateAcc meanAcc
	daily := make(map[time.Time]*meanAcc)
	wages := make(map[string]*LotWage)

	for _, rec := range records {
		if !from.IsZero() && rec.Date.Before(from) {
			continue
		}
		if !to.IsZero() && rec.Date.After(to) {
			continue
		}
		if labor != "" && rec.LaborType != labor {
			continue
		}

		summary.Records++
		summary.TotalWage += rec.Wage
		rateAcc.add(rec.RatePerHour)

		if daily[rec.Date] == nil {
			daily[rec.Date] = &meanAcc{}
		}
		daily[rec.Date].add(rec.RatePerHour)

		if wages[rec.LotID] == nil {
			wages[rec.LotID] = &LotWage{LotID: rec.LotID}
		}
		wages[rec.LotID].TotalWage += rec.Wage
		wages[rec.LotID].Records++
	}

	summary.MeanRate = rateAcc.mean()

	summary.Daily = make([]DailyRate, 0, len(daily))
	for date, acc := range daily {
		summary.Daily = append(summary.Daily, DailyRate{Date: date, MeanRate: acc.mean(), Records: acc.count})
	}
	sort.Slice(summary.Daily, func(i, j int) bool {
		return summary.Daily[i].Date.Before(summary.Daily[j].Date)
	})

	summary.WageByLot = make([]LotWage, 0, len(wages))
	for _, lw := range wages {
		summary.WageByLot = append(summary.WageByLot, *lw)
	}
	sort.Slice(summary.WageByLot, func(i, j int) bool {
		if summary.WageByLot[i].TotalWage != summary.WageByLot[j].TotalWage {
			return summary.WageByLot[i].TotalWage > summary.WageByLot[j].TotalWage
		}
		return summary.WageByLot[i].LotID < summary.WageByLot[j].LotID
	})

	return summary
}

// Labors lists the distinct canonical labor types, sorted, for the
// dashboard filter control.
func Labors(records []cleaning.ProductionRecord) []string {
	seen := make(map[string]bool)
	for _, rec := range records {
		if rec.LaborType != "" {
			seen[rec.LaborType] = true
		}
	}
	labors := make([]string, 0, len(seen))
	for l := range seen {
		labors = append(labors, l)
	}
	sort.Strings(labors)
	return labors
}
