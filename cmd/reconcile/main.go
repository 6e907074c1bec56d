// Command reconcile runs the pipeline once against local workbooks and
// writes the reconciled table as CSV.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"agrodash/cleaning"
	"agrodash/normalization"
	"agrodash/reconcile"
	"agrodash/source"
)

func main() {
	var (
		prodPath = flag.String("production", "Data_Maestra_Limpia.xlsx", "production workbook path")
		qualPath = flag.String("quality", "", "quality workbook path (or glob like *calidad*.xlsx)")
		week     = flag.Int("week", 0, "analysis week number (required)")
		weight   = flag.Float64("weight", 0.6, "quality weight in [0,1]")
		lot      = flag.String("lot", "", "optional lot filter")
		output   = flag.String("o", "", "output CSV path (default stdout)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *week <= 0 {
		fmt.Fprintln(os.Stderr, "usage: reconcile -week N [-weight 0.6] [-lot ID] [-o out.csv]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	prodRaw, err := source.LoadWorkbook(*prodPath)
	if err != nil {
		logger.Error("failed to load production workbook", "path", *prodPath, "error", err)
		os.Exit(1)
	}

	qualGlob := *qualPath
	if qualGlob == "" {
		qualGlob = "*calidad*.xlsx"
	}
	qualFile, err := source.FindWorkbook(qualGlob)
	if err != nil {
		logger.Error("failed to locate quality workbook", "glob", qualGlob, "error", err)
		os.Exit(1)
	}
	qualRaw, err := source.LoadWorkbook(qualFile)
	if err != nil {
		logger.Error("failed to load quality workbook", "path", qualFile, "error", err)
		os.Exit(1)
	}

	prod, _ := cleaning.CleanProduction(prodRaw)
	qual, _ := cleaning.CleanQuality(qualRaw)
	logger.Info("datasets cleaned", "production", len(prod), "quality", len(qual))

	rows, reason := reconcile.Reconcile(prod, qual, *week, *weight)
	if *lot != "" {
		rows = reconcile.FilterLot(rows, normalization.CanonicalLotID(*lot))
	}
	if len(rows) == 0 {
		if reason == reconcile.ReasonNone {
			reason = reconcile.ReasonNoOverlap
		}
		logger.Warn("no reconciled rows", "week", *week, "reason", string(reason))
		os.Exit(0)
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			logger.Error("failed to create output file", "path", *output, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := reconcile.WriteCSV(out, rows); err != nil {
		logger.Error("failed to write CSV", "error", err)
		os.Exit(1)
	}
	logger.Info("reconciliation written", "rows", len(rows), "week", *week)
}
