// Command gensheets produces sample production and quality workbooks
// for local development, in the messy shape the cleaning layer expects:
// mixed lot spellings, day-first dates and percent scores.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/xuri/excelize/v2"
)

var labors = []string{"Poda", "Raspa", "Cosecha", "Deshoje"}

var defects = []string{"Racimo suelto", "Baya partida", "Sin detalle", "Maduración irregular"}

func main() {
	var (
		prodPath = flag.String("production", "Data_Maestra_Limpia.xlsx", "production workbook to write")
		qualPath = flag.String("quality", "reporte_calidad.xlsx", "quality workbook to write")
		rows     = flag.Int("rows", 200, "rows per workbook")
		seed     = flag.Int64("seed", 0, "random seed (0 for time-based)")
		start    = flag.String("start", "2024-03-04", "first date (YYYY-MM-DD)")
		days     = flag.Int("days", 14, "date span in days")
		lots     = flag.Int("lots", 8, "distinct lots")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		logger.Error("invalid start date", "start", *start, "error", err)
		os.Exit(1)
	}

	if err := writeProduction(*prodPath, *rows, startDate, *days, *lots); err != nil {
		logger.Error("failed to write production workbook", "path", *prodPath, "error", err)
		os.Exit(1)
	}
	logger.Info("production workbook written", "path", *prodPath, "rows", *rows)

	if err := writeQuality(*qualPath, *rows/2, startDate, *days, *lots); err != nil {
		logger.Error("failed to write quality workbook", "path", *qualPath, "error", err)
		os.Exit(1)
	}
	logger.Info("quality workbook written", "path", *qualPath, "rows", *rows/2)
}

func randomDate(start time.Time, days int) time.Time {
	return start.AddDate(0, 0, gofakeit.Number(0, days-1))
}

// lotLabel varies the spelling so the canonicalizer has work to do.
func lotLabel(n int) string {
	switch gofakeit.Number(0, 2) {
	case 0:
		return fmt.Sprintf("Lote %d", n)
	case 1:
		return fmt.Sprintf("%03d", n)
	default:
		return fmt.Sprintf("LOTE-%02d", n)
	}
}

func writeProduction(path string, rows int, start time.Time, days, lots int) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []interface{}{"Fecha", "Lote", "Labor", "DNI", "Rend/Hr", "Meta", "Salario"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i := 0; i < rows; i++ {
		meta := float64(gofakeit.Number(30, 60))
		rate := meta * gofakeit.Float64Range(0.5, 1.5)
		row := []interface{}{
			randomDate(start, days).Format("02/01/2006"),
			lotLabel(gofakeit.Number(1, lots)),
			gofakeit.RandomString(labors),
			fmt.Sprintf("%08d", gofakeit.Number(10000000, 99999999)),
			fmt.Sprintf("%.1f", rate),
			fmt.Sprintf("%.0f", meta),
			fmt.Sprintf("S/ %.2f", gofakeit.Float64Range(60, 120)),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func writeQuality(path string, rows int, start time.Time, days, lots int) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []interface{}{"Fecha", "Lote", "Asistente", "Nota", "Tipo Defecto"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i := 0; i < rows; i++ {
		row := []interface{}{
			randomDate(start, days).Format("02/01/2006"),
			lotLabel(gofakeit.Number(1, lots)),
			gofakeit.FirstName(),
			fmt.Sprintf("%d", gofakeit.Number(10, 20)),
			gofakeit.RandomString(defects),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
