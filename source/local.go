package source

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"agrodash/dataset"
)

// LoadWorkbook reads the first sheet of an xlsx workbook into a
// RawDataset. The first row is the header; cells stay strings exactly
// as excelize renders them.
func LoadWorkbook(path string) (*dataset.RawDataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets in workbook %s", path)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return &dataset.RawDataset{}, nil
	}

	header := rows[0]
	ds := &dataset.RawDataset{Columns: header}
	for _, cells := range rows[1:] {
		row := make(dataset.Row, len(header))
		for i, col := range header {
			if i < len(cells) {
				row[col] = cells[i]
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// FindWorkbook resolves a glob pattern to the first matching workbook
// path. Mirrors the original local-development fallback that scans for
// "*calidad*.xlsx" next to the binary.
func FindWorkbook(pattern string) (string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("bad workbook pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no workbook matches %q", pattern)
	}
	return matches[0], nil
}
