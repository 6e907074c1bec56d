// Package dataset models loosely-structured tabular data as delivered by
// spreadsheet sources, and resolves logical fields against untrusted
// column names.
package dataset

// Row holds one record keyed by physical column name. Cell values are
// heterogeneous: strings, numbers or nil, exactly as the source
// delivered them.
type Row map[string]interface{}

// RawDataset is an ordered sequence of named columns with untyped rows.
// Column names are untrusted and may change between loads.
type RawDataset struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// IsEmpty reports whether the dataset carries no rows.
func (d *RawDataset) IsEmpty() bool {
	return d == nil || len(d.Rows) == 0
}

// Len returns the row count.
func (d *RawDataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}
