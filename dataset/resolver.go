package dataset

import "strings"

// FieldSpec declares how to locate one logical field among arbitrary
// column names. Candidates are tried in declared order.
type FieldSpec struct {
	Name       string
	Candidates []string
}

// ColumnMap maps logical field name to the resolved physical column
// name. Unresolved fields are absent from the map; callers must treat
// them as optional.
type ColumnMap map[string]string

// Resolved reports whether the logical field was located.
func (m ColumnMap) Resolved(field string) bool {
	_, ok := m[field]
	return ok
}

// Column returns the physical column for a logical field, or "" when
// the field is unresolved.
func (m ColumnMap) Column(field string) string {
	return m[field]
}

// Resolve finds the physical column matching one of the candidates.
// A full exact-match pass (case-insensitive) over all candidates runs
// before any substring containment is attempted, so an exact hit on a
// later candidate still beats a substring hit on an earlier one.
func Resolve(columns []string, candidates []string) (string, bool) {
	for _, cand := range candidates {
		key := normalizeColumnName(cand)
		for _, col := range columns {
			if normalizeColumnName(col) == key {
				return col, true
			}
		}
	}
	for _, cand := range candidates {
		key := normalizeColumnName(cand)
		if key == "" {
			continue
		}
		for _, col := range columns {
			if strings.Contains(normalizeColumnName(col), key) {
				return col, true
			}
		}
	}
	return "", false
}

// ResolveFields builds the ColumnMap for a whole spec table. The map is
// built once per dataset load and treated as immutable afterwards.
func ResolveFields(columns []string, specs []FieldSpec) ColumnMap {
	m := make(ColumnMap, len(specs))
	for _, spec := range specs {
		if col, ok := Resolve(columns, spec.Candidates); ok {
			m[spec.Name] = col
		}
	}
	return m
}

func normalizeColumnName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
