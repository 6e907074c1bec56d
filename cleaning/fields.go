// Package cleaning turns raw production and quality datasets into typed
// records. All downstream code works on these records; nothing past this
// boundary re-inspects raw untyped columns.
package cleaning

import "agrodash/dataset"

// Logical field names shared by both domains.
const (
	FieldDate      = "Date"
	FieldLot       = "Lot"
	FieldLabor     = "Labor"
	FieldRate      = "Rate"
	FieldTarget    = "Target"
	FieldWage      = "Wage"
	FieldWorker    = "Worker"
	FieldInspector = "Inspector"
	FieldScore     = "Score"
	FieldDeviation = "Deviation"
	FieldDefect    = "Defect"
)

// Sentinels for structurally absent identifiers.
const (
	LotGeneric      = "GENERIC"
	LotUnknown      = "UNKNOWN"
	ActorUnassigned = "UNASSIGNED"
	DefectNoDetail  = "NO_DETAIL"
)

// ProductionFields locates the production (harvest productivity)
// columns. The sheets come from field supervisors and mix Spanish and
// English headers; candidates are ordered by how often each name shows
// up in real exports.
var ProductionFields = []dataset.FieldSpec{
	{Name: FieldDate, Candidates: []string{"fecha", "date"}},
	{Name: FieldLot, Candidates: []string{"lote", "ubicacion", "sector"}},
	{Name: FieldLabor, Candidates: []string{"labor", "actividad", "pep"}},
	{Name: FieldRate, Candidates: []string{"rendimiento_hora", "rend/hr", "unidades/hr"}},
	{Name: FieldTarget, Candidates: []string{"meta", "meta_min"}},
	{Name: FieldWage, Candidates: []string{"salario", "pago", "monto"}},
	{Name: FieldWorker, Candidates: []string{"dni", "codigo", "id"}},
}

// QualityFields locates the quality-inspection columns.
var QualityFields = []dataset.FieldSpec{
	{Name: FieldDate, Candidates: []string{"fecha", "date"}},
	{Name: FieldLot, Candidates: []string{"lote", "ubicacion"}},
	{Name: FieldInspector, Candidates: []string{"asistente", "evaluador", "nombre"}},
	{Name: FieldScore, Candidates: []string{"nota", "calificacion", "score"}},
	{Name: FieldDeviation, Candidates: []string{"desviacion", "desv", "% mala", "% defecto"}},
	{Name: FieldDefect, Candidates: []string{"tipo_defecto", "defecto", "detalle"}},
}
