// Package engine implements the field-mapping resolution and booking
// derivation core: per-row platform classification, two-tier rule
// resolution, a constrained arithmetic formula evaluator, the
// derivation pipeline that turns source rows into booking drafts, and
// the edit overlay / audit correlation that reconciles manual
// corrections with committed records.
package engine

import "strings"

// ColumnDef describes one column of the parsed source file.
type ColumnDef struct {
	// Index is the zero-based column position in the source file.
	Index int `json:"index"`

	// Name is the column header. Name comparisons are case-insensitive
	// everywhere in the engine.
	Name string `json:"name"`
}

// Row is one source row: raw string cells aligned to ColumnDef.Index.
type Row []string

// Catalog is the typed view of a parsed source file: ordered column
// definitions plus the rows of raw cells.
type Catalog struct {
	Columns []ColumnDef
	Rows    []Row
}

// dateNameMarkers are substrings that mark a column as date-carrying.
// Cells in such columns are never numeric-coerced, so date strings
// survive evaluation verbatim. Kept deliberately narrow: a wider net
// (e.g. "checkout") would pull fee columns like "Late Checkout Fee"
// out of arithmetic.
var dateNameMarkers = []string{"date", "check-in", "checkin"}

// IsDateColumn reports whether a column name denotes a date column.
func IsDateColumn(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range dateNameMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ColumnIndex returns the index of the named column, matching
// case-insensitively. Returns -1 if no column matches.
func (c *Catalog) ColumnIndex(name string) int {
	for _, col := range c.Columns {
		if strings.EqualFold(col.Name, name) {
			return col.Index
		}
	}
	return -1
}

// Cell returns the raw cell value for a column index, or "" when the
// row is shorter than the catalog (ragged exports are common).
func (r Row) Cell(index int) string {
	if index < 0 || index >= len(r) {
		return ""
	}
	return r[index]
}

// cellRef is a single resolvable name inside a row: the raw cell value
// plus whether it came from a date column.
type cellRef struct {
	raw    string
	isDate bool
}

// rowLookup builds the lower-cased column-name -> cell lookup used by
// the evaluator for one row.
func (c *Catalog) rowLookup(row Row) map[string]cellRef {
	lookup := make(map[string]cellRef, len(c.Columns))
	for _, col := range c.Columns {
		key := strings.ToLower(strings.TrimSpace(col.Name))
		if key == "" {
			continue
		}
		lookup[key] = cellRef{
			raw:    row.Cell(col.Index),
			isDate: IsDateColumn(col.Name),
		}
	}
	return lookup
}
