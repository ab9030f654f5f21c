// Package sheet parses tabular booking-export files into the column
// catalog the derivation engine consumes.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hostfolio/bookpipe/internal/engine"
)

// ErrEmptyFile indicates the file had no header row.
var ErrEmptyFile = errors.New("file contains no header row")

// ErrNoColumns indicates the header row had no usable column names.
var ErrNoColumns = errors.New("header row contains no column names")

// ReadCatalog parses CSV content into a catalog. The first row is the
// header; every following row becomes a data row. Platform exports are
// messy, so parsing is lenient: quoting errors are tolerated, ragged
// rows are padded or truncated to the header width, and fully blank
// rows are skipped.
func ReadCatalog(r io.Reader) (*engine.Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("reading header row: %w", err)
	}

	columns := make([]engine.ColumnDef, 0, len(header))
	for i, name := range header {
		columns = append(columns, engine.ColumnDef{Index: i, Name: strings.TrimSpace(name)})
	}
	if !hasNamedColumn(columns) {
		return nil, ErrNoColumns
	}

	catalog := &engine.Catalog{Columns: columns}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(catalog.Rows)+2, err)
		}
		if isBlankRow(record) {
			continue
		}
		catalog.Rows = append(catalog.Rows, normalizeRow(record, len(columns)))
	}
	return catalog, nil
}

func hasNamedColumn(columns []engine.ColumnDef) bool {
	for _, c := range columns {
		if c.Name != "" {
			return true
		}
	}
	return false
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// normalizeRow pads or truncates a record to the header width.
func normalizeRow(record []string, width int) engine.Row {
	row := make(engine.Row, width)
	for i := 0; i < width; i++ {
		if i < len(record) {
			row[i] = record[i]
		}
	}
	return row
}
