// Package dataset provides tabular preprocessing operations for CSV data
// and a Processor that runs each of them behind an access guard.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ErrUnknownColumn is returned when an operation names a column the table
// does not have.
var ErrUnknownColumn = errors.New("unknown column")

// missingMarkers are cell values treated as missing, compared
// case-insensitively after trimming.
var missingMarkers = []string{"", "na", "nan", "null", "none", "n/a"}

// Table is a rectangular grid of string cells with a header row. Cells that
// hold numbers are parsed on demand.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ReadCSV parses a CSV document whose first record is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: no header row")
	}
	return &Table{Columns: records[0], Rows: records[1:]}, nil
}

// WriteCSV writes the header and rows as CSV.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{
		Columns: slices.Clone(t.Columns),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		c.Rows[i] = slices.Clone(row)
	}
	return c
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	return slices.Index(t.Columns, name)
}

// Column returns the cells of column name.
func (t *Table) Column(name string) ([]string, error) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = cell(row, idx)
	}
	return out, nil
}

// IsNumeric reports whether every non-missing cell of column idx parses as
// a number and at least one cell is present.
func (t *Table) IsNumeric(idx int) bool {
	seen := false
	for _, row := range t.Rows {
		v := cell(row, idx)
		if IsMissing(v) {
			continue
		}
		if _, err := parseFloat(v); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

// NumericColumns returns the names of numeric columns in header order.
func (t *Table) NumericColumns() []string {
	var out []string
	for i, name := range t.Columns {
		if t.IsNumeric(i) {
			out = append(out, name)
		}
	}
	return out
}

// CategoricalColumns returns the names of non-numeric columns in header order.
func (t *Table) CategoricalColumns() []string {
	var out []string
	for i, name := range t.Columns {
		if !t.IsNumeric(i) {
			out = append(out, name)
		}
	}
	return out
}

// resolveColumns maps names to indexes. A nil or empty names slice selects
// the columns returned by fallback.
func (t *Table) resolveColumns(names []string, fallback func() []string) ([]int, []string, error) {
	if len(names) == 0 {
		names = fallback()
	}
	idx := make([]int, len(names))
	for i, name := range names {
		idx[i] = t.Index(name)
		if idx[i] < 0 {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
		}
	}
	return idx, names, nil
}

// IsMissing reports whether v is an empty or NA-style cell.
func IsMissing(v string) bool {
	return slices.Contains(missingMarkers, strings.ToLower(strings.TrimSpace(v)))
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func setCell(row []string, idx int, v string) []string {
	for len(row) <= idx {
		row = append(row, "")
	}
	row[idx] = v
	return row
}

func parseFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("NaN is not a value")
	}
	return f, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// numbers returns the parsed non-missing values of column idx.
func (t *Table) numbers(idx int) []float64 {
	var out []float64
	for _, row := range t.Rows {
		v := cell(row, idx)
		if IsMissing(v) {
			continue
		}
		if f, err := parseFloat(v); err == nil {
			out = append(out, f)
		}
	}
	return out
}
