// Package render turns query results into JSON envelopes, HTML table documents
// and PNG charts.
package render

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
)

// DefaultUnknownLabel is shown for absent classifications unless configured otherwise.
const DefaultUnknownLabel = "Unknown"

// Record is a typed result row that can describe itself as columns and values.
type Record interface {
	Columns() []string
	Values() []any
}

// Table is an ordered result set. Each row holds one value per column.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of name, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// FromRecords builds a table from typed records. columns is used for the header
// when records is empty.
func FromRecords[T Record](records []T, columns ...string) Table {
	t := Table{Rows: make([][]any, 0, len(records))}
	if len(records) > 0 {
		t.Columns = records[0].Columns()
	} else if len(columns) > 0 {
		t.Columns = columns
	} else {
		var zero T
		t.Columns = zero.Columns()
	}
	for _, r := range records {
		t.Rows = append(t.Rows, r.Values())
	}
	return t
}

// FromMaps builds a table from column-keyed rows in the given column order.
func FromMaps(columns []string, rows []map[string]any) Table {
	t := Table{Columns: columns, Rows: make([][]any, 0, len(rows))}
	for _, m := range rows {
		values := make([]any, len(columns))
		for i, c := range columns {
			values[i] = m[c]
		}
		t.Rows = append(t.Rows, values)
	}
	return t
}

// Formatter applies the output policy shared by every renderer: absent
// classifications become the unknown label and sales measures are rounded to
// two decimals.
type Formatter struct {
	unknownLabel string
	measures     map[string]bool
}

// NewFormatter returns a Formatter. extraMeasures names columns rounded in
// addition to total_sales, sales and num_sales.
func NewFormatter(unknownLabel string, extraMeasures ...string) *Formatter {
	if strings.TrimSpace(unknownLabel) == "" {
		unknownLabel = DefaultUnknownLabel
	}
	f := &Formatter{
		unknownLabel: unknownLabel,
		measures:     map[string]bool{"total_sales": true, "sales": true, "num_sales": true},
	}
	for _, m := range extraMeasures {
		f.measures[m] = true
	}
	return f
}

// UnknownLabel returns the label used for absent classifications.
func (f *Formatter) UnknownLabel() string { return f.unknownLabel }

// IsMeasure reports whether column is rounded.
func (f *Formatter) IsMeasure(column string) bool { return f.measures[column] }

// Value returns the output form of v in column.
func (f *Formatter) Value(column string, v any) any {
	switch x := v.(type) {
	case sql.NullString:
		if !x.Valid {
			return f.unknownLabel
		}
		return x.String
	case sql.NullInt64:
		if !x.Valid {
			return f.unknownLabel
		}
		return x.Int64
	case sql.NullFloat64:
		if !x.Valid {
			return f.unknownLabel
		}
		return f.Value(column, x.Float64)
	case float64:
		if f.IsMeasure(column) {
			return Round2(x)
		}
		return x
	case float32:
		return f.Value(column, float64(x))
	case []byte:
		return string(x)
	default:
		return v
	}
}

// Label returns v as display text.
func (f *Formatter) Label(column string, v any) string {
	out := f.Value(column, v)
	if out == nil {
		return ""
	}
	return fmt.Sprint(out)
}

// Number returns v as a float, or false when v is absent or not numeric.
func (f *Formatter) Number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case sql.NullFloat64:
		return x.Float64, x.Valid
	case sql.NullInt64:
		return float64(x.Int64), x.Valid
	default:
		return 0, false
	}
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
