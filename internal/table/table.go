// Package table holds the in-memory tabular data the jobs pass around and
// the codecs that move it to and from workbooks and CSV files.
package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lukman83/wbops/internal/apperr"
)

// Row maps column name to cell value. Values are nil, string, int64,
// float64, bool, time.Time or decimal.Decimal.
type Row map[string]any

// Table is an ordered set of named columns and rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Append adds a row from positional values matching Columns.
func (t *Table) Append(values ...any) {
	row := make(Row, len(t.Columns))
	for i, col := range t.Columns {
		if i < len(values) {
			row[col] = values[i]
		}
	}
	t.Rows = append(t.Rows, row)
}

// Has reports whether the table has the column.
func (t *Table) Has(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// AddColumn appends a column if it is not there yet.
func (t *Table) AddColumn(column string) {
	if !t.Has(column) {
		t.Columns = append(t.Columns, column)
	}
}

// RenameColumn renames a column in the header and every row.
func (t *Table) RenameColumn(from, to string) {
	for i, c := range t.Columns {
		if c == from {
			t.Columns[i] = to
		}
	}
	for _, r := range t.Rows {
		if v, ok := r[from]; ok {
			delete(r, from)
			r[to] = v
		}
	}
}

// Require returns a SchemaError naming every absent column.
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &apperr.SchemaError{Missing: missing, Present: append([]string(nil), t.Columns...)}
}

// ResolveColumn returns the first alias present in the table. Header names
// are compared after trimming spaces.
func (t *Table) ResolveColumn(aliases ...string) (string, error) {
	for _, a := range aliases {
		for _, c := range t.Columns {
			if strings.TrimSpace(c) == strings.TrimSpace(a) {
				return c, nil
			}
		}
	}
	return "", &apperr.SchemaError{Missing: aliases, Present: append([]string(nil), t.Columns...)}
}

// WithRows returns a table with the same columns and the given rows.
func (t *Table) WithRows(rows []Row) *Table {
	return &Table{Columns: append([]string(nil), t.Columns...), Rows: rows}
}

// Text renders a cell value as a string for comparisons and CSV output.
// Integral floats drop their fraction so ids read from numeric cells match.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case decimal.Decimal:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Int parses a cell as an integer id. Values like "123.0" or 123.0 are
// accepted; anything else reports false.
func Int(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		if x != float64(int64(x)) {
			return 0, false
		}
		return int64(x), true
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f != float64(int64(f)) {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}
