// Package pipeline implements the row-level transformations shared by the
// jobs: concatenation, lookup joins, filtering, sorting and routing.
package pipeline

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/lukman83/wbops/internal/table"
)

// Combine concatenates tables row-wise. The result has the union of the
// columns in first-seen order; rows keep their input order. Nil tables are
// skipped.
func Combine(tables ...*table.Table) *table.Table {
	out := table.New()
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			out.AddColumn(c)
		}
		for _, r := range t.Rows {
			row := make(table.Row, len(r))
			for k, v := range r {
				row[k] = v
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// FoldKey is the caseless sort and match key of a cell.
func FoldKey(v any) string {
	return cases.Fold().String(table.Text(v))
}

// NormalizeKey is the join key of a barcode: trimmed and lowercased.
func NormalizeKey(v any) string {
	return strings.ToLower(strings.TrimSpace(table.Text(v)))
}
