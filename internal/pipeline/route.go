package pipeline

import (
	"slices"
	"strings"

	"github.com/lukman83/wbops/internal/table"
)

// MatchMode selects how a cell is compared with a route or filter value.
type MatchMode int

const (
	// MatchExact compares the rendered cell with the value as-is.
	MatchExact MatchMode = iota
	// MatchFold trims both sides and compares caselessly.
	MatchFold
)

func (m MatchMode) matches(cell any, value string) bool {
	if m == MatchFold {
		return FoldKey(strings.TrimSpace(table.Text(cell))) == FoldKey(strings.TrimSpace(value))
	}
	return table.Text(cell) == value
}

// Route sends rows whose column equals Value to Destination.
type Route struct {
	Value       string
	Destination string
}

// RouteOptions tune RouteByColumnValue.
type RouteOptions struct {
	Mode MatchMode
	// KeepEmpty also returns destinations that matched no rows.
	KeepEmpty bool
}

// Routed is the slice of rows bound for one destination.
type Routed struct {
	Route Route
	Table *table.Table
}

// RouteByColumnValue partitions t by column against the ordered routes.
// Results follow the route order. A row may match several routes; rows that
// match none are dropped.
func RouteByColumnValue(t *table.Table, column string, routes []Route, opts RouteOptions) ([]Routed, error) {
	if err := t.Require(column); err != nil {
		return nil, err
	}
	var out []Routed
	for _, rt := range routes {
		sub := Filter(t, func(r table.Row) bool { return opts.Mode.matches(r[column], rt.Value) })
		if sub.Len() == 0 && !opts.KeepEmpty {
			continue
		}
		out = append(out, Routed{Route: rt, Table: sub})
	}
	return out, nil
}

// Filter keeps the rows for which keep returns true.
func Filter(t *table.Table, keep func(table.Row) bool) *table.Table {
	var rows []table.Row
	for _, r := range t.Rows {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return t.WithRows(rows)
}

// FilterEquals keeps rows whose column matches value.
func FilterEquals(t *table.Table, column, value string, mode MatchMode) (*table.Table, error) {
	if err := t.Require(column); err != nil {
		return nil, err
	}
	return Filter(t, func(r table.Row) bool { return mode.matches(r[column], value) }), nil
}

// SortByKey stably sorts rows by the casefolded text of column.
func SortByKey(t *table.Table, column string) error {
	return SortByKeys(t, column)
}

// SortByKeys stably sorts rows by several casefolded columns, in order.
// Blank cells sort after every value of their column.
func SortByKeys(t *table.Table, columns ...string) error {
	if err := t.Require(columns...); err != nil {
		return err
	}
	keys := make(map[*table.Row][]string, t.Len())
	rows := make([]*table.Row, t.Len())
	for i := range t.Rows {
		r := &t.Rows[i]
		rows[i] = r
		k := make([]string, len(columns))
		for j, c := range columns {
			k[j] = FoldKey(strings.TrimSpace(table.Text((*r)[c])))
		}
		keys[r] = k
	}
	slices.SortStableFunc(rows, func(a, b *table.Row) int {
		return compareKeys(keys[a], keys[b])
	})
	sorted := make([]table.Row, len(rows))
	for i, r := range rows {
		sorted[i] = *r
	}
	t.Rows = sorted
	return nil
}

func compareKeys(a, b []string) int {
	for i := range a {
		switch {
		case a[i] == b[i]:
			continue
		case a[i] == "":
			return 1
		case b[i] == "":
			return -1
		case a[i] < b[i]:
			return -1
		default:
			return 1
		}
	}
	return 0
}
