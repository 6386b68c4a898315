package pipeline

import (
	"github.com/rs/zerolog/log"

	"github.com/lukman83/wbops/internal/table"
)

// Lookup maps a normalised key to values of a reference table.
type Lookup struct {
	columns []string
	entries map[string]table.Row
}

// NewLookup indexes ref by keyCol, keeping valueCols. When a key repeats,
// the last row wins. Rows with an empty key are ignored.
func NewLookup(ref *table.Table, keyCol string, valueCols ...string) (*Lookup, error) {
	if err := ref.Require(append([]string{keyCol}, valueCols...)...); err != nil {
		return nil, err
	}
	lk := &Lookup{columns: valueCols, entries: make(map[string]table.Row, ref.Len())}
	for _, r := range ref.Rows {
		key := NormalizeKey(r[keyCol])
		if key == "" {
			continue
		}
		vals := make(table.Row, len(valueCols))
		for _, c := range valueCols {
			vals[c] = r[c]
		}
		lk.entries[key] = vals
	}
	return lk, nil
}

// Len returns the number of distinct keys.
func (l *Lookup) Len() int { return len(l.entries) }

// Get returns the values stored for a raw key.
func (l *Lookup) Get(key any) (table.Row, bool) {
	r, ok := l.entries[NormalizeKey(key)]
	return r, ok
}

// EnrichWithLookup left-joins the lookup onto t by keyCol. Every input row
// appears once in the output in the same order; unmatched rows get empty
// values for the lookup columns.
func EnrichWithLookup(t *table.Table, keyCol string, lk *Lookup) (*table.Table, error) {
	if err := t.Require(keyCol); err != nil {
		return nil, err
	}
	out := Combine(t)
	for _, c := range lk.columns {
		out.AddColumn(c)
	}
	matched := 0
	for _, r := range out.Rows {
		vals, ok := lk.Get(r[keyCol])
		for _, c := range lk.columns {
			if ok {
				r[c] = vals[c]
			} else {
				delete(r, c)
			}
		}
		if ok {
			matched++
		}
	}
	log.Debug().Int("rows", out.Len()).Int("matched", matched).Str("key", keyCol).Msg("lookup joined")
	return out, nil
}
