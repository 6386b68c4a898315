// Package jobs runs the fulfilment workflows: exports from the marketplace,
// the merge and split chain over stored workbooks, and supply operations.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lukman83/wbops/config"
	"github.com/lukman83/wbops/internal/cabinet"
	"github.com/lukman83/wbops/internal/pipeline"
	"github.com/lukman83/wbops/internal/storage"
	"github.com/lukman83/wbops/internal/table"
)

// defaultLoadConcurrency bounds parallel input loads in a split.
const defaultLoadConcurrency = 4

// Runner executes jobs against one store and set of cabinets.
type Runner struct {
	Store    storage.Store
	Tables   *config.Tables
	Cabinets *cabinet.Registry

	// Now is the clock used for supply names, log rows and ageing.
	Now func() time.Time
	// LoadConcurrency bounds parallel workbook loads. Zero uses a default.
	LoadConcurrency int
}

// Output describes one written table.
type Output struct {
	Key  string `json:"key"`
	Rows int    `json:"rows"`
}

func NewRunner(st storage.Store, tables *config.Tables, cabinets *cabinet.Registry) *Runner {
	return &Runner{Store: st, Tables: tables, Cabinets: cabinets, Now: time.Now}
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Runner) loadConcurrency() int {
	if r.LoadConcurrency <= 0 {
		return defaultLoadConcurrency
	}
	return r.LoadConcurrency
}

func (r *Runner) prefixes() pipeline.PrefixTable {
	p := make(pipeline.PrefixTable, 0, len(r.Tables.StorePrefixes))
	for _, e := range r.Tables.StorePrefixes {
		p = append(p, pipeline.Prefix{Value: e.Prefix, Label: e.Store})
	}
	return p
}

func (r *Runner) client(cab string) (config.Cabinet, cabinet.API, error) {
	return r.Cabinets.Get(cab)
}

func (r *Runner) save(ctx context.Context, key string, t *table.Table) (Output, error) {
	if err := table.Save(ctx, r.Store, key, t); err != nil {
		return Output{}, fmt.Errorf("save %s: %w", r.Store.Describe(key), err)
	}
	return Output{Key: key, Rows: t.Len()}, nil
}

// workbooks lists the keys under prefix with one of exts, skipping editor
// lock files.
func (r *Runner) workbooks(ctx context.Context, prefix string, exts ...string) ([]string, error) {
	keys, err := r.Store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range keys {
		if storage.IsLockFile(k) || !storage.HasExt(k, exts...) {
			continue
		}
		out = append(out, k)
	}
	log.Debug().Str("prefix", prefix).Int("files", len(out)).Msg("workbooks listed")
	return out, nil
}
