package jobs

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/lukman83/wbops/config"
	"github.com/lukman83/wbops/internal/apperr"
	"github.com/lukman83/wbops/internal/models"
	"github.com/lukman83/wbops/internal/pipeline"
	"github.com/lukman83/wbops/internal/storage"
	"github.com/lukman83/wbops/internal/table"
)

// loadOptional loads key, returning nil when it does not exist.
func (r *Runner) loadOptional(ctx context.Context, key string) (*table.Table, error) {
	t, err := table.Load(ctx, r.Store, key)
	if errors.Is(err, storage.ErrNotFound) {
		log.Warn().Str("key", r.Store.Describe(key)).Msg("input missing")
		return nil, nil
	}
	return t, err
}

// MergeWithBase joins the cabinet's new orders and not-purchased supply
// orders with the product base by barcode and sorts the result by pickup
// point and article when those columns are present.
func (r *Runner) MergeWithBase(ctx context.Context, cab string) (Output, error) {
	c, err := r.Cabinets.Cabinet(cab)
	if err != nil {
		return Output{}, err
	}
	ordersKey := config.For(r.Tables.Keys.Orders, c.ID)
	tasks, err := r.loadOptional(ctx, ordersKey)
	if err != nil {
		return Output{}, err
	}
	notBought, err := r.loadOptional(ctx, config.For(r.Tables.Keys.SupplyOrders, c.ID))
	if err != nil {
		return Output{}, err
	}
	if tasks == nil && notBought == nil {
		return Output{}, &apperr.NoDataError{Source: r.Store.Describe(ordersKey)}
	}

	base, err := table.Load(ctx, r.Store, r.Tables.Keys.ProductBase)
	if err != nil {
		return Output{}, err
	}
	base.RenameColumn(models.ColBaseBarcode, models.ColBarcode)
	lk, err := pipeline.NewLookup(base, models.ColBarcode, models.ColName, models.ColPhoto)
	if err != nil {
		return Output{}, err
	}

	combined := pipeline.Combine(tasks, notBought)
	if err := combined.Require(models.ColBarcode); err != nil {
		return Output{}, err
	}
	merged, err := pipeline.EnrichWithLookup(combined, models.ColBarcode, lk)
	if err != nil {
		return Output{}, err
	}
	var sortBy []string
	for _, col := range []string{models.ColPickupPoint, models.ColArticle} {
		if merged.Has(col) {
			sortBy = append(sortBy, col)
		}
	}
	if err := pipeline.SortByKeys(merged, sortBy...); err != nil {
		return Output{}, err
	}
	return r.save(ctx, config.For(r.Tables.Keys.Merged, c.ID), merged)
}

// loadAll reads keys concurrently. Unreadable files are logged and left out;
// the rest keep the order of keys.
func (r *Runner) loadAll(ctx context.Context, keys []string) ([]*table.Table, error) {
	loaded := make([]*table.Table, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.loadConcurrency())
	for i, key := range keys {
		g.Go(func() error {
			t, err := table.Load(gctx, r.Store, key)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Warn().Err(err).Str("key", r.Store.Describe(key)).Msg("skipping file")
				return nil
			}
			loaded[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []*table.Table
	for _, t := range loaded {
		if t != nil {
			out = append(out, t)
		}
	}
	return out, nil
}

// SplitByPickupPoint combines every table under the merged prefix, sorts by
// article and writes one workbook per configured pickup point. Points without
// rows get no file.
func (r *Runner) SplitByPickupPoint(ctx context.Context) ([]Output, error) {
	prefix := r.Tables.Keys.MergedPrefix
	keys, err := r.workbooks(ctx, prefix, table.ReadableExts...)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, &apperr.NoDataError{Source: r.Store.Describe(prefix)}
	}
	frames, err := r.loadAll(ctx, keys)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, &apperr.NoDataError{Source: r.Store.Describe(prefix)}
	}

	combined := pipeline.Combine(frames...)
	if err := combined.Require(models.ColArticle, models.ColPickupPoint); err != nil {
		return nil, err
	}
	if err := pipeline.SortByKey(combined, models.ColArticle); err != nil {
		return nil, err
	}

	routes := make([]pipeline.Route, 0, len(r.Tables.PickupPoints))
	for _, p := range r.Tables.PickupPoints {
		routes = append(routes, pipeline.Route{Value: p.Value, Destination: path.Join(r.Tables.Keys.RoutedPrefix, p.File)})
	}
	return r.writeRoutes(ctx, combined, models.ColPickupPoint, routes, pipeline.RouteOptions{Mode: pipeline.MatchExact})
}

// SplitByGroup writes one workbook per group letter from the named split
// set's input, sorted by article. Whether empty groups get a file depends on
// the set.
func (r *Runner) SplitByGroup(ctx context.Context, name string) ([]Output, error) {
	set, ok := r.Tables.GroupSplit(name)
	if !ok {
		return nil, fmt.Errorf("group split %q not configured", name)
	}
	t, err := table.Load(ctx, r.Store, set.Input)
	if err != nil {
		return nil, err
	}
	if err := t.Require(models.ColGroup, models.ColArticle); err != nil {
		return nil, err
	}
	if err := pipeline.SortByKey(t, models.ColArticle); err != nil {
		return nil, err
	}

	routes := make([]pipeline.Route, 0, len(r.Tables.Groups))
	for _, g := range r.Tables.Groups {
		routes = append(routes, pipeline.Route{Value: g, Destination: path.Join(set.OutputPrefix, g+".xlsx")})
	}
	return r.writeRoutes(ctx, t, models.ColGroup, routes, pipeline.RouteOptions{Mode: pipeline.MatchFold, KeepEmpty: set.KeepEmpty})
}

func (r *Runner) writeRoutes(ctx context.Context, t *table.Table, column string, routes []pipeline.Route, opts pipeline.RouteOptions) ([]Output, error) {
	routed, err := pipeline.RouteByColumnValue(t, column, routes, opts)
	if err != nil {
		return nil, err
	}
	var out []Output
	for _, rt := range routed {
		o, err := r.save(ctx, rt.Route.Destination, rt.Table)
		if err != nil {
			return out, err
		}
		out = append(out, o)
	}
	if len(out) == 0 {
		log.Info().Str("column", column).Int("rows", t.Len()).Msg("no rows matched any destination")
	}
	return out, nil
}
