package jobs

import (
	"context"
	"errors"
	"path"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lukman83/wbops/config"
	"github.com/lukman83/wbops/internal/apperr"
	"github.com/lukman83/wbops/internal/models"
	"github.com/lukman83/wbops/internal/pipeline"
	"github.com/lukman83/wbops/internal/storage"
	"github.com/lukman83/wbops/internal/table"
)

const purchasedYes = "да"

// ListActiveSupplies returns the cabinet's supplies that are not done,
// newest first.
func (r *Runner) ListActiveSupplies(ctx context.Context, cab string) ([]models.Supply, error) {
	_, api, err := r.client(cab)
	if err != nil {
		return nil, err
	}
	all, err := api.ListSupplies(ctx)
	if err != nil {
		return nil, err
	}
	var active []models.Supply
	for _, s := range all {
		if !s.Done {
			active = append(active, s)
		}
	}
	slices.SortStableFunc(active, func(a, b models.Supply) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return active, nil
}

// SuppliesTable renders supplies in export column order.
func SuppliesTable(supplies []models.Supply) *table.Table {
	t := table.New(models.SupplyColumns...)
	for _, s := range supplies {
		var created any
		if !s.CreatedAt.IsZero() {
			created = table.MoscowWallClock(s.CreatedAt)
		}
		t.Append(s.ID, s.Name, created, s.Done, int64(s.CargoType))
	}
	return t
}

// ExportActiveSupplies writes the active supplies, even when there are none.
func (r *Runner) ExportActiveSupplies(ctx context.Context, cab string) (Output, error) {
	c, err := r.Cabinets.Cabinet(cab)
	if err != nil {
		return Output{}, err
	}
	active, err := r.ListActiveSupplies(ctx, c.ID)
	if err != nil {
		return Output{}, err
	}
	return r.save(ctx, config.For(r.Tables.Keys.ActiveSupplies, c.ID), SuppliesTable(active))
}

// CreateSupply opens a supply. An empty name gets the not-purchased name
// with today's date.
func (r *Runner) CreateSupply(ctx context.Context, cab, name string) (string, error) {
	_, api, err := r.client(cab)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		name = r.supplyName(r.Tables.Supplies.NoBuy)
	}
	id, err := api.CreateSupply(ctx, name)
	if err != nil {
		return "", err
	}
	log.Info().Str("cabinet", cab).Str("supply", id).Str("name", name).Msg("supply created")
	return id, nil
}

func (r *Runner) supplyName(prefix string) string {
	return strings.TrimSpace(prefix) + " " + r.now().In(table.Moscow).Format("2006-01-02")
}

// DeleteSupply removes an empty supply.
func (r *Runner) DeleteSupply(ctx context.Context, cab, supplyID string) error {
	_, api, err := r.client(cab)
	if err != nil {
		return err
	}
	return api.DeleteSupply(ctx, supplyID)
}

// DeliverSupply hands a supply over to delivery.
func (r *Runner) DeliverSupply(ctx context.Context, cab, supplyID string) error {
	_, api, err := r.client(cab)
	if err != nil {
		return err
	}
	return api.DeliverSupply(ctx, supplyID)
}

// SupplyOrderIDs lists the orders attached to a supply.
func (r *Runner) SupplyOrderIDs(ctx context.Context, cab, supplyID string) ([]int64, error) {
	_, api, err := r.client(cab)
	if err != nil {
		return nil, err
	}
	return api.FetchOrderIDsForSupply(ctx, supplyID)
}

// CreateBoughtSupply opens a dated supply for the orders marked as purchased
// in the cabinet's bought list and attaches them in chunks.
func (r *Runner) CreateBoughtSupply(ctx context.Context, cab string) (models.AttachResult, error) {
	c, api, err := r.client(cab)
	if err != nil {
		return models.AttachResult{}, err
	}
	key := config.For(r.Tables.Keys.Bought, c.ID)
	t, err := table.Load(ctx, r.Store, key)
	if err != nil {
		return models.AttachResult{}, err
	}
	if err := t.Require(models.ColPurchased, models.ColOrderID); err != nil {
		return models.AttachResult{}, err
	}

	bought, err := pipeline.FilterEquals(t, models.ColPurchased, purchasedYes, pipeline.MatchFold)
	if err != nil {
		return models.AttachResult{}, err
	}
	var ids []int64
	for _, row := range bought.Rows {
		if id, ok := table.Int(row[models.ColOrderID]); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return models.AttachResult{}, &apperr.NoDataError{Source: r.Store.Describe(key)}
	}
	log.Info().Str("cabinet", c.ID).Int("orders", len(ids)).Msg("purchased orders found")

	name := r.supplyName(r.Tables.Supplies.Bought)
	supplyID, err := api.CreateSupply(ctx, name)
	if err != nil {
		return models.AttachResult{}, err
	}
	log.Info().Str("cabinet", c.ID).Str("supply", supplyID).Str("name", name).Msg("supply created")
	return api.AttachOrders(ctx, supplyID, ids)
}

// SaveSupplyBarcode stores the supply sticker under the barcodes prefix and
// returns its key.
func (r *Runner) SaveSupplyBarcode(ctx context.Context, cab, supplyID, kind string) (string, error) {
	supplyID = strings.TrimSpace(supplyID)
	if supplyID == "" {
		return "", errors.New("supply id is required")
	}
	c, api, err := r.client(cab)
	if err != nil {
		return "", err
	}
	data, err := api.SupplyBarcode(ctx, supplyID, kind)
	if err != nil {
		return "", err
	}
	key := path.Join(config.For(r.Tables.Keys.BarcodesPrefix, c.ID), "qr_"+supplyID+"."+kind)
	if err := r.Store.Put(ctx, key, data, storage.ContentTypeFor(key)); err != nil {
		return "", err
	}
	log.Info().Str("supply", supplyID).Str("key", r.Store.Describe(key)).Int("bytes", len(data)).Msg("sticker saved")
	return key, nil
}
