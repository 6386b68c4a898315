package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lukman83/wbops/config"
	"github.com/lukman83/wbops/internal/models"
	"github.com/lukman83/wbops/internal/pipeline"
	"github.com/lukman83/wbops/internal/table"
)

// Order status values written by pickers into hand-kept workbooks.
const (
	notCollected = "нет"
	sentToSupply = "отправлен"
)

// OrdersTable renders orders in export column order.
func OrdersTable(orders []models.Order) *table.Table {
	t := table.New(models.OrderColumns...)
	for _, o := range orders {
		var created any
		if !o.CreatedAt.IsZero() {
			created = table.MoscowWallClock(o.CreatedAt)
		}
		t.Append(created, o.Article, o.PickupPoint(), o.Price, o.Barcodes(), o.Store, o.ID, o.Seller, o.Group)
	}
	return t
}

// ExportNewOrders writes the cabinet's new assembly tasks. Nothing is
// written when there are none; the returned Output is then empty.
func (r *Runner) ExportNewOrders(ctx context.Context, cab string) (Output, error) {
	c, api, err := r.client(cab)
	if err != nil {
		return Output{}, err
	}
	orders, err := api.ListNewOrders(ctx)
	if err != nil {
		return Output{}, err
	}
	if len(orders) == 0 {
		log.Info().Str("cabinet", c.ID).Msg("no new orders")
		return Output{}, nil
	}
	prefixes := r.prefixes()
	for i := range orders {
		orders[i].Store = prefixes.Label(orders[i].Article)
		orders[i].Seller = c.Seller
		orders[i].Group = c.ID
	}
	return r.save(ctx, config.For(r.Tables.Keys.Orders, c.ID), OrdersTable(orders))
}

// ExportSupplyOrders writes the order ids of the given supplies. With no ids
// it uses the cabinet's open not-purchased supplies. The file is written even
// when it has no rows.
func (r *Runner) ExportSupplyOrders(ctx context.Context, cab string, supplyIDs []string) (Output, error) {
	c, api, err := r.client(cab)
	if err != nil {
		return Output{}, err
	}
	if len(supplyIDs) == 0 {
		active, err := r.ListActiveSupplies(ctx, c.ID)
		if err != nil {
			return Output{}, err
		}
		for _, s := range active {
			if s.NotPurchased() {
				supplyIDs = append(supplyIDs, s.ID)
			}
		}
		log.Info().Str("cabinet", c.ID).Strs("supplies", supplyIDs).Msg("using not-purchased supplies")
	}

	t := table.New(models.SupplyOrderColumns...)
	for _, id := range supplyIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		orderIDs, err := api.FetchOrderIDsForSupply(ctx, id)
		if err != nil {
			return Output{}, err
		}
		log.Info().Str("supply", id).Int("orders", len(orderIDs)).Msg("supply orders fetched")
		for _, oid := range orderIDs {
			t.Append(id, oid, c.Seller, c.ID)
		}
	}
	return r.save(ctx, config.For(r.Tables.Keys.SupplyOrders, c.ID), t)
}

var expirationLayouts = []string{"02.01.2006", "2006-01-02", "2006-01-02 15:04:05"}

func parseExpiration(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range expirationLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", table.Text(v))
}

// SetExpirations sends the expiration dates listed in every workbook under
// prefix. Workbooks that cannot be read or lack the needed columns are
// skipped. Calls are paced by the client.
func (r *Runner) SetExpirations(ctx context.Context, cab, prefix string) (models.ExpirationReport, error) {
	var total models.ExpirationReport
	c, api, err := r.client(cab)
	if err != nil {
		return total, err
	}
	if prefix == "" {
		prefix = config.For(r.Tables.Keys.ExpirationsPrefix, c.ID)
	}
	keys, err := r.workbooks(ctx, prefix, ".xlsx")
	if err != nil {
		return total, err
	}
	for _, key := range keys {
		t, err := table.Load(ctx, r.Store, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("skipping workbook")
			continue
		}
		idCol, err := t.ResolveColumn(models.OrderIDAliases...)
		if err == nil {
			err = t.Require(models.ColExpiration)
		}
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("skipping workbook")
			continue
		}

		var items []models.Expiration
		var bad models.ExpirationReport
		for _, row := range t.Rows {
			id := strings.TrimSpace(table.Text(row[idCol]))
			if id == "" || row[models.ColExpiration] == nil {
				continue
			}
			if n, ok := table.Int(id); ok {
				id = fmt.Sprint(n)
			}
			date, err := parseExpiration(row[models.ColExpiration])
			if err != nil {
				bad.Failed++
				bad.Errors = append(bad.Errors, fmt.Sprintf("%s: %v", id, err))
				continue
			}
			items = append(items, models.Expiration{OrderID: id, Date: date})
		}
		report, err := api.SetOrderExpirations(ctx, items)
		report.Add(bad)
		total.Add(report)
		log.Info().Str("key", key).Int("set", report.Set).Int("rejected", report.Rejected).Int("failed", report.Failed).Msg("expirations processed")
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ReturnUncollected attaches the orders marked as not collected in the
// cabinet's picking lists to a supply, marks the attached rows as sent and
// saves each list back.
func (r *Runner) ReturnUncollected(ctx context.Context, cab, prefix, supplyID string) (models.AttachResult, error) {
	total := models.AttachResult{SupplyID: strings.TrimSpace(supplyID)}
	if total.SupplyID == "" {
		return total, errors.New("supply id is required")
	}
	c, api, err := r.client(cab)
	if err != nil {
		return total, err
	}
	if prefix == "" {
		prefix = config.For(r.Tables.Keys.PickListPrefix, c.ID)
	}
	keys, err := r.workbooks(ctx, prefix, ".xlsx")
	if err != nil {
		return total, err
	}
	for _, key := range keys {
		t, err := table.Load(ctx, r.Store, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("skipping workbook")
			continue
		}
		idCol, err := t.ResolveColumn(models.OrderIDAliases...)
		if err == nil {
			err = t.Require(models.ColCollected)
		}
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("skipping workbook")
			continue
		}

		rows := make(map[int64][]table.Row)
		var ids []int64
		for _, row := range t.Rows {
			if pipeline.NormalizeKey(row[models.ColCollected]) != notCollected {
				continue
			}
			id, ok := table.Int(row[idCol])
			if !ok {
				continue
			}
			if _, seen := rows[id]; !seen {
				ids = append(ids, id)
			}
			rows[id] = append(rows[id], row)
		}
		if len(ids) == 0 {
			continue
		}

		res, err := api.AttachOrders(ctx, total.SupplyID, ids)
		total.Requested += res.Requested
		total.Attached += res.Attached
		total.Failures = append(total.Failures, res.Failures...)
		if err != nil {
			return total, err
		}
		failed := make(map[int64]bool)
		for _, id := range res.Missing() {
			failed[id] = true
		}
		for _, id := range ids {
			if failed[id] {
				continue
			}
			for _, row := range rows[id] {
				row[models.ColCollected] = sentToSupply
			}
		}
		if _, err := r.save(ctx, key, t); err != nil {
			return total, err
		}
	}
	return total, nil
}
