package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lukman83/wbops/config"
	"github.com/lukman83/wbops/internal/apperr"
	"github.com/lukman83/wbops/internal/models"
	"github.com/lukman83/wbops/internal/pipeline"
	"github.com/lukman83/wbops/internal/storage"
	"github.com/lukman83/wbops/internal/table"
)

// Columns of the stock update log.
var stockLogColumns = []string{
	"Дата и время", models.ColGroup, models.ColArticle, "Баркоды", "Склад", "ID склада", "Остаток",
}

// resolveWarehouse maps a warehouse name of the cabinet to its id. A bare
// numeric id is accepted as is.
func resolveWarehouse(c config.Cabinet, name string) (string, error) {
	if id, ok := c.Warehouse(name); ok {
		return id, nil
	}
	if _, ok := table.Int(name); ok {
		return strings.TrimSpace(name), nil
	}
	known := make([]string, 0, len(c.Warehouses))
	for _, w := range c.Warehouses {
		known = append(known, w.Name)
	}
	return "", fmt.Errorf("cabinet %s has no warehouse %q (known: %s)", c.ID, name, strings.Join(known, ", "))
}

// articleBarcodes returns the distinct barcodes of an article in the base.
func articleBarcodes(base *table.Table, article string) ([]string, error) {
	if err := base.Require(models.ColArticle, models.ColBaseBarcode); err != nil {
		return nil, err
	}
	article = strings.TrimSpace(article)
	seen := make(map[string]bool)
	var skus []string
	for _, row := range base.Rows {
		if strings.TrimSpace(table.Text(row[models.ColArticle])) != article {
			continue
		}
		sku := strings.TrimSpace(table.Text(row[models.ColBaseBarcode]))
		if sku == "" || seen[sku] {
			continue
		}
		seen[sku] = true
		skus = append(skus, sku)
	}
	return skus, nil
}

// UpdateStocks sets the stock of every barcode of an article in one of the
// cabinet's warehouses and appends the successful update to the stock log.
func (r *Runner) UpdateStocks(ctx context.Context, cab, article, warehouse string, amount int) (models.StockReport, error) {
	if amount < 0 {
		return models.StockReport{}, errors.New("stock amount cannot be negative")
	}
	if strings.TrimSpace(article) == "" {
		return models.StockReport{}, errors.New("article is required")
	}
	c, api, err := r.client(cab)
	if err != nil {
		return models.StockReport{}, err
	}
	warehouseID, err := resolveWarehouse(c, warehouse)
	if err != nil {
		return models.StockReport{}, err
	}

	base, err := table.Load(ctx, r.Store, r.Tables.Keys.ProductBase)
	if err != nil {
		return models.StockReport{}, err
	}
	skus, err := articleBarcodes(base, article)
	if err != nil {
		return models.StockReport{}, err
	}
	if len(skus) == 0 {
		return models.StockReport{}, &apperr.NoDataError{Source: fmt.Sprintf("article %q in %s", article, r.Store.Describe(r.Tables.Keys.ProductBase))}
	}
	log.Info().Str("article", article).Int("barcodes", len(skus)).Str("warehouse", warehouseID).Msg("updating stocks")

	report, err := api.UpdateStocks(ctx, warehouseID, skus, amount)
	if err != nil {
		return report, err
	}
	if len(report.Updated) > 0 {
		entry := table.New(stockLogColumns...)
		entry.Append(table.MoscowWallClock(r.now()), c.ID, strings.TrimSpace(article),
			strings.Join(report.Updated, ", "), warehouse, warehouseID, int64(amount))
		if err := r.appendLog(ctx, r.Tables.Keys.StocksLog, entry); err != nil {
			log.Warn().Err(err).Msg("stock log not written")
		}
	}
	return report, nil
}

// appendLog adds rows to the workbook at key, creating it when missing.
func (r *Runner) appendLog(ctx context.Context, key string, rows *table.Table) error {
	existing, err := table.Load(ctx, r.Store, key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	_, err = r.save(ctx, key, pipeline.Combine(existing, rows))
	return err
}
