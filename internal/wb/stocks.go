package wb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/lukman83/wbops/internal/models"
)

type stockDTO struct {
	Sku    string `json:"sku"`
	Amount int    `json:"amount"`
}

// UpdateStocks sets the same amount for every barcode on a warehouse, 1000
// barcodes per request. A 409 may name the rejected barcodes, in which case
// the rest of the chunk counts as updated.
func (c *Client) UpdateStocks(ctx context.Context, warehouseID string, skus []string, amount int) (models.StockReport, error) {
	const op = "update stocks"
	report := models.StockReport{WarehouseID: warehouseID, Amount: amount}
	if amount < 0 {
		return report, fmt.Errorf("%s: negative amount %d", op, amount)
	}

	for i, part := range chunk(skus, stockChunkSize) {
		stocks := make([]stockDTO, 0, len(part))
		for _, sku := range part {
			stocks = append(stocks, stockDTO{Sku: sku, Amount: amount})
		}
		resp, err := c.send(ctx, op, http.MethodPut, "/api/v3/stocks/{warehouseId}", func(r *resty.Request) {
			r.SetPathParam("warehouseId", warehouseID).
				SetBody(map[string][]stockDTO{"stocks": stocks})
		})
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			log.Error().Err(err).Int("chunk", i).Msg("stock chunk failed")
			report.Failed = append(report.Failed, part...)
			continue
		}

		switch resp.StatusCode() {
		case http.StatusNoContent:
			report.Updated = append(report.Updated, part...)
		case http.StatusConflict:
			bad := rejectedSkus(resp.Body())
			if len(bad) == 0 {
				report.Failed = append(report.Failed, part...)
				break
			}
			for _, sku := range part {
				if slices.Contains(bad, sku) {
					report.Failed = append(report.Failed, sku)
				} else {
					report.Updated = append(report.Updated, sku)
				}
			}
			log.Warn().Int("chunk", i).Strs("rejected", bad).Msg("stock chunk partially rejected")
		default:
			log.Error().Int("chunk", i).Int("status", resp.StatusCode()).Str("body", resp.String()).Msg("stock chunk failed")
			report.Failed = append(report.Failed, part...)
		}
	}
	return report, nil
}

// rejectedSkus extracts barcodes from a 409 body. Both {"data":[{"sku":..}]}
// and a list of such objects are accepted.
func rejectedSkus(body []byte) []string {
	type item struct {
		Data []struct {
			Sku string `json:"sku"`
		} `json:"data"`
	}
	var items []item
	var one item
	if err := json.Unmarshal(body, &one); err == nil {
		items = append(items, one)
	} else if err := json.Unmarshal(body, &items); err != nil {
		return nil
	}
	var skus []string
	for _, it := range items {
		for _, d := range it.Data {
			if d.Sku != "" {
				skus = append(skus, d.Sku)
			}
		}
	}
	return skus
}
