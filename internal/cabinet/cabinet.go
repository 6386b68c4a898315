// Package cabinet binds configured seller cabinets to their marketplace
// clients.
package cabinet

import (
	"context"
	"time"

	"github.com/lukman83/wbops/internal/models"
)

// API is the marketplace surface the jobs use for one cabinet.
type API interface {
	ListNewOrders(ctx context.Context) ([]models.Order, error)
	ListSupplies(ctx context.Context) ([]models.Supply, error)
	CreateSupply(ctx context.Context, name string) (string, error)
	DeleteSupply(ctx context.Context, supplyID string) error
	AttachOrders(ctx context.Context, supplyID string, orderIDs []int64) (models.AttachResult, error)
	FetchOrderIDsForSupply(ctx context.Context, supplyID string) ([]int64, error)
	DeliverSupply(ctx context.Context, supplyID string) error
	SupplyBarcode(ctx context.Context, supplyID, kind string) ([]byte, error)
	SetOrderExpiration(ctx context.Context, orderID string, date time.Time) error
	SetOrderExpirations(ctx context.Context, items []models.Expiration) (models.ExpirationReport, error)
	UpdateStocks(ctx context.Context, warehouseID string, skus []string, amount int) (models.StockReport, error)
}
