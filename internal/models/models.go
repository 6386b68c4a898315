package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a marketplace assembly order as it appears in exported tables.
type Order struct {
	ID        int64           `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Article   string          `json:"article"`
	Offices   []string        `json:"offices,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Skus      []string        `json:"skus,omitempty"`
	Store     string          `json:"store,omitempty"`
	Group     string          `json:"group"`
	Seller    string          `json:"seller"`
}

// PickupPoint joins the order's offices the way the export tables store them.
func (o Order) PickupPoint() string { return strings.Join(o.Offices, ", ") }

// Barcodes joins the order's SKUs.
func (o Order) Barcodes() string { return strings.Join(o.Skus, ", ") }

// Supply is a shipment container for orders.
type Supply struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Done      bool      `json:"done"`
	CargoType int       `json:"cargo_type"`
}

// NotPurchasedMarker is the naming convention for supplies holding orders
// that could not be bought.
const NotPurchasedMarker = "НЕ КУПИЛИ"

// NotPurchased reports whether the supply follows the not-purchased naming
// convention, ignoring case.
func (s Supply) NotPurchased() bool {
	return strings.Contains(strings.ToUpper(s.Name), NotPurchasedMarker)
}

// ChunkFailure describes one rejected attach chunk.
type ChunkFailure struct {
	Index      int     `json:"index"`
	OrderIDs   []int64 `json:"order_ids"`
	StatusCode int     `json:"status_code,omitempty"`
	Message    string  `json:"message"`
}

// AttachResult tallies an attach run across chunks.
type AttachResult struct {
	SupplyID  string         `json:"supply_id"`
	Requested int            `json:"requested"`
	Attached  int            `json:"attached"`
	Failures  []ChunkFailure `json:"failures,omitempty"`
}

// Missing returns the order ids of every failed chunk, in submission order.
func (r AttachResult) Missing() []int64 {
	var ids []int64
	for _, f := range r.Failures {
		ids = append(ids, f.OrderIDs...)
	}
	return ids
}

// Expiration is a shelf-life date to set on an order.
type Expiration struct {
	OrderID string
	Date    time.Time
}

// ExpirationReport summarises a batch of expiration updates.
type ExpirationReport struct {
	Set      int      `json:"set"`
	Rejected int      `json:"rejected"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Add merges another report into r.
func (r *ExpirationReport) Add(o ExpirationReport) {
	r.Set += o.Set
	r.Rejected += o.Rejected
	r.Failed += o.Failed
	r.Errors = append(r.Errors, o.Errors...)
}

// StockReport lists which barcodes were updated on a warehouse.
type StockReport struct {
	WarehouseID string   `json:"warehouse_id"`
	Amount      int      `json:"amount"`
	Updated     []string `json:"updated"`
	Failed      []string `json:"failed,omitempty"`
}
