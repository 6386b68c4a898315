package wb

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/lukman83/wbops/internal/apperr"
	"github.com/lukman83/wbops/internal/models"
)

type orderDTO struct {
	ID        int64           `json:"id"`
	CreatedAt string          `json:"createdAt"`
	Article   string          `json:"article"`
	Offices   []string        `json:"offices"`
	Price     decimal.Decimal `json:"price"`
	Skus      []string        `json:"skus"`
}

// ListNewOrders returns the orders awaiting assembly. Prices arrive in minor
// units and are converted to roubles.
func (c *Client) ListNewOrders(ctx context.Context) ([]models.Order, error) {
	const op = "list new orders"
	resp, err := c.send(ctx, op, http.MethodGet, "/api/v3/orders/new", nil)
	if err != nil {
		return nil, err
	}
	if err := expectSuccess(op, resp); err != nil {
		return nil, err
	}

	var body struct {
		Orders []orderDTO `json:"orders"`
	}
	if err := decode(op, resp, &body); err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(body.Orders))
	for _, o := range body.Orders {
		created := parseTime(o.CreatedAt)
		if created.IsZero() && o.CreatedAt != "" {
			log.Warn().Int64("order", o.ID).Str("created_at", o.CreatedAt).Msg("unparsable order timestamp")
		}
		orders = append(orders, models.Order{
			ID:        o.ID,
			CreatedAt: created,
			Article:   o.Article,
			Offices:   o.Offices,
			Price:     o.Price.Shift(-2),
			Skus:      o.Skus,
		})
	}
	return orders, nil
}

// SetOrderExpiration sets the shelf-life date of one order. A 409 is returned
// as a RemoteRequestError whose QuotaRejection reports true.
func (c *Client) SetOrderExpiration(ctx context.Context, orderID string, date time.Time) error {
	const op = "set order expiration"
	if orderID == "" {
		return fmt.Errorf("%s: empty order id", op)
	}
	resp, err := c.send(ctx, op, http.MethodPut, "/api/v3/orders/{orderId}/meta/expiration", func(r *resty.Request) {
		r.SetPathParam("orderId", orderID).
			SetBody(map[string]string{"expiration": date.Format("02.01.2006")})
	})
	if err != nil {
		return err
	}
	return expectStatus(op, resp, http.StatusNoContent)
}

// SetOrderExpirations sets dates one order at a time, keeping the configured
// gap between calls. Failures are counted and the loop continues; only
// context cancellation stops it early.
func (c *Client) SetOrderExpirations(ctx context.Context, items []models.Expiration) (models.ExpirationReport, error) {
	var report models.ExpirationReport
	for _, it := range items {
		if err := c.pacer.Wait(ctx); err != nil {
			return report, err
		}
		err := c.SetOrderExpiration(ctx, it.OrderID, it.Date)
		c.pacer.Done()

		switch {
		case err == nil:
			report.Set++
			log.Info().Str("order", it.OrderID).Str("date", it.Date.Format("02.01.2006")).Msg("expiration set")
		case apperr.IsQuotaRejection(err):
			report.Rejected++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", it.OrderID, err))
			log.Warn().Str("order", it.OrderID).Msg("expiration rejected with 409, counted as 10 requests against the limit")
		case ctx.Err() != nil:
			return report, ctx.Err()
		default:
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", it.OrderID, err))
			log.Error().Err(err).Str("order", it.OrderID).Msg("expiration failed")
		}
	}
	return report, nil
}
