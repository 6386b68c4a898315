package wb

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/lukman83/wbops/internal/apperr"
	"github.com/lukman83/wbops/internal/models"
	"github.com/lukman83/wbops/internal/ui"
)

type supplyDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	Done      bool   `json:"done"`
	CargoType int    `json:"cargoType"`
}

// ListSupplies walks the supplies cursor from 0 until the API returns a zero
// cursor and returns every supply of the cabinet.
func (c *Client) ListSupplies(ctx context.Context) ([]models.Supply, error) {
	const op = "list supplies"
	var (
		supplies []models.Supply
		next     int64
	)
	for page := 0; ; page++ {
		if page >= c.maxPages {
			return nil, &apperr.MalformedResponseError{
				Op:     op,
				Reason: fmt.Sprintf("cursor did not reach 0 after %d pages", c.maxPages),
			}
		}
		ui.ReportProgress(ctx, fmt.Sprintf("Fetching supplies page %d...", page+1))

		resp, err := c.send(ctx, op, http.MethodGet, "/api/v3/supplies", func(r *resty.Request) {
			r.SetQueryParams(map[string]string{
				"limit": strconv.Itoa(c.pageLimit),
				"next":  strconv.FormatInt(next, 10),
			})
		})
		if err != nil {
			return nil, err
		}
		if err := expectSuccess(op, resp); err != nil {
			return nil, err
		}

		var body struct {
			Supplies []supplyDTO `json:"supplies"`
			Next     int64       `json:"next"`
		}
		if err := decode(op, resp, &body); err != nil {
			return nil, err
		}
		for _, s := range body.Supplies {
			supplies = append(supplies, models.Supply{
				ID:        s.ID,
				Name:      s.Name,
				CreatedAt: parseTime(s.CreatedAt),
				Done:      s.Done,
				CargoType: s.CargoType,
			})
		}
		if body.Next == 0 {
			break
		}
		next = body.Next
	}
	log.Debug().Int("supplies", len(supplies)).Msg("supplies listed")
	return supplies, nil
}

// CreateSupply creates an empty supply and returns its id.
func (c *Client) CreateSupply(ctx context.Context, name string) (string, error) {
	const op = "create supply"
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%s: empty name", op)
	}
	resp, err := c.send(ctx, op, http.MethodPost, "/api/v3/supplies", func(r *resty.Request) {
		r.SetBody(map[string]string{"name": name})
	})
	if err != nil {
		return "", err
	}
	if err := expectSuccess(op, resp); err != nil {
		return "", err
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := decode(op, resp, &body); err != nil {
		return "", err
	}
	if body.ID == "" {
		return "", &apperr.MalformedResponseError{Op: op, Reason: "response has no supply id"}
	}
	return body.ID, nil
}

// DeleteSupply deletes an empty supply. Only 204 counts as success.
func (c *Client) DeleteSupply(ctx context.Context, supplyID string) error {
	const op = "delete supply"
	if supplyID = strings.TrimSpace(supplyID); supplyID == "" {
		return fmt.Errorf("%s: empty supply id", op)
	}
	resp, err := c.send(ctx, op, http.MethodDelete, "/api/v3/supplies/{supplyId}", func(r *resty.Request) {
		r.SetPathParam("supplyId", supplyID)
	})
	if err != nil {
		return err
	}
	if err := expectStatus(op, resp, http.StatusNoContent); err != nil {
		return err
	}
	log.Info().Str("supply", supplyID).Msg("supply deleted")
	return nil
}

// AttachOrders adds orders to a supply in chunks of 100, one request per
// chunk, in order. A rejected chunk is recorded and the next one is still
// sent. The returned error is non-nil only when ctx ends the run.
func (c *Client) AttachOrders(ctx context.Context, supplyID string, orderIDs []int64) (models.AttachResult, error) {
	const op = "attach orders"
	result := models.AttachResult{SupplyID: supplyID, Requested: len(orderIDs)}
	if strings.TrimSpace(supplyID) == "" {
		return result, fmt.Errorf("%s: empty supply id", op)
	}

	chunks := chunk(orderIDs, attachChunkSize)
	for i, part := range chunks {
		ui.ReportProgress(ctx, fmt.Sprintf("Attaching chunk %d/%d...", i+1, len(chunks)))

		resp, err := c.send(ctx, op, http.MethodPatch, "/api/marketplace/v3/supplies/{supplyId}/orders", func(r *resty.Request) {
			r.SetPathParam("supplyId", supplyID).
				SetBody(map[string][]int64{"orders": part})
		})
		if err != nil && ctx.Err() != nil {
			return result, ctx.Err()
		}
		if err == nil {
			err = expectStatus(op, resp, http.StatusNoContent)
		}
		if err != nil {
			failure := models.ChunkFailure{Index: i, OrderIDs: part, Message: err.Error()}
			var rr *apperr.RemoteRequestError
			if errors.As(err, &rr) {
				failure.StatusCode = rr.StatusCode
			}
			result.Failures = append(result.Failures, failure)
			log.Warn().Err(err).Int("chunk", i).Int("size", len(part)).Msg("attach chunk failed")
			continue
		}
		result.Attached += len(part)
		log.Info().Int("chunk", i).Int("size", len(part)).Str("supply", supplyID).Msg("orders attached")
	}
	return result, nil
}

// FetchOrderIDsForSupply returns the order ids attached to a supply.
func (c *Client) FetchOrderIDsForSupply(ctx context.Context, supplyID string) ([]int64, error) {
	const op = "fetch supply order ids"
	resp, err := c.send(ctx, op, http.MethodGet, "/api/marketplace/v3/supplies/{supplyId}/order-ids", func(r *resty.Request) {
		r.SetPathParam("supplyId", supplyID)
	})
	if err != nil {
		return nil, err
	}
	if err := expectSuccess(op, resp); err != nil {
		return nil, err
	}
	var body struct {
		OrderIDs []int64 `json:"orderIds"`
	}
	if err := decode(op, resp, &body); err != nil {
		return nil, err
	}
	return body.OrderIDs, nil
}

// DeliverSupply hands a supply over to delivery.
func (c *Client) DeliverSupply(ctx context.Context, supplyID string) error {
	const op = "deliver supply"
	if supplyID = strings.TrimSpace(supplyID); supplyID == "" {
		return fmt.Errorf("%s: empty supply id", op)
	}
	resp, err := c.send(ctx, op, http.MethodPatch, "/api/v3/supplies/{supplyId}/deliver", func(r *resty.Request) {
		r.SetPathParam("supplyId", supplyID)
	})
	if err != nil {
		return err
	}
	return expectSuccess(op, resp)
}

// BarcodeTypes are the sticker formats the API can render.
var BarcodeTypes = []string{"png", "svg", "zplv", "zplh"}

// SupplyBarcode returns the decoded supply sticker in the requested format.
func (c *Client) SupplyBarcode(ctx context.Context, supplyID, kind string) ([]byte, error) {
	const op = "supply barcode"
	valid := false
	for _, t := range BarcodeTypes {
		valid = valid || t == kind
	}
	if !valid {
		return nil, fmt.Errorf("%s: unknown sticker type %q", op, kind)
	}
	resp, err := c.send(ctx, op, http.MethodGet, "/api/v3/supplies/{supplyId}/barcode", func(r *resty.Request) {
		r.SetPathParam("supplyId", strings.TrimSpace(supplyID)).
			SetQueryParam("type", kind)
	})
	if err != nil {
		return nil, err
	}
	if err := expectSuccess(op, resp); err != nil {
		return nil, err
	}
	var body struct {
		File string `json:"file"`
	}
	if err := decode(op, resp, &body); err != nil {
		return nil, err
	}
	if body.File == "" {
		return nil, &apperr.MalformedResponseError{Op: op, Reason: "response has no file"}
	}
	data, err := base64.StdEncoding.DecodeString(body.File)
	if err != nil {
		return nil, &apperr.MalformedResponseError{Op: op, Reason: "file is not base64", Err: err}
	}
	return data, nil
}
