// Package wb is the client for the Wildberries marketplace API: assembly
// orders, supplies and stocks of one seller cabinet.
package wb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/lukman83/wbops/internal/apperr"
	"github.com/lukman83/wbops/internal/httputil"
	"github.com/lukman83/wbops/internal/transport"
)

const (
	DefaultBaseURL = "https://marketplace-api.wildberries.ru"

	// DefaultExpirationDelay is the minimum gap between expiration calls.
	DefaultExpirationDelay = 70 * time.Millisecond

	attachChunkSize = 100
	stockChunkSize  = 1000
)

// Options configures a Client. Token is the raw value the API expects in the
// Authorization header; it is never logged.
type Options struct {
	BaseURL         string
	Token           string
	HTTPClient      *http.Client
	PageLimit       int
	MaxPages        int
	ExpirationDelay time.Duration
}

// Client talks to the marketplace API on behalf of one cabinet.
type Client struct {
	http      *resty.Client
	pageLimit int
	maxPages  int
	pacer     *transport.Pacer
}

// New creates a client. Zero options fall back to the production defaults; a
// negative ExpirationDelay turns expiration pacing off.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = httputil.NewHTTPClient(nil, 0)
	}
	if opts.PageLimit <= 0 {
		opts.PageLimit = 1000
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 10000
	}
	switch {
	case opts.ExpirationDelay == 0:
		opts.ExpirationDelay = DefaultExpirationDelay
	case opts.ExpirationDelay < 0:
		opts.ExpirationDelay = 0
	}

	rc := resty.NewWithClient(opts.HTTPClient).
		SetBaseURL(opts.BaseURL).
		SetHeaders(httputil.APIHeaders()).
		SetHeader("Authorization", opts.Token)

	return &Client{
		http:      rc,
		pageLimit: opts.PageLimit,
		maxPages:  opts.MaxPages,
		pacer:     transport.NewPacer(opts.ExpirationDelay),
	}
}

// send executes one request and maps transport failures. Status handling is
// left to the caller.
func (c *Client) send(ctx context.Context, op, method, url string, build func(*resty.Request)) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if build != nil {
		build(req)
	}
	resp, err := req.Execute(method, url)
	if err != nil {
		if isTimeout(err) {
			return nil, &apperr.TimeoutError{Op: op, Err: err}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func remoteError(op string, resp *resty.Response) error {
	return &apperr.RemoteRequestError{Op: op, StatusCode: resp.StatusCode(), Body: resp.String()}
}

func expectStatus(op string, resp *resty.Response, codes ...int) error {
	for _, code := range codes {
		if resp.StatusCode() == code {
			return nil
		}
	}
	return remoteError(op, resp)
}

func expectSuccess(op string, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	return remoteError(op, resp)
}

func decode(op string, resp *resty.Response, v any) error {
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return &apperr.MalformedResponseError{Op: op, Reason: "invalid json", Err: err}
	}
	return nil
}

// parseTime accepts the API's RFC 3339 timestamps; empty or invalid values
// yield the zero time.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func chunk[T any](items []T, size int) [][]T {
	var out [][]T
	for size < len(items) {
		items, out = items[size:], append(out, items[:size:size])
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
