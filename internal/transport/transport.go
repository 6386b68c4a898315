// Package transport provides the RoundTripper used for marketplace API calls
// and the fixed-gap pacer used for quota-sensitive loops.
package transport

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/lukman83/wbops/internal/httputil"
)

// APITransport is an http.RoundTripper that applies the request pipeline:
// Headers → RateLimiter → Send → Decode
type APITransport struct {
	Base        http.RoundTripper
	UserAgent   string
	RateLimiter *rate.Limiter
}

func (t *APITransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())

	// 1. Identify ourselves and negotiate compression
	if t.UserAgent != "" {
		req.Header.Set("User-Agent", t.UserAgent)
	}
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "gzip, br")
	}

	// 2. Wait for rate limiter token
	if t.RateLimiter != nil {
		if err := t.RateLimiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	// 3. Send
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	start := time.Now()
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api call")

	// 4. Decode compressed bodies
	if err := httputil.DecodeBody(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// NewLimiter builds the transport limiter; a non-positive rate disables it.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
