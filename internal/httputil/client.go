package httputil

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
)

// NewHTTPClient creates an HTTP client with sensible defaults.
// An optional RoundTripper (e.g. transport.APITransport) can be injected.
// The timeout bounds every call; zero falls back to 60 seconds.
func NewHTTPClient(transport http.RoundTripper, timeout time.Duration) *http.Client {
	if transport == nil {
		transport = NewBaseTransport()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// NewBaseTransport is the pooled transport every client starts from.
func NewBaseTransport() *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}

// DecodeBody replaces a gzip or brotli encoded response body with a decoding
// reader and drops the encoding headers, so later readers see plain bytes.
func DecodeBody(resp *http.Response) error {
	var reader io.Reader
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("gzip reader: %w", err)
		}
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	default:
		return nil
	}
	resp.Body = &decodedBody{Reader: reader, raw: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return nil
}

type decodedBody struct {
	io.Reader
	raw io.Closer
}

func (d *decodedBody) Close() error { return d.raw.Close() }
