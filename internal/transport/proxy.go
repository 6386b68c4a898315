package transport

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/lukman83/wbops/internal/httputil"
)

// ProxiedBase returns the base transport, routed through rawURL when set.
// Supported schemes are http, https and socks5.
func ProxiedBase(rawURL string) (http.RoundTripper, error) {
	base := httputil.NewBaseTransport()
	if rawURL == "" {
		return base, nil
	}
	proxyURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	switch proxyURL.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", proxyURL.Scheme)
	}
	base.Proxy = http.ProxyURL(proxyURL)
	return base, nil
}
