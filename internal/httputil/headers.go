package httputil

import "net/http"

// APIHeaders returns the headers sent with every marketplace API call.
func APIHeaders() map[string]string {
	return map[string]string{
		"Accept":          "application/json",
		"Accept-Language": "ru-RU,ru;q=0.9,en;q=0.8",
		"Content-Type":    "application/json",
	}
}

// RedactHeaders returns a copy of h that is safe to log.
func RedactHeaders(h http.Header) http.Header {
	out := h.Clone()
	for _, k := range []string{"Authorization", "Cookie", "X-Api-Key"} {
		if out.Get(k) != "" {
			out.Set(k, "[redacted]")
		}
	}
	return out
}
