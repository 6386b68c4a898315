// Package apperr defines the error kinds surfaced by wbops jobs.
//
// Callers inspect them with errors.As. Anything that is not one of these kinds
// is an unexpected failure and is reported as-is.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ConfigurationError reports a missing or invalid setting. Key is the
// environment variable (or tables file key) the operator has to fix.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("configuration: %s is not set", e.Key)
	}
	return fmt.Sprintf("configuration: %s: %s", e.Key, e.Reason)
}

// FormatError means a file has an unsupported extension or cannot be decoded.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("unsupported file format: %s", e.Path)
	}
	return fmt.Sprintf("cannot decode %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// SchemaError lists required columns that are absent from a table.
type SchemaError struct {
	Missing []string
	Present []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing columns [%s], table has [%s]",
		strings.Join(e.Missing, ", "), strings.Join(e.Present, ", "))
}

// NoDataError means a multi-source job found nothing it could use.
type NoDataError struct {
	Source string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data in %s", e.Source)
}

// RemoteRequestError is a non-success HTTP status from the marketplace API.
type RemoteRequestError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *RemoteRequestError) Error() string {
	msg := fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	return msg
}

// Hint returns operator guidance for the well-known failure statuses.
func (e *RemoteRequestError) Hint() string {
	switch e.StatusCode {
	case http.StatusConflict:
		return "the supply still has orders attached or the request conflicts with its state"
	case http.StatusNotFound:
		return "check the id and that the token belongs to the right cabinet"
	case http.StatusUnauthorized:
		return "the token is invalid or expired"
	case http.StatusTooManyRequests:
		return "rate limit reached, wait and retry"
	}
	return ""
}

// QuotaRejection reports whether the API rejected the call with 409 and
// counted it against the rate limit at a higher weight.
func (e *RemoteRequestError) QuotaRejection() bool {
	return e.StatusCode == http.StatusConflict
}

// MalformedResponseError is a success status with a body we cannot use.
type MalformedResponseError struct {
	Op     string
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed response: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: malformed response: %s", e.Op, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// TimeoutError means the call did not complete within the configured bound.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out: %v", e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Hint returns the operator hint carried by err, if any.
func Hint(err error) string {
	var rr *RemoteRequestError
	if errors.As(err, &rr) {
		return rr.Hint()
	}
	return ""
}

// IsQuotaRejection reports whether err is a 409 rejection from the API.
func IsQuotaRejection(err error) bool {
	var rr *RemoteRequestError
	return errors.As(err, &rr) && rr.QuotaRejection()
}
