// Package storage abstracts the blob store holding the job workbooks: a local
// directory or an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotFound is returned by Get and Delete for unknown keys.
var ErrNotFound = errors.New("object not found")

// XLSXContentType is the content type of every workbook we write.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Store reads and writes objects by slash-separated key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// List returns every object key starting with prefix, in lexical order.
	// Directory placeholders are not returned.
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
	// Describe renders a key for log and CLI output.
	Describe(key string) string
}

// HasExt reports whether key ends with one of exts, ignoring case.
func HasExt(key string, exts ...string) bool {
	ext := strings.ToLower(path.Ext(key))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// IsLockFile reports whether key names an office lock file such as "~$book.xlsx".
func IsLockFile(key string) bool {
	return strings.HasPrefix(path.Base(key), "~$")
}

// ContentTypeFor picks a content type from the key extension.
func ContentTypeFor(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".xlsx":
		return XLSXContentType
	case ".csv":
		return "text/csv"
	case ".png":
		return "image/png"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
