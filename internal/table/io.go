package table

import (
	"context"
	"path"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lukman83/wbops/internal/apperr"
	"github.com/lukman83/wbops/internal/storage"
)

// ReadableExts are the extensions Load understands.
var ReadableExts = []string{".xlsx", ".xls", ".csv"}

// Decode picks a codec from the file extension of name.
func Decode(name string, data []byte) (*Table, error) {
	var (
		t   *Table
		err error
	)
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx", ".xls", ".xlsm":
		// Legacy .xls files are tried as OOXML and fail to decode otherwise.
		t, err = DecodeXLSX(data)
	case ".csv":
		t, err = DecodeCSV(data)
	default:
		return nil, &apperr.FormatError{Path: name}
	}
	if err != nil {
		return nil, &apperr.FormatError{Path: name, Err: err}
	}
	return t, nil
}

// Encode renders the table for name. Only workbooks are written.
func Encode(name string, t *Table) ([]byte, error) {
	if strings.ToLower(path.Ext(name)) != ".xlsx" {
		return nil, &apperr.FormatError{Path: name}
	}
	return EncodeXLSX(t)
}

// Load fetches and decodes a table from the store.
func Load(ctx context.Context, st storage.Store, key string) (*Table, error) {
	if !storage.HasExt(key, ReadableExts...) {
		return nil, &apperr.FormatError{Path: key}
	}
	data, err := st.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	t, err := Decode(key, data)
	if err != nil {
		return nil, err
	}
	log.Info().Str("key", st.Describe(key)).Int("rows", t.Len()).Int("columns", len(t.Columns)).Msg("table loaded")
	return t, nil
}

// Save encodes a table as a workbook and writes it to the store.
func Save(ctx context.Context, st storage.Store, key string, t *Table) error {
	data, err := Encode(key, t)
	if err != nil {
		return err
	}
	if err := st.Put(ctx, key, data, storage.XLSXContentType); err != nil {
		return err
	}
	log.Info().Str("key", st.Describe(key)).Int("rows", t.Len()).Int("columns", len(t.Columns)).Msg("table saved")
	return nil
}
