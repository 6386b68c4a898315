package jobs

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lukman83/wbops/internal/apperr"
	"github.com/lukman83/wbops/internal/storage"
	"github.com/lukman83/wbops/internal/table"
)

func (r *Runner) aging() table.Aging {
	h := r.Tables.Highlight
	return table.Aging{
		Column:     h.Column,
		Warn:       time.Duration(h.WarnHours * float64(time.Hour)),
		Alert:      time.Duration(h.AlertHours * float64(time.Hour)),
		WarnColor:  h.WarnColor,
		AlertColor: h.AlertColor,
	}
}

// Highlight colours rows of the given workbooks by order age. Without keys it
// uses the configured list, or every workbook under the routed prefix.
// Missing or unreadable workbooks and those lacking the date column are
// skipped. Rows counts painted rows.
func (r *Runner) Highlight(ctx context.Context, keys []string) ([]Output, error) {
	if len(keys) == 0 {
		keys = r.Tables.Highlight.Keys
	}
	if len(keys) == 0 {
		var err error
		if keys, err = r.workbooks(ctx, r.Tables.Keys.RoutedPrefix, ".xlsx"); err != nil {
			return nil, err
		}
	}
	aging := r.aging()
	now := r.now()

	var out []Output
	for _, key := range keys {
		data, err := r.Store.Get(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			log.Warn().Str("key", r.Store.Describe(key)).Msg("workbook missing, skipping")
			continue
		}
		if err != nil {
			return out, err
		}
		painted, n, err := table.HighlightAging(data, aging, now)
		if err != nil {
			var serr *apperr.SchemaError
			if !errors.As(err, &serr) {
				err = &apperr.FormatError{Path: key, Err: err}
			}
			log.Warn().Err(err).Str("key", r.Store.Describe(key)).Msg("skipping workbook")
			continue
		}
		if err := r.Store.Put(ctx, key, painted, storage.XLSXContentType); err != nil {
			return out, err
		}
		log.Info().Str("key", r.Store.Describe(key)).Int("rows", n).Msg("rows highlighted")
		out = append(out, Output{Key: key, Rows: n})
	}
	return out, nil
}

// Cleanup deletes the workbooks directly under prefix and returns how many
// were removed. Failed deletions are reported together after the rest.
func (r *Runner) Cleanup(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		prefix = r.Tables.Keys.CleanupPrefix
	}
	keys, err := r.workbooks(ctx, prefix, ".xlsx")
	if err != nil {
		return 0, err
	}
	dir := strings.TrimSuffix(prefix, "/")
	deleted := 0
	var errs []error
	for _, key := range keys {
		if path.Dir(key) != dir {
			continue
		}
		if err := r.Store.Delete(ctx, key); err != nil {
			log.Error().Err(err).Str("key", r.Store.Describe(key)).Msg("delete failed")
			errs = append(errs, err)
			continue
		}
		deleted++
	}
	log.Info().Str("prefix", prefix).Int("deleted", deleted).Msg("cleanup done")
	return deleted, errors.Join(errs...)
}
