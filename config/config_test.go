package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lukman83/wbops/internal/apperr"
)

func TestTokenLookup(t *testing.T) {
	t.Setenv("WB_API_B", " token-b ")
	t.Setenv("API_C", "legacy-c")

	cfg := DefaultConfig()
	cfg.SetToken("a", "token-a")

	tok, err := cfg.Token("A")
	require.NoError(t, err)
	require.Equal(t, "token-a", tok)

	tok, err = cfg.Token("b")
	require.NoError(t, err)
	require.Equal(t, "token-b", tok)

	tok, err = cfg.Token("C")
	require.NoError(t, err)
	require.Equal(t, "legacy-c", tok)

	_, err = cfg.Token("Z")
	var cerr *apperr.ConfigurationError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "WB_API_Z", cerr.Key)
}

func TestValidateS3NamesMissingKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = "s3"
	cfg.Storage.S3.Endpoint = "https://storage.yandexcloud.net"
	cfg.Storage.S3.Bucket = "orders"
	cfg.Storage.S3.KeyID = "key"

	err := cfg.Validate()
	var cerr *apperr.ConfigurationError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "YC_S3_SECRET", cerr.Key)

	cfg.Storage.S3.SecretKey = "secret"
	require.NoError(t, cfg.Validate())
}

func TestValidateUnknownBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = "ftp"
	var cerr *apperr.ConfigurationError
	require.True(t, errors.As(cfg.Validate(), &cerr))
	require.Equal(t, "WBOPS_STORAGE", cerr.Key)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WB_TIMEOUT", "5s")
	t.Setenv("WB_PAGE_LIMIT", "250")
	t.Setenv("WBOPS_STORAGE", "S3")
	t.Setenv("YC_S3_BUCKET", "orders")

	cfg := DefaultConfig()
	cfg.LoadFromEnv()
	require.Equal(t, "5s", cfg.Timeout.String())
	require.Equal(t, 250, cfg.PageLimit)
	require.Equal(t, "s3", cfg.Storage.Backend)
	require.Equal(t, "orders", cfg.Storage.S3.Bucket)
	require.Equal(t, "ru-central1", cfg.Storage.S3.Region)
}

func TestLoadTablesDefaults(t *testing.T) {
	tables, err := LoadTables("")
	require.NoError(t, err)

	require.Len(t, tables.PickupPoints, 4)
	require.Equal(t, "Краснодар", tables.PickupPoints[0].Value)
	require.Equal(t, "НА_ЗАКУПКУ_ЕКБ.xlsx", tables.PickupPoints[3].File)

	require.Equal(t, "TAB", tables.StorePrefixes[0].Prefix)
	require.Equal(t, "ТАБРИС", tables.StorePrefixes[0].Store)

	f, ok := tables.Cabinet("f")
	require.True(t, ok)
	require.Equal(t, "Я ЧОРНИ", f.Seller)
	id, ok := f.Warehouse("москва")
	require.True(t, ok)
	require.Equal(t, "1367610", id)

	require.Equal(t, "supplies/active/E.xlsx", For(tables.Keys.ActiveSupplies, "E"))
	require.Equal(t, []string{"A", "B", "C", "D", "E", "F", "G", "H"}, tables.Groups)
	require.Equal(t, 30.0, tables.Highlight.AlertHours)
}

func TestLoadTablesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	yaml := `
pickup_points:
  - value: Казань
    file: KZN.xlsx
keys:
  routed_prefix: ready/
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("ACTIVE_SUPPLIES_KEY", "custom/active.xlsx")

	tables, err := LoadTables(path)
	require.NoError(t, err)
	require.Equal(t, []Route{{Value: "Казань", File: "KZN.xlsx"}}, tables.PickupPoints)
	require.Equal(t, "ready/", tables.Keys.RoutedPrefix)
	require.Equal(t, "custom/active.xlsx", tables.Keys.ActiveSupplies)
	// untouched sections keep their defaults
	require.Equal(t, "orders/выходы/", tables.Keys.MergedPrefix)
	require.Len(t, tables.Cabinets, 8)
}

func TestLoadTablesMissingFile(t *testing.T) {
	_, err := LoadTables(filepath.Join(t.TempDir(), "nope.yaml"))
	var cerr *apperr.ConfigurationError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, "WBOPS_TABLES", cerr.Key)
}
