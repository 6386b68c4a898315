package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lukman83/wbops/config"
	"github.com/lukman83/wbops/internal/apperr"
	"github.com/lukman83/wbops/internal/cabinet"
	"github.com/lukman83/wbops/internal/httputil"
	"github.com/lukman83/wbops/internal/jobs"
	"github.com/lukman83/wbops/internal/storage"
	"github.com/lukman83/wbops/internal/transport"
	"github.com/lukman83/wbops/internal/wb"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "wbops",
	Short:         "wbops - Wildberries fulfilment CLI & MCP server",
	Long:          "Exports marketplace orders and supplies to workbooks, merges and splits them for buyers, and manages supplies.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if hint := apperr.Hint(err); hint != "" {
			fmt.Fprintln(os.Stderr, "hint:", hint)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("storage", "", "Storage backend: local, s3 (default from $WBOPS_STORAGE)")
	rootCmd.PersistentFlags().String("root", "", "Local storage root directory")
	rootCmd.PersistentFlags().String("tables", "", "Path to the routing tables YAML file")
	rootCmd.PersistentFlags().String("proxy", "", "Proxy URL for marketplace calls (http, https, socks5)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Per-request timeout")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: console, json")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("storage"); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v, _ := rootCmd.PersistentFlags().GetString("root"); v != "" {
		cfg.Storage.LocalRoot = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("tables"); v != "" {
		cfg.TablesFile = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("proxy"); v != "" {
		cfg.ProxyURL = v
	}
	if v, _ := rootCmd.PersistentFlags().GetDuration("timeout"); v > 0 {
		cfg.Timeout = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("log-format"); v != "" {
		cfg.LogFormat = v
	}

	setupLogging(cfg.LogLevel, cfg.LogFormat)
}

// setupLogging configures the global logger. Logs go to stderr so stdout
// stays clean for command output.
func setupLogging(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if strings.EqualFold(format, "json") {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
}

// buildHTTPClient creates the rate-limited API client from config.
func buildHTTPClient() (*http.Client, error) {
	var base http.RoundTripper = httputil.NewBaseTransport()
	if cfg.ProxyURL != "" {
		proxied, err := transport.ProxiedBase(cfg.ProxyURL)
		if err != nil {
			return nil, &apperr.ConfigurationError{Key: "WB_PROXY", Reason: err.Error()}
		}
		base = proxied
	}
	rt := &transport.APITransport{
		Base:        base,
		UserAgent:   cfg.UserAgent,
		RateLimiter: transport.NewLimiter(cfg.RatePerSecond, cfg.RateBurst),
	}
	return httputil.NewHTTPClient(rt, cfg.Timeout), nil
}

func buildStore() storage.Store {
	if cfg.Storage.Backend == "s3" {
		s := cfg.Storage.S3
		return storage.NewS3(storage.S3Options{
			Endpoint:  s.Endpoint,
			Region:    s.Region,
			Bucket:    s.Bucket,
			KeyID:     s.KeyID,
			SecretKey: s.SecretKey,
		})
	}
	return storage.NewLocal(cfg.Storage.LocalRoot)
}

// newRunner validates the configuration and wires store, tables and cabinet
// clients together. Tokens are resolved per cabinet on first use.
func newRunner() (*jobs.Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tables, err := config.LoadTables(cfg.TablesFile)
	if err != nil {
		return nil, err
	}
	client, err := buildHTTPClient()
	if err != nil {
		return nil, err
	}
	registry := cabinet.NewRegistry(tables.Cabinets, func(cab config.Cabinet) (cabinet.API, error) {
		token, err := cfg.Token(cab.ID)
		if err != nil {
			return nil, err
		}
		return wb.New(wb.Options{
			BaseURL:         cfg.APIBaseURL,
			Token:           token,
			HTTPClient:      client,
			PageLimit:       cfg.PageLimit,
			MaxPages:        cfg.MaxPages,
			ExpirationDelay: cfg.ExpirationDelay,
		}), nil
	})
	st := buildStore()
	log.Debug().Str("storage", cfg.Storage.Backend).Strs("cabinets", registry.List()).Msg("runner ready")
	return jobs.NewRunner(st, tables, registry), nil
}
