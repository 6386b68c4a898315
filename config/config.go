package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Marketplace API
	APIBaseURL      string
	Timeout         time.Duration
	PageLimit       int
	MaxPages        int
	ExpirationDelay time.Duration
	UserAgent       string

	// Rate limiting (0 disables the transport limiter)
	RatePerSecond float64
	RateBurst     int

	// Proxy
	ProxyURL string

	// Storage
	Storage StorageConfig

	// Routing tables, cabinets and key templates
	TablesFile string

	// Logging
	LogLevel  string
	LogFormat string // "console" or "json"

	// HTTP server
	HTTPPort string
	APIKey   string

	tokens map[string]string
}

// StorageConfig selects where tables live.
type StorageConfig struct {
	Backend   string // "local" or "s3"
	LocalRoot string
	S3        S3Config
}

// S3Config is the S3-compatible bucket configuration.
type S3Config struct {
	Endpoint  string `env:"YC_S3_ENDPOINT" validate:"required,url"`
	Bucket    string `env:"YC_S3_BUCKET" validate:"required"`
	KeyID     string `env:"YC_S3_KEY_ID" validate:"required"`
	SecretKey string `env:"YC_S3_SECRET" validate:"required"`
	Region    string `env:"YC_S3_REGION" validate:"required"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:      "https://marketplace-api.wildberries.ru",
		Timeout:         60 * time.Second,
		PageLimit:       1000,
		MaxPages:        10000,
		ExpirationDelay: 70 * time.Millisecond,
		UserAgent:       "wbops/1.0",
		RateBurst:       1,
		Storage: StorageConfig{
			Backend:   "local",
			LocalRoot: ".",
			S3:        S3Config{Region: "ru-central1"},
		},
		LogLevel:  "info",
		LogFormat: "console",
		HTTPPort:  "8080",
		tokens:    map[string]string{},
	}
}

// LoadFromEnv loads .env file (if present) then overrides config from environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("WB_API_URL"); v != "" {
		c.APIBaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("WB_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	if v := os.Getenv("WB_PAGE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PageLimit = n
		}
	}
	if v := os.Getenv("WB_EXPIRATION_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.ExpirationDelay = d
		}
	}
	if v := os.Getenv("WB_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RatePerSecond = f
		}
	}
	if v := os.Getenv("WB_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateBurst = n
		}
	}
	if v := os.Getenv("WB_PROXY"); v != "" {
		c.ProxyURL = v
	}
	if v := os.Getenv("WBOPS_STORAGE"); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("WBOPS_LOCAL_ROOT"); v != "" {
		c.Storage.LocalRoot = v
	}
	if v := os.Getenv("YC_S3_ENDPOINT"); v != "" {
		c.Storage.S3.Endpoint = v
	}
	if v := os.Getenv("YC_S3_BUCKET"); v != "" {
		c.Storage.S3.Bucket = v
	}
	if v := os.Getenv("YC_S3_KEY_ID"); v != "" {
		c.Storage.S3.KeyID = v
	}
	if v := os.Getenv("YC_S3_SECRET"); v != "" {
		c.Storage.S3.SecretKey = v
	}
	if v := os.Getenv("YC_S3_REGION"); v != "" {
		c.Storage.S3.Region = v
	}
	if v := os.Getenv("WBOPS_TABLES"); v != "" {
		c.TablesFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("WBOPS_API_KEY"); v != "" {
		c.APIKey = v
	}
}

// TokenEnv is the environment variable holding the API token of a cabinet.
func TokenEnv(cabinet string) string {
	return "WB_API_" + strings.ToUpper(cabinet)
}

// SetToken overrides the token of a cabinet, mostly for tests and flags.
func (c *Config) SetToken(cabinet, token string) {
	if c.tokens == nil {
		c.tokens = map[string]string{}
	}
	c.tokens[strings.ToUpper(cabinet)] = token
}

// Token returns the API token of a cabinet from WB_API_<ID>, falling back to
// the older API_<ID> spelling.
func (c *Config) Token(cabinet string) (string, error) {
	id := strings.ToUpper(strings.TrimSpace(cabinet))
	if t, ok := c.tokens[id]; ok && t != "" {
		return t, nil
	}
	for _, key := range []string{TokenEnv(id), "API_" + id} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v, nil
		}
	}
	return "", missing(TokenEnv(id))
}
