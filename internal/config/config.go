package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/compumarket/catalogadmin/internal/catalog"
	"github.com/compumarket/catalogadmin/internal/credentials"
	"github.com/compumarket/catalogadmin/internal/describe"
)

// Defaults for settings left unset
const (
	DefaultHTTPTimeout = 30 * time.Second
	DefaultRateLimit   = 5.0
	DefaultPort        = "8888"
)

// Config holds settings read from the environment (and .env, loaded by the
// root command before this runs).
type Config struct {
	APIURL          string
	CredentialsFile string
	HTTPTimeout     time.Duration
	RateLimit       float64
	GeminiAPIKey    string
	GeminiModel     string
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		APIURL:          getEnv("CATALOG_API_URL", catalog.DefaultBaseURL),
		CredentialsFile: getEnv("CATALOG_CREDENTIALS_FILE", credentials.DefaultPath()),
		HTTPTimeout:     DefaultHTTPTimeout,
		RateLimit:       DefaultRateLimit,
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", describe.DefaultModel),
	}

	if v := os.Getenv("CATALOG_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CATALOG_HTTP_TIMEOUT %q: %w", v, err)
		}
		cfg.HTTPTimeout = d
	}

	if v := os.Getenv("CATALOG_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("invalid CATALOG_RATE_LIMIT %q", v)
		}
		cfg.RateLimit = f
	}

	return cfg, nil
}

// ClientOptions converts the configuration into catalog client options
func (c *Config) ClientOptions() catalog.Options {
	return catalog.Options{
		BaseURL:   c.APIURL,
		Timeout:   c.HTTPTimeout,
		RateLimit: c.RateLimit,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
