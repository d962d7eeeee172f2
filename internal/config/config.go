package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

type Config struct {
	// Secrets (from .env)
	APIKey          string
	WebhookURL      string
	NotifyName      string
	CORSAllowOrigin string

	// Server
	Port           int
	RateLimitRPS   float64
	RateLimitBurst int

	// Bar source
	BarsSource string
	CSVPath    string
	Symbol     string

	// Database
	DBHost        string
	DBPort        int
	DBName        string
	DBUser        string
	DBPassword    string
	PersistTrades bool

	// Timing
	RefreshCron string

	Log LogConfig
}

// LogConfig controls log level and output format.
type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // text | json
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Secrets
		APIKey:          envStr("API_KEY", ""),
		WebhookURL:      envStr("WEBHOOK_URL", ""),
		NotifyName:      envStr("NOTIFY_NAME", "TA-flagger"),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		// Server
		Port:           envInt("PORT", 8000),
		RateLimitRPS:   envFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 40),

		// Bar source
		BarsSource: strings.ToLower(envStr("BARS_SOURCE", SourceCSV)),
		CSVPath:    envStr("CSV_PATH", "data/sugar 60 mins.csv"),
		Symbol:     envStr("SYMBOL", "SUGAR"),

		// Database
		DBHost:        envStr("DB_HOST", "localhost"),
		DBPort:        envInt("DB_PORT", 5432),
		DBName:        envStr("DB_NAME", "ta_flagger"),
		DBUser:        envStr("DB_USER", ""),
		DBPassword:    envStr("DB_PASSWORD", ""),
		PersistTrades: envBool("PERSIST_TRADES", false),

		// Timing
		RefreshCron: envStr("REFRESH_CRON", "@every 1h"),

		Log: LogConfig{
			Level:  envStr("LOG_LEVEL", "info"),
			Format: envStr("LOG_FORMAT", "text"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	switch c.BarsSource {
	case SourceCSV:
		if c.CSVPath == "" {
			errs = append(errs, "CSV_PATH is required when BARS_SOURCE=csv")
		}
	case SourcePostgres:
		if c.DBUser == "" {
			errs = append(errs, "DB_USER is required when BARS_SOURCE=postgres")
		}
	default:
		errs = append(errs, fmt.Sprintf("BARS_SOURCE must be csv or postgres, got %q", c.BarsSource))
	}
	if c.PersistTrades && c.DBUser == "" {
		errs = append(errs, "DB_USER is required when PERSIST_TRADES is enabled")
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT out of range: %d", c.Port))
	}
	if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		errs = append(errs, fmt.Sprintf("REFRESH_CRON invalid: %v", err))
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		errs = append(errs, "RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// NeedsDatabase reports whether any component needs a Postgres pool.
func (c *Config) NeedsDatabase() bool {
	return c.BarsSource == SourcePostgres || c.PersistTrades
}

// Summary returns the settings worth logging at startup, secrets masked.
func (c *Config) Summary() []any {
	return []any{
		"port", c.Port,
		"bars_source", c.BarsSource,
		"csv_path", c.CSVPath,
		"symbol", c.Symbol,
		"database", boolLabel(c.NeedsDatabase(), fmt.Sprintf("%s:%d/%s", c.DBHost, c.DBPort, c.DBName), "disabled"),
		"persist_trades", c.PersistTrades,
		"refresh_cron", c.RefreshCron,
		"auth", boolLabel(c.APIKey != "", "enabled", "disabled"),
		"webhook", boolLabel(c.WebhookURL != "", "configured", "not set"),
		"rate_limit_rps", c.RateLimitRPS,
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
