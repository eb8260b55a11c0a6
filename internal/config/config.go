package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP (optional; empty URL disables async wallet reconciliation)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Derived statistics
	BudgetLimit decimal.Decimal

	// Image host (Cloudinary-compatible API)
	ImageCloudName    string
	ImageUploadPreset string
	ImageAPIKey       string
	ImageAPISecret    string

	// Spreadsheet export (optional)
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Worker
	ReconcileInterval time.Duration

	// HTTP limits
	RequestsPerMinute int
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ahorrapp.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ahorrapp"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "wallet_recalc"),

		BudgetLimit: getEnvDecimal("BUDGET_LIMIT", decimal.NewFromInt(2000)),

		ImageCloudName:    getEnv("IMAGE_CLOUD_NAME", ""),
		ImageUploadPreset: getEnv("IMAGE_UPLOAD_PRESET", ""),
		ImageAPIKey:       getEnv("IMAGE_API_KEY", ""),
		ImageAPISecret:    getEnv("IMAGE_API_SECRET", ""),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Transactions"),

		ReconcileInterval: getEnvDuration("RECONCILE_INTERVAL", 5*time.Minute),

		RequestsPerMinute: getEnvInt("REQUESTS_PER_MINUTE", 120),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.BudgetLimit.IsNegative() {
		errs = append(errs, fmt.Sprintf("invalid budget limit %s: cannot be negative", c.BudgetLimit))
	}

	// Image host credentials travel together; a partial set is a
	// misconfiguration rather than a disabled feature.
	imageFields := []string{c.ImageCloudName, c.ImageUploadPreset, c.ImageAPIKey, c.ImageAPISecret}
	set := 0
	for _, f := range imageFields {
		if f != "" {
			set++
		}
	}
	if set > 0 && set < len(imageFields) {
		errs = append(errs, "incomplete image host configuration: IMAGE_CLOUD_NAME, IMAGE_UPLOAD_PRESET, IMAGE_API_KEY and IMAGE_API_SECRET must all be set")
	}

	if c.ReconcileInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid reconcile interval %s: must be at least 1s", c.ReconcileInterval))
	}

	if c.RequestsPerMinute <= 0 {
		errs = append(errs, fmt.Sprintf("invalid requests per minute %d: must be positive", c.RequestsPerMinute))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ImagesEnabled reports whether the hosted image client is configured.
func (c *Config) ImagesEnabled() bool {
	return c.ImageCloudName != "" && c.ImageUploadPreset != "" &&
		c.ImageAPIKey != "" && c.ImageAPISecret != ""
}

// ExportEnabled reports whether spreadsheet export is configured.
func (c *Config) ExportEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return fallback
}
