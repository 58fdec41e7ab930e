package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"salesplot/internal/core"
)

// Report names accepted in REPORTS.
const (
	ReportMonthlySales     = "monthly_sales"
	ReportReceivedBy       = "received_by"
	ReportTransactionTypes = "transaction_types"
)

// AllReports lists every report in its default run order.
var AllReports = []string{ReportMonthlySales, ReportReceivedBy, ReportTransactionTypes}

var (
	validBackends = []string{"csv", "sqlite", "sheets", "memory"}
	validFormats  = []string{"png", "svg", "pdf", "jpg", "jpeg", "tif", "tiff", "eps"}
)

type Config struct {
	// Logging
	LogLevel string

	// Data source
	DataBackend string
	CSVPath     string

	// Database
	SQLiteDBPath  string
	ImportReplace bool

	// Google Sheets
	GoogleSpreadsheetID string
	GoogleSheetRange    string

	// Parsing
	DateLayouts  []string
	DateMemoSize int

	// Rendering
	OutputDir         string
	ChartFormat       string
	Reports           []string
	RenderConcurrency int

	// AMQP notifications (disabled when AMQPURL is empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Prometheus Pushgateway (disabled when empty)
	PushgatewayURL string
	PushJobName    string
	PushTimeout    time.Duration
}

func Load() *Config {
	return &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataBackend: getEnv("DATA_BACKEND", "csv"),
		CSVPath:     getEnv("CSV_PATH", "Balaji Fast Food Sales.csv"),

		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/sales.db"),
		ImportReplace: getEnvBool("IMPORT_REPLACE", false),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetRange:    getEnv("GOOGLE_SHEET_RANGE", "Sales!A:J"),

		DateLayouts:  getEnvList("DATE_LAYOUTS", core.DefaultDateLayouts),
		DateMemoSize: getEnvInt("DATE_MEMO_SIZE", 4096),

		OutputDir:         getEnv("OUTPUT_DIR", "charts"),
		ChartFormat:       strings.ToLower(getEnv("CHART_FORMAT", "png")),
		Reports:           getEnvList("REPORTS", AllReports),
		RenderConcurrency: getEnvInt("RENDER_CONCURRENCY", 1),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "salesplot"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "report_rendered"),

		PushgatewayURL: getEnv("PUSHGATEWAY_URL", ""),
		PushJobName:    getEnv("PUSH_JOB_NAME", "salesplot"),
		PushTimeout:    getEnvDuration("PUSH_TIMEOUT", 10*time.Second),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if !contains([]string{"debug", "info", "warn", "warning", "error"}, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if !contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "csv":
		if strings.TrimSpace(c.CSVPath) == "" {
			errors = append(errors, "CSV path cannot be empty when using csv backend")
		}
	case "sqlite":
		if strings.TrimSpace(c.SQLiteDBPath) == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetRange == "" {
			errors = append(errors, "Google Sheet range is required when using sheets backend")
		}
	}

	if len(c.DateLayouts) == 0 {
		errors = append(errors, "at least one date layout is required")
	}
	if c.DateMemoSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid date memo size %d: must be at least 1", c.DateMemoSize))
	}

	if strings.TrimSpace(c.OutputDir) == "" {
		errors = append(errors, "output directory cannot be empty")
	}
	if !contains(validFormats, c.ChartFormat) {
		errors = append(errors, fmt.Sprintf("invalid chart format '%s': must be one of %v", c.ChartFormat, validFormats))
	}

	if len(c.Reports) == 0 {
		errors = append(errors, "at least one report must be selected")
	}
	seen := map[string]bool{}
	for _, r := range c.Reports {
		if !contains(AllReports, r) {
			errors = append(errors, fmt.Sprintf("unknown report '%s': must be one of %v", r, AllReports))
		} else if seen[r] {
			errors = append(errors, fmt.Sprintf("report '%s' selected more than once", r))
		}
		seen[r] = true
	}

	if c.RenderConcurrency < 1 {
		errors = append(errors, fmt.Sprintf("invalid render concurrency %d: must be at least 1", c.RenderConcurrency))
	} else if c.RenderConcurrency > len(AllReports) {
		errors = append(errors, fmt.Sprintf("invalid render concurrency %d: must be at most %d", c.RenderConcurrency, len(AllReports)))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.PushgatewayURL != "" {
		if parsedURL, err := url.Parse(c.PushgatewayURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid Pushgateway URL '%s': %v", c.PushgatewayURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid Pushgateway URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
		if c.PushJobName == "" {
			errors = append(errors, "Pushgateway job name cannot be empty when Pushgateway URL is provided")
		}
		if c.PushTimeout < time.Second {
			errors = append(errors, fmt.Sprintf("invalid push timeout %v: must be at least 1 second", c.PushTimeout))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
