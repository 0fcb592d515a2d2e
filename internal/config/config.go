package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/air-quality-dashboard/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const maxPreviewRows = 1000

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataPath        string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dashboard view defaults.
	PreviewRows       int
	DailyField        string
	CorrelationFields []string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	previewRows, err := strconv.Atoi(sharedcfg.EnvOrDefault("PREVIEW_ROWS", "5"))
	if err != nil || previewRows <= 0 || previewRows > maxPreviewRows {
		return nil, fmt.Errorf("invalid PREVIEW_ROWS: must be an integer in 1..%d", maxPreviewRows)
	}

	cfg := &Config{
		DataPath:          sharedcfg.EnvOrDefault("DATA_PATH", "dashboard/main_data.csv"),
		HTTPAddr:          sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
		PreviewRows:       previewRows,
		DailyField:        sharedcfg.EnvOrDefault("DAILY_FIELD", domain.FieldPM25),
		CorrelationFields: parseFields(sharedcfg.EnvOrDefault("CORRELATION_FIELDS", strings.Join(domain.MeteorologyFields, ","))),
	}

	if cfg.DataPath == "" {
		return nil, errors.New("DATA_PATH is required")
	}
	if !domain.IsNumericField(cfg.DailyField) {
		return nil, fmt.Errorf("DAILY_FIELD %q is not a numeric field", cfg.DailyField)
	}
	if len(cfg.CorrelationFields) < 2 {
		return nil, errors.New("CORRELATION_FIELDS needs at least two fields")
	}
	for _, f := range cfg.CorrelationFields {
		if !domain.IsNumericField(f) {
			return nil, fmt.Errorf("CORRELATION_FIELDS: %q is not a numeric field", f)
		}
	}

	return cfg, nil
}

// parseFields splits a comma-separated list, trimming blanks and dropping duplicates.
func parseFields(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		f := strings.TrimSpace(part)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
