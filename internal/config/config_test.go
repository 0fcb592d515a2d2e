package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dashboard/main_data.csv", cfg.DataPath)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5, cfg.PreviewRows)
	assert.Equal(t, "PM2.5", cfg.DailyField)
	assert.Equal(t, []string{"PM2.5", "TEMP", "PRES", "DEWP", "RAIN", "WSPM"}, cfg.CorrelationFields)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_PATH", "/data/aotizhongxin.csv")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("PREVIEW_ROWS", "20")
	t.Setenv("DAILY_FIELD", "NO2")
	t.Setenv("CORRELATION_FIELDS", " NO2, TEMP ,,NO2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/aotizhongxin.csv", cfg.DataPath)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 20, cfg.PreviewRows)
	assert.Equal(t, "NO2", cfg.DailyField)
	assert.Equal(t, []string{"NO2", "TEMP"}, cfg.CorrelationFields)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidPreviewRows(t *testing.T) {
	for _, v := range []string{"abc", "0", "-3", "1001"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("PREVIEW_ROWS", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "PREVIEW_ROWS")
		})
	}
}

func TestLoad_UnknownDailyField(t *testing.T) {
	t.Setenv("DAILY_FIELD", "PM1")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DAILY_FIELD")
}

func TestLoad_CorrelationFields(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"single field", "PM2.5"},
		{"duplicates collapse to one", "TEMP,TEMP"},
		{"unknown field", "PM2.5,HUMIDITY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CORRELATION_FIELDS", tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "CORRELATION_FIELDS")
		})
	}
}

func TestParseFields(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, parseFields("A, B,,A "))
	assert.Empty(t, parseFields(" , "))
}
