package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "eng", cfg.TesseractLanguage)
	assert.Equal(t, int64(10<<20), cfg.MaxFileSize)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "5.5", cfg.Metrics.SunHoursPerDay.String())
	assert.Equal(t, int32(2), cfg.Metrics.Precision)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MAX_FILE_SIZE_MB", "4")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SUN_HOURS_PER_DAY", "4.75")
	t.Setenv("COST_PER_KW", "75000")
	t.Setenv("RESULT_PRECISION", "3")
	t.Setenv("RULES_PATH", "/etc/rules.yaml")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, int64(4<<20), cfg.MaxFileSize)
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "4.75", cfg.Metrics.SunHoursPerDay.String())
	assert.Equal(t, "75000", cfg.Metrics.CostPerKW.String())
	assert.Equal(t, int32(3), cfg.Metrics.Precision)
	assert.Equal(t, "/etc/rules.yaml", cfg.RulesPath)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"MAX_FILE_SIZE_MB":  "ten",
		"LOG_LEVEL":         "loud",
		"SYSTEM_EFFICIENCY": "1.5",
		"PANEL_WATTS":       "abc",
		"RESULT_PRECISION":  "-1",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(key, value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
