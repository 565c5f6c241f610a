package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/Aashish23092/ocr-green-finance/metrics"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	ServerPort        string
	TesseractDataPath string
	TesseractLanguage string
	PaddleAPIURL      string
	MaxFileSize       int64
	RulesPath         string
	LogLevel          zapcore.Level
	Metrics           metrics.Constants
}

// LoadConfig reads .env when present, then the environment. Unset keys keep
// their defaults; malformed values are errors.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		TesseractDataPath: getEnv("TESSDATA_PREFIX", "/usr/share/tesseract-ocr/5/tessdata/"),
		TesseractLanguage: getEnv("TESSERACT_LANG", "eng"),
		PaddleAPIURL:      os.Getenv("PADDLEOCR_API_URL"),
		RulesPath:         os.Getenv("RULES_PATH"),
		Metrics:           metrics.DefaultConstants(),
	}

	maxMB, err := getInt("MAX_FILE_SIZE_MB", 10)
	if err != nil {
		return nil, err
	}
	if maxMB <= 0 {
		return nil, fmt.Errorf("MAX_FILE_SIZE_MB must be positive, got %d", maxMB)
	}
	cfg.MaxFileSize = int64(maxMB) << 20

	level, err := zapcore.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	m := &cfg.Metrics
	for _, d := range []struct {
		key string
		dst *decimal.Decimal
	}{
		{"SUN_HOURS_PER_DAY", &m.SunHoursPerDay},
		{"DAYS_PER_PERIOD", &m.DaysPerPeriod},
		{"SYSTEM_EFFICIENCY", &m.Efficiency},
		{"SIZE_GRANULARITY_KW", &m.Granularity},
		{"PANEL_WATTS", &m.PanelWatts},
		{"COST_PER_KW", &m.CostPerKW},
		{"CO2_KG_PER_KWH", &m.CO2PerKWh},
		{"TREE_CO2_KG_PER_YEAR", &m.TreeCO2PerYear},
		{"BILLING_CYCLE_DAYS", &m.BillingCycleDays},
		{"LOAN_SALARY_MULTIPLE", &m.LoanSalaryMultiple},
	} {
		if err := setDecimal(d.key, d.dst); err != nil {
			return nil, err
		}
	}

	precision, err := getInt("RESULT_PRECISION", int(m.Precision))
	if err != nil {
		return nil, err
	}
	m.Precision = int32(precision)

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewLogger builds the production zap logger at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(c.LogLevel)
	return zc.Build()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func setDecimal(key string, dst *decimal.Decimal) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
