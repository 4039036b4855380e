package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	OutputDir string

	Tolerance  float64
	ReportLang string

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		Tolerance:  getEnvFloat("RECIPE_TOLERANCE", 0.05),
		ReportLang: strings.ToLower(strings.TrimSpace(getEnv("REPORT_LANG", "zh"))),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if math.IsNaN(c.Tolerance) || c.Tolerance < 0 {
		return fmt.Errorf("RECIPE_TOLERANCE must be >= 0, got %v", c.Tolerance)
	}
	switch c.ReportLang {
	case "zh", "en":
	default:
		return fmt.Errorf("REPORT_LANG must be zh or en, got %q", c.ReportLang)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
