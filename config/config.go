package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Attendance AttendanceConfig
	Settlement SettlementConfig
	MonthClose MonthCloseConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Path string
}

// AttendanceConfig holds the zone punches are interpreted in.
type AttendanceConfig struct {
	TimezoneOffsetMinutes int
}

// SettlementConfig holds optional JSON overrides for the settlement rules,
// in the factory.SettlementConfigJSON schema.
type SettlementConfig struct {
	RulesJSON string
}

// MonthCloseConfig holds the month-close scheduler settings.
type MonthCloseConfig struct {
	Enabled  bool
	Interval time.Duration
	Workers  int
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"*"}),
	}

	config.Database = DatabaseConfig{
		Path: getEnv("DB_PATH", "hr.db"),
	}

	// Attendance configuration
	offset, err := strconv.Atoi(getEnv("TIMEZONE_OFFSET_MINUTES", "330"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE_OFFSET_MINUTES: %w", err)
	}
	config.Attendance = AttendanceConfig{TimezoneOffsetMinutes: offset}

	config.Settlement = SettlementConfig{
		RulesJSON: getEnv("SETTLEMENT_RULES_JSON", ""),
	}

	// Month close configuration
	enabled, err := strconv.ParseBool(getEnv("MONTH_CLOSE_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONTH_CLOSE_ENABLED: %w", err)
	}
	interval, err := time.ParseDuration(getEnv("MONTH_CLOSE_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONTH_CLOSE_INTERVAL: %w", err)
	}
	workers, err := strconv.Atoi(getEnv("MONTH_CLOSE_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONTH_CLOSE_WORKERS: %w", err)
	}
	config.MonthClose = MonthCloseConfig{
		Enabled:  enabled,
		Interval: interval,
		Workers:  workers,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT must be between 1 and 65535, got %d", c.App.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	// Real-world offsets run from UTC-12:00 to UTC+14:00.
	if c.Attendance.TimezoneOffsetMinutes < -12*60 || c.Attendance.TimezoneOffsetMinutes > 14*60 {
		return fmt.Errorf("TIMEZONE_OFFSET_MINUTES out of range: %d", c.Attendance.TimezoneOffsetMinutes)
	}
	if c.MonthClose.Interval <= 0 {
		return fmt.Errorf("MONTH_CLOSE_INTERVAL must be positive")
	}
	if c.MonthClose.Workers < 1 {
		return fmt.Errorf("MONTH_CLOSE_WORKERS must be at least 1")
	}
	if _, err := parseLevel(c.App.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns LOG_LEVEL as a slog level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.App.LogLevel)
	return level
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
