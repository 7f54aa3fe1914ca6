package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	Signals    SignalsConfig    `envconfig:"SIGNALS"`
	Database   DatabaseConfig   `envconfig:"DATABASE"`
	ClickHouse ClickHouseConfig `envconfig:"CLICKHOUSE"`
	Telegram   TelegramConfig   `envconfig:"TELEGRAM"`
	Snapshots  SnapshotsConfig  `envconfig:"SNAPSHOTS"`
	Alerts     AlertsConfig     `envconfig:"ALERTS"`
	Logging    LoggingConfig    `envconfig:"LOGGING"`
}

// SignalsConfig locates the upstream signal source
type SignalsConfig struct {
	Path string `envconfig:"SIGNALS_PATH" default:"./data/signals.json"`
}

// DatabaseConfig represents PostgreSQL connection parameters for the record
// store. When disabled, records are kept in memory only.
type DatabaseConfig struct {
	Enabled  bool   `envconfig:"DB_ENABLED" default:"false"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"market_intel"`
	User     string `envconfig:"DB_USER" required:"false"`
	Password string `envconfig:"DB_PASSWORD" required:"false"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Name, c.User, c.Password, c.SSLMode)
}

// ClickHouseConfig represents the optional audit archive connection
type ClickHouseConfig struct {
	Enabled  bool   `envconfig:"CLICKHOUSE_ENABLED" default:"false"`
	Host     string `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	Database string `envconfig:"CLICKHOUSE_DATABASE" default:"market_intel"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD" required:"false"`
}

// GetDSN returns ClickHouse connection string
func (c *ClickHouseConfig) GetDSN() string {
	return fmt.Sprintf("clickhouse://%s:%s@%s:%d/%s",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// TelegramConfig represents the alert notification channel
type TelegramConfig struct {
	Enabled  bool   `envconfig:"TELEGRAM_ENABLED" default:"false"`
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"false"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" required:"false"`
}

// SnapshotsConfig drives the daily snapshot worker
type SnapshotsConfig struct {
	Interval time.Duration `envconfig:"SNAPSHOTS_INTERVAL" default:"24h"`
}

// AlertsConfig drives the alert evaluation sweep
type AlertsConfig struct {
	SweepInterval time.Duration `envconfig:"ALERTS_SWEEP_INTERVAL" default:"15m"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Signals.Path == "" {
		return fmt.Errorf("signals path is required")
	}

	if c.Database.Enabled {
		if c.Database.User == "" {
			return fmt.Errorf("db_user is required when database is enabled")
		}
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram bot token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram chat_id is required when telegram is enabled")
		}
	}

	if c.Snapshots.Interval < time.Minute {
		return fmt.Errorf("snapshots interval must be at least one minute")
	}
	if c.Alerts.SweepInterval < time.Minute {
		return fmt.Errorf("alerts sweep interval must be at least one minute")
	}

	return nil
}
