// Package config loads the craftledger YAML configuration.
//
// Example:
//
//	database: /var/lib/craftledger/ledger.db
//	log:
//	  level: info
//	  format: text
//	alerts:
//	  queue_size: 64
//	  timeout: 2s
//	  rate: 0.0167   # alerts per second per item; 0 disables throttling
//	  burst: 1
//	  nats:
//	    url: nats://localhost:4222
//	    subject: craftledger.alerts
//	http:
//	  addr: 127.0.0.1:8080
//	audit:
//	  page_size: 15
//
// Every field is optional; Default() fills the gaps. Unknown keys are
// rejected so typos surface at startup.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full process configuration.
type Config struct {
	Database string      `yaml:"database"`
	Log      LogConfig   `yaml:"log"`
	Alerts   AlertConfig `yaml:"alerts"`
	HTTP     HTTPConfig  `yaml:"http"`
	Audit    AuditConfig `yaml:"audit"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// AlertConfig tunes low-stock alert delivery.
type AlertConfig struct {
	QueueSize int           `yaml:"queue_size"`
	Timeout   time.Duration `yaml:"timeout"`
	Rate      float64       `yaml:"rate"`
	Burst     int           `yaml:"burst"`
	NATS      NATSConfig    `yaml:"nats"`
}

// NATSConfig enables publishing alerts to NATS when URL is set.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// HTTPConfig configures `craftledger serve`.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// AuditConfig configures audit listings.
type AuditConfig struct {
	PageSize int `yaml:"page_size"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database: "craftledger.db",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Alerts: AlertConfig{
			QueueSize: 64,
			Timeout:   2 * time.Second,
			Rate:      1.0 / 60,
			Burst:     1,
			NATS: NATSConfig{
				Subject: "craftledger.alerts",
			},
		},
		HTTP: HTTPConfig{
			Addr: "127.0.0.1:8080",
		},
		Audit: AuditConfig{
			PageSize: 15,
		},
	}
}

// Load reads path over Default(). An empty path returns Default().
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or fails Validate.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks field ranges and enumerations.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("database is required")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Alerts.QueueSize < 1 {
		return fmt.Errorf("alerts.queue_size must be >= 1, got %d", c.Alerts.QueueSize)
	}
	if c.Alerts.Timeout <= 0 {
		return fmt.Errorf("alerts.timeout must be positive, got %s", c.Alerts.Timeout)
	}
	if c.Alerts.Rate < 0 {
		return fmt.Errorf("alerts.rate must be >= 0, got %g", c.Alerts.Rate)
	}
	if c.Alerts.Burst < 1 {
		return fmt.Errorf("alerts.burst must be >= 1, got %d", c.Alerts.Burst)
	}
	if c.Alerts.NATS.URL != "" && c.Alerts.NATS.Subject == "" {
		return fmt.Errorf("alerts.nats.subject is required when alerts.nats.url is set")
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.Audit.PageSize < 1 {
		return fmt.Errorf("audit.page_size must be >= 1, got %d", c.Audit.PageSize)
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log.level must be debug, info, warn or error, got %q", l.Level)
}
