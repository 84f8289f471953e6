package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, Default().Validate())
}

func TestLoad_Full(t *testing.T) {
	cfg, err := Load("testdata/full.yaml")
	require.NoError(t, err)

	assert.Equal(t, Config{
		Database: "/tmp/shop.db",
		Log:      LogConfig{Level: "debug", Format: "json"},
		Alerts: AlertConfig{
			QueueSize: 8,
			Timeout:   500 * time.Millisecond,
			Rate:      0.5,
			Burst:     3,
			NATS:      NATSConfig{URL: "nats://127.0.0.1:4222", Subject: "shop.alerts"},
		},
		HTTP:  HTTPConfig{Addr: ":9090"},
		Audit: AuditConfig{PageSize: 25},
	}, cfg)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Load("testdata/partial.yaml")
	require.NoError(t, err)

	want := Default()
	want.Database = "partial.db"
	want.Alerts.Timeout = 5 * time.Second
	assert.Equal(t, want, cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load("testdata/empty.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"missing file", "testdata/nope.yaml", "failed to read config file"},
		{"unknown field", "testdata/typo.yaml", "field alert not found"},
		{"bad level", "testdata/bad_level.yaml", "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"no database", func(c *Config) { c.Database = " " }, "database is required"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"queue size", func(c *Config) { c.Alerts.QueueSize = 0 }, "alerts.queue_size"},
		{"timeout", func(c *Config) { c.Alerts.Timeout = 0 }, "alerts.timeout"},
		{"rate", func(c *Config) { c.Alerts.Rate = -1 }, "alerts.rate"},
		{"burst", func(c *Config) { c.Alerts.Burst = 0 }, "alerts.burst"},
		{"nats subject", func(c *Config) {
			c.Alerts.NATS.URL = "nats://x"
			c.Alerts.NATS.Subject = ""
		}, "alerts.nats.subject"},
		{"http addr", func(c *Config) { c.HTTP.Addr = "" }, "http.addr"},
		{"page size", func(c *Config) { c.Audit.PageSize = 0 }, "audit.page_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := LogConfig{Level: in}.SlogLevel()
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
