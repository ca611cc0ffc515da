package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(32<<20), cfg.Datasets.MaxUploadBytes)
	assert.Equal(t, 16, cfg.Datasets.MaxSessions)
	assert.Equal(t, 10, cfg.Analysis.TopProducts)
	require.NoError(t, cfg.validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ORDERSIGHT_SERVER_PORT", "9090")
	t.Setenv("ORDERSIGHT_ANALYSIS_TOP_PRODUCTS", "5")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Analysis.TopProducts)
	// Unset values fall back to envconfig defaults.
	assert.Equal(t, 16, cfg.Datasets.MaxSessions)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = -1 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "read timeout",
		},
		{
			name:    "zero upload cap",
			mutate:  func(c *Config) { c.Datasets.MaxUploadBytes = 0 },
			wantErr: "max upload bytes",
		},
		{
			name:    "zero sessions",
			mutate:  func(c *Config) { c.Datasets.MaxSessions = 0 },
			wantErr: "max sessions",
		},
		{
			name:    "zero top products",
			mutate:  func(c *Config) { c.Analysis.TopProducts = 0 },
			wantErr: "top products",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_NormalizesLoggingOutput(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "syslog"

	require.NoError(t, cfg.validate())
	assert.Equal(t, "stdout", cfg.Logging.Output)
}
