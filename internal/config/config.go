// Package config loads and validates the application configuration from
// environment variables and an optional YAML file. Environment variables
// take precedence over file values.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Datasets DatasetsConfig `yaml:"datasets" envconfig:"DATASETS"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// DatasetsConfig controls dataset upload handling and session retention
type DatasetsConfig struct {
	// MaxUploadBytes caps the size of one uploaded file.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
	// MaxSessions caps live dataset sessions; the oldest is evicted first.
	MaxSessions int `yaml:"max_sessions" envconfig:"MAX_SESSIONS" default:"16"`
}

// AnalysisConfig controls aggregation output sizing
type AnalysisConfig struct {
	// TopProducts is the N of the product popularity ranking.
	TopProducts int `yaml:"top_products" envconfig:"TOP_PRODUCTS" default:"10"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("ORDERSIGHT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path := configFilePath(); path != "" {
		if err := applyFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyFile overlays file values onto cfg for fields the environment left
// at their zero value.
func applyFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return err
	}

	if fileCfg.Server.Port != 0 && os.Getenv("ORDERSIGHT_SERVER_PORT") == "" {
		cfg.Server.Port = fileCfg.Server.Port
	}
	if fileCfg.Logging.Level != "" && os.Getenv("ORDERSIGHT_LOGGING_LEVEL") == "" {
		cfg.Logging.Level = fileCfg.Logging.Level
	}
	if fileCfg.Datasets.MaxUploadBytes != 0 && os.Getenv("ORDERSIGHT_DATASETS_MAX_UPLOAD_BYTES") == "" {
		cfg.Datasets.MaxUploadBytes = fileCfg.Datasets.MaxUploadBytes
	}
	if fileCfg.Analysis.TopProducts != 0 && os.Getenv("ORDERSIGHT_ANALYSIS_TOP_PRODUCTS") == "" {
		cfg.Analysis.TopProducts = fileCfg.Analysis.TopProducts
	}

	return nil
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Datasets.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	if c.Datasets.MaxSessions <= 0 {
		return fmt.Errorf("max sessions must be positive")
	}
	if c.Analysis.TopProducts <= 0 {
		return fmt.Errorf("top products must be positive")
	}

	switch c.Logging.Output {
	case "stdout", "file", "both":
	default:
		c.Logging.Output = "stdout"
	}

	return nil
}

// configFilePath returns the path to the config file, empty when none exists
func configFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   25,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "logs/app.log",
		},
		Datasets: DatasetsConfig{
			MaxUploadBytes: 32 << 20,
			MaxSessions:    16,
		},
		Analysis: AnalysisConfig{
			TopProducts: 10,
		},
	}
}
