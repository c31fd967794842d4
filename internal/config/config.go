// Package config provides configuration management for the publication cost
// service.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the publication cost service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// OpenAlex contains metadata source client settings.
	OpenAlex OpenAlexConfig `mapstructure:"openalex"`
	// Analysis contains aggregation pass settings.
	Analysis AnalysisConfig `mapstructure:"analysis"`
	// Taxonomy contains publisher taxonomy settings.
	Taxonomy TaxonomyConfig `mapstructure:"taxonomy"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// MetricsPort is the metrics server port (default: 9091).
	MetricsPort int `mapstructure:"metrics_port"`
	// ReadTimeout is the maximum duration for reading request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr, file path).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
	// Namespace is the metric name prefix.
	Namespace string `mapstructure:"namespace"`
}

// OpenAlexConfig holds OpenAlex API client configuration.
type OpenAlexConfig struct {
	// BaseURL is the OpenAlex API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Email is the contact address sent with every request. Setting it
	// joins the polite pool with its higher rate limits.
	Email string `mapstructure:"email"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// BurstSize is the maximum burst of requests allowed.
	BurstSize int `mapstructure:"burst_size"`
	// PerPage is the page size for works requests (max 200).
	PerPage int `mapstructure:"per_page"`
}

// AnalysisConfig holds aggregation pass configuration.
type AnalysisConfig struct {
	// MaxWorks caps the number of most recent works analyzed per subject
	// (default: 2000).
	MaxWorks int `mapstructure:"max_works"`
	// ChartTopPublishers is how many publishers cost charts break out
	// before folding the rest into "other" (default: 10).
	ChartTopPublishers int `mapstructure:"chart_top_publishers"`
}

// TaxonomyConfig holds publisher taxonomy configuration.
type TaxonomyConfig struct {
	// Path is the YAML taxonomy file to load. Empty means the built-in
	// taxonomy.
	Path string `mapstructure:"path"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// MetricsAddress returns the metrics server address.
func (c *ServerConfig) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.MetricsPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("PUBCOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if present
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/publication-cost-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.metrics_port", 9091)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "pubcost")

	// OpenAlex defaults
	v.SetDefault("openalex.base_url", "https://api.openalex.org")
	v.SetDefault("openalex.email", "")
	v.SetDefault("openalex.timeout", "30s")
	v.SetDefault("openalex.rate_limit", 10.0)
	v.SetDefault("openalex.burst_size", 10)
	v.SetDefault("openalex.per_page", 200)

	// Analysis defaults
	v.SetDefault("analysis.max_works", 2000)
	v.SetDefault("analysis.chart_top_publishers", 10)

	// Taxonomy defaults
	v.SetDefault("taxonomy.path", "")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate server ports
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	// Validate OpenAlex config
	if c.OpenAlex.BaseURL == "" {
		return fmt.Errorf("openalex base_url is required")
	}
	if c.OpenAlex.RateLimit <= 0 {
		return fmt.Errorf("openalex rate_limit must be positive")
	}
	if c.OpenAlex.PerPage <= 0 || c.OpenAlex.PerPage > 200 {
		return fmt.Errorf("openalex per_page must be between 1 and 200")
	}

	// Validate analysis config
	if c.Analysis.MaxWorks <= 0 {
		return fmt.Errorf("analysis max_works must be positive")
	}
	if c.Analysis.ChartTopPublishers <= 0 {
		return fmt.Errorf("analysis chart_top_publishers must be positive")
	}

	return nil
}
