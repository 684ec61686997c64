// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads webapp configuration.
//
// # Precedence
//
// Later sources override earlier ones:
//
//  1. Defaults (Default)
//  2. YAML file (STREAMLIT_CONFIG or the --config flag)
//  3. .env file in the working directory, if present
//  4. STREAMLIT_* environment variables
//
// The result is validated before it is returned.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigPathEnv names the environment variable holding the YAML path.
const ConfigPathEnv = "STREAMLIT_CONFIG"

// Config holds webapp configuration.
type Config struct {
	// Port is the HTTP listen port. Default: 12300
	Port int `yaml:"port" env:"STREAMLIT_PORT" validate:"gte=1,lte=65535"`

	// GinMode is one of debug, release, test. Default: release
	GinMode string `yaml:"gin_mode" env:"STREAMLIT_GIN_MODE" validate:"oneof=debug release test"`

	// Log configures pkg/logging.
	Log LogConfig `yaml:"log" envPrefix:"STREAMLIT_LOG_"`

	// Session configures session scopes.
	Session SessionConfig `yaml:"session" envPrefix:"STREAMLIT_SESSION_"`

	// Telemetry configures OpenTelemetry.
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"STREAMLIT_TELEMETRY_"`

	// RateLimit configures per-session request limits.
	RateLimit RateLimitConfig `yaml:"rate_limit" envPrefix:"STREAMLIT_RATE_LIMIT_"`

	// EnableMetrics exposes /metrics. Default: true
	EnableMetrics bool `yaml:"enable_metrics" env:"STREAMLIT_ENABLE_METRICS"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL" validate:"oneof=debug info warn warning error"`
	Dir   string `yaml:"dir" env:"DIR"`
	JSON  bool   `yaml:"json" env:"JSON"`
}

// SessionConfig controls session scope lifetime.
type SessionConfig struct {
	// CookieName carries the session ID. Default: sl_session
	CookieName string `yaml:"cookie_name" env:"COOKIE_NAME" validate:"required"`

	// IdleTimeout evicts sessions unused for this long. Default: 30m
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT" validate:"gt=0"`

	// SweepInterval is how often idle sessions are evicted. Default: 1m
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SWEEP_INTERVAL" validate:"gt=0"`

	// MaxSessions caps live sessions; new visitors get 503 at the cap.
	// 0 means unlimited. Default: 10000
	MaxSessions int `yaml:"max_sessions" env:"MAX_SESSIONS" validate:"gte=0"`

	// SecureCookie sets the Secure attribute on the session cookie.
	SecureCookie bool `yaml:"secure_cookie" env:"SECURE_COOKIE"`
}

// TelemetryConfig selects the OpenTelemetry exporters.
type TelemetryConfig struct {
	// TraceExporter is one of none, stdout, otlp. Default: none
	TraceExporter string `yaml:"trace_exporter" env:"TRACE_EXPORTER" validate:"oneof=none stdout otlp"`

	// MetricExporter is one of none, stdout, prometheus. Default: prometheus
	MetricExporter string `yaml:"metric_exporter" env:"METRIC_EXPORTER" validate:"oneof=none stdout prometheus"`

	// Endpoint is the OTLP gRPC collector address.
	Endpoint string `yaml:"endpoint" env:"ENDPOINT" validate:"required_if=TraceExporter otlp"`

	// ServiceName is reported as service.name. Default: streamlit-webapp
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
}

// RateLimitConfig controls the per-session token bucket. An enabled
// limiter with a positive RPS needs a Burst of at least 1.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" env:"ENABLED"`
	RPS     float64 `yaml:"rps" env:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" env:"BURST" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:    12300,
		GinMode: "release",
		Log: LogConfig{
			Level: "info",
		},
		Session: SessionConfig{
			CookieName:    "sl_session",
			IdleTimeout:   30 * time.Minute,
			SweepInterval: time.Minute,
			MaxSessions:   10000,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			ServiceName:    "streamlit-webapp",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     20,
			Burst:   40,
		},
		EnableMetrics: true,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateRateLimit, RateLimitConfig{})
	return v
}

// validateRateLimit rejects a limiter whose bucket can never hold a token.
func validateRateLimit(sl validator.StructLevel) {
	rl := sl.Current().Interface().(RateLimitConfig)
	if rl.Enabled && rl.RPS > 0 && rl.Burst < 1 {
		sl.ReportError(rl.Burst, "Burst", "burst", "burst_min_one", "")
	}
}

// Load builds the configuration from every source.
//
// # Description
//
// Starts from Default, applies the YAML file at path (or at
// $STREAMLIT_CONFIG when path is empty), loads dotEnvPath into the process
// environment when it exists, then applies STREAMLIT_* variables.
//
// # Inputs
//
//   - path: YAML file path. Empty means $STREAMLIT_CONFIG or none.
//   - dotEnvPath: .env path. Missing files are ignored.
//
// # Outputs
//
//   - Config: Validated configuration.
//   - error: Non-nil if a source cannot be parsed or validation fails.
func Load(path, dotEnvPath string) (Config, error) {
	cfg := Default()

	if dotEnvPath != "" {
		if err := godotenv.Load(dotEnvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", dotEnvPath, err)
		}
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against its field constraints.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read the config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	return nil
}

// WriteDefault writes the default configuration as YAML to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
