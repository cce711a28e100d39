// Package config loads configuration from command-line flags, environment variables and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Engine  EngineConfig
	Sponsor SponsorConfig
	Server  ServerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// EngineConfig holds timeline engine tuning.
type EngineConfig struct {
	// Tolerance is the largest gap in seconds between two boundaries that
	// still counts as the same point (default: 2)
	Tolerance float64
}

// SponsorConfig holds settings for sponsor interval lookups.
type SponsorConfig struct {
	DataPath   string        // Optional JSON file with intervals keyed by video ID
	Timeout    time.Duration // Per-lookup timeout (default: 10s)
	MaxRetries int           // Retries after the first attempt (default: 3)
	RPS        float64       // Lookups per second per video (default: 1)
	Burst      int           // Burst size per video (default: 3)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	RateLimitRPS   float64 // Requests per second per client IP (default: 20)
	RateLimitBurst int     // Burst size per client IP (default: 40)
}

// LoadConfig loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("chapter-timeline", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	tolerance := fs.String("tolerance", "", "Boundary tolerance in seconds (default: 2)")
	sponsorPath := fs.String("sponsor-data", "", "JSON file with sponsor intervals by video ID")
	sponsorTimeout := fs.String("sponsor-timeout", "", "Sponsor lookup timeout (default: 10s)")
	sponsorRetries := fs.String("sponsor-retries", "", "Sponsor lookup retries (default: 3)")
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// A missing .env file is fine; existing environment variables win.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Sponsor: SponsorConfig{
			DataPath:   getConfigValue(*sponsorPath, "SPONSOR_DATA_PATH", ""),
			MaxRetries: getIntConfigValue(*sponsorRetries, "SPONSOR_MAX_RETRIES", 3),
			RPS:        getFloatConfigValue("", "SPONSOR_RPS", 1),
			Burst:      getIntConfigValue("", "SPONSOR_BURST", 3),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue("", "CORS_ALLOWED_ORIGINS", "*")),
			RateLimitRPS:   getFloatConfigValue("", "RATE_LIMIT_RPS", 20),
			RateLimitBurst: getIntConfigValue("", "RATE_LIMIT_BURST", 40),
		},
	}

	toleranceStr := getConfigValue(*tolerance, "ENGINE_TOLERANCE", "2")
	tol, err := strconv.ParseFloat(toleranceStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid engine tolerance %q: %w", toleranceStr, err)
	}
	cfg.Engine.Tolerance = tol

	durations := []struct {
		flagValue string
		envKey    string
		def       string
		target    *time.Duration
	}{
		{*sponsorTimeout, "SPONSOR_TIMEOUT", "10s", &cfg.Sponsor.Timeout},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", strings.ToLower(d.envKey), raw, err)
		}
		*d.target = parsed
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Engine.Tolerance <= 0 {
		return fmt.Errorf("engine tolerance must be positive, got %v", c.Engine.Tolerance)
	}

	if c.Sponsor.Timeout <= 0 {
		return errors.New("sponsor timeout must be positive")
	}
	if c.Sponsor.MaxRetries < 0 {
		return errors.New("sponsor retries cannot be negative")
	}
	if c.Sponsor.RPS <= 0 || c.Sponsor.Burst <= 0 {
		return errors.New("sponsor rate limit must be positive")
	}

	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst <= 0 {
		return errors.New("server rate limit must be positive")
	}

	if c.Sponsor.DataPath != "" {
		if _, err := os.Stat(c.Sponsor.DataPath); err != nil {
			return fmt.Errorf("sponsor data file: %w", err)
		}
	}

	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	raw := getConfigValue(flagValue, envKey, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
