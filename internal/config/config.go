// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Supported data source drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Source     SourceConfig
	Cache      CacheConfig
	Server     ServerConfig
	Gemini     GeminiConfig
	RateLimit  RateLimitConfig
	BookSearch BookSearchConfig
	Zones      ZoneConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// SourceConfig describes the relational store the four catalog tables live in.
type SourceConfig struct {
	Driver string // sqlite or postgres
	DSN    string // file path for sqlite, connection string for postgres
}

// CacheConfig holds table cache configuration.
type CacheConfig struct {
	TTL time.Duration // default: 600s
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// GeminiConfig holds generative-search configuration.
// An empty APIKey disables AI summaries.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
}

// RateLimitConfig bounds how often a single client may request AI summaries.
type RateLimitConfig struct {
	AIPerMinute int
	AIBurst     int
}

// BookSearchConfig holds Naver book search credentials. Both empty disables lookups.
type BookSearchConfig struct {
	ClientID     string
	ClientSecret string
}

// ZoneConfig holds the shelf zones charted after the normal shelving zones.
type ZoneConfig struct {
	Special []string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("shelfboard", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	sourceDriver := fs.String("source-driver", "", "Catalog driver (sqlite, postgres)")
	sourceDSN := fs.String("source-dsn", "", "Catalog DSN (sqlite path or postgres URL)")
	cacheTTL := fs.String("cache-ttl", "", "Table cache lifetime (default: 600s)")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 90s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma separated allowed origins")

	geminiModel := fs.String("gemini-model", "", "Gemini model (default: gemini-2.5-flash)")
	specialZones := fs.String("special-zones", "", "Comma separated special zones (default: BA,CT,OD)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Source: SourceConfig{
			Driver: strings.ToLower(getConfigValue(*sourceDriver, "SOURCE_DRIVER", DriverSQLite)),
			DSN:    getConfigValue(*sourceDSN, "SOURCE_DSN", ""),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "")),
		},
		Gemini: GeminiConfig{
			APIKey: getConfigValue("", "GEMINI_API_KEY", ""),
			Model:  getConfigValue(*geminiModel, "GEMINI_MODEL", "gemini-2.5-flash"),
		},
		RateLimit: RateLimitConfig{
			AIPerMinute: getIntConfigValue("", "AI_RATE_PER_MINUTE", 6),
			AIBurst:     getIntConfigValue("", "AI_BURST", 2),
		},
		BookSearch: BookSearchConfig{
			ClientID:     getConfigValue("", "NAVER_CLIENT_ID", ""),
			ClientSecret: getConfigValue("", "NAVER_CLIENT_SECRET", ""),
		},
		Zones: ZoneConfig{
			Special: splitList(getConfigValue(*specialZones, "SPECIAL_ZONES", "BA,CT,OD")),
		},
	}

	temperature, err := strconv.ParseFloat(getConfigValue("", "GEMINI_TEMPERATURE", "0.3"), 32)
	if err != nil {
		return nil, fmt.Errorf("invalid gemini temperature: %w", err)
	}
	cfg.Gemini.Temperature = float32(temperature)

	durations := []struct {
		flagValue string
		envKey    string
		def       string
		target    *time.Duration
	}{
		{*cacheTTL, "CACHE_TTL", "600s", &cfg.Cache.TTL},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		// AI summaries block for the duration of a web-grounded generation.
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "90s", &cfg.Server.WriteTimeout},
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

	if err := cfg.expandSourceDSN(); err != nil {
		return nil, fmt.Errorf("invalid source dsn: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
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

	switch c.Source.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("invalid source driver: %q (must be sqlite or postgres)", c.Source.Driver)
	}
	if c.Source.DSN == "" {
		return errors.New("source dsn cannot be empty")
	}

	if c.Cache.TTL <= 0 {
		return errors.New("cache ttl must be positive")
	}

	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		return fmt.Errorf("invalid gemini temperature: %v (must be within 0..2)", c.Gemini.Temperature)
	}

	if c.RateLimit.AIPerMinute <= 0 || c.RateLimit.AIBurst <= 0 {
		return errors.New("ai rate limit and burst must be positive")
	}

	if (c.BookSearch.ClientID == "") != (c.BookSearch.ClientSecret == "") {
		return errors.New("naver client id and secret must be set together")
	}

	return nil
}

// AIEnabled reports whether a Gemini credential is configured.
func (c *Config) AIEnabled() bool {
	return c.Gemini.APIKey != ""
}

// BookSearchEnabled reports whether Naver credentials are configured.
func (c *Config) BookSearchEnabled() bool {
	return c.BookSearch.ClientID != "" && c.BookSearch.ClientSecret != ""
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned as is.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandSourceDSN resolves the sqlite catalog path. Postgres DSNs are left untouched.
func (c *Config) expandSourceDSN() error {
	if c.Source.Driver != DriverSQLite {
		return nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Shelfboard", "catalog.db")

	expanded, err := expandPath(c.Source.DSN, defaultPath)
	if err != nil {
		return err
	}
	c.Source.DSN = expanded
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

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// splitList splits a comma separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Real environment variables win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
