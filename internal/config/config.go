// Package config handles loading and validating application configuration.
//
// Configuration is loaded from a YAML file with environment variable overrides.
// Environment variables use the MWPRIORITY_ prefix (e.g., MWPRIORITY_PORT).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/menezmethod/mwpriority/internal/middleware"
	"github.com/menezmethod/mwpriority/priority"
)

// Config holds the complete application configuration.
type Config struct {
	Server        Server        `yaml:"server"`
	Auth          Auth          `yaml:"auth"`
	RateLimit     RateLimit     `yaml:"ratelimit"`
	Log           Log           `yaml:"log"`
	Observability Observability `yaml:"observability"`
	Middleware    Middleware    `yaml:"middleware"`
	Priority      Priority      `yaml:"priority"`
}

// Server configures the HTTP listener.
type Server struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Auth configures API key authentication.
type Auth struct {
	KeysFile string `yaml:"keys_file"`
	// Watch reloads the keys file when it changes on disk.
	Watch bool `yaml:"watch"`
}

// RateLimit configures the token bucket rate limiter.
type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Log configures structured logging.
type Log struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	CloudFormat string `yaml:"cloud_format"` // "", "gcp" or "gcp_with_resource"
}

// Observability configures optional OpenTelemetry tracing.
type Observability struct {
	OTelEnabled     bool   `yaml:"otel_enabled"`
	OTelEndpoint    string `yaml:"otel_endpoint"`
	OTelServiceName string `yaml:"otel_service_name"`
}

// Middleware lists the middleware protecting the /v1 routes, in
// registration order. The priority list decides the order they run in.
type Middleware struct {
	Stack []string `yaml:"stack"`
}

// Priority seeds the priority list and the edits applied to it at startup.
type Priority struct {
	// Defaults is the initial list. Nil selects the built-in registry;
	// an explicit empty list starts with nothing ranked.
	Defaults []string        `yaml:"defaults"`
	Edits    []priority.Edit `yaml:"edits"`
}

// knownMiddleware is the set of names the server can build.
var knownMiddleware = map[string]bool{
	middleware.NameRequestID: true,
	middleware.NameRecover:   true,
	middleware.NameMetrics:   true,
	middleware.NameLogging:   true,
	middleware.NameAuth:      true,
	middleware.NameRateLimit: true,
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Server: Server{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Auth: Auth{
			KeysFile: "./keys.txt",
		},
		RateLimit: RateLimit{
			RequestsPerSecond: 10,
			Burst:             20,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		Observability: Observability{
			OTelServiceName: "mwpriority",
		},
		Middleware: Middleware{
			Stack: []string{
				middleware.NameRequestID,
				middleware.NameRecover,
				middleware.NameMetrics,
				middleware.NameLogging,
				middleware.NameAuth,
				middleware.NameRateLimit,
			},
		},
	}
}

// Load reads configuration from the given YAML file path, then applies
// environment variable overrides. If path is empty, only defaults and
// environment variables are used.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := validate(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides reads MWPRIORITY_* environment variables and overrides
// the corresponding config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MWPRIORITY_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MWPRIORITY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MWPRIORITY_AUTH_KEYS_FILE"); v != "" {
		cfg.Auth.KeysFile = v
	}
	if v := os.Getenv("MWPRIORITY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("MWPRIORITY_LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("MWPRIORITY_LOG_CLOUD_FORMAT"); v != "" {
		cfg.Log.CloudFormat = strings.ToLower(v)
	}
	if v := os.Getenv("MWPRIORITY_RATELIMIT_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit.RequestsPerSecond = rps
		}
	}
	if v := os.Getenv("MWPRIORITY_RATELIMIT_BURST"); v != "" {
		if burst, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.Burst = burst
		}
	}
	if v := os.Getenv("MWPRIORITY_OTEL_ENABLED"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			cfg.Observability.OTelEnabled = on
		}
	}
	if v := os.Getenv("MWPRIORITY_OTEL_ENDPOINT"); v != "" {
		cfg.Observability.OTelEndpoint = strings.TrimSpace(v)
	}
	if v := os.Getenv("MWPRIORITY_PRIORITY_DEFAULTS"); v != "" {
		cfg.Priority.Defaults = splitList(v)
	}
	if v := os.Getenv("MWPRIORITY_MIDDLEWARE_STACK"); v != "" {
		cfg.Middleware.Stack = splitList(v)
	}
}

// splitList parses a comma-separated list, dropping blank entries.
func splitList(v string) []string {
	out := []string{}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// validate checks that the configuration is internally consistent.
func validate(cfg Config) error {
	var errs []error

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port))
	}
	if cfg.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("ratelimit.requests_per_second must be positive"))
	}
	if cfg.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("ratelimit.burst must be at least 1"))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", cfg.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Log.Format] {
		errs = append(errs, fmt.Errorf("log.format must be json or text; got %q", cfg.Log.Format))
	}
	validCloud := map[string]bool{"": true, "gcp": true, "gcp_with_resource": true}
	if !validCloud[cfg.Log.CloudFormat] {
		errs = append(errs, fmt.Errorf("log.cloud_format must be empty, gcp or gcp_with_resource; got %q", cfg.Log.CloudFormat))
	}

	if cfg.Observability.OTelEnabled && strings.TrimSpace(cfg.Observability.OTelEndpoint) == "" {
		errs = append(errs, errors.New("observability.otel_endpoint is required when otel_enabled is true"))
	}

	seen := make(map[string]bool, len(cfg.Middleware.Stack))
	for i, name := range cfg.Middleware.Stack {
		switch {
		case name == "":
			errs = append(errs, fmt.Errorf("middleware.stack[%d] is empty", i))
		case !knownMiddleware[name]:
			errs = append(errs, fmt.Errorf("middleware.stack[%d]: unknown middleware %q", i, name))
		case seen[name]:
			errs = append(errs, fmt.Errorf("middleware.stack[%d]: %q listed twice", i, name))
		}
		seen[name] = true
	}

	for i, id := range cfg.Priority.Defaults {
		if id == "" {
			errs = append(errs, fmt.Errorf("priority.defaults[%d] is empty", i))
		}
	}
	for i, e := range cfg.Priority.Edits {
		if err := e.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("priority.edits[%d]: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

// Addr returns the listen address as "host:port".
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
