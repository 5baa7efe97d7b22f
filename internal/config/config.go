// Package config loads the process configuration of the pinelocal server and CLI.
//
// Values are resolved in order: built-in defaults, an optional YAML file,
// environment variables, command-line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/hupe1980/pinelocal"
	"github.com/hupe1980/pinelocal/codec"
)

// Environment variable names.
const (
	EnvAPIKey               = "PINECONE_API_KEY"
	EnvPort                 = "PORT"
	EnvDataDir              = "DATA_DIR"
	EnvLogLevel             = "LOG_LEVEL"
	EnvLogFormat            = "LOG_FORMAT"
	EnvRateLimitRPS         = "RATE_LIMIT_RPS"
	EnvMaxConcurrentQueries = "MAX_CONCURRENT_QUERIES"
	EnvConfigFile           = "PINELOCAL_CONFIG"
)

// ErrMissingAPIKey is returned by Validate when no API key is configured.
var ErrMissingAPIKey = errors.New("PINECONE_API_KEY environment variable is required")

// Config is the resolved process configuration.
type Config struct {
	// APIKey is the bearer token every API request must present.
	APIKey string `yaml:"api_key,omitempty"`

	// Port is the HTTP listen port.
	Port int `yaml:"port,omitempty"`

	// DataDir is the directory holding the registry and index documents.
	DataDir string `yaml:"data_dir,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	// LogFormat is text or json.
	LogFormat string `yaml:"log_format,omitempty"`

	// Codec names the document codec (json or go-json).
	Codec string `yaml:"codec,omitempty"`

	// RateLimitRPS caps API requests per second. 0 disables the limit.
	RateLimitRPS float64 `yaml:"rate_limit_rps,omitempty"`

	// RateLimitBurst is the token bucket size. 0 derives it from RateLimitRPS.
	RateLimitBurst int `yaml:"rate_limit_burst,omitempty"`

	// MaxConcurrentQueries bounds queries scored at once. 0 is unlimited.
	MaxConcurrentQueries int `yaml:"max_concurrent_queries,omitempty"`

	// ShutdownTimeoutSeconds bounds graceful shutdown of the HTTP server.
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds,omitempty"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Port:                   3000,
		DataDir:                "./data",
		LogLevel:               "info",
		LogFormat:              "text",
		Codec:                  codec.Default.Name(),
		ShutdownTimeoutSeconds: 10,
	}
}

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Load resolves defaults, the YAML file at path (skipped if path is empty) and
// the environment. A nil lookup uses os.LookupEnv.
func Load(path string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.UnmarshalWithOptions(data, c, yaml.Strict()); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment. Empty values are ignored.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str(EnvAPIKey, &c.APIKey)
	str(EnvDataDir, &c.DataDir)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvLogFormat, &c.LogFormat)

	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Port = port
	}
	if v, ok := lookup(EnvRateLimitRPS); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvRateLimitRPS, v, err)
		}
		c.RateLimitRPS = rps
	}
	if v, ok := lookup(EnvMaxConcurrentQueries); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxConcurrentQueries, v, err)
		}
		c.MaxConcurrentQueries = n
	}
	return nil
}

// Validate checks the fields every command needs. The API key is only
// required when requireAPIKey is set.
func (c Config) Validate(requireAPIKey bool) error {
	var errs []error
	if requireAPIKey && c.APIKey == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data dir is required"))
	}
	if _, ok := pinelocal.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat))
	}
	if _, ok := codec.ByName(c.Codec); !ok {
		errs = append(errs, fmt.Errorf("unknown codec %q", c.Codec))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("rate limit must not be negative, got %v", c.RateLimitRPS))
	}
	if c.RateLimitBurst < 0 {
		errs = append(errs, fmt.Errorf("rate limit burst must not be negative, got %d", c.RateLimitBurst))
	}
	if c.MaxConcurrentQueries < 0 {
		errs = append(errs, fmt.Errorf("max concurrent queries must not be negative, got %d", c.MaxConcurrentQueries))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// ShutdownTimeout returns ShutdownTimeoutSeconds as a duration.
func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// Logger builds the logger described by LogLevel and LogFormat, writing to w.
func (c Config) Logger(w io.Writer) *pinelocal.Logger {
	level, _ := pinelocal.ParseLevel(c.LogLevel)
	if strings.EqualFold(c.LogFormat, "json") {
		return pinelocal.NewJSONLogger(w, level)
	}
	return pinelocal.NewTextLogger(w, level)
}

// Options translates the configuration into pinelocal.Open options.
func (c Config) Options(logger *pinelocal.Logger) []pinelocal.Option {
	opts := []pinelocal.Option{
		pinelocal.WithLogger(logger),
		pinelocal.WithMaxConcurrentQueries(c.MaxConcurrentQueries),
	}
	if cd, ok := codec.ByName(c.Codec); ok {
		opts = append(opts, pinelocal.WithCodec(cd))
	}
	return opts
}

// Marshal renders c as YAML with the API key masked.
func (c Config) Marshal() ([]byte, error) {
	c.APIKey = MaskAPIKey(c.APIKey)
	return yaml.Marshal(c)
}

// MaskAPIKey keeps the first and last four characters of long keys.
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
