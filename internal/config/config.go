// Package config loads process configuration from the environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Cache backends accepted by CacheBackend.
const (
	BackendAuto      = ""
	BackendMemory    = "memory"
	BackendRistretto = "ristretto"
	BackendRedis     = "redis"
)

// Config holds every tunable of the weather server. Defaults come from the
// struct tags. Precedence, lowest first: defaults, config file, environment,
// command-line flags.
type Config struct {
	// ConfigFile is a YAML file overlaying the defaults. ENV: WEATHER_MCP_CONFIG
	ConfigFile string `env:"WEATHER_MCP_CONFIG" yaml:"-"`
	// LogLevel is one of debug, info, warn, error. ENV: WEATHER_MCP_LOG_LEVEL
	LogLevel string `env:"WEATHER_MCP_LOG_LEVEL,default=info" yaml:"log_level"`
	// LogFormat is text or json. ENV: WEATHER_MCP_LOG_FORMAT
	LogFormat string `env:"WEATHER_MCP_LOG_FORMAT,default=text" yaml:"log_format"`
	// ReportTTL caches provider conditions per city. Zero, the default,
	// disables the cache. ENV: WEATHER_MCP_REPORT_TTL
	ReportTTL time.Duration `env:"WEATHER_MCP_REPORT_TTL" yaml:"report_ttl"`
	// CacheBackend is memory, ristretto or redis. Empty picks redis when
	// RedisAddr is set and memory otherwise. ENV: WEATHER_MCP_CACHE_BACKEND
	CacheBackend string `env:"WEATHER_MCP_CACHE_BACKEND" yaml:"cache_backend"`
	// CacheSize bounds the memory backend in entries and the ristretto
	// backend in KiB. ENV: WEATHER_MCP_CACHE_SIZE
	CacheSize int `env:"WEATHER_MCP_CACHE_SIZE,default=1024" yaml:"cache_size"`
	// RedisAddr like "localhost:6379". ENV: WEATHER_MCP_REDIS_ADDR
	RedisAddr string `env:"WEATHER_MCP_REDIS_ADDR" yaml:"redis_addr"`
	// MetricsAddr like ":9090" enables the admin listener. ENV: WEATHER_MCP_METRICS_ADDR
	MetricsAddr string `env:"WEATHER_MCP_METRICS_ADDR" yaml:"metrics_addr"`
	// OTLPEndpoint like "localhost:4317" exports request traces. ENV: WEATHER_MCP_OTLP_ENDPOINT
	OTLPEndpoint string `env:"WEATHER_MCP_OTLP_ENDPOINT" yaml:"otlp_endpoint"`
	// TemperatureF is the reported temperature. ENV: WEATHER_MCP_TEMPERATURE_F
	TemperatureF int `env:"WEATHER_MCP_TEMPERATURE_F,default=83" yaml:"temperature_f"`
}

// Load is Decode followed by Validate.
func Load(path string) (Config, error) {
	cfg, err := Decode(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode reads Config from the environment and applies the YAML file at path,
// or at ConfigFile when path is empty. The result is not validated so callers
// can layer further overrides first.
func Decode(path string) (Config, error) {
	var env Config
	if err := envdecode.Decode(&env); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if path == "" {
		path = env.ConfigFile
	}

	cfg := env
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg.ConfigFile = path
		explicitEnv(&cfg, env)
	}
	return cfg, nil
}

// explicitEnv copies into dst every field whose variable is set in the
// environment.
func explicitEnv(dst *Config, env Config) {
	dv := reflect.ValueOf(dst).Elem()
	ev := reflect.ValueOf(env)
	t := dv.Type()
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("env"), ",")
		if name == "" {
			continue
		}
		if _, ok := os.LookupEnv(name); ok {
			dv.Field(i).Set(ev.Field(i))
		}
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unsupported log format %q", c.LogFormat)
	}
	if c.ReportTTL < 0 {
		return fmt.Errorf("config: report ttl must not be negative")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("config: cache size must be positive")
	}
	switch c.Backend() {
	case BackendMemory, BackendRistretto:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("config: redis backend requires a redis address")
		}
	default:
		return fmt.Errorf("config: unknown cache backend %q", c.CacheBackend)
	}
	return nil
}

// Backend resolves CacheBackend, picking one when it is empty.
func (c Config) Backend() string {
	b := strings.ToLower(c.CacheBackend)
	if b != BackendAuto {
		return b
	}
	if c.RedisAddr != "" {
		return BackendRedis
	}
	return BackendMemory
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: invalid log level %q", c.LogLevel)
	}
	return lvl, nil
}

// JSONLogs reports whether logs should be emitted as JSON.
func (c Config) JSONLogs() bool {
	return strings.EqualFold(c.LogFormat, "json")
}
