// Package config loads runtime settings from an optional YAML file and
// the environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreInMemory = "inmemory"
	StorePostgres = "postgres"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

var ErrConfigInvalid = errors.New("invalid configuration")

// Duration reads "10s" style values from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MigrationsPath string `yaml:"migrations_path"`
}

type HTTPConfig struct {
	Port           int      `yaml:"port"`
	RequestTimeout Duration `yaml:"request_timeout"`
}

type NotificationsConfig struct {
	Enabled bool     `yaml:"enabled"`
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Store         string              `yaml:"store"`
	StoreLatency  Duration            `yaml:"store_latency"`
	SeedPath      string              `yaml:"seed_path"`
	Database      DatabaseConfig      `yaml:"database"`
	HTTP          HTTPConfig          `yaml:"http"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Log           LogConfig           `yaml:"log"`
}

func Default() Config {
	return Config{
		Store: StoreInMemory,
		Database: DatabaseConfig{
			MigrationsPath: "migrations",
		},
		HTTP: HTTPConfig{
			Port:           8080,
			RequestTimeout: Duration(5 * time.Second),
		},
		Notifications: NotificationsConfig{
			BaseURL: "https://ntfy.sh/book_exchange",
			Timeout: Duration(2 * time.Second),
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatText,
		},
	}
}

func Load(path string) (Config, error) {
	return LoadFrom(path, os.Getenv)
}

/* Builds the configuration from defaults, the YAML file at path (if any) and then getenv. */
func LoadFrom(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("opening config file: %w", err)
		}
		defer f.Close()
		if err := decode(f, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decoding config file: %w", err)
	}
	return nil
}

func (cfg *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str("STORE", &cfg.Store)
	str("SEED_PATH", &cfg.SeedPath)
	str("DATABASE_URL", &cfg.Database.URL)
	str("DATABASE_MIGRATIONS_PATH", &cfg.Database.MigrationsPath)
	str("NOTIFICATIONS_BASE_URL", &cfg.Notifications.BaseURL)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	durations := map[string]*Duration{
		"STORE_LATENCY":         &cfg.StoreLatency,
		"HTTP_REQUEST_TIMEOUT":  &cfg.HTTP.RequestTimeout,
		"NOTIFICATIONS_TIMEOUT": &cfg.Notifications.Timeout,
	}
	for key, dst := range durations {
		v := getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", key, err.Error(), ErrConfigInvalid)
		}
		*dst = Duration(d)
	}

	if v := getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %s: %w", err.Error(), ErrConfigInvalid)
		}
		cfg.HTTP.Port = port
	}
	if v := getenv("NOTIFICATIONS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("NOTIFICATIONS_ENABLED: %s: %w", err.Error(), ErrConfigInvalid)
		}
		cfg.Notifications.Enabled = enabled
	}
	return nil
}

func (cfg Config) Validate() error {
	switch cfg.Store {
	case StoreInMemory:
	case StorePostgres:
		if cfg.Database.URL == "" {
			return fmt.Errorf("postgres store needs a database url: %w", ErrConfigInvalid)
		}
	default:
		return fmt.Errorf("unknown store %q: %w", cfg.Store, ErrConfigInvalid)
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("http port %d: %w", cfg.HTTP.Port, ErrConfigInvalid)
	}
	if cfg.HTTP.RequestTimeout <= 0 || cfg.Notifications.Timeout <= 0 {
		return fmt.Errorf("timeouts must be positive: %w", ErrConfigInvalid)
	}
	if cfg.StoreLatency < 0 {
		return fmt.Errorf("store latency must not be negative: %w", ErrConfigInvalid)
	}
	if _, err := parseLevel(cfg.Log.Level); err != nil {
		return err
	}
	if cfg.Log.Format != LogFormatText && cfg.Log.Format != LogFormatJSON {
		return fmt.Errorf("log format %q: %w", cfg.Log.Format, ErrConfigInvalid)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, ErrConfigInvalid)
	}
	return level, nil
}

// NewLogger builds the process logger writing to w.
func (cfg Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
