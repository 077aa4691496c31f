package config_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/book-exchange/cmd/api/config"
	"github.com/matryer/is"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFrom(t *testing.T) {
	t.Run("defaults without file or environment", func(t *testing.T) {
		is := is.New(t)

		cfg, err := config.LoadFrom("", env(nil))
		is.NoErr(err)
		is.Equal(cfg, config.Default())
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		is := is.New(t)

		path := writeFile(t, `
store: postgres
store_latency: 50ms
database:
  url: postgres://file
http:
  port: 9000
  request_timeout: 3s
log:
  level: debug
  format: json
`)
		cfg, err := config.LoadFrom(path, env(map[string]string{
			"DATABASE_URL":          "postgres://env",
			"HTTP_PORT":             "9100",
			"NOTIFICATIONS_ENABLED": "true",
			"NOTIFICATIONS_TIMEOUT": "750ms",
		}))
		is.NoErr(err)
		is.Equal(cfg.Store, config.StorePostgres)
		is.Equal(cfg.StoreLatency.Std(), 50*time.Millisecond)
		is.Equal(cfg.Database.URL, "postgres://env")
		is.Equal(cfg.HTTP.Port, 9100)
		is.Equal(cfg.HTTP.RequestTimeout.Std(), 3*time.Second)
		is.True(cfg.Notifications.Enabled)
		is.Equal(cfg.Notifications.Timeout.Std(), 750*time.Millisecond)
		is.Equal(cfg.Log.Format, config.LogFormatJSON)
	})

	t.Run("rejects invalid settings", func(t *testing.T) {
		is := is.New(t)

		cases := []map[string]string{
			{"STORE": "redis"},
			{"STORE": "postgres"},
			{"HTTP_PORT": "eighty"},
			{"HTTP_PORT": "70000"},
			{"HTTP_REQUEST_TIMEOUT": "soon"},
			{"NOTIFICATIONS_ENABLED": "maybe"},
			{"LOG_LEVEL": "loud"},
			{"LOG_FORMAT": "xml"},
		}
		for _, vars := range cases {
			_, err := config.LoadFrom("", env(vars))
			is.True(errors.Is(err, config.ErrConfigInvalid))
		}
	})

	t.Run("unknown file keys are errors", func(t *testing.T) {
		is := is.New(t)

		_, err := config.LoadFrom(writeFile(t, "colour: red\n"), env(nil))
		is.True(err != nil)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		is := is.New(t)

		_, err := config.LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"), env(nil))
		is.True(errors.Is(err, os.ErrNotExist))
	})
}

func TestNewLogger(t *testing.T) {
	is := is.New(t)

	cfg := config.Default()
	cfg.Log.Format = config.LogFormatJSON
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	is.True(!strings.Contains(out, "hidden"))
	is.True(strings.Contains(out, `"msg":"shown"`))
	is.True(strings.Contains(out, `"key":"value"`))
}
