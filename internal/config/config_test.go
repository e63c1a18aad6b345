package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, "http://localhost:2100", cfg.APIURL)
	require.Equal(t, BackendSQLite, cfg.Storage.Backend)
	require.Equal(t, time.Second, cfg.UI.RefreshInterval)
	require.False(t, cfg.Tracing.Enabled)
	require.Equal(t, "file", cfg.Tracing.Exporter)
	require.Equal(t, 1.0, cfg.Tracing.SampleRate)
	require.NoError(t, cfg.Validate())
}

func TestNormalizeAPIURL(t *testing.T) {
	require.Equal(t, "http://host:1234", NormalizeAPIURL("http://host:1234/"))
	require.Equal(t, "http://localhost:2100", NormalizeAPIURL(""))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad url", func(c *Config) { c.APIURL = "localhost:2100" }, "api_url"},
		{"bad backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"zero refresh", func(c *Config) { c.UI.RefreshInterval = 0 }, "ui.refresh_interval"},
		{"bad style", func(c *Config) { c.UI.MarkdownStyle = "neon" }, "ui.markdown_style"},
		{"sample rate", func(c *Config) { c.Tracing.SampleRate = 1.5 }, "tracing.sample_rate"},
		{"exporter", func(c *Config) { c.Tracing.Exporter = "zipkin" }, "tracing.exporter"},
		{"otlp endpoint", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "otlp"
			c.Tracing.OTLPEndpoint = ""
		}, "tracing.otlp_endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDataDirAndTracesPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Defaults()
	require.Equal(t, filepath.Join(home, ".tact"), cfg.DataDir())
	require.Equal(t, filepath.Join(home, ".tact", "traces.jsonl"), cfg.TracesFilePath())

	cfg.Storage.Dir = "/srv/tact"
	cfg.Tracing.FilePath = "~/t.jsonl"
	require.Equal(t, "/srv/tact", cfg.DataDir())
	require.Equal(t, filepath.Join(home, "t.jsonl"), cfg.TracesFilePath())
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`api_url: http://host:1234/
storage:
  backend: file
ui:
  refresh_interval: 2s
`), 0o600))

	cfg, used, err := Load(viper.New(), path)

	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "http://host:1234", cfg.APIURL, "trailing slash stripped")
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, 2*time.Second, cfg.UI.RefreshInterval)
	assert.Equal(t, "localhost:4317", cfg.Tracing.OTLPEndpoint, "defaults fill the rest")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: http://file:1\n"), 0o600))
	t.Setenv("TACT_API_URL", "http://env:2/")
	t.Setenv("TACT_DEBUG", "true")
	t.Setenv("TACT_STORAGE_BACKEND", "file")

	cfg, _, err := Load(viper.New(), path)

	require.NoError(t, err)
	assert.Equal(t, "http://env:2", cfg.APIURL)
	assert.True(t, cfg.Debug)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: http://file:1\n"), 0o600))
	t.Setenv("TACT_API_URL", "http://env:2")

	v := viper.New()
	v.Set("api_url", "http://flag:3")
	cfg, _, err := Load(v, path)

	require.NoError(t, err)
	assert.Equal(t, "http://flag:3", cfg.APIURL)
}

func TestLoad_MissingExplicitFileErrors(t *testing.T) {
	_, _, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_FirstRunWritesDefaultConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, used, err := Load(viper.New(), "")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "tact", "config.yaml"), used)
	assert.FileExists(t, used)
	assert.Equal(t, Defaults().APIURL, cfg.APIURL)
	assert.Equal(t, Defaults().UI.RefreshInterval, cfg.UI.RefreshInterval)
}

func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	cfg, _, err := Load(viper.New(), path)
	require.NoError(t, err)

	d := Defaults()
	assert.Equal(t, d.APIURL, cfg.APIURL)
	assert.Equal(t, d.Storage, cfg.Storage)
	assert.Equal(t, d.UI, cfg.UI)
	assert.Equal(t, d.Tracing, cfg.Tracing)
	assert.Equal(t, d.Debug, cfg.Debug)
}

func TestWriteDefaultConfig_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "api_url: http://localhost:2100")
}
