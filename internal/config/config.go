// Package config provides configuration types, defaults, and loading for tact.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zjrosen/tact/internal/entryapi"
	"github.com/zjrosen/tact/internal/log"
	"github.com/zjrosen/tact/internal/paths"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// EnvPrefix is the prefix for environment overrides, e.g. TACT_API_URL.
const EnvPrefix = "TACT"

// Config holds all configuration options for tact.
type Config struct {
	APIURL  string        `mapstructure:"api_url"`
	Storage StorageConfig `mapstructure:"storage"`
	UI      UIConfig      `mapstructure:"ui"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Debug   bool          `mapstructure:"debug"`
}

// StorageConfig selects where timers are persisted.
type StorageConfig struct {
	// Backend is "sqlite" (default) or "file".
	Backend string `mapstructure:"backend"`

	// Dir is the data directory. Default: ~/.tact
	Dir string `mapstructure:"dir"`
}

// UIConfig holds dashboard options.
type UIConfig struct {
	// RefreshInterval is how often running timers are redrawn.
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`

	// MarkdownStyle is the glamour style for the today report: "dark" or "light".
	MarkdownStyle string `mapstructure:"markdown_style"`
}

// TracingConfig holds OpenTelemetry configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: <data dir>/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		APIURL: entryapi.DefaultBaseURL,
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Dir:     "", // ~/.tact, resolved at runtime
		},
		UI: UIConfig{
			RefreshInterval: time.Second,
			MarkdownStyle:   "dark",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// NormalizeAPIURL trims whitespace and trailing slashes; empty yields the default.
func NormalizeAPIURL(raw string) string {
	return entryapi.NormalizeBaseURL(raw)
}

// DataDir resolves the storage directory.
func (c Config) DataDir() string {
	return paths.DataDir(c.Storage.Dir)
}

// TracesFilePath returns the configured trace file, or one in the data dir.
func (c Config) TracesFilePath() string {
	if c.Tracing.FilePath != "" {
		return paths.ExpandHome(c.Tracing.FilePath)
	}
	return filepath.Join(c.DataDir(), "traces.jsonl")
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	var errs []error

	if _, err := entryapi.New(c.APIURL).EntriesURL(); err != nil {
		errs = append(errs, fmt.Errorf("api_url: %w", err))
	}

	switch c.Storage.Backend {
	case BackendSQLite, BackendFile:
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be %q or %q, got %q", BackendSQLite, BackendFile, c.Storage.Backend))
	}

	if c.UI.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("ui.refresh_interval must be positive, got %v", c.UI.RefreshInterval))
	}
	switch c.UI.MarkdownStyle {
	case "", "dark", "light":
	default:
		errs = append(errs, fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", c.UI.MarkdownStyle))
	}

	if err := ValidateTracing(c.Tracing); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	if tracing.Enabled && tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}

	return nil
}

// SetDefaults registers every default on v so env overrides resolve.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.dir", d.Storage.Dir)
	v.SetDefault("ui.refresh_interval", d.UI.RefreshInterval)
	v.SetDefault("ui.markdown_style", d.UI.MarkdownStyle)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("debug", d.Debug)
}

// Load reads configuration into v from cfgFile, or from the default config
// file when cfgFile is empty, writing a commented default file on first run.
// TACT_* environment variables override the file; flags bound to v
// override both. It returns the resolved config and the file path in use.
func Load(v *viper.Viper, cfgFile string) (Config, string, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := cfgFile
	if path == "" {
		path = paths.ConfigFile()
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := WriteDefaultConfig(path); err != nil {
				// Run on defaults; the file is a convenience.
				log.ErrorErr(log.CatConfig, "Could not create default config", err, "path", path)
			}
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return Config{}, path, fmt.Errorf("reading config %s: %w", path, err)
		}
		log.Debug(log.CatConfig, "No config file, using defaults", "path", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, path, fmt.Errorf("decoding config: %w", err)
	}
	cfg.APIURL = NormalizeAPIURL(cfg.APIURL)

	log.Debug(log.CatConfig, "Loaded config", "path", path, "api_url", cfg.APIURL, "backend", cfg.Storage.Backend)
	return cfg, path, nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# tact configuration

# Base URL of the time-entry API. Entries are POSTed to <api_url>/entries.
# Override with --api-url or TACT_API_URL.
api_url: http://localhost:2100

# Where timers are kept
storage:
  backend: sqlite   # sqlite (default) or file (one JSON file per key)
  # dir: ~/.tact    # data directory (default: ~/.tact)

# Dashboard settings
ui:
  refresh_interval: 1s   # how often running timers are redrawn
  markdown_style: dark   # today report style: dark or light

# OpenTelemetry tracing of stop/submit
# tracing:
#   enabled: false                 # default: false
#   exporter: file                 # none, file, stdout, otlp (default: file)
#   file_path: ~/.tact/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0

# Write a debug log to ~/.tact/debug.log (or set TACT_DEBUG=1)
debug: false
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
