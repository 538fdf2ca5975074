// Package config loads doctool.yaml: repository layout, external tool commands, cleaning
// rules, logging and metrics settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/swiftusd/doctool/internal/logfields"
)

const (
	// Version is the only configuration format version understood by this build.
	Version = "1.0"
	// DefaultFilename is looked up in the working directory when no --config is given.
	DefaultFilename = "doctool.yaml"

	EnvLogLevel = "DOCTOOL_LOG_LEVEL"
	EnvRoot     = "DOCTOOL_ROOT"
)

// Config is the complete doctool configuration.
type Config struct {
	Version string        `yaml:"version"`
	Paths   PathsConfig   `yaml:"paths"`
	Product ProductConfig `yaml:"product"`
	Tools   ToolsConfig   `yaml:"tools"`
	Extract ExtractConfig `yaml:"extract"`
	Clean   CleanConfig   `yaml:"clean"`
	Preview PreviewConfig `yaml:"preview"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// PathsConfig locates the repository and everything inside it. Relative entries are
// resolved against Root.
type PathsConfig struct {
	Root              string   `yaml:"root,omitempty"` // empty: walk up from the working directory
	Markers           []string `yaml:"markers"`        // entries a directory must contain to count as the root
	SymbolGraphs      string   `yaml:"symbol_graphs"`
	Build             string   `yaml:"build"`
	PackageResolved   string   `yaml:"package_resolved"`
	Docs              string   `yaml:"docs"`
	Source            string   `yaml:"source"`
	UmbrellaHeader    string   `yaml:"umbrella_header"`
	GeneratedArticles string   `yaml:"generated_articles"`
	Include           string   `yaml:"include"`
	NamespaceHeader   string   `yaml:"namespace_header"` // relative to Include
}

// ProductConfig names the documented product and the module its symbols belong to.
type ProductConfig struct {
	Name            string `yaml:"name"`   // catalog is <Name>.docc, archive <Name>.doccarchive
	Module          string `yaml:"module"` // symbol graphs are <Module>@...
	Target          string `yaml:"target"` // swift build --target
	HostingBasePath string `yaml:"hosting_base_path"`
}

// ToolsConfig holds command prefixes for the external tools. Each entry is an argv prefix,
// so `["xcrun", "docc"]` is valid.
type ToolsConfig struct {
	Clang     []string `yaml:"clang"`
	Swift     []string `yaml:"swift"`
	Docc      []string `yaml:"docc"`
	Open      []string `yaml:"open,omitempty"` // empty: platform default
	KillGrace string   `yaml:"kill_grace"`     // SIGTERM to SIGKILL delay on interrupt
}

// KillGraceDuration parses KillGrace. Validation guarantees it parses after Load.
func (t ToolsConfig) KillGraceDuration() time.Duration {
	d, err := time.ParseDuration(t.KillGrace)
	if err != nil {
		return defaultKillGrace
	}
	return d
}

// ExtractConfig controls the clang and swift invocations.
type ExtractConfig struct {
	Language     string   `yaml:"language"`
	Std          string   `yaml:"std"`
	Defines      []string `yaml:"defines"`
	HeaderPrefix string   `yaml:"header_prefix"` // directory in umbrella #include lines
}

// CleanConfig controls the cleaning pass.
type CleanConfig struct {
	Concurrency int           `yaml:"concurrency"`
	Rules       []RewriteRule `yaml:"rules,omitempty"` // applied after the built-in identifier rules
	DumpSkipped bool          `yaml:"dump_skipped"`    // log a fragment dump for every unconverted declaration
}

// RewriteRule replaces every occurrence of From with To in identifiers.
type RewriteRule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// PreviewConfig controls `doctool preview`.
type PreviewConfig struct {
	Open  *bool `yaml:"open,omitempty"`
	Watch bool  `yaml:"watch"`
}

// ShouldOpen reports whether the preview URL is opened in a browser.
func (p PreviewConfig) ShouldOpen() bool {
	return p.Open == nil || *p.Open
}

// LoggingConfig selects level and handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig controls metrics export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"` // node-exporter textfile written after each run
}

// Load reads the configuration at configPath. An empty configPath looks for
// DefaultFilename in the working directory and falls back to built-in defaults when it
// does not exist; an explicit path that does not exist is an error.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultFilename
	}

	var cfg Config
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
		if cfg.Version != Version {
			return nil, fmt.Errorf("unsupported configuration version: %q (expected %s)", cfg.Version, Version)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		slog.Debug("No configuration file, using defaults", logfields.Path(configPath))
		cfg.Version = Version
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	res := NormalizeConfig(&cfg)
	for _, w := range res.Warnings {
		slog.Warn("Config normalization", logfields.Reason(w))
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading files or the environment.
func Default() *Config {
	cfg := &Config{Version: Version}
	_ = applyDefaults(cfg)
	return cfg
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if configPath == "" {
		configPath = DefaultFilename
	}
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Default()
	example.Clean.Rules = []RewriteRule{{From: "swiftUsdDocWorkarounds", To: "SwiftUsd"}}
	example.Metrics.Textfile = "${HOME}/.cache/doctool/doctool.prom"

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("marshal example config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = LogLevel(v)
	}
	if v := os.Getenv(EnvRoot); v != "" {
		cfg.Paths.Root = v
	}
}
