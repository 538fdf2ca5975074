package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFilename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Version != Version {
		t.Errorf("Version = %q, want %q", cfg.Version, Version)
	}
	if cfg.Product.Name != "SwiftUsd" || cfg.Product.Module != "OpenUSD" || cfg.Product.Target != "OpenUSD" {
		t.Errorf("Product = %+v", cfg.Product)
	}
	if cfg.Product.HostingBasePath != "SwiftUsd" {
		t.Errorf("HostingBasePath = %q", cfg.Product.HostingBasePath)
	}
	if strings.Join(cfg.Tools.Docc, " ") != "xcrun docc" {
		t.Errorf("Docc = %v", cfg.Tools.Docc)
	}
	if cfg.Clean.Concurrency != runtime.NumCPU() {
		t.Errorf("Concurrency = %d, want %d", cfg.Clean.Concurrency, runtime.NumCPU())
	}
	if cfg.Logging.Level != LogLevelInfo || cfg.Logging.Format != LogFormatPretty {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if !cfg.Preview.ShouldOpen() {
		t.Error("preview should open the browser by default")
	}
	if cfg.Tools.KillGraceDuration() != defaultKillGrace {
		t.Errorf("KillGraceDuration() = %v", cfg.Tools.KillGraceDuration())
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("Load() error = %v, want not found", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("DOCTOOL_TEST_MODULE", "OpenUSDKit")
	path := writeConfig(t, t.TempDir(), `version: "1.0"
product:
  name: Kit
  module: ${DOCTOOL_TEST_MODULE}
tools:
  docc: ["", "docc"]
  kill_grace: 250ms
extract:
  defines: []
clean:
  concurrency: 3
  rules:
    - from: oldNS
      to: newNS
preview:
  open: false
  watch: true
logging:
  level: DEBUG
  format: " JSON "
metrics:
  textfile: /tmp/doctool.prom
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Product.Module != "OpenUSDKit" {
		t.Errorf("Module = %q, want expanded env value", cfg.Product.Module)
	}
	if cfg.Product.Target != "OpenUSDKit" || cfg.Product.HostingBasePath != "Kit" {
		t.Errorf("derived product defaults = %+v", cfg.Product)
	}
	if len(cfg.Tools.Docc) != 1 || cfg.Tools.Docc[0] != "docc" {
		t.Errorf("Docc = %v", cfg.Tools.Docc)
	}
	if cfg.Tools.KillGraceDuration().Milliseconds() != 250 {
		t.Errorf("KillGraceDuration() = %v", cfg.Tools.KillGraceDuration())
	}
	if len(cfg.Extract.Defines) != 0 {
		t.Errorf("explicit empty defines replaced: %v", cfg.Extract.Defines)
	}
	if cfg.Clean.Concurrency != 3 || len(cfg.Clean.Rules) != 1 || cfg.Clean.Rules[0].To != "newNS" {
		t.Errorf("Clean = %+v", cfg.Clean)
	}
	if cfg.Preview.ShouldOpen() || !cfg.Preview.Watch {
		t.Errorf("Preview = %+v", cfg.Preview)
	}
	if cfg.Logging.Level != LogLevelDebug || cfg.Logging.Format != LogFormatJSON {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Metrics.Textfile != "/tmp/doctool.prom" {
		t.Errorf("Textfile = %q", cfg.Metrics.Textfile)
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "version: \"2.0\"\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unsupported configuration version") {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	root := t.TempDir()
	t.Chdir(t.TempDir())
	t.Setenv(EnvRoot, root)
	t.Setenv(EnvLogLevel, "warning")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Paths.Root != root {
		t.Errorf("Root = %q, want %q", cfg.Paths.Root, root)
	}
	if cfg.Logging.Level != LogLevelWarn {
		t.Errorf("Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestEnvFilesNeverOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	const fromLocal, fromDotEnv, fromProcess = "DOCTOOL_TEST_LOCAL", "DOCTOOL_TEST_DOTENV", "DOCTOOL_TEST_PROCESS"
	for _, k := range []string{fromLocal, fromDotEnv} {
		k := k
		_ = os.Unsetenv(k)
		t.Cleanup(func() { _ = os.Unsetenv(k) })
	}
	t.Setenv(fromProcess, "process")

	if err := os.WriteFile(".env.local", []byte(fromLocal+"=local\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	dotEnv := fromLocal + "=dotenv\n" + fromDotEnv + "=dotenv\n" + fromProcess + "=dotenv\n"
	if err := os.WriteFile(".env", []byte(dotEnv), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(""); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	for key, want := range map[string]string{fromLocal: "local", fromDotEnv: "dotenv", fromProcess: "process"} {
		if got := os.Getenv(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestNormalizeConfigWarnings(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Level: "loud", Format: "Console"},
		Clean:   CleanConfig{Concurrency: -2},
	}
	res := NormalizeConfig(cfg)
	if cfg.Logging.Level != LogLevelInfo {
		t.Errorf("Level = %q, want fallback info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != LogFormatPretty {
		t.Errorf("Format = %q, want pretty", cfg.Logging.Format)
	}
	if cfg.Clean.Concurrency != 0 {
		t.Errorf("Concurrency = %d, want 0 before defaults", cfg.Clean.Concurrency)
	}
	if len(res.Warnings) != 3 {
		t.Errorf("Warnings = %v, want 3", res.Warnings)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"marker with separator", func(c *Config) { c.Paths.Markers = []string{"a/b"} }, "paths.markers"},
		{"absolute namespace header", func(c *Config) { c.Paths.NamespaceHeader = "/pxr.h" }, "paths.namespace_header"},
		{"module with at sign", func(c *Config) { c.Product.Module = "Open@USD" }, "product.module"},
		{"bad kill grace", func(c *Config) { c.Tools.KillGrace = "soon" }, "tools.kill_grace"},
		{"negative kill grace", func(c *Config) { c.Tools.KillGrace = "-1s" }, "tools.kill_grace"},
		{"empty docc", func(c *Config) { c.Tools.Docc = nil }, "tools"},
		{"define with flag", func(c *Config) { c.Extract.Defines = []string{"-DFOO"} }, "extract.defines"},
		{"quoted header prefix", func(c *Config) { c.Extract.HeaderPrefix = `"x"` }, "extract.header_prefix"},
		{"rule without pattern", func(c *Config) { c.Clean.Rules = []RewriteRule{{To: "x"}} }, "clean.rules[0]"},
		{"zero concurrency", func(c *Config) { c.Clean.Concurrency = 0 }, "clean.concurrency"},
	}
	if err := ValidateConfig(Default()); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("ValidateConfig() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestDefaultApplierDomains(t *testing.T) {
	got := strings.Join(NewDefaultApplier().Domains(), ",")
	if got != "paths,product,tools,extract,clean,logging" {
		t.Errorf("Domains() = %s", got)
	}
}

func TestInit(t *testing.T) {
	t.Setenv("HOME", "/home/doc")
	path := filepath.Join(t.TempDir(), "doctool.yaml")
	if err := Init(path, false); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if err := Init(path, false); err == nil {
		t.Fatal("Init() must refuse to overwrite without force")
	}
	if err := Init(path, true); err != nil {
		t.Fatalf("Init(force) error: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(example) error: %v", err)
	}
	if cfg.Metrics.Textfile != "/home/doc/.cache/doctool/doctool.prom" {
		t.Errorf("Textfile = %q", cfg.Metrics.Textfile)
	}
	if len(cfg.Clean.Rules) != 1 {
		t.Errorf("Rules = %v", cfg.Clean.Rules)
	}
}
