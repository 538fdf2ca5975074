package config

import (
	"fmt"
	"runtime"
	"time"
)

const defaultKillGrace = 5 * time.Second

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// PathsDefaultApplier fills in the repository layout.
type PathsDefaultApplier struct{}

func (PathsDefaultApplier) Domain() string { return "paths" }

func (PathsDefaultApplier) ApplyDefaults(cfg *Config) error {
	p := &cfg.Paths
	if len(p.Markers) == 0 {
		p.Markers = []string{"docs", "Package.swift", "source", "swift-package"}
	}
	setDefault(&p.SymbolGraphs, ".symbol-graphs")
	setDefault(&p.Build, ".build")
	setDefault(&p.PackageResolved, "Package.resolved")
	setDefault(&p.Docs, "docs")
	setDefault(&p.Source, "source")
	setDefault(&p.UmbrellaHeader, "source/swiftUsd.h")
	setDefault(&p.GeneratedArticles, "source/generated")
	setDefault(&p.Include, "swift-package/Sources/_OpenUSD_SwiftBindingHelpers/include")
	setDefault(&p.NamespaceHeader, "pxr/pxr.h")
	return nil
}

// ProductDefaultApplier fills in product and module names.
type ProductDefaultApplier struct{}

func (ProductDefaultApplier) Domain() string { return "product" }

func (ProductDefaultApplier) ApplyDefaults(cfg *Config) error {
	p := &cfg.Product
	setDefault(&p.Name, "SwiftUsd")
	setDefault(&p.Module, "OpenUSD")
	setDefault(&p.Target, p.Module)
	setDefault(&p.HostingBasePath, p.Name)
	return nil
}

// ToolsDefaultApplier fills in external tool commands.
type ToolsDefaultApplier struct{}

func (ToolsDefaultApplier) Domain() string { return "tools" }

func (ToolsDefaultApplier) ApplyDefaults(cfg *Config) error {
	t := &cfg.Tools
	if len(t.Clang) == 0 {
		t.Clang = []string{"clang"}
	}
	if len(t.Swift) == 0 {
		t.Swift = []string{"swift"}
	}
	if len(t.Docc) == 0 {
		t.Docc = []string{"xcrun", "docc"}
	}
	if len(t.Open) == 0 {
		t.Open = []string{platformOpener()}
	}
	setDefault(&t.KillGrace, defaultKillGrace.String())
	return nil
}

func platformOpener() string {
	if runtime.GOOS == "darwin" {
		return "open"
	}
	return "xdg-open"
}

// ExtractDefaultApplier fills in compiler settings.
type ExtractDefaultApplier struct{}

func (ExtractDefaultApplier) Domain() string { return "extract" }

func (ExtractDefaultApplier) ApplyDefaults(cfg *Config) error {
	e := &cfg.Extract
	setDefault(&e.Language, "objective-c++-header")
	setDefault(&e.Std, "gnu++17")
	setDefault(&e.HeaderPrefix, "swiftUsd")
	if e.Defines == nil {
		e.Defines = []string{"OPENUSD_SWIFT_EMIT_SYMBOL_GRAPHS", "OPENUSD_SWIFT_BUILD_FROM_CLI"}
	}
	return nil
}

// CleanDefaultApplier sizes the cleaning worker pool.
type CleanDefaultApplier struct{}

func (CleanDefaultApplier) Domain() string { return "clean" }

func (CleanDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Clean.Concurrency <= 0 {
		cfg.Clean.Concurrency = runtime.NumCPU()
	}
	return nil
}

// LoggingDefaultApplier fills in level and format.
type LoggingDefaultApplier struct{}

func (LoggingDefaultApplier) Domain() string { return "logging" }

func (LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatPretty
	}
	return nil
}

// DefaultApplierRegistry runs every domain applier in registration order.
type DefaultApplierRegistry struct {
	appliers []DefaultApplier
}

// NewDefaultApplier returns the registry with all domain appliers. Product runs before
// anything that derives names from it.
func NewDefaultApplier() *DefaultApplierRegistry {
	return &DefaultApplierRegistry{appliers: []DefaultApplier{
		PathsDefaultApplier{},
		ProductDefaultApplier{},
		ToolsDefaultApplier{},
		ExtractDefaultApplier{},
		CleanDefaultApplier{},
		LoggingDefaultApplier{},
	}}
}

// ApplyDefaults applies every registered domain.
func (r *DefaultApplierRegistry) ApplyDefaults(cfg *Config) error {
	for _, a := range r.appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("%s defaults: %w", a.Domain(), err)
		}
	}
	return nil
}

// Domains lists the registered domains in order.
func (r *DefaultApplierRegistry) Domains() []string {
	out := make([]string, len(r.appliers))
	for i, a := range r.appliers {
		out[i] = a.Domain()
	}
	return out
}

func applyDefaults(cfg *Config) error {
	return NewDefaultApplier().ApplyDefaults(cfg)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
