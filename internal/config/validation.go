package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ValidateConfig checks a configuration after defaults have been applied.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	return v.validate()
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	if err := cv.validatePaths(); err != nil {
		return err
	}
	if err := cv.validateProduct(); err != nil {
		return err
	}
	if err := cv.validateTools(); err != nil {
		return err
	}
	if err := cv.validateExtract(); err != nil {
		return err
	}
	return cv.validateClean()
}

func (cv *configurationValidator) validatePaths() error {
	p := cv.config.Paths
	for _, m := range p.Markers {
		if m == "" || strings.ContainsRune(m, filepath.Separator) || strings.Contains(m, "/") {
			return fmt.Errorf("paths.markers: %q must be a single directory entry name", m)
		}
	}
	if filepath.IsAbs(p.NamespaceHeader) {
		return fmt.Errorf("paths.namespace_header: %q must be relative to paths.include", p.NamespaceHeader)
	}
	return nil
}

func (cv *configurationValidator) validateProduct() error {
	p := cv.config.Product
	for field, value := range map[string]string{"product.name": p.Name, "product.module": p.Module} {
		if strings.ContainsAny(value, `/\@ `) {
			return fmt.Errorf("%s: %q must not contain path separators, '@' or spaces", field, value)
		}
	}
	return nil
}

func (cv *configurationValidator) validateTools() error {
	t := cv.config.Tools
	if len(t.Clang) == 0 || len(t.Swift) == 0 || len(t.Docc) == 0 {
		return errors.New("tools: clang, swift and docc commands must not be empty")
	}
	d, err := time.ParseDuration(t.KillGrace)
	if err != nil {
		return fmt.Errorf("tools.kill_grace: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("tools.kill_grace: %s is negative", t.KillGrace)
	}
	return nil
}

func (cv *configurationValidator) validateExtract() error {
	e := cv.config.Extract
	if strings.ContainsAny(e.HeaderPrefix, `"<> `) {
		return fmt.Errorf("extract.header_prefix: %q must be a plain directory name", e.HeaderPrefix)
	}
	for _, d := range e.Defines {
		if d == "" || strings.HasPrefix(d, "-") {
			return fmt.Errorf("extract.defines: %q must be a macro definition without the -D flag", d)
		}
	}
	return nil
}

func (cv *configurationValidator) validateClean() error {
	c := cv.config.Clean
	if c.Concurrency < 1 {
		return fmt.Errorf("clean.concurrency: must be at least 1, got %d", c.Concurrency)
	}
	for i, r := range c.Rules {
		if r.From == "" {
			return fmt.Errorf("clean.rules[%d]: from must not be empty", i)
		}
	}
	return nil
}
