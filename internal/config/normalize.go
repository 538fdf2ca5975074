package config

import (
	"fmt"
	"strings"
)

// NormalizationResult captures coercions made while normalizing.
type NormalizationResult struct{ Warnings []string }

func (r *NormalizationResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// NormalizeConfig canonicalizes enumerations and bounds before defaults are applied. It
// mutates c in place.
func NormalizeConfig(c *Config) *NormalizationResult {
	res := &NormalizationResult{}
	normalizeLogging(&c.Logging, res)
	normalizeClean(&c.Clean, res)
	normalizeTools(&c.Tools)
	return res
}

func normalizeLogging(l *LoggingConfig, res *NormalizationResult) {
	if raw := string(l.Level); strings.TrimSpace(raw) != "" {
		if lvl, ok := logLevelNormalizer.Lookup(raw); ok {
			if lvl != l.Level {
				res.warn("logging.level: %q normalized to %q", raw, lvl)
			}
			l.Level = lvl
		} else {
			res.warn("logging.level: unknown value %q, using %q", raw, logLevelNormalizer.Default())
			l.Level = logLevelNormalizer.Default()
		}
	}
	if raw := string(l.Format); strings.TrimSpace(raw) != "" {
		if f, ok := logFormatNormalizer.Lookup(raw); ok {
			if f != l.Format {
				res.warn("logging.format: %q normalized to %q", raw, f)
			}
			l.Format = f
		} else {
			res.warn("logging.format: unknown value %q, using %q", raw, logFormatNormalizer.Default())
			l.Format = logFormatNormalizer.Default()
		}
	}
}

func normalizeClean(c *CleanConfig, res *NormalizationResult) {
	if c.Concurrency < 0 {
		res.warn("clean.concurrency: negative value %d, using the default", c.Concurrency)
		c.Concurrency = 0
	}
}

// normalizeTools drops empty argv entries so that `docc: ["", "docc"]` behaves like `["docc"]`.
func normalizeTools(t *ToolsConfig) {
	t.Clang = compact(t.Clang)
	t.Swift = compact(t.Swift)
	t.Docc = compact(t.Docc)
	t.Open = compact(t.Open)
}

func compact(argv []string) []string {
	if argv == nil {
		return nil
	}
	out := argv[:0:0]
	for _, a := range argv {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
