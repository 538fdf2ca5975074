package commands

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftusd/doctool/internal/config"
	"github.com/swiftusd/doctool/internal/foundation/errors"
)

func TestNewLogHandler(t *testing.T) {
	var buf bytes.Buffer

	_, ok := NewLogHandler(&buf, config.LogFormatJSON, slog.LevelInfo).(*slog.JSONHandler)
	assert.True(t, ok)
	_, ok = NewLogHandler(&buf, config.LogFormatText, slog.LevelInfo).(*slog.TextHandler)
	assert.True(t, ok)

	h := NewLogHandler(&buf, config.LogFormatPretty, slog.LevelWarn)
	assert.False(t, h.Enabled(t.Context(), slog.LevelInfo))
	slog.New(h).Warn("careful", slog.String("file", "a.json"))
	assert.Contains(t, buf.String(), "careful")
	assert.NotContains(t, buf.String(), "\x1b[", "no color when not writing to a terminal")
}

func TestInitWritesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doctool.yaml")
	var out bytes.Buffer
	g := &Global{Stdout: &out, Stderr: &out}

	require.NoError(t, (&InitCmd{}).Run(g, &CLI{Config: path}))
	assert.Contains(t, out.String(), path)
	_, err := os.Stat(path)
	require.NoError(t, err)

	err = (&InitCmd{}).Run(g, &CLI{Config: path})
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	require.NoError(t, (&InitCmd{Force: true}).Run(g, &CLI{Config: path}))
}

func TestBuildOutsideRepository(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvRoot, "")
	var out bytes.Buffer
	g := &Global{Stdout: &out, Stderr: &out}

	err := (&BuildCmd{}).Run(g, &CLI{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestMissingExplicitConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	g := &Global{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}

	err := (&UpdateCmd{}).Run(g, &CLI{Config: "missing.yaml"})
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}
