package extract

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftusd/doctool/internal/config"
	"github.com/swiftusd/doctool/internal/layout"
	"github.com/swiftusd/doctool/internal/procs"
	"github.com/swiftusd/doctool/internal/procs/procstest"
)

const umbrella = `#ifndef SWIFTUSD_H
#define SWIFTUSD_H
#include "swiftUsd/Util/Wrapper.h"
  #include "swiftUsd/Generated/Tokens.h"
#include <vector>
#includeforswiftdocc "swiftUsd/Util/Wrapper.h"
#includeforswiftdocc "swiftUsd/Docs/Only.h"  
#include "other/Ignored.h"
#endif
`

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
}

func newRepo(t *testing.T) (*layout.Layout, *config.Config) {
	t.Helper()
	cfg := config.Default()
	l := layout.New(t.TempDir(), cfg)
	touch(t, l.UmbrellaHeader)
	require.NoError(t, os.WriteFile(l.UmbrellaHeader, []byte(umbrella), 0o644))
	touch(t, filepath.Join(l.Source, "Util", "Wrapper.h"))
	touch(t, filepath.Join(l.Source, "Docs", "Only.h"))
	return l, cfg
}

func TestParseUmbrella(t *testing.T) {
	u, err := ParseUmbrella(strings.NewReader(umbrella), "swiftUsd")
	require.NoError(t, err)

	var cpp, swift []string
	for _, h := range u.Cpp {
		cpp = append(cpp, h.Rel)
		assert.Equal(t, layout.ModeCpp, h.Mode)
	}
	for _, h := range u.Swift {
		swift = append(swift, h.Rel)
		assert.Equal(t, layout.ModeSwift, h.Mode)
	}
	assert.Equal(t, []string{"Util/Wrapper.h", "Generated/Tokens.h"}, cpp)
	assert.Equal(t, []string{"Util/Wrapper.h", "Docs/Only.h"}, swift)
	assert.Len(t, u.All(), 4)
	assert.Equal(t, layout.ModeCpp, u.All()[0].Mode)
	assert.Equal(t, layout.ModeSwift, u.All()[3].Mode)
}

func TestResolveHeadersPrefersSource(t *testing.T) {
	l, _ := newRepo(t)
	u, err := ReadUmbrella(l, "swiftUsd")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(l.Source, "Util", "Wrapper.h"), u.Cpp[0].Path)
	assert.Equal(t, filepath.Join(l.Include, "swiftUsd", "Generated", "Tokens.h"), u.Cpp[1].Path)
}

func TestNativeRunsClangOncePerHeader(t *testing.T) {
	l, cfg := newRepo(t)
	runner := (&procstest.Runner{}).On("clang", func(cmd procs.Command) ([]string, error) {
		touch(t, cmd.Argv[3])
		return nil, nil
	})

	n, err := New(l, cfg, runner).Native(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	cmds := runner.Commands()
	require.Len(t, cmds, 4)
	first := cmds[0]
	assert.Equal(t, "clang", first.Tool)
	assert.Equal(t, l.Root, first.Dir)
	assert.Equal(t, []string{
		"clang", "-extract-api",
		"-o", filepath.Join(l.SymbolGraphs, "OpenUSD@Wrapper.h.cpp.symbols.json"),
		"-x", "objective-c++-header",
		"-isystem", l.Include,
		"-isystem", l.Source,
		"-std=gnu++17",
		"--product-name=OpenUSD",
		"-DOPENUSD_SWIFT_EMIT_SYMBOL_GRAPHS",
		"-DOPENUSD_SWIFT_BUILD_FROM_CLI",
		filepath.Join(l.Source, "Util", "Wrapper.h"),
	}, first.Argv)
	for _, c := range cmds {
		assert.Equal(t, 1, countSuffix(c.Argv, ".h"), "one header per invocation: %v", c.Argv)
	}

	var names []string
	entries, err := os.ReadDir(l.SymbolGraphs)
	require.NoError(t, err)
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"OpenUSD@Only.h.swift.symbols.json",
		"OpenUSD@Tokens.h.cpp.symbols.json",
		"OpenUSD@Wrapper.h.cpp.symbols.json",
		"OpenUSD@Wrapper.h.swift.symbols.json",
	}, names)
}

func countSuffix(argv []string, suffix string) int {
	n := 0
	for _, a := range argv {
		if strings.HasSuffix(a, suffix) {
			n++
		}
	}
	return n
}

func TestNativeStopsOnFailure(t *testing.T) {
	l, cfg := newRepo(t)
	runner := (&procstest.Runner{}).On("clang", procstest.Exit(1))

	_, err := New(l, cfg, runner).Native(context.Background())
	var exitErr *procs.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Contains(t, err.Error(), "Util/Wrapper.h")
	assert.Len(t, runner.Commands(), 1)
}

func TestNativeMissingUmbrella(t *testing.T) {
	cfg := config.Default()
	l := layout.New(t.TempDir(), cfg)
	_, err := New(l, cfg, &procstest.Runner{}).Native(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHostRenamesAndPrunes(t *testing.T) {
	l, cfg := newRepo(t)
	runner := (&procstest.Runner{}).On("swift build", func(procs.Command) ([]string, error) {
		touch(t, l.HostObjCGraph())
		touch(t, filepath.Join(l.SymbolGraphs, "OpenUSD@Swift.symbols.json"))
		touch(t, filepath.Join(l.SymbolGraphs, "SwiftSyntax.symbols.json"))
		touch(t, filepath.Join(l.SymbolGraphs, "SwiftParser", "x.json"))
		return nil, nil
	})

	require.NoError(t, New(l, cfg, runner).Host(context.Background()))

	cmd := runner.Commands()[0]
	assert.Equal(t, l.Root, cmd.Dir)
	line := cmd.String()
	assert.True(t, strings.HasPrefix(line, "swift build --target OpenUSD -Xswiftc -emit-symbol-graph -Xswiftc -emit-symbol-graph-dir -Xswiftc "+l.SymbolGraphs))
	assert.Contains(t, line, "-Xswiftc -emit-extension-block-symbols")
	assert.Contains(t, line, "-Xswiftc -DOPENUSD_SWIFT_BUILD_FROM_CLI")
	assert.Contains(t, line, "-Xcxx -DOPENUSD_SWIFT_EMIT_SYMBOL_GRAPHS")

	entries, err := os.ReadDir(l.SymbolGraphs)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{"OpenUSD@C++.symbols.json", "OpenUSD@Swift.symbols.json"}, names)
}

func TestHostMissingInteropGraph(t *testing.T) {
	l, cfg := newRepo(t)
	err := New(l, cfg, &procstest.Runner{}).Host(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rename C++ interop graph")
}

func TestSaveRaw(t *testing.T) {
	l, cfg := newRepo(t)
	touch(t, filepath.Join(l.SymbolGraphs, "OpenUSD@C++.symbols.json"))
	touch(t, filepath.Join(l.SymbolGraphs, "OpenUSD@A.h.cpp.symbols.json"))
	touch(t, filepath.Join(l.SymbolGraphs, "OpenUSD@B.h.swift.symbols.json.safe"))

	n, err := New(l, cfg, &procstest.Runner{}).SaveRaw(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, name := range []string{"OpenUSD@C++.symbols.json", "OpenUSD@A.h.cpp.symbols.json"} {
		_, err := os.Stat(filepath.Join(l.SymbolGraphs, name+layout.RawSuffix))
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(filepath.Join(l.SymbolGraphs, "OpenUSD@B.h.swift.symbols.json.safe.safe"))
	assert.True(t, os.IsNotExist(err))
}
