package extract

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/swiftusd/doctool/internal/layout"
)

// Header is one header named by the umbrella file.
type Header struct {
	Mode layout.Mode
	Rel  string // path after the header prefix, e.g. "Util/Wrapper.h"
	Path string // resolved absolute path
}

// Umbrella holds the headers listed by the umbrella header, C++-mode first.
type Umbrella struct {
	Cpp   []Header
	Swift []Header
}

// All returns every header in extraction order.
func (u Umbrella) All() []Header {
	out := make([]Header, 0, len(u.Cpp)+len(u.Swift))
	out = append(out, u.Cpp...)
	return append(out, u.Swift...)
}

type umbrellaPatterns struct {
	cpp   *regexp.Regexp
	swift *regexp.Regexp
}

func newUmbrellaPatterns(prefix string) umbrellaPatterns {
	p := regexp.QuoteMeta(prefix)
	return umbrellaPatterns{
		cpp:   regexp.MustCompile(`^\s*#include\s*"` + p + `/(.*)"\s*$`),
		swift: regexp.MustCompile(`^\s*#includeforswiftdocc\s*"` + p + `/(.*)"\s*$`),
	}
}

// ParseUmbrella reads `#include "<prefix>/X"` lines as C++-mode headers and
// `#includeforswiftdocc "<prefix>/X"` lines as Swift-mode headers. A header may appear in
// both lists. Paths are left unresolved.
func ParseUmbrella(r io.Reader, prefix string) (Umbrella, error) {
	pats := newUmbrellaPatterns(prefix)
	var u Umbrella
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if m := pats.cpp.FindStringSubmatch(line); m != nil {
			u.Cpp = append(u.Cpp, Header{Mode: layout.ModeCpp, Rel: m[1]})
		} else if m := pats.swift.FindStringSubmatch(line); m != nil {
			u.Swift = append(u.Swift, Header{Mode: layout.ModeSwift, Rel: m[1]})
		}
	}
	if err := sc.Err(); err != nil {
		return Umbrella{}, err
	}
	return u, nil
}

// ResolveHeaders points each header at the source tree when it exists there and at the
// generated include tree otherwise.
func ResolveHeaders(u Umbrella, l *layout.Layout, prefix string) Umbrella {
	resolve := func(hs []Header) []Header {
		out := make([]Header, len(hs))
		for i, h := range hs {
			inSource := filepath.Join(l.Source, filepath.FromSlash(h.Rel))
			if _, err := os.Stat(inSource); err == nil {
				h.Path = inSource
			} else {
				h.Path = filepath.Join(l.Include, prefix, filepath.FromSlash(h.Rel))
			}
			out[i] = h
		}
		return out
	}
	return Umbrella{Cpp: resolve(u.Cpp), Swift: resolve(u.Swift)}
}

// ReadUmbrella parses and resolves the layout's umbrella header.
func ReadUmbrella(l *layout.Layout, prefix string) (Umbrella, error) {
	fh, err := os.Open(l.UmbrellaHeader)
	if err != nil {
		return Umbrella{}, fmt.Errorf("open umbrella header: %w", err)
	}
	defer func() { _ = fh.Close() }()
	u, err := ParseUmbrella(fh, prefix)
	if err != nil {
		return Umbrella{}, fmt.Errorf("read umbrella header %s: %w", l.UmbrellaHeader, err)
	}
	return ResolveHeaders(u, l, prefix), nil
}
