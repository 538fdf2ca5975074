// Package identfix rewrites identifiers across a whole symbol graph: the workaround
// namespace used while extracting, the library's versioned internal namespace, and the
// Objective-C module suffix that the compiler gives C++ interop graphs.
package identfix

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/swiftusd/doctool/internal/fragment"
	"github.com/swiftusd/doctool/internal/symbolgraph"
)

// Rule replaces every occurrence of From with To.
type Rule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Fixer applies an ordered rule set. It is safe for concurrent use.
type Fixer struct {
	rules []Rule
}

// NewFixer orders rules so that longer patterns run first. A mangled name such as
// "21pxrDocCCppWorkarounds" must be rewritten before its unmangled substring is. Rules
// with an empty pattern are dropped.
func NewFixer(rules ...Rule) *Fixer {
	kept := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.From != "" {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return len(kept[i].From) > len(kept[j].From) })
	return &Fixer{rules: kept}
}

// Rules returns the rules in application order.
func (f *Fixer) Rules() []Rule {
	out := make([]Rule, len(f.rules))
	copy(out, f.rules)
	return out
}

// String applies every rule to s.
func (f *Fixer) String(s string) string {
	for _, r := range f.rules {
		if strings.Contains(s, r.From) {
			s = strings.ReplaceAll(s, r.From, r.To)
		}
	}
	return s
}

func (f *Fixer) optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := f.String(*s)
	return &v
}

func (f *Fixer) fragment(fr fragment.Fragment) fragment.Fragment {
	fr.Spelling = f.String(fr.Spelling)
	fr.PreciseIdentifier = f.String(fr.PreciseIdentifier)
	return fr
}

func (f *Fixer) fragments(a fragment.Array) fragment.Array {
	return a.Map(f.fragment)
}

func (f *Fixer) parameters(params []symbolgraph.Parameter) []symbolgraph.Parameter {
	if params == nil {
		return nil
	}
	out := make([]symbolgraph.Parameter, len(params))
	for i, p := range params {
		p.Fragments = f.fragments(p.Fragments)
		p.Children = f.parameters(p.Children)
		out[i] = p
	}
	return out
}

func (f *Fixer) mixins(mx symbolgraph.Mixins) symbolgraph.Mixins {
	mx.DeclarationFragments = f.fragments(mx.DeclarationFragments)
	if mx.FunctionSignature != nil {
		sig := symbolgraph.FunctionSignature{
			Parameters: f.parameters(mx.FunctionSignature.Parameters),
			Returns:    f.fragments(mx.FunctionSignature.Returns),
		}
		mx.FunctionSignature = &sig
	}
	if mx.SwiftExtension != nil {
		ext := *mx.SwiftExtension
		ext.ExtendedModule = f.String(ext.ExtendedModule)
		mx.SwiftExtension = &ext
	}
	return mx
}

// Symbol returns a rewritten copy of s.
func (f *Fixer) Symbol(s symbolgraph.Symbol) symbolgraph.Symbol {
	s.Identifier.Precise = f.String(s.Identifier.Precise)
	s.Names.Title = f.String(s.Names.Title)
	s.Names.SubHeading = f.fragments(s.Names.SubHeading)
	s.Names.Navigator = f.fragments(s.Names.Navigator)
	s.Names.Prose = f.optional(s.Names.Prose)
	if s.PathComponents != nil {
		path := make([]string, len(s.PathComponents))
		for i, p := range s.PathComponents {
			path[i] = f.String(p)
		}
		s.PathComponents = path
	}
	s.Mixins = f.mixins(s.Mixins)
	return s
}

// Relationship returns a rewritten copy of r.
func (f *Fixer) Relationship(r symbolgraph.Relationship) symbolgraph.Relationship {
	r.Source = f.String(r.Source)
	r.Target = f.String(r.Target)
	r.TargetFallback = f.optional(r.TargetFallback)
	r.Mixins = f.mixins(r.Mixins)
	return r
}

// Graph rewrites g in place, symbol keys included. Applying the same fixer twice leaves the
// graph unchanged as long as no rule's replacement contains another rule's pattern.
func (f *Fixer) Graph(g *symbolgraph.Graph) {
	symbols := make(map[string]symbolgraph.Symbol, len(g.Symbols))
	for _, id := range g.SortedIDs() {
		symbols[f.String(id)] = f.Symbol(g.Symbols[id])
	}
	g.Symbols = symbols
	for i, r := range g.Relationships {
		g.Relationships[i] = f.Relationship(r)
	}
}

const (
	// WorkaroundNamespace is the namespace the binding headers declare their documentation
	// helpers in.
	WorkaroundNamespace = "pxrDocCCppWorkarounds"
	// PublicNamespace is the name readers know the library namespace by.
	PublicNamespace = "pxr"
)

// DefaultRules returns the built-in rule set followed by extra.
func DefaultRules(internalNamespace string, extra ...Rule) []Rule {
	rules := []Rule{
		{From: mangled(WorkaroundNamespace), To: mangled(PublicNamespace)},
		{From: WorkaroundNamespace, To: PublicNamespace},
		{From: internalNamespace, To: PublicNamespace},
		{From: "__ObjC", To: "C++"},
	}
	return append(rules, extra...)
}

// mangled returns the length-prefixed form an Itanium-mangled name uses for s.
func mangled(s string) string {
	return fmt.Sprintf("%d%s", len(s), s)
}

var internalNamespaceDefine = regexp.MustCompile(`^#define PXR_INTERNAL_NS\s+([^ ]*)\s*$`)

// ErrNoInternalNamespace is returned when the namespace header does not define
// PXR_INTERNAL_NS.
var ErrNoInternalNamespace = errors.New("PXR_INTERNAL_NS is not defined")

// DiscoverInternalNamespace scans a header for `#define PXR_INTERNAL_NS <name>`.
func DiscoverInternalNamespace(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if m := internalNamespaceDefine.FindStringSubmatch(sc.Text()); m != nil && m[1] != "" {
			return m[1], nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", ErrNoInternalNamespace
}

// ReadInternalNamespace opens path and calls DiscoverInternalNamespace.
func ReadInternalNamespace(path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = fh.Close() }()
	ns, err := DiscoverInternalNamespace(fh)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return ns, nil
}
