package clean

import (
	"slices"
	"strings"

	"github.com/swiftusd/doctool/internal/fragment"
	"github.com/swiftusd/doctool/internal/remap"
	"github.com/swiftusd/doctool/internal/symbolgraph"
)

// SwiftInterfaceLanguage is written into every symbol of a Swift-mode graph.
const SwiftInterfaceLanguage = "swift"

// Outcome is what happened to one symbol during the Swift-mode pass.
type Outcome struct {
	ID     string
	Kind   symbolgraph.SymbolKind
	Result remap.Result
	Before fragment.Array // declaration as extracted, for diagnostics
}

// ToSwift remaps every symbol in g against a snapshot taken before the first one is
// touched. Outcomes are returned in symbol-ID order.
func ToSwift(g *symbolgraph.Graph) ([]Outcome, error) {
	view := remap.NewView(g)
	ids := g.SortedIDs()
	symbols := make(map[string]symbolgraph.Symbol, len(ids))
	outcomes := make([]Outcome, 0, len(ids))
	for _, id := range ids {
		sym := view.Symbols[id]
		sym.Identifier.InterfaceLanguage = SwiftInterfaceLanguage
		res, err := remap.Remap(sym, view)
		if err != nil {
			return nil, err
		}
		symbols[id] = res.Symbol
		outcomes = append(outcomes, Outcome{ID: id, Kind: sym.Kind, Result: res, Before: sym.Mixins.DeclarationFragments})
	}
	g.Symbols = symbols
	return outcomes, nil
}

// genericPlaceholder is the name clang gives the first template parameter when it cannot
// spell the declared one.
const genericPlaceholder = "type-parameter-0-0"

// SubstituteGenericParameters replaces genericPlaceholder with the most recently seen
// genericParameter spelling in each declaration. Fragments before the first generic
// parameter are left alone. Returns the number of fragments changed.
func SubstituteGenericParameters(g *symbolgraph.Graph) int {
	changed := 0
	for _, id := range g.SortedIDs() {
		sym := g.Symbols[id]
		decl := sym.Mixins.DeclarationFragments
		if decl == nil {
			continue
		}
		param := ""
		out := decl.Map(func(f fragment.Fragment) fragment.Fragment {
			if f.Kind == fragment.KindGenericParameter {
				param = f.Spelling
			}
			if param != "" && strings.Contains(f.Spelling, genericPlaceholder) {
				f.Spelling = strings.ReplaceAll(f.Spelling, genericPlaceholder, param)
				changed++
			}
			return f
		})
		sym.Mixins.DeclarationFragments = out
		g.Symbols[id] = sym
	}
	return changed
}

var (
	passthroughPaths = [][]string{
		{"SwiftUsd", "PassToSwiftAsFunctionParameter"},
		{"SwiftUsd", "PassToSwiftAsReturnValue"},
	}
	rvalueSmartPointer = fragment.Fragment{Kind: fragment.KindTypeIdentifier, Spelling: "SmartPointer &", PreciseIdentifier: "c:t0.0"}
)

// PatchResult reports what PatchPassthrough did.
type PatchResult struct {
	Patched []string // symbols whose parameter was respelled
	Missing []string // passthrough symbols without the expected fragment
}

// PatchPassthrough respells the reference parameter of the passthrough helpers so that it
// reads as a plain SmartPointer.
func PatchPassthrough(g *symbolgraph.Graph) PatchResult {
	var res PatchResult
	for _, id := range g.SortedIDs() {
		sym := g.Symbols[id]
		if !isPassthrough(sym.PathComponents) || sym.Mixins.DeclarationFragments == nil {
			continue
		}
		i := sym.Mixins.DeclarationFragments.Index(rvalueSmartPointer)
		if i < 0 {
			res.Missing = append(res.Missing, id)
			continue
		}
		decl := sym.Mixins.DeclarationFragments.Clone()
		decl[i].Spelling = "SmartPointer"
		sym.Mixins.DeclarationFragments = decl
		g.Symbols[id] = sym
		res.Patched = append(res.Patched, id)
	}
	return res
}

func isPassthrough(path []string) bool {
	for _, p := range passthroughPaths {
		if slices.Equal(path, p) {
			return true
		}
	}
	return false
}
