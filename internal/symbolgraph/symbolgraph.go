// Package symbolgraph reads and writes the symbol-graph JSON documents emitted by
// clang -extract-api and swiftc -emit-symbol-graph.
//
// Only the fields the cleaner rewrites are modelled. Everything else, including mixins the
// cleaner does not know about, is carried as raw JSON and written back unchanged.
package symbolgraph

import (
	"encoding/json"
	"sort"

	"github.com/swiftusd/doctool/internal/fragment"
)

// RelationshipKind names an edge type, e.g. "memberOf".
type RelationshipKind string

const (
	RelationshipMemberOf      RelationshipKind = "memberOf"
	RelationshipConformsTo    RelationshipKind = "conformsTo"
	RelationshipInheritsFrom  RelationshipKind = "inheritsFrom"
	RelationshipDefaultImpl   RelationshipKind = "defaultImplementationOf"
	RelationshipRequirementOf RelationshipKind = "requirementOf"
)

// Graph is one symbol-graph document.
type Graph struct {
	Metadata      json.RawMessage
	Module        json.RawMessage
	Symbols       map[string]Symbol
	Relationships []Relationship
	extra         map[string]json.RawMessage
}

// Identifier is a symbol's precise identifier and source language.
type Identifier struct {
	Precise           string `json:"precise"`
	InterfaceLanguage string `json:"interfaceLanguage"`
}

// Names holds the display names of a symbol.
type Names struct {
	Title      string         `json:"title"`
	SubHeading fragment.Array `json:"subHeading,omitempty"`
	Navigator  fragment.Array `json:"navigator,omitempty"`
	Prose      *string        `json:"prose,omitempty"`
}

// Symbol is one declared entity.
type Symbol struct {
	Kind           SymbolKind
	Identifier     Identifier
	Names          Names
	PathComponents []string
	Mixins         Mixins
}

// Relationship is a directed edge between two precise identifiers.
type Relationship struct {
	Kind           RelationshipKind
	Source         string
	Target         string
	TargetFallback *string
	Mixins         Mixins
}

// Mixins are the optional payloads attached to a symbol or relationship. Each known mixin
// has its own typed slot; unknown ones stay in Other.
type Mixins struct {
	DeclarationFragments fragment.Array
	FunctionSignature    *FunctionSignature
	SwiftExtension       *SwiftExtension
	Other                map[string]json.RawMessage
}

// FunctionSignature is the functionSignature mixin.
type FunctionSignature struct {
	Parameters []Parameter    `json:"parameters,omitempty"`
	Returns    fragment.Array `json:"returns,omitempty"`
}

// Parameter is one entry in a function signature; closure parameters nest through Children.
type Parameter struct {
	Name         string         `json:"name"`
	InternalName string         `json:"internalName,omitempty"`
	Fragments    fragment.Array `json:"declarationFragments,omitempty"`
	Children     []Parameter    `json:"children,omitempty"`
}

// SwiftExtension is the swiftExtension mixin. Fields other than the extended module are
// preserved verbatim.
type SwiftExtension struct {
	ExtendedModule string
	extra          map[string]json.RawMessage
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{Symbols: map[string]Symbol{}}
}

// SortedIDs returns the symbol keys in lexical order.
func (g *Graph) SortedIDs() []string {
	ids := make([]string, 0, len(g.Symbols))
	for id := range g.Symbols {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns a copy of the symbol map and relationship slice. Symbols are values, so
// rewriting the graph after taking a snapshot never shows through it.
func (g *Graph) Snapshot() (map[string]Symbol, []Relationship) {
	symbols := make(map[string]Symbol, len(g.Symbols))
	for id, s := range g.Symbols {
		symbols[id] = s
	}
	rels := make([]Relationship, len(g.Relationships))
	copy(rels, g.Relationships)
	return symbols, rels
}

// MemberOf returns the first memberOf relationship whose source is id.
func MemberOf(rels []Relationship, id string) (Relationship, bool) {
	for _, r := range rels {
		if r.Source == id && r.Kind == RelationshipMemberOf {
			return r, true
		}
	}
	return Relationship{}, false
}
