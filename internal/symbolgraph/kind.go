package symbolgraph

import "strings"

// Kind is the closed set of symbol kinds the cleaner understands. Anything else decodes
// as KindOther and keeps its raw wire identifier.
type Kind int

const (
	KindOther Kind = iota
	KindClass
	KindStruct
	KindNamespace
	KindFunc
	KindMethod
	KindTypeMethod
	KindProperty
	KindTypealias
	KindVar
	KindEnum
	KindEnumCase
	KindInit
	KindOperator
)

var kindNames = map[Kind]string{
	KindOther:      "other",
	KindClass:      "class",
	KindStruct:     "struct",
	KindNamespace:  "namespace",
	KindFunc:       "func",
	KindMethod:     "method",
	KindTypeMethod: "type.method",
	KindProperty:   "property",
	KindTypealias:  "typealias",
	KindVar:        "var",
	KindEnum:       "enum",
	KindEnumCase:   "enum.case",
	KindInit:       "init",
	KindOperator:   "func.op",
}

var kindDisplayNames = map[Kind]string{
	KindClass:      "Class",
	KindStruct:     "Structure",
	KindNamespace:  "Namespace",
	KindFunc:       "Function",
	KindMethod:     "Instance Method",
	KindTypeMethod: "Type Method",
	KindProperty:   "Instance Property",
	KindTypealias:  "Type Alias",
	KindVar:        "Global Variable",
	KindEnum:       "Enumeration",
	KindEnumCase:   "Case",
	KindInit:       "Initializer",
	KindOperator:   "Operator",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		if k != KindOther {
			m[name] = k
		}
	}
	return m
}()

// languagePrefixes are stripped from wire identifiers before lookup. Longer prefixes come
// first so "objective-c++." is not read as "objective-c".
var languagePrefixes = []string{"objective-c++.", "objective-c.", "c++.", "swift.", "c."}

// String returns the language-independent identifier, e.g. "type.method".
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "other"
}

// DisplayName returns the human readable kind name used by documentation renderers.
func (k Kind) DisplayName() string {
	return kindDisplayNames[k]
}

// ParseKind maps a wire identifier such as "c++.func" or "objective-c++.namespace" to a Kind.
func ParseKind(identifier string) Kind {
	rest := identifier
	for _, p := range languagePrefixes {
		if strings.HasPrefix(rest, p) {
			rest = strings.TrimPrefix(rest, p)
			break
		}
	}
	if k, ok := kindsByName[rest]; ok {
		return k
	}
	return KindOther
}

// SymbolKind is the kind as it appears on a symbol. Raw and DisplayName are the decoded
// wire values; they are written back untouched unless Retag changed the kind.
type SymbolKind struct {
	Kind        Kind
	Raw         string
	DisplayName string
}

// NewSymbolKind builds a SymbolKind from wire values.
func NewSymbolKind(raw, displayName string) SymbolKind {
	return SymbolKind{Kind: ParseKind(raw), Raw: raw, DisplayName: displayName}
}

// Retag returns the kind rewritten for a Swift-mode declaration.
func (k SymbolKind) Retag(kind Kind, displayName string) SymbolKind {
	if displayName == "" {
		displayName = kind.DisplayName()
	}
	return SymbolKind{Kind: kind, Raw: "swift." + kind.String(), DisplayName: displayName}
}
