// Package fragment models declaration fragments, the classified tokens a symbol graph uses
// to render a declaration, and provides the small grammar used to rewrite C++ declarations
// into Swift-looking ones.
//
// Every operation in this package is a pure builder: it takes an Array and returns a new
// Array. Inputs are never modified, which keeps remapping safe when graphs are cleaned
// concurrently.
package fragment

import (
	"fmt"
	"strings"
)

// Kind classifies a fragment. Values match the symbol-graph wire format.
type Kind string

const (
	KindKeyword           Kind = "keyword"
	KindAttribute         Kind = "attribute"
	KindNumber            Kind = "number"
	KindString            Kind = "string"
	KindIdentifier        Kind = "identifier"
	KindTypeIdentifier    Kind = "typeIdentifier"
	KindGenericParameter  Kind = "genericParameter"
	KindInternalParameter Kind = "internalParam"
	KindExternalParameter Kind = "externalParam"
	KindText              Kind = "text"
)

// AnyKind disables the kind check in TrimLeading and TrimTrailing.
const AnyKind Kind = ""

// Fragment is one classified token of a declaration.
type Fragment struct {
	Kind              Kind   `json:"kind"`
	Spelling          string `json:"spelling"`
	PreciseIdentifier string `json:"preciseIdentifier,omitempty"`
}

// Array is an ordered fragment sequence.
type Array []Fragment

func text(s string) Fragment    { return Fragment{Kind: KindText, Spelling: s} }
func keyword(s string) Fragment { return Fragment{Kind: KindKeyword, Spelling: s} }

// Well-known fragments used when parsing and rebuilding declarations.
var (
	Space            = text(" ")
	CommaSpace       = text(", ")
	ColonColon       = text("::")
	ColonSpace       = text(": ")
	Colon            = text(":")
	SpaceEqualsSpace = text(" = ")
	LParenRParen     = text("()")
	LParen           = text("(")
	RParen           = text(")")
	ReturnArrow      = text("->")
	LBrace           = text("{")
	RBrace           = text("}")
	LAngle           = text("<")
	RAngle           = text(">")

	Const     = keyword("const")
	Enum      = keyword("enum")
	Var       = keyword("var")
	Typedef   = keyword("typedef")
	Typealias = keyword("typealias")
	Namespace = keyword("namespace")
	Operator  = keyword("operator")
	Static    = keyword("static")
	Init      = keyword("init")
	Mutating  = keyword("mutating")
	Func      = keyword("func")
	Extern    = keyword("extern")
	Get       = keyword("get")
	Case      = keyword("case")
	Template  = keyword("template")

	Underscore           = Fragment{Kind: KindExternalParameter, Spelling: "_"}
	VoidType             = Fragment{Kind: KindTypeIdentifier, Spelling: "Void", PreciseIdentifier: "c:v"}
	UnsafePointer        = Fragment{Kind: KindTypeIdentifier, Spelling: "UnsafePointer"}
	UnsafeMutablePointer = Fragment{Kind: KindTypeIdentifier, Spelling: "UnsafeMutablePointer"}
)

// Concat joins arrays into a fresh Array that shares no storage with its inputs.
func Concat(parts ...Array) Array {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make(Array, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Clone returns an independent copy. A nil Array stays nil.
func (a Array) Clone() Array {
	if a == nil {
		return nil
	}
	out := make(Array, len(a))
	copy(out, a)
	return out
}

// Equal reports whether both arrays hold the same fragments in the same order.
func (a Array) Equal(b Array) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String joins the spellings, which is how a declaration reads on a page.
func (a Array) String() string {
	var sb strings.Builder
	for _, f := range a {
		sb.WriteString(f.Spelling)
	}
	return sb.String()
}

// Index returns the first index of f, or -1.
func (a Array) Index(f Fragment) int {
	for i := range a {
		if a[i] == f {
			return i
		}
	}
	return -1
}

// LastIndex returns the last index of f, or -1.
func (a Array) LastIndex(f Fragment) int {
	for i := len(a) - 1; i >= 0; i-- {
		if a[i] == f {
			return i
		}
	}
	return -1
}

// Map returns a copy with fn applied to every fragment.
func (a Array) Map(fn func(Fragment) Fragment) Array {
	if a == nil {
		return nil
	}
	out := make(Array, len(a))
	for i, f := range a {
		out[i] = fn(f)
	}
	return out
}

// Dump renders one line per fragment, used for diagnostics on declarations that could
// not be converted.
func (a Array) Dump() string {
	var sb strings.Builder
	for _, f := range a {
		if f.PreciseIdentifier != "" {
			fmt.Fprintf(&sb, "%s: '%s', id: '%s'\n", f.Kind, f.Spelling, f.PreciseIdentifier)
		} else {
			fmt.Fprintf(&sb, "%s: '%s'\n", f.Kind, f.Spelling)
		}
	}
	return sb.String()
}
