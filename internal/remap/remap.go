// Package remap rewrites the declaration of a symbol extracted in C++ mode so that it reads
// like the Swift the importer generates for it. Only declarations whose kind has a known
// Swift shape are rewritten; everything else is returned unchanged and reported as
// unconverted so the caller can warn about it.
package remap

import (
	"fmt"

	"github.com/swiftusd/doctool/internal/fragment"
	"github.com/swiftusd/doctool/internal/symbolgraph"
)

// View is the read-only state of a graph taken before any symbol in it is remapped.
// Remapping one symbol must never observe the rewritten form of another.
type View struct {
	Symbols       map[string]symbolgraph.Symbol
	Relationships []symbolgraph.Relationship
}

// NewView snapshots g.
func NewView(g *symbolgraph.Graph) View {
	symbols, rels := g.Snapshot()
	return View{Symbols: symbols, Relationships: rels}
}

// Skip explains why a symbol was left as it was.
type Skip string

const (
	SkipNone               Skip = ""
	SkipNoDeclaration      Skip = "no declaration"
	SkipTemplate           Skip = "template"
	SkipConversionOperator Skip = "conversion operator"
	SkipAlreadySwift       Skip = "already swift"
	SkipUnsupportedKind    Skip = "unsupported kind"
)

// Result is the outcome of remapping one symbol.
type Result struct {
	Symbol    symbolgraph.Symbol
	Converted bool
	Skipped   Skip
}

func converted(sym symbolgraph.Symbol) (Result, error) {
	return Result{Symbol: sym, Converted: true}, nil
}

func skipped(sym symbolgraph.Symbol, why Skip) (Result, error) {
	return Result{Symbol: sym, Skipped: why}, nil
}

// Remap converts sym. The returned symbol shares no fragment storage with the input.
// A declaration that does not have the shape its kind promises yields an error wrapping
// fragment.ErrShape.
func Remap(sym symbolgraph.Symbol, view View) (Result, error) {
	decl := sym.Mixins.DeclarationFragments
	if decl == nil {
		return skipped(sym, SkipNoDeclaration)
	}

	var (
		res Result
		err error
	)
	switch sym.Kind.Kind {
	case symbolgraph.KindClass, symbolgraph.KindStruct:
		res, err = remapType(sym, decl)
	case symbolgraph.KindNamespace:
		res, err = remapNamespace(sym, decl)
	case symbolgraph.KindFunc, symbolgraph.KindMethod, symbolgraph.KindTypeMethod:
		res, err = remapFunction(sym, decl, view)
	case symbolgraph.KindProperty:
		res, err = remapProperty(sym, decl)
	case symbolgraph.KindTypealias:
		res, err = remapTypealias(sym, decl)
	case symbolgraph.KindVar:
		res, err = remapVar(sym, decl)
	case symbolgraph.KindEnumCase:
		res, err = remapEnumCase(sym, decl)
	case symbolgraph.KindEnum:
		res, err = remapEnum(sym, decl)
	case symbolgraph.KindInit, symbolgraph.KindOperator:
		res, err = skipped(sym, SkipAlreadySwift)
	case symbolgraph.KindOther:
		res, err = skipped(sym, SkipUnsupportedKind)
	default:
		res, err = skipped(sym, SkipUnsupportedKind)
	}
	if err != nil {
		return Result{}, fmt.Errorf("remap %s %s: %w", sym.Kind.Raw, sym.Identifier.Precise, err)
	}
	return res, nil
}

func remapType(sym symbolgraph.Symbol, decl fragment.Array) (Result, error) {
	decl, err := fragment.TrimTrailingSemicolon(decl)
	if err != nil {
		return Result{}, err
	}
	sym.Mixins.DeclarationFragments = decl
	sym.Names = namesFromDeclaration(sym.Names, decl)
	return converted(sym)
}

func remapNamespace(sym symbolgraph.Symbol, decl fragment.Array) (Result, error) {
	if len(decl) == 0 || decl[0] != fragment.Namespace {
		return Result{}, &fragment.ShapeError{Op: "namespace", Detail: "declaration does not open with the namespace keyword", Input: decl}
	}
	decl = decl.Clone()
	decl[0] = fragment.Enum
	decl, err := fragment.TrimTrailingSemicolon(decl)
	if err != nil {
		return Result{}, err
	}
	sym.Mixins.DeclarationFragments = decl
	sym.Kind = sym.Kind.Retag(symbolgraph.KindEnum, "enum")
	return converted(sym)
}

// remapProperty renders `T name;` as `var name: T { get }`.
func remapProperty(sym symbolgraph.Symbol, decl fragment.Array) (Result, error) {
	decl, err := fragment.TrimTrailingSemicolon(decl)
	if err != nil {
		return Result{}, err
	}
	name, typ, err := namedType("property", decl)
	if err != nil {
		return Result{}, err
	}
	heading := fragment.Concat(fragment.Array{fragment.Var, fragment.Space, name, fragment.ColonSpace}, typ)
	sym.Mixins.DeclarationFragments = fragment.Concat(heading, getter)
	sym.Names.SubHeading = heading
	sym.Names.Title = name.Spelling
	return converted(sym)
}

// remapTypealias renders `typedef T N;` as `typealias N = T`.
func remapTypealias(sym symbolgraph.Symbol, decl fragment.Array) (Result, error) {
	decl, err := fragment.TrimTrailingSemicolon(decl)
	if err == nil {
		decl, err = fragment.TrimLeadingTypedef(decl)
	}
	if err == nil {
		decl, err = fragment.TrimLeadingSpace(decl)
	}
	if err != nil {
		return Result{}, err
	}
	if len(decl) == 0 {
		return Result{}, &fragment.ShapeError{Op: "typealias", Detail: "no alias name", Input: sym.Mixins.DeclarationFragments}
	}
	name := decl[len(decl)-1]
	typ, err := fragment.TrimTrailingSpace(decl[:len(decl)-1])
	if err != nil {
		return Result{}, err
	}
	typ, err = fragment.MapCppTypeToSwift(typ)
	if err != nil {
		return Result{}, err
	}
	heading := fragment.Array{fragment.Typealias, fragment.Space, name}
	sym.Mixins.DeclarationFragments = fragment.Concat(heading, fragment.Array{fragment.SpaceEqualsSpace}, typ)
	sym.Names.SubHeading = heading
	sym.Names.Title = name.Spelling
	return converted(sym)
}

// remapVar renders `extern const T name;` as `var name: T { get }`.
func remapVar(sym symbolgraph.Symbol, decl fragment.Array) (Result, error) {
	decl, err := fragment.TrimTrailingSemicolon(decl)
	if err != nil {
		return Result{}, err
	}
	decl = fragment.TryTrimLeadingExternConst(decl)
	name, typ, err := namedType("var", decl)
	if err != nil {
		return Result{}, err
	}
	heading := fragment.Concat(fragment.Array{fragment.Var, fragment.Space, name, fragment.ColonSpace}, typ)
	sym.Mixins.DeclarationFragments = fragment.Concat(heading, getter)
	sym.Names.SubHeading = heading
	sym.Names.Title = name.Spelling
	return converted(sym)
}

func remapEnumCase(sym symbolgraph.Symbol, decl fragment.Array) (Result, error) {
	decl = fragment.Concat(fragment.Array{fragment.Case, fragment.Space}, decl)
	sym.Mixins.DeclarationFragments = decl
	sym.Names.SubHeading = decl.Clone()
	return converted(sym)
}

// remapEnum renders `enum Name : Base` as `enum Name`.
func remapEnum(sym symbolgraph.Symbol, decl fragment.Array) (Result, error) {
	decl, err := fragment.TrimLeadingEnum(decl)
	if err == nil {
		decl, err = fragment.TrimLeadingSpace(decl)
	}
	if err != nil {
		return Result{}, err
	}
	if len(decl) == 0 {
		return Result{}, &fragment.ShapeError{Op: "enum", Detail: "no enum name", Input: sym.Mixins.DeclarationFragments}
	}
	name := decl[0]
	decl = fragment.Array{fragment.Enum, fragment.Space, name}
	sym.Mixins.DeclarationFragments = decl
	sym.Names.SubHeading = decl.Clone()
	sym.Names.Title = name.Spelling
	return converted(sym)
}

// getter is the ` { get }` suffix of a read-only Swift property.
var getter = fragment.Array{
	fragment.Space, fragment.LBrace, fragment.Space, fragment.Get, fragment.Space, fragment.RBrace,
}

// namedType parses `T name` and maps T to Swift. A declaration without a name is a shape
// error.
func namedType(op string, decl fragment.Array) (fragment.Fragment, fragment.Array, error) {
	typ, name, ok, err := fragment.ParseTypeAndName(decl)
	if err != nil {
		return fragment.Fragment{}, nil, err
	}
	if !ok {
		return fragment.Fragment{}, nil, &fragment.ShapeError{Op: op, Detail: "declaration has no name", Input: decl}
	}
	typ, err = fragment.MapCppTypeToSwift(typ)
	if err != nil {
		return fragment.Fragment{}, nil, err
	}
	return name, typ, nil
}
