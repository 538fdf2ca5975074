package remap

import (
	"strings"

	"github.com/swiftusd/doctool/internal/fragment"
	"github.com/swiftusd/doctool/internal/symbolgraph"
)

// param is one parsed parameter: its type and optional internal label.
type param struct {
	typ      fragment.Array
	label    fragment.Fragment
	hasLabel bool
}

// signature collects what a C++ function declaration says before it is reassembled.
type signature struct {
	static      bool
	nonMutating bool
	constructor bool
	name        fragment.Fragment
	params      []param
	returns     fragment.Array
}

// remapFunction handles free functions, methods and static methods.
//
//	T name(P a, Q b) const;  ->  func name(_ a: P, _ b: Q) -> T
//	static T name();         ->  static func name() -> T
//	T operator==(P rhs);     ->  static func ==(_: Self, _ rhs: P) -> T
//	Name(P a);               ->  init(_ a: P)
func remapFunction(sym symbolgraph.Symbol, decl fragment.Array, view View) (Result, error) {
	if fragment.IsTypeConversionOperator(decl) {
		return skipped(sym, SkipConversionOperator)
	}
	if fragment.IsTemplated(decl) {
		return skipped(sym, SkipTemplate)
	}

	var sig signature
	var err error
	switch sym.Kind.Kind {
	case symbolgraph.KindTypeMethod:
		sig.static, sig.nonMutating = true, true
		if decl, err = fragment.TrimLeadingStatic(decl); err != nil {
			return Result{}, err
		}
		if decl, err = fragment.TrimLeadingSpace(decl); err != nil {
			return Result{}, err
		}
	case symbolgraph.KindFunc:
		sig.nonMutating = true
		if _, ok := symbolgraph.MemberOf(view.Relationships, sym.Identifier.Precise); ok {
			sig.static = true
		}
	}

	if decl, err = fragment.TrimTrailingSemicolon(decl); err != nil {
		return Result{}, err
	}
	if !sig.nonMutating {
		decl, sig.nonMutating = fragment.TryTrimTrailingConst(decl)
	}

	lParen, rParen, err := fragment.ParenIndices(decl)
	if err != nil {
		return Result{}, err
	}
	if lParen != rParen {
		groups, err := fragment.SplitParams(decl[lParen+1 : rParen])
		if err != nil {
			return Result{}, err
		}
		for _, g := range groups {
			typ, label, ok, err := fragment.ParseTypeAndName(g)
			if err != nil {
				return Result{}, err
			}
			sig.params = append(sig.params, param{typ: typ, label: label, hasLabel: ok})
		}
	}

	returns, name, hasName, err := fragment.ParseTypeAndName(decl[:lParen])
	if err != nil {
		return Result{}, err
	}
	sig.returns = returns
	sig.name = name

	kind := sym.Kind
	if hasName && strings.HasPrefix(name.Spelling, "operator") {
		sig.static, sig.nonMutating = true, true
		kind = kind.Retag(symbolgraph.KindOperator, "Operator")
		sig.name.Spelling = strings.TrimPrefix(name.Spelling, "operator")
		if owner, ok := enclosingType(sym, view); ok {
			sig.params = append([]param{{typ: owner}}, sig.params...)
		}
	}
	if !hasName {
		sig.nonMutating, sig.constructor = true, true
		sig.name = fragment.Init
		kind = kind.Retag(symbolgraph.KindInit, "Initializer")
	}

	for i := range sig.params {
		if sig.params[i].typ, err = fragment.MapCppTypeToSwift(sig.params[i].typ); err != nil {
			return Result{}, err
		}
	}
	if sig.returns, err = fragment.MapCppTypeToSwift(sig.returns); err != nil {
		return Result{}, err
	}

	out := sig.assemble()
	sym.Kind = kind
	sym.Mixins.DeclarationFragments = out
	names, err := namesFromSignature(sym.Names, out)
	if err != nil {
		return Result{}, err
	}
	sym.Names = names
	return converted(sym)
}

// enclosingType returns the type fragment of the symbol sym is a member of, used as the
// implicit left operand of a member operator.
func enclosingType(sym symbolgraph.Symbol, view View) (fragment.Array, bool) {
	rel, ok := symbolgraph.MemberOf(view.Relationships, sym.Identifier.Precise)
	if !ok {
		return nil, false
	}
	owner, ok := view.Symbols[rel.Target]
	if !ok {
		return nil, false
	}
	return fragment.Array{{
		Kind:              fragment.KindTypeIdentifier,
		Spelling:          owner.Names.Title,
		PreciseIdentifier: owner.Identifier.Precise,
	}}, true
}

func (s signature) assemble() fragment.Array {
	out := fragment.Array{}
	if s.static {
		out = append(out, fragment.Static, fragment.Space)
	}
	if !s.nonMutating {
		out = append(out, fragment.Mutating, fragment.Space)
	}
	if s.constructor {
		out = append(out, fragment.Init)
	} else {
		out = append(out, fragment.Func, fragment.Space, s.name)
	}

	if len(s.params) == 0 {
		out = append(out, fragment.LParenRParen)
	} else {
		out = append(out, fragment.LParen)
		for i, p := range s.params {
			out = append(out, fragment.Underscore, fragment.Space)
			if p.hasLabel {
				out = append(out, p.label)
			}
			out = append(out, fragment.ColonSpace)
			out = append(out, p.typ...)
			if i+1 < len(s.params) {
				out = append(out, fragment.CommaSpace)
			}
		}
		out = append(out, fragment.RParen)
	}

	if len(s.returns) > 0 && !isVoid(s.returns) {
		out = append(out, fragment.Space, fragment.ReturnArrow, fragment.Space)
		out = append(out, s.returns...)
	}
	return out
}

func isVoid(a fragment.Array) bool {
	return len(a) == 1 && a[0].Kind == fragment.KindTypeIdentifier && a[0].Spelling == fragment.VoidType.Spelling
}
