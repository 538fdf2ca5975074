package remap

import (
	"strings"

	"github.com/swiftusd/doctool/internal/fragment"
	"github.com/swiftusd/doctool/internal/symbolgraph"
)

// namesFromDeclaration uses the declaration itself as subheading and its text as title.
func namesFromDeclaration(n symbolgraph.Names, decl fragment.Array) symbolgraph.Names {
	n.SubHeading = decl.Clone()
	n.Title = decl.String()
	return n
}

// namesFromSignature derives the names of a Swift function declaration.
//
//	func foo(bar x: Int, _ y: String) -> Bool
//
// gets the subheading `func foo(bar: Int, String) -> Bool` and the title `foo(bar:_:)`.
func namesFromSignature(n symbolgraph.Names, decl fragment.Array) (symbolgraph.Names, error) {
	n.SubHeading = subheadingFromSignature(decl)
	title, err := titleFromSignature(decl)
	if err != nil {
		return n, err
	}
	n.Title = title
	return n, nil
}

// subheadingFromSignature drops internal labels. An internal label skips everything up to
// the following colon; an `_` external label also skips the colon itself.
func subheadingFromSignature(decl fragment.Array) fragment.Array {
	out := fragment.Array{}
	seeking, dropColon := false, false
	for _, f := range decl {
		if seeking {
			if f != fragment.Colon && f != fragment.ColonSpace {
				continue
			}
			seeking = false
			if dropColon {
				dropColon = false
				continue
			}
		}
		switch {
		case f.Kind == fragment.KindInternalParameter:
			seeking, dropColon = true, false
		case f == fragment.Underscore:
			seeking, dropColon = true, true
		default:
			out = append(out, f)
		}
	}
	return out
}

func titleFromSignature(decl fragment.Array) (string, error) {
	lParen := decl.Index(fragment.LParen)
	if lParen < 0 {
		lParen = decl.Index(fragment.LParenRParen)
	}
	rParen := decl.LastIndex(fragment.RParen)
	if rParen < 0 {
		rParen = decl.LastIndex(fragment.LParenRParen)
	}
	if lParen < 1 || rParen < lParen {
		return "", &fragment.ShapeError{Op: "title", Detail: "no function name before parameter list", Input: decl}
	}

	var sb strings.Builder
	sb.WriteString(decl[lParen-1].Spelling)
	sb.WriteByte('(')
	if lParen != rParen {
		for _, f := range decl[lParen+1 : rParen] {
			if f.Kind == fragment.KindExternalParameter {
				sb.WriteString(f.Spelling)
				sb.WriteByte(':')
			}
		}
	}
	sb.WriteByte(')')
	return sb.String(), nil
}
