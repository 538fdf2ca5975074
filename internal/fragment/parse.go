package fragment

import "strings"

// ParseTypeAndName splits `<type> <name>` into its parts. When the last fragment is a
// type identifier the whole array is the type and there is no name. A lone non-type
// fragment becomes a one-fragment type. A pointer or reference marker may sit directly
// against the name.
func ParseTypeAndName(a Array) (typ Array, name Fragment, hasName bool, err error) {
	if len(a) == 0 {
		return nil, Fragment{}, false, shapeErr("ParseTypeAndName", a, "empty declaration")
	}
	last := a[len(a)-1]
	if last.Kind == KindTypeIdentifier {
		return a.Clone(), Fragment{}, false, nil
	}
	rest := a[:len(a)-1]
	if len(rest) == 0 {
		return Array{{Kind: KindTypeIdentifier, Spelling: last.Spelling, PreciseIdentifier: last.PreciseIdentifier}}, Fragment{}, false, nil
	}
	if !endsWithDeclarator(rest) {
		rest, err = TrimTrailingSpace(rest)
		if err != nil {
			return nil, Fragment{}, false, err
		}
	}
	if len(rest) == 0 {
		return nil, Fragment{}, false, shapeErr("ParseTypeAndName", a, "no type before name %q", last.Spelling)
	}
	return rest, last, true, nil
}

// endsWithDeclarator reports a type ending in a bare `*` or `&`, which is written flush
// against the name that follows it (`double *out`).
func endsWithDeclarator(a Array) bool {
	last := a[len(a)-1]
	return last.Kind == KindText && (strings.HasSuffix(last.Spelling, "*") || strings.HasSuffix(last.Spelling, "&"))
}

// SplitParams splits a parameter list at ", " separators.
func SplitParams(a Array) ([]Array, error) {
	if len(a) == 0 {
		return nil, nil
	}
	var out []Array
	current := Array{}
	for _, f := range a {
		if f == CommaSpace {
			if len(current) == 0 {
				return nil, shapeErr("SplitParams", a, "empty parameter before separator")
			}
			out = append(out, current)
			current = Array{}
			continue
		}
		current = append(current, f)
	}
	if len(current) == 0 {
		return nil, shapeErr("SplitParams", a, "empty trailing parameter")
	}
	return append(out, current), nil
}

// ParenIndices locates the parameter list: the first text fragment starting with "(" and
// the last text fragment ending with ")". Both may be the same "()" fragment.
func ParenIndices(a Array) (lParen, rParen int, err error) {
	lParen, rParen = -1, -1
	for i, f := range a {
		if f.Kind == KindText && strings.HasPrefix(f.Spelling, "(") {
			lParen = i
			break
		}
	}
	for i := len(a) - 1; i >= 0; i-- {
		if a[i].Kind == KindText && strings.HasSuffix(strings.TrimSpace(a[i].Spelling), ")") {
			rParen = i
			break
		}
	}
	if lParen < 0 || rParen < 0 || lParen > rParen {
		return 0, 0, shapeErr("ParenIndices", a, "parentheses not found (lParen=%d rParen=%d)", lParen, rParen)
	}
	return lParen, rParen, nil
}

// IsTypeConversionOperator reports `operator <Type>` declarations.
func IsTypeConversionOperator(a Array) bool {
	for i := 0; i+2 < len(a); i++ {
		if a[i] == Operator && a[i+2].Kind == KindTypeIdentifier {
			return true
		}
	}
	return false
}

// IsTemplated reports declarations that open with the template keyword.
func IsTemplated(a Array) bool {
	return len(a) > 0 && a[0] == Template
}
