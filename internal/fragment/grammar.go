package fragment

import (
	"errors"
	"fmt"
	"strings"
)

// ErrShape marks a declaration that does not have the shape the grammar expects:
//
//	field:    type name ;
//	param:    type name? (, param)?
//	function: type name ( param? ) const? ;
//
// The extractor is a trusted upstream stage, so a shape error points at a gap in the
// remapper rather than at bad input.
var ErrShape = errors.New("declaration shape violation")

// ShapeError describes which grammar operation failed and on what input.
type ShapeError struct {
	Op     string
	Detail string
	Input  Array
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s: %s (in %q)", ErrShape, e.Op, e.Detail, e.Input.String())
}

func (e *ShapeError) Unwrap() error { return ErrShape }

func shapeErr(op string, in Array, format string, args ...any) error {
	return &ShapeError{Op: op, Detail: fmt.Sprintf(format, args...), Input: in}
}

// TrimLeading removes prefix s from the first fragment, dropping that fragment when it
// becomes empty. kind is checked unless it is AnyKind.
func TrimLeading(a Array, s string, kind Kind) (Array, error) {
	if len(a) == 0 {
		return nil, shapeErr("TrimLeading", a, "empty declaration, expected %q", s)
	}
	first := a[0]
	if kind != AnyKind && first.Kind != kind {
		return nil, shapeErr("TrimLeading", a, "first fragment is %s, expected %s", first.Kind, kind)
	}
	if !strings.HasPrefix(first.Spelling, s) {
		return nil, shapeErr("TrimLeading", a, "first fragment %q does not start with %q", first.Spelling, s)
	}
	out := a.Clone()
	out[0].Spelling = strings.TrimPrefix(first.Spelling, s)
	if out[0].Spelling == "" {
		out = out[1:]
	}
	return out, nil
}

// TrimTrailing removes suffix s from the last fragment, dropping that fragment when it
// becomes empty. kind is checked unless it is AnyKind.
func TrimTrailing(a Array, s string, kind Kind) (Array, error) {
	if len(a) == 0 {
		return nil, shapeErr("TrimTrailing", a, "empty declaration, expected %q", s)
	}
	last := a[len(a)-1]
	if kind != AnyKind && last.Kind != kind {
		return nil, shapeErr("TrimTrailing", a, "last fragment is %s, expected %s", last.Kind, kind)
	}
	if !strings.HasSuffix(last.Spelling, s) {
		return nil, shapeErr("TrimTrailing", a, "last fragment %q does not end with %q", last.Spelling, s)
	}
	out := a.Clone()
	out[len(out)-1].Spelling = strings.TrimSuffix(last.Spelling, s)
	if out[len(out)-1].Spelling == "" {
		out = out[:len(out)-1]
	}
	return out, nil
}

func TrimTrailingSemicolon(a Array) (Array, error) { return TrimTrailing(a, ";", KindText) }
func TrimLeadingTypedef(a Array) (Array, error)    { return TrimLeading(a, "typedef", KindKeyword) }
func TrimLeadingEnum(a Array) (Array, error)       { return TrimLeading(a, "enum", KindKeyword) }
func TrimLeadingStatic(a Array) (Array, error)     { return TrimLeading(a, "static", KindKeyword) }
func TrimLeadingSpace(a Array) (Array, error)      { return TrimLeading(a, " ", AnyKind) }
func TrimTrailingSpace(a Array) (Array, error)     { return TrimTrailing(a, " ", AnyKind) }

// TryTrimTrailingConst drops a trailing const keyword.
func TryTrimTrailingConst(a Array) (Array, bool) {
	if len(a) == 0 || a[len(a)-1] != Const {
		return a, false
	}
	return a[:len(a)-1].Clone(), true
}

// TryTrimTrailingStar drops a trailing pointer marker.
func TryTrimTrailingStar(a Array) (Array, bool) { return tryTrimTrailingMarker(a, "*") }

// TryTrimTrailingAmpersand drops a trailing reference marker.
func TryTrimTrailingAmpersand(a Array) (Array, bool) { return tryTrimTrailingMarker(a, "&") }

// tryTrimTrailingMarker cuts the last fragment at the final occurrence of marker when the
// fragment ends with it (ignoring surrounding whitespace). A fragment left holding only
// whitespace is removed.
func tryTrimTrailingMarker(a Array, marker string) (Array, bool) {
	if len(a) == 0 {
		return a, false
	}
	last := a[len(a)-1].Spelling
	if !strings.HasSuffix(strings.TrimSpace(last), marker) {
		return a, false
	}
	out := a.Clone()
	out[len(out)-1].Spelling = last[:strings.LastIndex(last, marker)]
	if strings.TrimSpace(out[len(out)-1].Spelling) == "" {
		out = out[:len(out)-1]
	}
	return out, true
}

// TryTrimLeadingExternConst drops a leading `extern const ` run.
func TryTrimLeadingExternConst(a Array) Array {
	prefix := Array{Extern, Space, Const, Space}
	if len(a) < len(prefix) || !a[:len(prefix)].Equal(prefix) {
		return a
	}
	return a[len(prefix):].Clone()
}
