package fragment

import "strings"

// primitiveTypes maps C++ builtin spellings to the Swift types the importer uses.
var primitiveTypes = map[string]string{
	"bool":   "Bool",
	"int":    "CInt",
	"double": "Double",
	"void":   "Void",
}

// MapCppTypeToSwift rewrites a C++ type into its Swift spelling.
//
//	ns::T         -> ns.T
//	const T &     -> T
//	const T *     -> UnsafePointer<T>
//	T * / T &     -> UnsafeMutablePointer<T>
//	int           -> CInt (and the rest of primitiveTypes)
func MapCppTypeToSwift(a Array) (Array, error) {
	if len(a) == 0 {
		return nil, shapeErr("MapCppTypeToSwift", a, "empty type")
	}

	out := a.Map(func(f Fragment) Fragment {
		if f == ColonColon {
			f.Spelling = "."
		}
		return f
	})

	if len(out) >= 3 {
		last := out[len(out)-1]
		lastIsRef := last.Kind == KindText && strings.TrimSpace(last.Spelling) == "&"
		if out[0] == Const && out[1] == Space && lastIsRef {
			out = out[2 : len(out)-1]
		}
	}

	hadLeadingConst := false
	if len(out) >= 3 && out[0] == Const && out[1] == Space {
		out = out[2:]
		hadLeadingConst = true
	}

	needsPointer := false
	if len(out) >= 2 {
		var trimmed bool
		if out, trimmed = TryTrimTrailingStar(out); trimmed {
			needsPointer = true
		} else if out, trimmed = TryTrimTrailingAmpersand(out); trimmed {
			needsPointer = true
		}
	}

	if len(out) == 1 && out[0].Kind == KindTypeIdentifier {
		if swift, ok := primitiveTypes[out[0].Spelling]; ok {
			out = out.Clone()
			out[0].Spelling = swift
		}
	}

	if needsPointer {
		wrapper := UnsafeMutablePointer
		if hadLeadingConst {
			wrapper = UnsafePointer
		}
		out = Concat(Array{wrapper, LAngle}, out, Array{RAngle})
	}
	return out.Clone(), nil
}
