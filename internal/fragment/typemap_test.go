package fragment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapCppTypeToSwift(t *testing.T) {
	stage := Fragment{Kind: KindTypeIdentifier, Spelling: "UsdStage", PreciseIdentifier: "c:@S@UsdStage"}

	cases := []struct {
		name string
		in   Array
		want Array
	}{
		{
			name: "const reference collapses to value",
			in:   Array{Const, Space, stage, text(" &")},
			want: Array{stage},
		},
		{
			name: "const reference with trailing space",
			in:   Array{Const, Space, stage, text(" & ")},
			want: Array{stage},
		},
		{
			name: "mutable pointer",
			in:   Array{stage, text(" *")},
			want: Array{UnsafeMutablePointer, LAngle, stage, RAngle},
		},
		{
			name: "const pointer",
			in:   Array{Const, Space, stage, text(" *")},
			want: Array{UnsafePointer, LAngle, stage, RAngle},
		},
		{
			name: "mutable reference",
			in:   Array{stage, text(" &")},
			want: Array{UnsafeMutablePointer, LAngle, stage, RAngle},
		},
		{
			name: "primitive",
			in:   Array{typeID("int")},
			want: Array{typeID("CInt")},
		},
		{
			name: "primitive pointer keeps inner spelling",
			in:   Array{typeID("double"), text(" *")},
			want: Array{UnsafeMutablePointer, LAngle, typeID("Double"), RAngle},
		},
		{
			name: "namespace separator",
			in:   Array{Const, Space, text("std"), ColonColon, typeID("string"), text(" &")},
			want: Array{text("std"), text("."), typeID("string")},
		},
		{
			name: "leading const value",
			in:   Array{Const, Space, typeID("bool")},
			want: Array{typeID("Bool")},
		},
		{
			name: "unknown type untouched",
			in:   Array{typeID("TfToken")},
			want: Array{typeID("TfToken")},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orig := tc.in.Clone()
			got, err := MapCppTypeToSwift(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, orig, tc.in, "input must not be modified")
		})
	}
}

func TestMapCppTypeToSwiftConstRefOfEveryTypeIsIdentity(t *testing.T) {
	for _, name := range []string{"UsdPrim", "SdfPath", "TfToken", "GfVec3f"} {
		typ := Fragment{Kind: KindTypeIdentifier, Spelling: name, PreciseIdentifier: "c:@S@" + name}
		got, err := MapCppTypeToSwift(Array{Const, Space, typ, text(" &")})
		require.NoError(t, err)
		assert.Equal(t, Array{typ}, got, name)
	}
}

func TestMapCppTypeToSwiftEmpty(t *testing.T) {
	_, err := MapCppTypeToSwift(Array{})
	require.ErrorIs(t, err, ErrShape)
}
