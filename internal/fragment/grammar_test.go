package fragment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeID(s string) Fragment { return Fragment{Kind: KindTypeIdentifier, Spelling: s} }
func ident(s string) Fragment  { return Fragment{Kind: KindIdentifier, Spelling: s} }

func TestTrimTrailingSemicolon(t *testing.T) {
	decl := Array{keyword("class"), Space, ident("UsdStage"), text(";")}

	out, err := TrimTrailingSemicolon(decl)
	require.NoError(t, err)
	assert.Equal(t, Array{keyword("class"), Space, ident("UsdStage")}, out)
	assert.Equal(t, text(";"), decl[3], "input must not be modified")

	_, err = TrimTrailingSemicolon(out)
	require.Error(t, err, "second trim has no semicolon left to remove")
	assert.True(t, errors.Is(err, ErrShape))
}

func TestTrimTrailingKeepsFragmentWithRemainder(t *testing.T) {
	out, err := TrimTrailingSemicolon(Array{ident("f"), text(");")})
	require.NoError(t, err)
	assert.Equal(t, Array{ident("f"), text(")")}, out)
}

func TestTrimLeading(t *testing.T) {
	cases := []struct {
		name string
		in   Array
		s    string
		kind Kind
		want Array
		err  bool
	}{
		{"drops emptied fragment", Array{Typedef, Space, typeID("int")}, "typedef", KindKeyword, Array{Space, typeID("int")}, false},
		{"keeps remainder", Array{text(" x"), typeID("int")}, " ", AnyKind, Array{text("x"), typeID("int")}, false},
		{"kind mismatch", Array{text("typedef")}, "typedef", KindKeyword, nil, true},
		{"prefix mismatch", Array{Enum}, "static", KindKeyword, nil, true},
		{"empty", Array{}, " ", AnyKind, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := TrimLeading(tc.in, tc.s, tc.kind)
			if tc.err {
				require.ErrorIs(t, err, ErrShape)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTryTrimTrailing(t *testing.T) {
	t.Run("const", func(t *testing.T) {
		out, ok := TryTrimTrailingConst(Array{text(") "), Const})
		assert.True(t, ok)
		assert.Equal(t, Array{text(") ")}, out)

		same, ok := TryTrimTrailingConst(out)
		assert.False(t, ok)
		assert.Equal(t, out, same)
	})

	t.Run("star removes whitespace-only remainder", func(t *testing.T) {
		out, ok := TryTrimTrailingStar(Array{typeID("T"), text(" *")})
		assert.True(t, ok)
		assert.Equal(t, Array{typeID("T")}, out)
	})

	t.Run("ampersand keeps text before marker", func(t *testing.T) {
		out, ok := TryTrimTrailingAmpersand(Array{typeID("T"), text(">&")})
		assert.True(t, ok)
		assert.Equal(t, Array{typeID("T"), text(">")}, out)
	})

	t.Run("no marker", func(t *testing.T) {
		in := Array{typeID("T")}
		out, ok := TryTrimTrailingStar(in)
		assert.False(t, ok)
		assert.Equal(t, in, out)
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := TryTrimTrailingAmpersand(nil)
		assert.False(t, ok)
	})
}

func TestTryTrimLeadingExternConst(t *testing.T) {
	in := Array{Extern, Space, Const, Space, typeID("double"), Space, ident("kPi")}
	assert.Equal(t, Array{typeID("double"), Space, ident("kPi")}, TryTrimLeadingExternConst(in))

	plain := Array{Const, Space, typeID("double")}
	assert.Equal(t, plain, TryTrimLeadingExternConst(plain))
}

func TestArrayHelpers(t *testing.T) {
	a := Array{Func, Space, ident("f"), LParenRParen}
	assert.Equal(t, "func f()", a.String())
	assert.Equal(t, 1, a.Index(Space))
	assert.Equal(t, -1, a.Index(LParen))
	assert.Equal(t, 3, a.LastIndex(LParenRParen))
	assert.True(t, a.Equal(a.Clone()))
	assert.Nil(t, Array(nil).Clone())
	assert.Equal(t, Array{Func, Space}, Concat(Array{Func}, nil, Array{Space}))

	dump := Array{VoidType, Space}.Dump()
	assert.Contains(t, dump, "typeIdentifier: 'Void', id: 'c:v'")
	assert.Contains(t, dump, "text: ' '")
}
