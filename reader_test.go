package tinylisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readTest struct {
	Name   string
	Source string
	Check  func(t *testing.T, in *Interpreter, v Value)
}

func readOne(t *testing.T, in *Interpreter, src string) Value {
	t.Helper()
	port := in.NewStringPort(false)
	port.Buf.Buf = append(port.Buf.Buf, src...)
	v, eof, err := newLexer(in, port).readExpr()
	require.NoError(t, err)
	require.False(t, eof)
	return v
}

func TestReadAtoms(t *testing.T) {
	tests := []readTest{
		{
			Name:   "integer",
			Source: "42",
			Check: func(t *testing.T, in *Interpreter, v Value) {
				n, ok := v.(*Number)
				require.True(t, ok)
				assert.True(t, n.IsInt)
				assert.Equal(t, 42.0, n.Val)
			},
		},
		{
			Name:   "float",
			Source: "3.5",
			Check: func(t *testing.T, in *Interpreter, v Value) {
				n, ok := v.(*Number)
				require.True(t, ok)
				assert.False(t, n.IsInt)
				assert.Equal(t, 3.5, n.Val)
			},
		},
		{
			Name:   "string",
			Source: `"a\nb"`,
			Check: func(t *testing.T, in *Interpreter, v Value) {
				s, ok := v.(*String)
				require.True(t, ok)
				assert.Equal(t, "a\nb", s.Val)
			},
		},
		{
			Name:   "symbol",
			Source: "foo-bar",
			Check: func(t *testing.T, in *Interpreter, v Value) {
				sym, ok := v.(*Symbol)
				require.True(t, ok)
				assert.Equal(t, "foo-bar", sym.Name)
			},
		},
		{
			Name:   "char hex",
			Source: `?\x41`,
			Check: func(t *testing.T, in *Interpreter, v Value) {
				c, ok := v.(*Char)
				require.True(t, ok)
				assert.Equal(t, 'A', c.Val)
			},
		},
		{
			Name:   "char octal",
			Source: `?\101`,
			Check: func(t *testing.T, in *Interpreter, v Value) {
				c, ok := v.(*Char)
				require.True(t, ok)
				assert.Equal(t, 'A', c.Val)
			},
		},
		{
			Name:   "char binary",
			Source: `?\b1010`,
			Check: func(t *testing.T, in *Interpreter, v Value) {
				c, ok := v.(*Char)
				require.True(t, ok)
				assert.Equal(t, rune(10), c.Val)
			},
		},
		{
			Name:   "char literal quote",
			Source: `?\'A`,
			Check: func(t *testing.T, in *Interpreter, v Value) {
				c, ok := v.(*Char)
				require.True(t, ok)
				assert.Equal(t, 'A', c.Val)
			},
		},
		{
			Name:   "char backslash escape",
			Source: `?\n`,
			Check: func(t *testing.T, in *Interpreter, v Value) {
				c, ok := v.(*Char)
				require.True(t, ok)
				assert.Equal(t, '\n', c.Val)
			},
		},
		{
			Name:   "dot-prefixed symbol keeps leading period",
			Source: ".foo",
			Check: func(t *testing.T, in *Interpreter, v Value) {
				sym, ok := v.(*Symbol)
				require.True(t, ok)
				assert.Equal(t, ".foo", sym.Name)
			},
		},
		{
			Name:   "dot-prefixed number reads as a float",
			Source: ".5",
			Check: func(t *testing.T, in *Interpreter, v Value) {
				n, ok := v.(*Number)
				require.True(t, ok)
				assert.False(t, n.IsInt)
				assert.Equal(t, 0.5, n.Val)
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			in := newTestInterpreter()
			tc.Check(t, in, readOne(t, in, tc.Source))
		})
	}
}

func TestReadLists(t *testing.T) {
	in := newTestInterpreter()

	v := readOne(t, in, "(1 2 3)")
	p, ok := v.(*Pair)
	require.True(t, ok)
	assert.Equal(t, 1.0, p.Car.(*Number).Val)

	dotted := readOne(t, in, "(1 . 2)")
	dp, ok := dotted.(*Pair)
	require.True(t, ok)
	assert.Equal(t, 1.0, dp.Car.(*Number).Val)
	assert.Equal(t, 2.0, dp.Cdr.(*Number).Val)

	nested := readOne(t, in, "(1 (2 3) 4)")
	np, ok := nested.(*Pair)
	require.True(t, ok)
	inner, ok := np.Cdr.(*Pair).Car.(*Pair)
	require.True(t, ok)
	assert.Equal(t, 2.0, inner.Car.(*Number).Val)
}

func TestReadVectorAndMap(t *testing.T) {
	in := newTestInterpreter()

	vec, ok := readOne(t, in, "[1 2 3]").(*Vector)
	require.True(t, ok)
	require.Len(t, vec.Elems, 3)
	assert.Equal(t, 3.0, vec.Elems[2].(*Number).Val)

	m, ok := readOne(t, in, `{"a" 1 "b" 2}`).(*Map)
	require.True(t, ok)
	assert.Equal(t, 2, m.Len())
	v, found := m.Get(in.NewString("a"))
	require.True(t, found)
	assert.Equal(t, 1.0, v.(*Number).Val)
}

func TestReadQuoteFamily(t *testing.T) {
	in := newTestInterpreter()

	quoted, ok := readOne(t, in, "'x").(*Pair)
	require.True(t, ok)
	assert.Equal(t, "quote", quoted.Car.(*Symbol).Name)

	backquoted, ok := readOne(t, in, "`x").(*Pair)
	require.True(t, ok)
	assert.Equal(t, "quasiquote", backquoted.Car.(*Symbol).Name)

	sharpQuoted, ok := readOne(t, in, "#'x").(*Pair)
	require.True(t, ok)
	assert.Equal(t, "function", sharpQuoted.Car.(*Symbol).Name)
}

func TestReadSyntaxErrorOnUnexpectedCloseParen(t *testing.T) {
	in := newTestInterpreter()
	port := in.NewStringPort(false)
	port.Buf.Buf = append(port.Buf.Buf, ")"...)
	_, _, err := newLexer(in, port).readExpr()
	require.Error(t, err)
}

func TestSymbolInterning(t *testing.T) {
	in := newTestInterpreter()
	a := in.Intern("frobnicate")
	b := in.Intern("frobnicate")
	assert.Same(t, a, b)
}
