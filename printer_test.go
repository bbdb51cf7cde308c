package tinylisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintNumbers(t *testing.T) {
	in := newTestInterpreter()
	assert.Equal(t, "42", PrintString(in, in.NewNumber(42, true), true))
	assert.Equal(t, "3.5", PrintString(in, in.NewNumber(3.5, false), true))
}

func TestPrintStringReadVsPrinc(t *testing.T) {
	in := newTestInterpreter()
	s := in.NewString("a\nb")
	assert.Equal(t, `"a\nb"`, PrintString(in, s, true))
	assert.Equal(t, "a\nb", PrincString(in, s))
}

func TestPrintList(t *testing.T) {
	in := newTestInterpreter()
	list := in.List(in.NewNumber(1, true), in.NewNumber(2, true), in.NewNumber(3, true))
	assert.Equal(t, "(1 2 3)", PrintString(in, list, true))
}

func TestPrintDottedPair(t *testing.T) {
	in := newTestInterpreter()
	p := in.Cons(in.NewNumber(1, true), in.NewNumber(2, true))
	assert.Equal(t, "(1 . 2)", PrintString(in, p, true))
}

func TestPrintVector(t *testing.T) {
	in := newTestInterpreter()
	vec := in.NewVector(0)
	vec.Elems = append(vec.Elems, in.T, in.Nil)
	assert.Equal(t, "[t nil]", PrintString(in, vec, true))
}

func TestPrintSymbol(t *testing.T) {
	in := newTestInterpreter()
	assert.Equal(t, "nil", PrintString(in, in.Nil, true))
	assert.Equal(t, "t", PrintString(in, in.T, false))
}

func TestReadPrintRoundTrip(t *testing.T) {
	in := newTestInterpreter()
	for _, src := range []string{"42", `"a\nb"`, "foo", "(1 2 3)"} {
		v := readOne(t, in, src)
		printed := PrintString(in, v, true)
		reRead := readOne(t, in, printed)
		assert.True(t, valuesEql(v, reRead) || PrintString(in, v, true) == PrintString(in, reRead, true))
	}
}
