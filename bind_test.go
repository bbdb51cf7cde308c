package tinylisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeFunctionRejectsNonLambdaForm(t *testing.T) {
	in := newTestInterpreter()
	form := in.List(in.Intern("not-lambda"), in.Nil)
	_, err := in.makeFunction("", form)
	require.Error(t, err)
	sig, ok := err.(*Signal)
	require.True(t, ok)
	assert.Equal(t, ErrNotAFunction, sig.Code)
}

func TestMakeFunctionRejectsNonSymbolParameter(t *testing.T) {
	in := newTestInterpreter()
	badParams := in.List(in.NewNumber(1, true))
	form := in.Cons(in.Lambda, in.Cons(badParams, in.List(in.Nil)))
	_, err := in.makeFunction("", form)
	require.Error(t, err)
}

func TestMakeFunctionComputesArityWithRestParameter(t *testing.T) {
	in := newTestInterpreter()
	a := in.Intern("a")
	rest := in.Intern("rest")
	params := in.Cons(a, rest)
	form := in.Cons(in.Lambda, in.Cons(params, in.List(rest)))
	fn, err := in.makeFunction("variadic", form)
	require.NoError(t, err)
	assert.Equal(t, 1, fn.MinArgs)
	assert.Equal(t, -1, fn.MaxArgs)
	require.NotNil(t, fn.Rest)
	assert.Equal(t, "rest", fn.Rest.Name)
}

func TestRestParameterCollectsExtraArgs(t *testing.T) {
	in := newTestInterpreter()
	v, err := evalString(in, "((lambda (a . rest) rest) 1 2 3)")
	require.NoError(t, err)
	p, ok := v.(*Pair)
	require.True(t, ok)
	assert.Equal(t, 2.0, p.Car.(*Number).Val)
}

func TestSpecialFormReceivesUnevaluatedArgs(t *testing.T) {
	in := newTestInterpreter()
	v, err := evalString(in, "(quote (+ 1 2))")
	require.NoError(t, err)
	p, ok := v.(*Pair)
	require.True(t, ok)
	assert.Equal(t, "+", p.Car.(*Symbol).Name)
}

func TestLetrecSeesEarlierBindingLikeLetStar(t *testing.T) {
	in := newTestInterpreter()
	v, err := evalString(in, "(letrec ((x 1) (y (+ x 1))) y)")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v.(*Number).Val)
}

func TestBindingsRestoredAfterNormalReturn(t *testing.T) {
	in := newTestInterpreter()
	in.Intern("x").Value = in.NewNumber(99, true)
	_, err := evalString(in, "((lambda (x) x) 1)")
	require.NoError(t, err)
	assert.Equal(t, 99.0, in.Intern("x").Value.(*Number).Val)
}

func TestBindingsRestoredAfterError(t *testing.T) {
	in := newTestInterpreter()
	in.Intern("x").Value = in.NewNumber(99, true)
	_, err := evalString(in, "((lambda (x) (car x)) 1)")
	require.Error(t, err)
	assert.Equal(t, 99.0, in.Intern("x").Value.(*Number).Val)
}
