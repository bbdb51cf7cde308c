package tinylisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type evalTest struct {
	Name     string
	Source   string
	WantNum  *float64
	WantNil  bool
	WantT    bool
	WantErr  bool
	CheckVal func(t *testing.T, in *Interpreter, v Value)
}

func f(v float64) *float64 { return &v }

func TestEvalCore(t *testing.T) {
	tests := []evalTest{
		{Name: "self-evaluating number", Source: "42", WantNum: f(42)},
		{Name: "arithmetic", Source: "(+ 1 2 3)", WantNum: f(6)},
		{Name: "subtraction unary negation", Source: "(- 5)", WantNum: f(-5)},
		{Name: "quote", Source: "(quote (1 2))", CheckVal: func(t *testing.T, in *Interpreter, v Value) {
			p, ok := v.(*Pair)
			require.True(t, ok)
			assert.Equal(t, 1.0, p.Car.(*Number).Val)
		}},
		{Name: "if true branch", Source: "(if t 1 2)", WantNum: f(1)},
		{Name: "if false branch", Source: "(if nil 1 2)", WantNum: f(2)},
		{Name: "if no else", Source: "(if nil 1)", WantNil: true},
		{Name: "cond matches second clause", Source: "(cond (nil 1) (t 2))", WantNum: f(2)},
		{Name: "and short circuits", Source: "(and 1 nil 2)", WantNil: true},
		{Name: "or returns first truthy", Source: "(or nil 5 6)", WantNum: f(5)},
		{Name: "progn returns last", Source: "(progn 1 2 3)", WantNum: f(3)},
		{Name: "prog1 returns first", Source: "(prog1 1 2 3)", WantNum: f(1)},
		{Name: "prog2 returns second", Source: "(prog2 1 2 3)", WantNum: f(2)},
		{Name: "setq mutates binding", Source: "(progn (setq x 1) (setq x (+ x 1)) x)", WantNum: f(2)},
		{Name: "let is parallel", Source: "(progn (setq x 1) (let ((x 2) (y x)) y))", WantNum: f(1)},
		{Name: "let* is sequential", Source: "(progn (setq x 1) (let* ((x 2) (y x)) y))", WantNum: f(2)},
		{Name: "while loop", Source: "(progn (setq i 0) (setq acc 0) (while (< i 5) (setq acc (+ acc i)) (setq i (+ i 1))) acc)", WantNum: f(10)},
		{Name: "lambda application", Source: "((lambda (x) (* x x)) 7)", WantNum: f(49)},
		{Name: "defun and call", Source: "(progn (defun sq (x) (* x x)) (sq 6))", WantNum: f(36)},
		{Name: "car on non-list signals", Source: "(car 5)", WantErr: true},
		{Name: "errset catches error as string", Source: "(errset (car 5))", CheckVal: func(t *testing.T, in *Interpreter, v Value) {
			s, ok := v.(*String)
			require.True(t, ok)
			assert.Contains(t, s.Val, "list operation on non-list")
		}},
		{Name: "errset wraps success in list", Source: "(errset 1 2 3)", CheckVal: func(t *testing.T, in *Interpreter, v Value) {
			p, ok := v.(*Pair)
			require.True(t, ok)
			assert.Equal(t, 3.0, p.Car.(*Number).Val)
			assert.Equal(t, in.Nil, p.Cdr)
		}},
		{Name: "unwind-protect runs cleanup forms", Source: "(progn (setq ran nil) (unwind-protect 1 (setq ran t)) ran)", WantT: true},
		{Name: "funcall", Source: "(funcall (lambda (x y) (+ x y)) 3 4)", WantNum: f(7)},
		{Name: "apply spreads list", Source: "(apply (lambda (x y) (+ x y)) (list 3 4))", WantNum: f(7)},
	}

	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			in := newTestInterpreter()
			v, err := evalString(in, tc.Source)
			if tc.WantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			switch {
			case tc.WantNum != nil:
				n, ok := v.(*Number)
				require.True(t, ok, "expected a number, got %T", v)
				assert.Equal(t, *tc.WantNum, n.Val)
			case tc.WantNil:
				assert.Equal(t, in.Nil, v)
			case tc.WantT:
				assert.Equal(t, in.T, v)
			case tc.CheckVal != nil:
				tc.CheckVal(t, in, v)
			}
		})
	}
}

func TestMakeFunctionRestParameter(t *testing.T) {
	in := newTestInterpreter()
	v, err := evalString(in, "(progn (defun f (a . rest) rest) (f 1 2 3))")
	require.NoError(t, err)
	p, ok := v.(*Pair)
	require.True(t, ok)
	assert.Equal(t, 2.0, p.Car.(*Number).Val)
}

func TestArityErrorRestoresBindings(t *testing.T) {
	in := newTestInterpreter()
	_, err := evalString(in, "(progn (defun f (a b) (+ a b)) (f 1))")
	require.Error(t, err)
	assert.Nil(t, in.Intern("a").Value, "partial binding from the failed call must be unwound")
}

func TestEvalUndefinedSymbol(t *testing.T) {
	in := newTestInterpreter()
	_, err := evalString(in, "totally-undefined-symbol-xyz")
	require.Error(t, err)
	sig, ok := err.(*Signal)
	require.True(t, ok)
	assert.Equal(t, ErrEval, sig.Code)
}

func TestTraceFlipsOnFunction(t *testing.T) {
	in := newTestInterpreter()
	_, err := evalString(in, "(progn (defun f (x) x) (trace f))")
	require.NoError(t, err)
	fn, ok := in.Intern("f").Function.(*Function)
	require.True(t, ok)
	assert.True(t, fn.Trace)
}
