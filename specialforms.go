package tinylisp

import (
	"fmt"
	"time"
)

// defBuiltin interns name and installs a non-special builtin: args
// have already been evaluated left-to-right by evalfun before fn runs.
func defBuiltin(in *Interpreter, name string, minArgs, maxArgs int, fn BuiltinFunc) {
	sym := in.Intern(name)
	sym.Function = in.newFunction(&Function{
		Kind: FuncBuiltin, Name: name, MinArgs: minArgs, MaxArgs: maxArgs, Builtin: fn,
	})
}

// defSpecial interns name and installs a special builtin: fn receives
// its argument forms raw, unevaluated, and is responsible for calling
// in.Eval itself wherever the form requires it.
func defSpecial(in *Interpreter, name string, minArgs, maxArgs int, fn BuiltinFunc) {
	sym := in.Intern(name)
	sym.Function = in.newFunction(&Function{
		Kind: FuncBuiltin, Name: name, MinArgs: minArgs, MaxArgs: maxArgs, IsSpecial: true, Builtin: fn,
	})
}

func truthy(in *Interpreter, v Value) bool {
	return v != in.Nil
}

// evalBody evaluates a sequence of forms in order and returns the
// value of the last one, the shared core of progn/let/lambda bodies.
func evalBody(in *Interpreter, body []Value) (Value, error) {
	var result Value = in.Nil
	for _, expr := range body {
		v, err := in.Eval(expr)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

func installSpecialForms(in *Interpreter) {
	defSpecial(in, "quote", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		return args[0], nil
	})

	defSpecial(in, "if", 2, 3, func(in *Interpreter, args []Value) (Value, error) {
		cond, err := in.Eval(args[0])
		if err != nil {
			return nil, err
		}
		if truthy(in, cond) {
			return in.Eval(args[1])
		}
		if len(args) == 3 {
			return in.Eval(args[2])
		}
		return in.Nil, nil
	})

	// cond evaluates only the first form after a matching clause's test
	// and returns its value; any further forms in that clause are not
	// evaluated (there is no implicit progn body). A clause with no form
	// after its test returns the test's value.
	defSpecial(in, "cond", 0, -1, func(in *Interpreter, args []Value) (Value, error) {
		for _, clause := range args {
			p, ok := clause.(*Pair)
			if !ok {
				return nil, in.throwErrorf(ErrListOpOnNonList, clause, "cond clause is not a list")
			}
			test, err := in.Eval(p.Car)
			if err != nil {
				return nil, err
			}
			if !truthy(in, test) {
				continue
			}
			if cp, ok := p.Cdr.(*Pair); ok {
				return in.Eval(cp.Car)
			}
			return test, nil
		}
		return in.Nil, nil
	})

	defSpecial(in, "and", 0, -1, func(in *Interpreter, args []Value) (Value, error) {
		var result Value = in.T
		for _, a := range args {
			v, err := in.Eval(a)
			if err != nil {
				return nil, err
			}
			if !truthy(in, v) {
				return in.Nil, nil
			}
			result = v
		}
		return result, nil
	})

	defSpecial(in, "or", 0, -1, func(in *Interpreter, args []Value) (Value, error) {
		for _, a := range args {
			v, err := in.Eval(a)
			if err != nil {
				return nil, err
			}
			if truthy(in, v) {
				return v, nil
			}
		}
		return in.Nil, nil
	})

	defSpecial(in, "while", 1, -1, func(in *Interpreter, args []Value) (Value, error) {
		for {
			cond, err := in.Eval(args[0])
			if err != nil {
				return nil, err
			}
			if !truthy(in, cond) {
				return in.Nil, nil
			}
			if _, err := evalBody(in, args[1:]); err != nil {
				return nil, err
			}
		}
	})

	defSpecial(in, "progn", 0, -1, func(in *Interpreter, args []Value) (Value, error) {
		return evalBody(in, args)
	})

	defSpecial(in, "prog1", 1, -1, func(in *Interpreter, args []Value) (Value, error) {
		first, err := in.Eval(args[0])
		if err != nil {
			return nil, err
		}
		if _, err := evalBody(in, args[1:]); err != nil {
			return nil, err
		}
		return first, nil
	})

	defSpecial(in, "prog2", 2, -1, func(in *Interpreter, args []Value) (Value, error) {
		if _, err := in.Eval(args[0]); err != nil {
			return nil, err
		}
		second, err := in.Eval(args[1])
		if err != nil {
			return nil, err
		}
		if _, err := evalBody(in, args[2:]); err != nil {
			return nil, err
		}
		return second, nil
	})

	defSpecial(in, "let", 1, -1, letForm(false))
	defSpecial(in, "let*", 1, -1, letForm(true))
	defSpecial(in, "letrec", 1, -1, letForm(true))

	defSpecial(in, "lambda", 1, -1, lambdaLikeForm(func(in *Interpreter) *Symbol { return in.Lambda }))
	defSpecial(in, "special", 1, -1, lambdaLikeForm(func(in *Interpreter) *Symbol { return in.SpecialMarker }))

	defSpecial(in, "defun", 2, -1, defineForm(false))
	defSpecial(in, "defspecial", 2, -1, defineForm(true))

	defSpecial(in, "setq", 2, 2, func(in *Interpreter, args []Value) (Value, error) {
		sym, ok := args[0].(*Symbol)
		if !ok {
			return nil, in.throwErrorf(ErrNotASymbol, args[0], "setq target is not a symbol")
		}
		if sym.h.immutable {
			return nil, in.throwErrorf(ErrImmutableWrite, sym, "%s: cannot setq an immutable symbol", sym.Name)
		}
		val, err := in.Eval(args[1])
		if err != nil {
			return nil, err
		}
		sym.Value = val
		return val, nil
	})

	defSpecial(in, "unwind-protect", 1, -1, func(in *Interpreter, args []Value) (Value, error) {
		val, err := in.Eval(args[0])
		for _, cleanup := range args[1:] {
			in.Eval(cleanup) //nolint: errcheck // cleanup errors are not propagated
		}
		return val, err
	})

	defSpecial(in, "errset", 0, -1, func(in *Interpreter, args []Value) (Value, error) {
		val, err := evalBody(in, args)
		if sig, ok := err.(*Signal); ok {
			return in.NewString(PrintString(in, sig, false)), nil
		}
		if err != nil {
			return nil, err
		}
		return in.List(val), nil
	})

	defSpecial(in, "time", 0, 0, func(in *Interpreter, args []Value) (Value, error) {
		return in.NewNumber(float64(time.Now().Unix()), true), nil
	})

	defSpecial(in, "measure", 0, -1, func(in *Interpreter, args []Value) (Value, error) {
		start := time.Now()
		val, err := evalBody(in, args)
		elapsed := time.Since(start).Seconds()
		in.Stdout.WriteString(fmt.Sprintf(";; elapsed: %gs\n", elapsed))
		return val, err
	})

	defSpecial(in, "trace", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		sym, ok := args[0].(*Symbol)
		if !ok {
			return nil, in.throwErrorf(ErrNotASymbol, args[0], "trace target is not a symbol")
		}
		f, ok := sym.Function.(*Function)
		if !ok {
			return nil, in.throwErrorf(ErrNotAFunction, sym, "%s: no function to trace", sym.Name)
		}
		f.Trace = true
		return sym, nil
	})

	defSpecial(in, "function", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		return in.resolveFunction(args[0])
	})

	defBuiltin(in, "funcall", 1, -1, func(in *Interpreter, args []Value) (Value, error) {
		f, err := in.resolveFunction(args[0])
		if err != nil {
			return nil, err
		}
		return in.apply(f, in.List(args[1:]...), 0)
	})

	defBuiltin(in, "apply", 2, 2, func(in *Interpreter, args []Value) (Value, error) {
		f, err := in.resolveFunction(args[0])
		if err != nil {
			return nil, err
		}
		return in.apply(f, args[1], 0)
	})

	defBuiltin(in, "symbol-function", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		sym, ok := args[0].(*Symbol)
		if !ok {
			return nil, in.throwErrorf(ErrNotASymbol, args[0], "not a symbol")
		}
		if sym.Function == nil {
			return in.Nil, nil
		}
		return sym.Function, nil
	})

	defBuiltin(in, "apropos", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		s, ok := args[0].(*String)
		if !ok {
			return nil, in.throwErrorf(ErrInvalidArgument, args[0], "apropos pattern must be a string")
		}
		var matches []Value
		in.Symbols.each(func(sym *Symbol) {
			if containsSubstring(sym.Name, s.Val) {
				matches = append(matches, sym)
			}
		})
		return in.List(matches...), nil
	})

	defBuiltin(in, "load", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		s, ok := args[0].(*String)
		if !ok {
			return nil, in.throwErrorf(ErrInvalidArgument, args[0], "load filename must be a string")
		}
		if err := in.LoadFile(s.Val); err != nil {
			return nil, err
		}
		return in.T, nil
	})

	defBuiltin(in, "prin1", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		in.Stdout.WriteString(PrintString(in, args[0], true))
		return args[0], nil
	})
	defBuiltin(in, "princ", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		in.Stdout.WriteString(PrincString(in, args[0]))
		return args[0], nil
	})
	defBuiltin(in, "prin1s", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		return in.NewString(PrintString(in, args[0], true)), nil
	})
	defBuiltin(in, "princs", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		return in.NewString(PrincString(in, args[0])), nil
	})
}

func containsSubstring(s, sub string) bool {
	if sub == "" {
		return true
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

// resolveFunction is the shared core of the function special form and
// of funcall/apply's first argument: a Symbol resolves through its
// function slot, a raw (lambda ...)/(special ...) form is wrapped, and
// an already-built *Function passes through.
func (in *Interpreter) resolveFunction(v Value) (*Function, error) {
	switch t := v.(type) {
	case *Function:
		return t, nil
	case *Symbol:
		fn := t.Function
		if fn == nil {
			return nil, in.throwErrorf(ErrNotAFunction, t, "%s: no function definition", t.Name)
		}
		if f, ok := fn.(*Function); ok && f.Kind == FuncAutoload {
			return in.autoload(f, 0)
		}
		return in.resolveFunction(fn)
	case *Pair:
		if isLambdaForm(in, t) || isSpecialForm(in, t) {
			return in.makeFunction("", t)
		}
		evaled, err := in.Eval(t)
		if err != nil {
			return nil, err
		}
		return in.resolveFunction(evaled)
	default:
		return nil, in.throwErrorf(ErrNotAFunction, v, "not a function object")
	}
}

// lambdaLikeForm builds the Builtin for the lambda/special special
// forms themselves: called with raw (params body...) args, it
// reconstructs the full (marker params . body) form and hands it to
// makeFunction, so evaluating a bare `lambda` symbol call produces the
// same closure structural recognition in evalfun already shortcuts.
func lambdaLikeForm(marker func(*Interpreter) *Symbol) BuiltinFunc {
	return func(in *Interpreter, args []Value) (Value, error) {
		form := in.Cons(marker(in), in.List(args...))
		return in.makeFunction("", form)
	}
}

// defineForm backs defun/defspecial: (defun name (params) body...)
// builds the function, installs it under name's function slot, and
// returns name.
func defineForm(special bool) BuiltinFunc {
	return func(in *Interpreter, args []Value) (Value, error) {
		sym, ok := args[0].(*Symbol)
		if !ok {
			return nil, in.throwErrorf(ErrNotASymbol, args[0], "definition name is not a symbol")
		}
		marker := in.Lambda
		if special {
			marker = in.SpecialMarker
		}
		form := in.Cons(marker, in.List(args[1:]...))
		fn, err := in.makeFunction(sym.Name, form)
		if err != nil {
			return nil, err
		}
		sym.Function = fn
		return sym, nil
	}
}

// letForm backs let (parallel) and let*/letrec (sequential). Parallel
// evaluates every value form before any binding is installed;
// sequential installs each binding before evaluating the next value
// form, so later bindings can see earlier ones.
func letForm(sequential bool) BuiltinFunc {
	return func(in *Interpreter, args []Value) (Value, error) {
		specs := listToSlice(in, args[0])
		mark := Mark(len(in.Bindings.entries))

		bindOne := func(spec Value) (*Symbol, Value, error) {
			if sym, ok := spec.(*Symbol); ok {
				return sym, in.Nil, nil
			}
			p, ok := spec.(*Pair)
			if !ok {
				return nil, nil, in.throwErrorf(ErrBadLetArglist, spec, "let binding is not a symbol or (symbol value)")
			}
			sym, ok := p.Car.(*Symbol)
			if !ok {
				return nil, nil, in.throwErrorf(ErrNotASymbol, p.Car, "let binding target is not a symbol")
			}
			valForm, ok := p.Cdr.(*Pair)
			if !ok {
				return sym, in.Nil, nil
			}
			val, err := in.Eval(valForm.Car)
			if err != nil {
				return nil, nil, err
			}
			return sym, val, nil
		}

		if sequential {
			for _, spec := range specs {
				sym, val, err := bindOne(spec)
				if err != nil {
					in.Bindings.PopTo(mark)
					return nil, err
				}
				in.Bindings.Push(sym, val)
			}
		} else {
			type pending struct {
				sym *Symbol
				val Value
			}
			var vals []pending
			for _, spec := range specs {
				sym, val, err := bindOne(spec)
				if err != nil {
					return nil, err
				}
				vals = append(vals, pending{sym, val})
			}
			for _, pv := range vals {
				in.Bindings.Push(pv.sym, pv.val)
			}
		}

		result, err := evalBody(in, args[1:])
		in.restoreBindings(mark, 0)
		return result, err
	}
}
