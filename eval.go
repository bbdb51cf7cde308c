package tinylisp

import (
	"fmt"
	"os"
	"path/filepath"
)

// Eval dispatches on ob's type: a Symbol yields its value slot, a
// Pair delegates to evalfun with car as the function position and cdr
// as the raw argument list, anything else self-evaluates.
func (in *Interpreter) Eval(ob Value) (Value, error) {
	return in.eval(ob, 0)
}

func (in *Interpreter) eval(ob Value, level int) (Value, error) {
	in.EvalCount++
	if in.TraceFlag {
		in.trace(level, "eval[%d] %s", level, PrintString(in, ob, false))
	}
	switch t := ob.(type) {
	case *Symbol:
		if t.Value == nil {
			return nil, in.throwErrorf(ErrEval, t, "%s: undefined symbol", t.Name)
		}
		return t.Value, nil
	case *Pair:
		return in.evalfun(t.Car, t.Cdr, level+1)
	default:
		return ob, nil
	}
}

func isLambdaForm(in *Interpreter, ob Value) bool {
	p, ok := ob.(*Pair)
	return ok && p.Car == in.Lambda
}

func isSpecialForm(in *Interpreter, ob Value) bool {
	p, ok := ob.(*Pair)
	return ok && p.Car == in.SpecialMarker
}

// evalfun resolves head to a callable Function, evaluates the
// argument list unless the function is special, and applies it.
func (in *Interpreter) evalfun(head, args Value, level int) (Value, error) {
	var fn Value = head
	switch t := head.(type) {
	case *Pair:
		if !isLambdaForm(in, t) && !isSpecialForm(in, t) {
			v, err := in.eval(head, level)
			if err != nil {
				return nil, err
			}
			fn = v
		}
	case *Symbol:
		fn = t.Function
		if fn == nil {
			fn = t.Value
		}
		if fn == nil {
			return nil, in.throwErrorf(ErrNotAFunction, t, "%s: no function definition", t.Name)
		}
	}

	if f, ok := fn.(*Function); ok && f.Kind == FuncAutoload {
		resolved, err := in.autoload(f, level)
		if err != nil {
			return nil, err
		}
		fn = resolved
	}

	if isLambdaForm(in, fn) || isSpecialForm(in, fn) {
		f, err := in.makeFunction("", fn)
		if err != nil {
			return nil, err
		}
		fn = f
	}

	f, ok := fn.(*Function)
	if !ok {
		return nil, in.throwErrorf(ErrNotAFunction, fn, "not a function object")
	}

	var evaledArgs Value = in.Nil
	if !f.IsSpecial {
		vals := []Value{}
		for elem := args; elem != in.Nil; {
			p, ok := elem.(*Pair)
			if !ok {
				return nil, in.throwErrorf(ErrListOpOnNonList, elem, "argument list is not a proper list")
			}
			v, err := in.eval(p.Car, level)
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
			elem = p.Cdr
		}
		evaledArgs = in.List(vals...)
	} else {
		evaledArgs = args
	}

	if f.Trace {
		in.trace(level, "(%s %s)", f.Name, printArgs(in, evaledArgs))
	}
	return in.apply(f, evaledArgs, level)
}

func printArgs(in *Interpreter, args Value) string {
	out := ""
	first := true
	for elem := args; elem != in.Nil; {
		p, ok := elem.(*Pair)
		if !ok {
			break
		}
		if !first {
			out += " "
		}
		first = false
		out += PrintString(in, p.Car, false)
		elem = p.Cdr
	}
	return out
}

// makeFunction validates a raw (lambda (params...) body...) or
// (special (params...) body...) form and wraps it as a *Function,
// computing minargs/maxargs and detecting a trailing rest parameter.
func (in *Interpreter) makeFunction(name string, form Value) (*Function, error) {
	if f, ok := form.(*Function); ok {
		return f, nil
	}
	p, ok := form.(*Pair)
	if !ok {
		return nil, in.throwErrorf(ErrNotAFunction, form, "not a function object or list")
	}
	marker := p.Car
	isSpecial := marker == in.SpecialMarker
	if marker != in.Lambda && !isSpecial {
		return nil, in.throwErrorf(ErrNotAFunction, form, "not a lambda or special form")
	}
	body, ok := p.Cdr.(*Pair)
	if !ok {
		return nil, in.throwErrorf(ErrNotAFunction, form, "lambda body is not a list")
	}
	arglist := body.Car
	minArgs, maxArgs := 0, 0
	var rest *Symbol
	for {
		ap, ok := arglist.(*Pair)
		if !ok {
			break
		}
		sym, ok := ap.Car.(*Symbol)
		if !ok {
			return nil, in.throwErrorf(ErrNotASymbol, ap.Car, "parameter is not a symbol")
		}
		_ = sym
		minArgs++
		maxArgs++
		arglist = ap.Cdr
	}
	if arglist != in.Nil {
		sym, ok := arglist.(*Symbol)
		if !ok {
			return nil, in.throwErrorf(ErrBadLetArglist, form, "argument list tail is not nil or a symbol")
		}
		rest = sym
		maxArgs = -1
	}
	bodyExprs := []Value{}
	rest2 := body.Cdr
	for {
		bp, ok := rest2.(*Pair)
		if !ok {
			break
		}
		bodyExprs = append(bodyExprs, bp.Car)
		rest2 = bp.Cdr
	}
	if rest2 != in.Nil {
		return nil, in.throwErrorf(ErrBadLetArglist, form, "body is not a proper list")
	}
	fn := &Function{
		Kind:      FuncForm,
		Name:      name,
		MinArgs:   minArgs,
		MaxArgs:   maxArgs,
		IsSpecial: isSpecial,
		Params:    body.Car,
		Body:      bodyExprs,
		Rest:      rest,
	}
	return in.newFunction(fn), nil
}

// makeBindings walks params alongside args, pushing each old value
// onto the binding pushdown before overwriting it, matching dynamic
// scoping via value-slot shadowing. It returns the mark restoreBindings
// should unwind to.
func (in *Interpreter) makeBindings(params, args Value, level int) (Mark, error) {
	in.BindCount++
	mark := Mark(len(in.Bindings.entries))
	if in.TraceFlag {
		in.trace(level, "bind")
	}
	for {
		pp, pok := params.(*Pair)
		ap, aok := args.(*Pair)
		if !pok || !aok {
			params = coerceParams(pp, pok, params)
			break
		}
		sym, ok := pp.Car.(*Symbol)
		if !ok {
			in.Bindings.PopTo(mark)
			return mark, in.throwErrorf(ErrNotASymbol, pp.Car, "parameter is not a symbol")
		}
		in.Bindings.Push(sym, ap.Car)
		params = pp.Cdr
		args = ap.Cdr
	}
	if params != in.Nil {
		if sym, ok := params.(*Symbol); ok {
			in.Bindings.Push(sym, args)
		} else {
			in.Bindings.PopTo(mark)
			return mark, in.throwErrorf(ErrWrongArgCount, nil, "too few arguments for function")
		}
	} else if args != in.Nil {
		in.Bindings.PopTo(mark)
		return mark, in.throwErrorf(ErrWrongArgCount, nil, "too many arguments for function")
	}
	return mark, nil
}

// coerceParams is a tiny helper so makeBindings's loop-exit condition
// reads the same as the source's: once either list runs out of pairs
// we fall through to the tail checks below with the *unconsumed*
// remainder of params.
func coerceParams(pp *Pair, pok bool, params Value) Value {
	if pok {
		return pp
	}
	return params
}

func (in *Interpreter) restoreBindings(mark Mark, level int) {
	if in.TraceFlag {
		in.trace(level, "unbind")
	}
	in.Bindings.PopTo(mark)
}

// apply assumes fn is a resolved *Function.
func (in *Interpreter) apply(fn *Function, args Value, level int) (Value, error) {
	in.ApplyCount++
	switch fn.Kind {
	case FuncBuiltin:
		if err := checkArity(in, fn, args); err != nil {
			return nil, err
		}
		return fn.Builtin(in, listToSlice(in, args))
	case FuncForm:
		mark, err := in.makeBindings(fn.Params, args, level)
		if err != nil {
			return nil, err
		}
		var result Value = in.Nil
		for _, expr := range fn.Body {
			v, err := in.eval(expr, level)
			if err != nil {
				in.restoreBindings(mark, level)
				return nil, err
			}
			result = v
		}
		in.restoreBindings(mark, level)
		return result, nil
	default:
		return nil, in.throwErrorf(ErrInternalInvariant, nil, "apply reached an unresolved autoload")
	}
}

func checkArity(in *Interpreter, fn *Function, args Value) error {
	n := listLen(args)
	if n < fn.MinArgs || (fn.MaxArgs >= 0 && n > fn.MaxArgs) {
		return in.throwErrorf(ErrWrongArgCount, nil,
			"%s: wrong number of arguments (%d)", fn.Name, n)
	}
	return nil
}

func listLen(v Value) int {
	n := 0
	for {
		p, ok := v.(*Pair)
		if !ok {
			return n
		}
		n++
		v = p.Cdr
	}
}

func listToSlice(in *Interpreter, v Value) []Value {
	out := []Value{}
	for {
		p, ok := v.(*Pair)
		if !ok {
			return out
		}
		out = append(out, p.Car)
		v = p.Cdr
	}
}

// resolveAutoloadPath joins name against each autoload.search_paths
// entry in order and returns the first one that names an existing
// file. An absolute name, or one that matches nowhere on the search
// path, is returned unchanged so the caller's own I/O error is the one
// reported.
func (in *Interpreter) resolveAutoloadPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	for _, dir := range in.Config.GetStringList("autoload.search_paths") {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return name
}

// autoload loads the referenced filename in a sub-session and expects
// the symbol's function slot to no longer be an autoload placeholder
// afterwards.
func (in *Interpreter) autoload(fn *Function, level int) (*Function, error) {
	sym := in.Intern(fn.Name)
	path := in.resolveAutoloadPath(fn.Filename)
	if err := in.LoadFile(path); err != nil {
		return nil, in.throwErrorf(ErrAutoloadFailed, sym, "%s: load failed: %v", fn.Filename, err)
	}
	newFn, ok := sym.Function.(*Function)
	if !ok {
		return nil, in.throwErrorf(ErrAutoloadFailed, sym, "%s: still undefined after load", sym.Name)
	}
	if newFn.Kind == FuncAutoload {
		return nil, in.throwErrorf(ErrAutoloadFailed, sym, "%s: still an autoload after load", sym.Name)
	}
	return newFn, nil
}

func (in *Interpreter) trace(level int, format string, args ...interface{}) {
	indent := ""
	for i := 0; i < level; i++ {
		indent += " "
	}
	in.Stdout.WriteString(indent + fmt.Sprintf(format, args...) + "\n")
}
