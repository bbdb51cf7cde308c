package tinylisp

func installListBuiltins(in *Interpreter) {
	defBuiltin(in, "cons", 2, 2, func(in *Interpreter, args []Value) (Value, error) {
		return in.Cons(args[0], args[1]), nil
	})

	defBuiltin(in, "car", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		p, ok := args[0].(*Pair)
		if !ok {
			if args[0] == in.Nil {
				return in.Nil, nil
			}
			return nil, in.throwErrorf(ErrListOpOnNonList, args[0], "car: not a list")
		}
		return p.Car, nil
	})

	defBuiltin(in, "cdr", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		p, ok := args[0].(*Pair)
		if !ok {
			if args[0] == in.Nil {
				return in.Nil, nil
			}
			return nil, in.throwErrorf(ErrListOpOnNonList, args[0], "cdr: not a list")
		}
		return p.Cdr, nil
	})

	defBuiltin(in, "list", 0, -1, func(in *Interpreter, args []Value) (Value, error) {
		return in.List(args...), nil
	})

	defBuiltin(in, "null", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		return boolValue(in, args[0] == in.Nil), nil
	})

	defBuiltin(in, "atom", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		_, isPair := args[0].(*Pair)
		return boolValue(in, !isPair), nil
	})

	defBuiltin(in, "listp", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		_, isPair := args[0].(*Pair)
		return boolValue(in, isPair || args[0] == in.Nil), nil
	})

	defBuiltin(in, "eq", 2, 2, func(in *Interpreter, args []Value) (Value, error) {
		return boolValue(in, args[0] == args[1]), nil
	})

	defBuiltin(in, "eql", 2, 2, func(in *Interpreter, args []Value) (Value, error) {
		return boolValue(in, valuesEql(args[0], args[1])), nil
	})
}

func boolValue(in *Interpreter, b bool) Value {
	if b {
		return in.T
	}
	return in.Nil
}

// valuesEql implements the "eql" testable property: identity, or for
// the eq-is-eqv types (String, Number, Char) byte-equal payload
// excluding the header linkage fields.
func valuesEql(a, b Value) bool {
	if a == b {
		return true
	}
	switch av := a.(type) {
	case *String:
		bv, ok := b.(*String)
		return ok && av.Val == bv.Val
	case *Number:
		bv, ok := b.(*Number)
		return ok && av.Val == bv.Val && av.IsInt == bv.IsInt
	case *Char:
		bv, ok := b.(*Char)
		return ok && av.Val == bv.Val
	default:
		return false
	}
}
