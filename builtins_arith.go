package tinylisp

// numArg coerces a single argument to its float64 payload, signaling
// invalid-argument on anything that isn't a Number — grounded on
// numbers.c's undocumented coercion-by-assertion for the core set.
func numArg(in *Interpreter, v Value) (float64, bool, error) {
	n, ok := v.(*Number)
	if !ok {
		return 0, false, in.throwErrorf(ErrInvalidArgument, v, "expected a number")
	}
	return n.Val, n.IsInt, nil
}

func installArithBuiltins(in *Interpreter) {
	defBuiltin(in, "+", 0, -1, func(in *Interpreter, args []Value) (Value, error) {
		sum, allInt := 0.0, true
		for _, a := range args {
			v, isInt, err := numArg(in, a)
			if err != nil {
				return nil, err
			}
			sum += v
			allInt = allInt && isInt
		}
		return in.NewNumber(sum, allInt), nil
	})

	defBuiltin(in, "-", 1, -1, func(in *Interpreter, args []Value) (Value, error) {
		first, firstIsInt, err := numArg(in, args[0])
		if err != nil {
			return nil, err
		}
		if len(args) == 1 {
			return in.NewNumber(-first, firstIsInt), nil
		}
		allInt := firstIsInt
		acc := first
		for _, a := range args[1:] {
			v, isInt, err := numArg(in, a)
			if err != nil {
				return nil, err
			}
			acc -= v
			allInt = allInt && isInt
		}
		return in.NewNumber(acc, allInt), nil
	})

	defBuiltin(in, "*", 0, -1, func(in *Interpreter, args []Value) (Value, error) {
		prod, allInt := 1.0, true
		for _, a := range args {
			v, isInt, err := numArg(in, a)
			if err != nil {
				return nil, err
			}
			prod *= v
			allInt = allInt && isInt
		}
		return in.NewNumber(prod, allInt), nil
	})

	defBuiltin(in, "/", 1, -1, func(in *Interpreter, args []Value) (Value, error) {
		first, _, err := numArg(in, args[0])
		if err != nil {
			return nil, err
		}
		if len(args) == 1 {
			return in.NewNumber(1/first, false), nil
		}
		acc := first
		for _, a := range args[1:] {
			v, _, err := numArg(in, a)
			if err != nil {
				return nil, err
			}
			acc /= v
		}
		isInt := acc == float64(int64(acc))
		return in.NewNumber(acc, isInt), nil
	})

	defBuiltin(in, "1-", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		v, isInt, err := numArg(in, args[0])
		if err != nil {
			return nil, err
		}
		return in.NewNumber(v-1, isInt), nil
	})

	defBuiltin(in, "1+", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		v, isInt, err := numArg(in, args[0])
		if err != nil {
			return nil, err
		}
		return in.NewNumber(v+1, isInt), nil
	})

	defBuiltin(in, "=", 1, -1, func(in *Interpreter, args []Value) (Value, error) {
		first, _, err := numArg(in, args[0])
		if err != nil {
			return nil, err
		}
		for _, a := range args[1:] {
			v, _, err := numArg(in, a)
			if err != nil {
				return nil, err
			}
			if v != first {
				return in.Nil, nil
			}
		}
		return in.T, nil
	})

	defBuiltin(in, "<", 2, -1, func(in *Interpreter, args []Value) (Value, error) {
		return chainCompare(in, args, func(a, b float64) bool { return a < b })
	})
	defBuiltin(in, ">", 2, -1, func(in *Interpreter, args []Value) (Value, error) {
		return chainCompare(in, args, func(a, b float64) bool { return a > b })
	})
	defBuiltin(in, "<=", 2, -1, func(in *Interpreter, args []Value) (Value, error) {
		return chainCompare(in, args, func(a, b float64) bool { return a <= b })
	})
	defBuiltin(in, ">=", 2, -1, func(in *Interpreter, args []Value) (Value, error) {
		return chainCompare(in, args, func(a, b float64) bool { return a >= b })
	})
}

func chainCompare(in *Interpreter, args []Value, ok func(a, b float64) bool) (Value, error) {
	prev, _, err := numArg(in, args[0])
	if err != nil {
		return nil, err
	}
	for _, a := range args[1:] {
		v, _, err := numArg(in, a)
		if err != nil {
			return nil, err
		}
		if !ok(prev, v) {
			return in.Nil, nil
		}
		prev = v
	}
	return in.T, nil
}
