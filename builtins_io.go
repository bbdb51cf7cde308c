package tinylisp

func installIOBuiltins(in *Interpreter) {
	defBuiltin(in, "open-input-string", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		s, ok := args[0].(*String)
		if !ok {
			return nil, in.throwErrorf(ErrInvalidArgument, args[0], "open-input-string expects a string")
		}
		p := in.NewStringPort(false)
		p.Buf.Buf = append(p.Buf.Buf, s.Val...)
		return p, nil
	})

	defBuiltin(in, "open-output-string", 0, 0, func(in *Interpreter, args []Value) (Value, error) {
		return in.NewStringPort(true), nil
	})

	defBuiltin(in, "get-output-string", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		p, ok := args[0].(*Port)
		if !ok || p.Kind != StringPort {
			return nil, in.throwErrorf(ErrInvalidArgument, args[0], "get-output-string expects a string port")
		}
		return in.NewString(p.Buf.String()), nil
	})

	defBuiltin(in, "write-string", 1, 2, func(in *Interpreter, args []Value) (Value, error) {
		s, ok := args[0].(*String)
		if !ok {
			return nil, in.throwErrorf(ErrInvalidArgument, args[0], "write-string expects a string")
		}
		port := in.Stdout
		if len(args) == 2 {
			p, ok := args[1].(*Port)
			if !ok {
				return nil, in.throwErrorf(ErrInvalidArgument, args[1], "expected a port")
			}
			port = p
		}
		if port.Closed {
			return nil, in.throwErrorf(ErrPortClosed, port, "%s: port is closed", port.Name)
		}
		if err := port.WriteString(s.Val); err != nil {
			return nil, in.throwErrorf(ErrIO, port, "%v", err)
		}
		return s, nil
	})

	defBuiltin(in, "read", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		p, ok := args[0].(*Port)
		if !ok {
			return nil, in.throwErrorf(ErrInvalidArgument, args[0], "read expects a port")
		}
		if p.Closed {
			return nil, in.throwErrorf(ErrPortClosed, p, "%s: port is closed", p.Name)
		}
		v, eof, err := newLexer(in, p).readExpr()
		if err != nil {
			return nil, err
		}
		if eof {
			return in.Nil, nil
		}
		return v, nil
	})

	defBuiltin(in, "close", 1, 1, func(in *Interpreter, args []Value) (Value, error) {
		p, ok := args[0].(*Port)
		if !ok {
			return nil, in.throwErrorf(ErrInvalidArgument, args[0], "close expects a port")
		}
		closePort(p)
		return in.T, nil
	})
}
