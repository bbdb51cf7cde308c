package tinylisp

// newTestInterpreter builds a fresh Interpreter with a low GC threshold
// so tests can exercise collection without allocating thousands of
// objects first.
func newTestInterpreter() *Interpreter {
	cfg := NewConfig()
	cfg.SetInt("gc.threshold", 64)
	return NewInterpreter(cfg)
}

// evalString reads and evaluates every top-level form in src in
// sequence, returning the value of the last one.
func evalString(in *Interpreter, src string) (Value, error) {
	port := in.NewStringPort(false)
	port.Buf.Buf = append(port.Buf.Buf, src...)
	lx := newLexer(in, port)
	var result Value = in.Nil
	for {
		form, eof, err := lx.readExpr()
		if err != nil {
			return nil, err
		}
		if eof {
			return result, nil
		}
		v, err := in.Eval(form)
		if err != nil {
			return nil, err
		}
		result = v
	}
}
