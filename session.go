package tinylisp

import "os"

// Session threads a reader's input port and line/column state through
// one REPL turn or one file load. It is the narrow seam between the
// CLI (or any other front-end) and the core: everything it exposes is
// read/eval/print over an *Interpreter.
type Session struct {
	In  *Interpreter
	Out *Port

	lx *lexer
}

// NewSession opens a reader over src, bound to in's global state.
func NewSession(in *Interpreter, src *Port) *Session {
	return &Session{
		In:  in,
		Out: in.Stdout,
		lx:  newLexer(in, src),
	}
}

// ReadEvalPrint reads one top-level form, evaluates it, and writes its
// printed representation (prin1-style) to Out. It returns the value
// the form evaluated to, or the Signal it raised (useful for the CLI's
// exit-status rule), and whether the input was exhausted.
func (s *Session) ReadEvalPrint() (Value, bool, error) {
	form, eof, err := s.Read()
	if eof {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	val, err := s.In.Eval(form)
	if err != nil {
		if sig, ok := err.(*Signal); ok {
			s.Out.WriteString(PrintString(s.In, sig, true))
			s.Out.WriteString("\n")
			return sig, false, nil
		}
		return nil, false, err
	}
	s.Out.WriteString(PrintString(s.In, val, true))
	s.Out.WriteString("\n")
	return val, false, nil
}

// Read parses the next top-level S-expression from the session's
// input port.
func (s *Session) Read() (Value, bool, error) {
	return s.lx.readExpr()
}

// LoadFile opens name and evaluates every top-level form in it in
// sequence, the way both the load builtin and autoload resolution do.
// It stops at the first error a form's evaluation raises.
func (in *Interpreter) LoadFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return in.throwErrorf(ErrIO, nil, "%s: %v", name, err)
	}
	defer f.Close()
	port := in.NewStreamPort(name, f, nil)
	defer closePort(port)
	sess := NewSession(in, port)
	for {
		form, eof, err := sess.Read()
		if err != nil {
			return err
		}
		if eof {
			return nil
		}
		if _, err := in.Eval(form); err != nil {
			return err
		}
	}
}
