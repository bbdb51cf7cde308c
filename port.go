package tinylisp

import (
	"bufio"
	"io"
	"os"
)

// NewStreamPort wraps an OS-level reader/writer pair. Only one side
// needs to be non-nil; *stdin* is in-only, *stdout*/*stderr* are
// out-only.
func (in *Interpreter) NewStreamPort(name string, r io.Reader, w io.Writer) *Port {
	p := alloc(in, PortType, func() *Port { return &Port{Name: name, Kind: StreamPort} })
	if r != nil {
		p.reader = bufio.NewReader(r)
		p.In = true
	}
	if w != nil {
		p.writer = bufio.NewWriter(w)
		p.Out = true
	}
	return p
}

// NewStringPort creates an in-memory port backed by a StrBuf, used by
// the open-input-string/open-output-string builtins and to feed a
// line of REPL input to the reader.
func (in *Interpreter) NewStringPort(out bool) *Port {
	buf := in.NewStrBuf()
	p := alloc(in, PortType, func() *Port { return &Port{Name: "*string*", Kind: StringPort, Buf: buf} })
	p.In = !out
	p.Out = out
	return p
}

func (in *Interpreter) bootstrapStandardPorts() (stdin, stdout, stderr *Port) {
	stdin = in.NewStreamPort("*stdin*", os.Stdin, nil)
	stdout = in.NewStreamPort("*stdout*", nil, os.Stdout)
	stderr = in.NewStreamPort("*stderr*", nil, os.Stderr)
	for _, p := range []*Port{stdin, stdout, stderr} {
		p.h.immutable = true
	}
	in.Intern("*stdin*").Value = stdin
	in.Intern("*stdout*").Value = stdout
	in.Intern("*stderr*").Value = stderr
	return
}

// ReadRune reads one rune, honoring a pending pushback slot.
func (p *Port) ReadRune() (rune, error) {
	if p.hasPushback {
		p.hasPushback = false
		return p.pushback, nil
	}
	if p.Kind == StringPort {
		if len(p.Buf.Buf) == 0 {
			return 0, io.EOF
		}
		r := rune(p.Buf.Buf[0])
		p.Buf.Buf = p.Buf.Buf[1:]
		return r, nil
	}
	if p.reader == nil {
		return 0, io.EOF
	}
	r, _, err := p.reader.ReadRune()
	return r, err
}

// UngetRune pushes a single character back for the next ReadRune,
// matching the one-char pushback the lexer relies on.
func (p *Port) UngetRune(r rune) {
	p.pushback = r
	p.hasPushback = true
}

func (p *Port) WriteString(s string) error {
	if p.Kind == StringPort {
		_, err := p.Buf.WriteString(s)
		return err
	}
	if p.writer == nil {
		return nil
	}
	_, err := p.writer.WriteString(s)
	if bw, ok := p.writer.(interface{ Flush() error }); ok {
		bw.Flush()
	}
	return err
}

func closePort(p *Port) {
	if p.Closed {
		return
	}
	if bw, ok := p.writer.(interface{ Flush() error }); ok {
		if err := bw.Flush(); err != nil {
			os.Stderr.WriteString("tinylisp: error flushing port " + p.Name + ": " + err.Error() + "\n")
		}
	}
	if c, ok := p.writer.(io.Closer); ok {
		c.Close()
	}
	if c, ok := p.reader.(io.Closer); ok {
		c.Close()
	}
	p.Closed = true
}
