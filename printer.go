package tinylisp

import (
	"fmt"
	"strconv"
	"strings"
)

// printFlags mirrors TOSTRING_READ/TOSTRING_PRINT/TOSTRING_BRIEF.
type printFlags int

const (
	pfRead printFlags = 1 << iota
	pfPrint
	pfBrief
)

var quoteEscapes = map[byte]string{
	0x07: `\a`, 0x08: `\b`, 0x09: `\t`, 0x0a: `\n`,
	0x0b: `\v`, 0x0c: `\f`, 0x0d: `\r`,
}

// quoteByte backslash-escapes control characters and DEL using the
// standard C abbreviations where one exists, else a three-digit octal
// escape.
func quoteByte(sb *strings.Builder, c byte) {
	if esc, ok := quoteEscapes[c]; ok {
		sb.WriteString(esc)
		return
	}
	if c <= 0x1f {
		fmt.Fprintf(sb, "\\%03o", c)
		return
	}
	if c == 0x7f {
		fmt.Fprintf(sb, "\\%03o", c)
		return
	}
	sb.WriteByte(c)
}

func quoteString(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		quoteByte(&sb, s[i])
	}
	return sb.String()
}

// stringify is the per-type stringer dispatch, grounded on s_expr's
// table of stringer_t functions.
func stringify(in *Interpreter, v Value, sb *strings.Builder, flags printFlags) {
	if v == nil {
		sb.WriteString("#<undef>")
		return
	}
	switch t := v.(type) {
	case *Symbol:
		sb.WriteString(t.Name)
	case *Pair:
		sb.WriteByte('(')
		stringify(in, t.Car, sb, flags)
		body := t.Cdr
		for {
			p, ok := body.(*Pair)
			if !ok {
				break
			}
			sb.WriteByte(' ')
			stringify(in, p.Car, sb, flags)
			body = p.Cdr
		}
		if body != in.Nil {
			sb.WriteString(" . ")
			stringify(in, body, sb, flags)
		}
		sb.WriteByte(')')
	case *Number:
		if t.IsInt {
			sb.WriteString(strconv.FormatInt(int64(t.Val), 10))
		} else {
			sb.WriteString(strconv.FormatFloat(t.Val, 'g', -1, 64))
		}
	case *String:
		if flags&pfRead != 0 {
			sb.WriteByte('"')
			sb.WriteString(quoteString(t.Val))
			sb.WriteByte('"')
		} else {
			sb.WriteString(t.Val)
		}
	case *Char:
		if flags&pfRead != 0 {
			quoteByte(sb, byte(t.Val))
		} else {
			sb.WriteRune(t.Val)
		}
	case *Port:
		kind := "stream"
		if t.Kind == StringPort {
			kind = "string"
		}
		io := ""
		if t.In {
			io += "i"
		}
		if t.Out {
			io += "o"
		}
		fmt.Fprintf(sb, "#<port:%s:%s,%s>", t.Name, kind, io)
	case *Vector:
		sb.WriteByte('[')
		if flags&pfBrief != 0 {
			fmt.Fprintf(sb, "%d", len(t.Elems))
		} else {
			for i, e := range t.Elems {
				stringify(in, e, sb, flags)
				if i < len(t.Elems)-1 {
					sb.WriteByte(' ')
				}
			}
		}
		sb.WriteByte(']')
	case *Map:
		sb.WriteByte('{')
		if flags&pfBrief != 0 {
			fmt.Fprintf(sb, "%d", t.Len())
		} else {
			first := true
			t.each(func(key, val Value) {
				if !first {
					sb.WriteByte(' ')
				}
				first = false
				stringify(in, key, sb, flags)
				sb.WriteByte(' ')
				stringify(in, val, sb, flags)
			})
		}
		sb.WriteByte('}')
	case *StrBuf:
		if flags&pfRead != 0 {
			sb.WriteByte('"')
			sb.WriteString(quoteString(string(t.Buf)))
			sb.WriteByte('"')
		} else {
			sb.Write(t.Buf)
		}
	case *Signal:
		kindName := map[SignalKind]string{
			SignalMessage:   "msg",
			SignalError:     "error",
			SignalUserError: "uerror",
			SignalThrow:     "throw",
		}[t.Kind]
		fmt.Fprintf(sb, "#<sig-%s:%d,%s", kindName, t.Code, t.Message)
		if flags&pfBrief == 0 && t.Data != nil {
			sb.WriteByte(':')
			stringify(in, t.Data, sb, flags)
		}
		sb.WriteByte('>')
	case *Function:
		kindName := map[FunctionKind]string{
			FuncBuiltin:  "builtin",
			FuncForm:     "form",
			FuncAutoload: "autoload",
		}[t.Kind]
		sb.WriteString("#<")
		sb.WriteString(kindName)
		if t.IsSpecial {
			sb.WriteString("_s")
		}
		if t.Name != "" {
			sb.WriteByte(':')
			sb.WriteString(t.Name)
		}
		fmt.Fprintf(sb, ":%d..", t.MinArgs)
		if t.MaxArgs >= 0 {
			fmt.Fprintf(sb, "%d", t.MaxArgs)
		}
		sb.WriteByte('>')
	default:
		fmt.Fprintf(sb, "#<unknown:%T>", v)
	}
}

// PrintString renders v the way prin1 (readSyntax true) or princ
// (false) would.
func PrintString(in *Interpreter, v Value, readSyntax bool) string {
	var sb strings.Builder
	var flags printFlags
	if readSyntax {
		flags |= pfRead
	}
	stringify(in, v, &sb, flags)
	return sb.String()
}

// PrincString is princ applied directly to a symbol or string value,
// matching princ_string's shortcut of returning the object itself
// rather than building through a fresh buffer.
func PrincString(in *Interpreter, v Value) string {
	switch t := v.(type) {
	case *String:
		return t.Val
	case *Symbol:
		return t.Name
	default:
		return PrintString(in, v, false)
	}
}
