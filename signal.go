package tinylisp

import "fmt"

// Error codes, one per kind enumerated in the error handling design.
const (
	ErrReaderSyntax = iota
	ErrReaderEOF
	ErrEval
	ErrNotAFunction
	ErrWrongArgCount
	ErrListOpOnNonList
	ErrNotASymbol
	ErrInvalidArgument
	ErrSystemCall
	ErrPortClosed
	ErrInternalInvariant
	ErrOutOfMemory
	ErrIO
	ErrBadLetArglist
	ErrImmutableWrite
	ErrAutoloadFailed
)

var errCodeName = map[int]string{
	ErrReaderSyntax:      "reader syntax error",
	ErrReaderEOF:         "unexpected end of input",
	ErrEval:              "unbound symbol",
	ErrNotAFunction:      "not a function",
	ErrWrongArgCount:     "wrong number of arguments",
	ErrListOpOnNonList:   "list operation on non-list",
	ErrNotASymbol:        "not a symbol",
	ErrInvalidArgument:   "invalid argument",
	ErrSystemCall:        "system call failed",
	ErrPortClosed:        "port is closed",
	ErrInternalInvariant: "internal invariant violated",
	ErrOutOfMemory:       "out of memory",
	ErrIO:                "i/o error",
	ErrBadLetArglist:     "malformed let argument list",
	ErrImmutableWrite:    "write to immutable object",
	ErrAutoloadFailed:    "autoload failed",
}

// throwErrorf builds and registers a *Signal of kind ERROR, formatting
// its message the way the source's throw_error does: "Error: ", the
// error code's name, then a short human-readable detail, with the
// offending object (if any) stashed in Data rather than interpolated
// into the text.
func (in *Interpreter) throwErrorf(code int, data Value, format string, args ...interface{}) *Signal {
	msg := fmt.Sprintf("Error: %s: %s", errCodeName[code], fmt.Sprintf(format, args...))
	if format == "" {
		msg = fmt.Sprintf("Error: %s", errCodeName[code])
	}
	return in.NewSignal(SignalError, code, data, msg)
}

func (in *Interpreter) throwUserErrorf(data Value, format string, args ...interface{}) *Signal {
	return in.NewSignal(SignalUserError, 0, data, fmt.Sprintf(format, args...))
}
