package tinylisp

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/dolthub/swiss"
)

// ObjType is the type tag every heap object carries, mirroring the
// variant column of the tagged-object union. It exists for diagnostics
// and as the heap's freelist bucket key; dispatch on behavior goes
// through Go's own dynamic type via a type switch or the Visitor below,
// never through this tag.
type ObjType uint8

const (
	InvalidType ObjType = iota
	SymbolType
	PairType
	NumberType
	StringType
	CharType
	PortType
	VectorType
	MapType
	StrBufType
	SignalType
	FunctionType
)

func (t ObjType) String() string {
	switch t {
	case SymbolType:
		return "symbol"
	case PairType:
		return "pair"
	case NumberType:
		return "number"
	case StringType:
		return "string"
	case CharType:
		return "char"
	case PortType:
		return "port"
	case VectorType:
		return "vector"
	case MapType:
		return "map"
	case StrBufType:
		return "strbuf"
	case SignalType:
		return "signal"
	case FunctionType:
		return "function"
	default:
		return "invalid"
	}
}

// head is the generic part every object carries, the Go analogue of
// the C header {next, size, type, mark, eq_is_eqv, immutable,
// num_is_int}. next links the object onto the heap's allocated list;
// it is not a Lisp-visible field.
type head struct {
	next      Value
	mark      bool
	eqIsEqv   bool
	immutable bool
	numIsInt  bool
}

// Value is the closed sum type every heap object implements. head()
// is unexported so no type outside this package can satisfy Value,
// keeping the union closed the way the design notes ask for.
type Value interface {
	Type() ObjType
	Accept(v Visitor)
	head() *head
}

// Visitor dispatches on an object's concrete type, the same pattern
// the mark phase uses to walk outgoing references.
type Visitor interface {
	VisitSymbol(*Symbol)
	VisitPair(*Pair)
	VisitNumber(*Number)
	VisitString(*String)
	VisitChar(*Char)
	VisitPort(*Port)
	VisitVector(*Vector)
	VisitMap(*Map)
	VisitStrBuf(*StrBuf)
	VisitSignal(*Signal)
	VisitFunction(*Function)
}

// Symbol is interned: the symbol table is the sole creator, so two
// symbols with the same name are always the same *Symbol pointer.
type Symbol struct {
	h head
	Name     string
	Value    Value
	Function Value
	Props    *Map
}

func (s *Symbol) Type() ObjType    { return SymbolType }
func (s *Symbol) head() *head      { return &s.h }
func (s *Symbol) Accept(v Visitor) { v.VisitSymbol(s) }

// Pair is the sole list-building cell.
type Pair struct {
	h head
	Car, Cdr Value
}

func (p *Pair) Type() ObjType    { return PairType }
func (p *Pair) head() *head      { return &p.h }
func (p *Pair) Accept(v Visitor) { v.VisitPair(p) }

// Number holds one float64 value with an advisory integer flag,
// matching the "one numeric type with is-integer bit" design note.
type Number struct {
	h head
	Val   float64
	IsInt bool
}

func (n *Number) Type() ObjType    { return NumberType }
func (n *Number) head() *head      { return &n.h }
func (n *Number) Accept(v Visitor) { v.VisitNumber(n) }

// NewNumber builds a Number and keeps the IsInt bit mirrored onto the
// shared header bit, the way every other eq_is_eqv-bearing type does.
func NewNumber(val float64, isInt bool) *Number {
	n := &Number{Val: val, IsInt: isInt}
	n.h.eqIsEqv = true
	n.h.numIsInt = isInt
	return n
}

// String is immutable; content equality stands in for identity
// (eq_is_eqv = 1).
type String struct {
	h head
	Val string
}

func (s *String) Type() ObjType    { return StringType }
func (s *String) head() *head      { return &s.h }
func (s *String) Accept(v Visitor) { v.VisitString(s) }

func NewString(s string) *String {
	v := &String{Val: s}
	v.h.eqIsEqv = true
	v.h.immutable = true
	return v
}

// Char holds a single codepoint.
type Char struct {
	h head
	Val rune
}

func (c *Char) Type() ObjType    { return CharType }
func (c *Char) head() *head      { return &c.h }
func (c *Char) Accept(v Visitor) { v.VisitChar(c) }

func NewChar(r rune) *Char {
	c := &Char{Val: r}
	c.h.eqIsEqv = true
	return c
}

// PortKind distinguishes the two port backings this interpreter
// implements; fd ports and sockets are out of scope.
type PortKind int

const (
	StreamPort PortKind = iota
	StringPort
)

// Port wraps either an OS stream or a StrBuf. pushback holds one
// character of lookahead, mirroring the reader's one-char ungetc.
type Port struct {
	h head
	Name       string
	Kind       PortKind
	reader     runeReader
	writer     runeWriter
	Buf        *StrBuf
	In, Out    bool
	Closed     bool
	pushback   rune
	hasPushback bool
}

func (p *Port) Type() ObjType    { return PortType }
func (p *Port) head() *head      { return &p.h }
func (p *Port) Accept(v Visitor) { v.VisitPort(p) }

// runeReader/runeWriter are the minimal interfaces the reader and
// printer need; they let a Port wrap os.Stdin/os.Stdout or a bufio
// wrapper around any io.Reader/io.Writer without this package caring
// which.
type runeReader interface {
	ReadRune() (rune, int, error)
}

type runeWriter interface {
	WriteString(s string) (int, error)
}

// Vector grows geometrically; Elems beyond the populated range are
// nil, not counted.
type Vector struct {
	h head
	Elems []Value
}

func (vec *Vector) Type() ObjType    { return VectorType }
func (vec *Vector) head() *head      { return &vec.h }
func (vec *Vector) Accept(v Visitor) { v.VisitVector(vec) }

// mapEntry keeps the original key object alongside the canonical
// lookup key, since canonicalKey may be a content hash rather than
// the key itself; Mark and the printer need the real Value back.
type mapEntry struct {
	key Value
	val Value
}

// Map backs the MAP Lisp object (the symbol table uses its own
// swiss.Map keyed by name). canonicalKey folds eq_is_eqv types (String, Number, Char) to
// a content hash so two distinct String objects with equal bytes
// collide into the same slot, the way CHECKTYPE-level eq_is_eqv
// comparison requires; everything else keys by pointer identity.
type Map struct {
	h head
	tbl      *swiss.Map[any, *mapEntry]
	weakKeys bool
	count    int
}

func (m *Map) Type() ObjType    { return MapType }
func (m *Map) head() *head      { return &m.h }
func (m *Map) Accept(v Visitor) { v.VisitMap(m) }

func NewMap(weakKeys bool) (*Map, error) {
	if weakKeys {
		return nil, NewSignal(SignalError, ErrInvalidArgument, nil,
			"weak-keyed maps are not implemented")
	}
	return &Map{tbl: swiss.NewMap[any, *mapEntry](8)}, nil
}

func contentHash(v Value) (uint64, bool) {
	switch t := v.(type) {
	case *String:
		return xxhash.Sum64String(t.Val), true
	case *Char:
		return xxhash.Sum64String(string(t.Val)), true
	case *Number:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(t.Val))
		return xxhash.Sum64(buf[:]), true
	default:
		return 0, false
	}
}

func canonicalKey(v Value) any {
	if h, ok := contentHash(v); ok {
		return h
	}
	return v
}

func (m *Map) Get(key Value) (Value, bool) {
	e, ok := m.tbl.Get(canonicalKey(key))
	if !ok {
		return nil, false
	}
	return e.val, true
}

func (m *Map) Put(key, val Value) {
	ck := canonicalKey(key)
	if _, exists := m.tbl.Get(ck); !exists {
		m.count++
	}
	m.tbl.Put(ck, &mapEntry{key: key, val: val})
}

func (m *Map) Delete(key Value) bool {
	ck := canonicalKey(key)
	if _, ok := m.tbl.Get(ck); ok {
		m.count--
		m.tbl.Delete(ck)
		return true
	}
	return false
}

// Len is O(1): the running counter resolves the open question about
// hashmap_size rescanning on every call.
func (m *Map) Len() int { return m.count }

func (m *Map) each(fn func(key, val Value)) {
	m.tbl.Iter(func(_ any, e *mapEntry) bool {
		fn(e.key, e.val)
		return false
	})
}

// StrBuf is a growable byte buffer, used for string ports and by
// functions composing output before it is interned as a String.
type StrBuf struct {
	h head
	Buf []byte
}

func (b *StrBuf) Type() ObjType    { return StrBufType }
func (b *StrBuf) head() *head      { return &b.h }
func (b *StrBuf) Accept(v Visitor) { v.VisitStrBuf(b) }

func (b *StrBuf) WriteString(s string) (int, error) {
	b.Buf = append(b.Buf, s...)
	return len(s), nil
}

func (b *StrBuf) String() string { return string(b.Buf) }

// SignalKind distinguishes error propagation from plain messages.
type SignalKind int

const (
	SignalMessage SignalKind = iota
	SignalError
	SignalUserError
	SignalThrow
)

// IsExitKind reports whether this signal kind unwinds evaluator
// sequencing (ERROR or THROW in the source's vocabulary).
func (k SignalKind) IsExitKind() bool {
	return k == SignalError || k == SignalThrow
}

// Signal is both the Lisp-visible error/message object and, because
// it implements error, the value tinylisp's Go functions return in
// their error slot. A non-nil error from any function in this package
// is always a *Signal.
type Signal struct {
	h head
	Kind    SignalKind
	Code    int
	Data    Value
	Message string
}

func (s *Signal) Type() ObjType    { return SignalType }
func (s *Signal) head() *head      { return &s.h }
func (s *Signal) Accept(v Visitor) { v.VisitSignal(s) }
func (s *Signal) Error() string    { return s.Message }

func NewSignal(kind SignalKind, code int, data Value, message string) *Signal {
	return &Signal{Kind: kind, Code: code, Data: data, Message: message}
}

// FunctionKind distinguishes builtins, lambda/special forms, and
// autoload placeholders.
type FunctionKind int

const (
	FuncBuiltin FunctionKind = iota
	FuncForm
	FuncAutoload
)

// BuiltinFunc is the Go-native implementation of a builtin; args have
// already been evaluated (unless IsSpecial) by the time it is called.
type BuiltinFunc func(in *Interpreter, args []Value) (Value, error)

// Function unifies builtins, (lambda ...)/(special ...) forms, and
// autoload placeholders behind the arity-checked call surface apply
// uses.
type Function struct {
	h head
	Kind      FunctionKind
	Name      string
	MinArgs   int
	MaxArgs   int // negative means unbounded
	IsSpecial bool
	Trace     bool

	Builtin BuiltinFunc

	Params Value   // the raw parameter list, for FuncForm
	Body   []Value // body expressions, for FuncForm
	Rest   *Symbol // non-nil if Params ends in a rest symbol

	Filename string // for FuncAutoload
}

func (f *Function) Type() ObjType    { return FunctionType }
func (f *Function) head() *head      { return &f.h }
func (f *Function) Accept(v Visitor) { v.VisitFunction(f) }
