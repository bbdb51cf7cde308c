package tinylisp

// Interpreter bundles the global mutable state the design notes ask
// to be collected into one handle: the heap, the symbol table, the
// two GC root stacks, the standard ports, the trace flag and the
// allocation threshold. A Session (session.go) holds a reference to
// it and is the only thing threaded across the reader/evaluator API.
type Interpreter struct {
	Heap     *Heap
	Symbols  *SymbolTable
	Protect  ProtectStack
	Bindings BindingPushdown

	Nil           *Symbol
	T             *Symbol
	Lambda        *Symbol
	SpecialMarker *Symbol

	Stdin  *Port
	Stdout *Port
	Stderr *Port

	TraceFlag bool
	Config    *Config

	EvalCount  int64
	ApplyCount int64
	BindCount  int64
}

func NewInterpreter(cfg *Config) *Interpreter {
	if cfg == nil {
		cfg = NewConfig()
	}
	in := &Interpreter{
		Heap:    NewHeap(cfg.GetInt("gc.threshold"), cfg.GetInt("gc.freelist_max_bytes")),
		Symbols: NewSymbolTable(),
		Config:  cfg,
	}
	in.Heap.roots = in
	in.bootstrapSymbols()
	in.TraceFlag = cfg.GetBool("eval.trace")
	in.Stdin, in.Stdout, in.Stderr = in.bootstrapStandardPorts()
	installCoreBuiltins(in)
	return in
}

// alloc is the single chokepoint every constructor below funnels
// through: build the object with create, and either install it into a
// freelisted slot of the right type if one exists or link it fresh.
// create always runs — a freelisted object only donates its backing
// storage, never its stale payload.
func alloc[T Value](in *Interpreter, t ObjType, create func() T) T {
	obj := create()
	if reused, ok := in.Heap.take(t); ok {
		copyPayload(reused, obj)
		in.Heap.link(reused)
		in.Heap.bump()
		return reused.(T)
	}
	in.Heap.link(obj)
	in.Heap.bump()
	return obj
}

// Cons is the sole list constructor.
func (in *Interpreter) Cons(car, cdr Value) *Pair {
	return alloc(in, PairType, func() *Pair { return &Pair{Car: car, Cdr: cdr} })
}

func (in *Interpreter) NewNumber(val float64, isInt bool) *Number {
	return alloc(in, NumberType, func() *Number { return NewNumber(val, isInt) })
}

func (in *Interpreter) NewString(s string) *String {
	return alloc(in, StringType, func() *String { return NewString(s) })
}

func (in *Interpreter) NewChar(r rune) *Char {
	return alloc(in, CharType, func() *Char { return NewChar(r) })
}

func (in *Interpreter) NewVector(n int) *Vector {
	return alloc(in, VectorType, func() *Vector { return &Vector{Elems: make([]Value, 0, n)} })
}

func (in *Interpreter) NewMap(weakKeys bool) (*Map, error) {
	m, err := NewMap(weakKeys)
	if err != nil {
		return nil, err
	}
	return alloc(in, MapType, func() *Map { return m }), nil
}

func (in *Interpreter) NewStrBuf() *StrBuf {
	return alloc(in, StrBufType, func() *StrBuf { return &StrBuf{} })
}

func (in *Interpreter) NewSignal(kind SignalKind, code int, data Value, message string) *Signal {
	s := alloc(in, SignalType, func() *Signal { return NewSignal(kind, code, data, message) })
	if kind == SignalError || kind == SignalUserError {
		if le, ok := in.Symbols.tbl.Get("*last-error*"); ok {
			le.Value = s
		}
	}
	return s
}

func (in *Interpreter) newFunction(f *Function) *Function {
	return alloc(in, FunctionType, func() *Function { return f })
}

// List builds a proper list from args, rooted through the protect
// stack while it is being assembled so a collection triggered midway
// cannot reclaim the head before it is returned.
func (in *Interpreter) List(args ...Value) Value {
	var head Value = in.Nil
	m := in.Protect.Push(func() Value { return head })
	defer in.Protect.Unwind(m)
	for i := len(args) - 1; i >= 0; i-- {
		head = in.Cons(args[i], head)
	}
	return head
}
