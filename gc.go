package tinylisp

// ProtectStack is the first GC root chain. The source links GCPROT
// nodes that each hold the address of a caller-local C variable;
// interior pointers to stack variables don't survive translation to
// Go (see the design notes on cyclic references via interior
// pointers), so this keeps the same push-on-entry/pop-on-exit
// discipline but roots through a getter closure into a session-owned
// slice instead of a raw pointer.
type ProtectStack struct {
	slots []func() Value
}

// Mark is a position in the stack that Unwind can roll back to; every
// push site should `defer ps.Unwind(ps.Push(...))` or capture the mark
// before a batch of pushes.
type Mark int

func (ps *ProtectStack) Push(get func() Value) Mark {
	ps.slots = append(ps.slots, get)
	return Mark(len(ps.slots) - 1)
}

func (ps *ProtectStack) Unwind(m Mark) {
	ps.slots = ps.slots[:m]
}

func (ps *ProtectStack) each(fn func(Value)) {
	for _, get := range ps.slots {
		if v := get(); v != nil {
			fn(v)
		}
	}
}

// bindingEntry is the second root chain: a saved (symbol, old value)
// pair, not a pointer to one, so the binding pushdown owns its value
// until popped.
type bindingEntry struct {
	sym *Symbol
	old Value
}

// BindingPushdown implements dynamic scoping: push saves a symbol's
// current value and installs a new one; PopTo restores saved values
// in reverse order, which must happen on every exit path including
// errors (spec's "restore must run on every exit path" invariant).
type BindingPushdown struct {
	entries []bindingEntry
}

func (bp *BindingPushdown) Push(sym *Symbol, newVal Value) Mark {
	bp.entries = append(bp.entries, bindingEntry{sym: sym, old: sym.Value})
	sym.Value = newVal
	return Mark(len(bp.entries) - 1)
}

func (bp *BindingPushdown) PopTo(m Mark) {
	for i := len(bp.entries) - 1; i >= int(m); i-- {
		e := bp.entries[i]
		e.sym.Value = e.old
	}
	bp.entries = bp.entries[:m]
}

func (bp *BindingPushdown) each(fn func(Value)) {
	for _, e := range bp.entries {
		if e.old != nil {
			fn(e.old)
		}
	}
}

// collect runs a full mark-sweep cycle: the third root, the symbol
// table, is reached through h.roots.Symbols.
func (h *Heap) collect() {
	in := h.roots
	if in == nil {
		return
	}
	gv := &gcVisitor{}
	in.Protect.each(func(v Value) { gv.mark(v) })
	in.Bindings.each(func(v Value) { gv.mark(v) })
	in.Symbols.each(func(s *Symbol) { gv.mark(s) })

	var survivors Value
	next := h.allocated
	for next != nil {
		obj := next
		next = obj.head().next
		if obj.head().mark {
			obj.head().mark = false
			obj.head().next = survivors
			survivors = obj
		} else {
			h.freeOne(obj)
		}
	}
	h.allocated = survivors
}

// gcVisitor is the type-directed mark traversal: mark stops at nil or
// already-marked objects, otherwise marks and recurses via Accept.
type gcVisitor struct{}

func (g *gcVisitor) mark(v Value) {
	if v == nil || v.head().mark {
		return
	}
	v.head().mark = true
	v.Accept(g)
}

func (g *gcVisitor) VisitSymbol(s *Symbol) {
	g.mark(s.Value)
	g.mark(s.Function)
	if s.Props != nil {
		g.mark(s.Props)
	}
}

func (g *gcVisitor) VisitPair(p *Pair) {
	g.mark(p.Car)
	g.mark(p.Cdr)
}

func (g *gcVisitor) VisitNumber(*Number) {}
func (g *gcVisitor) VisitString(*String) {}
func (g *gcVisitor) VisitChar(*Char)     {}

func (g *gcVisitor) VisitPort(p *Port) {
	if p.Buf != nil {
		g.mark(p.Buf)
	}
}

func (g *gcVisitor) VisitVector(vec *Vector) {
	for _, e := range vec.Elems {
		g.mark(e)
	}
}

func (g *gcVisitor) VisitMap(m *Map) {
	m.each(func(key, val Value) {
		g.mark(key)
		g.mark(val)
	})
}

func (g *gcVisitor) VisitStrBuf(*StrBuf) {}

func (g *gcVisitor) VisitSignal(s *Signal) {
	g.mark(s.Data)
	if s.Message != "" {
		// message is a Go string, not a heap String; nothing to mark.
		_ = s.Message
	}
}

func (g *gcVisitor) VisitFunction(f *Function) {
	g.mark(f.Params)
	for _, b := range f.Body {
		g.mark(b)
	}
	if f.Rest != nil {
		g.mark(f.Rest)
	}
}
