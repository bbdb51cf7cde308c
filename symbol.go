package tinylisp

import "github.com/dolthub/swiss"

// SymbolTable is the third GC root: a process-wide string-to-symbol
// map. It is the sole creator of Symbol objects, so Intern is the only
// path by which a name becomes a *Symbol, guaranteeing the "two
// symbols with equal names are the same object" invariant.
type SymbolTable struct {
	tbl *swiss.Map[string, *Symbol]
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{tbl: swiss.NewMap[string, *Symbol](256)}
}

// Intern returns the unique symbol for name, creating and linking it
// onto the heap on first use.
func (in *Interpreter) Intern(name string) *Symbol {
	if s, ok := in.Symbols.tbl.Get(name); ok {
		return s
	}
	s := &Symbol{Name: name}
	in.Heap.link(s)
	in.Heap.bump()
	in.Symbols.tbl.Put(name, s)
	return s
}

func (st *SymbolTable) each(fn func(*Symbol)) {
	st.tbl.Iter(func(_ string, s *Symbol) bool {
		fn(s)
		return false
	})
}

// Loblist returns the list of every interned symbol, the Go analogue
// of all_symbols().
func (in *Interpreter) Loblist() Value {
	var list Value = in.Nil
	in.Symbols.each(func(s *Symbol) {
		list = in.Cons(s, list)
	})
	return list
}

// bootstrapSymbols creates the singletons every other component
// assumes exist: nil and t are immutable symbols bound to themselves;
// lambda/special mark the two kinds of raw function forms evalfun and
// makeFunction recognize.
func (in *Interpreter) bootstrapSymbols() {
	nilSym := in.Intern("nil")
	nilSym.Value = nilSym
	nilSym.h.immutable = true
	in.Nil = nilSym

	tSym := in.Intern("t")
	tSym.Value = tSym
	tSym.h.immutable = true
	in.T = tSym

	in.Lambda = in.Intern("lambda")
	in.SpecialMarker = in.Intern("special")

	lastErr := in.Intern("*last-error*")
	lastErr.Value = in.Nil
}
