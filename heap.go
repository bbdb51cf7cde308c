package tinylisp

// Heap owns every object's storage: the allocated list, the
// per-type freelist, and the allocation counter that trips a
// collection. Go's runtime already manages the underlying memory; what
// this type reproduces is the *bookkeeping* the source's GC relies on
// — an explicit live-object list to sweep and a per-type pool to
// satisfy allocations without invoking the collector early.
//
// The source buckets freelist entries by byte size because C reuses
// raw memory across unrelated types. Go's type system forbids that
// kind of reuse, so the freelist here is bucketed by ObjType instead:
// every live Pair is close enough in size to every freed Pair that a
// single per-type pool serves the same purpose the byte-bucket table
// did, without unsafe type punning.
type Heap struct {
	allocated   Value // head of the intrusive "all objects" list
	freelist    map[ObjType][]Value
	count       int // allocations since last collection, GCProt-free
	threshold   int
	freelistCap int // per-type freelist bucket cap, from gc.freelist_max_bytes

	roots *Interpreter // consulted by the mark phase; set by NewInterpreter
}

func NewHeap(threshold, freelistCap int) *Heap {
	return &Heap{
		freelist:    make(map[ObjType][]Value),
		threshold:   threshold,
		freelistCap: freelistCap,
	}
}

// link prepends obj to the allocated list. Every object, freelisted or
// fresh, passes through here exactly once per "life".
func (h *Heap) link(obj Value) {
	obj.head().next = h.allocated
	h.allocated = obj
}

// take pops a reusable object of the given type off the freelist, or
// reports a miss.
func (h *Heap) take(t ObjType) (Value, bool) {
	bucket := h.freelist[t]
	if len(bucket) == 0 {
		return nil, false
	}
	obj := bucket[len(bucket)-1]
	h.freelist[t] = bucket[:len(bucket)-1]
	return obj, true
}

// bump increments the allocation counter and runs a collection when it
// crosses the threshold. It must be called by every allocating path
// except GCProt-style root bookkeeping, which by construction never
// allocates heap objects.
func (h *Heap) bump() {
	h.count++
	if h.count >= h.threshold {
		h.collect()
		h.count = 0
	}
}

// freeOne zeroes and returns obj to its type's freelist, or drops it
// for the Go allocator to reclaim if the pool is already comfortably
// stocked (this is the analogue of objects larger than FREELIST_MAXSIZE
// going straight back to the system allocator). The cap comes from
// gc.freelist_max_bytes.
func (h *Heap) freeOne(obj Value) {
	finalize(obj)
	t := obj.Type()
	if len(h.freelist[t]) >= h.freelistCap {
		return
	}
	zero(obj)
	h.freelist[t] = append(h.freelist[t], obj)
}

// zero clears an object's Lisp-visible payload before it re-enters the
// freelist, matching "a cleared freelist slot is full of zero bytes".
func zero(obj Value) {
	switch v := obj.(type) {
	case *Symbol:
		*v = Symbol{}
	case *Pair:
		*v = Pair{}
	case *Number:
		*v = Number{}
	case *String:
		*v = String{}
	case *Char:
		*v = Char{}
	case *Port:
		*v = Port{}
	case *Vector:
		*v = Vector{}
	case *Map:
		*v = Map{}
	case *StrBuf:
		*v = StrBuf{}
	case *Signal:
		*v = Signal{}
	case *Function:
		*v = Function{}
	}
}

// copyPayload overwrites dst's fields with src's, used to install a
// freshly built object's payload onto a reused freelist slot so the
// slot's backing storage is recycled without its stale contents
// leaking through. dst and src must share the same concrete type.
func copyPayload(dst, src Value) {
	switch s := src.(type) {
	case *Symbol:
		*dst.(*Symbol) = *s
	case *Pair:
		*dst.(*Pair) = *s
	case *Number:
		*dst.(*Number) = *s
	case *String:
		*dst.(*String) = *s
	case *Char:
		*dst.(*Char) = *s
	case *Port:
		*dst.(*Port) = *s
	case *Vector:
		*dst.(*Vector) = *s
	case *Map:
		*dst.(*Map) = *s
	case *StrBuf:
		*dst.(*StrBuf) = *s
	case *Signal:
		*dst.(*Signal) = *s
	case *Function:
		*dst.(*Function) = *s
	}
}

// finalize releases external resources a type-specific destructor
// would free in the source: ports flush and close, maps and string
// buffers drop their backing storage.
func finalize(obj Value) {
	switch v := obj.(type) {
	case *Port:
		closePort(v)
	case *Map:
		v.tbl = nil
	case *StrBuf:
		v.Buf = nil
	}
}
