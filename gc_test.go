package tinylisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allocateGarbage forces at least one collection cycle by allocating
// enough unrooted pairs to cross the test interpreter's low threshold.
func allocateGarbage(in *Interpreter, n int) {
	for i := 0; i < n; i++ {
		in.Cons(in.NewNumber(float64(i), true), in.Nil)
	}
}

func TestCollectPreservesSymbolTableRoots(t *testing.T) {
	in := newTestInterpreter()
	sym := in.Intern("keep")
	sym.Value = in.Cons(in.NewNumber(1, true), in.Nil)

	allocateGarbage(in, 200)

	p, ok := sym.Value.(*Pair)
	require.True(t, ok, "symbol table root did not survive collection")
	assert.Equal(t, 1.0, p.Car.(*Number).Val)
}

func TestCollectPreservesProtectStackRoots(t *testing.T) {
	in := newTestInterpreter()
	var kept Value = in.NewString("alive")
	mark := in.Protect.Push(func() Value { return kept })
	defer in.Protect.Unwind(mark)

	allocateGarbage(in, 200)

	s, ok := kept.(*String)
	require.True(t, ok, "protect-stack root did not survive collection")
	assert.Equal(t, "alive", s.Val)
}

func TestCollectPreservesBindingPushdownOldValues(t *testing.T) {
	in := newTestInterpreter()
	sym := in.Intern("shadowed-symbol")
	sym.Value = in.NewString("original")
	mark := in.Bindings.Push(sym, in.NewString("temporary"))

	allocateGarbage(in, 200)

	in.Bindings.PopTo(mark)
	s, ok := sym.Value.(*String)
	require.True(t, ok, "binding pushdown's saved old value did not survive collection")
	assert.Equal(t, "original", s.Val)
}

func TestCollectReclaimsUnreachableObjects(t *testing.T) {
	in := newTestInterpreter()
	allocateGarbage(in, 200)

	assert.NotEmpty(t, in.Heap.freelist[PairType], "unreachable pairs should be reclaimed onto the freelist")
	assert.NotEmpty(t, in.Heap.freelist[NumberType], "unreachable numbers should be reclaimed onto the freelist")
}

func TestFreelistObjectsAreReusedBeforeAllocatingFresh(t *testing.T) {
	in := newTestInterpreter()
	allocateGarbage(in, 200)

	before := len(in.Heap.freelist[PairType])
	require.Greater(t, before, 0)

	car := in.NewString("payload")
	p := in.Cons(car, in.T)

	after := len(in.Heap.freelist[PairType])
	assert.Equal(t, before-1, after, "Cons should have taken a Pair off the freelist instead of allocating fresh")
	require.Equal(t, car, p.Car, "reused Pair must carry the new payload, not a stale zeroed one")
	assert.Equal(t, in.T, p.Cdr)
}
