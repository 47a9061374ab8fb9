// Package gcheap implements the tracing garbage collector for composite
// values that have crossed into foreign code: once a Struct, Array,
// Variant or Closure is handed across the FFI boundary it is addressed by
// a stable Handle rather than its Go pointer, so the heap -- not Go's own
// collector -- decides when it is safe to let it go.
package gcheap

import (
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"

	"github.com/mna/eon/lang/machine"
)

// Handle is an opaque, stable reference to a heap-allocated value. Foreign
// code holds Handles, never raw pointers, the same boundary a
// machine.ForeignHandle crosses in the other direction.
type Handle uint64

// Heap owns the handle table for every composite value exposed to foreign
// code and the virtual machine's suspension protocol. It implements
// machine.Collector, so a VM configured with a Heap calls Collect between
// Run invocations.
type Heap struct {
	objects *swiss.Map[Handle, machine.Value]
	order   []Handle // allocation order, walked on sweep since swiss.Map exposes no iterator here
	next    Handle

	allocs      int
	collections int
	reclaimed   int
}

func NewHeap() *Heap {
	return &Heap{objects: swiss.NewMap[Handle, machine.Value](64)}
}

// Alloc registers v under a freshly minted handle and returns it. Scalars
// (Int, Bool, ...) don't need a handle to be held safely across the FFI
// boundary, but Alloc accepts any Value uniformly; the marshalling layer
// decides which values actually need one.
func (h *Heap) Alloc(v machine.Value) Handle {
	h.next++
	handle := h.next
	h.objects.Put(handle, v)
	h.order = append(h.order, handle)
	h.allocs++
	return handle
}

func (h *Heap) Resolve(handle Handle) (machine.Value, bool) {
	return h.objects.Get(handle)
}

func (h *Heap) Stats() (allocs, collections, reclaimed int) {
	return h.allocs, h.collections, h.reclaimed
}

// Collect runs one mark-and-sweep pass: every value reachable from roots
// (transitively, through array elements, struct fields, variant payloads
// and closure cells) survives; every handle whose value wasn't reached is
// dropped from the table, so nothing outside the heap can resolve it
// again and Go's own collector is free to reclaim it once the VM's stack
// and frames let go of their own references too.
func (h *Heap) Collect(roots []machine.Value) {
	byValue := make(map[machine.Value]Handle, len(h.order))
	for _, handle := range h.order {
		if v, ok := h.objects.Get(handle); ok {
			byValue[v] = handle
		}
	}

	marked := make(map[Handle]bool, len(byValue))
	var mark func(v machine.Value)
	mark = func(v machine.Value) {
		if handle, ok := byValue[v]; ok {
			if marked[handle] {
				return
			}
			marked[handle] = true
		}
		switch t := v.(type) {
		case *machine.Array:
			for _, e := range t.Elems {
				mark(e)
			}
		case *machine.Struct:
			for _, f := range t.Fields {
				mark(f)
			}
		case *machine.Variant:
			for _, p := range t.Payload {
				mark(p)
			}
		case *machine.Closure:
			for _, cell := range t.Freevars {
				mark(cell.V)
			}
		}
	}
	for _, r := range roots {
		mark(r)
	}

	before := len(h.order)
	h.order = slices.DeleteFunc(h.order, func(handle Handle) bool { return !marked[handle] })
	h.reclaimed += before - len(h.order)

	survivors := swiss.NewMap[Handle, machine.Value](uint32(len(h.order) + 1))
	for _, handle := range h.order {
		if v, ok := h.objects.Get(handle); ok {
			survivors.Put(handle, v)
		}
	}
	h.objects = survivors
	h.collections++
}
