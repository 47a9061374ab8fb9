package gcheap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/eon/lang/machine"
)

func TestCollectKeepsReachableAndDropsGarbage(t *testing.T) {
	h := NewHeap()

	reachable := &machine.Struct{TypeName: "Point", Fields: []machine.Value{machine.Int(1), machine.Int(2)}}
	garbage := &machine.Struct{TypeName: "Point", Fields: []machine.Value{machine.Int(9), machine.Int(9)}}

	reachableHandle := h.Alloc(reachable)
	garbageHandle := h.Alloc(garbage)

	h.Collect([]machine.Value{reachable})

	_, ok := h.Resolve(reachableHandle)
	require.True(t, ok, "reachable value was collected")
	_, ok = h.Resolve(garbageHandle)
	require.False(t, ok, "garbage value survived collection")

	_, _, reclaimed := h.Stats()
	require.Equal(t, 1, reclaimed)
}

func TestCollectTracesNestedArray(t *testing.T) {
	h := NewHeap()

	inner := &machine.Struct{TypeName: "Point", Fields: []machine.Value{machine.Int(1)}}
	outer := &machine.Array{Elems: []machine.Value{inner}}

	innerHandle := h.Alloc(inner)
	h.Alloc(outer) // outer is the only root below; inner is reached through it

	h.Collect([]machine.Value{outer})

	_, ok := h.Resolve(innerHandle)
	require.True(t, ok, "value reachable only through an array element was collected")
}
