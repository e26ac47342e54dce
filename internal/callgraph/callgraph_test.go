package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fridayops/crossing/internal/model"
)

func TestReachableExcludesSelf(t *testing.T) {
	g := New([]model.CallEdge{{Caller: "a", Callee: "a"}})
	assert.False(t, g.CanReach("a", "a"))
}

func TestReachableTransitive(t *testing.T) {
	g := New([]model.CallEdge{
		{Caller: "a", Callee: "b"},
		{Caller: "b", Callee: "c"},
	})
	assert.True(t, g.CanReach("a", "c"))
	assert.False(t, g.CanReach("c", "a"))
}

func TestReachableHandlesCycles(t *testing.T) {
	g := New([]model.CallEdge{
		{Caller: "a", Callee: "b"},
		{Caller: "b", Callee: "a"},
	})
	reach := g.Reachable("a")
	assert.True(t, reach["b"])
	assert.False(t, reach["a"])
}

func TestDuplicateEdgesDeduped(t *testing.T) {
	g := New([]model.CallEdge{
		{Caller: "a", Callee: "b"},
		{Caller: "a", Callee: "b"},
	})
	assert.Len(t, g.adjacency["a"], 1)
}
