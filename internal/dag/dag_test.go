package dag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodeIDs[T any](nodes []*Node[T]) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := NewGraph[string]()

	g.AddNode("a", "node A")
	g.AddNode("b", "node B")
	g.AddNode("c", "node C")
	assert.Equal(t, 3, g.NodeCount())

	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))
	assert.Equal(t, 2, g.EdgeCount())

	node, ok := g.GetNode("b")
	require.True(t, ok)
	assert.Equal(t, "node B", node.Data)
}

func TestGraph_AddNode_ReplacesData(t *testing.T) {
	g := NewGraph[int]()
	g.AddNode("a", 1)
	g.AddNode("b", 2)
	require.NoError(t, g.AddEdge("a", "b"))

	g.AddNode("a", 10)

	node, _ := g.GetNode("a")
	assert.Equal(t, 10, node.Data)
	assert.Equal(t, []string{"b"}, g.GetChildren("a"))
}

func TestGraph_AddEdge_InvalidNodes(t *testing.T) {
	g := NewGraph[any]()
	g.AddNode("a", nil)

	assert.Error(t, g.AddEdge("a", "nonexistent"))
	assert.Error(t, g.AddEdge("nonexistent", "a"))
}

func TestGraph_AddEdge_SelfLoop(t *testing.T) {
	g := NewGraph[any]()
	g.AddNode("a", nil)

	err := g.AddEdge("a", "a")
	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []string{"a", "a"}, cycleErr.Path)
}

func TestGraph_GetParentsAndChildren(t *testing.T) {
	g := NewGraph[any]()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(id, nil)
	}
	require.NoError(t, g.AddEdge("a", "c"))
	require.NoError(t, g.AddEdge("b", "c"))

	assert.Equal(t, []string{"a", "b"}, g.GetParents("c"))
	assert.Equal(t, []string{"c"}, g.GetChildren("a"))
	assert.Empty(t, g.GetParents("a"))
}

func TestGraph_TopologicalSort_Diamond(t *testing.T) {
	//     a
	//    / \
	//   b   c
	//    \ /
	//     d
	g := NewGraph[any]()
	for _, id := range []string{"d", "c", "b", "a"} {
		g.AddNode(id, nil)
	}
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("a", "c"))
	require.NoError(t, g.AddEdge("b", "d"))
	require.NoError(t, g.AddEdge("c", "d"))

	sorted, err := g.TopologicalSort()
	require.NoError(t, err)
	ids := nodeIDs(sorted)
	require.Len(t, ids, 4)

	assert.Less(t, indexOf(ids, "a"), indexOf(ids, "b"))
	assert.Less(t, indexOf(ids, "a"), indexOf(ids, "c"))
	assert.Less(t, indexOf(ids, "b"), indexOf(ids, "d"))
	assert.Less(t, indexOf(ids, "c"), indexOf(ids, "d"))
}

func TestGraph_TopologicalSort_Deterministic(t *testing.T) {
	build := func() []string {
		g := NewGraph[any]()
		for _, id := range []string{"x", "m", "a", "q"} {
			g.AddNode(id, nil)
		}
		require.NoError(t, g.AddEdge("q", "m"))
		sorted, err := g.TopologicalSort()
		require.NoError(t, err)
		return nodeIDs(sorted)
	}

	first := build()
	for range 5 {
		assert.Equal(t, first, build())
	}
}

func TestGraph_TopologicalSort_WithCycle(t *testing.T) {
	g := NewGraph[any]()
	for _, id := range []string{"a", "b", "c"} {
		g.AddNode(id, nil)
	}
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("b", "c"))
	require.NoError(t, g.AddEdge("c", "a"))

	hasCycle, path := g.HasCycle()
	assert.True(t, hasCycle)
	assert.NotEmpty(t, path)

	_, err := g.TopologicalSort()
	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Contains(t, cycleErr.Error(), "cycle detected")
}

func TestGraph_RootsAndLeaves(t *testing.T) {
	g := NewGraph[any]()
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddNode(id, nil)
	}
	require.NoError(t, g.AddEdge("a", "c"))
	require.NoError(t, g.AddEdge("b", "c"))

	assert.Equal(t, []string{"a", "b", "d"}, g.GetRoots())
	assert.Equal(t, []string{"c", "d"}, g.GetLeaves())
}

func TestGraph_DuplicateEdges(t *testing.T) {
	g := NewGraph[any]()
	g.AddNode("a", nil)
	g.AddNode("b", nil)

	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("a", "b"))

	assert.Equal(t, 1, g.EdgeCount())
	assert.Len(t, g.GetParents("b"), 1)
}
