package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adjacency(edges map[string][]Step[string]) func(string) []Step[string] {
	return func(s string) []Step[string] { return edges[s] }
}

func TestRunShortestPath(t *testing.T) {
	next := adjacency(map[string][]Step[string]{
		"a": {{To: "b", Cost: 4}, {To: "c", Cost: 1}},
		"c": {{To: "b", Cost: 1}, {To: "d", Cost: 7}},
		"b": {{To: "d", Cost: 1}},
	})
	tree := Run("a", 0, next, nil)

	d, ok := tree.Dist("d")
	require.True(t, ok)
	assert.Equal(t, 3, d)
	p, ok := tree.Path("d")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "c", "b", "d"}, p)
	assert.Equal(t, []string{"a", "c", "b", "d"}, tree.Settled())
}

func TestRunStartCostAndTerminal(t *testing.T) {
	next := adjacency(map[string][]Step[string]{
		"a": {{To: "b", Cost: 1}},
		"b": {{To: "c", Cost: 1}},
	})
	tree := Run("a", 10, next, func(s string) bool { return s == "b" })
	d, ok := tree.Dist("b")
	require.True(t, ok)
	assert.Equal(t, 11, d)
	_, ok = tree.Dist("c")
	assert.False(t, ok)
	_, ok = tree.Path("c")
	assert.False(t, ok)
}

func TestRunTieBreakIsDiscoveryOrder(t *testing.T) {
	next := adjacency(map[string][]Step[string]{
		"s": {{To: "z", Cost: 2}, {To: "y", Cost: 2}, {To: "x", Cost: 2}},
	})
	for i := 0; i < 20; i++ {
		tree := Run("s", 0, next, nil)
		assert.Equal(t, []string{"s", "z", "y", "x"}, tree.Settled())
	}
}

func TestRunHandlesCycles(t *testing.T) {
	next := adjacency(map[string][]Step[string]{
		"a": {{To: "b", Cost: 0}},
		"b": {{To: "a", Cost: 0}, {To: "c", Cost: -3}},
	})
	tree := Run("a", 0, next, nil)
	d, ok := tree.Dist("c")
	require.True(t, ok)
	assert.Equal(t, 0, d)
	p, ok := tree.Path("c")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, p)
}

func TestRunIsolatedStart(t *testing.T) {
	tree := Run("a", 5, adjacency(nil), nil)
	d, ok := tree.Dist("a")
	require.True(t, ok)
	assert.Equal(t, 5, d)
	p, ok := tree.Path("a")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, p)
	assert.Equal(t, []string{"a"}, tree.Settled())
}

func TestRunKeepsCheapestParallelStep(t *testing.T) {
	next := adjacency(map[string][]Step[string]{
		"a": {{To: "b", Cost: 9}, {To: "b", Cost: 2}},
	})
	tree := Run("a", 0, next, nil)
	d, ok := tree.Dist("b")
	require.True(t, ok)
	assert.Equal(t, 2, d)
}
