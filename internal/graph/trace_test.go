package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// entry.js → a.js → b.js → c.js → denied.js
func chainGraph() *Graph {
	g := New()
	g.Record("a.js", "entry.js", "./a")
	g.Record("b.js", "a.js", "./b")
	g.Record("c.js", "b.js", "./c")
	g.Record("denied.js", "c.js", "./denied")
	return g
}

func TestBuildTrace_FullChain(t *testing.T) {
	g := chainGraph()

	tr := g.BuildTrace("denied.js", 10)

	require.Len(t, tr.Nodes, 5)
	assert.True(t, tr.Complete)
	assert.Equal(t, "entry.js", tr.Nodes[0].File)
	assert.Equal(t, "denied.js", tr.Nodes[4].File)
	assert.Empty(t, tr.Nodes[4].Specifier, "the denied module carries no specifier")
	assert.Equal(t, "./denied", tr.Nodes[3].Specifier, "each node keeps the specifier it imported with")
}

func TestBuildTrace_Truncated(t *testing.T) {
	g := chainGraph()

	tr := g.BuildTrace("denied.js", 2)

	require.Len(t, tr.Nodes, 2)
	assert.False(t, tr.Complete, "a depth-bounded walk is incomplete")
	assert.Equal(t, "c.js", tr.Nodes[0].File)
	assert.Equal(t, "denied.js", tr.Nodes[1].File)
	for _, n := range tr.Nodes {
		assert.NotEqual(t, "entry.js", n.File)
	}
}

func TestBuildTrace_FirstEdgeWins(t *testing.T) {
	g := New()
	g.Record("denied.js", "first.js", "./denied")
	g.Record("denied.js", "second.js", "./denied")

	tr := g.BuildTrace("denied.js", 10)

	require.Len(t, tr.Nodes, 2)
	assert.Equal(t, "first.js", tr.Nodes[0].File, "first-discovered importer wins, not most recent")
}

func TestBuildTrace_CycleGuard(t *testing.T) {
	g := New()
	g.Record("b.js", "a.js", "./b")
	g.Record("a.js", "b.js", "./a")

	tr := g.BuildTrace("a.js", 10)

	// a ← b ← a stops once the walk would revisit b.
	require.Len(t, tr.Nodes, 3)
	assert.False(t, tr.Complete)
}

func TestBuildTrace_NoImporters(t *testing.T) {
	g := New()

	tr := g.BuildTrace("orphan.js", 10)

	require.Len(t, tr.Nodes, 1)
	assert.True(t, tr.Complete)
	assert.Equal(t, "orphan.js", tr.Nodes[0].File)
}
