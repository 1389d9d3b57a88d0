package graph

// Node is one entry in an import trace. Specifier is the import text File
// used to reach the next node; it is empty on the denied module itself.
type Node struct {
	File      string
	Specifier string
}

// Trace is an ordered import chain, entry point first, denied module
// last. Complete is true when the backward walk ended at a module with no
// recorded importer (the entry point) rather than at the depth bound or a
// cycle.
type Trace struct {
	Nodes    []Node
	Complete bool
}

// BuildTrace walks the graph backward from target toward the entry point,
// producing at most maxDepth nodes. At each step the first-recorded
// importer wins; this is a deliberate policy, not a shortest-path search.
// A visited set guards against import cycles.
func (g *Graph) BuildTrace(target string, maxDepth int) Trace {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := []Node{{File: target}}
	visited := make(map[string]bool)
	current := target

	for len(nodes) < maxDepth {
		edges := g.edges[current]
		if len(edges) == 0 {
			return Trace{Nodes: nodes, Complete: true}
		}
		first := edges[0]
		if visited[first.Importer] {
			return Trace{Nodes: nodes}
		}
		visited[first.Importer] = true
		nodes = append([]Node{{File: first.Importer, Specifier: first.Specifier}}, nodes...)
		current = first.Importer
	}

	return Trace{Nodes: nodes}
}
