package graph

import "sync"

// Edge records that Importer requested Specifier, which resolved to the
// target module the edge is stored under.
type Edge struct {
	Importer  string
	Specifier string
}

// Graph is the per-build import graph: target module id → importer edges
// in the order resolution events arrived. It is the only cross-call
// mutable state in a build, so all access is serialized here; inserts are
// idempotent per (target, importer) so concurrent re-resolution of the
// same edge cannot corrupt the list.
type Graph struct {
	mu    sync.RWMutex
	edges map[string][]Edge
}

// New creates an empty graph. One graph lives for exactly one build.
func New() *Graph {
	return &Graph{edges: make(map[string][]Edge)}
}

// Record adds an importer edge for target unless the same importer is
// already recorded for it. Re-recording is a silent no-op; the first
// recorded edge keeps its position.
func (g *Graph) Record(target, importer, specifier string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, e := range g.edges[target] {
		if e.Importer == importer {
			return
		}
	}
	g.edges[target] = append(g.edges[target], Edge{Importer: importer, Specifier: specifier})
}

// Invalidate removes file from the graph: both its own recorded edges and
// every edge elsewhere whose importer is file, so stale nodes can no
// longer appear inside a trace after an incremental rebuild.
func (g *Graph) Invalidate(file string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.edges, file)
	for target, edges := range g.edges {
		kept := edges[:0]
		for _, e := range edges {
			if e.Importer != file {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(g.edges, target)
		} else {
			g.edges[target] = kept
		}
	}
}

// Clear resets the graph at build start.
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges = make(map[string][]Edge)
}

// Edges returns a copy of the recorded edges for target, oldest first.
func (g *Graph) Edges(target string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := g.edges[target]
	if len(edges) == 0 {
		return nil
	}
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// Dependents returns the distinct importers recorded for file, oldest
// first. The watch pipeline uses this to report which modules are
// affected by a change before the file is invalidated.
func (g *Graph) Dependents(file string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := g.edges[file]
	if len(edges) == 0 {
		return nil
	}
	out := make([]string, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.Importer)
	}
	return out
}

// Len returns the number of targets with at least one recorded edge.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}
