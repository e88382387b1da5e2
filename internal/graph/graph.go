package graph

import "sort"

// Graph is the live file graph owned by a single session. It is not safe for
// concurrent use; the owning session serializes every mutation.
type Graph struct {
	nodes map[string]*FileNode
	edges []Edge

	// pairs indexes unordered node pairs that already have any edge.
	pairs map[pairKey]struct{}
}

type pairKey struct{ a, b string }

func newPairKey(x, y string) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*FileNode),
		pairs: make(map[pairKey]struct{}),
	}
}

// AddNode inserts a node for path if one does not exist yet and returns it.
// The second return value reports whether the node was created.
func (g *Graph) AddNode(path string, size int64, language string) (*FileNode, bool) {
	if n, ok := g.nodes[path]; ok {
		return n, false
	}
	n := &FileNode{
		ID:       path,
		Path:     path,
		Size:     size,
		Language: language,
	}
	g.nodes[path] = n
	return n, true
}

// Node returns the node stored under path.
func (g *Graph) Node(path string) (*FileNode, bool) {
	n, ok := g.nodes[path]
	return n, ok
}

// HasNode reports whether path is a known node.
func (g *Graph) HasNode(path string) bool {
	_, ok := g.nodes[path]
	return ok
}

// NodeCount returns |V|.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns |E|.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Paths returns every node path in lexical order.
func (g *Graph) Paths() []string {
	paths := make([]string, 0, len(g.nodes))
	for p := range g.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Edges returns the edges in discovery order. The slice must not be modified.
func (g *Graph) Edges() []Edge { return g.edges }

// AddEdge appends e if both endpoints exist. Edges that reference unknown
// nodes are dropped, not queued.
func (g *Graph) AddEdge(e Edge) bool {
	if !g.HasNode(e.Source) || !g.HasNode(e.Target) {
		return false
	}
	g.edges = append(g.edges, e)
	g.pairs[newPairKey(e.Source, e.Target)] = struct{}{}
	return true
}

// Connected reports whether any edge joins a and b in either direction.
func (g *Graph) Connected(a, b string) bool {
	_, ok := g.pairs[newPairKey(a, b)]
	return ok
}

// ApplyCentrality copies scores onto the matching nodes.
func (g *Graph) ApplyCentrality(scores map[string]float64) {
	for path, score := range scores {
		if n, ok := g.nodes[path]; ok {
			n.Centrality = score
		}
	}
}
