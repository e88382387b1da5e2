package session

import (
	"sort"

	"github.com/ziadkadry99/atlas/internal/graph"
	"github.com/ziadkadry99/atlas/internal/history"
)

// DefaultMinCoChange is the smallest raw co-change count that becomes an edge.
const DefaultMinCoChange = 3

// mergeHistory copies churn and co-change lists onto nodes the graph already
// knows. Paths outside the scanned file set are ignored.
func mergeHistory(g *graph.Graph, result history.Result) {
	for path, rec := range result {
		n, ok := g.Node(path)
		if !ok {
			continue
		}
		n.Churn = rec.Churn
		n.CoChanges = rec.CoChanges
	}
}

// synthesizeCoChanges adds a co-change edge for every sufficiently frequent
// pair of known files that no edge joins yet, and returns the edges it added.
// The pair check covers both directions and every edge type, so the symmetric
// entries of a result produce a single edge.
func synthesizeCoChanges(g *graph.Graph, result history.Result, minCount int) []graph.Edge {
	paths := make([]string, 0, len(result))
	for path := range result {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var added []graph.Edge
	for _, path := range paths {
		if !g.HasNode(path) {
			continue
		}
		for _, cc := range result[path].CoChanges {
			if cc.Count < minCount || cc.File == path || !g.HasNode(cc.File) {
				continue
			}
			if g.Connected(path, cc.File) {
				continue
			}
			e := graph.Edge{
				Source: path,
				Target: cc.File,
				Type:   graph.EdgeCoChange,
				Weight: graph.CoChangeWeight(cc.Count),
			}
			if g.AddEdge(e) {
				added = append(added, e)
			}
		}
	}
	return added
}
