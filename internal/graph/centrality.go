package graph

import "sort"

// CentralityOptions configures the PageRank-style importance computation.
type CentralityOptions struct {
	DampingFactor float64
	Iterations    int
}

// DefaultCentralityOptions returns the damping factor and iteration count used
// for every live session.
func DefaultCentralityOptions() CentralityOptions {
	return CentralityOptions{
		DampingFactor: 0.85,
		Iterations:    20,
	}
}

// Centrality computes a normalized importance score for every node over the
// graph as it currently stands. It keeps no state between calls; each call
// starts from a uniform distribution and runs a fixed number of iterations.
// Scores are divided by the maximum score so the top node reads 1.0.
func Centrality(g *Graph, opts CentralityOptions) map[string]float64 {
	scores := CentralityRaw(g, opts)

	maxScore := 0.0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore > 0 {
		for p, s := range scores {
			scores[p] = s / maxScore
		}
	}
	return scores
}

// CentralityRaw is Centrality without the final max-normalization. Only
// dependency edges carry importance. Inbound sources are summed in path order,
// so the result does not depend on the order edges arrived in.
func CentralityRaw(g *Graph, opts CentralityOptions) map[string]float64 {
	paths := g.Paths()
	n := len(paths)
	scores := make(map[string]float64, n)
	if n == 0 {
		return scores
	}

	inbound := make(map[string][]string, n)
	outDegree := make(map[string]int, n)
	for _, e := range g.edges {
		if e.Type != EdgeDependency || !g.HasNode(e.Source) || !g.HasNode(e.Target) {
			continue
		}
		inbound[e.Target] = append(inbound[e.Target], e.Source)
		outDegree[e.Source]++
	}
	for _, sources := range inbound {
		sort.Strings(sources)
	}

	initial := 1.0 / float64(n)
	for _, p := range paths {
		scores[p] = initial
	}

	base := (1 - opts.DampingFactor) / float64(n)
	next := make(map[string]float64, n)
	for iter := 0; iter < opts.Iterations; iter++ {
		for _, p := range paths {
			sum := 0.0
			for _, src := range inbound[p] {
				if d := outDegree[src]; d > 0 {
					sum += scores[src] / float64(d)
				}
			}
			next[p] = base + opts.DampingFactor*sum
		}
		scores, next = next, scores
	}
	return scores
}
