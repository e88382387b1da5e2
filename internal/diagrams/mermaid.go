// Package diagrams renders an analyzed graph as a Mermaid flowchart.
package diagrams

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ziadkadry99/atlas/internal/graph"
)

// Options controls which part of the graph is drawn.
type Options struct {
	// Limit keeps only the most central files. Zero draws every file.
	Limit int
	// Hotspot marks files whose centrality is at least this value.
	Hotspot float64
}

// DefaultOptions draws every file and highlights the top of the ranking.
func DefaultOptions() Options {
	return Options{Hotspot: 0.75}
}

// GraphDiagram generates a mermaid graph LR diagram. Dependency edges are
// solid arrows; co-change edges are dotted links labelled with their weight.
// Edges whose endpoints were cut by Limit are omitted.
func GraphDiagram(g *graph.Graph, opts Options) string {
	paths := selectPaths(g, opts.Limit)

	ids := make(map[string]string, len(paths))
	for i, p := range paths {
		ids[p] = fmt.Sprintf("n%d", i)
	}

	var b strings.Builder
	b.WriteString("graph LR\n")

	var hot []string
	for _, p := range paths {
		n, _ := g.Node(p)
		b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", ids[p], escapeMermaid(p)))
		if opts.Hotspot > 0 && n.Centrality >= opts.Hotspot {
			hot = append(hot, ids[p])
		}
	}

	for _, e := range g.Edges() {
		from, ok := ids[e.Source]
		if !ok {
			continue
		}
		to, ok := ids[e.Target]
		if !ok {
			continue
		}
		switch e.Type {
		case graph.EdgeCoChange:
			b.WriteString(fmt.Sprintf("    %s -.-|%.1f| %s\n", from, e.Weight, to))
		default:
			b.WriteString(fmt.Sprintf("    %s --> %s\n", from, to))
		}
	}

	if len(hot) > 0 {
		b.WriteString("    classDef hotspot fill:#f96,stroke:#333,stroke-width:2px\n")
		b.WriteString(fmt.Sprintf("    class %s hotspot\n", strings.Join(hot, ",")))
	}

	return b.String()
}

// selectPaths returns the drawn paths in lexical order.
func selectPaths(g *graph.Graph, limit int) []string {
	paths := g.Paths()
	if limit <= 0 || len(paths) <= limit {
		return paths
	}

	ranked := append([]string(nil), paths...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, _ := g.Node(ranked[i])
		b, _ := g.Node(ranked[j])
		return a.Centrality > b.Centrality
	})
	ranked = ranked[:limit]
	sort.Strings(ranked)
	return ranked
}

// escapeMermaid escapes characters that have special meaning in mermaid labels.
func escapeMermaid(s string) string {
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "(", "#lpar;")
	s = strings.ReplaceAll(s, ")", "#rpar;")
	s = strings.ReplaceAll(s, "[", "#lsqb;")
	s = strings.ReplaceAll(s, "]", "#rsqb;")
	s = strings.ReplaceAll(s, "{", "#lbrace;")
	s = strings.ReplaceAll(s, "}", "#rbrace;")
	s = strings.ReplaceAll(s, "<", "#lt;")
	s = strings.ReplaceAll(s, ">", "#gt;")
	return s
}
