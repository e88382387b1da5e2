package diagrams

import (
	"strings"
	"testing"

	"github.com/ziadkadry99/atlas/internal/graph"
)

func sampleGraph() *graph.Graph {
	g := graph.New()
	for _, p := range []string{"src/app.js", "src/util.ts", "src/[id].jsx", "lib/db.py"} {
		g.AddNode(p, 10, "")
	}
	g.AddEdge(graph.Edge{Source: "src/app.js", Target: "src/util.ts", Type: graph.EdgeDependency, Weight: 1})
	g.AddEdge(graph.Edge{Source: "src/[id].jsx", Target: "src/util.ts", Type: graph.EdgeDependency, Weight: 1})
	g.AddEdge(graph.Edge{Source: "lib/db.py", Target: "src/app.js", Type: graph.EdgeCoChange, Weight: 0.4})
	g.ApplyCentrality(graph.Centrality(g, graph.DefaultCentralityOptions()))
	return g
}

func TestGraphDiagram(t *testing.T) {
	result := GraphDiagram(sampleGraph(), DefaultOptions())

	if !strings.HasPrefix(result, "graph LR\n") {
		t.Errorf("expected graph LR header, got: %s", result)
	}

	// Nodes are numbered in lexical path order.
	for _, want := range []string{
		`n0["lib/db.py"]`,
		`n1["src/#lsqb;id#rsqb;.jsx"]`,
		`n2["src/app.js"]`,
		`n3["src/util.ts"]`,
		"n2 --> n3",
		"n1 --> n3",
		"n0 -.-|0.4| n2",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in diagram:\n%s", want, result)
		}
	}

	// util.ts is the only file with centrality 1.
	if !strings.Contains(result, "class n3 hotspot") {
		t.Errorf("expected util.ts to be a hotspot:\n%s", result)
	}
}

func TestGraphDiagram_Limit(t *testing.T) {
	result := GraphDiagram(sampleGraph(), Options{Limit: 2})

	if !strings.Contains(result, "src/util.ts") {
		t.Errorf("most central file missing:\n%s", result)
	}
	if got := strings.Count(result, `["`); got != 2 {
		t.Errorf("expected 2 nodes, got %d:\n%s", got, result)
	}
	if strings.Contains(result, "hotspot") {
		t.Errorf("hotspots disabled but rendered:\n%s", result)
	}
}

func TestGraphDiagram_Empty(t *testing.T) {
	if got := GraphDiagram(graph.New(), DefaultOptions()); got != "graph LR\n" {
		t.Errorf("unexpected diagram for empty graph: %q", got)
	}
}

func TestEscapeMermaid(t *testing.T) {
	got := escapeMermaid(`say "hello"`)
	if !strings.Contains(got, "#quot;") {
		t.Errorf("expected escaped quotes, got: %s", got)
	}

	got = escapeMermaid("pages/(auth)/login.tsx")
	if strings.Contains(got, "(") || strings.Contains(got, ")") {
		t.Errorf("expected escaped parens, got: %s", got)
	}
	if !strings.Contains(got, "#lpar;") || !strings.Contains(got, "#rpar;") {
		t.Errorf("expected #lpar; and #rpar;, got: %s", got)
	}

	got = escapeMermaid("src/[slug]/<page>.jsx")
	if strings.ContainsAny(got, "[]<>") {
		t.Errorf("expected escaped brackets, got: %s", got)
	}
}
