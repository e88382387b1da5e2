package session

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ziadkadry99/atlas/internal/graph"
	"github.com/ziadkadry99/atlas/internal/history"
	"github.com/ziadkadry99/atlas/internal/layout"
	"github.com/ziadkadry99/atlas/internal/stream"
	"github.com/ziadkadry99/atlas/internal/walker"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func noGit(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return nil, errors.New("fatal: not a git repository")
}

// recorder collects every frame written to it.
type recorder struct {
	frames []stream.Frame
}

func (r *recorder) Send(f stream.Frame) error {
	r.frames = append(r.frames, f)
	return nil
}

func (r *recorder) ofType(ft stream.FrameType) []stream.Frame {
	var out []stream.Frame
	for _, f := range r.frames {
		if f.Type == ft {
			out = append(out, f)
		}
	}
	return out
}

func oneShot(dir string) Options {
	return Options{
		Analysis: AnalysisConfig{
			Walker:    walker.WalkerConfig{RootDir: dir},
			GitRunner: noGit,
		},
		ExitOnComplete: true,
		Seed:           1,
	}
}

func TestRun_TwoFileRepository(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.js": "import { b } from './b';\nconsole.log(b);\n",
		"b.js": "export const b = 1;\n",
	})

	rec := &recorder{}
	s := New(rec, oneShot(dir))
	if err := s.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if got := len(rec.ofType(stream.FrameNode)); got != 2 {
		t.Errorf("expected 2 node frames, got %d", got)
	}

	edges := rec.ofType(stream.FrameEdge)
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge frame, got %d", len(edges))
	}
	e := edges[0].Data.(graph.Edge)
	if e.Source != "a.js" || e.Target != "b.js" || e.Type != graph.EdgeDependency {
		t.Errorf("unexpected edge: %+v", e)
	}

	last := rec.frames[len(rec.frames)-1]
	if last.Type != stream.FrameComplete {
		t.Errorf("last frame = %s, want complete", last.Type)
	}

	a, _ := s.Graph().Node("a.js")
	b, _ := s.Graph().Node("b.js")
	if a.Centrality <= 0 {
		t.Errorf("a.js centrality = %v, want > 0", a.Centrality)
	}
	if b.Centrality < a.Centrality {
		t.Errorf("b.js centrality %v < a.js centrality %v", b.Centrality, a.Centrality)
	}
}

func TestRun_NodesPrecedeTheirEdges(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"src/index.js": "const u = require('./util');\nimport('./lazy.js');\n",
		"src/util.ts":  "export const u = 1;\n",
		"src/lazy.js":  "export default 2;\n",
	})

	rec := &recorder{}
	if err := New(rec, oneShot(dir)).Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	seen := map[string]bool{}
	edges := 0
	for _, f := range rec.frames {
		switch f.Type {
		case stream.FrameNode:
			seen[f.Data.(graph.FileNode).Path] = true
		case stream.FrameEdge:
			edges++
			e := f.Data.(graph.Edge)
			if !seen[e.Source] || !seen[e.Target] {
				t.Errorf("edge %s -> %s sent before its nodes", e.Source, e.Target)
			}
		}
	}
	if edges != 2 {
		t.Errorf("expected 2 edges, got %d", edges)
	}
}

func TestRun_NoHistory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.js": "import './b';\n",
		"b.js": "",
	})

	rec := &recorder{}
	s := New(rec, oneShot(dir))
	if err := s.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	for _, f := range rec.ofType(stream.FrameEdge) {
		if f.Data.(graph.Edge).Type == graph.EdgeCoChange {
			t.Errorf("unexpected co-change edge %+v", f.Data)
		}
	}
	for _, path := range s.Graph().Paths() {
		n, _ := s.Graph().Node(path)
		if n.Churn != 0 || len(n.CoChanges) != 0 {
			t.Errorf("%s has history data without a repository: %+v", path, n)
		}
	}
	if len(rec.ofType(stream.FrameComplete)) != 1 {
		t.Error("expected exactly one complete frame")
	}
}

func TestRun_CoChangeEdgesFromGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	dir := t.TempDir()

	git := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=atlas", "GIT_AUTHOR_EMAIL=atlas@example.com",
			"GIT_COMMITTER_NAME=atlas", "GIT_COMMITTER_EMAIL=atlas@example.com",
			"GIT_CONFIG_NOSYSTEM=1", "HOME="+dir,
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
		}
	}

	git("init", "-q")
	for i := 0; i < 4; i++ {
		body := strings.Repeat("// edit\n", i+1)
		writeFiles(t, dir, map[string]string{
			"x.js": body,
			"y.js": body,
		})
		if i < 2 {
			writeFiles(t, dir, map[string]string{"z.js": body})
		}
		git("add", "-A")
		git("commit", "-q", "-m", "change")
	}

	opts := oneShot(dir)
	opts.Analysis.GitRunner = nil
	rec := &recorder{}
	s := New(rec, opts)
	if err := s.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	var cochange []graph.Edge
	for _, f := range rec.ofType(stream.FrameEdge) {
		if e := f.Data.(graph.Edge); e.Type == graph.EdgeCoChange {
			cochange = append(cochange, e)
		}
	}
	// x/y changed together 4 times; z joined only twice, below the threshold.
	if len(cochange) != 1 {
		t.Fatalf("expected 1 co-change edge, got %d: %+v", len(cochange), cochange)
	}
	if cochange[0].Source != "x.js" || cochange[0].Target != "y.js" {
		t.Errorf("unexpected co-change edge %+v", cochange[0])
	}
	if cochange[0].Weight != 0.4 {
		t.Errorf("weight = %v, want 0.4", cochange[0].Weight)
	}

	x, _ := s.Graph().Node("x.js")
	if x.Churn != 4 {
		t.Errorf("x.js churn = %d, want 4", x.Churn)
	}
}

func TestSynthesizeCoChanges(t *testing.T) {
	g := graph.New()
	for _, p := range []string{"a", "b", "c", "d"} {
		g.AddNode(p, 1, "")
	}
	g.AddEdge(graph.Edge{Source: "b", Target: "a", Type: graph.EdgeDependency, Weight: 1})

	result := history.Result{
		"a": {Churn: 6, CoChanges: []graph.CoChange{{File: "b", Count: 5}, {File: "c", Count: 4}, {File: "d", Count: 2}, {File: "gone", Count: 9}}},
		"b": {Churn: 5, CoChanges: []graph.CoChange{{File: "a", Count: 5}}},
		"c": {Churn: 4, CoChanges: []graph.CoChange{{File: "a", Count: 4}}},
		"d": {Churn: 2, CoChanges: []graph.CoChange{{File: "a", Count: 2}}},
	}

	mergeHistory(g, result)
	added := synthesizeCoChanges(g, result, DefaultMinCoChange)

	if len(added) != 1 {
		t.Fatalf("expected 1 synthesized edge, got %d: %+v", len(added), added)
	}
	if added[0].Source != "a" || added[0].Target != "c" {
		t.Errorf("unexpected edge %+v", added[0])
	}
	if g.EdgeCount() != 2 {
		t.Errorf("graph edge count = %d, want 2", g.EdgeCount())
	}

	a, _ := g.Node("a")
	if a.Churn != 6 || len(a.CoChanges) != 4 {
		t.Errorf("history not merged onto a: %+v", a)
	}
}

func TestHandle_CoChangeEdgesLeaveCentrality(t *testing.T) {
	s := New(&recorder{}, Options{})
	for _, p := range []string{"a.js", "b.js", "c.js"} {
		if err := s.handle(event{kind: eventFile, file: walker.FileInfo{RelPath: p, Size: 1}}); err != nil {
			t.Fatal(err)
		}
	}
	dep := graph.Edge{Source: "b.js", Target: "a.js", Type: graph.EdgeDependency, Weight: 1}
	if err := s.handle(event{kind: eventEdge, edge: dep}); err != nil {
		t.Fatal(err)
	}

	before := map[string]float64{}
	for _, p := range s.Graph().Paths() {
		n, _ := s.Graph().Node(p)
		before[p] = n.Centrality
	}

	result := history.Result{
		"a.js": {Churn: 5, CoChanges: []graph.CoChange{{File: "c.js", Count: 5}}},
		"c.js": {Churn: 5, CoChanges: []graph.CoChange{{File: "a.js", Count: 5}}},
	}
	if err := s.handle(event{kind: eventHistory, history: result}); err != nil {
		t.Fatal(err)
	}
	if s.Graph().EdgeCount() != 2 {
		t.Fatalf("edge count = %d, want 2", s.Graph().EdgeCount())
	}

	fresh := graph.Centrality(s.Graph(), graph.DefaultCentralityOptions())
	for _, p := range s.Graph().Paths() {
		n, _ := s.Graph().Node(p)
		if n.Centrality != before[p] {
			t.Errorf("%s centrality moved from %v to %v", p, before[p], n.Centrality)
		}
		if fresh[p] != before[p] {
			t.Errorf("%s recomputed centrality = %v, want %v", p, fresh[p], before[p])
		}
	}
	if before["c.js"] != before["b.js"] {
		t.Errorf("co-change target c.js = %v, want same as b.js %v", before["c.js"], before["b.js"])
	}
}

func TestRun_SinkErrorEndsSession(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.js": ""})

	errGone := errors.New("client gone")
	opts := oneShot(dir)
	opts.ExitOnComplete = false
	opts.TickInterval = time.Millisecond
	sink := stream.FuncSink(func(stream.Frame) error { return errGone })

	done := make(chan error, 1)
	go func() { done <- New(sink, opts).Run(context.Background(), nil) }()

	select {
	case err := <-done:
		if !errors.Is(err, errGone) {
			t.Errorf("Run() error = %v, want %v", err, errGone)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after a write failure")
	}
}

func TestRun_ContextCancel(t *testing.T) {
	dir := t.TempDir()
	opts := oneShot(dir)
	opts.ExitOnComplete = false

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(&recorder{}, opts).Run(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRun_TicksStreamPositions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.js": "import './b';\n",
		"b.js": "",
	})

	errEnough := errors.New("enough")
	var complete bool
	var last layout.Positions
	after := 0
	sink := stream.FuncSink(func(f stream.Frame) error {
		switch f.Type {
		case stream.FrameComplete:
			complete = true
		case stream.FramePositions:
			if complete {
				last = f.Data.(layout.Positions)
				after++
				if after == 3 {
					return errEnough
				}
			}
		}
		return nil
	})

	opts := oneShot(dir)
	opts.ExitOnComplete = false
	opts.TickInterval = 2 * time.Millisecond

	err := New(sink, opts).Run(context.Background(), nil)
	if !errors.Is(err, errEnough) {
		t.Fatalf("Run() error = %v", err)
	}
	if len(last) != 2 {
		t.Errorf("positions cover %d nodes, want 2", len(last))
	}
	for path, p := range last {
		if p.Size < 2 {
			t.Errorf("%s size = %v, want >= 2", path, p.Size)
		}
	}
}

func TestRun_SettleEmitsFinalPositions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.js": "import './b';\n",
		"b.js": "",
	})

	opts := oneShot(dir)
	opts.SettleTicks = 25

	rec := &recorder{}
	if err := New(rec, opts).Run(context.Background(), nil); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	last := rec.frames[len(rec.frames)-1]
	if last.Type != stream.FramePositions {
		t.Fatalf("last frame = %s, want positions", last.Type)
	}
	if got := len(last.Data.(layout.Positions)); got != 2 {
		t.Errorf("final positions cover %d nodes, want 2", got)
	}
}

func TestApplyControl(t *testing.T) {
	s := New(&recorder{}, Options{})
	if s.Mode() != layout.ModeStructure {
		t.Fatalf("default mode = %s, want structure", s.Mode())
	}

	s.applyControl(stream.Control{Type: stream.FrameMode, Mode: "change"})
	if s.Mode() != layout.ModeChange {
		t.Errorf("mode = %s, want change", s.Mode())
	}

	s.applyControl(stream.Control{Type: stream.FrameMode, Mode: "spiral"})
	if s.Mode() != layout.ModeChange {
		t.Errorf("unknown mode changed state to %s", s.Mode())
	}
}

func TestRun_ControlsChannel(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.js": ""})

	controls := make(chan stream.Control, 2)
	controls <- stream.Control{Type: stream.FrameMode, Mode: "coupling"}
	close(controls)

	// Tick until the control has been consumed, then stop.
	var s *Session
	errStop := errors.New("stop")
	sink := stream.FuncSink(func(f stream.Frame) error {
		if f.Type == stream.FramePositions && len(controls) == 0 && s.mode == layout.ModeCoupling {
			return errStop
		}
		return nil
	})

	opts := oneShot(dir)
	opts.ExitOnComplete = false
	opts.TickInterval = time.Millisecond
	s = New(sink, opts)

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background(), controls) }()

	select {
	case err := <-done:
		if !errors.Is(err, errStop) {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("mode control never applied")
	}
	if s.Mode() != layout.ModeCoupling {
		t.Errorf("mode = %s, want coupling", s.Mode())
	}
}
