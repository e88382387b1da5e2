package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ziadkadry99/atlas/internal/graph"
	"github.com/ziadkadry99/atlas/internal/stream"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Out: &buf}
	r.Start(2)
	r.Update(1, "a.js")
	r.Finish()

	out := buf.String()
	for _, want := range []string{"for 2 files", "[1/2] a.js", "analysis complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCIReporter_UnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Out: &buf}
	r.Start(-1)
	r.Update(3, "b.js")

	if !strings.Contains(buf.String(), "[3] b.js") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

// recordingReporter captures calls for assertions.
type recordingReporter struct {
	starts   int
	updates  []string
	finished bool
}

func (r *recordingReporter) Start(int)                { r.starts++ }
func (r *recordingReporter) Update(_ int, msg string) { r.updates = append(r.updates, msg) }
func (r *recordingReporter) Finish()                  { r.finished = true }

func TestSinkSummary(t *testing.T) {
	rec := &recordingReporter{}
	sink := NewSink(rec)

	frames := []stream.Frame{
		stream.NodeFrame(&graph.FileNode{ID: "a.js", Path: "a.js"}),
		stream.NodeFrame(&graph.FileNode{ID: "b.js", Path: "b.js"}),
		stream.EdgeFrame(graph.Edge{Source: "a.js", Target: "b.js", Type: graph.EdgeDependency, Weight: 1}),
		stream.EdgeFrame(graph.Edge{Source: "a.js", Target: "b.js", Type: graph.EdgeCoChange, Weight: 0.3}),
		stream.CompleteFrame(),
	}
	for _, f := range frames {
		if err := sink.Send(f); err != nil {
			t.Fatalf("Send() error: %v", err)
		}
	}

	got := sink.Summary()
	if got.Files != 2 || got.Dependencies != 1 || got.CoChangeEdges != 1 {
		t.Errorf("unexpected summary %+v", got)
	}
	if rec.starts != 1 {
		t.Errorf("reporter started %d times, want 1", rec.starts)
	}
	if !rec.finished {
		t.Error("reporter not finished on complete")
	}
	if rec.updates[0] != "a.js" {
		t.Errorf("first update = %q, want a.js", rec.updates[0])
	}
}
