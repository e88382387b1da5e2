package progress

import (
	"fmt"

	"github.com/ziadkadry99/atlas/internal/graph"
	"github.com/ziadkadry99/atlas/internal/stream"
)

// Summary counts what a session streamed.
type Summary struct {
	Files          int
	Dependencies   int
	CoChangeEdges  int
	PositionFrames int
}

// Sink turns session frames into reporter updates. It never fails.
type Sink struct {
	reporter Reporter
	started  bool
	summary  Summary
}

// NewSink wraps r.
func NewSink(r Reporter) *Sink {
	return &Sink{reporter: r}
}

func (s *Sink) Send(f stream.Frame) error {
	if !s.started {
		s.reporter.Start(-1)
		s.started = true
	}

	switch f.Type {
	case stream.FrameNode:
		s.summary.Files++
		if n, ok := f.Data.(graph.FileNode); ok {
			s.reporter.Update(s.summary.Files, n.Path)
		}
	case stream.FrameEdge:
		if e, ok := f.Data.(graph.Edge); ok && e.Type == graph.EdgeCoChange {
			s.summary.CoChangeEdges++
		} else {
			s.summary.Dependencies++
		}
		s.reporter.Update(s.summary.Files, fmt.Sprintf("%d edges", s.summary.Dependencies+s.summary.CoChangeEdges))
	case stream.FramePositions:
		s.summary.PositionFrames++
	case stream.FrameComplete:
		s.reporter.Finish()
	}
	return nil
}

// Summary returns the counts seen so far.
func (s *Sink) Summary() Summary { return s.summary }
