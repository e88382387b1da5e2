// Package session runs one live analysis per client: it owns the graph and
// the layout state, sequences the analysis phases and streams frames.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/atlas/internal/graph"
	"github.com/ziadkadry99/atlas/internal/history"
	"github.com/ziadkadry99/atlas/internal/layout"
	"github.com/ziadkadry99/atlas/internal/metrics"
	"github.com/ziadkadry99/atlas/internal/stream"
	"github.com/ziadkadry99/atlas/internal/walker"
)

// DefaultTickInterval is the layout cadence.
const DefaultTickInterval = 50 * time.Millisecond

// Options configures a Session.
type Options struct {
	Analysis     AnalysisConfig
	MinCoChange  int
	TickInterval time.Duration // 0 disables periodic ticks
	Layout       layout.Params
	Mode         layout.Mode
	Centrality   graph.CentralityOptions

	// Seed fixes the layout's random source. Zero seeds from the clock.
	Seed int64

	// ExitOnComplete ends Run once the complete frame is written, after
	// SettleTicks synchronous layout steps and one final positions frame.
	ExitOnComplete bool
	SettleTicks    int

	Logger  *slog.Logger
	Metrics *metrics.Registry
}

// Session is the per-client context. It is not safe for concurrent use; Run
// is the only goroutine that touches its graph and layout.
type Session struct {
	ID string

	opts   Options
	sink   stream.Sink
	logger *slog.Logger

	graph  *graph.Graph
	layout *layout.State
	mode   layout.Mode
}

type eventKind int

const (
	eventFile eventKind = iota
	eventEdge
	eventHistory
	eventComplete
)

type event struct {
	kind    eventKind
	file    walker.FileInfo
	edge    graph.Edge
	history history.Result
}

// New creates a session that writes to sink.
func New(sink stream.Sink, opts Options) *Session {
	if opts.MinCoChange <= 0 {
		opts.MinCoChange = DefaultMinCoChange
	}
	if opts.Layout == (layout.Params{}) {
		opts.Layout = layout.DefaultParams()
	}
	if opts.Mode == "" {
		opts.Mode = layout.ModeStructure
	}
	if opts.Centrality.Iterations == 0 {
		opts.Centrality = graph.DefaultCentralityOptions()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	id := uuid.New().String()
	state := layout.NewRandomState()
	if opts.Seed != 0 {
		state = layout.NewState(opts.Seed)
	}

	return &Session{
		ID:     id,
		opts:   opts,
		sink:   sink,
		logger: opts.Logger.With("session", id),
		graph:  graph.New(),
		layout: state,
		mode:   opts.Mode,
	}
}

// Graph exposes the session graph. Only safe once Run has returned.
func (s *Session) Graph() *graph.Graph { return s.graph }

// Mode reports the current layout mode. Only safe once Run has returned.
func (s *Session) Mode() layout.Mode { return s.mode }

// Run streams the analysis of the configured repository and the layout until
// the sink fails, ctx ends, or, with ExitOnComplete, the analysis finishes.
// Mode commands arrive on controls, which may be nil. Analysis is never
// interrupted: after Run returns, remaining results are discarded.
func (s *Session) Run(ctx context.Context, controls <-chan stream.Control) error {
	s.opts.Metrics.SessionStarted()
	defer s.opts.Metrics.SessionEnded()

	s.logger.Info("session started", "root", s.opts.Analysis.Walker.RootDir, "mode", s.mode)
	defer s.logger.Info("session ended", "nodes", s.graph.NodeCount(), "edges", s.graph.EdgeCount())

	events := make(chan event, 64)
	done := make(chan struct{})
	defer close(done)

	go s.produce(context.WithoutCancel(ctx), events, done)

	var tick <-chan time.Time
	if s.opts.TickInterval > 0 {
		ticker := time.NewTicker(s.opts.TickInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if err := s.handle(ev); err != nil {
				return err
			}
			if ev.kind == eventComplete && s.opts.ExitOnComplete {
				return s.settle()
			}

		case <-tick:
			if err := s.tick(); err != nil {
				return err
			}

		case c, ok := <-controls:
			if !ok {
				controls = nil
				continue
			}
			s.applyControl(c)
		}
	}
}

// produce runs the analysis and forwards its hooks as events. Once done is
// closed, events are dropped but the analysis still runs to the end.
func (s *Session) produce(ctx context.Context, events chan<- event, done <-chan struct{}) {
	defer close(events)

	send := func(ev event) {
		select {
		case events <- ev:
		case <-done:
		}
	}

	cfg := s.opts.Analysis
	cfg.Logger = s.logger
	cfg.Metrics = s.opts.Metrics

	Analyze(ctx, cfg, Hooks{
		OnFile:     func(f walker.FileInfo) { send(event{kind: eventFile, file: f}) },
		OnEdge:     func(e graph.Edge) { send(event{kind: eventEdge, edge: e}) },
		OnHistory:  func(r history.Result) { send(event{kind: eventHistory, history: r}) },
		OnComplete: func() { send(event{kind: eventComplete}) },
	})
}

func (s *Session) handle(ev event) error {
	switch ev.kind {
	case eventFile:
		node, added := s.graph.AddNode(ev.file.RelPath, ev.file.Size, ev.file.Language)
		if !added {
			return nil
		}
		return s.send(stream.NodeFrame(node))

	case eventEdge:
		accepted := s.graph.AddEdge(ev.edge)
		s.opts.Metrics.RecordEdge(string(ev.edge.Type), accepted)
		if !accepted {
			s.logger.Debug("edge dropped", "source", ev.edge.Source, "target", ev.edge.Target)
			return nil
		}
		if err := s.send(stream.EdgeFrame(ev.edge)); err != nil {
			return err
		}
		s.recomputeCentrality()
		return nil

	case eventHistory:
		mergeHistory(s.graph, ev.history)
		added := synthesizeCoChanges(s.graph, ev.history, s.opts.MinCoChange)
		for _, e := range added {
			s.opts.Metrics.RecordEdge(string(e.Type), true)
			if err := s.send(stream.EdgeFrame(e)); err != nil {
				return err
			}
		}
		s.logger.Debug("history merged", "files", len(ev.history), "cochange_edges", len(added))
		return nil

	case eventComplete:
		s.logger.Info("analysis complete", "nodes", s.graph.NodeCount(), "edges", s.graph.EdgeCount())
		return s.send(stream.CompleteFrame())
	}
	return nil
}

func (s *Session) recomputeCentrality() {
	start := time.Now()
	s.graph.ApplyCentrality(graph.Centrality(s.graph, s.opts.Centrality))
	s.opts.Metrics.RecordCentrality(time.Since(start))
}

func (s *Session) tick() error {
	start := time.Now()
	positions := layout.Step(s.graph, s.layout, s.mode, s.opts.Layout)
	s.opts.Metrics.RecordTick(time.Since(start))
	return s.send(stream.PositionsFrame(positions))
}

// settle runs the configured number of layout steps back to back and emits
// the final positions.
func (s *Session) settle() error {
	if s.opts.SettleTicks <= 0 {
		return nil
	}
	var positions layout.Positions
	for i := 0; i < s.opts.SettleTicks; i++ {
		positions = layout.Step(s.graph, s.layout, s.mode, s.opts.Layout)
	}
	return s.send(stream.PositionsFrame(positions))
}

func (s *Session) applyControl(c stream.Control) {
	mode, err := layout.ParseMode(c.Mode)
	if err != nil {
		s.opts.Metrics.RecordControl("rejected")
		s.logger.Warn("ignoring control message", "error", err)
		return
	}
	s.opts.Metrics.RecordControl("accepted")
	if mode != s.mode {
		s.logger.Debug("layout mode changed", "from", s.mode, "to", mode)
	}
	s.mode = mode
}

func (s *Session) send(f stream.Frame) error {
	if err := s.sink.Send(f); err != nil {
		s.logger.Debug("client write failed", "frame", f.Type, "error", err)
		return err
	}
	s.opts.Metrics.RecordFrame(string(f.Type))
	return nil
}
