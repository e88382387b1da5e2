package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/ziadkadry99/atlas/internal/deps"
	"github.com/ziadkadry99/atlas/internal/graph"
	"github.com/ziadkadry99/atlas/internal/history"
	"github.com/ziadkadry99/atlas/internal/metrics"
	"github.com/ziadkadry99/atlas/internal/walker"
)

// Hooks receive analysis results as they are discovered. Nil hooks are
// skipped. OnEdge may be called from several goroutines when the resolver runs
// concurrently, but never two at a time.
type Hooks struct {
	OnFile     func(walker.FileInfo)
	OnEdge     func(graph.Edge)
	OnHistory  func(history.Result)
	OnComplete func()
}

// AnalysisConfig drives one full pass over a repository.
type AnalysisConfig struct {
	Walker         walker.WalkerConfig
	MaxConcurrency int
	MaxCommits     int
	GitRunner      history.GitRunner
	Logger         *slog.Logger
	Metrics        *metrics.Registry
}

// Analyze scans the repository, resolves dependencies and mines history, in
// that order, reporting through hooks. It always runs to completion.
func Analyze(ctx context.Context, cfg AnalysisConfig, hooks Hooks) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	files, err := walker.Scan(cfg.Walker, hooks.OnFile)
	if err != nil {
		logger.Warn("scan failed", "root", cfg.Walker.RootDir, "error", err)
	}
	cfg.Metrics.RecordPhase("scan", time.Since(start))
	logger.Debug("scan finished", "files", len(files), "duration", time.Since(start))

	start = time.Now()
	onEdge := hooks.OnEdge
	if onEdge == nil {
		onEdge = func(graph.Edge) {}
	}
	resolver := deps.NewResolver(files,
		deps.WithConcurrency(cfg.MaxConcurrency),
		deps.WithLogger(logger),
	)
	resolver.ResolveAll(ctx, onEdge)
	cfg.Metrics.RecordPhase("dependencies", time.Since(start))

	start = time.Now()
	opts := []history.Option{history.WithLogger(logger)}
	if cfg.MaxCommits > 0 {
		opts = append(opts, history.WithMaxCommits(cfg.MaxCommits))
	}
	if cfg.GitRunner != nil {
		opts = append(opts, history.WithGitRunner(cfg.GitRunner))
	}
	result := history.NewMiner(cfg.Walker.RootDir, opts...).Mine(ctx)
	cfg.Metrics.RecordPhase("history", time.Since(start))
	if hooks.OnHistory != nil {
		hooks.OnHistory(result)
	}

	if hooks.OnComplete != nil {
		hooks.OnComplete()
	}
}
