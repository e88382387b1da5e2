// Package deps resolves the import statements of source files into
// dependency edges between files of the same repository.
package deps

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/atlas/internal/graph"
	"github.com/ziadkadry99/atlas/internal/walker"
)

// Resolver turns each file's imports into dependency edges. It holds no
// per-file state, so files may be resolved in any order or in parallel.
type Resolver struct {
	files       []walker.FileInfo
	byStem      map[string]walker.FileInfo
	concurrency int
	logger      *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithConcurrency resolves up to n files at once in ResolveAll. Values below 2
// resolve sequentially in scan order.
func WithConcurrency(n int) Option {
	return func(r *Resolver) { r.concurrency = n }
}

// WithLogger sets the logger used for skipped files.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

var stripExt = regexp.MustCompile(`\.(js|ts|jsx|tsx)$`)

// NewResolver indexes the complete file set of a scan.
func NewResolver(files []walker.FileInfo, opts ...Option) *Resolver {
	r := &Resolver{
		files:       files,
		byStem:      make(map[string]walker.FileInfo, len(files)),
		concurrency: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, f := range files {
		stem := stripExt.ReplaceAllString(f.Path, "")
		// First file in scan order wins on collisions.
		if _, exists := r.byStem[stem]; !exists {
			r.byStem[stem] = f
		}
	}
	return r
}

// Resolve emits every dependency edge of file through onEdge. Files that
// cannot be read or parsed, and imports that do not name a known file,
// produce no edges.
func (r *Resolver) Resolve(ctx context.Context, file walker.FileInfo, onEdge func(graph.Edge)) {
	var targets []string
	switch walker.FamilyOf(file.Ext) {
	case walker.FamilyStructured:
		targets = r.resolveStructured(ctx, file)
	case walker.FamilyTextual:
		targets = r.resolveTextual(file)
	default:
		return
	}

	seen := make(map[string]bool, len(targets))
	for _, target := range targets {
		if target == file.RelPath || seen[target] {
			continue
		}
		seen[target] = true
		onEdge(graph.Edge{
			Source: file.RelPath,
			Target: target,
			Type:   graph.EdgeDependency,
			Weight: 1,
		})
	}
}

// ResolveAll resolves every indexed file. With concurrency above one, onEdge
// is called from several goroutines, one call at a time.
func (r *Resolver) ResolveAll(ctx context.Context, onEdge func(graph.Edge)) {
	if r.concurrency < 2 {
		for _, f := range r.files {
			r.Resolve(ctx, f, onEdge)
		}
		return
	}

	var mu sync.Mutex
	emit := func(e graph.Edge) {
		mu.Lock()
		defer mu.Unlock()
		onEdge(e)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, f := range r.files {
		f := f
		g.Go(func() error {
			r.Resolve(gCtx, f, emit)
			return nil
		})
	}
	_ = g.Wait()
}

// matchRelative resolves a relative specifier against the importing file's
// directory, tolerating a missing or different source extension.
func (r *Resolver) matchRelative(file walker.FileInfo, specifier string) (string, bool) {
	resolved := filepath.Join(filepath.Dir(file.Path), filepath.FromSlash(specifier))
	target, ok := r.byStem[stripExt.ReplaceAllString(resolved, "")]
	if !ok {
		return "", false
	}
	return target.RelPath, true
}

func (r *Resolver) readSource(file walker.FileInfo) ([]byte, bool) {
	content, err := os.ReadFile(file.Path)
	if err != nil {
		r.logger.Debug("skipping unreadable file", slog.String("file", file.RelPath), slog.Any("error", err))
		return nil, false
	}
	return content, true
}
