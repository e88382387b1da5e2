// Package history mines version-control history for per-file churn and
// pairwise co-change counts.
package history

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/ziadkadry99/atlas/internal/graph"
)

// DefaultMaxCommits bounds the history window to the most recent commits.
const DefaultMaxCommits = 500

// Record is the history of a single file within the analyzed window.
type Record struct {
	Churn     int              `json:"churn"`
	CoChanges []graph.CoChange `json:"cochanges"`
}

// Result maps a repository-relative path to its history record. It is empty,
// never nil, when no history is available.
type Result map[string]Record

// GitRunner executes git with args inside dir and returns its stdout.
type GitRunner func(ctx context.Context, dir string, args ...string) ([]byte, error)

// ExecGit runs the git binary found on PATH.
func ExecGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Miner walks the git log of a repository.
type Miner struct {
	root       string
	maxCommits int
	git        GitRunner
	logger     *slog.Logger
}

// Option configures a Miner.
type Option func(*Miner)

// WithMaxCommits overrides DefaultMaxCommits.
func WithMaxCommits(n int) Option {
	return func(m *Miner) {
		if n > 0 {
			m.maxCommits = n
		}
	}
}

// WithGitRunner replaces the git executor, mainly for tests.
func WithGitRunner(run GitRunner) Option {
	return func(m *Miner) { m.git = run }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(m *Miner) { m.logger = l }
}

// NewMiner creates a miner for the repository rooted at root.
func NewMiner(root string, opts ...Option) *Miner {
	m := &Miner{
		root:       root,
		maxCommits: DefaultMaxCommits,
		git:        ExecGit,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mine returns churn and co-change data for the most recent commits. A
// directory that is not a git work tree, or a failing git, yields an empty
// result; a single commit whose diff cannot be read is skipped.
func (m *Miner) Mine(ctx context.Context) Result {
	result := make(Result)

	if _, err := m.git(ctx, m.root, "rev-parse", "--is-inside-work-tree"); err != nil {
		m.logger.Warn("history analysis skipped", slog.String("root", m.root), slog.Any("error", err))
		return result
	}

	hashes, err := m.recentCommits(ctx)
	if err != nil {
		m.logger.Warn("history analysis skipped", slog.String("root", m.root), slog.Any("error", err))
		return result
	}

	churn := make(map[string]int)
	pairs := make(map[[2]string]int)

	for _, hash := range hashes {
		files, err := m.changedFiles(ctx, hash)
		if err != nil {
			m.logger.Debug("skipping commit", slog.String("commit", hash), slog.Any("error", err))
			continue
		}
		for _, f := range files {
			churn[f]++
		}
		for i := 0; i < len(files); i++ {
			for j := i + 1; j < len(files); j++ {
				pairs[[2]string{files[i], files[j]}]++
			}
		}
	}

	for file, count := range churn {
		result[file] = Record{Churn: count, CoChanges: []graph.CoChange{}}
	}
	for pair, count := range pairs {
		a, b := pair[0], pair[1]
		ra, rb := result[a], result[b]
		ra.CoChanges = append(ra.CoChanges, graph.CoChange{File: b, Count: count})
		rb.CoChanges = append(rb.CoChanges, graph.CoChange{File: a, Count: count})
		result[a], result[b] = ra, rb
	}
	for file, rec := range result {
		sort.Slice(rec.CoChanges, func(i, j int) bool {
			if rec.CoChanges[i].Count != rec.CoChanges[j].Count {
				return rec.CoChanges[i].Count > rec.CoChanges[j].Count
			}
			return rec.CoChanges[i].File < rec.CoChanges[j].File
		})
		result[file] = rec
	}

	m.logger.Debug("history analysis complete",
		slog.Int("commits", len(hashes)),
		slog.Int("files", len(result)),
		slog.Int("pairs", len(pairs)))
	return result
}

func (m *Miner) recentCommits(ctx context.Context) ([]string, error) {
	out, err := m.git(ctx, m.root, "log", "-n", fmt.Sprint(m.maxCommits), "--format=%H")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// changedFiles lists the files touched by a commit, relative to the miner's
// root, sorted and without duplicates.
func (m *Miner) changedFiles(ctx context.Context, hash string) ([]string, error) {
	out, err := m.git(ctx, m.root, "show", hash, "--format=", "--patch", "--relative", "--no-color", "--no-ext-diff")
	if err != nil {
		return nil, err
	}

	files, err := filesFromPatch(out)
	if err != nil {
		// Combined merge diffs and unusual headers fall back to plain names.
		names, nameErr := m.git(ctx, m.root, "show", hash, "--format=", "--name-only", "--relative")
		if nameErr != nil {
			return nil, nameErr
		}
		files = splitLines(names)
	}
	return dedupeSorted(files), nil
}

func filesFromPatch(patch []byte) ([]string, error) {
	if len(bytes.TrimSpace(patch)) == 0 {
		return nil, nil
	}
	fileDiffs, err := diff.ParseMultiFileDiff(patch)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		name := fd.NewName
		if name == "" || name == "/dev/null" {
			name = fd.OrigName
		}
		name = strings.TrimPrefix(strings.TrimPrefix(name, "b/"), "a/")
		if name == "" || name == "/dev/null" {
			continue
		}
		files = append(files, name)
	}
	return files, nil
}

func splitLines(out []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func dedupeSorted(files []string) []string {
	sort.Strings(files)
	out := files[:0]
	for i, f := range files {
		if i > 0 && f == files[i-1] {
			continue
		}
		out = append(out, f)
	}
	return out
}
