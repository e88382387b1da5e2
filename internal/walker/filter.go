package walker

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// DefaultExcludes are directory names never descended into.
var DefaultExcludes = []string{
	".git",
	"node_modules",
	"dist",
	"build",
	"vendor",
	"__pycache__",
	"target",
	".venv",
	".next",
}

// shouldExcludeDir checks whether a directory name is a default exclusion or
// hidden. This is used during traversal to skip entire subtrees.
func shouldExcludeDir(name string) bool {
	if isHidden(name) {
		return true
	}
	for _, excl := range DefaultExcludes {
		if name == excl {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// MatchesInclude returns true if the given relative path matches any of the
// include patterns. If patterns is empty, everything is included.
func MatchesInclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	return matchesAny(relPath, patterns)
}

// MatchesExclude returns true if the given relative path matches any of the
// exclude patterns. If patterns is empty, nothing is excluded.
func MatchesExclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	return matchesAny(relPath, patterns)
}

// matchesAny checks relPath and its base name against doublestar patterns.
func matchesAny(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	base := filepath.Base(normalized)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
			return true
		}
		if matched, err := doublestar.PathMatch(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// loadGitignore parses the .gitignore at the repository root. A missing or
// unreadable file yields nil.
func loadGitignore(root string) gitignore.GitIgnore {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, root, nil)
}

// ignoredByGit reports whether relPath is ignored by the root .gitignore.
func ignoredByGit(ignore gitignore.GitIgnore, relPath string, isDir bool) bool {
	if ignore == nil {
		return false
	}
	match := ignore.Relative(filepath.ToSlash(relPath), isDir)
	return match != nil && match.Ignore()
}
