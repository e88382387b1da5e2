package walker

import (
	"fmt"
	"io/fs"
	"path/filepath"

	gitignore "github.com/denormal/go-gitignore"
)

// FileInfo holds metadata about a single source file discovered during traversal.
type FileInfo struct {
	Path     string // Absolute path on disk.
	RelPath  string // Slash-separated path relative to the root directory.
	Size     int64  // File size in bytes.
	Ext      string // Extension including the leading dot.
	Language string // Detected programming language.
}

// WalkerConfig controls the behaviour of the Scan function.
type WalkerConfig struct {
	RootDir          string   // Root directory to walk.
	Include          []string // Glob patterns; only matching files are included.
	Exclude          []string // Glob patterns; matching files are excluded.
	MaxFileSize      int64    // Files larger than this are skipped (0 = no limit).
	RespectGitignore bool     // Honour the root .gitignore.
}

// Scan traverses the directory tree rooted at config.RootDir depth-first and
// returns every allow-listed source file. Each file is also handed to onFile
// (when non-nil) as soon as it is found, before traversal continues.
// Unreadable directories and files are skipped silently.
func Scan(config WalkerConfig, onFile func(FileInfo)) ([]FileInfo, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}

	var ignore gitignore.GitIgnore
	if config.RespectGitignore {
		ignore = loadGitignore(root)
	}

	var files []FileInfo

	// WalkDir only fails here when the callback returns an error, which it never does.
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip entries we cannot read instead of aborting.
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()

		if d.IsDir() {
			if path != root && shouldExcludeDir(name) {
				return filepath.SkipDir
			}
			if path != root && ignoredByGit(ignore, relOrEmpty(root, path), true) {
				return filepath.SkipDir
			}
			return nil
		}

		if isHidden(name) || !d.Type().IsRegular() {
			return nil
		}

		ext := filepath.Ext(name)
		if !IsSourceExtension(ext) {
			return nil
		}

		relPath := relOrEmpty(root, path)
		if relPath == "" {
			return nil
		}
		if ignoredByGit(ignore, relPath, false) {
			return nil
		}
		if !MatchesInclude(relPath, config.Include) || MatchesExclude(relPath, config.Exclude) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if config.MaxFileSize > 0 && info.Size() > config.MaxFileSize {
			return nil
		}

		file := FileInfo{
			Path:     path,
			RelPath:  relPath,
			Size:     info.Size(),
			Ext:      ext,
			Language: DetectLanguage(name),
		}
		files = append(files, file)
		if onFile != nil {
			onFile(file)
		}
		return nil
	})

	return files, nil
}

func relOrEmpty(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	return filepath.ToSlash(rel)
}
