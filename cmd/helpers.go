package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ziadkadry99/atlas/internal/config"
	"github.com/ziadkadry99/atlas/internal/session"
	"github.com/ziadkadry99/atlas/internal/walker"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `atlas init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// setupLogger installs a text logger on stderr. --verbose forces debug.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// repoRoot returns the analyzed directory from the first argument, or the
// working directory.
func repoRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("accessing %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

func sessionOptions(cfg *config.Config, root string) session.Options {
	return session.Options{
		Analysis: session.AnalysisConfig{
			Walker: walker.WalkerConfig{
				RootDir:          root,
				Include:          cfg.Include,
				Exclude:          cfg.Exclude,
				MaxFileSize:      cfg.MaxFileSize,
				RespectGitignore: cfg.RespectGitignore,
			},
			MaxConcurrency: cfg.MaxConcurrency,
			MaxCommits:     cfg.History.MaxCommits,
		},
		MinCoChange:  cfg.History.MinCoChange,
		TickInterval: cfg.Layout.TickInterval,
		Layout:       cfg.Layout.Params(),
	}
}
