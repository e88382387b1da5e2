package config

import (
	"time"

	"github.com/ziadkadry99/atlas/internal/layout"
)

// LogLevel names a slog level accepted in configuration.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// Config is the top-level atlas configuration, corresponding to .atlas.yml.
type Config struct {
	Port             int           `yaml:"port" koanf:"port"`
	StaticDir        string        `yaml:"static_dir" koanf:"static_dir"`
	AllowAllOrigins  bool          `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	LogLevel         LogLevel      `yaml:"log_level" koanf:"log_level"`
	Include          []string      `yaml:"include" koanf:"include"`
	Exclude          []string      `yaml:"exclude" koanf:"exclude"`
	MaxFileSize      int64         `yaml:"max_file_size" koanf:"max_file_size"`
	RespectGitignore bool          `yaml:"respect_gitignore" koanf:"respect_gitignore"`
	MaxConcurrency   int           `yaml:"max_concurrency" koanf:"max_concurrency"`
	History          HistoryConfig `yaml:"history" koanf:"history"`
	Layout           LayoutConfig  `yaml:"layout" koanf:"layout"`
}

// HistoryConfig bounds git history mining.
type HistoryConfig struct {
	MaxCommits  int `yaml:"max_commits" koanf:"max_commits"`
	MinCoChange int `yaml:"min_cochange" koanf:"min_cochange"`
}

// LayoutConfig holds the force simulation constants and its cadence.
type LayoutConfig struct {
	TickInterval  time.Duration `yaml:"tick_interval" koanf:"tick_interval"`
	Repulsion     float64       `yaml:"repulsion" koanf:"repulsion"`
	Attraction    float64       `yaml:"attraction" koanf:"attraction"`
	Damping       float64       `yaml:"damping" koanf:"damping"`
	CenterGravity float64       `yaml:"center_gravity" koanf:"center_gravity"`
}

// Params converts the layout section to simulator parameters.
func (l LayoutConfig) Params() layout.Params {
	return layout.Params{
		Repulsion:     l.Repulsion,
		Attraction:    l.Attraction,
		Damping:       l.Damping,
		CenterGravity: l.CenterGravity,
	}
}
