package config

import (
	"time"

	"github.com/ziadkadry99/atlas/internal/layout"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = ".atlas.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	p := layout.DefaultParams()
	return &Config{
		Port:             3000,
		AllowAllOrigins:  true,
		LogLevel:         LogInfo,
		RespectGitignore: true,
		MaxConcurrency:   1,
		History: HistoryConfig{
			MaxCommits:  500,
			MinCoChange: 3,
		},
		Layout: LayoutConfig{
			TickInterval:  50 * time.Millisecond,
			Repulsion:     p.Repulsion,
			Attraction:    p.Attraction,
			Damping:       p.Damping,
			CenterGravity: p.CenterGravity,
		},
	}
}
