package layout

import (
	"fmt"

	"github.com/ziadkadry99/atlas/internal/graph"
)

// Mode selects which edge types dominate the attractive forces.
type Mode string

const (
	ModeStructure Mode = "structure"
	ModeChange    Mode = "change"
	ModeCoupling  Mode = "coupling"
)

// ParseMode validates a mode name received from a client.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeStructure, ModeChange, ModeCoupling:
		return m, nil
	default:
		return "", fmt.Errorf("layout: unknown mode %q: must be one of structure, change, coupling", s)
	}
}

// Multiplier scales an edge's stored weight for the given mode.
func (m Mode) Multiplier(t graph.EdgeType) float64 {
	switch m {
	case ModeChange:
		if t == graph.EdgeCoChange {
			return 3
		}
		return 0.5
	case ModeCoupling:
		if t == graph.EdgeDependency {
			return 3
		}
		return 0.5
	default:
		return 1
	}
}

// Vec3 is a point or vector in layout space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NodePosition is the per-tick output for one node.
type NodePosition struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
	Size float64 `json:"size"`
}

// Positions maps node path to its latest position.
type Positions map[string]NodePosition

// Params holds the force constants of the simulation.
type Params struct {
	Repulsion     float64 `koanf:"repulsion" yaml:"repulsion"`
	Attraction    float64 `koanf:"attraction" yaml:"attraction"`
	Damping       float64 `koanf:"damping" yaml:"damping"`
	CenterGravity float64 `koanf:"center_gravity" yaml:"center_gravity"`
}

// DefaultParams returns the force constants used by live sessions.
func DefaultParams() Params {
	return Params{
		Repulsion:     100,
		Attraction:    0.01,
		Damping:       0.9,
		CenterGravity: 0.001,
	}
}

const (
	// epsilon keeps coincident nodes from producing infinite forces.
	epsilon = 0.1
	// depthDamping flattens forces on the z axis for a 2.5D look.
	depthDamping = 0.3

	spreadXY = 100.0
	spreadZ  = 20.0

	defaultCentrality = 0.1
	minSize           = 2.0
	sizeScale         = 10.0
)
