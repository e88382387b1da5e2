package graph

// EdgeType distinguishes how two files are related.
type EdgeType string

const (
	EdgeDependency EdgeType = "dependency"
	EdgeCoChange   EdgeType = "cochange"
)

// CoChange records how many commits touched a file together with another file.
type CoChange struct {
	File  string `json:"file"`
	Count int    `json:"count"`
}

// FileNode is a single source file in the live graph. Its identity is the
// repository-relative path.
type FileNode struct {
	ID         string     `json:"id"`
	Path       string     `json:"path"`
	Size       int64      `json:"size"`
	Language   string     `json:"language,omitempty"`
	Centrality float64    `json:"centrality"`
	Churn      int        `json:"churn"`
	CoChanges  []CoChange `json:"cochanges,omitempty"`
}

// Edge connects two files. Edges are append-only within a session.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   EdgeType `json:"type"`
	Weight float64  `json:"weight"`
}

// Co-change edge weighting.
const (
	CoChangeWeightDivisor = 10.0
	CoChangeWeightCap     = 3.0
)

// CoChangeWeight maps a raw co-change count onto an edge weight, saturating
// at CoChangeWeightCap.
func CoChangeWeight(count int) float64 {
	w := float64(count) / CoChangeWeightDivisor
	if w > CoChangeWeightCap {
		return CoChangeWeightCap
	}
	return w
}
