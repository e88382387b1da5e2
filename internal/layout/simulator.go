package layout

import (
	"math"
	"math/rand"
	"time"

	"github.com/ziadkadry99/atlas/internal/graph"
)

// State is the per-session physical state of the layout: one position and one
// velocity per node the simulator has observed. Entries are created lazily and
// never reset while the session lives.
type State struct {
	positions  map[string]*Vec3
	velocities map[string]*Vec3
	rng        *rand.Rand
}

// NewState returns an empty layout state whose initial placements are drawn
// from a generator seeded with seed.
func NewState(seed int64) *State {
	return &State{
		positions:  make(map[string]*Vec3),
		velocities: make(map[string]*Vec3),
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// NewRandomState seeds the placement generator from the clock.
func NewRandomState() *State {
	return NewState(time.Now().UnixNano())
}

// Len returns the number of tracked nodes.
func (s *State) Len() int { return len(s.positions) }

// Position returns the current position of path.
func (s *State) Position(path string) (Vec3, bool) {
	p, ok := s.positions[path]
	if !ok {
		return Vec3{}, false
	}
	return *p, true
}

// Velocity returns the current velocity of path.
func (s *State) Velocity(path string) (Vec3, bool) {
	v, ok := s.velocities[path]
	if !ok {
		return Vec3{}, false
	}
	return *v, true
}

// Place pins path at pos with zero velocity, tracking it if necessary.
func (s *State) Place(path string, pos Vec3) {
	p := pos
	s.positions[path] = &p
	s.velocities[path] = &Vec3{}
}

func (s *State) seed(path string) {
	if _, ok := s.positions[path]; ok {
		return
	}
	s.positions[path] = &Vec3{
		X: (s.rng.Float64() - 0.5) * spreadXY,
		Y: (s.rng.Float64() - 0.5) * spreadXY,
		Z: (s.rng.Float64() - 0.5) * spreadZ,
	}
	s.velocities[path] = &Vec3{}
}

// Step advances the simulation by one tick over the graph as it currently
// stands and returns the resulting positions of every tracked node. The mode
// only changes the effective edge weights of the attraction pass. Nodes are
// visited in lexical path order so that a fixed seed reproduces exactly.
func Step(g *graph.Graph, s *State, mode Mode, p Params) Positions {
	paths := g.Paths()
	for _, path := range paths {
		s.seed(path)
	}

	forces := make(map[string]*Vec3, len(paths))
	for _, path := range paths {
		forces[path] = &Vec3{}
	}

	applyRepulsion(paths, s, forces, p)
	applyAttraction(g.Edges(), s, forces, mode, p)
	applyGravity(g, paths, s, forces, p)

	for _, path := range paths {
		f := forces[path]
		v := s.velocities[path]
		pos := s.positions[path]

		v.X = (v.X + f.X) * p.Damping
		v.Y = (v.Y + f.Y) * p.Damping
		v.Z = (v.Z + f.Z) * p.Damping

		pos.X += v.X
		pos.Y += v.Y
		pos.Z += v.Z
	}

	out := make(Positions, len(s.positions))
	for path, pos := range s.positions {
		c := defaultCentrality
		if n, ok := g.Node(path); ok && n.Centrality != 0 {
			c = n.Centrality
		}
		out[path] = NodePosition{
			X:    pos.X,
			Y:    pos.Y,
			Z:    pos.Z,
			Size: math.Max(minSize, c*sizeScale),
		}
	}
	return out
}

func applyRepulsion(paths []string, s *State, forces map[string]*Vec3, p Params) {
	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			a, b := paths[i], paths[j]
			pa, pb := s.positions[a], s.positions[b]

			dx := pb.X - pa.X
			dy := pb.Y - pa.Y
			dz := pb.Z - pa.Z
			distSq := dx*dx + dy*dy + dz*dz + epsilon
			dist := math.Sqrt(distSq)

			force := p.Repulsion / distSq
			fx := dx / dist * force
			fy := dy / dist * force
			fz := dz / dist * force * depthDamping

			fa, fb := forces[a], forces[b]
			fa.X -= fx
			fa.Y -= fy
			fa.Z -= fz
			fb.X += fx
			fb.Y += fy
			fb.Z += fz
		}
	}
}

func applyAttraction(edges []graph.Edge, s *State, forces map[string]*Vec3, mode Mode, p Params) {
	for _, e := range edges {
		fa, okA := forces[e.Source]
		fb, okB := forces[e.Target]
		if !okA || !okB {
			continue
		}
		pa, pb := s.positions[e.Source], s.positions[e.Target]

		dx := pb.X - pa.X
		dy := pb.Y - pa.Y
		dz := pb.Z - pa.Z
		dist := math.Sqrt(dx*dx + dy*dy + dz*dz + epsilon)

		w := e.Weight
		if w <= 0 {
			w = 1
		}
		w *= mode.Multiplier(e.Type)

		force := p.Attraction * dist * w
		fx := dx / dist * force
		fy := dy / dist * force
		fz := dz / dist * force * depthDamping

		fa.X += fx
		fa.Y += fy
		fa.Z += fz
		fb.X -= fx
		fb.Y -= fy
		fb.Z -= fz
	}
}

// applyGravity pulls every node toward the origin, harder for more central
// nodes.
func applyGravity(g *graph.Graph, paths []string, s *State, forces map[string]*Vec3, p Params) {
	for _, path := range paths {
		c := defaultCentrality
		if n, ok := g.Node(path); ok && n.Centrality != 0 {
			c = n.Centrality
		}
		factor := c * 2
		pos := s.positions[path]
		f := forces[path]
		f.X -= pos.X * p.CenterGravity * factor
		f.Y -= pos.Y * p.CenterGravity * factor
		f.Z -= pos.Z * p.CenterGravity * factor * 0.5
	}
}
