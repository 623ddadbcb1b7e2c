package physics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tagtree/pkg/graph"
	"github.com/matzehuels/tagtree/pkg/render"
)

// ErrNotConverged is returned by Run when MaxTicks is reached first.
var ErrNotConverged = errors.New("simulation did not converge")

// TickStats describes the motion of one tick.
type TickStats struct {
	Energy    float64 // sum of |v|² over all nodes
	MaxSpeedX float64 // largest |v.x|
	MaxSpeedY float64 // largest |v.y|
}

// Converged reports whether the tick satisfies the convergence test of p.
func (t TickStats) Converged(p Params) bool {
	return t.Energy < p.EnergyThreshold ||
		(t.MaxSpeedX < p.SpeedThreshold && t.MaxSpeedY < p.SpeedThreshold)
}

// Result is the outcome of a converged simulation phase.
type Result struct {
	Ticks   int
	Energy  float64
	Drawn   int          // edges drawn at convergence
	Next    graph.NodeID // first node that can still grow
	HasNext bool         // false when every node is saturated
}

// Simulator runs simulation phases over a model. The set of drawn edges
// lives as long as the Simulator, so one Simulator belongs to one run.
type Simulator struct {
	Params Params
	Logger *log.Logger

	rendered map[graph.Pair]struct{}
}

// New returns a simulator with the given parameters.
func New(p Params) *Simulator {
	return &Simulator{
		Params:   p,
		Logger:   log.NewWithOptions(io.Discard, log.Options{}),
		rendered: make(map[graph.Pair]struct{}),
	}
}

// Rendered reports whether the edge p has been drawn.
func (s *Simulator) Rendered(p graph.Pair) bool {
	_, ok := s.rendered[p]
	return ok
}

// Reset forgets every drawn edge.
func (s *Simulator) Reset() {
	clear(s.rendered)
}

// =============================================================================
// Tick
// =============================================================================

// Tick advances every node by one step and returns the resulting motion.
func (s *Simulator) Tick(m *graph.Model) TickStats {
	p := s.Params
	rep := p.Repulsion()
	nodes := m.Nodes()

	var st TickStats
	for _, n := range nodes {
		var force graph.Vec

		for _, o := range nodes {
			if o == n {
				continue
			}
			d := n.Pos.Sub(o.Pos)
			dist := d.Len()
			if dist == 0 {
				continue
			}
			force = force.Add(d.Scale(rep / (dist * dist * dist)))
		}

		for _, id := range n.Neighbors() {
			nb, _ := m.Node(id)
			d := nb.Pos.Sub(n.Pos)
			if d.Len2() == 0 {
				continue
			}
			// unit vector times k_s*d
			force = force.Add(d.Scale(p.Spring))
		}

		n.Vel = n.Vel.Add(force).Scale(p.Damping)
		n.Pos = n.Pos.Add(n.Vel)
		s.contain(n)

		st.Energy += n.Vel.Len2()
		st.MaxSpeedX = math.Max(st.MaxSpeedX, math.Abs(n.Vel.X))
		st.MaxSpeedY = math.Max(st.MaxSpeedY, math.Abs(n.Vel.Y))
	}
	return st
}

func (s *Simulator) contain(n *graph.Node) {
	if n.Pos.X < s.Params.MinX {
		n.Pos.X = s.Params.MinX
		n.Vel.X = -n.Vel.X * s.Params.BounceDamping
	}
	if n.Pos.Y < s.Params.MinY {
		n.Pos.Y = s.Params.MinY
		n.Vel.Y = -n.Vel.Y * s.Params.BounceDamping
	}
}

// =============================================================================
// Run
// =============================================================================

// Run ticks until the model settles. Edges are cleared on r before the first
// tick, positions are reported after every tick, and on convergence every
// edge not drawn earlier in the run is drawn exactly once.
//
// ctx is checked between ticks only; a phase is never interrupted mid-tick.
func (s *Simulator) Run(ctx context.Context, m *graph.Model, r render.Renderer) (Result, error) {
	if r == nil {
		r = render.Nop{}
	}
	if s.Logger == nil {
		s.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	r.ClearEdges()

	start := time.Now()
	var res Result
	for {
		st := s.Tick(m)
		res.Ticks++
		res.Energy = st.Energy
		for _, n := range m.Nodes() {
			r.SetNodePosition(n.ID, n.Pos.X, n.Pos.Y)
		}

		if st.Converged(s.Params) {
			break
		}
		if s.Params.MaxTicks > 0 && res.Ticks >= s.Params.MaxTicks {
			return res, fmt.Errorf("%w after %d ticks (energy %.3f)", ErrNotConverged, res.Ticks, st.Energy)
		}
		if err := s.yield(ctx); err != nil {
			return res, err
		}
	}

	res.Drawn = s.drawNew(m, r)
	res.Next, res.HasNext = m.NextExpandable()

	s.Logger.Debug("simulation converged",
		"ticks", res.Ticks,
		"energy", res.Energy,
		"edges_drawn", res.Drawn,
		"duration", time.Since(start))
	return res, nil
}

func (s *Simulator) drawNew(m *graph.Model, r render.Renderer) int {
	if s.rendered == nil {
		s.rendered = make(map[graph.Pair]struct{})
	}
	drawn := 0
	for _, l := range m.Links() {
		if s.Rendered(l.Pair) {
			continue
		}
		r.DrawEdge(l.Lo, l.Hi, l.Label)
		s.rendered[l.Pair] = struct{}{}
		drawn++
	}
	return drawn
}

func (s *Simulator) yield(ctx context.Context) error {
	if s.Params.TickInterval <= 0 {
		runtime.Gosched()
		return ctx.Err()
	}
	t := time.NewTimer(s.Params.TickInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
