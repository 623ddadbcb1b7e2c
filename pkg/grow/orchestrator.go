package grow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/tagtree/pkg/expand"
	"github.com/matzehuels/tagtree/pkg/graph"
	"github.com/matzehuels/tagtree/pkg/observability"
	"github.com/matzehuels/tagtree/pkg/physics"
	"github.com/matzehuels/tagtree/pkg/render"
	"github.com/matzehuels/tagtree/pkg/seen"
)

// ErrBusy is returned by Run while another run is in progress.
var ErrBusy = errors.New("a run is already in progress")

// =============================================================================
// State
// =============================================================================

// State is the phase an Orchestrator is in.
type State int

const (
	Idle State = iota
	Expanding
	Simulating
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Expanding:
		return "expanding"
	case Simulating:
		return "simulating"
	case Done:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// StopReason says why a run ended.
type StopReason string

const (
	StopSaturated StopReason = "saturated" // every node has the maximum degree
	StopLimit     StopReason = "limit"     // MaxNodes reached
	StopExhausted StopReason = "exhausted" // every growable node hit a dead end
	StopCancelled StopReason = "cancelled" // context cancelled
	StopFailed    StopReason = "failed"    // expansion or simulation error
)

// Summary describes a finished run.
type Summary struct {
	RunID      uuid.UUID  `json:"run_id"`
	RootTag    string     `json:"root_tag"`
	Nodes      int        `json:"nodes"`
	Edges      int        `json:"edges"`
	Expansions int        `json:"expansions"`
	DeadEnds   int        `json:"dead_ends"`
	Ticks      int        `json:"ticks"`
	Reason     StopReason `json:"reason"`
	Started    time.Time  `json:"started"`
	Finished   time.Time  `json:"finished"`
}

// Duration returns how long the run took.
func (s Summary) Duration() time.Duration { return s.Finished.Sub(s.Started) }

// =============================================================================
// Orchestrator
// =============================================================================

// Config bounds a run.
type Config struct {
	// MaxNodes stops the run once the tree holds this many nodes. Zero means
	// no limit; the run then ends only by saturation, exhaustion, an error
	// or cancellation.
	MaxNodes int `toml:"max_nodes"`
}

// Orchestrator runs one growing run at a time.
type Orchestrator struct {
	Config   Config
	Physics  physics.Params
	Expand   expand.Config
	Searcher expand.Searcher
	Seen     seen.Set
	Renderer render.Renderer
	Logger   *log.Logger

	// Rand drives tag choice and placement. Nil seeds a new generator per run.
	Rand *rand.Rand

	mu       sync.Mutex
	busy     bool
	state    State
	snapshot *graph.Snapshot
}

// NewOrchestrator returns an orchestrator with default physics and
// expansion settings. A nil used set keeps history in memory, a nil
// renderer discards output and a nil logger discards logs.
func NewOrchestrator(s expand.Searcher, used seen.Set, r render.Renderer, logger *log.Logger) *Orchestrator {
	if used == nil {
		used = seen.NewMemory()
	}
	if r == nil {
		r = render.Nop{}
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Orchestrator{
		Physics:  physics.DefaultParams(),
		Expand:   expand.DefaultConfig(),
		Searcher: s,
		Seen:     used,
		Renderer: r,
		Logger:   logger,
	}
}

// State returns the current phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Snapshot returns the tree as it was after the most recent settled phase.
// It is safe to call while a run is in progress.
func (o *Orchestrator) Snapshot() (graph.Snapshot, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.snapshot == nil {
		return graph.Snapshot{}, false
	}
	return *o.snapshot, true
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

func (o *Orchestrator) acquire() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy {
		return false
	}
	o.busy = true
	o.state = Expanding
	o.snapshot = nil
	return true
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.busy = false
	o.state = Done
	o.mu.Unlock()
}

// =============================================================================
// Run
// =============================================================================

type run struct {
	*Orchestrator
	model   *graph.Model
	sim     *physics.Simulator
	ctrl    *expand.Controller
	rng     *rand.Rand
	retired map[graph.NodeID]bool
	sum     Summary
}

// Run grows a new tree from rootTag. The returned summary is valid even when
// an error is returned. Cancelling ctx ends the run between ticks or after
// the current search with StopCancelled and no error.
func (o *Orchestrator) Run(ctx context.Context, rootTag string) (Summary, error) {
	if o.Searcher == nil {
		return Summary{}, errors.New("grow: no searcher configured")
	}
	if err := o.Physics.Validate(); err != nil {
		return Summary{}, fmt.Errorf("physics: %w", err)
	}
	if err := o.Expand.Validate(); err != nil {
		return Summary{}, fmt.Errorf("expand: %w", err)
	}
	if !o.acquire() {
		return Summary{}, ErrBusy
	}
	defer o.release()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Renderer == nil {
		o.Renderer = render.Nop{}
	}

	r := o.newRun(rootTag)
	reason, err := r.loop(ctx)
	r.sum.Reason = reason
	r.sum.Nodes = r.model.Len()
	r.sum.Edges = max(r.model.Len()-1, 0)
	r.sum.Finished = time.Now()
	o.publish(r.model)

	o.Logger.Info("run finished",
		"run", r.sum.RunID,
		"reason", reason,
		"nodes", r.sum.Nodes,
		"expansions", r.sum.Expansions,
		"ticks", r.sum.Ticks,
		"duration", r.sum.Duration())
	return r.sum, err
}

func (o *Orchestrator) newRun(rootTag string) *run {
	rng := o.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	m := graph.New()
	sim := physics.New(o.Physics)
	sim.Logger = o.Logger
	ctrl := expand.New(m, o.Searcher, o.Seen, rng, o.Expand)
	ctrl.Logger = o.Logger

	return &run{
		Orchestrator: o,
		model:        m,
		sim:          sim,
		ctrl:         ctrl,
		rng:          rng,
		retired:      make(map[graph.NodeID]bool),
		sum: Summary{
			RunID:   uuid.New(),
			RootTag: rootTag,
			Started: time.Now(),
		},
	}
}

func (r *run) loop(ctx context.Context) (StopReason, error) {
	if err := r.expand(ctx, r.sum.RootTag, graph.NoParent); err != nil {
		return r.stop(ctx, err)
	}

	for {
		res, err := r.simulate(ctx)
		if err != nil {
			return r.stop(ctx, err)
		}
		if reason, done := settledStop(res, r.model.Len(), r.Config.MaxNodes); done {
			return reason, nil
		}

		grown, err := r.grow(ctx)
		if err != nil {
			return r.stop(ctx, err)
		}
		if !grown {
			return StopExhausted, nil
		}
	}
}

// settledStop decides whether a run ends after a settle: saturation when no
// node has room left, otherwise the node limit.
func settledStop(res physics.Result, nodes, maxNodes int) (StopReason, bool) {
	if !res.HasNext {
		return StopSaturated, true
	}
	if maxNodes > 0 && nodes >= maxNodes {
		return StopLimit, true
	}
	return "", false
}

// grow expands the first growable node, retiring nodes that dead-end.
func (r *run) grow(ctx context.Context) (bool, error) {
	for {
		parent, tag, ok := r.nextTarget()
		if !ok {
			return false, nil
		}
		err := r.expand(ctx, tag, parent)
		if errors.Is(err, expand.ErrDeadEnd) {
			r.Logger.Warn("retiring node", "id", parent, "err", err)
			r.retired[parent] = true
			continue
		}
		return err == nil, err
	}
}

// nextTarget returns the first node in creation order that can still grow,
// with a random free tag drawn from its photo.
func (r *run) nextTarget() (graph.NodeID, string, bool) {
	for _, n := range r.model.Nodes() {
		if n.Degree() >= graph.MaxDegree || r.retired[n.ID] {
			continue
		}
		if tag, ok := expand.PickTag(r.rng, n); ok {
			return n.ID, tag, true
		}
		r.retired[n.ID] = true
	}
	return graph.NoParent, "", false
}

func (r *run) expand(ctx context.Context, tag string, parent graph.NodeID) error {
	r.setState(Expanding)
	r.status(fmt.Sprintf("Loading tag '%s'...", tag))

	exp, err := r.ctrl.Expand(ctx, tag, parent)
	r.sum.DeadEnds += exp.DeadEnds
	if err != nil {
		return err
	}
	r.sum.Expansions++
	return nil
}

func (r *run) simulate(ctx context.Context) (physics.Result, error) {
	r.setState(Simulating)
	r.status("Arranging...")

	hooks := observability.Grow()
	start := time.Now()
	hooks.OnSimulateStart(ctx, r.model.Len())
	res, err := r.sim.Run(ctx, r.model, r.Renderer)
	hooks.OnSimulateComplete(ctx, res.Ticks, res.Energy, time.Since(start), err)

	r.sum.Ticks += res.Ticks
	if err == nil {
		r.publish(r.model)
		r.status("")
	}
	return res, err
}

func (r *run) stop(ctx context.Context, err error) (StopReason, error) {
	if ctx.Err() != nil {
		return StopCancelled, nil
	}
	return StopFailed, err
}

// statusSetter is implemented by renderers that show a status line.
type statusSetter interface {
	SetStatus(string)
}

func (o *Orchestrator) status(s string) {
	if ss, ok := o.Renderer.(statusSetter); ok {
		ss.SetStatus(s)
	}
}

func (o *Orchestrator) publish(m *graph.Model) {
	s := m.Snapshot()
	o.mu.Lock()
	o.snapshot = &s
	o.mu.Unlock()
}
