package expand

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tagtree/pkg/graph"
	"github.com/matzehuels/tagtree/pkg/httputil"
	"github.com/matzehuels/tagtree/pkg/observability"
	"github.com/matzehuels/tagtree/pkg/seen"
)

var (
	// ErrSearch wraps a search failure that survived every retry.
	ErrSearch = errors.New("search failed")

	// ErrDeadEnd is returned when no usable photo could be found for a parent.
	ErrDeadEnd = errors.New("dead end")
)

// =============================================================================
// Collaborators
// =============================================================================

// Candidate is one photo returned by a search.
type Candidate struct {
	FullURL  string
	ThumbURL string
	Tags     string // whitespace-delimited
}

// Photo converts the candidate to node metadata.
func (c Candidate) Photo() graph.Photo {
	return graph.Photo{FullURL: c.FullURL, ThumbURL: c.ThumbURL, Tags: c.Tags}
}

// Searcher finds photos by tag. An empty result is not an error.
// Transient failures should be wrapped with httputil.Retryable.
type Searcher interface {
	Search(ctx context.Context, tag string) ([]Candidate, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, tag string) ([]Candidate, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, tag string) ([]Candidate, error) {
	return f(ctx, tag)
}

// =============================================================================
// Config
// =============================================================================

// Config controls retries and node placement.
type Config struct {
	SearchAttempts int           `toml:"search_attempts"`
	SearchBackoff  time.Duration `toml:"search_backoff"`
	MaxDeadEnds    int           `toml:"max_dead_ends"`

	RootPos        graph.Vec `toml:"root_pos"`
	FirstOffsetMin float64   `toml:"first_offset_min"`
	FirstOffsetMax float64   `toml:"first_offset_max"`
	SpawnMin       float64   `toml:"spawn_min"`
	SpawnMax       float64   `toml:"spawn_max"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		SearchAttempts: 3,
		SearchBackoff:  time.Second,
		MaxDeadEnds:    8,
		RootPos:        graph.Vec{X: 300, Y: 300},
		FirstOffsetMin: 10,
		FirstOffsetMax: 50,
		SpawnMin:       100,
		SpawnMax:       1000,
	}
}

// Validate checks the configuration for impossible values.
func (c Config) Validate() error {
	switch {
	case c.SearchAttempts < 1:
		return fmt.Errorf("search attempts must be at least 1")
	case c.SearchBackoff < 0:
		return fmt.Errorf("search backoff must not be negative")
	case c.MaxDeadEnds < 0:
		return fmt.Errorf("max dead ends must not be negative")
	case c.FirstOffsetMin > c.FirstOffsetMax:
		return fmt.Errorf("first offset range [%v, %v] is empty", c.FirstOffsetMin, c.FirstOffsetMax)
	case c.SpawnMin > c.SpawnMax:
		return fmt.Errorf("spawn range [%v, %v] is empty", c.SpawnMin, c.SpawnMax)
	}
	return nil
}

// =============================================================================
// Controller
// =============================================================================

// Expansion describes a node added by Expand.
type Expansion struct {
	Node     graph.NodeID
	Tag      string // query that produced the node; differs from the requested tag after a dead end
	DeadEnds int
	Photo    graph.Photo
}

// Controller adds nodes to a model. It is not safe for concurrent use; the
// caller runs one expansion at a time.
type Controller struct {
	Config Config
	Logger *log.Logger

	model    *graph.Model
	searcher Searcher
	used     seen.Set
	rng      *rand.Rand
	children int
}

// New returns a controller that grows m. A nil used set is replaced by an
// in-memory one and a nil rng by a randomly seeded one.
func New(m *graph.Model, s Searcher, used seen.Set, rng *rand.Rand, cfg Config) *Controller {
	if used == nil {
		used = seen.NewMemory()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Controller{
		Config:   cfg,
		Logger:   log.NewWithOptions(io.Discard, log.Options{}),
		model:    m,
		searcher: s,
		used:     used,
		rng:      rng,
	}
}

// Expand searches for tag and attaches the chosen photo to parent. With
// parent set to graph.NoParent it creates the root instead.
func (c *Controller) Expand(ctx context.Context, tag string, parent graph.NodeID) (Expansion, error) {
	start := time.Now()
	observability.Grow().OnExpandStart(ctx, tag, int(parent))
	exp, err := c.expand(ctx, tag, parent)
	observability.Grow().OnExpandComplete(ctx, exp.Tag, int(exp.Node), exp.DeadEnds, time.Since(start), err)
	return exp, err
}

func (c *Controller) expand(ctx context.Context, tag string, parent graph.NodeID) (Expansion, error) {
	exp := Expansion{Node: graph.NoParent, Tag: tag}

	var p *graph.Node
	if parent != graph.NoParent {
		var ok bool
		if p, ok = c.model.Node(parent); !ok {
			return exp, fmt.Errorf("%w: %d", graph.ErrUnknownNode, parent)
		}
	}

	tried := []string{tag}
	for {
		c.Logger.Debug("loading tag", "tag", exp.Tag, "parent", parent)
		cands, err := c.search(ctx, exp.Tag)
		if err != nil {
			return exp, err
		}
		best, ok, err := c.choose(ctx, cands)
		if err != nil {
			return exp, err
		}
		if ok {
			exp.Photo = best.Photo()
			break
		}

		c.Logger.Debug("dead end", "tag", exp.Tag, "candidates", len(cands), "parent", parent)
		if p == nil {
			return exp, fmt.Errorf("%w: no usable photo for root tag %q", ErrDeadEnd, exp.Tag)
		}
		if exp.DeadEnds >= c.Config.MaxDeadEnds {
			return exp, fmt.Errorf("%w: node %d after %d retries", ErrDeadEnd, parent, exp.DeadEnds)
		}
		next, ok := PickTag(c.rng, p, tried...)
		if !ok {
			return exp, fmt.Errorf("%w: node %d has no untried tags after %d retries", ErrDeadEnd, parent, exp.DeadEnds)
		}
		exp.DeadEnds++
		exp.Tag = next
		tried = append(tried, next)
	}

	if err := c.used.Add(ctx, exp.Photo.ThumbURL); err != nil {
		return exp, fmt.Errorf("mark photo used: %w", err)
	}

	var err error
	if p == nil {
		exp.Node, err = c.model.CreateRoot(c.Config.RootPos, exp.Photo)
	} else {
		exp.Node, err = c.model.AddNode(parent, exp.Tag, exp.Photo, c.position())
		if err == nil {
			c.children++
		}
	}
	if err != nil {
		return exp, err
	}
	c.Logger.Debug("added node", "id", exp.Node, "tag", exp.Tag, "parent", parent, "tags", exp.Photo.TagCount())
	return exp, nil
}

func (c *Controller) search(ctx context.Context, tag string) ([]Candidate, error) {
	var cands []Candidate
	err := httputil.Retry(ctx, c.Config.SearchAttempts, c.Config.SearchBackoff, func() error {
		var err error
		cands, err = c.searcher.Search(ctx, tag)
		if err != nil && httputil.IsRetryable(err) {
			c.Logger.Warn("search failed, retrying", "tag", tag, "err", err)
		}
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %q: %w", ErrSearch, tag, err)
	}
	return cands, nil
}

// Best returns the index of the candidate with the most tags whose
// thumbnail is not in used, or -1 when every candidate is used. The first
// candidate wins ties. A nil used set skips the check.
func Best(ctx context.Context, cands []Candidate, used seen.Set) (int, error) {
	best, bestCount := -1, -1
	for i, cand := range cands {
		if used != nil {
			taken, err := used.Contains(ctx, cand.ThumbURL)
			if err != nil {
				return -1, fmt.Errorf("check used photos: %w", err)
			}
			if taken {
				continue
			}
		}
		if n := cand.Photo().TagCount(); n > bestCount {
			best, bestCount = i, n
		}
	}
	return best, nil
}

func (c *Controller) choose(ctx context.Context, cands []Candidate) (Candidate, bool, error) {
	i, err := Best(ctx, cands, c.used)
	if err != nil || i < 0 {
		return Candidate{}, false, err
	}
	return cands[i], true, nil
}

func (c *Controller) position() graph.Vec {
	cfg := c.Config
	if c.children == 0 {
		if root := c.model.Root(); root != nil {
			return root.Pos.Add(graph.Vec{
				X: c.uniform(cfg.FirstOffsetMin, cfg.FirstOffsetMax),
				Y: c.uniform(cfg.FirstOffsetMin, cfg.FirstOffsetMax),
			})
		}
	}
	return graph.Vec{
		X: c.uniform(cfg.SpawnMin, cfg.SpawnMax),
		Y: c.uniform(cfg.SpawnMin, cfg.SpawnMax),
	}
}

func (c *Controller) uniform(lo, hi float64) float64 {
	return lo + c.rng.Float64()*(hi-lo)
}
