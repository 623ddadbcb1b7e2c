package expand

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/tagtree/pkg/graph"
	"github.com/matzehuels/tagtree/pkg/httputil"
	"github.com/matzehuels/tagtree/pkg/seen"
)

// fakeSearcher answers from a fixed table and records every query.
type fakeSearcher struct {
	results map[string][]Candidate
	errs    map[string][]error // consumed one per call before results
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, tag string) ([]Candidate, error) {
	f.queries = append(f.queries, tag)
	if errs := f.errs[tag]; len(errs) > 0 {
		f.errs[tag] = errs[1:]
		return nil, errs[0]
	}
	return f.results[tag], nil
}

func cand(thumb, tags string) Candidate {
	return Candidate{FullURL: thumb + ".full", ThumbURL: thumb, Tags: tags}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SearchBackoff = 0
	return cfg
}

func newTestController(t *testing.T, s Searcher, seed uint64) (*Controller, *graph.Model) {
	t.Helper()
	m := graph.New()
	return New(m, s, seen.NewMemory(), rand.New(rand.NewPCG(seed, seed)), testConfig()), m
}

func TestExpandCreatesRoot(t *testing.T) {
	s := &fakeSearcher{results: map[string][]Candidate{
		"ocean": {cand("a", "ocean"), cand("b", "ocean sea sky"), cand("c", "ocean blue")},
	}}
	c, m := newTestController(t, s, 1)

	exp, err := c.Expand(context.Background(), "ocean", graph.NoParent)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	if exp.Node != 0 || m.Len() != 1 {
		t.Fatalf("Expand() node = %d, model len = %d", exp.Node, m.Len())
	}
	root := m.Root()
	if root.Pos != (graph.Vec{X: 300, Y: 300}) {
		t.Errorf("root pos = %v, want (300,300)", root.Pos)
	}
	if root.Photo.ThumbURL != "b" {
		t.Errorf("root photo = %q, want the candidate with most tags", root.Photo.ThumbURL)
	}
	if root.Query != "" || root.Degree() != 0 {
		t.Errorf("root query = %q, degree = %d", root.Query, root.Degree())
	}
	if ok, _ := c.used.Contains(context.Background(), "b"); !ok {
		t.Error("chosen thumbnail not added to used set")
	}
}

func TestChoose(t *testing.T) {
	tests := []struct {
		name  string
		cands []Candidate
		used  []string
		want  string
		found bool
	}{
		{"Empty", nil, nil, "", false},
		{"MostTags", []Candidate{cand("a", "x"), cand("b", "x y z"), cand("c", "x y")}, nil, "b", true},
		{"FirstWinsTie", []Candidate{cand("a", "x y"), cand("b", "p q")}, nil, "a", true},
		{"SkipsUsed", []Candidate{cand("a", "x y z"), cand("b", "x")}, []string{"a"}, "b", true},
		{"AllUsed", []Candidate{cand("a", "x")}, []string{"a"}, "", false},
		{"TaglessStillEligible", []Candidate{cand("a", "")}, nil, "a", true},
		{"WhitespaceTags", []Candidate{cand("a", "x  y"), cand("b", " x\ty\nz ")}, nil, "b", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestController(t, &fakeSearcher{}, 1)
			for _, u := range tt.used {
				_ = c.used.Add(context.Background(), u)
			}
			got, ok, err := c.choose(context.Background(), tt.cands)
			if err != nil {
				t.Fatal(err)
			}
			if ok != tt.found || got.ThumbURL != tt.want {
				t.Errorf("choose() = (%q, %v), want (%q, %v)", got.ThumbURL, ok, tt.want, tt.found)
			}
		})
	}
}

type brokenSet struct{ seen.Memory }

func (*brokenSet) Contains(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}

func TestBest(t *testing.T) {
	cands := []Candidate{cand("a", "x"), cand("b", "x y")}
	if i, err := Best(context.Background(), cands, nil); err != nil || i != 1 {
		t.Errorf("Best(nil set) = (%d, %v), want (1, nil)", i, err)
	}
	if i, err := Best(context.Background(), cands, &brokenSet{}); err == nil || i != -1 {
		t.Errorf("Best(broken set) = (%d, %v), want an error", i, err)
	}
}

func TestExpandChild(t *testing.T) {
	s := &fakeSearcher{results: map[string][]Candidate{
		"ocean": {cand("root", "ocean sea sky")},
		"sea":   {cand("root", "ocean sea sky"), cand("child", "sea wave")},
	}}
	c, m := newTestController(t, s, 1)
	ctx := context.Background()

	if _, err := c.Expand(ctx, "ocean", graph.NoParent); err != nil {
		t.Fatal(err)
	}
	exp, err := c.Expand(ctx, "sea", 0)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	if exp.Node != 1 || exp.Tag != "sea" || exp.DeadEnds != 0 {
		t.Errorf("Expand() = %+v", exp)
	}
	if m.Degree(0) != 1 {
		t.Errorf("degree(root) = %d, want 1", m.Degree(0))
	}
	child, _ := m.Node(1)
	if child.Photo.ThumbURL != "child" {
		t.Errorf("used photo was selected again: %q", child.Photo.ThumbURL)
	}
	if id, ok := child.Neighbor("sea"); !ok || id != 0 {
		t.Error("child not linked to root through the tag")
	}
}

func TestExpandPositions(t *testing.T) {
	s := &fakeSearcher{results: map[string][]Candidate{}}
	tags := []string{"a", "b", "c", "d"}
	s.results["root"] = []Candidate{cand("r", "a b c d")}
	for i, tag := range tags {
		s.results[tag] = []Candidate{cand(string(rune('0'+i)), tag)}
	}
	c, m := newTestController(t, s, 7)
	ctx := context.Background()

	if _, err := c.Expand(ctx, "root", graph.NoParent); err != nil {
		t.Fatal(err)
	}
	for _, tag := range tags {
		if _, err := c.Expand(ctx, tag, 0); err != nil {
			t.Fatalf("Expand(%q) error: %v", tag, err)
		}
	}

	first, _ := m.Node(1)
	off := first.Pos.Sub(m.Root().Pos)
	if off.X < 10 || off.X > 50 || off.Y < 10 || off.Y > 50 {
		t.Errorf("first child offset = %v, want within [10,50]", off)
	}
	for _, n := range m.Nodes()[2:] {
		if n.Pos.X < 100 || n.Pos.X > 1000 || n.Pos.Y < 100 || n.Pos.Y > 1000 {
			t.Errorf("node %d pos = %v, want within [100,1000]", n.ID, n.Pos)
		}
	}
}

func TestExpandDeadEndRetriesOnceFromParentTags(t *testing.T) {
	for seed := range uint64(20) {
		s := &fakeSearcher{results: map[string][]Candidate{
			"ocean": {cand("root", "ocean sea sky wave"), cand("o", "ocean deep")},
			"sky":   {cand("s", "sky blue")},
			"wave":  {cand("w", "wave surf")},
		}}
		c, m := newTestController(t, s, seed)
		ctx := context.Background()

		if _, err := c.Expand(ctx, "ocean", graph.NoParent); err != nil {
			t.Fatal(err)
		}
		s.results["sea"] = nil // dead end
		s.queries = nil

		exp, err := c.Expand(ctx, "sea", 0)
		if err != nil {
			t.Fatalf("seed %d: Expand() error: %v", seed, err)
		}
		if len(s.queries) != 2 {
			t.Fatalf("seed %d: queries = %v, want exactly one retry", seed, s.queries)
		}
		retry := s.queries[1]
		if retry == "sea" {
			t.Errorf("seed %d: retried with the failed query", seed)
		}
		if !slices.Contains(m.Root().Photo.TagList(), retry) {
			t.Errorf("seed %d: retry tag %q not from parent's tags", seed, retry)
		}
		if exp.DeadEnds != 1 || exp.Tag != retry {
			t.Errorf("seed %d: Expand() = %+v", seed, exp)
		}
	}
}

func TestExpandDeadEndExhausted(t *testing.T) {
	s := &fakeSearcher{results: map[string][]Candidate{
		"ocean": {cand("root", "ocean sea sky wave")},
	}}
	c, _ := newTestController(t, s, 3)
	c.Config.MaxDeadEnds = 2
	ctx := context.Background()

	if _, err := c.Expand(ctx, "ocean", graph.NoParent); err != nil {
		t.Fatal(err)
	}
	s.queries = nil

	_, err := c.Expand(ctx, "nothing", 0)
	if !errors.Is(err, ErrDeadEnd) {
		t.Fatalf("Expand() error = %v, want ErrDeadEnd", err)
	}
	if len(s.queries) != 3 {
		t.Errorf("queries = %v, want initial search plus 2 retries", s.queries)
	}
}

func TestExpandDeadEndTriesEachTagOnce(t *testing.T) {
	for seed := range uint64(20) {
		s := &fakeSearcher{results: map[string][]Candidate{
			"ocean": {cand("root", "ocean sea sky")},
		}}
		c, _ := newTestController(t, s, seed)
		ctx := context.Background()

		if _, err := c.Expand(ctx, "ocean", graph.NoParent); err != nil {
			t.Fatal(err)
		}
		s.results["ocean"] = nil
		s.queries = nil

		exp, err := c.Expand(ctx, "sea", 0)
		if !errors.Is(err, ErrDeadEnd) {
			t.Fatalf("seed %d: Expand() error = %v, want ErrDeadEnd", seed, err)
		}
		sorted := slices.Sorted(slices.Values(s.queries))
		if !slices.Equal(sorted, []string{"ocean", "sea", "sky"}) {
			t.Errorf("seed %d: queries = %v, want each parent tag exactly once", seed, s.queries)
		}
		if exp.DeadEnds != 2 {
			t.Errorf("seed %d: DeadEnds = %d, want 2", seed, exp.DeadEnds)
		}
	}
}

func TestExpandDeadEndNoTagsLeft(t *testing.T) {
	s := &fakeSearcher{results: map[string][]Candidate{
		"ocean": {cand("root", "ocean")},
	}}
	c, _ := newTestController(t, s, 3)
	ctx := context.Background()

	if _, err := c.Expand(ctx, "ocean", graph.NoParent); err != nil {
		t.Fatal(err)
	}
	s.queries = nil
	if _, err := c.Expand(ctx, "ocean", 0); !errors.Is(err, ErrDeadEnd) {
		t.Fatalf("Expand() error = %v, want ErrDeadEnd", err)
	}
	if len(s.queries) != 1 {
		t.Errorf("queries = %v, want no retry", s.queries)
	}
}

func TestExpandRootDeadEnd(t *testing.T) {
	s := &fakeSearcher{results: map[string][]Candidate{}}
	c, m := newTestController(t, s, 1)

	_, err := c.Expand(context.Background(), "zzqx", graph.NoParent)
	if !errors.Is(err, ErrDeadEnd) {
		t.Fatalf("Expand() error = %v, want ErrDeadEnd", err)
	}
	if len(s.queries) != 1 || m.Len() != 0 {
		t.Errorf("queries = %v, model len = %d", s.queries, m.Len())
	}
}

func TestExpandUnknownParent(t *testing.T) {
	c, _ := newTestController(t, &fakeSearcher{}, 1)
	if _, err := c.Expand(context.Background(), "ocean", 42); !errors.Is(err, graph.ErrUnknownNode) {
		t.Errorf("Expand() error = %v, want ErrUnknownNode", err)
	}
}

func TestExpandSearchErrors(t *testing.T) {
	transient := httputil.Retryable(errors.New("status 503"))
	permanent := errors.New("invalid api key")

	tests := []struct {
		name      string
		errs      []error
		wantErr   bool
		wantCalls int
	}{
		{"RecoversAfterTransient", []error{transient, transient}, false, 3},
		{"TransientExhausted", []error{transient, transient, transient}, true, 3},
		{"PermanentNotRetried", []error{permanent}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSearcher{
				results: map[string][]Candidate{"ocean": {cand("root", "ocean")}},
				errs:    map[string][]error{"ocean": tt.errs},
			}
			c, _ := newTestController(t, s, 1)

			_, err := c.Expand(context.Background(), "ocean", graph.NoParent)
			if tt.wantErr != (err != nil) {
				t.Fatalf("Expand() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrSearch) {
				t.Errorf("Expand() error = %v, want ErrSearch", err)
			}
			if len(s.queries) != tt.wantCalls {
				t.Errorf("search calls = %d, want %d", len(s.queries), tt.wantCalls)
			}
		})
	}
}

func TestExpandCancelled(t *testing.T) {
	s := &fakeSearcher{
		errs: map[string][]error{"ocean": {httputil.Retryable(errors.New("timeout"))}},
	}
	c, _ := newTestController(t, s, 1)
	c.Config.SearchBackoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Expand(ctx, "ocean", graph.NoParent); !errors.Is(err, context.Canceled) {
		t.Errorf("Expand() error = %v, want context.Canceled", err)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	bad := []func(*Config){
		func(c *Config) { c.SearchAttempts = 0 },
		func(c *Config) { c.MaxDeadEnds = -1 },
		func(c *Config) { c.FirstOffsetMin = 60 },
		func(c *Config) { c.SpawnMax = 10 },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig()
		mutate(&cfg)
		if cfg.Validate() == nil {
			t.Errorf("case %d: Validate() should fail", i)
		}
	}
}
