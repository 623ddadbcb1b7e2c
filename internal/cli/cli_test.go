package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/tagtree/internal/config"
	"github.com/matzehuels/tagtree/pkg/archive"
	apperr "github.com/matzehuels/tagtree/pkg/errors"
	"github.com/matzehuels/tagtree/pkg/graph"
	"github.com/matzehuels/tagtree/pkg/grow"
)

// fakeFlickr answers every tag search with three photos unique to the tag.
func fakeFlickr(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	return slowFlickr(t, 0)
}

// slowFlickr is fakeFlickr with a delay before every answer.
func slowFlickr(t *testing.T, delay time.Duration) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(delay)
		tag := r.URL.Query().Get("tags")
		var photos []string
		for i := range 3 {
			photos = append(photos, fmt.Sprintf(
				`{"id":"%s%d","title":"%s","tags":"%s sea%d sky%d sand%d","url_sq":"https://img.test/%s/%d_sq.jpg","url_m":"https://img.test/%s/%d_m.jpg"}`,
				tag, i, tag, tag, i, i, i, tag, i, tag, i))
		}
		fmt.Fprintf(w, `{"photos":{"page":1,"pages":1,"perpage":20,"photo":[%s]},"stat":"ok"}`, strings.Join(photos, ","))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

// testEnv isolates the process environment and writes a config file that
// points the CLI at flickrURL. It returns the config path and archive dir.
func testEnv(t *testing.T, flickrURL string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvRedisURL, "")
	t.Setenv(config.EnvMongoURI, "")
	t.Chdir(dir)

	runs := filepath.Join(dir, "runs")
	path := filepath.Join(dir, "tagtree.toml")
	body := fmt.Sprintf(`
[flickr]
api_key = "test-key"
base_url = %q

[cache]
backend = "none"

[archive]
backend = "dir"
dir = %q
`, flickrURL+"/services/rest/", runs)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path, runs
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	return executeTo(t, io.Discard, args...)
}

// executeTo runs the CLI with its logger and terminal output on w.
func executeTo(t *testing.T, w io.Writer, args ...string) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	root := New(w, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(ctx)
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"", nil, false},
		{"svg", []string{"svg"}, false},
		{"json, DOT ,png", []string{"json", "dot", "png"}, false},
		{"svg,,pdf", []string{"svg", "pdf"}, false},
		{"svg,gif", nil, true},
	}
	for _, tt := range tests {
		got, err := parseFormats(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseFormats(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			if !apperr.Is(err, apperr.ErrCodeInvalidInput) {
				t.Errorf("parseFormats(%q) code = %s", tt.in, apperr.GetCode(err))
			}
			continue
		}
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestApplyGrowFlags(t *testing.T) {
	cfg := config.Default()
	applyGrowFlags(cfg, growOptions{tick: -1})
	if cfg.Grow.MaxNodes != config.Default().Grow.MaxNodes {
		t.Errorf("MaxNodes changed without a flag: %d", cfg.Grow.MaxNodes)
	}
	if cfg.Physics.TickInterval != config.Default().Physics.TickInterval {
		t.Errorf("TickInterval changed without a flag: %v", cfg.Physics.TickInterval)
	}

	applyGrowFlags(cfg, growOptions{maxNodes: 7, tick: 0, addr: ":9999"})
	if cfg.Grow.MaxNodes != 7 || cfg.Physics.TickInterval != 0 || cfg.Server.Addr != ":9999" {
		t.Errorf("flags not applied: max=%d tick=%v addr=%q", cfg.Grow.MaxNodes, cfg.Physics.TickInterval, cfg.Server.Addr)
	}
}

func TestGrowResult(t *testing.T) {
	interrupted, cancel := context.WithCancel(context.Background())
	cancel()
	failure := errors.New("search failed")

	tests := []struct {
		name   string
		ctx    context.Context
		reason grow.StopReason
		runErr error
		want   error
	}{
		{"interrupted mid run", interrupted, grow.StopCancelled, nil, context.Canceled},
		{"interrupted after run", interrupted, grow.StopLimit, nil, nil},
		{"quit from watch view", context.Background(), grow.StopCancelled, nil, nil},
		{"finished", context.Background(), grow.StopLimit, nil, nil},
		{"failed", context.Background(), grow.StopFailed, failure, failure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := growResult(tt.ctx, grow.Summary{Reason: tt.reason}, tt.runErr)
			if !errors.Is(err, tt.want) || (tt.want == nil && err != nil) {
				t.Errorf("growResult() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGrow(t *testing.T) {
	srv, calls := fakeFlickr(t)
	cfgPath, runs := testEnv(t, srv.URL)

	err := execute(t, "--config", cfgPath, "grow", "ocean", "-n", "3", "--tick", "0", "--seed", "7",
		"-f", "json,dot", "-o", "out/ocean")
	if err != nil {
		t.Fatalf("grow failed: %v", err)
	}
	if calls.Load() < 3 {
		t.Errorf("flickr searched %d times, want at least 3", calls.Load())
	}

	snap, err := graph.ReadSnapshotFile("out/ocean.json")
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if len(snap.Nodes) != 3 || len(snap.Edges) != 2 {
		t.Errorf("snapshot has %d nodes and %d edges, want 3 and 2", len(snap.Nodes), len(snap.Edges))
	}
	if _, err := graph.FromSnapshot(snap); err != nil {
		t.Errorf("snapshot is not a valid tree: %v", err)
	}
	dot, err := os.ReadFile("out/ocean.dot")
	if err != nil || !strings.Contains(string(dot), "graph") {
		t.Errorf("dot output missing or empty: %v", err)
	}

	store, err := archive.NewDir(runs)
	if err != nil {
		t.Fatal(err)
	}
	recs, err := store.List(context.Background(), 0)
	if err != nil || len(recs) != 1 {
		t.Fatalf("archive List() = (%d records, %v), want 1", len(recs), err)
	}
	rec := recs[0]
	if rec.RootTag != "ocean" || rec.Nodes != 3 || rec.Reason != "limit" {
		t.Errorf("archived record = %+v", rec)
	}

	if err := execute(t, "--config", cfgPath, "graph", "list"); err != nil {
		t.Errorf("graph list: %v", err)
	}
	if err := execute(t, "--config", cfgPath, "graph", "show", rec.ID); err != nil {
		t.Errorf("graph show: %v", err)
	}
	if err := execute(t, "--config", cfgPath, "graph", "export", rec.ID, "-f", "json", "-o", "export"); err != nil {
		t.Fatalf("graph export: %v", err)
	}
	exported, err := graph.ReadSnapshotFile("export.json")
	if err != nil || len(exported.Nodes) != 3 {
		t.Errorf("exported snapshot = (%d nodes, %v)", len(exported.Nodes), err)
	}
}

func TestGrowErrors(t *testing.T) {
	srv, _ := fakeFlickr(t)
	cfgPath, _ := testEnv(t, srv.URL)

	tests := []struct {
		name string
		args []string
		want apperr.Code
	}{
		{"bad tag", []string{"grow", "two words"}, apperr.ErrCodeInvalidTag},
		{"bad format", []string{"grow", "ocean", "-f", "gif"}, apperr.ErrCodeInvalidInput},
		{"missing config", []string{"--config", "nope.toml", "grow", "ocean"}, apperr.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if args[0] != "--config" {
				args = append([]string{"--config", cfgPath}, args...)
			}
			err := execute(t, args...)
			if !apperr.Is(err, tt.want) {
				t.Errorf("error = %v (code %s), want %s", err, apperr.GetCode(err), tt.want)
			}
		})
	}
}

func TestGrowMissingAPIKey(t *testing.T) {
	testEnv(t, "http://127.0.0.1:1")
	err := execute(t, "grow", "ocean")
	if !apperr.Is(err, apperr.ErrCodeMissingAPIKey) {
		t.Errorf("error = %v, want %s", err, apperr.ErrCodeMissingAPIKey)
	}
}

func TestSearch(t *testing.T) {
	srv, calls := fakeFlickr(t)
	cfgPath, _ := testEnv(t, srv.URL)

	if err := execute(t, "--config", cfgPath, "search", "ocean", "-l", "2"); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("flickr searched %d times, want 1", calls.Load())
	}
}

func TestSearchShowsSpinner(t *testing.T) {
	srv, _ := slowFlickr(t, 3*spinnerInterval)
	cfgPath, _ := testEnv(t, srv.URL)

	var buf bytes.Buffer
	if err := executeTo(t, &buf, "--config", cfgPath, "search", "ocean"); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Searching 'ocean'...") {
		t.Errorf("spinner message missing from output: %q", out)
	}
	if !strings.Contains(out, "Found 3 photos for 'ocean'") {
		t.Errorf("progress line missing from output: %q", out)
	}
	spun := strings.Index(out, "Searching 'ocean'...")
	found := strings.Index(out, "Found 3 photos")
	if spun > found {
		t.Error("spinner drawn after the search finished")
	}
}

func TestGraphExportInput(t *testing.T) {
	cfgPath, _ := testEnv(t, "http://127.0.0.1:1")

	m := graph.New()
	root, _ := m.CreateRoot(graph.Vec{X: 300, Y: 300}, graph.Photo{ThumbURL: "root.jpg", Tags: "sea sky"})
	if _, err := m.AddNode(root, "sea", graph.Photo{ThumbURL: "sea.jpg", Tags: "sea sand"}, graph.Vec{X: 340, Y: 300}); err != nil {
		t.Fatal(err)
	}
	if err := graph.WriteSnapshotFile(m, "tree.json"); err != nil {
		t.Fatal(err)
	}

	if err := execute(t, "--config", cfgPath, "graph", "export", "--input", "tree.json", "-f", "dot"); err != nil {
		t.Fatalf("graph export: %v", err)
	}
	dot, err := os.ReadFile("tree.dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), "sea") {
		t.Errorf("dot output lacks the edge label:\n%s", dot)
	}

	err = execute(t, "--config", cfgPath, "graph", "export")
	if !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Errorf("export without a source: error = %v, want %s", err, apperr.ErrCodeInvalidInput)
	}
}

func TestConfigInit(t *testing.T) {
	testEnv(t, "http://127.0.0.1:1")
	path := filepath.Join(t.TempDir(), "new.toml")

	if err := execute(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := config.Load(path); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
	if err := execute(t, "--config", path, "config", "init"); err == nil {
		t.Error("second init should refuse to overwrite")
	}
	if err := execute(t, "--config", path, "config", "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
	if err := execute(t, "--config", path, "config", "show"); err != nil {
		t.Errorf("config show: %v", err)
	}
}
