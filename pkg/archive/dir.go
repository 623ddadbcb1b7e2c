package archive

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/tagtree/pkg/graph"
)

// Dir is a Store that keeps one JSON file per run.
type Dir struct {
	mu  sync.RWMutex
	dir string
}

// NewDir creates the directory if needed and returns a store rooted there.
func NewDir(dir string) (*Dir, error) {
	if dir == "" {
		return nil, errors.New("archive directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Dir{dir: dir}, nil
}

// Path returns the directory the store writes to.
func (d *Dir) Path() string { return d.dir }

func (d *Dir) Save(ctx context.Context, r Record) error {
	if r.ID == "" {
		return errors.New("record has no id")
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	tmp := d.path(r.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if err := os.Rename(tmp, d.path(r.ID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

func (d *Dir) Load(ctx context.Context, id string) (Record, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return Record{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, err := d.read(d.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, err
}

func (d *Dir) List(ctx context.Context, limit int) ([]Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("read archive dir: %w", err)
	}
	var out []Record
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := d.read(filepath.Join(d.dir, e.Name()))
		if err != nil {
			continue
		}
		r.Graph = graph.Snapshot{}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Record) int {
		if c := b.Started.Compare(a.Started); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (d *Dir) Close() error { return nil }

func (d *Dir) path(id string) string {
	return filepath.Join(d.dir, id+".json")
}

func (d *Dir) read(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return r, nil
}

var _ Store = (*Dir)(nil)
