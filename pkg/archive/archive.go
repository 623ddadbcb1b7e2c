package archive

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/tagtree/pkg/graph"
	"github.com/matzehuels/tagtree/pkg/grow"
)

// ErrNotFound is returned by Load when no run has the given ID.
var ErrNotFound = errors.New("run not found")

// Record is an archived run.
type Record struct {
	ID         string         `json:"id" bson:"_id"`
	RootTag    string         `json:"root_tag" bson:"root_tag"`
	Reason     string         `json:"reason" bson:"reason"`
	Nodes      int            `json:"nodes" bson:"nodes"`
	Edges      int            `json:"edges" bson:"edges"`
	Expansions int            `json:"expansions" bson:"expansions"`
	DeadEnds   int            `json:"dead_ends" bson:"dead_ends"`
	Ticks      int            `json:"ticks" bson:"ticks"`
	Started    time.Time      `json:"started" bson:"started"`
	Finished   time.Time      `json:"finished" bson:"finished"`
	Graph      graph.Snapshot `json:"graph" bson:"graph"`
}

// NewRecord builds a record from a run summary and its final tree.
func NewRecord(sum grow.Summary, snap graph.Snapshot) Record {
	return Record{
		ID:         sum.RunID.String(),
		RootTag:    sum.RootTag,
		Reason:     string(sum.Reason),
		Nodes:      sum.Nodes,
		Edges:      sum.Edges,
		Expansions: sum.Expansions,
		DeadEnds:   sum.DeadEnds,
		Ticks:      sum.Ticks,
		Started:    sum.Started,
		Finished:   sum.Finished,
		Graph:      snap,
	}
}

// Duration returns how long the run took.
func (r Record) Duration() time.Duration { return r.Finished.Sub(r.Started) }

// Store persists records.
type Store interface {
	// Save inserts or replaces the record with r.ID.
	Save(ctx context.Context, r Record) error
	// Load returns the record with the given ID or ErrNotFound.
	Load(ctx context.Context, id string) (Record, error)
	// List returns up to limit records, newest first, without their graphs.
	// A limit of zero or less returns every record.
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}
