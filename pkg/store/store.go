// Package store persists packing runs for later replay, inspection,
// and comparison.
//
// Three backends implement [Store]: a JSON file directory for CLI
// usage, SQLite for single-host deployments that want listing without
// scanning files, and MongoDB for server deployments. All backends
// share the same semantics: Save upserts by run ID, Get and Delete
// return RUN_NOT_FOUND for missing IDs, and List returns newest runs
// first.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/pack"
)

// Run is a stored packing run.
type Run struct {
	ID        string       `json:"id" bson:"_id"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	Label     string       `json:"label,omitempty" bson:"label,omitempty"`
	Record    *pack.Record `json:"record" bson:"record"`
}

// NewRun wraps a record for storage under a fresh run ID.
func NewRun(rec *pack.Record, label string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Label:     label,
		Record:    rec,
	}
}

// Summary is the listing view of a run, light enough to show in
// tables without loading full placement lists.
type Summary struct {
	ID            string    `json:"id" bson:"_id"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	Label         string    `json:"label,omitempty" bson:"label,omitempty"`
	PlacedCount   int       `json:"placed_count" bson:"placed_count"`
	UnplacedCount int       `json:"unplaced_count" bson:"unplaced_count"`
	Utilization   float64   `json:"utilization" bson:"utilization"`
}

// Summarize builds the listing view of a run.
func (r *Run) Summarize() Summary {
	s := Summary{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Label:     r.Label,
	}
	if r.Record != nil {
		s.PlacedCount = r.Record.Stats.PlacedCount
		s.UnplacedCount = r.Record.Stats.UnplacedCount
		s.Utilization = r.Record.Stats.Utilization
	}
	return s
}

// Store persists packing runs.
type Store interface {
	// Save stores a run, replacing any run with the same ID.
	Save(ctx context.Context, run *Run) error

	// Get retrieves a run by ID.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns run summaries, newest first. A limit of zero or
	// less returns all runs.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Delete removes a run by ID.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend    string // file | sqlite | mongo
	Dir        string // file backend directory
	SQLitePath string // sqlite database file
	MongoURI   string // mongo connection string
	MongoDB    string // mongo database name
}

// Open creates the store described by opts. An empty backend means
// file.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileStore(opts.Dir)
	case "sqlite":
		return NewSQLiteStore(opts.SQLitePath)
	case "mongo":
		return NewMongoStore(ctx, opts.MongoURI, opts.MongoDB)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"unknown store backend %q", opts.Backend)
	}
}
