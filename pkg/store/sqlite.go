package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/observability"
	"github.com/matzehuels/cratestack/pkg/pack"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	label TEXT NOT NULL DEFAULT '',
	placed_count INTEGER NOT NULL,
	unplaced_count INTEGER NOT NULL,
	utilization REAL NOT NULL,
	record TEXT NOT NULL
)`

// SQLiteStore keeps runs in a SQLite database. Summary columns are
// denormalized so List never parses record JSON.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the database at path.
// An empty path defaults to cratestack.db in the working directory.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "cratestack.db"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreFailed, err, "open sqlite %s", path)
	}
	if _, err := db.Exec(createRunsTable); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrCodeStoreFailed, err, "create runs table")
	}
	return &SQLiteStore{db: db}, nil
}

// Save stores a run, replacing any run with the same ID.
func (s *SQLiteStore) Save(ctx context.Context, run *Run) error {
	start := time.Now()
	err := s.save(ctx, run)
	observability.Store().OnSave(ctx, "sqlite", run.ID, time.Since(start), err)
	return err
}

func (s *SQLiteStore) save(ctx context.Context, run *Run) error {
	if err := errors.ValidateRunID(run.ID); err != nil {
		return err
	}

	record, err := json.Marshal(run.Record)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreFailed, err, "marshal record")
	}

	sum := run.Summarize()
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
		(id, created_at, label, placed_count, unplaced_count, utilization, record)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
		run.Label,
		sum.PlacedCount,
		sum.UnplacedCount,
		sum.Utilization,
		string(record),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreFailed, err, "insert run %s", run.ID)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Run, error) {
	start := time.Now()
	run, err := s.get(ctx, id)
	observability.Store().OnLoad(ctx, "sqlite", id, time.Since(start), err)
	return run, err
}

func (s *SQLiteStore) get(ctx context.Context, id string) (*Run, error) {
	if err := errors.ValidateRunID(id); err != nil {
		return nil, err
	}

	var (
		createdAt string
		run       = Run{ID: id}
		record    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, label, record FROM runs WHERE id = ?`, id).
		Scan(&createdAt, &run.Label, &record)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeRunNotFound, "run %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreFailed, err, "query run %s", id)
	}

	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreFailed, err, "parse created_at for run %s", id)
	}

	var rec pack.Record
	if err := json.Unmarshal([]byte(record), &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreFailed, err, "parse record for run %s", id)
	}
	run.Record = &rec
	return &run, nil
}

// List returns run summaries, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, label, placed_count, unplaced_count, utilization
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreFailed, err, "list runs")
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			sum       Summary
			createdAt string
		)
		if err := rows.Scan(&sum.ID, &createdAt, &sum.Label,
			&sum.PlacedCount, &sum.UnplacedCount, &sum.Utilization); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreFailed, err, "scan run row")
		}
		sum.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreFailed, err, "parse created_at")
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreFailed, err, "list runs")
	}
	return summaries, nil
}

// Delete removes a run by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateRunID(id); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreFailed, err, "delete run %s", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.New(errors.ErrCodeRunNotFound, "run %s not found", id)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
