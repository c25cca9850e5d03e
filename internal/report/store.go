package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gti/practice-automation-e2e/e2e/scenario"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DBPool abstracts pgxpool.Pool so the store can be tested with pgxmock.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists scenario results. It implements scenario.Reporter.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a store and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool, log: logger.Named("store")}, nil
}

// Connect opens a pool for databaseURL, migrates it and returns the store
// with a function that closes the pool.
func Connect(ctx context.Context, databaseURL string, logger *zap.Logger) (*Store, func(), error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create pool: %w", err)
	}

	s, err := New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return s, pool.Close, nil
}

// Report inserts one result row.
func (s *Store) Report(ctx context.Context, res scenario.Result) error {
	var (
		phase, stepName, errText *string
		stepIndex                *int
	)
	if se, ok := res.Failure(); ok {
		p := string(se.Phase)
		phase, stepName, stepIndex = &p, &se.Name, &se.Index
	}
	if res.Err != nil {
		msg := res.Err.Error()
		errText = &msg
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO widget_e2e.scenario_results
		 (run_id, suite, scenario, passed, timed_out, phase, step_index, step_name, error, failure_count, started_at, duration_ms)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		res.RunID.String(), res.Suite, res.Scenario, res.Passed, res.TimedOut,
		phase, stepIndex, stepName, errText, len(res.Failures),
		res.StartedAt.UTC(), res.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to insert result for %s/%s: %w", res.Suite, res.Scenario, err)
	}
	return nil
}

// Row is a stored result.
type Row struct {
	Suite     string
	Scenario  string
	Passed    bool
	TimedOut  bool
	Phase     *string
	StepIndex *int
	StepName  *string
	Error     *string
	StartedAt time.Time
	Duration  time.Duration
}

// ListRun returns the results of a run ordered by suite and scenario.
func (s *Store) ListRun(ctx context.Context, runID uuid.UUID) ([]Row, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT suite, scenario, passed, timed_out, phase, step_index, step_name, error, started_at, duration_ms
		 FROM widget_e2e.scenario_results
		 WHERE run_id = $1::uuid
		 ORDER BY suite, scenario`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list run: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			r  Row
			ms int64
		)
		if err := rows.Scan(&r.Suite, &r.Scenario, &r.Passed, &r.TimedOut,
			&r.Phase, &r.StepIndex, &r.StepName, &r.Error, &r.StartedAt, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate results: %w", err)
	}
	return out, nil
}

// Summary counts the results of a run.
func (s *Store) Summary(ctx context.Context, runID uuid.UUID) (scenario.Summary, error) {
	var sum scenario.Summary
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE passed),
		        COUNT(*) FILTER (WHERE NOT passed),
		        COUNT(*) FILTER (WHERE timed_out)
		 FROM widget_e2e.scenario_results
		 WHERE run_id = $1::uuid`, runID.String()).Scan(&sum.Total, &sum.Passed, &sum.Failed, &sum.TimedOut)
	if err != nil {
		return scenario.Summary{}, fmt.Errorf("failed to summarize run: %w", err)
	}
	return sum, nil
}
