package report

import (
	"context"
	"fmt"
)

// Migrate creates the results schema.
func (s *Store) Migrate(ctx context.Context) error {
	s.log.Info("running results migrations")

	schema := `
	CREATE SCHEMA IF NOT EXISTS widget_e2e;

	-- One row per executed scenario
	CREATE TABLE IF NOT EXISTS widget_e2e.scenario_results (
		id BIGSERIAL PRIMARY KEY,
		run_id UUID NOT NULL,
		suite TEXT NOT NULL,
		scenario TEXT NOT NULL,
		passed BOOLEAN NOT NULL,
		timed_out BOOLEAN NOT NULL DEFAULT FALSE,
		phase TEXT,
		step_index INTEGER,
		step_name TEXT,
		error TEXT,
		failure_count INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMP WITH TIME ZONE NOT NULL,
		duration_ms BIGINT NOT NULL,
		recorded_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_scenario_results_run ON widget_e2e.scenario_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_scenario_results_scenario ON widget_e2e.scenario_results(suite, scenario, started_at);
	`

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	s.log.Info("results migrations completed")
	return nil
}
