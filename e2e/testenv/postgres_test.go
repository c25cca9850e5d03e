//go:build e2e

package testenv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gti/practice-automation-e2e/e2e/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPostgresResultsStore(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, cleanup, err := StartPostgres(ctx, DefaultPostgresConfig(), zaptest.NewLogger(t))
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	defer cleanup()

	runID := uuid.New()
	started := time.Now().UTC().Truncate(time.Millisecond)
	failure := &scenario.StepError{Phase: scenario.PhaseCheck, Index: 1, Name: "result text", Err: errors.New("got \"\"")}

	require.NoError(t, pg.Store.Report(ctx, scenario.Result{
		RunID: runID, Suite: "popups", Scenario: "alert", Passed: true,
		StartedAt: started, Duration: 800 * time.Millisecond,
	}))
	require.NoError(t, pg.Store.Report(ctx, scenario.Result{
		RunID: runID, Suite: "popups", Scenario: "prompt cancel",
		Err: failure, Failures: []error{failure},
		StartedAt: started, Duration: 2 * time.Second,
	}))

	rows, err := pg.Store.ListRun(ctx, runID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alert", rows[0].Scenario)
	assert.True(t, rows[0].Passed)
	require.NotNil(t, rows[1].StepName)
	assert.Equal(t, "result text", *rows[1].StepName)
	assert.Equal(t, 2*time.Second, rows[1].Duration)

	sum, err := pg.Store.Summary(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, scenario.Summary{Total: 2, Passed: 1, Failed: 1}, sum)
}
