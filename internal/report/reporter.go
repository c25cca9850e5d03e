// Package report delivers scenario results to logs and to a PostgreSQL
// results store.
package report

import (
	"context"
	"errors"

	"github.com/gti/practice-automation-e2e/e2e/scenario"
	"go.uber.org/zap"
)

// LogReporter writes one structured log entry per result.
type LogReporter struct {
	log *zap.Logger
}

// NewLogReporter returns a reporter that logs each result through logger.
func NewLogReporter(logger *zap.Logger) *LogReporter {
	return &LogReporter{log: logger.Named("report")}
}

// Report logs a passed scenario at info and a failed one at warn.
func (r *LogReporter) Report(_ context.Context, res scenario.Result) error {
	fields := []zap.Field{
		zap.String("run_id", res.RunID.String()),
		zap.String("suite", res.Suite),
		zap.String("scenario", res.Scenario),
		zap.Bool("passed", res.Passed),
		zap.Duration("duration", res.Duration),
	}
	if res.Passed {
		r.log.Info("PASS", fields...)
		return nil
	}

	fields = append(fields, zap.Bool("timed_out", res.TimedOut), zap.Error(res.Err))
	if se, ok := res.Failure(); ok {
		fields = append(fields,
			zap.String("phase", string(se.Phase)),
			zap.Int("index", se.Index),
			zap.String("step", se.Name),
		)
	}
	if len(res.Failures) > 1 {
		fields = append(fields, zap.Errors("failures", res.Failures))
	}
	r.log.Warn("FAIL", fields...)
	return nil
}

// Multi fans a result out to every reporter and joins their errors.
type Multi []scenario.Reporter

// Report sends res to every reporter and joins their errors.
func (m Multi) Report(ctx context.Context, res scenario.Result) error {
	var errs []error
	for _, r := range m {
		if err := r.Report(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
