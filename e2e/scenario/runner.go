package scenario

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultParallelism = 4
	defaultTimeout     = 60 * time.Second

	// closeGrace bounds how long a timed-out scenario may take to unwind
	// after its target was closed.
	closeGrace = 5 * time.Second
)

// Opener opens a fresh target for one scenario.
type Opener[T Target] func(ctx context.Context) (T, error)

// Options configures a Runner.
type Options struct {
	// Parallelism is the maximum number of scenarios running at once.
	Parallelism int

	// Timeout bounds each scenario, from opening the target to the last check.
	Timeout time.Duration

	// SoftAssertions keeps a scenario going after assertion-only failures and
	// reports all of them. Any other error still stops the scenario.
	SoftAssertions bool

	Reporter Reporter
	Logger   *zap.Logger
}

// Runner executes scenarios against targets produced by an Opener.
//
//	runner := scenario.NewRunner(browser.NewPage, scenario.Options{Parallelism: 4})
//	results := runner.Run(ctx, "popups", suites.Popups())
type Runner[T Target] struct {
	open  Opener[T]
	opts  Options
	runID uuid.UUID
	log   *zap.Logger
}

// NewRunner returns a runner with a new run ID.
func NewRunner[T Target](open Opener[T], opts Options) *Runner[T] {
	if opts.Parallelism < 1 {
		opts.Parallelism = defaultParallelism
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	runID := uuid.New()
	return &Runner[T]{
		open:  open,
		opts:  opts,
		runID: runID,
		log:   opts.Logger.Named("runner").With(zap.String("run_id", runID.String())),
	}
}

// RunID identifies every result this runner produces.
func (r *Runner[T]) RunID() uuid.UUID {
	return r.runID
}

// Run executes scenarios in parallel and returns their results in input
// order. A failing scenario never stops the others.
func (r *Runner[T]) Run(ctx context.Context, suite string, scenarios []Scenario[T]) []Result {
	results := make([]Result, len(scenarios))

	var g errgroup.Group
	g.SetLimit(r.opts.Parallelism)

	for i, s := range scenarios {
		g.Go(func() error {
			results[i] = r.RunOne(ctx, suite, s)
			return nil
		})
	}
	_ = g.Wait()

	sum := Summarize(results)
	r.log.Info("suite finished",
		zap.String("suite", suite),
		zap.Int("total", sum.Total),
		zap.Int("passed", sum.Passed),
		zap.Int("failed", sum.Failed),
		zap.Int("timed_out", sum.TimedOut),
	)
	return results
}

// RunOne executes a single scenario on its own target.
func (r *Runner[T]) RunOne(ctx context.Context, suite string, s Scenario[T]) Result {
	res := Result{
		RunID:     r.runID,
		Suite:     suite,
		Scenario:  s.Name,
		StartedAt: time.Now(),
	}
	log := r.log.With(zap.String("suite", suite), zap.String("scenario", s.Name))

	r.finish(ctx, &res, log, r.execute(ctx, s, log))
	return res
}

type outcome struct {
	failures []error
	timedOut bool
}

func (r *Runner[T]) execute(ctx context.Context, s Scenario[T], log *zap.Logger) outcome {
	if err := s.Validate(); err != nil {
		return outcome{failures: []error{&StepError{Phase: PhaseSetup, Err: err}}}
	}

	timeout := r.opts.Timeout
	if s.Timeout > 0 {
		timeout = s.Timeout
	}
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target, err := r.open(sctx)
	if err != nil {
		return outcome{
			failures: []error{&StepError{Phase: PhaseSetup, Err: fmt.Errorf("failed to open target: %w", err)}},
			timedOut: errors.Is(sctx.Err(), context.DeadlineExceeded),
		}
	}

	var closeOnce sync.Once
	closeTarget := func() {
		closeOnce.Do(func() {
			if err := target.Close(); err != nil {
				log.Warn("failed to close target", zap.Error(err))
			}
		})
	}
	defer closeTarget()

	cur := &cursor{}
	done := make(chan []error, 1)
	go func() {
		done <- r.steps(sctx, s, target, cur)
	}()

	var failures []error
	select {
	case failures = <-done:
	case <-sctx.Done():
		// Closing the target aborts in-flight browser calls.
		closeTarget()
		select {
		case failures = <-done:
		case <-time.After(closeGrace):
			failures = []error{cur.failure(sctx.Err())}
		}
	}

	if errors.Is(sctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil && len(failures) > 0 {
		last := failures[len(failures)-1]
		var se *StepError
		if errors.As(last, &se) {
			failures[len(failures)-1] = &StepError{
				Phase: se.Phase,
				Index: se.Index,
				Name:  se.Name,
				Err:   &TimeoutError{After: timeout, Err: se.Err},
			}
		}
		return outcome{failures: failures, timedOut: true}
	}
	return outcome{failures: failures}
}

// steps runs navigation, steps and checks strictly in order.
func (r *Runner[T]) steps(ctx context.Context, s Scenario[T], target T, cur *cursor) []error {
	var failures []error

	// fail records err and reports whether the scenario must stop.
	fail := func(se *StepError) bool {
		failures = append(failures, se)
		return !(r.opts.SoftAssertions && IsAssertionFailure(se.Err))
	}

	cur.set(PhaseNavigate, 0, s.Path)
	if err := target.Navigate(ctx, s.Path); err != nil {
		return []error{&StepError{Phase: PhaseNavigate, Name: s.Path, Err: err}}
	}

	for i, st := range s.Steps {
		cur.set(PhaseStep, i, st.Name)
		if err := st.Do(ctx, target); err != nil {
			if fail(&StepError{Phase: PhaseStep, Index: i, Name: st.Name, Err: err}) {
				return failures
			}
		}
	}

	for i, c := range s.Checks {
		cur.set(PhaseCheck, i, c.Name)
		if err := c.Verify(ctx, target); err != nil {
			if fail(&StepError{Phase: PhaseCheck, Index: i, Name: c.Name, Err: err}) {
				return failures
			}
		}
	}
	return failures
}

func (r *Runner[T]) finish(ctx context.Context, res *Result, log *zap.Logger, out outcome) {
	res.Duration = time.Since(res.StartedAt)
	res.Failures = out.failures
	res.TimedOut = out.timedOut
	res.Passed = len(out.failures) == 0
	if !res.Passed {
		res.Err = out.failures[0]
	}

	if res.Passed {
		log.Info("scenario passed", zap.Duration("duration", res.Duration))
	} else {
		log.Warn("scenario failed",
			zap.Error(res.Err),
			zap.Int("failures", len(res.Failures)),
			zap.Bool("timed_out", res.TimedOut),
			zap.Duration("duration", res.Duration),
		)
	}

	if r.opts.Reporter != nil {
		// Reporting must outlive a cancelled suite context.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := r.opts.Reporter.Report(rctx, *res); err != nil {
			log.Error("failed to report result", zap.Error(err))
		}
	}
}

// cursor tracks the part of a scenario currently executing.
type cursor struct {
	mu    sync.Mutex
	phase Phase
	index int
	name  string
}

func (c *cursor) set(phase Phase, index int, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase, c.index, c.name = phase, index, name
}

func (c *cursor) failure(err error) *StepError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &StepError{Phase: c.phase, Index: c.index, Name: c.name, Err: err}
}
