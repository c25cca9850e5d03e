// Package scenario runs named browser scenarios: navigate to a page, perform
// ordered steps, then verify ordered checks. Scenarios run in parallel, each
// on its own freshly opened target, and never share state.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Target is the per-scenario session a runner opens, drives and closes,
// typically a *helpers.Page.
type Target interface {
	Navigate(ctx context.Context, path string) error
	Close() error
}

// Action is one browser round-trip against a target.
type Action[T Target] func(ctx context.Context, t T) error

// Step is a named action.
type Step[T Target] struct {
	Name string    `validate:"required"`
	Do   Action[T] `validate:"required"`
}

// Check is a named postcondition.
type Check[T Target] struct {
	Name   string    `validate:"required"`
	Verify Action[T] `validate:"required"`
}

// Scenario is an immutable test case. Path is navigated to before the first
// step.
type Scenario[T Target] struct {
	Name   string     `validate:"required"`
	Path   string     `validate:"required"`
	Steps  []Step[T]  `validate:"dive"`
	Checks []Check[T] `validate:"dive"`

	// Timeout overrides the runner's per-scenario timeout when positive.
	Timeout time.Duration `validate:"gte=0"`
}

var validate = validator.New()

// Validate reports missing names, paths and nil actions.
func (s Scenario[T]) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid scenario %q: %w", s.Name, err)
	}
	return nil
}

// Phase is the part of a scenario that was executing when it failed.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseNavigate Phase = "navigate"
	PhaseStep     Phase = "step"
	PhaseCheck    Phase = "check"
)

// ErrScenarioTimeout marks failures caused by the overall scenario deadline.
var ErrScenarioTimeout = errors.New("scenario timed out")

// StepError locates a failure within a scenario. Index is zero-based within
// its phase.
type StepError struct {
	Phase Phase
	Index int
	Name  string
	Err   error
}

func (e *StepError) Error() string {
	switch e.Phase {
	case PhaseStep, PhaseCheck:
		return fmt.Sprintf("%s %d (%s): %v", e.Phase, e.Index+1, e.Name, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Phase, e.Err)
	}
}

func (e *StepError) Unwrap() error { return e.Err }

// TimeoutError reports that a scenario exceeded its overall deadline. It
// matches ErrScenarioTimeout with errors.Is and still unwraps to the error
// of the step that was cut short.
type TimeoutError struct {
	After time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%v after %v: %v", ErrScenarioTimeout, e.After, e.Err)
}

func (e *TimeoutError) Unwrap() []error { return []error{ErrScenarioTimeout, e.Err} }

// Timeout marks the error as a deadline failure.
func (e *TimeoutError) Timeout() bool { return true }

// deadlineError is implemented by deadline errors of any layer.
type deadlineError interface {
	Timeout() bool
}

// IsTimeout reports whether err carries a deadline failure.
func IsTimeout(err error) bool {
	var te deadlineError
	return errors.As(err, &te) && te.Timeout()
}

// assertionFailure is implemented by errors that only report a state
// mismatch. In soft-assertion mode they do not stop the scenario.
type assertionFailure interface {
	AssertionFailure() bool
}

// IsAssertionFailure reports whether err is a soft, assertion-only failure.
func IsAssertionFailure(err error) bool {
	var af assertionFailure
	return errors.As(err, &af) && af.AssertionFailure()
}

// Result is the outcome of one scenario.
type Result struct {
	RunID     uuid.UUID
	Suite     string
	Scenario  string
	Passed    bool
	TimedOut  bool
	Err       error
	Failures  []error
	StartedAt time.Time
	Duration  time.Duration
}

// Failure returns the StepError of the first failure, if any.
func (r Result) Failure() (*StepError, bool) {
	var se *StepError
	if errors.As(r.Err, &se) {
		return se, true
	}
	return nil, false
}

// Reporter receives every scenario result as soon as it is known.
type Reporter interface {
	Report(ctx context.Context, res Result) error
}

// Summary counts results.
type Summary struct {
	Total    int
	Passed   int
	Failed   int
	TimedOut int
}

// Summarize counts passed, failed and timed out results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Passed:
			s.Passed++
		case r.TimedOut:
			s.TimedOut++
			s.Failed++
		default:
			s.Failed++
		}
	}
	return s
}
