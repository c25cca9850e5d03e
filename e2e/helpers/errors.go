package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// NotFoundError reports that no element matched a reference within the
// bounded wait window.
type NotFoundError struct {
	Ref     Ref
	Timeout time.Duration
	Err     error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no element matches %s within %v", e.Ref, e.Timeout)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// AmbiguousMatchError reports that a single-target reference matched more
// than one element.
type AmbiguousMatchError struct {
	Ref   Ref
	Count int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%s matches %d elements, expected exactly one", e.Ref, e.Count)
}

// InteractionError reports that a resolved element could not be acted on:
// hidden, disabled, detached, or otherwise not interactable in time.
type InteractionError struct {
	Ref    Ref
	Action string
	Err    error
}

func (e *InteractionError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Action, e.Ref, e.Err)
}

func (e *InteractionError) Unwrap() error { return e.Err }

// AssertionError reports an expected vs. actual mismatch, including a dialog
// whose kind or message differs from the armed expectation.
type AssertionError struct {
	Subject  string
	Expected interface{}
	Actual   interface{}
	Err      error
}

func (e *AssertionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("expected %s to be %q, last error: %v", e.Subject, fmt.Sprint(e.Expected), e.Err)
	}
	return fmt.Sprintf("expected %s to be %q, got %q", e.Subject, fmt.Sprint(e.Expected), fmt.Sprint(e.Actual))
}

func (e *AssertionError) Unwrap() error { return e.Err }

// AssertionFailure marks the error as a soft, assertion-only failure for the
// scenario runner.
func (e *AssertionError) AssertionFailure() bool { return true }

// TimeoutError reports that a bounded wait elapsed, e.g. a dialog that never
// opened.
type TimeoutError struct {
	Op    string
	After time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v waiting to %s", e.After, e.Op)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Timeout reports true so callers can test with an interface assertion.
func (e *TimeoutError) Timeout() bool { return true }

// asTimeout converts a context deadline into a TimeoutError and returns any
// other error unchanged.
func asTimeout(op string, after time.Duration, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op, After: after, Err: err}
	}
	return err
}
