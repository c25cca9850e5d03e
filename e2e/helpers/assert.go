package helpers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Assert provides assertion capabilities for E2E tests.
//
// This is a thin wrapper around testify/assert that knows how to verify page
// expectations and the typed errors of this package. All assertions log
// failures but do not stop test execution (use require package for fatal
// assertions).
//
// Usage:
//
//	a := NewAssert(t)
//	a.Expect(ctx, page, ToHaveText(ID("promptResult"), "Nice to meet you, Test!"))
//	a.AssertionFailed(err, "a mismatched dialog should fail the step")
type Assert struct {
	t testing.TB
}

// NewAssert creates a new assertion helper for the given test.
func NewAssert(t testing.TB) *Assert {
	return &Assert{t: t}
}

// Expect verifies a page expectation within its wait window.
//
//	a.Expect(ctx, page, ToHaveValue(ID("value"), "25"))
func (a *Assert) Expect(ctx context.Context, in Inspector, exp Expectation, msgAndArgs ...interface{}) bool {
	a.t.Helper()
	return assert.NoError(a.t, exp.Verify(ctx, in), msgAndArgs...)
}

// Equal asserts that expected and actual are equal.
func (a *Assert) Equal(expected, actual interface{}, msgAndArgs ...interface{}) bool {
	a.t.Helper()
	return assert.Equal(a.t, expected, actual, msgAndArgs...)
}

// NoError asserts that err is nil.
func (a *Assert) NoError(err error, msgAndArgs ...interface{}) bool {
	a.t.Helper()
	return assert.NoError(a.t, err, msgAndArgs...)
}

// ElementsMatch asserts that two lists hold the same elements in any order.
//
//	a.ElementsMatch(expectedLabels, texts, "homepage buttons")
func (a *Assert) ElementsMatch(expected, actual interface{}, msgAndArgs ...interface{}) bool {
	a.t.Helper()
	return assert.ElementsMatch(a.t, expected, actual, msgAndArgs...)
}

// NotFound asserts that err is a NotFoundError.
func (a *Assert) NotFound(err error, msgAndArgs ...interface{}) bool {
	a.t.Helper()
	var target *NotFoundError
	return assert.ErrorAs(a.t, err, &target, msgAndArgs...)
}

// Ambiguous asserts that err is an AmbiguousMatchError.
func (a *Assert) Ambiguous(err error, msgAndArgs ...interface{}) bool {
	a.t.Helper()
	var target *AmbiguousMatchError
	return assert.ErrorAs(a.t, err, &target, msgAndArgs...)
}

// AssertionFailed asserts that err is an AssertionError.
func (a *Assert) AssertionFailed(err error, msgAndArgs ...interface{}) bool {
	a.t.Helper()
	var target *AssertionError
	return assert.ErrorAs(a.t, err, &target, msgAndArgs...)
}

// TimedOut asserts that err is a TimeoutError.
func (a *Assert) TimedOut(err error, msgAndArgs ...interface{}) bool {
	a.t.Helper()
	var target *TimeoutError
	return assert.ErrorAs(a.t, err, &target, msgAndArgs...)
}

// Idle asserts that the dialog interceptor has no pending expectation.
func (a *Assert) Idle(d *DialogInterceptor, msgAndArgs ...interface{}) bool {
	a.t.Helper()
	return assert.Equal(a.t, DialogIdle, d.State(), msgAndArgs...)
}

// IsKind reports whether err carries an error of type T, for callers that
// branch rather than assert.
func IsKind[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}
