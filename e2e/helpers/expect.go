package helpers

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// expectPollInterval is the delay between checks of a pending expectation.
const expectPollInterval = 100 * time.Millisecond

// Inspector reads observable page state. *Page implements it.
type Inspector interface {
	Timeout() time.Duration
	Value(ctx context.Context, ref Ref) (string, error)
	Text(ctx context.Context, ref Ref) (string, error)
	IsChecked(ctx context.Context, ref Ref) (bool, error)
	IsVisible(ctx context.Context, ref Ref) (bool, error)
	Title(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)
}

var _ Inspector = (*Page)(nil)

// Expectation is a retried assertion on page state. It passes as soon as the
// check holds and fails with an AssertionError when the wait window elapses.
type Expectation struct {
	subject  string
	expected interface{}
	timeout  time.Duration
	check    func(ctx context.Context, in Inspector) (actual interface{}, ok bool, err error)
}

// Within overrides the wait window, e.g. for content rendered after a
// JavaScript delay.
func (e Expectation) Within(d time.Duration) Expectation {
	e.timeout = d
	return e
}

// Subject describes what the expectation inspects.
func (e Expectation) Subject() string {
	return e.subject
}

// Verify polls the check until it holds or the window elapses. The window is
// the override set with Within, else the inspector's default timeout.
func (e Expectation) Verify(ctx context.Context, in Inspector) error {
	window := e.timeout
	if window <= 0 {
		window = in.Timeout()
	}
	ctx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	ticker := time.NewTicker(expectPollInterval)
	defer ticker.Stop()

	var (
		actual  interface{}
		lastErr error
	)
	for {
		got, ok, err := e.check(ctx, in)
		if err == nil && ok {
			return nil
		}
		if err != nil {
			lastErr = err
		} else {
			actual, lastErr = got, nil
		}

		select {
		case <-ctx.Done():
			return &AssertionError{Subject: e.subject, Expected: e.expected, Actual: actual, Err: lastErr}
		case <-ticker.C:
		}
	}
}

// ToHaveValue expects a form control's value to equal want.
func ToHaveValue(ref Ref, want string) Expectation {
	return Expectation{
		subject:  "value of " + ref.String(),
		expected: want,
		check: func(ctx context.Context, in Inspector) (interface{}, bool, error) {
			got, err := in.Value(ctx, ref)
			return got, got == want, err
		},
	}
}

// ToHaveText expects the element's trimmed text to equal want.
func ToHaveText(ref Ref, want string) Expectation {
	return Expectation{
		subject:  "text of " + ref.String(),
		expected: want,
		check: func(ctx context.Context, in Inspector) (interface{}, bool, error) {
			got, err := in.Text(ctx, ref)
			got = strings.TrimSpace(got)
			return got, got == want, err
		},
	}
}

// ToContainText expects the element's text to contain want.
func ToContainText(ref Ref, want string) Expectation {
	return Expectation{
		subject:  "text of " + ref.String(),
		expected: "*" + want + "*",
		check: func(ctx context.Context, in Inspector) (interface{}, bool, error) {
			got, err := in.Text(ctx, ref)
			return got, strings.Contains(got, want), err
		},
	}
}

// ToBeChecked expects a checkbox or radio to be checked.
func ToBeChecked(ref Ref) Expectation {
	return checkedState(ref, true)
}

// ToBeUnchecked expects a checkbox or radio to be unchecked.
func ToBeUnchecked(ref Ref) Expectation {
	return checkedState(ref, false)
}

func checkedState(ref Ref, want bool) Expectation {
	return Expectation{
		subject:  "checked state of " + ref.String(),
		expected: want,
		check: func(ctx context.Context, in Inspector) (interface{}, bool, error) {
			got, err := in.IsChecked(ctx, ref)
			return got, got == want, err
		},
	}
}

// ToBeVisible expects the element to be rendered and visible.
func ToBeVisible(ref Ref) Expectation {
	return Expectation{
		subject:  "visibility of " + ref.String(),
		expected: true,
		check: func(ctx context.Context, in Inspector) (interface{}, bool, error) {
			got, err := in.IsVisible(ctx, ref)
			return got, got, err
		},
	}
}

// ToHaveTitle expects the document title to match re.
func ToHaveTitle(re *regexp.Regexp) Expectation {
	return Expectation{
		subject:  "page title",
		expected: "/" + re.String() + "/",
		check: func(ctx context.Context, in Inspector) (interface{}, bool, error) {
			got, err := in.Title(ctx)
			return got, re.MatchString(got), err
		},
	}
}

// ToHaveURLContaining expects the current URL to contain fragment.
func ToHaveURLContaining(fragment string) Expectation {
	return Expectation{
		subject:  "page url",
		expected: "*" + fragment + "*",
		check: func(ctx context.Context, in Inspector) (interface{}, bool, error) {
			got, err := in.URL(ctx)
			return got, strings.Contains(got, fragment), err
		},
	}
}

// ToSatisfy builds an expectation from an arbitrary read and predicate.
//
//	helpers.ToSatisfy("slider value", "> 25", func(ctx context.Context, in helpers.Inspector) (interface{}, bool, error) {
//	    v, err := in.Value(ctx, helpers.ID("slideMe"))
//	    n, _ := strconv.Atoi(v)
//	    return n, n > 25, err
//	})
func ToSatisfy(subject string, expected interface{}, check func(ctx context.Context, in Inspector) (interface{}, bool, error)) Expectation {
	return Expectation{subject: subject, expected: expected, check: check}
}

// String renders the expectation for logs.
func (e Expectation) String() string {
	return fmt.Sprintf("%s to be %v", e.subject, e.expected)
}
