//go:build e2e

// Package tests contains browser E2E tests for the practice automation
// widgets.
//
// These tests need a Chromium the launcher can find or download and are
// excluded from regular unit test runs. Run with: go test -tags=e2e ./e2e/...
package tests

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/gti/practice-automation-e2e/e2e/helpers"
	"github.com/gti/practice-automation-e2e/e2e/scenario"
	"github.com/gti/practice-automation-e2e/e2e/suites"
	"github.com/gti/practice-automation-e2e/e2e/testenv"
	"go.uber.org/zap"
)

// env is the shared test environment for all tests in this file.
var env *testenv.TestEnv

// TestMain sets up the E2E test environment before running tests.
//
// It spins up:
//   - The fixture site on a random local port (unless BASE_URL is set)
//   - A headless Chromium shared by all tests
//   - An ephemeral PostgreSQL results store when E2E_RESULTS_CONTAINER=true
//
// Tests are skipped if no browser can be started.
func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg := testenv.DefaultConfig()
	cfg.Logger = logger
	cfg.BaseURL = os.Getenv("BASE_URL")
	cfg.Site.LiftoffDelay = 3 * time.Second
	cfg.Site.Logger = logger
	cfg.ResultsContainer = os.Getenv("E2E_RESULTS_CONTAINER") == "true"

	// Setup test environment
	env, err = testenv.Setup(ctx, cfg)
	if err != nil {
		fmt.Printf("Failed to setup E2E environment: %v\n", err)
		os.Exit(1)
	}

	if _, err := env.Browser(); err != nil {
		fmt.Printf("SKIP: no browser available: %v\n", err)
		env.Teardown()
		os.Exit(0)
	}

	// Run tests
	code := m.Run()

	// Teardown
	env.Teardown()

	os.Exit(code)
}

// openPage opens a fresh page on path and closes it when the test ends.
func openPage(t *testing.T, ctx context.Context, path string) *helpers.Page {
	t.Helper()
	page, err := env.NewPage(ctx)
	if err != nil {
		t.Fatalf("failed to open page: %v", err)
	}
	t.Cleanup(func() { _ = page.Close() })

	if err := page.Navigate(ctx, path); err != nil {
		t.Fatalf("failed to navigate to %s: %v", path, err)
	}
	return page
}

// TestSuites runs every page suite through the scenario runner and expects
// all scenarios to pass.
func TestSuites(t *testing.T) {
	ctx := context.Background()
	runner := env.NewRunner()

	for _, suite := range suites.All() {
		t.Run(suite.Name, func(t *testing.T) {
			a := helpers.NewAssert(t)

			scenarios, err := suite.Build()
			if !a.NoError(err, "suite should build") {
				return
			}

			results := runner.Run(ctx, suite.Name, scenarios)
			for _, res := range results {
				if !res.Passed {
					t.Errorf("%s/%s failed: %v", res.Suite, res.Scenario, errors.Join(res.Failures...))
				}
			}

			if env.Results != nil {
				sum, err := env.Results.Summary(ctx, runner.RunID())
				a.NoError(err, "summary should load")
				a.Equal(0, sum.Failed, "stored results should have no failures")
			}
		})
	}
}

// TestDialogMismatchIsDismissed verifies that an unexpected message fails the
// expectation without leaving the page blocked.
func TestDialogMismatchIsDismissed(t *testing.T) {
	ctx := context.Background()
	a := helpers.NewAssert(t)
	page := openPage(t, ctx, suites.PopupsPath)

	button := helpers.ExactRole("button", "Alert Popup")
	clickAlert := func(ctx context.Context) error { return page.Click(ctx, button) }

	_, err := page.ExpectDialog(ctx, helpers.DialogExpectation{
		Kind:       helpers.DialogAlert,
		Message:    "Goodbye, pal!",
		Resolution: helpers.Accept(),
	}, clickAlert)
	a.AssertionFailed(err, "a mismatched message should fail")
	a.Idle(page.Dialogs(), "interceptor should return to idle")

	ev, err := page.ExpectDialog(ctx, helpers.DialogExpectation{
		Kind:       helpers.DialogAlert,
		Message:    suites.AlertMessage,
		Resolution: helpers.Accept(),
	}, clickAlert)
	if a.NoError(err, "page should still respond after the mismatch") {
		a.Equal(suites.AlertMessage, ev.Message)
	}
}

// TestDialogThatNeverOpensTimesOut verifies the bounded wait for a dialog.
func TestDialogThatNeverOpensTimesOut(t *testing.T) {
	ctx := context.Background()
	a := helpers.NewAssert(t)
	page := openPage(t, ctx, suites.PopupsPath).WithTimeout(time.Second)

	_, err := page.ExpectDialog(ctx, helpers.DialogExpectation{
		Kind:       helpers.DialogAlert,
		Message:    suites.AlertMessage,
		Resolution: helpers.Accept(),
	}, func(ctx context.Context) error {
		return page.Click(ctx, helpers.CSS(".tooltip_1"))
	})
	a.TimedOut(err, "no dialog should time out")
	a.Idle(page.Dialogs())
}

// TestLocatorErrors verifies not-found and ambiguous resolution.
func TestLocatorErrors(t *testing.T) {
	ctx := context.Background()
	a := helpers.NewAssert(t)
	page := openPage(t, ctx, "/").WithTimeout(500 * time.Millisecond)

	_, err := page.Resolve(ctx, helpers.ID("no-such-element"))
	a.NotFound(err)

	_, err = page.Resolve(ctx, helpers.CSS(".wp-block-buttons"))
	a.Ambiguous(err)

	texts, err := page.InnerTexts(ctx, helpers.CSS(".wp-block-buttons"))
	a.NoError(err)
	data, err := suites.LoadHomepage()
	a.NoError(err)
	a.ElementsMatch(data.Buttons, texts, "homepage buttons")
}

// TestFillRoundTrip verifies that filling a field replaces its value.
func TestFillRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := helpers.NewAssert(t)
	page := openPage(t, ctx, suites.FormFieldsPath)

	name := helpers.Label("Name")
	a.NoError(page.Fill(ctx, name, "first"))
	a.NoError(page.Fill(ctx, name, suites.TestName))
	a.Expect(ctx, page, helpers.ToHaveValue(helpers.ID("name"), suites.TestName))

	a.NoError(page.Check(ctx, helpers.ExactLabel("Milk")))
	a.NoError(page.Check(ctx, helpers.ExactLabel("Milk")), "checking twice is a no-op")
	a.Expect(ctx, page, helpers.ToBeChecked(helpers.ExactLabel("Milk")))
	a.NoError(page.Uncheck(ctx, helpers.ExactLabel("Milk")))
	a.Expect(ctx, page, helpers.ToBeUnchecked(helpers.ExactLabel("Milk")))
}

// TestSliderDrag verifies gesture bounds and both drag directions.
func TestSliderDrag(t *testing.T) {
	ctx := context.Background()
	a := helpers.NewAssert(t)
	page := openPage(t, ctx, suites.SliderPath)
	slider := helpers.ID("slideMe")

	err := page.DragAlongAxis(ctx, slider, 25, 120)
	a.Equal(true, errors.Is(err, helpers.ErrPercentOutOfRange), "percent above 100 is rejected")

	initial, err := suites.ReadSliderValue(ctx, page)
	a.NoError(err)

	a.NoError(page.DragAlongAxis(ctx, slider, float64(initial), 90))
	high, err := suites.ReadSliderValue(ctx, page)
	a.NoError(err)
	a.Equal(true, high > initial, "value should increase")

	a.NoError(page.DragAlongAxis(ctx, slider, float64(high), 5))
	low, err := suites.ReadSliderValue(ctx, page)
	a.NoError(err)
	a.Equal(true, low < high, "value should decrease")
}

// TestSoftAssertions verifies that soft mode reports every failed check of a
// scenario.
func TestSoftAssertions(t *testing.T) {
	ctx := context.Background()
	a := helpers.NewAssert(t)

	browser, err := env.Browser()
	if !a.NoError(err) {
		return
	}
	runner := scenario.NewRunner(func(ctx context.Context) (*helpers.Page, error) {
		page, err := browser.NewPage(ctx)
		if err != nil {
			return nil, err
		}
		return page.WithTimeout(500 * time.Millisecond), nil
	}, scenario.Options{SoftAssertions: true, Logger: zap.NewNop()})

	res := runner.RunOne(ctx, "popups", suites.Scenario{
		Name: "wrong texts",
		Path: suites.PopupsPath,
		Checks: []suites.Check{
			{Name: "confirm", Verify: func(ctx context.Context, p *helpers.Page) error {
				return helpers.ToHaveText(helpers.ID("confirmResult"), suites.ConfirmOKText).Verify(ctx, p)
			}},
			{Name: "prompt", Verify: func(ctx context.Context, p *helpers.Page) error {
				return helpers.ToHaveText(helpers.ID("promptResult"), suites.PromptRefusedText).Verify(ctx, p)
			}},
		},
	})

	a.Equal(false, res.Passed)
	a.Equal(2, len(res.Failures), "both checks should be reported")
	se, ok := res.Failure()
	if a.Equal(true, ok) {
		a.Equal(scenario.PhaseCheck, se.Phase)
		a.Equal("confirm", se.Name)
	}
	a.AssertionFailed(res.Err)
}
