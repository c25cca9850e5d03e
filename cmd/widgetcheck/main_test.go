package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/gti/practice-automation-e2e/e2e/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	found := map[string]bool{}
	for _, c := range newRootCmd().Commands() {
		found[c.Name()] = true
	}
	assert.True(t, found["run"])
	assert.True(t, found["list"])
}

func TestListPrintsSuites(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"list"})
	require.NoError(t, root.Execute())

	var entries []suiteEntry
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &entries))
	require.Len(t, entries, 5)

	byName := map[string]suiteEntry{}
	for _, e := range entries {
		byName[e.Suite] = e
	}
	assert.Equal(t, "/popups/", byName["popups"].Path)
	assert.Contains(t, byName["popups"].Scenarios, "prompt popup cancel")
	assert.Len(t, byName["slider"].Scenarios, 2)
}

func TestRunRejectsUnknownSuite(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"run", "--suite", "carousel"})

	err := root.Execute()
	assert.ErrorContains(t, err, `unknown suite "carousel"`)
}

func TestPrintResults(t *testing.T) {
	var out bytes.Buffer
	failure := &scenario.StepError{Phase: scenario.PhaseCheck, Index: 0, Name: "confirm result", Err: errors.New("got \"\"")}

	sum := printResults(&out, []scenario.Result{
		{Suite: "popups", Scenario: "alert popup", Passed: true, Duration: 812 * time.Millisecond},
		{Suite: "popups", Scenario: "confirm popup OK", Err: failure, Failures: []error{failure}, Duration: time.Second},
	})

	assert.Equal(t, scenario.Summary{Total: 2, Passed: 1, Failed: 1}, sum)
	text := out.String()
	assert.Contains(t, text, "PASS  popups/alert popup (812ms)")
	assert.Contains(t, text, "FAIL  popups/confirm popup OK (1s)")
	assert.Contains(t, text, "check 1 (confirm result)")
	assert.Contains(t, text, "2 scenarios, 1 passed, 1 failed (0 timed out)")
}
