package suites

import (
	"time"

	"github.com/gti/practice-automation-e2e/e2e/helpers"
)

// JavaScriptDelaysPath is the countdown page.
const JavaScriptDelaysPath = "/javascript-delays/"

// LiftoffWait is how long the countdown result may take to appear.
const LiftoffWait = 15 * time.Second

// JavaScriptDelays builds the JavaScript delays suite.
func JavaScriptDelays() []Scenario {
	return []Scenario{{
		Name:  "text appears after JavaScript delay",
		Path:  JavaScriptDelaysPath,
		Steps: []Step{click(helpers.ExactRole("button", "Start"))},
		Checks: []Check{
			expect("liftoff", helpers.ToHaveValue(helpers.ID("delay"), "Liftoff!").Within(LiftoffWait)),
		},
	}}
}
