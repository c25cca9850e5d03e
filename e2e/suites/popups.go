package suites

import (
	"github.com/gti/practice-automation-e2e/e2e/helpers"
)

// PopupsPath is the popups page.
const PopupsPath = "/popups/"

// Popup messages and the page text they lead to.
const (
	AlertMessage   = "Hi there, pal!"
	ConfirmMessage = "OK or Cancel, which will it be?"
	PromptMessage  = "Hi there, what's your name?"

	ConfirmOKText     = "OK it is!"
	ConfirmCancelText = "Cancel it is!"
	PromptRefusedText = "Fine, be that way..."
)

// PromptGreeting is the page text after answering the prompt with name.
func PromptGreeting(name string) string {
	return "Nice to meet you, " + name + "!"
}

func confirmScenario(name string, res helpers.Resolution, want string) Scenario {
	return Scenario{
		Name: name,
		Path: PopupsPath,
		Steps: []Step{clickExpectingDialog(helpers.ExactRole("button", "Confirm Popup"), helpers.DialogExpectation{
			Kind:       helpers.DialogConfirm,
			Message:    ConfirmMessage,
			Resolution: res,
		})},
		Checks: []Check{expect("confirm result", helpers.ToHaveText(helpers.ID("confirmResult"), want))},
	}
}

func promptScenario(name string, res helpers.Resolution, want string) Scenario {
	return Scenario{
		Name: name,
		Path: PopupsPath,
		Steps: []Step{clickExpectingDialog(helpers.ExactRole("button", "Prompt Popup"), helpers.DialogExpectation{
			Kind:       helpers.DialogPrompt,
			Message:    PromptMessage,
			Resolution: res,
		})},
		Checks: []Check{expect("prompt result", helpers.ToHaveText(helpers.ID("promptResult"), want))},
	}
}

// Popups builds the popups suite.
func Popups() []Scenario {
	tooltip := helpers.ID("myTooltip")
	return []Scenario{
		{
			Name: "alert popup",
			Path: PopupsPath,
			Steps: []Step{clickExpectingDialog(helpers.ExactRole("button", "Alert Popup"), helpers.DialogExpectation{
				Kind:       helpers.DialogAlert,
				Message:    AlertMessage,
				Resolution: helpers.Accept(),
			})},
		},
		confirmScenario("confirm popup OK", helpers.Accept(), ConfirmOKText),
		confirmScenario("confirm popup cancel", helpers.Dismiss(), ConfirmCancelText),
		promptScenario("prompt popup with input", helpers.AcceptWith("Test"), PromptGreeting("Test")),
		promptScenario("prompt popup without input", helpers.Accept(), PromptRefusedText),
		promptScenario("prompt popup cancel", helpers.Dismiss(), PromptRefusedText),
		{
			Name:  "tooltip",
			Path:  PopupsPath,
			Steps: []Step{click(helpers.CSS(".tooltip_1"))},
			Checks: []Check{
				expect("tooltip visible", helpers.ToBeVisible(tooltip)),
				expect("tooltip text", helpers.ToHaveText(tooltip, "Cool text")),
			},
		},
	}
}
