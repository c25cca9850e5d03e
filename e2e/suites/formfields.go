package suites

import (
	"context"
	"fmt"

	"github.com/gti/practice-automation-e2e/e2e/helpers"
)

// FormFieldsPath is the form fields page.
const FormFieldsPath = "/form-fields/"

// Form input used by the form scenarios.
const (
	TestName    = "John Doe"
	TestEmail   = "john@example.com"
	TestMessage = "Hello, World!"
)

var (
	Drinks = []string{"Water", "Milk", "Coffee", "Wine", "Ctrl-Alt-Delight"}
	Colors = []string{"Red", "Blue", "Yellow", "Green", "#FFC0CB"}
)

func selectDrinks(drinks ...string) []Step {
	steps := make([]Step, len(drinks))
	for i, d := range drinks {
		ref := helpers.ExactLabel(d)
		steps[i] = Step{
			Name: fmt.Sprintf("check drink %s", d),
			Do: func(ctx context.Context, p *helpers.Page) error {
				return p.Check(ctx, ref)
			},
		}
	}
	return steps
}

func selectColor(color string) Step {
	ref := helpers.ExactLabel(color)
	return Step{
		Name: fmt.Sprintf("pick color %s", color),
		Do: func(ctx context.Context, p *helpers.Page) error {
			return p.Check(ctx, ref)
		},
	}
}

func selectSiblings(answer string) Step {
	return Step{
		Name: fmt.Sprintf("answer siblings %s", answer),
		Do: func(ctx context.Context, p *helpers.Page) error {
			return p.SelectOption(ctx, helpers.ID("siblings"), answer)
		},
	}
}

// FormFields builds the form fields suite.
func FormFields() []Scenario {
	var drinkChecks []Check
	for _, d := range Drinks[:3] {
		drinkChecks = append(drinkChecks, expect(d+" checked", helpers.ToBeChecked(helpers.Label(d))))
	}
	for _, d := range Drinks[3:] {
		drinkChecks = append(drinkChecks, expect(d+" unchecked", helpers.ToBeUnchecked(helpers.Label(d))))
	}

	colorChecks := []Check{expect("Red checked", helpers.ToBeChecked(helpers.ExactLabel("Red")))}
	for _, c := range Colors[1:] {
		colorChecks = append(colorChecks, expect(c+" unchecked", helpers.ToBeUnchecked(helpers.ExactLabel(c))))
	}

	submit := append([]Step{
		fill(helpers.ID("name"), TestName),
		fill(helpers.ID("email"), TestEmail),
		fill(helpers.ID("message"), TestMessage),
	}, selectDrinks(Drinks[:3]...)...)
	submit = append(submit,
		selectColor("Red"),
		selectSiblings("Yes"),
		clickExpectingDialog(helpers.ExactRole("button", "Submit"), helpers.DialogExpectation{
			Kind:       helpers.DialogAlert,
			Message:    "Message received!",
			Resolution: helpers.Accept(),
		}),
	)

	return []Scenario{
		{
			Name:   "fill name field",
			Path:   FormFieldsPath,
			Steps:  []Step{fill(helpers.ID("name"), TestName)},
			Checks: []Check{expect("name value", helpers.ToHaveValue(helpers.ID("name"), TestName))},
		},
		{
			Name:   "fill email field",
			Path:   FormFieldsPath,
			Steps:  []Step{fill(helpers.ID("email"), TestEmail)},
			Checks: []Check{expect("email value", helpers.ToHaveValue(helpers.ID("email"), TestEmail))},
		},
		{
			Name:   "fill message field",
			Path:   FormFieldsPath,
			Steps:  []Step{fill(helpers.ID("message"), TestMessage)},
			Checks: []Check{expect("message value", helpers.ToHaveValue(helpers.ID("message"), TestMessage))},
		},
		{
			Name:   "select favorite drinks",
			Path:   FormFieldsPath,
			Steps:  selectDrinks(Drinks[:3]...),
			Checks: drinkChecks,
		},
		{
			Name:   "select favorite color",
			Path:   FormFieldsPath,
			Steps:  []Step{selectColor("Red")},
			Checks: colorChecks,
		},
		{
			Name: "select siblings",
			Path: FormFieldsPath,
			Steps: []Step{
				selectSiblings("Yes"),
				verifyStep("siblings is yes", helpers.ToHaveValue(helpers.ID("siblings"), "yes")),
				selectSiblings("No"),
				verifyStep("siblings is no", helpers.ToHaveValue(helpers.ID("siblings"), "no")),
				selectSiblings("Maybe"),
			},
			Checks: []Check{expect("siblings is maybe", helpers.ToHaveValue(helpers.ID("siblings"), "maybe"))},
		},
		{
			Name:  "submit completed form",
			Path:  FormFieldsPath,
			Steps: submit,
		},
	}
}

// verifyStep asserts between actions, where a check would run too late.
func verifyStep(name string, exp helpers.Expectation) Step {
	return Step{
		Name: name,
		Do: func(ctx context.Context, p *helpers.Page) error {
			return exp.Verify(ctx, p)
		},
	}
}
