// Package suites defines the browser scenarios for each page of the
// practice automation site.
//
// Every suite builder returns fresh scenarios on each call. Scenarios that
// carry a reading from a step to a check (the slider) keep it in variables
// scoped to that call, so run a built suite once and build it again for the
// next run.
package suites

import (
	"context"
	"fmt"
	"sort"

	"github.com/gti/practice-automation-e2e/e2e/helpers"
	"github.com/gti/practice-automation-e2e/e2e/scenario"
)

type (
	Scenario = scenario.Scenario[*helpers.Page]
	Step     = scenario.Step[*helpers.Page]
	Check    = scenario.Check[*helpers.Page]
)

// Suite is a named group of scenarios for one page.
type Suite struct {
	Name  string
	Path  string
	Build func() ([]Scenario, error)
}

// All returns every suite ordered by name.
func All() []Suite {
	suites := []Suite{
		{Name: "home", Path: "/", Build: Home},
		{Name: "form-fields", Path: FormFieldsPath, Build: wrap(FormFields)},
		{Name: "popups", Path: PopupsPath, Build: wrap(Popups)},
		{Name: "slider", Path: SliderPath, Build: wrap(Slider)},
		{Name: "javascript-delays", Path: JavaScriptDelaysPath, Build: wrap(JavaScriptDelays)},
	}
	sort.Slice(suites, func(i, j int) bool { return suites[i].Name < suites[j].Name })
	return suites
}

// Lookup finds a suite by name.
func Lookup(name string) (Suite, bool) {
	for _, s := range All() {
		if s.Name == name {
			return s, true
		}
	}
	return Suite{}, false
}

// Select returns the named suites, or all of them when names is empty.
func Select(names []string) ([]Suite, error) {
	if len(names) == 0 {
		return All(), nil
	}
	out := make([]Suite, 0, len(names))
	for _, n := range names {
		s, ok := Lookup(n)
		if !ok {
			return nil, fmt.Errorf("unknown suite %q", n)
		}
		out = append(out, s)
	}
	return out, nil
}

func wrap(build func() []Scenario) func() ([]Scenario, error) {
	return func() ([]Scenario, error) { return build(), nil }
}

// expect turns a page expectation into a named check.
func expect(name string, exp helpers.Expectation) Check {
	return Check{
		Name: name,
		Verify: func(ctx context.Context, p *helpers.Page) error {
			return exp.Verify(ctx, p)
		},
	}
}

func fill(ref helpers.Ref, text string) Step {
	return Step{
		Name: fmt.Sprintf("fill %s", ref),
		Do: func(ctx context.Context, p *helpers.Page) error {
			return p.Fill(ctx, ref, text)
		},
	}
}

func click(ref helpers.Ref) Step {
	return Step{
		Name: fmt.Sprintf("click %s", ref),
		Do: func(ctx context.Context, p *helpers.Page) error {
			return p.Click(ctx, ref)
		},
	}
}

// clickExpectingDialog clicks ref with exp armed and fails unless the
// dialog matches.
func clickExpectingDialog(ref helpers.Ref, exp helpers.DialogExpectation) Step {
	return Step{
		Name: fmt.Sprintf("click %s and %s %s", ref, exp.Resolution, exp.Kind),
		Do: func(ctx context.Context, p *helpers.Page) error {
			_, err := p.ExpectDialog(ctx, exp, func(ctx context.Context) error {
				return p.Click(ctx, ref)
			})
			return err
		},
	}
}
