package suites

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gti/practice-automation-e2e/e2e/helpers"
	"gopkg.in/yaml.v3"
)

//go:embed testdata/homepage.yaml
var homepageYAML []byte

// Homepage is the expected homepage content.
type Homepage struct {
	TitlePattern string   `yaml:"title_pattern" validate:"required"`
	Buttons      []string `yaml:"buttons" validate:"required,min=1,unique,dive,required"`
}

var validate = validator.New()

// ParseHomepage decodes and validates homepage test data.
func ParseHomepage(data []byte) (Homepage, error) {
	var h Homepage
	if err := yaml.Unmarshal(data, &h); err != nil {
		return Homepage{}, fmt.Errorf("failed to decode homepage data: %w", err)
	}
	if err := validate.Struct(h); err != nil {
		return Homepage{}, fmt.Errorf("invalid homepage data: %w", err)
	}
	if _, err := regexp.Compile(h.TitlePattern); err != nil {
		return Homepage{}, fmt.Errorf("invalid title pattern: %w", err)
	}
	return h, nil
}

// LoadHomepage returns the embedded homepage test data.
func LoadHomepage() (Homepage, error) {
	return ParseHomepage(homepageYAML)
}

// NavigationFragment is the URL fragment a homepage button leads to.
// Sliders and Carousels drop their plural "s"; other labels swap the first
// space for a dash.
func NavigationFragment(label string) string {
	if label == "Sliders" || label == "Carousels" {
		return strings.ToLower(strings.TrimSuffix(label, "s"))
	}
	return strings.ToLower(strings.Replace(label, " ", "-", 1))
}

// Home builds the homepage suite from the embedded test data.
func Home() ([]Scenario, error) {
	data, err := LoadHomepage()
	if err != nil {
		return nil, err
	}
	return HomeFrom(data), nil
}

// HomeFrom builds the homepage suite from data.
func HomeFrom(data Homepage) []Scenario {
	buttons := helpers.CSS(".wp-block-buttons")
	scenarios := []Scenario{
		{
			Name: "title contains expected text",
			Path: "/",
			Checks: []Check{
				expect("title", helpers.ToHaveTitle(regexp.MustCompile(data.TitlePattern))),
			},
		},
		{
			Name: "expected button links appear",
			Path: "/",
			Checks: []Check{{
				Name: "every button is an expected label",
				Verify: func(ctx context.Context, p *helpers.Page) error {
					return helpers.ToSatisfy(buttons.String()+" inner texts", data.Buttons,
						func(ctx context.Context, _ helpers.Inspector) (interface{}, bool, error) {
							texts, err := p.InnerTexts(ctx, buttons)
							if err != nil {
								return nil, false, err
							}
							return texts, len(unexpectedLabels(texts, data.Buttons)) == 0, nil
						}).Verify(ctx, p)
				},
			}},
		},
	}

	for _, label := range data.Buttons {
		scenarios = append(scenarios, Scenario{
			Name:   fmt.Sprintf("navigation for %s button", label),
			Path:   "/",
			Steps:  []Step{click(helpers.ExactRole("link", label))},
			Checks: []Check{expect("url", helpers.ToHaveURLContaining(NavigationFragment(label)))},
		})
	}
	return scenarios
}

// unexpectedLabels returns the texts that are not in expected.
func unexpectedLabels(texts, expected []string) []string {
	known := make(map[string]struct{}, len(expected))
	for _, e := range expected {
		known[e] = struct{}{}
	}
	var out []string
	for _, t := range texts {
		if _, ok := known[strings.TrimSpace(t)]; !ok {
			out = append(out, t)
		}
	}
	return out
}
