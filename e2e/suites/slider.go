package suites

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gti/practice-automation-e2e/e2e/helpers"
)

// SliderPath is the range slider page.
const SliderPath = "/slider/"

var (
	sliderInput = helpers.ID("slideMe")
	sliderValue = helpers.ID("value")
)

// ReadSliderValue reads the slider percentage mirrored into #value.
func ReadSliderValue(ctx context.Context, in helpers.Inspector) (int, error) {
	text, err := in.Text(ctx, sliderValue)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("failed to parse slider value %q: %w", text, err)
	}
	return n, nil
}

// sliderScenario drags from the current value to target and checks the new
// value moved the way cmp expects.
func sliderScenario(name string, target float64, relation string, cmp func(got, initial int) bool) Scenario {
	var initial int
	return Scenario{
		Name: name,
		Path: SliderPath,
		Steps: []Step{
			{
				Name: "read initial value",
				Do: func(ctx context.Context, p *helpers.Page) (err error) {
					initial, err = ReadSliderValue(ctx, p)
					return err
				},
			},
			{
				Name: fmt.Sprintf("drag to %.0f%%", target),
				Do: func(ctx context.Context, p *helpers.Page) error {
					return p.DragAlongAxis(ctx, sliderInput, float64(initial), target)
				},
			},
		},
		Checks: []Check{{
			Name: "value " + relation + " initial",
			Verify: func(ctx context.Context, p *helpers.Page) error {
				return helpers.ToSatisfy("slider value", fmt.Sprintf("%s %d", relation, initial),
					func(ctx context.Context, in helpers.Inspector) (interface{}, bool, error) {
						got, err := ReadSliderValue(ctx, in)
						return got, err == nil && cmp(got, initial), err
					}).Verify(ctx, p)
			},
		}},
	}
}

// Slider builds the slider suite.
func Slider() []Scenario {
	return []Scenario{
		sliderScenario("slider value can be increased", 80, ">", func(got, initial int) bool { return got > initial }),
		sliderScenario("slider value can be decreased", 10, "<", func(got, initial int) bool { return got < initial }),
	}
}
