package config

import (
	_ "embed"
	"fmt"

	"github.com/rpgo/household-planner/internal/domain"
)

//go:embed example_plan.yaml
var examplePlanYAML []byte

// ExamplePlan decodes and validates the bundled sample household
func ExamplePlan() (*domain.Plan, error) {
	plan, err := NewPlanLoader().Decode(examplePlanYAML)
	if err != nil {
		return nil, err
	}
	if err := Validate(plan).Err(); err != nil {
		return nil, fmt.Errorf("example plan: %w", err)
	}
	return plan, nil
}
