package input

import (
	"context"

	"behat-locator/internal/domain/entity"
)

type ScenarioRunner interface {
	Run(ctx context.Context, sc *entity.Scenario) (*entity.ScenarioResult, error)
}
