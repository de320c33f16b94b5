package output

import (
	"context"

	"behat-locator/internal/domain/entity"
)

type UserInteractionPort interface {
	WaitForUserAction(ctx context.Context, message string) error

	ShowScenario(ctx context.Context, name string, steps int)
	ShowStepStart(ctx context.Context, index int, step entity.Step)
	ShowStepResult(ctx context.Context, result entity.StepResult)
}
