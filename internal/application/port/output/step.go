package output

import (
	"context"

	"behat-locator/internal/domain/entity"
)

type StepPort interface {
	Action() entity.StepAction
	Description() string
	Execute(ctx context.Context, step entity.Step) (string, error)
}

type StepRegistry interface {
	Register(step StepPort)
	Get(action entity.StepAction) (StepPort, bool)
	All() []StepPort
}
