package service

import (
	"sort"

	"behat-locator/internal/application/port/output"
	"behat-locator/internal/domain/entity"
)

var _ output.StepRegistry = (*StepRegistryImpl)(nil)

type StepRegistryImpl struct {
	steps map[entity.StepAction]output.StepPort
}

func NewStepRegistry() *StepRegistryImpl {
	return &StepRegistryImpl{
		steps: make(map[entity.StepAction]output.StepPort),
	}
}

func (r *StepRegistryImpl) Register(step output.StepPort) {
	r.steps[step.Action()] = step
}

func (r *StepRegistryImpl) Get(action entity.StepAction) (output.StepPort, bool) {
	step, ok := r.steps[action]
	return step, ok
}

// All returns the registered steps ordered by action name.
func (r *StepRegistryImpl) All() []output.StepPort {
	result := make([]output.StepPort, 0, len(r.steps))
	for _, step := range r.steps {
		result = append(result, step)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Action() < result[j].Action()
	})
	return result
}
