package input

import (
	"context"

	"behat-locator/internal/domain/entity"
)

// Behat is what behat steps call: find elements by locator, press them and
// read their selected state.
type Behat interface {
	FindElements(ctx context.Context, loc *entity.Locator, container entity.ContainerName) ([]entity.ElementInfo, error)
	Press(ctx context.Context, loc *entity.Locator, container entity.ContainerName) error
	StartPress(ctx context.Context, loc *entity.Locator, container entity.ContainerName) (<-chan error, error)
	IsSelected(ctx context.Context, loc *entity.Locator, container entity.ContainerName) (bool, error)
	Dump(ctx context.Context, container entity.ContainerName) (string, error)
}
