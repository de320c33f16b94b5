package output

import (
	"context"

	"behat-locator/internal/domain/dom"
	"behat-locator/internal/domain/entity"
)

// PagePort captures the current rendered document. Every call reads the
// page again; trees are never reused between queries.
type PagePort interface {
	Snapshot(ctx context.Context) (*dom.Tree, error)
}

// SurfacePort drives a captured element in the live page.
type SurfacePort interface {
	BoundingRect(ctx context.Context, h dom.Handle) (entity.Rect, error)
	ScrollIntoView(ctx context.Context, h dom.Handle) error
	AnimationFrame(ctx context.Context) error
	DispatchMouse(ctx context.Context, h dom.Handle, ev entity.MouseEvent) error
	Click(ctx context.Context, h dom.Handle) error
}

type BrowserPort interface {
	PagePort
	SurfacePort

	Navigate(ctx context.Context, url string) error
	Screenshot(ctx context.Context) (*entity.Screenshot, error)

	CurrentURL() string
	Close()
}
