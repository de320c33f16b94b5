// Package behat is the entry point behat steps use: every call captures
// the page afresh, resolves the locator and acts on the result.
package behat

import (
	"context"
	"fmt"
	"strings"

	"behat-locator/internal/application/port/input"
	"behat-locator/internal/application/port/output"
	"behat-locator/internal/domain/dom"
	"behat-locator/internal/domain/entity"
	"behat-locator/internal/infrastructure/dom/htmlsnapshot"
	"behat-locator/internal/usecase/interact"
	"behat-locator/internal/usecase/locate"

	"golang.org/x/net/html"
)

var _ input.Behat = (*Service)(nil)

const maxInfoText = 200

type Service struct {
	page      output.PagePort
	resolver  *locate.Resolver
	simulator *interact.Simulator
	busy      output.BusyTracker
	logger    output.LoggerPort
}

func NewService(
	page output.PagePort,
	resolver *locate.Resolver,
	simulator *interact.Simulator,
	busy output.BusyTracker,
	logger output.LoggerPort,
) *Service {
	return &Service{
		page:      page,
		resolver:  resolver,
		simulator: simulator,
		busy:      busy,
		logger:    logger,
	}
}

func (s *Service) FindElements(ctx context.Context, loc *entity.Locator, container entity.ContainerName) ([]entity.ElementInfo, error) {
	tree, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	nodes, err := s.resolver.Find(tree, loc, container)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", entity.ErrNoMatch, loc, container)
	}

	infos := make([]entity.ElementInfo, 0, len(nodes))
	for _, n := range nodes {
		infos = append(infos, describe(tree, n))
	}

	s.logger.Info("found elements", "locator", loc.String(), "container", container.String(), "count", len(infos))
	return infos, nil
}

func (s *Service) Press(ctx context.Context, loc *entity.Locator, container entity.ContainerName) error {
	tree, node, err := s.first(ctx, loc, container)
	if err != nil {
		return err
	}

	s.logger.Info("pressing", "locator", loc.String(), "container", container.String(), "tag", node.Data)
	return s.simulator.Press(ctx, tree, node)
}

// StartPress resolves the element now and presses it in the background.
// The tracker stays busy until the press completes; the channel receives
// its result.
func (s *Service) StartPress(ctx context.Context, loc *entity.Locator, container entity.ContainerName) (<-chan error, error) {
	tree, node, err := s.first(ctx, loc, container)
	if err != nil {
		return nil, err
	}

	guard := s.busy.Delay("start press")
	done := make(chan error, 1)
	go func() {
		err := s.simulator.Press(context.WithoutCancel(ctx), tree, node)
		guard.Release()
		if err != nil {
			s.logger.Error("press failed", "locator", loc.String(), "error", err)
		}
		done <- err
	}()
	return done, nil
}

func (s *Service) IsSelected(ctx context.Context, loc *entity.Locator, container entity.ContainerName) (bool, error) {
	tree, node, err := s.first(ctx, loc, container)
	if err != nil {
		return false, err
	}
	return locate.IsSelected(tree, node, s.resolver.TopContainer(tree, container)), nil
}

// Dump renders the named container of the current page as static HTML that
// can be loaded again as a snapshot file.
func (s *Service) Dump(ctx context.Context, container entity.ContainerName) (string, error) {
	tree, err := s.snapshot(ctx)
	if err != nil {
		return "", err
	}
	top := s.resolver.TopContainer(tree, container)
	if top == nil {
		return "", fmt.Errorf("%w: %s", entity.ErrNoContainer, container)
	}
	return htmlsnapshot.RenderString(tree, top, nil)
}

func (s *Service) first(ctx context.Context, loc *entity.Locator, container entity.ContainerName) (*dom.Tree, *html.Node, error) {
	tree, err := s.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	node, err := s.resolver.FindFirst(tree, loc, container)
	if err != nil {
		return nil, nil, err
	}
	return tree, node, nil
}

func (s *Service) snapshot(ctx context.Context) (*dom.Tree, error) {
	tree, err := s.page.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot failed: %w", err)
	}
	return tree, nil
}

func describe(tree *dom.Tree, n *html.Node) entity.ElementInfo {
	h, _ := tree.Handle(n)
	text := tree.InnerText(n)
	if text == "" {
		text, _ = dom.Attr(n, "aria-label")
	}
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > maxInfoText {
		text = string(r[:maxInfoText]) + "..."
	}
	return entity.ElementInfo{Handle: h, Tag: n.Data, Text: text}
}
