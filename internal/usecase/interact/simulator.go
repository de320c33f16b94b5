// Package interact simulates a user pressing an element once its position
// has settled.
package interact

import (
	"context"
	"fmt"
	"time"

	"behat-locator/internal/application/port/output"
	"behat-locator/internal/domain/dom"
	"behat-locator/internal/domain/entity"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// DefaultSettleDelay is how long animations are given to finish. It is a
// fixed guess, not a completion signal.
const DefaultSettleDelay = 300 * time.Millisecond

// Events do not cross shadow boundaries, so presses on the inner element
// of these wrappers go to the wrapper.
var pressWrapper = cascadia.MustCompile("ion-button, ion-back-button")

type Simulator struct {
	surface output.SurfacePort
	busy    output.BusyTracker
	logger  output.LoggerPort
	delay   time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

type Option func(*Simulator)

func WithSettleDelay(d time.Duration) Option {
	return func(s *Simulator) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithSleep replaces the timer used for every fixed wait.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Simulator) {
		s.sleep = sleep
	}
}

func NewSimulator(surface output.SurfacePort, busy output.BusyTracker, logger output.LoggerPort, opts ...Option) *Simulator {
	s := &Simulator{
		surface: surface,
		busy:    busy,
		logger:  logger,
		delay:   DefaultSettleDelay,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Press scrolls n into view, waits for it to stop moving and sends
// mousedown, then mouseup and click after the settle delay.
func (s *Simulator) Press(ctx context.Context, tree *dom.Tree, n *html.Node) error {
	guard := s.busy.Delay("press")
	defer guard.Release()

	h, ok := tree.Handle(n)
	if !ok {
		return fmt.Errorf("%w: <%s>", entity.ErrUnknownHandle, n.Data)
	}

	rect, err := s.ensureVisible(ctx, h)
	if err != nil {
		return fmt.Errorf("ensure visible: %w", err)
	}

	if p := tree.Parent(n); p != nil && pressWrapper.Match(p) {
		if ph, ok := tree.Handle(p); ok {
			h = ph
		}
	}

	x, y := rect.Center()
	if err := s.surface.DispatchMouse(ctx, h, entity.MouseEvent{Type: entity.MouseDown, ClientX: x, ClientY: y}); err != nil {
		return fmt.Errorf("mousedown: %w", err)
	}

	if err := s.wait(ctx, "press release"); err != nil {
		return err
	}

	if err := s.surface.DispatchMouse(ctx, h, entity.MouseEvent{Type: entity.MouseUp, ClientX: x, ClientY: y}); err != nil {
		return fmt.Errorf("mouseup: %w", err)
	}
	if err := s.surface.Click(ctx, h); err != nil {
		return fmt.Errorf("click: %w", err)
	}

	s.logger.Debug("pressed", "handle", int(h), "tag", n.Data, "x", x, "y", y)
	return nil
}

// ensureVisible scrolls until the element keeps its vertical position
// across one animation frame. There is no retry ceiling: an element that
// never stops moving blocks until ctx is done.
func (s *Simulator) ensureVisible(ctx context.Context, h dom.Handle) (entity.Rect, error) {
	for {
		initial, err := s.surface.BoundingRect(ctx, h)
		if err != nil {
			return entity.Rect{}, err
		}
		if err := s.surface.ScrollIntoView(ctx, h); err != nil {
			return entity.Rect{}, err
		}
		if err := s.frame(ctx); err != nil {
			return entity.Rect{}, err
		}
		rect, err := s.surface.BoundingRect(ctx, h)
		if err != nil {
			return entity.Rect{}, err
		}
		if rect.Y == initial.Y {
			return rect, nil
		}

		s.logger.Debug("element moved, waiting", "handle", int(h), "from", initial.Y, "to", rect.Y)
		if err := s.wait(ctx, "settle"); err != nil {
			return entity.Rect{}, err
		}
	}
}

func (s *Simulator) frame(ctx context.Context) error {
	guard := s.busy.Delay("animation frame")
	defer guard.Release()
	return s.surface.AnimationFrame(ctx)
}

func (s *Simulator) wait(ctx context.Context, reason string) error {
	guard := s.busy.Delay(reason)
	defer guard.Release()
	return s.sleep(ctx, s.delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
