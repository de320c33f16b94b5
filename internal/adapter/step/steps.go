// Package step holds the actions a scenario file can use.
package step

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"behat-locator/internal/application/port/input"
	"behat-locator/internal/application/port/output"
	"behat-locator/internal/domain/entity"
)

type Navigator interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL() string
}

type Screenshotter interface {
	Screenshot(ctx context.Context) (*entity.Screenshot, error)
}

var ErrExpectation = errors.New("expectation failed")

type NavigateStep struct {
	browser Navigator
	logger  output.LoggerPort
}

func NewNavigateStep(browser Navigator, logger output.LoggerPort) *NavigateStep {
	return &NavigateStep{browser: browser, logger: logger}
}

func (s *NavigateStep) Action() entity.StepAction { return entity.StepNavigate }
func (s *NavigateStep) Description() string       { return "Opens a URL in the browser" }

func (s *NavigateStep) Execute(ctx context.Context, st entity.Step) (string, error) {
	if st.URL == "" {
		return "", fmt.Errorf("%s: url is required", s.Action())
	}
	s.logger.Info("navigating", "url", st.URL)
	if err := s.browser.Navigate(ctx, st.URL); err != nil {
		return "", err
	}
	current := s.browser.CurrentURL()
	s.logger.Debug("loaded", "url", current)
	return fmt.Sprintf("Navigated to %s", current), nil
}

type FindStep struct {
	behat  input.Behat
	logger output.LoggerPort
}

func NewFindStep(behat input.Behat, logger output.LoggerPort) *FindStep {
	return &FindStep{behat: behat, logger: logger}
}

func (s *FindStep) Action() entity.StepAction { return entity.StepFind }
func (s *FindStep) Description() string       { return "Finds elements by text; expect is the wanted count" }

func (s *FindStep) Execute(ctx context.Context, st entity.Step) (string, error) {
	want := -1
	if st.Expect != "" {
		n, err := strconv.Atoi(st.Expect)
		if err != nil {
			return "", fmt.Errorf("%s: expect must be a count: %w", s.Action(), err)
		}
		want = n
	}

	elements, err := s.behat.FindElements(ctx, st.Locator, entity.ParseContainerName(st.Container))
	if err != nil {
		if want == 0 && errors.Is(err, entity.ErrNoMatch) {
			return "Found 0 elements", nil
		}
		return "", err
	}

	s.logger.Debug("found elements", "locator", st.Locator.String(), "count", len(elements))
	if want >= 0 && len(elements) != want {
		return "", fmt.Errorf("%w: found %d elements for %s, want %d", ErrExpectation, len(elements), st.Locator, want)
	}
	return fmt.Sprintf("Found %d elements, first <%s> %q", len(elements), elements[0].Tag, elements[0].Text), nil
}

type PressStep struct {
	behat  input.Behat
	logger output.LoggerPort
}

func NewPressStep(behat input.Behat, logger output.LoggerPort) *PressStep {
	return &PressStep{behat: behat, logger: logger}
}

func (s *PressStep) Action() entity.StepAction { return entity.StepPress }
func (s *PressStep) Description() string       { return "Presses the element found by text" }

func (s *PressStep) Execute(ctx context.Context, st entity.Step) (string, error) {
	s.logger.Info("pressing", "locator", st.Locator.String(), "container", st.Container)
	if err := s.behat.Press(ctx, st.Locator, entity.ParseContainerName(st.Container)); err != nil {
		return "", err
	}
	return fmt.Sprintf("Pressed %s", st.Locator), nil
}

type SelectedStep struct {
	behat  input.Behat
	logger output.LoggerPort
}

func NewSelectedStep(behat input.Behat, logger output.LoggerPort) *SelectedStep {
	return &SelectedStep{behat: behat, logger: logger}
}

func (s *SelectedStep) Action() entity.StepAction { return entity.StepSelected }
func (s *SelectedStep) Description() string {
	return "Checks whether the element found by text is selected; expect is true or false"
}

func (s *SelectedStep) Execute(ctx context.Context, st entity.Step) (string, error) {
	selected, err := s.behat.IsSelected(ctx, st.Locator, entity.ParseContainerName(st.Container))
	if err != nil {
		return "", err
	}
	s.logger.Debug("selected state", "locator", st.Locator.String(), "selected", selected)
	if st.Expect != "" {
		want, err := strconv.ParseBool(st.Expect)
		if err != nil {
			return "", fmt.Errorf("%s: expect must be true or false: %w", s.Action(), err)
		}
		if selected != want {
			return "", fmt.Errorf("%w: %s selected=%t, want %t", ErrExpectation, st.Locator, selected, want)
		}
	}
	return fmt.Sprintf("Selected: %t", selected), nil
}

type WaitIdleStep struct {
	busy   output.BusyTracker
	logger output.LoggerPort
}

func NewWaitIdleStep(busy output.BusyTracker, logger output.LoggerPort) *WaitIdleStep {
	return &WaitIdleStep{busy: busy, logger: logger}
}

func (s *WaitIdleStep) Action() entity.StepAction { return entity.StepWaitIdle }
func (s *WaitIdleStep) Description() string       { return "Waits until no interaction is pending" }

func (s *WaitIdleStep) Execute(ctx context.Context, _ entity.Step) (string, error) {
	s.logger.Debug("waiting for idle", "pending", s.busy.Pending())
	if err := s.busy.WaitIdle(ctx); err != nil {
		return "", err
	}
	return "Idle", nil
}

type ScreenshotStep struct {
	browser Screenshotter
	logger  output.LoggerPort
}

func NewScreenshotStep(browser Screenshotter, logger output.LoggerPort) *ScreenshotStep {
	return &ScreenshotStep{browser: browser, logger: logger}
}

func (s *ScreenshotStep) Action() entity.StepAction { return entity.StepScreenshot }
func (s *ScreenshotStep) Description() string       { return "Saves a screenshot of the page to path" }

func (s *ScreenshotStep) Execute(ctx context.Context, st entity.Step) (string, error) {
	if st.Path == "" {
		return "", fmt.Errorf("%s: path is required", s.Action())
	}
	shot, err := s.browser.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(st.Path, shot.Data, 0644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	s.logger.Info("screenshot saved", "path", st.Path, "bytes", len(shot.Data))
	return fmt.Sprintf("Saved %dx%d %s to %s", shot.Width, shot.Height, shot.Format, st.Path), nil
}

type DumpStep struct {
	behat  input.Behat
	logger output.LoggerPort
}

func NewDumpStep(behat input.Behat, logger output.LoggerPort) *DumpStep {
	return &DumpStep{behat: behat, logger: logger}
}

func (s *DumpStep) Action() entity.StepAction { return entity.StepDump }
func (s *DumpStep) Description() string {
	return "Saves the container as static HTML to path, loadable again with --file"
}

func (s *DumpStep) Execute(ctx context.Context, st entity.Step) (string, error) {
	if st.Path == "" {
		return "", fmt.Errorf("%s: path is required", s.Action())
	}
	out, err := s.behat.Dump(ctx, entity.ParseContainerName(st.Container))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(st.Path, []byte(out), 0644); err != nil {
		return "", fmt.Errorf("write dump: %w", err)
	}
	s.logger.Info("dump saved", "path", st.Path, "container", st.Container, "bytes", len(out))
	return fmt.Sprintf("Saved %d bytes to %s", len(out), st.Path), nil
}

type PauseStep struct {
	user   output.UserInteractionPort
	logger output.LoggerPort
}

func NewPauseStep(user output.UserInteractionPort, logger output.LoggerPort) *PauseStep {
	return &PauseStep{user: user, logger: logger}
}

func (s *PauseStep) Action() entity.StepAction { return entity.StepPause }
func (s *PauseStep) Description() string {
	return "Waits for the operator to press Enter, showing message"
}

func (s *PauseStep) Execute(ctx context.Context, st entity.Step) (string, error) {
	message := st.Message
	if message == "" {
		message = "Scenario paused"
	}
	s.logger.Info("paused", "message", message)
	if err := s.user.WaitForUserAction(ctx, message); err != nil {
		return "", err
	}
	s.logger.Info("resumed")
	return "Resumed", nil
}
