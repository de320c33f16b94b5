// Package scenario runs scenario files step by step, stopping at the first
// failure.
package scenario

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"behat-locator/internal/application/port/input"
	"behat-locator/internal/application/port/output"
	"behat-locator/internal/domain/entity"

	"github.com/google/uuid"
)

var _ input.ScenarioRunner = (*Runner)(nil)

type Screenshotter interface {
	Screenshot(ctx context.Context) (*entity.Screenshot, error)
}

type Runner struct {
	steps  output.StepRegistry
	logger output.LoggerPort

	shooter       Screenshotter
	screenshotDir string

	reporter output.UserInteractionPort
}

type Option func(*Runner)

// WithFailureScreenshots saves a page screenshot into dir when a step
// fails.
func WithFailureScreenshots(shooter Screenshotter, dir string) Option {
	return func(r *Runner) {
		r.shooter = shooter
		r.screenshotDir = dir
	}
}

// WithReporter shows each step and its result as the run progresses.
func WithReporter(reporter output.UserInteractionPort) Option {
	return func(r *Runner) {
		r.reporter = reporter
	}
}

func NewRunner(steps output.StepRegistry, logger output.LoggerPort, opts ...Option) *Runner {
	r := &Runner{steps: steps, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every step in order. A failing step marks the result as
// failed and ends the run; the returned error is reserved for a cancelled
// context.
func (r *Runner) Run(ctx context.Context, sc *entity.Scenario) (*entity.ScenarioResult, error) {
	result := &entity.ScenarioResult{
		RunID: uuid.NewString(),
		Name:  sc.Name,
	}
	log := r.logger.WithFields(map[string]any{"run_id": result.RunID, "scenario": sc.Name})
	log.Info("scenario started", "steps", len(sc.Steps))
	if r.reporter != nil {
		r.reporter.ShowScenario(ctx, sc.Name, len(sc.Steps))
	}

	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if r.reporter != nil {
			r.reporter.ShowStepStart(ctx, i, st)
		}
		start := time.Now()
		out, err := r.execute(ctx, st)
		sr := entity.StepResult{
			Index:    i,
			Action:   st.Action,
			Output:   out,
			Duration: time.Since(start),
		}

		if err != nil {
			sr.Error = err.Error()
			r.report(ctx, sr)
			result.Steps = append(result.Steps, sr)
			result.Failed = true
			log.Error("step failed", "index", i, "action", st.Action.String(), "error", err)
			r.captureFailure(ctx, result.RunID, i, log)
			return result, nil
		}

		r.report(ctx, sr)
		result.Steps = append(result.Steps, sr)
		log.Debug("step completed", "index", i, "action", st.Action.String(), "output", out)
	}

	log.Info("scenario passed")
	return result, nil
}

func (r *Runner) report(ctx context.Context, sr entity.StepResult) {
	if r.reporter != nil {
		r.reporter.ShowStepResult(ctx, sr)
	}
}

func (r *Runner) execute(ctx context.Context, st entity.Step) (string, error) {
	step, ok := r.steps.Get(st.Action)
	if !ok {
		return "", fmt.Errorf("unknown action %q", st.Action)
	}
	return step.Execute(ctx, st)
}

func (r *Runner) captureFailure(ctx context.Context, runID string, index int, log output.LoggerPort) {
	if r.shooter == nil || r.screenshotDir == "" {
		return
	}

	shot, err := r.shooter.Screenshot(ctx)
	if err != nil {
		log.Warn("failure screenshot", "error", err)
		return
	}
	if err := os.MkdirAll(r.screenshotDir, 0755); err != nil {
		log.Warn("failure screenshot", "error", err)
		return
	}

	path := filepath.Join(r.screenshotDir, fmt.Sprintf("%s_step%02d.%s", runID, index, shot.Format))
	if err := os.WriteFile(path, shot.Data, 0644); err != nil {
		log.Warn("failure screenshot", "error", err)
		return
	}
	log.Info("failure screenshot saved", "path", path)
}
