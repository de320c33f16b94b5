package di

import (
	"context"
	"errors"
	"fmt"
	"io"

	"behat-locator/internal/adapter/httpapi"
	"behat-locator/internal/adapter/step"
	"behat-locator/internal/application/port/output"
	"behat-locator/internal/application/service"
	"behat-locator/internal/domain/dom"
	"behat-locator/internal/domain/entity"
	"behat-locator/internal/infrastructure/browser/rod"
	"behat-locator/internal/infrastructure/dom/htmlsnapshot"
	"behat-locator/internal/infrastructure/env"
	"behat-locator/internal/infrastructure/logger"
	"behat-locator/internal/infrastructure/userinteraction"
	"behat-locator/internal/usecase/behat"
	"behat-locator/internal/usecase/interact"
	"behat-locator/internal/usecase/locate"
	"behat-locator/internal/usecase/scenario"
)

// ErrStaticPage is returned when an interaction is requested on a page
// loaded from a file.
var ErrStaticPage = errors.New("interactions need a live browser")

type Container struct {
	Browser  *rod.BrowserAdapter
	Page     output.PagePort
	Logger   output.LoggerPort
	Busy     *service.Blocking
	Behat    *behat.Service
	Steps    *service.StepRegistryImpl
	Scenario *scenario.Runner
	HTTP     *httpapi.Server
	Console  *userinteraction.Console
}

type Config struct {
	env.Config
	// SnapshotFile switches to offline mode: the page is read from this
	// HTML file instead of a browser.
	SnapshotFile string
	TaskName     string
	// Output enables the console: scenario progress is printed there and
	// pause steps read Enter from Input.
	Output io.Writer
	Input  io.Reader
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c := &Container{Logger: log}
	if cfg.Output != nil {
		in := cfg.Input
		if in == nil {
			in = eofReader{}
		}
		c.Console = userinteraction.NewConsole(in, cfg.Output)
	}

	var surface output.SurfacePort
	if cfg.SnapshotFile != "" {
		c.Page = htmlsnapshot.NewFileSource(cfg.SnapshotFile)
		surface = staticSurface{}
	} else {
		browserCfg := rod.DefaultConfig()
		browserCfg.Headless = cfg.Headless
		browserCfg.NoSandbox = cfg.NoSandbox
		browserCfg.SlowMotion = cfg.SlowMotion
		browserCfg.Timeout = cfg.Timeout

		browser, err := rod.NewBrowserAdapter(ctx, browserCfg, log.Named("browser"))
		if err != nil {
			log.Close()
			return nil, fmt.Errorf("failed to create browser: %w", err)
		}
		c.Browser = browser
		c.Page = browser
		surface = browser
	}

	c.Busy = service.NewBlocking(log.Named("busy"))
	resolver := locate.New(log.Named("locate"), locate.WithMaxDepth(cfg.MaxDepth))
	simulator := interact.NewSimulator(surface, c.Busy, log.Named("interact"), interact.WithSettleDelay(cfg.SettleDelay))
	c.Behat = behat.NewService(c.Page, resolver, simulator, c.Busy, log)

	c.Steps = service.NewStepRegistry()
	registerSteps(c.Steps, c, log)

	var opts []scenario.Option
	var nav httpapi.Navigator
	if c.Browser != nil {
		opts = append(opts, scenario.WithFailureScreenshots(c.Browser, cfg.ScreenshotDir))
		nav = c.Browser
	}
	if c.Console != nil {
		opts = append(opts, scenario.WithReporter(c.Console))
	}
	c.Scenario = scenario.NewRunner(c.Steps, log.Named("scenario"), opts...)
	c.HTTP = httpapi.NewServer(c.Behat, c.Busy, nav, log.Named("http"))

	return c, nil
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}

func registerSteps(registry *service.StepRegistryImpl, c *Container, log output.LoggerPort) {
	registry.Register(step.NewFindStep(c.Behat, log))
	registry.Register(step.NewPressStep(c.Behat, log))
	registry.Register(step.NewSelectedStep(c.Behat, log))
	registry.Register(step.NewWaitIdleStep(c.Busy, log))
	registry.Register(step.NewDumpStep(c.Behat, log))
	if c.Console != nil {
		registry.Register(step.NewPauseStep(c.Console, log))
	}
	if c.Browser != nil {
		registry.Register(step.NewNavigateStep(c.Browser, log))
		registry.Register(step.NewScreenshotStep(c.Browser, log))
	}
}

func newLogger(cfg Config) (*logger.LoggerAdapter, error) {
	level := cfg.LogLevel
	if level == "" {
		level = "info"
	}
	if cfg.LogToFile {
		return logger.NewLoggerAdapter(cfg.TaskName, level)
	}
	return logger.NewConsoleLogger(level)
}

// staticSurface refuses every interaction.
type staticSurface struct{}

func (staticSurface) BoundingRect(context.Context, dom.Handle) (entity.Rect, error) {
	return entity.Rect{}, ErrStaticPage
}

func (staticSurface) ScrollIntoView(context.Context, dom.Handle) error { return ErrStaticPage }
func (staticSurface) AnimationFrame(context.Context) error             { return ErrStaticPage }

func (staticSurface) DispatchMouse(context.Context, dom.Handle, entity.MouseEvent) error {
	return ErrStaticPage
}

func (staticSurface) Click(context.Context, dom.Handle) error { return ErrStaticPage }

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
