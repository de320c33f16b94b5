package main

import (
	"context"
	"fmt"

	"behat-locator/internal/di"
	"behat-locator/internal/domain/entity"
	"behat-locator/internal/infrastructure/env"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type globalFlags struct {
	url       string
	file      string
	headless  bool
	logLevel  string
	logToFile bool
}

type locatorFlags struct {
	text      string
	selector  string
	within    string
	near      string
	container string
}

func newRootCommand() *cobra.Command {
	cfg := env.LoadConfig(env.NewEnvService())
	gf := &globalFlags{headless: cfg.Headless, logLevel: cfg.LogLevel, logToFile: cfg.LogToFile}

	root := &cobra.Command{
		Use:           "locator",
		Short:         "Find and press app elements by their visible text",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&gf.url, "url", "", "page to open before running the command")
	pf.StringVar(&gf.file, "file", "", "read the page from an HTML file instead of a browser")
	pf.BoolVar(&gf.headless, "headless", gf.headless, "run the browser without a window")
	pf.StringVar(&gf.logLevel, "log-level", gf.logLevel, "debug, info, warn or error")
	pf.BoolVar(&gf.logToFile, "log-file", gf.logToFile, "write logs to ./log instead of stderr")

	root.AddCommand(
		newFindCommand(cfg, gf),
		newPressCommand(cfg, gf),
		newRunCommand(cfg, gf),
		newServeCommand(cfg, gf),
		newDumpCommand(cfg, gf),
	)
	return root
}

func addLocatorFlags(fs *pflag.FlagSet, lf *locatorFlags) {
	fs.StringVar(&lf.text, "text", "", "visible text or ARIA label to look for")
	fs.StringVar(&lf.selector, "selector", "", "CSS selector the match must be inside of")
	fs.StringVar(&lf.within, "within", "", "text of the element to search within")
	fs.StringVar(&lf.near, "near", "", "text of the element to search next to")
	fs.StringVar(&lf.container, "container", "", "page, modal, popover, alert, toast, action-sheet, user-tour, html or split-view content")
}

func (lf *locatorFlags) locator() *entity.Locator {
	loc := &entity.Locator{Text: lf.text, Selector: lf.selector}
	if lf.within != "" {
		loc.Within = &entity.Locator{Text: lf.within}
	}
	if lf.near != "" {
		loc.Near = &entity.Locator{Text: lf.near}
	}
	return loc
}

// openContainer wires the app and opens --url when given.
func openContainer(ctx context.Context, cfg env.Config, gf *globalFlags, task string, opts ...func(*di.Config)) (*di.Container, error) {
	cfg.Headless = gf.headless
	cfg.LogLevel = gf.logLevel
	cfg.LogToFile = gf.logToFile

	dc := di.Config{Config: cfg, SnapshotFile: gf.file, TaskName: task}
	for _, opt := range opts {
		opt(&dc)
	}
	c, err := di.NewContainer(ctx, dc)
	if err != nil {
		return nil, err
	}

	if gf.url != "" {
		if c.Browser == nil {
			c.Close()
			return nil, fmt.Errorf("--url cannot be combined with --file")
		}
		if err := c.Browser.Navigate(ctx, gf.url); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}
