package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"behat-locator/internal/di"
	"behat-locator/internal/domain/entity"
	"behat-locator/internal/infrastructure/env"
	scenariofile "behat-locator/internal/infrastructure/scenario"

	"github.com/spf13/cobra"
)

func newFindCommand(cfg env.Config, gf *globalFlags) *cobra.Command {
	lf := &locatorFlags{}
	cmd := &cobra.Command{
		Use:   "find",
		Short: "List the elements a locator matches, best match first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContainer(ctx, cfg, gf, "find")
			if err != nil {
				return err
			}
			defer c.Close()

			elements, err := c.Behat.FindElements(ctx, lf.locator(), entity.ParseContainerName(lf.container))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(elements)
		},
	}
	addLocatorFlags(cmd.Flags(), lf)
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newPressCommand(cfg env.Config, gf *globalFlags) *cobra.Command {
	lf := &locatorFlags{}
	cmd := &cobra.Command{
		Use:   "press",
		Short: "Press the best match of a locator",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContainer(ctx, cfg, gf, "press")
			if err != nil {
				return err
			}
			defer c.Close()

			loc := lf.locator()
			if err := c.Behat.Press(ctx, loc, entity.ParseContainerName(lf.container)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pressed %s\n", loc)
			return nil
		},
	}
	addLocatorFlags(cmd.Flags(), lf)
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newRunCommand(cfg env.Config, gf *globalFlags) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run the steps of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenariofile.Load(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			c, err := openContainer(ctx, cfg, gf, sc.Name, func(dc *di.Config) {
				if !quiet {
					dc.Input = cmd.InOrStdin()
					dc.Output = cmd.ErrOrStderr()
				}
			})
			if err != nil {
				return err
			}
			defer c.Close()

			result, err := c.Scenario.Run(ctx, sc)
			if err != nil {
				return err
			}

			if quiet {
				out := cmd.OutOrStdout()
				for _, st := range result.Steps {
					status := "ok"
					detail := st.Output
					if st.Error != "" {
						status, detail = "FAIL", st.Error
					}
					fmt.Fprintf(out, "%2d %-10s %-4s %s (%s)\n", st.Index, st.Action, status, detail, st.Duration.Round(time.Millisecond))
				}
			}
			if result.Failed {
				return fmt.Errorf("scenario %q failed", sc.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print a plain summary at the end instead of live progress; pause steps are unavailable")
	return cmd
}

func newServeCommand(cfg env.Config, gf *globalFlags) *cobra.Command {
	addr := cfg.HTTPAddr
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the locator and the busy signal over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContainer(ctx, cfg, gf, "serve")
			if err != nil {
				return err
			}
			defer c.Close()

			return c.HTTP.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", addr, "listen address")
	return cmd
}

func newDumpCommand(cfg env.Config, gf *globalFlags) *cobra.Command {
	var (
		container string
		outPath   string
	)
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Save a container of the page as HTML that --file can load",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openContainer(ctx, cfg, gf, "dump")
			if err != nil {
				return err
			}
			defer c.Close()

			out, err := c.Behat.Dump(ctx, entity.ParseContainerName(container))
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
				return err
			}
			return os.WriteFile(outPath, []byte(out), 0644)
		},
	}
	cmd.Flags().StringVar(&container, "container", "html", "container to save")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to this file instead of stdout")
	return cmd
}
