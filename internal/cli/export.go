package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ratechart/pkg/errors"
	"github.com/matzehuels/ratechart/pkg/export"
	"github.com/matzehuels/ratechart/pkg/pipeline"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	renderFlags
	input   string // data file (.json or .toml)
	output  string // output directory
	noCache bool   // bypass the artifact cache entirely
	refresh bool   // re-render even on a cache hit
	watch   bool   // re-export whenever input changes
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export [years...]",
		Short: "Export the chart of the selected years as PNG",
		Long: `Export renders the selected years as a 1600x1200 PNG named 출산율-그래프.png.

Years come from the built-in table and may be given as ranges:

  ratechart export 1970 1990-2000 2023

With --input, points are read from a JSON or TOML file first. With --watch,
the chart is exported again whenever that file changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.watch && opts.input == "" {
				return fmt.Errorf("--watch requires --input")
			}
			if opts.output == "" {
				opts.output = c.Config.OutputDir
			}
			if err := errors.ValidateOutputDir(opts.output); err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if err := c.runExport(cmd.Context(), runner, opts, args); err != nil && !opts.watch {
				return err
			}
			if !opts.watch {
				return nil
			}
			return c.watch(cmd.Context(), opts.input, func() {
				if err := c.runExport(cmd.Context(), runner, opts, args); err != nil {
					c.Logger.Error("export failed", "err", err)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "read points from a JSON or TOML file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default from config)")
	addRenderFlags(cmd, &opts.renderFlags)
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "render again even if cached")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "export again whenever --input changes")

	return cmd
}

// addRenderFlags registers the chart option flags.
func addRenderFlags(cmd *cobra.Command, f *renderFlags) {
	cmd.Flags().StringVar(&f.theme, "theme", "", "theme: card or elegant (default from config)")
	cmd.Flags().StringVar(&f.themeFile, "theme-file", "", "load the theme from a TOML file")
	cmd.Flags().StringVar(&f.backend, "backend", "", "raster backend: native or rsvg")
	cmd.Flags().StringVar(&f.font, "font", "", "TrueType/OpenType font for chart text")
	cmd.Flags().IntVar(&f.active, "active", 0, "highlight the marker of this year")
}

// runExport loads the selection and exports it once.
func (c *CLI) runExport(ctx context.Context, runner *pipeline.Runner, opts exportOpts, args []string) error {
	sel, err := loadSelection(opts.input, args)
	if err != nil {
		return err
	}
	if sel.Len() == 0 {
		printInfo("Nothing to export: add years or pass --input")
		return nil
	}
	run := newExportRun(loggerFromContext(ctx), sel.Len())

	popts := c.options(opts.renderFlags)
	popts.Refresh = opts.refresh

	var path string
	em := export.FileEmitter{Dir: opts.output, Path: func(p string) { path = p }}

	run.begin("render")
	spinner := newSpinnerWithContext(ctx, "Rendering chart...")
	spinner.Start()
	res, err := runner.Export(ctx, sel.Points(), em, popts)
	spinner.Stop()
	if err != nil {
		run.failed(err)
		printError("Export failed: %s", errors.UserMessage(err))
		return err
	}
	if res.Skipped {
		printInfo("Nothing to export")
		return nil
	}

	printSuccess("Exported chart")
	printFile(path)
	printStats(sel.Len(), len(res.Artifact.Data), res.CacheHit)
	run.done(res, path)
	return nil
}
