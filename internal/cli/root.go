package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/ratechart/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The --config flag is read before any subcommand runs; the loaded config
// and the CLI logger are then available to every command. The logger is
// also attached to the command context (see loggerFromContext).
func (c *CLI) RootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           appName,
		Short:         "Ratechart exports Korean fertility-rate charts as PNG",
		Long:          `Ratechart draws the total fertility rate of selected years as a line chart and exports it as a 1600x1200 PNG, from the command line, a terminal explorer or a small web server.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.LoadConfig(configPath); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/ratechart/config.toml)")

	// Register all subcommands
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.yearsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
