package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ratechart/pkg/cache"
	"github.com/matzehuels/ratechart/pkg/server"
)

// serveKeyPrefix scopes server artifacts apart from CLI ones in a shared
// cache.
const serveKeyPrefix = "serve:"

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags   renderFlags
		input   string
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve [years...]",
		Short: "Serve the chart panel over HTTP",
		Long: `Serve starts a small web server with the chart panel. Years given on the
command line or in --input are selected initially; more can be added in the
browser or through the JSON API under /api.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := loadSelection(input, args)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()
			runner.Keyer = cache.NewScopedKeyer(runner.Keyer, serveKeyPrefix)

			srv := server.New(runner, sel, c.options(flags), c.Logger)
			printSuccess("Serving on http://%s", addr)
			err = srv.ListenAndServe(cmd.Context(), addr)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "read initial points from a JSON or TOML file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	addRenderFlags(cmd, &flags)

	return cmd
}
