package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ratechart/pkg/pipeline"
)

// previewCommand creates the preview command, which writes the live chart
// as SVG without rasterising it.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		flags  renderFlags
		input  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "preview [years...]",
		Short: "Write the live chart as SVG",
		Long: `Preview writes the chart as it is shown on screen: an SVG with the theme
stylesheet embedded. Use it to inspect what an export will contain.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := loadSelection(input, args)
			if err != nil {
				return err
			}
			if sel.Len() == 0 {
				printInfo("Nothing to preview: add years or pass --input")
				return nil
			}

			var w io.Writer = os.Stdout
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := pipeline.Preview(w, sel.Points(), c.options(flags)); err != nil {
				return err
			}
			if w != os.Stdout {
				printSuccess("Wrote preview")
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "read points from a JSON or TOML file")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file (- for stdout)")
	addRenderFlags(cmd, &flags)

	return cmd
}
