package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ratechart/pkg/dataset"
)

// barWidth is the width of the rate bar at the table's largest rate.
const barWidth = 30

// yearsCommand creates the years command listing the built-in table.
func (c *CLI) yearsCommand() *cobra.Command {
	var from, to int

	cmd := &cobra.Command{
		Use:   "years",
		Short: "List the built-in fertility-rate table",
		RunE: func(cmd *cobra.Command, args []string) error {
			var points []dataset.Point
			for _, p := range dataset.All() {
				if p.Year >= from && p.Year <= to {
					points = append(points, p)
				}
			}
			if len(points) == 0 {
				printInfo("No years between %d and %d", from, to)
				return nil
			}
			fmt.Println(yearsTable(points))
			return nil
		},
	}

	cmd.Flags().IntVar(&from, "from", dataset.MinYear, "first year to list")
	cmd.Flags().IntVar(&to, "to", dataset.MaxYear, "last year to list")

	return cmd
}

// yearsTable renders points with a proportional bar per rate.
func yearsTable(points []dataset.Point) string {
	top := dataset.MaxRate(points)
	rows := make([][]string, len(points))
	for i, p := range points {
		n := 0
		if top > 0 {
			n = int(p.Rate / top * barWidth)
		}
		rows[i] = []string{
			fmt.Sprintf("%d", p.Year),
			fmt.Sprintf("%.2f", p.Rate),
			strings.Repeat("█", n),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Year", "Rate", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 2:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col == 1:
				return StyleValue
			default:
				return StyleDim
			}
		}).
		String()
}
