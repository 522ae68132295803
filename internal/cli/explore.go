package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ratechart/pkg/chart"
	"github.com/matzehuels/ratechart/pkg/dataset"
	"github.com/matzehuels/ratechart/pkg/errors"
	"github.com/matzehuels/ratechart/pkg/export"
	"github.com/matzehuels/ratechart/pkg/pipeline"
)

// Explorer styles
var (
	exploreHoverStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	exploreDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	exploreErrStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

// exploreCommand creates the interactive explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		flags   renderFlags
		input   string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "explore [years...]",
		Short: "Build a selection interactively and export it",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := loadSelection(input, args)
			if err != nil {
				return err
			}
			if output == "" {
				output = c.Config.OutputDir
			}
			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.options(flags)
			theme, err := pipeline.LoadTheme(opts)
			if err != nil {
				return err
			}
			panel := chart.NewPanel(sel, theme)
			panel.OnHover(func(year int, ok bool) {
				c.Logger.Debug("hover", "year", year, "ok", ok)
			})

			exportFn := func(ctx context.Context, points []dataset.Point, active int) (string, error) {
				var path string
				o := opts
				o.Active = active
				em := export.FileEmitter{Dir: output, Path: func(p string) { path = p }}
				res, err := runner.Export(ctx, points, em, o)
				if err != nil {
					return "", err
				}
				if res.Skipped {
					return "", nil
				}
				return path, nil
			}

			m := newExploreModel(cmd.Context(), panel, exportFn)
			if _, err := tea.NewProgram(m, tea.WithContext(cmd.Context())).Run(); err != nil && cmd.Context().Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "read initial points from a JSON or TOML file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	addRenderFlags(cmd, &flags)

	return cmd
}

// =============================================================================
// exploreModel - Interactive selection
// =============================================================================

// exportFunc exports points with the marker of active highlighted and
// returns the written path, or "" when nothing was exported.
type exportFunc func(ctx context.Context, points []dataset.Point, active int) (string, error)

// exportDoneMsg reports a finished export.
type exportDoneMsg struct {
	path string
	err  error
}

// exploreModel is the bubbletea model for the explorer. The panel is
// shared by pointer, so value copies of the model see the same selection.
type exploreModel struct {
	ctx       context.Context
	panel     *chart.Panel
	export    exportFunc
	input     string
	status    string
	err       error
	exporting bool
}

func newExploreModel(ctx context.Context, panel *chart.Panel, fn exportFunc) exploreModel {
	return exploreModel{ctx: ctx, panel: panel, export: fn}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case exportDoneMsg:
		m.exporting = false
		switch {
		case msg.err != nil:
			m.status, m.err = "", msg.err
		case msg.path == "":
			m.status, m.err = "Nothing to export", nil
		default:
			m.status, m.err = "Exported "+msg.path, nil
		}
	}
	return m, nil
}

func (m exploreModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := m.panel.Selection()
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		m.add()
	case "backspace":
		if m.input != "" {
			m.input = m.input[:len(m.input)-1]
		}
	case "ctrl+d":
		sel.Clear()
		m.panel.Hover(0)
		m.status, m.err = "Cleared", nil
	case "ctrl+x", "delete":
		if year, ok := m.panel.Hovered(); ok {
			sel.Remove(year)
			m.panel.Hover(0)
			m.status, m.err = fmt.Sprintf("Removed %d", year), nil
		}
	case "left":
		m.moveHover(-1)
	case "right":
		m.moveHover(1)
	case "ctrl+s":
		if m.exporting {
			return m, nil
		}
		m.exporting = true
		m.status, m.err = "Exporting...", nil
		points := sel.Points()
		active, _ := m.panel.Hovered()
		ctx, fn := m.ctx, m.export
		return m, func() tea.Msg {
			path, err := fn(ctx, points, active)
			return exportDoneMsg{path: path, err: err}
		}
	default:
		if s := msg.String(); len(s) == 1 && s[0] >= '0' && s[0] <= '9' && len(m.input) < 4 {
			m.input += s
		}
	}
	return m, nil
}

// add commits the typed year to the selection.
func (m *exploreModel) add() {
	if m.input == "" {
		return
	}
	year, err := strconv.Atoi(m.input)
	m.input = ""
	if err != nil {
		m.err = err
		return
	}
	if _, err := m.panel.Selection().Add(year); err != nil {
		m.status, m.err = "", err
		return
	}
	m.status, m.err = fmt.Sprintf("Added %d", year), nil
}

// moveHover steps the hover highlight through the selected years in
// chronological order. Stepping past either end leaves the chart.
func (m *exploreModel) moveHover(step int) {
	years := selectedYears(m.panel)
	if len(years) == 0 {
		return
	}
	cur, ok := m.panel.Hovered()
	i := slices.Index(years, cur)
	switch {
	case !ok && step > 0:
		i = 0
	case !ok:
		i = len(years) - 1
	default:
		i += step
	}
	if i < 0 || i >= len(years) {
		m.panel.Hover(0)
		return
	}
	m.panel.Hover(years[i])
}

func selectedYears(p *chart.Panel) []int {
	pts := dataset.Sorted(p.Points())
	years := make([]int, len(pts))
	for i, pt := range pts {
		years[i] = pt.Year
	}
	return years
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(chart.Title))
	b.WriteString("\n")
	b.WriteString(exploreDimStyle.Render("type a year ⏎ add  ←/→ hover  ctrl+x remove  ctrl+d clear  ctrl+s export  esc quit"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %s", styleIconSpinner.Render(iconInfo), m.input))
	b.WriteString(exploreDimStyle.Render(fmt.Sprintf("  (%d-%d)", dataset.MinYear, dataset.MaxYear)))
	b.WriteString("\n\n")

	points := dataset.Sorted(m.panel.Points())
	if len(points) == 0 {
		b.WriteString(exploreDimStyle.Render(chart.EmptyMessage))
		b.WriteString("\n")
	} else {
		b.WriteString(m.pointsTable(points))
		b.WriteString("\n")
	}

	if year, ok := m.panel.Hovered(); ok {
		if tip, ok := m.panel.Tooltip(year); ok {
			b.WriteString(exploreHoverStyle.Render(tip.Title) + " " + StyleValue.Render(tip.Value))
			b.WriteString("\n")
		}
	}

	switch {
	case m.err != nil:
		b.WriteString(exploreErrStyle.Render(iconError + " " + errors.UserMessage(m.err)))
	case m.status != "":
		b.WriteString(StyleSuccess.Render(m.status))
	}
	b.WriteString("\n")

	return b.String()
}

func (m exploreModel) pointsTable(points []dataset.Point) string {
	hovered, _ := m.panel.Hovered()
	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = []string{fmt.Sprintf("%d", p.Year), fmt.Sprintf("%.2f", p.Rate)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Year", "Rate").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < len(points) && points[row].Year == hovered {
				return exploreHoverStyle
			}
			return StyleValue
		}).
		String()
}
