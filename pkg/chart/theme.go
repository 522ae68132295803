package chart

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ratechart/pkg/errors"
	"github.com/matzehuels/ratechart/pkg/scene"
)

// Theme names.
const (
	ThemeCard    = "card"
	ThemeElegant = "elegant"
)

// Palette holds HSL triplets ("221 83% 53%") published as CSS custom
// properties on :root.
type Palette struct {
	Background      string `toml:"background"`
	Foreground      string `toml:"foreground"`
	Card            string `toml:"card"`
	CardForeground  string `toml:"card_foreground"`
	Primary         string `toml:"primary"`
	MutedForeground string `toml:"muted_foreground"`
	Border          string `toml:"border"`
}

// Margins around the plot, in logical pixels.
type Margins struct {
	Top    float64 `toml:"top"`
	Right  float64 `toml:"right"`
	Bottom float64 `toml:"bottom"`
	Left   float64 `toml:"left"`
}

// PanelStyle is the decoration of the hosting panel. It never affects the
// chart scene itself.
type PanelStyle struct {
	Padding string  `toml:"padding"`
	Radius  string  `toml:"radius"`
	Shadow  string  `toml:"shadow"`
	Opacity float64 `toml:"opacity"`
}

// Theme parameterises the chart and its panel.
type Theme struct {
	Name              string     `toml:"name"`
	Palette           Palette    `toml:"palette"`
	Margin            Margins    `toml:"margin"`
	FontFamily        string     `toml:"font_family"`
	TickFontSize      float64    `toml:"tick_font_size"`
	LabelFontSize     float64    `toml:"label_font_size"`
	LineWidth         float64    `toml:"line_width"`
	MarkerRadius      float64    `toml:"marker_radius"`
	MarkerStrokeWidth float64    `toml:"marker_stroke_width"`
	ActiveRadius      float64    `toml:"active_radius"`
	GridOpacity       float64    `toml:"grid_opacity"`
	Panel             PanelStyle `toml:"panel"`
}

var lightPalette = Palette{
	Background:      "0 0% 100%",
	Foreground:      "222 47% 11%",
	Card:            "0 0% 100%",
	CardForeground:  "222 47% 11%",
	Primary:         "221 83% 53%",
	MutedForeground: "215 16% 47%",
	Border:          "214 32% 91%",
}

// Card is the compact panel variant.
func Card() Theme {
	return Theme{
		Name:              ThemeCard,
		Palette:           lightPalette,
		Margin:            Margins{Top: 20, Right: 20, Bottom: 40, Left: 20},
		FontFamily:        "Arial, sans-serif",
		TickFontSize:      12,
		LabelFontSize:     14,
		LineWidth:         3,
		MarkerRadius:      5,
		MarkerStrokeWidth: 2,
		ActiveRadius:      7,
		GridOpacity:       0.3,
		Panel: PanelStyle{
			Padding: "1rem",
			Radius:  "0.75rem",
			Shadow:  "0 1px 3px rgba(0, 0, 0, 0.1)",
			Opacity: 0.8,
		},
	}
}

// Elegant is the roomier panel variant with a soft coloured shadow.
func Elegant() Theme {
	t := Card()
	t.Name = ThemeElegant
	t.Panel = PanelStyle{
		Padding: "1.5rem",
		Radius:  "1rem",
		Shadow:  "0 10px 30px -10px hsl(221 83% 53% / 0.3)",
		Opacity: 0.8,
	}
	return t
}

// ThemeNames lists the built-in presets.
func ThemeNames() []string { return []string{ThemeCard, ThemeElegant} }

// ThemeByName returns a built-in preset.
func ThemeByName(name string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ThemeCard:
		return Card(), nil
	case ThemeElegant:
		return Elegant(), nil
	}
	return Theme{}, errors.New(errors.ErrCodeInvalidTheme,
		"unknown theme %q (valid: %s)", name, strings.Join(ThemeNames(), ", "))
}

// LoadTheme reads a TOML theme file. Keys that are absent keep the value of
// the preset named by the file's name key (card when empty).
func LoadTheme(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, errors.Wrap(errors.ErrCodeInvalidTheme, err, "read theme %s", path)
	}
	var head struct {
		Name string `toml:"name"`
	}
	if _, err := toml.Decode(string(data), &head); err != nil {
		return Theme{}, errors.Wrap(errors.ErrCodeInvalidTheme, err, "parse theme %s", path)
	}
	t, err := ThemeByName(head.Name)
	if err != nil {
		return Theme{}, err
	}
	if _, err := toml.Decode(string(data), &t); err != nil {
		return Theme{}, errors.Wrap(errors.ErrCodeInvalidTheme, err, "parse theme %s", path)
	}
	if err := t.Validate(); err != nil {
		return Theme{}, err
	}
	return t, nil
}

// Validate checks sizes and palette entries.
func (t Theme) Validate() error {
	for name, v := range map[string]float64{
		"tick_font_size":  t.TickFontSize,
		"label_font_size": t.LabelFontSize,
		"line_width":      t.LineWidth,
		"marker_radius":   t.MarkerRadius,
	} {
		if v <= 0 {
			return errors.New(errors.ErrCodeInvalidTheme, "%s must be positive", name)
		}
	}
	if t.GridOpacity < 0 || t.GridOpacity > 1 {
		return errors.New(errors.ErrCodeInvalidTheme, "grid_opacity must be within [0, 1]")
	}
	if t.Margin.Top < 0 || t.Margin.Right < 0 || t.Margin.Bottom < 0 || t.Margin.Left < 0 {
		return errors.New(errors.ErrCodeInvalidTheme, "margins must not be negative")
	}
	for name, v := range t.customProperties() {
		if _, err := scene.ParseColor("hsl(" + v + ")"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidTheme, err, "palette %s", name)
		}
	}
	return nil
}

func (t Theme) customProperties() map[string]string {
	p := t.Palette
	return map[string]string{
		"--background":       p.Background,
		"--foreground":       p.Foreground,
		"--card":             p.Card,
		"--card-foreground":  p.CardForeground,
		"--primary":          p.Primary,
		"--muted-foreground": p.MutedForeground,
		"--border":           p.Border,
	}
}

// CSS returns the document stylesheet for charts drawn with t.
func (t Theme) CSS() string {
	p := t.Palette
	return fmt.Sprintf(`:root {
  --background: %s;
  --foreground: %s;
  --card: %s;
  --card-foreground: %s;
  --primary: %s;
  --muted-foreground: %s;
  --border: %s;
}
.recharts-surface { color: hsl(var(--foreground)); font-family: %s; }
.recharts-cartesian-grid { opacity: %s; }
.recharts-cartesian-grid line { stroke: hsl(var(--border)); stroke-dasharray: 3 3; fill: none; }
.recharts-cartesian-axis-line, .recharts-cartesian-axis-tick-line { stroke: hsl(var(--border)); stroke-width: 1; fill: none; }
.recharts-cartesian-axis-tick-value { fill: hsl(var(--muted-foreground)); }
.recharts-line-curve { fill: none; stroke: hsl(var(--primary)); stroke-width: %s; stroke-linejoin: round; stroke-linecap: round; }
.recharts-line-dot { fill: hsl(var(--primary)); stroke: hsl(var(--primary)); stroke-width: %s; }
.recharts-line-dot.recharts-active-dot { stroke: hsl(var(--background)); stroke-width: 3; }
.recharts-line-dot:hover { cursor: pointer; }
`,
		p.Background, p.Foreground, p.Card, p.CardForeground, p.Primary, p.MutedForeground, p.Border,
		t.FontFamily, num(t.GridOpacity), num(t.LineWidth), num(t.MarkerStrokeWidth))
}
