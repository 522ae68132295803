package pipeline

import (
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ratechart/pkg/cache"
	"github.com/matzehuels/ratechart/pkg/chart"
	"github.com/matzehuels/ratechart/pkg/dataset"
	"github.com/matzehuels/ratechart/pkg/errors"
	"github.com/matzehuels/ratechart/pkg/export"
	"github.com/matzehuels/ratechart/pkg/fonts"
	"github.com/matzehuels/ratechart/pkg/raster"
)

// LoadTheme returns the theme selected by opts: the theme file when set,
// otherwise the named preset.
func LoadTheme(opts Options) (chart.Theme, error) {
	if opts.ThemeFile != "" {
		return chart.LoadTheme(opts.ThemeFile)
	}
	return chart.ThemeByName(opts.Theme)
}

// NewDecoder returns the raster backend selected by opts, along with a
// hash of the custom font file (empty when none is used).
func NewDecoder(opts Options, logger *log.Logger) (raster.Decoder, string, error) {
	switch opts.Backend {
	case BackendRsvg:
		if !raster.RsvgAvailable() {
			return nil, "", errors.New(errors.ErrCodeUnsupported,
				"rsvg backend requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin")
		}
		return raster.Rsvg{Density: export.Scale}, "", nil
	case BackendNative, "":
		var (
			set      *fonts.Set
			fontHash string
		)
		if opts.FontFile != "" {
			data, err := os.ReadFile(opts.FontFile)
			if err != nil {
				return nil, "", errors.Wrap(errors.ErrCodeInvalidPath, err, "read font file")
			}
			if set, err = fonts.Load(opts.FontFile); err != nil {
				return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "load font file")
			}
			fontHash = cache.Hash(data)
		}
		dec, err := raster.NewNative(set, logger)
		if err != nil {
			return nil, "", err
		}
		return dec, fontHash, nil
	default:
		return nil, "", ValidateBackend(opts.Backend)
	}
}

// NewPanel builds a panel showing points with the theme of opts.
func NewPanel(points []dataset.Point, opts Options) (*chart.Panel, error) {
	theme, err := LoadTheme(opts)
	if err != nil {
		return nil, err
	}
	sel, err := dataset.NewSelection(points...)
	if err != nil {
		return nil, err
	}
	p := chart.NewPanel(sel, theme)
	if opts.Active != 0 {
		p.Hover(opts.Active)
	}
	return p, nil
}

// Preview writes the live chart as a standalone SVG with its stylesheet
// embedded. Nothing is written for an empty point set.
func Preview(w io.Writer, points []dataset.Point, opts Options) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	p, err := NewPanel(points, opts)
	if err != nil {
		return err
	}
	sc := p.Scene()
	if sc == nil {
		return p.Err()
	}
	return sc.WriteSVG(w)
}
