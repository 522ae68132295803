// Package fonts provides the typefaces used to draw chart text when
// rasterising without a browser.
//
// The Go fonts are compiled into golang.org/x/image, so the default set
// works without any system fonts. They do not cover Hangul; point
// [Load] at a TTF/OTF with Korean glyphs (for example Noto Sans KR) to get
// readable axis labels.
package fonts

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// FontFamily is the family name reported for the default set.
const FontFamily = "Go"

// BoldWeight is the smallest CSS font-weight drawn with the bold face.
const BoldWeight = 600

// Set is a regular and a bold typeface.
type Set struct {
	Name    string
	Regular *opentype.Font
	Bold    *opentype.Font
}

// Parsed fonts are cached after first use.
var (
	defaultSet     *Set
	defaultErr     error
	defaultSetOnce sync.Once
)

// Default returns the Go regular/bold set.
func Default() (*Set, error) {
	defaultSetOnce.Do(func() {
		regular, err := opentype.Parse(goregular.TTF)
		if err != nil {
			defaultErr = fmt.Errorf("parse goregular: %w", err)
			return
		}
		bold, err := opentype.Parse(gobold.TTF)
		if err != nil {
			defaultErr = fmt.Errorf("parse gobold: %w", err)
			return
		}
		defaultSet = &Set{Name: FontFamily, Regular: regular, Bold: bold}
	})
	return defaultSet, defaultErr
}

// Load reads a single TTF or OTF file and uses it for both weights.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	name, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil || name == "" {
		name = path
	}
	return &Set{Name: name, Regular: f, Bold: f}, nil
}

// Face returns a new face at size pixels. Faces are not safe for concurrent
// use, so every caller gets its own.
func (s *Set) Face(size float64, weight int) (font.Face, error) {
	f := s.Regular
	if weight >= BoldWeight && s.Bold != nil {
		f = s.Bold
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
