package raster

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"os/exec"

	"github.com/matzehuels/ratechart/pkg/blob"
)

// RsvgCommand is the executable used by Rsvg.
const RsvgCommand = "rsvg-convert"

// Rsvg decodes documents by shelling out to rsvg-convert, which renders
// text with the system fonts. The document is rasterised once at Density
// and drawn as a bitmap.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
type Rsvg struct {
	Density float64
}

// RsvgAvailable reports whether rsvg-convert is on PATH.
func RsvgAvailable() bool {
	_, err := exec.LookPath(RsvgCommand)
	return err == nil
}

// Decode implements Decoder.
func (r Rsvg) Decode(ctx context.Context, h *blob.Handle) *Decoding {
	rd, err := h.Open()
	if err != nil {
		return Rejected(err)
	}
	svg, err := io.ReadAll(rd)
	if err != nil {
		return Rejected(err)
	}
	density := r.Density
	if density <= 0 {
		density = 1
	}
	return async(func() (Source, error) {
		out, err := rsvgConvert(ctx, svg, "png", "-z", fmt.Sprintf("%.2f", density))
		if err != nil {
			return nil, err
		}
		img, err := png.Decode(bytes.NewReader(out))
		if err != nil {
			return nil, fmt.Errorf("rsvg-convert output: %w", err)
		}
		return ImageSource{Image: img, Density: density}, nil
	})
}

// rsvgConvert shells out to rsvg-convert for format conversion.
func rsvgConvert(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if !RsvgAvailable() {
		return nil, fmt.Errorf("%s decoding requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, RsvgCommand, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
