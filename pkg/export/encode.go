package export

import (
	"bytes"
	"image/png"

	"github.com/matzehuels/ratechart/pkg/raster"
)

// Filename is the suggested name of every exported file.
const Filename = "출산율-그래프.png"

// MIMEType is the media type of the artifact payload.
const MIMEType = "image/png"

// Artifact is an encoded export ready for delivery.
type Artifact struct {
	Name   string
	MIME   string
	Data   []byte
	Width  int // pixels
	Height int
}

// Encoder turns a drawn surface into an Artifact.
type Encoder interface {
	Encode(s *raster.Surface) (*Artifact, error)
}

// PNGEncoder encodes surfaces as PNG. Opaque surfaces are written as
// truecolor without an alpha channel.
type PNGEncoder struct {
	Compression png.CompressionLevel
}

// Encode implements Encoder.
func (e PNGEncoder) Encode(s *raster.Surface) (*Artifact, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: e.Compression}
	if err := enc.Encode(&buf, s.Image()); err != nil {
		return nil, err
	}
	b := s.Bounds()
	return &Artifact{
		Name:   Filename,
		MIME:   MIMEType,
		Data:   buf.Bytes(),
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}
