// Package imagecodec encodes decoded frames into still-image files.
package imagecodec

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/fogleman/gg"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/user/framedump/pkg/ports"
)

// DefaultJPEGQuality is used when a lossy format is requested without a quality.
const DefaultJPEGQuality = 90

// Encoder implements ports.ImageEncoder.
type Encoder struct{}

// New creates a new Encoder.
func New() *Encoder {
	return &Encoder{}
}

// Encode encodes img in the requested format.
//
// PNG output goes through a gg context so that every source pixel layout
// (YCbCr, Gray, RGBA) is written as 8-bit RGBA.
func (e *Encoder) Encode(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("encode %s: nil image", format)
	}

	var buf bytes.Buffer

	switch format {
	case ports.FormatPNG:
		dc := gg.NewContextForImage(img)
		if err := dc.EncodePNG(&buf); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	case ports.FormatJPEG:
		if quality <= 0 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatBMP:
		if err := bmp.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode BMP: %w", err)
		}
	case ports.FormatTIFF:
		if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return nil, fmt.Errorf("encode TIFF: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// Ensure Encoder implements ports.ImageEncoder
var _ ports.ImageEncoder = (*Encoder)(nil)
