package ports

import (
	"fmt"
	"image"
	"strings"
)

// ImageFormat specifies the on-disk encoding of an extracted frame.
type ImageFormat int

const (
	FormatPNG ImageFormat = iota
	FormatJPEG
	FormatBMP
	FormatTIFF
)

// String returns the format name as used on the command line.
func (f ImageFormat) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	default:
		return "unknown"
	}
}

// Extension returns the file extension without the leading dot.
func (f ImageFormat) Extension() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	default:
		return "png"
	}
}

// ParseImageFormat parses a format name. "jpg" and "tif" are accepted as aliases.
func ParseImageFormat(s string) (ImageFormat, error) {
	switch strings.ToLower(s) {
	case "png", "":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "tiff", "tif":
		return FormatTIFF, nil
	default:
		return FormatPNG, fmt.Errorf("unsupported image format: %q", s)
	}
}

// ImageEncoder abstracts still-image encoding.
type ImageEncoder interface {
	// Encode encodes img in the given format. quality applies to lossy formats only.
	Encode(img image.Image, format ImageFormat, quality int) ([]byte, error)
}
