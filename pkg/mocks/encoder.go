package mocks

import (
	"fmt"
	"image"

	"github.com/user/framedump/pkg/ports"
)

// ImageEncoder is a mock implementation of ports.ImageEncoder.
// By default it encodes a short text description of the image.
type ImageEncoder struct {
	EncodeFunc func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)

	Calls int
}

func (m *ImageEncoder) Encode(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	m.Calls++
	if m.EncodeFunc != nil {
		return m.EncodeFunc(img, format, quality)
	}
	r, _, _, _ := img.At(0, 0).RGBA()
	return []byte(fmt.Sprintf("%s %dx%d r=%d", format, img.Bounds().Dx(), img.Bounds().Dy(), r>>8)), nil
}

var _ ports.ImageEncoder = (*ImageEncoder)(nil)
