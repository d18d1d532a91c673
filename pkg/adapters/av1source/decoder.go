// Package av1source decodes AV1 video from fragmented MP4 files using libaom.
package av1source

/*
#cgo pkg-config: aom
#include <aom/aom_decoder.h>
#include <aom/aomdx.h>
#include <stdlib.h>
#include <string.h>

static aom_codec_iface_t* get_av1_decoder_interface() {
    return aom_codec_av1_dx();
}

static aom_codec_err_t init_decoder(aom_codec_ctx_t *ctx, aom_codec_iface_t *iface) {
    return aom_codec_dec_init(ctx, iface, NULL, 0);
}

static unsigned char* get_plane(aom_image_t *img, int plane) {
    return img->planes[plane];
}

static int get_stride(aom_image_t *img, int plane) {
    return img->stride[plane];
}

static unsigned int get_width(aom_image_t *img) {
    return img->d_w;
}

static unsigned int get_height(aom_image_t *img) {
    return img->d_h;
}

static int get_fmt(aom_image_t *img) {
    return (int)img->fmt;
}

static unsigned int get_bit_depth(aom_image_t *img) {
    return img->bit_depth;
}

static int is_monochrome(aom_image_t *img) {
    return img->monochrome;
}
*/
import "C"

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"unsafe"
)

var (
	// ErrNoPicture is returned when a sample decodes without producing a picture.
	ErrNoPicture = errors.New("av1source: no picture available")

	// ErrEmptySample is returned for a sample without data.
	ErrEmptySample = errors.New("av1source: empty sample data")

	// ErrUnsupportedPixelFormat is returned for unknown plane layouts.
	ErrUnsupportedPixelFormat = errors.New("av1source: unsupported pixel format")
)

// Decoder wraps a libaom AV1 decoder context.
type Decoder struct {
	codec *C.aom_codec_ctx_t
}

// NewDecoder creates a decoder. Init must be called before decoding.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Init initializes the decoder.
func (d *Decoder) Init() error {
	d.codec = (*C.aom_codec_ctx_t)(C.malloc(C.sizeof_aom_codec_ctx_t))
	if d.codec == nil {
		return fmt.Errorf("failed to allocate decoder context")
	}
	C.memset(unsafe.Pointer(d.codec), 0, C.sizeof_aom_codec_ctx_t)

	iface := C.get_av1_decoder_interface()
	if res := C.init_decoder(d.codec, iface); res != C.AOM_CODEC_OK {
		C.free(unsafe.Pointer(d.codec))
		d.codec = nil
		return fmt.Errorf("failed to initialize decoder: %d", res)
	}

	return nil
}

// Decode decodes one temporal unit and returns the picture it shows.
// The returned image owns its pixels.
func (d *Decoder) Decode(data []byte) (image.Image, error) {
	if d.codec == nil {
		return nil, fmt.Errorf("decoder not initialized")
	}
	if len(data) == 0 {
		return nil, ErrEmptySample
	}

	res := C.aom_codec_decode(
		d.codec,
		(*C.uint8_t)(unsafe.Pointer(&data[0])),
		C.size_t(len(data)),
		nil,
	)
	if res != C.AOM_CODEC_OK {
		return nil, fmt.Errorf("decode failed: %d", res)
	}

	var iter C.aom_codec_iter_t
	img := C.aom_codec_get_frame(d.codec, &iter)
	if img == nil {
		return nil, ErrNoPicture
	}

	return toYCbCr(img)
}

// Close releases decoder resources. It is safe to call more than once.
func (d *Decoder) Close() {
	if d.codec != nil {
		C.aom_codec_destroy(d.codec)
		C.free(unsafe.Pointer(d.codec))
		d.codec = nil
	}
}

// toYCbCr copies the planes of a libaom picture into a Go image. High bit
// depth samples are shifted down to 8 bits.
func toYCbCr(img *C.aom_image_t) (image.Image, error) {
	width := int(C.get_width(img))
	height := int(C.get_height(img))
	rect := image.Rect(0, 0, width, height)

	format := int(C.get_fmt(img))
	var ratio image.YCbCrSubsampleRatio
	switch format &^ C.AOM_IMG_FMT_HIGHBITDEPTH {
	case C.AOM_IMG_FMT_I420:
		ratio = image.YCbCrSubsampleRatio420
	case C.AOM_IMG_FMT_I422:
		ratio = image.YCbCrSubsampleRatio422
	case C.AOM_IMG_FMT_I444:
		ratio = image.YCbCrSubsampleRatio444
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedPixelFormat, format)
	}

	copyPlane := copyRows
	if format&C.AOM_IMG_FMT_HIGHBITDEPTH != 0 {
		depth := int(C.get_bit_depth(img))
		if depth < 8 || depth > 16 {
			return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedPixelFormat, depth)
		}
		shift := uint(depth - 8)
		copyPlane = func(dst []byte, dstStride int, src []byte, srcStride, width, rows int) {
			copyRows16(dst, dstStride, src, srcStride, width, rows, shift)
		}
	}

	if C.is_monochrome(img) != 0 {
		gray := image.NewGray(rect)
		copyPlane(gray.Pix, gray.Stride, planeBytes(img, 0, height), int(C.get_stride(img, 0)), width, height)
		return gray, nil
	}

	out := image.NewYCbCr(rect, ratio)
	cw, ch := out.CStride, len(out.Cb)/out.CStride
	copyPlane(out.Y, out.YStride, planeBytes(img, 0, height), int(C.get_stride(img, 0)), width, height)
	copyPlane(out.Cb, out.CStride, planeBytes(img, 1, ch), int(C.get_stride(img, 1)), cw, ch)
	copyPlane(out.Cr, out.CStride, planeBytes(img, 2, ch), int(C.get_stride(img, 2)), cw, ch)
	return out, nil
}

func planeBytes(img *C.aom_image_t, plane, rows int) []byte {
	stride := int(C.get_stride(img, C.int(plane)))
	return unsafe.Slice((*byte)(unsafe.Pointer(C.get_plane(img, C.int(plane)))), stride*rows)
}

// copyRows copies rows of width bytes between buffers with different strides.
func copyRows(dst []byte, dstStride int, src []byte, srcStride, width, rows int) {
	for y := 0; y < rows; y++ {
		copy(dst[y*dstStride:y*dstStride+width], src[y*srcStride:y*srcStride+width])
	}
}

// copyRows16 narrows rows of 16-bit little endian samples to bytes.
// srcStride is in bytes.
func copyRows16(dst []byte, dstStride int, src []byte, srcStride, width, rows int, shift uint) {
	for y := 0; y < rows; y++ {
		row := src[y*srcStride : y*srcStride+2*width]
		out := dst[y*dstStride : y*dstStride+width]
		for x := range out {
			out[x] = byte(binary.LittleEndian.Uint16(row[2*x:]) >> shift)
		}
	}
}
