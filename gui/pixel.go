package gui

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	"github.com/danmaku-tools/dmktk/ir"
)

// Pixel format constants for the "THTX" texture blob (grounded on
// original_source/image.h's FORMAT_* defines). Only these five formats are
// ever produced by the tool family this toolkit targets.
const (
	FormatBGRA8888 = 1
	FormatBGR565   = 3
	FormatBGRA4444 = 5
	FormatRGBA8888 = 6
	FormatGray8    = 7
)

// PixelDecoder converts a packed THTX pixel blob into a displayable image.
// General packed-to-RGBA pixel conversion is out of scope for this toolkit
// (spec.md §1); gui depends only on this interface so the handful of known
// formats can be swapped out for a fuller codec without touching the viewer.
// defaultPixelDecoder, below, is as far as the interface-level bridge goes:
// it covers exactly the formats named in original_source/image.h and no
// others.
type PixelDecoder interface {
	Decode(blob *ir.PixelBlob) (image.Image, error)
}

// defaultPixelDecoder handles the five THTX formats directly with bit
// arithmetic rather than pulling in an image-codec library, since none of
// the example pack's dependencies model these packed 16-bit layouts.
type defaultPixelDecoder struct{}

// NewDefaultPixelDecoder returns the bundled PixelDecoder covering the THTX
// formats documented in original_source/image.h.
func NewDefaultPixelDecoder() PixelDecoder {
	return defaultPixelDecoder{}
}

func (defaultPixelDecoder) Decode(blob *ir.PixelBlob) (image.Image, error) {
	if blob == nil {
		return nil, fmt.Errorf("gui: nil pixel blob")
	}
	w, h := int(blob.Width), int(blob.Height)
	bpp, err := formatBpp(blob.Format)
	if err != nil {
		return nil, err
	}
	need := w * h * bpp
	if len(blob.Pixels) < need {
		return nil, fmt.Errorf("gui: pixel blob too short for %dx%d format %d: have %d bytes, need %d", w, h, blob.Format, len(blob.Pixels), need)
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * bpp
			img.SetNRGBA(x, y, decodePixel(blob.Format, blob.Pixels[off:off+bpp]))
		}
	}
	return img, nil
}

func formatBpp(format uint16) (int, error) {
	switch format {
	case FormatBGRA8888, FormatRGBA8888:
		return 4, nil
	case FormatBGR565, FormatBGRA4444:
		return 2, nil
	case FormatGray8:
		return 1, nil
	default:
		return 0, fmt.Errorf("gui: unsupported pixel format %d", format)
	}
}

func decodePixel(format uint16, px []byte) color.NRGBA {
	switch format {
	case FormatBGRA8888:
		return color.NRGBA{R: px[2], G: px[1], B: px[0], A: px[3]}
	case FormatRGBA8888:
		return color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]}
	case FormatBGR565:
		v := binary.LittleEndian.Uint16(px)
		r := uint8((v >> 11 & 0x1f) * 255 / 31)
		g := uint8((v >> 5 & 0x3f) * 255 / 63)
		b := uint8((v & 0x1f) * 255 / 31)
		return color.NRGBA{R: r, G: g, B: b, A: 255}
	case FormatBGRA4444:
		v := binary.LittleEndian.Uint16(px)
		b := uint8((v >> 0 & 0xf) * 255 / 15)
		g := uint8((v >> 4 & 0xf) * 255 / 15)
		r := uint8((v >> 8 & 0xf) * 255 / 15)
		a := uint8((v >> 12 & 0xf) * 255 / 15)
		return color.NRGBA{R: r, G: g, B: b, A: a}
	case FormatGray8:
		return color.NRGBA{R: px[0], G: px[0], B: px[0], A: 255}
	default:
		return color.NRGBA{}
	}
}
