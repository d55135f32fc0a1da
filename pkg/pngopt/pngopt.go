// Package pngopt encodes images as the smallest PNG it can produce.
//
// Two candidate encodings are tried: truecolor with maximum zlib compression,
// and indexed palette when the image has at most 256 unique colors. The
// palette candidate is exact, never quantized; lossy quantization is left to
// the external pngquant pass in Crush. Images with no transparent pixels are
// flattened to opaque RGB before encoding.
package pngopt

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/spritepack/spritepack/pkg/errors"
)

// maxPaletteColors is the PNG indexed-mode color limit.
const maxPaletteColors = 256

// Strategy names the encoding that won the size comparison.
type Strategy string

const (
	StrategyTruecolor Strategy = "truecolor"
	StrategyPalette   Strategy = "palette"
)

// Result is an encoded PNG together with the strategy that produced it.
type Result struct {
	Data     []byte
	Strategy Strategy
}

// Encode renders img as the smallest PNG among the candidate encodings.
func Encode(img image.Image) (*Result, error) {
	base := img
	if !HasAlpha(img) {
		base = flatten(img)
	}

	trueData, err := encodePNG(base)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode truecolor png")
	}
	best := &Result{Data: trueData, Strategy: StrategyTruecolor}

	if pal, ok := toPaletted(base); ok {
		palData, err := encodePNG(pal)
		if err == nil && len(palData) < len(best.Data) {
			best = &Result{Data: palData, Strategy: StrategyPalette}
		}
	}

	return best, nil
}

// HasAlpha reports whether any pixel of img is not fully opaque.
func HasAlpha(img image.Image) bool {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if a < 0xffff {
				return true
			}
		}
	}
	return false
}

// flatten converts a fully opaque image to RGBA with the alpha channel
// forced to 255, dropping alpha noise that would defeat palette detection.
func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			out.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, color.RGBA{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: 0xff,
			})
		}
	}
	return out
}

// toPaletted builds an exact indexed version of img. It reports false when
// the image has more than 256 unique colors, in which case indexed mode
// would be lossy and is skipped.
func toPaletted(img image.Image) (*image.Paletted, bool) {
	bounds := img.Bounds()

	index := make(map[color.NRGBA]uint8, maxPaletteColors)
	var palette color.Palette

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if _, ok := index[c]; !ok {
				if len(palette) >= maxPaletteColors {
					return nil, false
				}
				index[c] = uint8(len(palette))
				palette = append(palette, c)
			}
		}
	}

	out := image.NewPaletted(image.Rect(0, 0, bounds.Dx(), bounds.Dy()), palette)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.SetColorIndex(x-bounds.Min.X, y-bounds.Min.Y, index[c])
		}
	}
	return out, true
}

// encodePNG encodes with the strongest stdlib compression level.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
