package sprite

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/spritepack/spritepack/pkg/errors"
	"github.com/spritepack/spritepack/pkg/pack"
)

// Sheet is a composed sprite sheet together with its retina variant.
// Retina is nil when the compose scale is 1.
type Sheet struct {
	Base   *image.NRGBA
	Retina *image.NRGBA
	Scale  int
}

// Compose renders the packed layout into a sprite sheet. Each placement is
// filled with the source image of the same name. When scale is greater than 1
// a retina variant is produced by upscaling the base sheet with nearest
// neighbor sampling, which keeps pixel art crisp.
func Compose(sources []Source, layout pack.Layout, scale int) (*Sheet, error) {
	if err := errors.ValidateScale(scale); err != nil {
		return nil, err
	}

	byName := make(map[string]Source, len(sources))
	for _, src := range sources {
		byName[src.Name] = src
	}

	base := image.NewNRGBA(image.Rect(0, 0, layout.Width, layout.Height))
	for _, p := range layout.Placements {
		src, ok := byName[p.ID]
		if !ok {
			return nil, errors.New(errors.ErrCodeInternal, "layout references unknown source %q", p.ID)
		}
		dst := image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
		draw.Draw(base, dst, src.Image, src.Image.Bounds().Min, draw.Over)
	}

	sheet := &Sheet{Base: base, Scale: scale}
	if scale > 1 {
		sheet.Retina = imaging.Resize(base, layout.Width*scale, layout.Height*scale, imaging.NearestNeighbor)
	}
	return sheet, nil
}
