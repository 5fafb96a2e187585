package backend

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"imgbench/internal/adapters/codec"
	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"

	"github.com/disintegration/imaging"
)

// Compose turns an image already scaled to plan.ScaledSize into the final canvas:
// Fill keeps the crop region, Fit blends the image over the background at the
// placement offset. Formats without alpha are flattened over the effective
// background in every mode.
func Compose(plan domain.Plan, scaled image.Image, f domain.Format) *image.NRGBA {
	bg := plan.Background.Effective(f)
	src := imaging.Clone(scaled)

	switch plan.Mode {
	case domain.Fill:
		c := plan.Crop
		src = imaging.Crop(src, image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height))
	case domain.Fit:
		canvas := imaging.New(plan.CanvasSize.Width, plan.CanvasSize.Height, bg.NRGBA())
		overlay(canvas, src, image.Pt(plan.Placement.X, plan.Placement.Y))
		return canvas
	}

	if !f.HasAlpha() {
		flatten(src, bg.NRGBA())
	}

	return src
}

// overlay blends src over dst with its top-left corner at at.
func overlay(dst, src *image.NRGBA, at image.Point) {
	r := src.Bounds().Add(at.Sub(src.Bounds().Min)).Intersect(dst.Bounds())

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s := src.NRGBAAt(x-at.X+src.Bounds().Min.X, y-at.Y+src.Bounds().Min.Y)
			dst.SetNRGBA(x, y, domain.Blend(s, dst.NRGBAAt(x, y)))
		}
	}
}

func flatten(img *image.NRGBA, bg color.NRGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := img.NRGBAAt(x, y)
			if px.A == 0xff {
				continue
			}
			img.SetNRGBA(x, y, domain.Blend(px, bg))
		}
	}
}

// composeScratch finishes a job whose tool could only scale (and crop): the
// intermediate at scaledPath is padded in process and encoded to the job format.
func composeScratch(job *port.Job, scaledPath string) ([]byte, error) {
	data, err := job.Scratch.Read(scaledPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEncode, err)
	}

	img, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}

	// tools may round the scaled size differently, pad around what they produced
	plan := job.Plan.Rescaled(domain.Dimensions{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()})

	return codec.EncodeBytes(Compose(plan, img, job.Format), job.Format, job.Quality)
}

// fillSource maps the crop region of a Fill plan back onto a source image with
// bounds b. Scaling only that region to the canvas never materialises the full
// scaled image.
func fillSource(plan domain.Plan, b image.Rectangle) image.Rectangle {
	c, s := plan.Crop, plan.Scale.X
	back := func(v int) int {
		return int(math.Floor(float64(v)/s + 0.5))
	}

	x0 := min(max(back(c.X), 0), b.Dx()-1)
	y0 := min(max(back(c.Y), 0), b.Dy()-1)
	x1 := min(max(back(c.X+c.Width), x0+1), b.Dx())
	y1 := min(max(back(c.Y+c.Height), y0+1), b.Dy())

	return image.Rect(x0, y0, x1, y1).Add(b.Min)
}
