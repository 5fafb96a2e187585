package backend

import (
	"context"
	"fmt"
	"image"

	"imgbench/internal/adapters/codec"
	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

// Scaler resizes an image to exactly size. Implementations wrap one Go imaging
// library and translate the kernel through a static table.
type Scaler interface {
	Scale(img image.Image, size domain.Dimensions, kernel domain.Kernel) image.Image
}

// Native runs the whole plan in process: decode, scale with its Scaler, compose
// and encode.
type Native struct {
	name    string
	scaler  Scaler
	formats map[domain.Format]bool
}

func NewNative(name string, scaler Scaler) *Native {
	return &Native{name: name, scaler: scaler, formats: formatSet(domain.Formats...)}
}

func (n *Native) Name() string {
	return n.name
}

func (n *Native) Supports(f domain.Format) bool {
	return n.formats[f]
}

func (n *Native) Execute(ctx context.Context, job *port.Job) ([]byte, error) {
	if !n.Supports(job.Format) {
		return nil, fmt.Errorf("%w: %s by %s", domain.ErrUnsupportedFormat, job.Format, n.Name())
	}

	img, err := codec.Decode(job.Input)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s interrupted: %w", domain.ErrBackendUnavailable, n.name, err)
	}

	plan := job.Plan
	if plan.Mode == domain.Fill {
		img = imaging.Crop(img, fillSource(plan, img.Bounds()))
		plan = plan.Rescaled(plan.CanvasSize)
	}

	scaled := n.scaler.Scale(img, plan.ScaledSize, plan.Kernel)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s interrupted: %w", domain.ErrBackendUnavailable, n.name, err)
	}

	out := Compose(plan, scaled, job.Format)

	log.Debug().Str("backend", n.name).Str("size", out.Bounds().Size().String()).Msg("composed canvas")

	return codec.EncodeBytes(out, job.Format, job.Quality)
}
