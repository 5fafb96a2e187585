package backend

import (
	"context"
	"fmt"
	"strconv"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"

	"github.com/rs/zerolog/log"
)

// ImageMagick drives `magick`, or the legacy `convert` binary of ImageMagick 6.
type ImageMagick struct {
	tool    tool
	formats map[domain.Format]bool
}

func NewImageMagick() *ImageMagick {
	return &ImageMagick{
		tool:    newTool([]string{"magick"}, []string{"convert"}),
		formats: formatSet(domain.Formats...),
	}
}

func (m *ImageMagick) Name() string {
	return "imagemagick"
}

func (m *ImageMagick) Supports(f domain.Format) bool {
	return m.formats[f]
}

func (m *ImageMagick) Execute(ctx context.Context, job *port.Job) ([]byte, error) {
	if !m.Supports(job.Format) {
		return nil, fmt.Errorf("%w: %s by %s", domain.ErrUnsupportedFormat, job.Format, m.Name())
	}

	bin, err := m.tool.resolve()
	if err != nil {
		return nil, err
	}

	in, out, err := stage(job)
	if err != nil {
		return nil, err
	}

	argv := append(bin, magickArgs(job, in, out)...)
	if err := run(ctx, m.Name(), argv); err != nil {
		return nil, err
	}

	log.Debug().Str("backend", m.Name()).Msg("magick commands finished")

	return collect(job, out)
}

// magickArgs translates the plan into one ImageMagick pipeline.
func magickArgs(job *port.Job, in, out string) []string {
	p := job.Plan
	bg := p.Background.Effective(job.Format)

	args := []string{
		// use only the first frame
		in + "[0]",
		"-filter", lookupKernel(magickFilters, p.Kernel),
		"-resize", exactGeometry(p.ScaledSize),
	}

	switch p.Mode {
	case domain.Fill:
		args = append(args, "-crop", cropGeometry(*p.Crop), "+repage")
	case domain.Fit:
		if p.Pads() {
			// negative extent offsets move the image right/down on the canvas
			args = append(args,
				"-background", bg.Hex(),
				"-gravity", "NorthWest",
				"-extent", fmt.Sprintf("%s-%d-%d", p.CanvasSize, p.Placement.X, p.Placement.Y),
			)
		}
	}

	if !job.Format.HasAlpha() {
		args = append(args, "-background", bg.Hex(), "-alpha", "remove", "-alpha", "off")
	}

	return append(args, "-quality", strconv.Itoa(quality(job.Quality)), "-strip", out)
}

func exactGeometry(d domain.Dimensions) string {
	return d.String() + "!"
}

func cropGeometry(r domain.Region) string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

func quality(q int) int {
	if q <= 0 || q > 100 {
		return 80
	}
	return q
}
