package backend

import (
	"context"
	"fmt"
	"strconv"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"
)

// Vips chains single-operation `vips` invocations through .v files in the
// workspace.
type Vips struct {
	tool    tool
	formats map[domain.Format]bool
}

func NewVips() *Vips {
	return &Vips{
		tool:    newTool([]string{"vips"}),
		formats: formatSet(domain.Formats...),
	}
}

func (v *Vips) Name() string {
	return "vips"
}

func (v *Vips) Supports(f domain.Format) bool {
	return v.formats[f]
}

func (v *Vips) Execute(ctx context.Context, job *port.Job) ([]byte, error) {
	if !v.Supports(job.Format) {
		return nil, fmt.Errorf("%w: %s by %s", domain.ErrUnsupportedFormat, job.Format, v.Name())
	}

	bin, err := v.tool.resolve()
	if err != nil {
		return nil, err
	}

	in, out, err := stage(job)
	if err != nil {
		return nil, err
	}

	target := vipsTarget(job, out)
	if translucentPad(job) {
		target = job.Scratch.Path("scaled.png")
	}

	for _, args := range vipsSteps(job, in, target, job.Scratch.Path) {
		if err := run(ctx, v.Name(), append([]string{bin[0]}, args...)); err != nil {
			return nil, err
		}
	}

	if translucentPad(job) {
		return composeScratch(job, target)
	}

	return collect(job, out)
}

// vipsTarget appends vips save options to the output path.
func vipsTarget(job *port.Job, out string) string {
	switch job.Format {
	case domain.JPEG, domain.WEBP, domain.AVIF:
		return out + "[Q=" + strconv.Itoa(quality(job.Quality)) + ",strip]"
	}
	return out
}

func vipsSteps(job *port.Job, in, out string, path func(string) string) [][]string {
	p := job.Plan
	scaled := path("scaled.v")

	// exact per-axis factors so vips lands on ScaledSize regardless of plan.Scale rounding
	hscale := float64(p.ScaledSize.Width) / float64(p.Source.Width)
	vscale := float64(p.ScaledSize.Height) / float64(p.Source.Height)

	steps := [][]string{{
		"resize", in, scaled, fmtFloat(hscale),
		"--vscale", fmtFloat(vscale),
		"--kernel", lookupKernel(vipsKernels, p.Kernel),
	}}

	switch {
	case p.Mode == domain.Fill:
		c := p.Crop
		return append(steps, []string{"crop", scaled, out,
			strconv.Itoa(c.X), strconv.Itoa(c.Y), strconv.Itoa(c.Width), strconv.Itoa(c.Height)})
	case p.Pads() && !translucentPad(job):
		bg := p.Background.Effective(job.Format)
		rgb := fmt.Sprintf("%d %d %d", bg.Color.R, bg.Color.G, bg.Color.B)
		srgb, flat := path("srgb.v"), path("flat.v")
		return append(steps,
			[]string{"colourspace", scaled, srgb, "srgb"},
			[]string{"flatten", srgb, flat, "--background", rgb},
			[]string{"embed", flat, out,
				strconv.Itoa(p.Placement.X), strconv.Itoa(p.Placement.Y),
				strconv.Itoa(p.CanvasSize.Width), strconv.Itoa(p.CanvasSize.Height),
				"--extend", "background", "--background", rgb},
		)
	}

	return append(steps, []string{"copy", scaled, out})
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
