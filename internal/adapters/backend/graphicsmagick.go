package backend

import (
	"context"
	"fmt"
	"strconv"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"
)

// GraphicsMagick scales and crops with `gm convert`, then pads with `gm composite`
// onto a solid canvas, since gm has no offset extent.
type GraphicsMagick struct {
	tool    tool
	formats map[domain.Format]bool
}

func NewGraphicsMagick() *GraphicsMagick {
	return &GraphicsMagick{
		tool:    newTool([]string{"gm"}),
		formats: formatSet(domain.JPEG, domain.PNG, domain.GIF, domain.WEBP, domain.BMP, domain.TIFF),
	}
}

func (g *GraphicsMagick) Name() string {
	return "graphicsmagick"
}

func (g *GraphicsMagick) Supports(f domain.Format) bool {
	return g.formats[f]
}

func (g *GraphicsMagick) Execute(ctx context.Context, job *port.Job) ([]byte, error) {
	if !g.Supports(job.Format) {
		return nil, fmt.Errorf("%w: %s by %s", domain.ErrUnsupportedFormat, job.Format, g.Name())
	}

	bin, err := g.tool.resolve()
	if err != nil {
		return nil, err
	}

	in, out, err := stage(job)
	if err != nil {
		return nil, err
	}

	for _, args := range gmSteps(job, in, job.Scratch.Path("scaled.miff"), out) {
		if err := run(ctx, g.Name(), append([]string{bin[0]}, args...)); err != nil {
			return nil, err
		}
	}

	return collect(job, out)
}

// gmSteps returns one argument vector per gm invocation.
func gmSteps(job *port.Job, in, scaled, out string) [][]string {
	p := job.Plan
	bg := p.Background.Effective(job.Format)
	q := strconv.Itoa(quality(job.Quality))

	convert := []string{
		"convert", in + "[0]",
		"-filter", lookupKernel(gmFilters, p.Kernel),
		"-resize", exactGeometry(p.ScaledSize),
	}
	if p.Mode == domain.Fill {
		convert = append(convert, "-crop", cropGeometry(*p.Crop), "+repage")
	}

	if !p.Pads() {
		if !job.Format.HasAlpha() {
			convert = append(convert, "-background", gmColor(bg), "-flatten")
		}
		return [][]string{append(convert, "-quality", q, "+profile", "*", out)}
	}

	composite := []string{
		"composite",
		"-geometry", fmt.Sprintf("+%d+%d", p.Placement.X, p.Placement.Y),
		scaled,
		"-size", p.CanvasSize.String(), "xc:" + gmColor(bg),
		"-quality", q,
		out,
	}

	return [][]string{append(convert, scaled), composite}
}

// gmColor writes #rrggbboo. GraphicsMagick reads the fourth byte as opacity, the
// inverse of alpha.
func gmColor(bg domain.Background) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", bg.Color.R, bg.Color.G, bg.Color.B, 0xff-bg.Alpha)
}
