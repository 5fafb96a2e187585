package backend

import (
	"context"
	"fmt"
	"strconv"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"
)

// NConvert drives XnView's command line converter.
type NConvert struct {
	tool    tool
	formats map[domain.Format]bool
}

func NewNConvert() *NConvert {
	return &NConvert{
		tool:    newTool([]string{"nconvert"}),
		formats: formatSet(domain.JPEG, domain.PNG, domain.GIF, domain.WEBP, domain.BMP, domain.TIFF),
	}
}

func (n *NConvert) Name() string {
	return "nconvert"
}

func (n *NConvert) Supports(f domain.Format) bool {
	return n.formats[f]
}

// Execute pads with -canvas when the background is opaque; nconvert has no alpha
// for canvas colors, so translucent pads are composed in process.
func (n *NConvert) Execute(ctx context.Context, job *port.Job) ([]byte, error) {
	if !n.Supports(job.Format) {
		return nil, fmt.Errorf("%w: %s by %s", domain.ErrUnsupportedFormat, job.Format, n.Name())
	}

	bin, err := n.tool.resolve()
	if err != nil {
		return nil, err
	}

	in, out, err := stage(job)
	if err != nil {
		return nil, err
	}

	if translucentPad(job) {
		scaled := job.Scratch.Path("scaled.png")
		if err := run(ctx, n.Name(), append(bin, nconvertArgs(job, in, scaled, domain.PNG, false)...)); err != nil {
			return nil, err
		}
		return composeScratch(job, scaled)
	}

	if err := run(ctx, n.Name(), append(bin, nconvertArgs(job, in, out, job.Format, true)...)); err != nil {
		return nil, err
	}

	return collect(job, out)
}

// nconvertFormats maps output formats to -out names.
var nconvertFormats = map[domain.Format]string{
	domain.JPEG: "jpeg",
	domain.PNG:  "png",
	domain.GIF:  "gif",
	domain.WEBP: "webp",
	domain.BMP:  "bmp",
	domain.TIFF: "tiff",
}

// nconvertPositions names the -canvas position that matches each anchor's offsets.
var nconvertPositions = map[domain.Anchor]string{
	domain.Center: "center",
	domain.Top:    "top-center",
	domain.Bottom: "bottom-center",
	domain.Left:   "center-left",
	domain.Right:  "center-right",
}

func nconvertArgs(job *port.Job, in, out string, f domain.Format, pad bool) []string {
	p := job.Plan

	args := []string{
		"-quiet", "-overwrite",
		"-out", nconvertFormats[f],
		"-o", out,
		"-rtype", lookupKernel(nconvertTypes, p.Kernel),
		"-resize", strconv.Itoa(p.ScaledSize.Width), strconv.Itoa(p.ScaledSize.Height),
	}

	switch {
	case p.Mode == domain.Fill:
		c := p.Crop
		args = append(args, "-crop",
			strconv.Itoa(c.X), strconv.Itoa(c.Y), strconv.Itoa(c.Width), strconv.Itoa(c.Height))
	case p.Pads() && pad:
		bg := p.Background.Effective(job.Format)
		args = append(args,
			"-bgcolor", strconv.Itoa(int(bg.Color.R)), strconv.Itoa(int(bg.Color.G)), strconv.Itoa(int(bg.Color.B)),
			"-canvas", strconv.Itoa(p.CanvasSize.Width), strconv.Itoa(p.CanvasSize.Height),
			nconvertPositions[p.Anchor],
		)
	}

	if f == domain.JPEG || f == domain.WEBP {
		args = append(args, "-q", strconv.Itoa(quality(job.Quality)))
	}

	return append(args, in)
}
