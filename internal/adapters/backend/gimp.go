package backend

import (
	"context"
	"fmt"
	"strings"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"
)

// GIMP runs a generated Script-Fu program in batch mode. The script lives in the
// job workspace next to its input.
type GIMP struct {
	tool    tool
	formats map[domain.Format]bool
}

func NewGIMP() *GIMP {
	return &GIMP{
		tool: newTool([]string{"gimp-console"}, []string{"gimp"}),
		// the GIF exporter refuses RGB images
		formats: formatSet(domain.JPEG, domain.PNG, domain.WEBP, domain.BMP, domain.TIFF),
	}
}

func (g *GIMP) Name() string {
	return "gimp"
}

func (g *GIMP) Supports(f domain.Format) bool {
	return g.formats[f]
}

func (g *GIMP) Execute(ctx context.Context, job *port.Job) ([]byte, error) {
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

	script, err := job.Scratch.Write("resize.scm", []byte(gimpScript(job, in, out)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}

	argv := append(bin,
		"--no-interface", "--no-data", "--no-fonts",
		"--batch", fmt.Sprintf(`(load %s)`, schemeString(script)),
		"--batch", "(gimp-quit 0)",
	)
	if err := run(ctx, g.Name(), argv); err != nil {
		return nil, err
	}

	return collect(job, out)
}

// gimpScript renders the plan as Script-Fu. Fit honours both the anchor offsets and
// the requested background, painted on a layer below the image.
func gimpScript(job *port.Job, in, out string) string {
	p := job.Plan
	bg := p.Background.Effective(job.Format)

	var b strings.Builder
	fmt.Fprintf(&b, "(let* ((image (car (gimp-file-load RUN-NONINTERACTIVE %s %s))))\n",
		schemeString(in), schemeString(in))
	fmt.Fprintf(&b, "  (gimp-context-set-interpolation %s)\n", lookupKernel(gimpInterpolations, p.Kernel))
	fmt.Fprintf(&b, "  (gimp-image-scale image %d %d)\n", p.ScaledSize.Width, p.ScaledSize.Height)

	switch {
	case p.Mode == domain.Fill:
		fmt.Fprintf(&b, "  (gimp-image-crop image %d %d %d %d)\n", p.Crop.Width, p.Crop.Height, p.Crop.X, p.Crop.Y)
	case p.Pads():
		fmt.Fprintf(&b, "  (gimp-image-resize image %d %d %d %d)\n",
			p.CanvasSize.Width, p.CanvasSize.Height, p.Placement.X, p.Placement.Y)
		fmt.Fprintf(&b, "  (let* ((bg (car (gimp-layer-new image %d %d RGBA-IMAGE \"background\" %.2f LAYER-MODE-NORMAL))))\n",
			p.CanvasSize.Width, p.CanvasSize.Height, float64(bg.Alpha)*100/0xff)
		fmt.Fprintf(&b, "    (gimp-context-set-background '(%d %d %d))\n", bg.Color.R, bg.Color.G, bg.Color.B)
		b.WriteString("    (gimp-image-insert-layer image bg 0 1)\n")
		b.WriteString("    (gimp-drawable-fill bg FILL-BACKGROUND))\n")
	}

	if !job.Format.HasAlpha() {
		fmt.Fprintf(&b, "  (gimp-context-set-background '(%d %d %d))\n", bg.Color.R, bg.Color.G, bg.Color.B)
		b.WriteString("  (gimp-image-flatten image)\n")
	}

	b.WriteString("  (let* ((drawable (car (gimp-image-merge-visible-layers image CLIP-TO-IMAGE))))\n")
	fmt.Fprintf(&b, "    (gimp-file-save RUN-NONINTERACTIVE image drawable %s %s))\n",
		schemeString(out), schemeString(out))
	b.WriteString("  (gimp-image-delete image))\n")

	return b.String()
}

func schemeString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
