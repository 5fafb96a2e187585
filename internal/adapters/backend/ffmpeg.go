package backend

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"imgbench/internal/core/domain"
	"imgbench/internal/core/port"
)

type FFmpeg struct {
	tool    tool
	formats map[domain.Format]bool
}

func NewFFmpeg() *FFmpeg {
	return &FFmpeg{
		tool:    newTool([]string{"ffmpeg"}),
		formats: formatSet(domain.JPEG, domain.PNG, domain.GIF, domain.WEBP, domain.BMP, domain.TIFF),
	}
}

func (f *FFmpeg) Name() string {
	return "ffmpeg"
}

func (f *FFmpeg) Supports(format domain.Format) bool {
	return f.formats[format]
}

// Execute runs one filtergraph. A translucent pad cannot be expressed by the pad
// filter for every pixel format, so that case is padded in process.
func (f *FFmpeg) Execute(ctx context.Context, job *port.Job) ([]byte, error) {
	if !f.Supports(job.Format) {
		return nil, fmt.Errorf("%w: %s by %s", domain.ErrUnsupportedFormat, job.Format, f.Name())
	}

	bin, err := f.tool.resolve()
	if err != nil {
		return nil, err
	}

	in, out, err := stage(job)
	if err != nil {
		return nil, err
	}

	if translucentPad(job) {
		scaled := job.Scratch.Path("scaled.png")
		if err := run(ctx, f.Name(), append(bin, ffmpegArgs(job, in, scaled, false)...)); err != nil {
			return nil, err
		}
		return composeScratch(job, scaled)
	}

	if err := run(ctx, f.Name(), append(bin, ffmpegArgs(job, in, out, true)...)); err != nil {
		return nil, err
	}

	return collect(job, out)
}

func ffmpegArgs(job *port.Job, in, out string, pad bool) []string {
	p := job.Plan

	filters := []string{fmt.Sprintf("scale=%d:%d:flags=%s",
		p.ScaledSize.Width, p.ScaledSize.Height, lookupKernel(ffmpegFlags, p.Kernel))}

	switch {
	case p.Mode == domain.Fill:
		c := p.Crop
		filters = append(filters, fmt.Sprintf("crop=%d:%d:%d:%d", c.Width, c.Height, c.X, c.Y))
	case p.Pads() && pad:
		filters = append(filters, fmt.Sprintf("pad=%d:%d:%d:%d:color=%s",
			p.CanvasSize.Width, p.CanvasSize.Height, p.Placement.X, p.Placement.Y,
			ffmpegColor(p.Background.Effective(job.Format))))
	}

	args := []string{
		"-hide_banner", "-loglevel", "error", "-nostdin", "-y",
		"-i", in,
		"-vf", strings.Join(filters, ","),
		"-frames:v", "1",
	}

	switch job.Format {
	case domain.JPEG:
		// -q:v runs from 2 (best) to 31
		args = append(args, "-q:v", strconv.Itoa(2+(100-quality(job.Quality))*29/100))
	case domain.WEBP:
		args = append(args, "-quality", strconv.Itoa(quality(job.Quality)))
	}

	return append(args, out)
}

func ffmpegColor(bg domain.Background) string {
	c := fmt.Sprintf("0x%02x%02x%02x", bg.Color.R, bg.Color.G, bg.Color.B)
	if bg.Alpha == 0xff {
		return c
	}
	return fmt.Sprintf("%s@%.3f", c, float64(bg.Alpha)/0xff)
}
