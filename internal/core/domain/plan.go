package domain

import (
	"fmt"
	"math"
)

type Scale struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Offset struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Region is a rectangle inside the scaled image.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Plan is the backend-agnostic geometry of one resize operation. Backends scale the
// source to ScaledSize, then either keep Crop (Fill) or place the scaled image at
// Placement on a CanvasSize canvas painted with Background (Fit).
type Plan struct {
	Scale      Scale      `json:"scale"`
	Source     Dimensions `json:"source"`
	ScaledSize Dimensions `json:"scaledSize"`
	CanvasSize Dimensions `json:"canvasSize"`
	Placement  Offset     `json:"placement"`
	Crop       *Region    `json:"cropRegion,omitempty"`
	Background Background `json:"background"`
	Mode       ResizeMode `json:"mode"`
	Anchor     Anchor     `json:"anchor"`
	Kernel     Kernel     `json:"kernel"`
}

// Pads reports whether the canvas shows background around the scaled image.
func (p Plan) Pads() bool {
	return p.Mode == Fit && p.ScaledSize != p.CanvasSize
}

// Crops reports whether part of the scaled image is cut away.
func (p Plan) Crops() bool {
	return p.Crop != nil && (p.Crop.Width != p.ScaledSize.Width || p.Crop.Height != p.ScaledSize.Height)
}

func (p Plan) String() string {
	s := fmt.Sprintf("mode=%s anchor=%s kernel=%s scale=%.6fx%.6f scaled=%s canvas=%s",
		p.Mode, p.Anchor, p.Kernel, p.Scale.X, p.Scale.Y, p.ScaledSize, p.CanvasSize)
	if p.Crop != nil {
		s += fmt.Sprintf(" crop=%d,%d,%d,%d", p.Crop.X, p.Crop.Y, p.Crop.Width, p.Crop.Height)
	}
	if p.Mode == Fit {
		s += fmt.Sprintf(" offset=%d,%d bg=%s", p.Placement.X, p.Placement.Y, p.Background.Hex())
	}
	return s
}

// ComputePlan derives the geometry for resizing source into target.
func ComputePlan(source, target Dimensions, mode ResizeMode, anchor Anchor, bg Background,
	kernel Kernel) (Plan, error) {
	if !source.Valid() {
		return Plan{}, fmt.Errorf("%w: source %s", ErrInvalidDimensions, source)
	}
	if !target.Valid() {
		return Plan{}, fmt.Errorf("%w: target %s", ErrInvalidDimensions, target)
	}
	if _, err := ParseAnchor(string(anchor)); err != nil {
		return Plan{}, err
	}
	if _, err := ParseKernel(string(kernel)); err != nil {
		return Plan{}, err
	}

	p := Plan{
		Source:     source,
		CanvasSize: target,
		Background: bg,
		Mode:       mode,
		Anchor:     anchor,
		Kernel:     kernel,
	}

	sx := float64(target.Width) / float64(source.Width)
	sy := float64(target.Height) / float64(source.Height)

	switch mode {
	case Stretch:
		p.Scale = Scale{X: sx, Y: sy}
		p.ScaledSize = target
		return p, nil
	case Fit:
		s := math.Min(sx, sy)
		p.Scale = Scale{X: s, Y: s}
		p.ScaledSize = scaledSize(source, target, s, sx, sy)
		p.ScaledSize.Width = min(p.ScaledSize.Width, target.Width)
		p.ScaledSize.Height = min(p.ScaledSize.Height, target.Height)

		x, y := anchorOffsets(anchor, target.Width-p.ScaledSize.Width, target.Height-p.ScaledSize.Height)
		p.Placement = Offset{X: x, Y: y}
		return p, nil
	case Fill:
		s := math.Max(sx, sy)
		p.Scale = Scale{X: s, Y: s}
		p.ScaledSize = scaledSize(source, target, s, sx, sy)
		p.ScaledSize.Width = max(p.ScaledSize.Width, target.Width)
		p.ScaledSize.Height = max(p.ScaledSize.Height, target.Height)

		x, y := anchorOffsets(anchor, p.ScaledSize.Width-target.Width, p.ScaledSize.Height-target.Height)
		p.Crop = &Region{X: x, Y: y, Width: target.Width, Height: target.Height}
		return p, nil
	}

	return Plan{}, fmt.Errorf("%w: resize_mode %q", ErrInvalidOption, mode)
}

// Rescaled returns the plan for a scaled image of size d instead of ScaledSize.
// Fit placement and the Fill crop are re-anchored inside the unchanged canvas.
func (p Plan) Rescaled(d Dimensions) Plan {
	p.ScaledSize = d

	switch p.Mode {
	case Fit:
		x, y := anchorOffsets(p.Anchor, p.CanvasSize.Width-d.Width, p.CanvasSize.Height-d.Height)
		p.Placement = Offset{X: x, Y: y}
	case Fill:
		x, y := anchorOffsets(p.Anchor, d.Width-p.CanvasSize.Width, d.Height-p.CanvasSize.Height)
		p.Crop = &Region{X: x, Y: y, Width: min(p.CanvasSize.Width, d.Width), Height: min(p.CanvasSize.Height, d.Height)}
	}

	return p
}

// scaledSize rounds source*s half-up per axis. The axis whose ratio produced s is
// pinned to the target so float error never leaves it a pixel short or long.
func scaledSize(source, target Dimensions, s, sx, sy float64) Dimensions {
	d := Dimensions{Width: round(source.Width, s), Height: round(source.Height, s)}
	if s == sx {
		d.Width = target.Width
	}
	if s == sy {
		d.Height = target.Height
	}
	return d
}

func round(v int, s float64) int {
	return max(1, int(math.Floor(float64(v)*s+0.5)))
}

// anchorOffsets splits the free (Fit) or excess (Fill) space per axis. Top and Left
// start at 0, Bottom and Right take all of it, the other axis stays centered.
func anchorOffsets(anchor Anchor, dx, dy int) (int, int) {
	dx, dy = max(dx, 0), max(dy, 0)
	x, y := dx/2, dy/2

	switch anchor {
	case Top:
		y = 0
	case Bottom:
		y = dy
	case Left:
		x = 0
	case Right:
		x = dx
	}

	return x, y
}
