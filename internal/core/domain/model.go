package domain

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strings"
)

// Dimensions is a pixel size, either of a source image or of a requested target.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// Pixels returns the area of d.
func (d Dimensions) Pixels() int64 {
	return int64(d.Width) * int64(d.Height)
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// ParseDimensions reads a "WxH" string.
func ParseDimensions(s string) (Dimensions, error) {
	var d Dimensions
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return d, fmt.Errorf("%w: %q is not WxH", ErrInvalidDimensions, s)
	}

	if _, err := fmt.Sscanf(w+" "+h, "%d %d", &d.Width, &d.Height); err != nil {
		return d, fmt.Errorf("%w: %q is not WxH", ErrInvalidDimensions, s)
	}

	if !d.Valid() {
		return d, fmt.Errorf("%w: %s", ErrInvalidDimensions, d)
	}

	return d, nil
}

type ResizeMode string

const (
	// Fit scales the image to fit inside the target box and pads the rest with the background.
	Fit ResizeMode = "fit"
	// Fill scales the image to cover the target box and crops the excess.
	Fill ResizeMode = "fill"
	// Stretch scales each axis independently to the target box.
	Stretch ResizeMode = "stretch"
)

func ParseResizeMode(s string) (ResizeMode, error) {
	switch m := ResizeMode(strings.ToLower(strings.TrimSpace(s))); m {
	case Fit, Fill, Stretch:
		return m, nil
	}
	return "", fmt.Errorf("%w: resize_mode %q, expected fit, fill or stretch", ErrInvalidOption, s)
}

type Anchor string

const (
	Center Anchor = "center"
	Top    Anchor = "top"
	Bottom Anchor = "bottom"
	Left   Anchor = "left"
	Right  Anchor = "right"
)

func ParseAnchor(s string) (Anchor, error) {
	switch a := Anchor(strings.ToLower(strings.TrimSpace(s))); a {
	case Center, Top, Bottom, Left, Right:
		return a, nil
	}
	return "", fmt.Errorf("%w: crop_position %q, expected center, top, bottom, left or right", ErrInvalidOption, s)
}

// Kernel is the resampling hint forwarded to the backend. Geometry never depends on it.
type Kernel string

const (
	Nearest  Kernel = "nearest"
	Bilinear Kernel = "bilinear"
	Bicubic  Kernel = "bicubic"
	Lanczos  Kernel = "lanczos"
	Hanning  Kernel = "hanning"
)

// Kernels lists every kernel in a stable order.
var Kernels = []Kernel{Nearest, Bilinear, Bicubic, Lanczos, Hanning}

func ParseKernel(s string) (Kernel, error) {
	switch k := Kernel(strings.ToLower(strings.TrimSpace(s))); k {
	case Nearest, Bilinear, Bicubic, Lanczos, Hanning:
		return k, nil
	}
	return "", fmt.Errorf("%w: resampling %q, expected nearest, bilinear, bicubic, lanczos or hanning",
		ErrInvalidOption, s)
}

// Fallback returns the kernel a backend should use when it has no exact match for k.
// Nearest, Bilinear and Bicubic are expected everywhere and fall back to themselves.
func (k Kernel) Fallback() Kernel {
	switch k {
	case Lanczos:
		return Bicubic
	case Hanning:
		return Bilinear
	}
	return k
}

// Background fills the canvas area not covered by the image in Fit mode.
type Background struct {
	Color color.RGBA `json:"-"`
	Alpha uint8      `json:"alpha"`
}

// DefaultBackground is opaque white.
var DefaultBackground = Background{Color: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, Alpha: 0xff}

func (b Background) NRGBA() color.NRGBA {
	return color.NRGBA{R: b.Color.R, G: b.Color.G, B: b.Color.B, A: b.Alpha}
}

// Hex renders the color as #rrggbbaa.
func (b Background) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", b.Color.R, b.Color.G, b.Color.B, b.Alpha)
}

func (b Background) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Color string `json:"color"`
		Alpha uint8  `json:"alpha"`
	}{
		Color: fmt.Sprintf("#%02x%02x%02x", b.Color.R, b.Color.G, b.Color.B),
		Alpha: b.Alpha,
	})
}

// Effective returns the background every backend must paint for format f. Formats
// without an alpha channel get the background flattened over opaque white.
func (b Background) Effective(f Format) Background {
	if f.HasAlpha() || b.Alpha == 0xff {
		return b
	}

	c := Blend(b.NRGBA(), color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	return Background{Color: color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}, Alpha: 0xff}
}

type Format string

const (
	JPEG Format = "jpg"
	PNG  Format = "png"
	GIF  Format = "gif"
	WEBP Format = "webp"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	AVIF Format = "avif"
)

// Formats lists every output format in a stable order.
var Formats = []Format{JPEG, PNG, GIF, WEBP, BMP, TIFF, AVIF}

func ParseFormat(s string) (Format, error) {
	switch f := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."); f {
	case "jpg", "jpeg":
		return JPEG, nil
	case "tif", "tiff":
		return TIFF, nil
	case "png", "gif", "webp", "bmp", "avif":
		return Format(f), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

func (f Format) HasAlpha() bool {
	return f != JPEG && f != BMP
}

func (f Format) Ext() string {
	return "." + string(f)
}
