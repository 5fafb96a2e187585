package domain

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Blend composites fg over bg, both non-premultiplied. Over an opaque background this
// is out = fg*alpha + bg*(1-alpha) per channel.
func Blend(fg, bg color.NRGBA) color.NRGBA {
	fa := float64(fg.A) / 0xff
	ba := float64(bg.A) / 0xff

	outA := fa + ba*(1-fa)
	if outA == 0 {
		return color.NRGBA{}
	}

	ch := func(f, b uint8) uint8 {
		v := (float64(f)*fa + float64(b)*ba*(1-fa)) / outA
		return uint8(min(255, v+0.5))
	}

	return color.NRGBA{
		R: ch(fg.R, bg.R),
		G: ch(fg.G, bg.G),
		B: ch(fg.B, bg.B),
		A: uint8(min(255, outA*0xff+0.5)),
	}
}

// ParseColor accepts CSS color names, #rgb, #rrggbb, "r,g,b" and "rgb(r,g,b)".
func ParseColor(s string) (color.RGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return DefaultBackground.Color, nil
	}

	if c, ok := colornames.Map[v]; ok {
		return c, nil
	}

	if strings.HasPrefix(v, "#") {
		c, err := colorful.Hex(expandShortHex(v))
		if err != nil {
			return color.RGBA{}, fmt.Errorf("%w: bg_color %q", ErrInvalidOption, s)
		}
		r, g, b := c.RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
	}

	v = strings.TrimSuffix(strings.TrimPrefix(v, "rgb("), ")")
	parts := strings.Split(v, ",")
	if len(parts) != 3 {
		return color.RGBA{}, fmt.Errorf("%w: bg_color %q", ErrInvalidOption, s)
	}

	var rgb [3]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("%w: bg_color %q", ErrInvalidOption, s)
		}
		rgb[i] = uint8(n)
	}

	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}, nil
}

func expandShortHex(v string) string {
	if len(v) != 4 {
		return v
	}
	return string([]byte{'#', v[1], v[1], v[2], v[2], v[3], v[3]})
}

// ParseBackground builds a Background from the bg_color and bg_alpha wire values.
func ParseBackground(colorValue, alphaValue string) (Background, error) {
	c, err := ParseColor(colorValue)
	if err != nil {
		return Background{}, err
	}

	bg := Background{Color: c, Alpha: 0xff}
	if strings.TrimSpace(alphaValue) == "" {
		return bg, nil
	}

	a, err := strconv.ParseUint(strings.TrimSpace(alphaValue), 10, 8)
	if err != nil {
		return Background{}, fmt.Errorf("%w: bg_alpha %q, expected 0-255", ErrInvalidOption, alphaValue)
	}
	bg.Alpha = uint8(a)

	return bg, nil
}
