// Package codec decodes uploads and encodes backend output for the in-process backends.
package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"imgbench/internal/core/domain"

	"github.com/chai2010/webp"
	"github.com/gen2brain/avif"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	// registers the webp decoder used by image.Decode
	_ "golang.org/x/image/webp"
)

// DefaultQuality is used for lossy formats when the caller passes 0.
const DefaultQuality = 80

// DecodeConfig reads only the header of data and returns the image size.
func DecodeConfig(data []byte) (domain.Dimensions, string, error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return domain.Dimensions{}, "", fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}

	d := domain.Dimensions{Width: cfg.Width, Height: cfg.Height}
	if !d.Valid() {
		return d, name, fmt.Errorf("%w: empty image %s", domain.ErrDecode, d)
	}

	return d, name, nil
}

// Decode returns the first frame of data.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}

	return img, nil
}

// Encode writes img in format f. Formats without alpha receive an opaque image, so
// callers flatten the canvas themselves when they care about the matte color.
func Encode(w io.Writer, img image.Image, f domain.Format, quality int) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", domain.ErrEncode)
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	var err error
	switch f {
	case domain.JPEG:
		err = jpeg.Encode(w, opaque(img), &jpeg.Options{Quality: quality})
	case domain.PNG:
		err = png.Encode(w, img)
	case domain.GIF:
		err = gif.Encode(w, img, &gif.Options{NumColors: 256})
	case domain.WEBP:
		err = webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	case domain.BMP:
		err = bmp.Encode(w, opaque(img))
	case domain.TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case domain.AVIF:
		err = avif.Encode(w, img, avif.Options{Quality: quality, QualityAlpha: quality, Speed: 6})
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, f)
	}

	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEncode, err)
	}

	return nil
}

// EncodeBytes is Encode into a fresh buffer.
func EncodeBytes(img image.Image, f domain.Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// opaque drops the alpha channel by copying premultiplied values onto an RGBA with
// alpha forced to 0xff. Transparent pixels become black, mirroring most encoders.
func opaque(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
