package backend

import (
	"image"
	"image/color"
	"testing"

	"imgbench/internal/core/domain"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	opaqueBlue = color.NRGBA{B: 0xff, A: 0xff}
	clearRed   = color.NRGBA{R: 0xff}
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	return imaging.New(w, h, c)
}

func TestCompose_FitBands(t *testing.T) {
	job := wideJob(t, domain.Fit, domain.PNG)
	job.Plan.Background = domain.Background{Color: color.RGBA{G: 0xff, A: 0xff}, Alpha: 0xff}

	out := Compose(job.Plan, solid(800, 400, opaqueBlue), domain.PNG)

	require.Equal(t, image.Rect(0, 0, 800, 800), out.Bounds())
	assert.Equal(t, color.NRGBA{G: 0xff, A: 0xff}, out.NRGBAAt(400, 100))
	assert.Equal(t, color.NRGBA{G: 0xff, A: 0xff}, out.NRGBAAt(0, 799))
	assert.Equal(t, opaqueBlue, out.NRGBAAt(400, 200))
	assert.Equal(t, opaqueBlue, out.NRGBAAt(799, 599))
	assert.Equal(t, color.NRGBA{G: 0xff, A: 0xff}, out.NRGBAAt(799, 600))
}

func TestCompose_FitTranslucentBackground(t *testing.T) {
	job := translucent(wideJob(t, domain.Fit, domain.PNG))

	out := Compose(job.Plan, solid(800, 400, opaqueBlue), domain.PNG)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0x80}, out.NRGBAAt(0, 0))

	out = Compose(job.Plan, solid(800, 400, opaqueBlue), domain.JPEG)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0x7f, B: 0x7f, A: 0xff}, out.NRGBAAt(0, 0))
}

func TestCompose_FillCrop(t *testing.T) {
	job := wideJob(t, domain.Fill, domain.PNG)

	scaled := solid(1600, 800, opaqueBlue)
	// mark the pixel that lands on the crop origin
	scaled.SetNRGBA(400, 0, color.NRGBA{R: 0xff, A: 0xff})

	out := Compose(job.Plan, scaled, domain.PNG)

	require.Equal(t, image.Rect(0, 0, 800, 800), out.Bounds())
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, out.NRGBAAt(0, 0))
	assert.Equal(t, opaqueBlue, out.NRGBAAt(1, 0))
}

func TestCompose_FlattenWithoutAlpha(t *testing.T) {
	job := wideJob(t, domain.Stretch, domain.BMP)

	out := Compose(job.Plan, solid(800, 800, clearRed), domain.BMP)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, out.NRGBAAt(10, 10))

	out = Compose(job.Plan, solid(800, 800, clearRed), domain.PNG)
	assert.Equal(t, uint8(0), out.NRGBAAt(10, 10).A)
}

func TestComposeScratch(t *testing.T) {
	job := wideJob(t, domain.Fit, domain.PNG)

	path, err := job.Scratch.Write("scaled.png", solidPNG(t, 800, 400, opaqueBlue))
	require.NoError(t, err)

	data, err := composeScratch(job, path)
	require.NoError(t, err)

	img, err := decodeTest(data)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 800, 800), img.Bounds())
}

func TestComposeScratch_ReanchorsToProducedSize(t *testing.T) {
	job := newJob(t, domain.Dimensions{Width: 4000, Height: 2000}, domain.Dimensions{Width: 800, Height: 800},
		domain.Fit, domain.Bottom, domain.PNG)
	translucent(job)

	// the tool rounded to 798x402 instead of the planned 800x400
	path, err := job.Scratch.Write("scaled.png", solidPNG(t, 798, 402, opaqueBlue))
	require.NoError(t, err)

	data, err := composeScratch(job, path)
	require.NoError(t, err)

	img, err := decodeTest(data)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 800, 800), img.Bounds())

	bg := color.NRGBA{R: 0xff, A: 0x80}
	assertColor(t, bg, img.At(0, 500))
	assertColor(t, opaqueBlue, img.At(1, 500))
	assertColor(t, opaqueBlue, img.At(798, 799))
	assertColor(t, bg, img.At(799, 500))
	assertColor(t, bg, img.At(400, 397))
	assertColor(t, opaqueBlue, img.At(400, 398))
}

func TestComposeScratch_Missing(t *testing.T) {
	job := wideJob(t, domain.Fit, domain.PNG)

	_, err := composeScratch(job, job.Scratch.Path("scaled.png"))
	require.ErrorIs(t, err, domain.ErrEncode)
}
