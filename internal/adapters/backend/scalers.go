package backend

import (
	"image"

	"imgbench/internal/core/domain"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// imagingScaler uses "github.com/disintegration/imaging"
type imagingScaler struct{}

func (imagingScaler) Scale(img image.Image, size domain.Dimensions, kernel domain.Kernel) image.Image {
	return imaging.Resize(img, size.Width, size.Height, lookupKernel(imagingFilters, kernel))
}

// giftScaler uses "github.com/disintegration/gift"
type giftScaler struct{}

func (giftScaler) Scale(img image.Image, size domain.Dimensions, kernel domain.Kernel) image.Image {
	g := gift.New(gift.Resize(size.Width, size.Height, lookupKernel(giftResamplings, kernel)))
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

// xdrawScaler uses "golang.org/x/image/draw"
type xdrawScaler struct{}

func (xdrawScaler) Scale(img image.Image, size domain.Dimensions, kernel domain.Kernel) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))
	lookupKernel(xdrawInterpolators, kernel).Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// bildScaler uses "github.com/anthonynsimon/bild/transform"
type bildScaler struct{}

func (bildScaler) Scale(img image.Image, size domain.Dimensions, kernel domain.Kernel) image.Image {
	return transform.Resize(img, size.Width, size.Height, lookupKernel(bildFilters, kernel))
}

// nfntScaler uses "github.com/nfnt/resize"
type nfntScaler struct{}

func (nfntScaler) Scale(img image.Image, size domain.Dimensions, kernel domain.Kernel) image.Image {
	return resize.Resize(uint(size.Width), uint(size.Height), img, lookupKernel(nfntInterpolations, kernel))
}
