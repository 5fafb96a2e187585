package backend

import (
	"imgbench/internal/core/domain"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Kernel names per engine. A missing entry means the engine has no exact match and
// lookupKernel falls back via domain.Kernel.Fallback.

var magickFilters = map[domain.Kernel]string{
	domain.Nearest:  "Point",
	domain.Bilinear: "Triangle",
	domain.Bicubic:  "Catrom",
	domain.Lanczos:  "Lanczos",
	domain.Hanning:  "Hanning",
}

var gmFilters = map[domain.Kernel]string{
	domain.Nearest:  "Point",
	domain.Bilinear: "Triangle",
	domain.Bicubic:  "Catrom",
	domain.Lanczos:  "Lanczos",
	domain.Hanning:  "Hanning",
}

var ffmpegFlags = map[domain.Kernel]string{
	domain.Nearest:  "neighbor",
	domain.Bilinear: "bilinear",
	domain.Bicubic:  "bicubic",
	domain.Lanczos:  "lanczos",
}

var vipsKernels = map[domain.Kernel]string{
	domain.Nearest:  "nearest",
	domain.Bilinear: "linear",
	domain.Bicubic:  "cubic",
	domain.Lanczos:  "lanczos3",
}

var nconvertTypes = map[domain.Kernel]string{
	domain.Nearest:  "quick",
	domain.Bilinear: "linear",
	domain.Bicubic:  "mitchell",
	domain.Lanczos:  "lanczos",
	domain.Hanning:  "hanning",
}

var gimpInterpolations = map[domain.Kernel]string{
	domain.Nearest:  "INTERPOLATION-NONE",
	domain.Bilinear: "INTERPOLATION-LINEAR",
	domain.Bicubic:  "INTERPOLATION-CUBIC",
}

var imagingFilters = map[domain.Kernel]imaging.ResampleFilter{
	domain.Nearest:  imaging.NearestNeighbor,
	domain.Bilinear: imaging.Linear,
	domain.Bicubic:  imaging.CatmullRom,
	domain.Lanczos:  imaging.Lanczos,
	domain.Hanning:  imaging.Hann,
}

var giftResamplings = map[domain.Kernel]gift.Resampling{
	domain.Nearest:  gift.NearestNeighborResampling,
	domain.Bilinear: gift.LinearResampling,
	domain.Bicubic:  gift.CubicResampling,
	domain.Lanczos:  gift.LanczosResampling,
}

var xdrawInterpolators = map[domain.Kernel]draw.Interpolator{
	domain.Nearest:  draw.NearestNeighbor,
	domain.Bilinear: draw.BiLinear,
	domain.Bicubic:  draw.CatmullRom,
}

var bildFilters = map[domain.Kernel]transform.ResampleFilter{
	domain.Nearest:  transform.NearestNeighbor,
	domain.Bilinear: transform.Linear,
	domain.Bicubic:  transform.CatmullRom,
	domain.Lanczos:  transform.Lanczos,
}

var nfntInterpolations = map[domain.Kernel]resize.InterpolationFunction{
	domain.Nearest:  resize.NearestNeighbor,
	domain.Bilinear: resize.Bilinear,
	domain.Bicubic:  resize.Bicubic,
	domain.Lanczos:  resize.Lanczos3,
}

// lookupKernel returns the engine value for k, substituting the documented fallback
// when the engine lacks k.
func lookupKernel[T any](table map[domain.Kernel]T, k domain.Kernel) T {
	if v, ok := table[k]; ok {
		return v
	}
	return table[k.Fallback()]
}
