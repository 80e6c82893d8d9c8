package filters

import (
	"context"
	"image"

	"rock-density/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// GaussianFilter smooths a channel with a square kernel; sigma is derived from
// the kernel size.
type GaussianFilter struct {
	kernelSize int
}

func NewGaussianFilter(kernelSize int) *GaussianFilter {
	return &GaussianFilter{kernelSize: kernelSize}
}

func (g *GaussianFilter) Name() string {
	return "gaussian_filter"
}

func (g *GaussianFilter) Apply(ctx context.Context, input *safe.Mat) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateChannel8U(input, g.Name()); err != nil {
		return nil, err
	}
	if err := safe.ValidateKernelSize(g.kernelSize, true, g.Name()); err != nil {
		return nil, err
	}

	return g.applyGaussianBlur(input)
}

func (g *GaussianFilter) applyGaussianBlur(src *safe.Mat) (*safe.Mat, error) {
	dst := gocv.NewMat()
	gocv.GaussianBlur(src.GetMat(), &dst, image.Point{X: g.kernelSize, Y: g.kernelSize}, 0, 0, gocv.BorderDefault)

	return safe.Adopt(dst, g.Name())
}
