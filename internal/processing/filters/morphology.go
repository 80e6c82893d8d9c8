package filters

import (
	"context"
	"fmt"
	"image"

	"rock-density/internal/opencv/conversion"
	"rock-density/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ShadowRemovalFilter divides a channel by its morphological closing so slow
// illumination gradients flatten out while local contrast survives.
type ShadowRemovalFilter struct {
	kernelSize int
}

func NewShadowRemovalFilter(kernelSize int) *ShadowRemovalFilter {
	return &ShadowRemovalFilter{kernelSize: kernelSize}
}

func (s *ShadowRemovalFilter) Name() string {
	return "shadow_removal"
}

func (s *ShadowRemovalFilter) Apply(ctx context.Context, input *safe.Mat) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateChannel8U(input, s.Name()); err != nil {
		return nil, err
	}
	if err := safe.ValidateKernelSize(s.kernelSize, false, s.Name()); err != nil {
		return nil, err
	}

	return s.removeShadows(input)
}

func (s *ShadowRemovalFilter) removeShadows(src *safe.Mat) (*safe.Mat, error) {
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: s.kernelSize, Y: s.kernelSize})
	defer kernel.Close()

	srcMat := src.GetMat()

	background := gocv.NewMat()
	defer background.Close()
	gocv.MorphologyEx(srcMat, &background, gocv.MorphClose, kernel)

	// A closing never darkens, so background is zero only where src is zero.
	// Flooring it at 1 turns 0/0 into 0 instead of NaN.
	floor, err := conversion.UniformChannel(src.Rows(), src.Cols(), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to create divisor floor: %w", err)
	}
	defer floor.Close()
	gocv.Max(background, floor.GetMat(), &background)

	srcF := gocv.NewMat()
	defer srcF.Close()
	srcMat.ConvertTo(&srcF, gocv.MatTypeCV32F)

	backgroundF := gocv.NewMat()
	defer backgroundF.Close()
	background.ConvertTo(&backgroundF, gocv.MatTypeCV32F)

	ratio := gocv.NewMat()
	defer ratio.Close()
	gocv.Divide(srcF, backgroundF, &ratio)

	result := gocv.NewMat()
	ratio.ConvertToWithParams(&result, gocv.MatTypeCV8U, 255, 0)

	return safe.Adopt(result, s.Name())
}

// MaxFilter widens small bright objects with a dilation, then stretches the
// result back over the full 8-bit range.
type MaxFilter struct {
	kernelSize int
}

func NewMaxFilter(kernelSize int) *MaxFilter {
	return &MaxFilter{kernelSize: kernelSize}
}

func (m *MaxFilter) Name() string {
	return "contrast_boost"
}

func (m *MaxFilter) Apply(ctx context.Context, input *safe.Mat) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateChannel8U(input, m.Name()); err != nil {
		return nil, err
	}
	if err := safe.ValidateKernelSize(m.kernelSize, false, m.Name()); err != nil {
		return nil, err
	}

	return m.applyMaxFilter(input)
}

func (m *MaxFilter) applyMaxFilter(src *safe.Mat) (*safe.Mat, error) {
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: m.kernelSize, Y: m.kernelSize})
	defer kernel.Close()

	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(src.GetMat(), &dilated, kernel)

	result := gocv.NewMat()
	gocv.Normalize(dilated, &result, 0, 255, gocv.NormMinMax)

	return safe.Adopt(result, m.Name())
}
