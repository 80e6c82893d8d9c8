package conversion

import (
	"fmt"

	"rock-density/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// UniformChannel returns a single-channel 8-bit Mat filled with value.
func UniformChannel(rows, cols int, value uint8) (*safe.Mat, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", cols, rows)
	}

	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(value), 0, 0, 0), rows, cols, gocv.MatTypeCV8UC1)
	return safe.Adopt(mat, "uniform")
}

// ChannelFromBytes builds a single-channel 8-bit Mat from row-major samples.
func ChannelFromBytes(rows, cols int, data []byte) (*safe.Mat, error) {
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%d samples cannot fill a %dx%d channel", len(data), cols, rows)
	}

	return safe.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC1, data, "channel")
}

// MinMax returns the smallest and largest sample of a single-channel Mat.
func MinMax(src *safe.Mat) (minVal, maxVal float64, err error) {
	if err := safe.ValidateChannel8U(src, "min/max"); err != nil {
		return 0, 0, err
	}

	lo, hi, _, _ := gocv.MinMaxLoc(src.GetMat())
	return float64(lo), float64(hi), nil
}
