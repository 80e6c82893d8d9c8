package conversion

import (
	"fmt"

	"rock-density/internal/config"
	"rock-density/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ConvertBGRToHSV converts BGR image to HSV color space
func ConvertBGRToHSV(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateColor8U(src, "BGR to HSV conversion"); err != nil {
		return nil, err
	}

	dst, err := safe.NewMatWithTag(src.Rows(), src.Cols(), gocv.MatTypeCV8UC3, "hsv")
	if err != nil {
		return nil, err
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	gocv.CvtColor(srcMat, &dstMat, gocv.ColorBGRToHSV)

	return dst, nil
}

// SplitHSV separates a 3-channel HSV Mat into hue, saturation and value planes.
// The caller owns the returned Mats.
func SplitHSV(src *safe.Mat) ([config.NumChannels]*safe.Mat, error) {
	var planes [config.NumChannels]*safe.Mat

	if err := safe.ValidateColor8U(src, "HSV split"); err != nil {
		return planes, err
	}

	split := gocv.Split(src.GetMat())
	if len(split) != config.NumChannels {
		for _, m := range split {
			m.Close()
		}
		return planes, fmt.Errorf("HSV split produced %d planes", len(split))
	}

	for i, m := range split {
		plane, err := safe.Adopt(m, config.Channels[i].String())
		if err != nil {
			for _, rest := range split[i+1:] {
				rest.Close()
			}
			safe.CloseAll(planes[:]...)
			return [config.NumChannels]*safe.Mat{}, fmt.Errorf("%s plane: %w", config.Channels[i], err)
		}
		planes[i] = plane
	}

	return planes, nil
}
