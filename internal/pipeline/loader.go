package pipeline

import (
	"errors"
	"fmt"
	"os"

	"rock-density/internal/opencv/conversion"
	"rock-density/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ErrUnreadableImage means a file exists but could not be decoded as an image.
var ErrUnreadableImage = errors.New("image could not be decoded")

// LoadBGR reads a colour image from disk in OpenCV's BGR order.
func LoadBGR(path string) (*safe.Mat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to locate image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnreadableImage, path)
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnreadableImage, path)
	}

	return safe.Adopt(mat, "loaded_image")
}

// LoadHSV reads a colour image and converts it to 8-bit HSV.
func LoadHSV(path string) (*safe.Mat, error) {
	bgr, err := LoadBGR(path)
	if err != nil {
		return nil, err
	}
	defer bgr.Close()

	hsv, err := conversion.ConvertBGRToHSV(bgr)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s to HSV: %w", path, err)
	}

	return hsv, nil
}
