package conversion

import (
	"fmt"
	"image"
	"image/color"

	"rock-density/internal/mask"
	"rock-density/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// MaskFromMat decodes a single-channel 8-bit Mat; every non-zero sample is true.
func MaskFromMat(src *safe.Mat) (*mask.Mask, error) {
	if err := safe.ValidateChannel8U(src, "Mat to mask conversion"); err != nil {
		return nil, err
	}

	data, err := src.Bytes()
	if err != nil {
		return nil, err
	}

	return mask.FromBytes(src.Cols(), src.Rows(), data)
}

// MaskToMat encodes a mask as a single-channel 8-bit Mat of 255 and 0.
func MaskToMat(m *mask.Mask) (*safe.Mat, error) {
	if m == nil || m.Width() == 0 || m.Height() == 0 {
		return nil, fmt.Errorf("cannot convert an empty mask to Mat")
	}

	return safe.NewMatFromBytes(m.Height(), m.Width(), gocv.MatTypeCV8UC1, m.Bytes(), "mask")
}

// ImageToBGR converts a Go image into a 3-channel BGR Mat as gocv.IMRead would produce.
func ImageToBGR(img image.Image) (*safe.Mat, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	data := make([]byte, 0, width*height*3)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			data = append(data, c.B, c.G, c.R)
		}
	}

	return safe.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, data, "bgr")
}
