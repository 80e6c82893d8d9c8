package pipeline

import (
	"rock-density/internal/mask"
	"rock-density/internal/opencv/safe"
)

// ProfileDetector demarcates the soil-profile region of an HSV image.
type ProfileDetector interface {
	Detect(hsv *safe.Mat) (*mask.Mask, error)
}

// FullFrame treats the whole photograph as profile. Placeholder until a real
// profile detector exists.
type FullFrame struct{}

func (FullFrame) Detect(hsv *safe.Mat) (*mask.Mask, error) {
	if err := safe.ValidateMatForOperation(hsv, "profile detection"); err != nil {
		return nil, err
	}
	return mask.Full(hsv.Cols(), hsv.Rows()), nil
}

// ProfileFunc adapts a function into a ProfileDetector.
type ProfileFunc func(hsv *safe.Mat) (*mask.Mask, error)

func (f ProfileFunc) Detect(hsv *safe.Mat) (*mask.Mask, error) {
	return f(hsv)
}
