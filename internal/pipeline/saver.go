package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"rock-density/internal/config"
	"rock-density/internal/mask"
	"rock-density/internal/opencv/conversion"

	"gocv.io/x/gocv"
)

// MaskSuffix marks files written by SaveMask so batch walks can skip them.
const MaskSuffix = "_mask"

// MaskPath names the mask written next to src: photo.jpg → photo_mask.jpg.
func MaskPath(src string) string {
	ext := filepath.Ext(src)
	return strings.TrimSuffix(src, ext) + MaskSuffix + ext
}

// IsMaskPath reports whether path looks like the output of MaskPath.
func IsMaskPath(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), MaskSuffix)
}

// TierMaskPath names the debug dump of one tier/channel mask: photo_low_hue.png.
func TierMaskPath(src string, tier config.Tier, ch config.Channel) string {
	ext := filepath.Ext(src)
	return fmt.Sprintf("%s_%s_%s.png", strings.TrimSuffix(src, ext), tier, ch)
}

// SaveMask writes m as a single-channel image, 255 for true and 0 for false.
// The format follows the path extension.
func SaveMask(path string, m *mask.Mask) error {
	mat, err := conversion.MaskToMat(m)
	if err != nil {
		return fmt.Errorf("failed to encode mask: %w", err)
	}
	defer mat.Close()

	if ok := gocv.IMWrite(path, mat.GetMat()); !ok {
		return fmt.Errorf("failed to write mask to %s", path)
	}

	return nil
}

// LoadMask reads a mask written by SaveMask. Samples above 127 count as true so
// lossy formats survive the round trip.
func LoadMask(path string) (*mask.Mask, error) {
	mat := gocv.IMRead(path, gocv.IMReadGrayScale)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnreadableImage, path)
	}
	defer mat.Close()

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(mat, &binary, 127, 255, gocv.ThresholdBinary)

	data := binary.ToBytes()
	return mask.FromBytes(binary.Cols(), binary.Rows(), data)
}
