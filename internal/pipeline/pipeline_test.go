package pipeline

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"rock-density/internal/config"
	"rock-density/internal/mask"
	"rock-density/internal/opencv/conversion"
	"rock-density/internal/opencv/safe"
	"rock-density/internal/processing/density"
	"rock-density/internal/processing/fusion"
	"rock-density/internal/processing/threshold"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func hsvOf(t *testing.T, img image.Image) *safe.Mat {
	t.Helper()
	bgr, err := conversion.ImageToBGR(img)
	require.NoError(t, err)
	defer bgr.Close()

	hsv, err := conversion.ConvertBGRToHSV(bgr)
	require.NoError(t, err)
	t.Cleanup(hsv.Close)
	return hsv
}

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	bgr, err := conversion.ImageToBGR(img)
	require.NoError(t, err)
	defer bgr.Close()
	require.True(t, gocv.IMWrite(path, bgr.GetMat()))
}

func newPipeline(t *testing.T, cfg config.Config, opts ...Option) *Pipeline {
	t.Helper()
	pl, err := New(cfg, nil, opts...)
	require.NoError(t, err)
	return pl
}

func TestRunDefaultPolicy(t *testing.T) {
	pl := newPipeline(t, config.Default())

	// Red has hue 0, inside the low-contrast hue band, so nothing is rock.
	r, err := pl.Run(context.Background(), hsvOf(t, solid(24, 16, red)))
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.Density)
	assert.Equal(t, "0.00%", r.Percent())
	assert.Equal(t, 24, r.Rock.Width())
	assert.Equal(t, 16, r.Rock.Height())
	assert.Equal(t, 24*16, r.Profile.Count())
	assert.Len(t, r.Masks, 3)

	// Blue has hue 120, outside it, so everything is rock.
	r, err = pl.Run(context.Background(), hsvOf(t, solid(24, 16, blue)))
	require.NoError(t, err)
	assert.Equal(t, 1.0, r.Density)
	assert.Equal(t, "100.00%", r.Percent())

	for _, stage := range []string{StagePreprocess, StageSegment, StageFuse, StageDensity} {
		assert.Contains(t, r.Timings, stage)
		assert.Len(t, pl.Tracker().GetTimings(stage), 2)
	}
}

func TestRunHalfAndHalf(t *testing.T) {
	img := solid(40, 40, red)
	for y := 0; y < 40; y++ {
		for x := 20; x < 40; x++ {
			img.SetNRGBA(x, y, blue)
		}
	}

	r, err := newPipeline(t, config.Default()).Run(context.Background(), hsvOf(t, img))
	require.NoError(t, err)

	// The hue blur smears the border, but each side stays on its own side of 0.5.
	assert.InDelta(t, 0.5, r.Density, 0.1)
	assert.True(t, r.Rock.At(39, 20))
	assert.False(t, r.Rock.At(0, 20))
}

func TestRunWithInjectedPolicy(t *testing.T) {
	policy := fusion.Func{
		PolicyName: "everything",
		Fn: func(tm threshold.TierMasks) (*mask.Mask, error) {
			m, _ := tm.Lookup(config.Low, config.Hue)
			return mask.Full(m.Width(), m.Height()), nil
		},
	}

	pl := newPipeline(t, config.Default(), WithPolicy(policy))
	assert.Equal(t, "everything", pl.Policy().Name())

	r, err := pl.Run(context.Background(), hsvOf(t, solid(8, 8, red)))
	require.NoError(t, err)
	assert.Equal(t, 1.0, r.Density)
}

func TestRunContrastUnionFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Fusion = "contrast-union"
	pl := newPipeline(t, cfg)
	assert.Equal(t, "contrast-union", pl.Policy().Name())

	// Red: low hue matches, so the union covers everything.
	r, err := pl.Run(context.Background(), hsvOf(t, solid(8, 8, red)))
	require.NoError(t, err)
	assert.Equal(t, 1.0, r.Density)
}

func TestRunProfileErrors(t *testing.T) {
	empty := ProfileFunc(func(hsv *safe.Mat) (*mask.Mask, error) {
		return mask.New(hsv.Cols(), hsv.Rows()), nil
	})
	_, err := newPipeline(t, config.Default(), WithProfileDetector(empty)).
		Run(context.Background(), hsvOf(t, solid(4, 4, red)))
	assert.ErrorIs(t, err, density.ErrEmptyProfile)

	wrongSize := ProfileFunc(func(hsv *safe.Mat) (*mask.Mask, error) {
		return mask.Full(1, 1), nil
	})
	_, err = newPipeline(t, config.Default(), WithProfileDetector(wrongSize)).
		Run(context.Background(), hsvOf(t, solid(4, 4, red)))
	assert.ErrorIs(t, err, density.ErrDimensionMismatch)
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Fusion = "nonsense"
	_, err := New(cfg, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.ErrorIs(t, err, fusion.ErrUnknownPolicy)

	cfg = config.Default()
	cfg.BlurKernels.Value = 8
	_, err = New(cfg, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRunRejectsNonColorInput(t *testing.T) {
	gray, err := conversion.UniformChannel(4, 4, 1)
	require.NoError(t, err)
	defer gray.Close()

	_, err = newPipeline(t, config.Default()).Run(context.Background(), gray)
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPipeline(t, config.Default()).Run(ctx, hsvOf(t, solid(4, 4, red)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "profile.png")
	writeImage(t, good, solid(10, 6, blue))

	pl := newPipeline(t, config.Default())

	r, err := pl.ProcessFile(context.Background(), good)
	require.NoError(t, err)
	assert.Equal(t, 1.0, r.Density)

	corrupt := filepath.Join(dir, "corrupt.jpg")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a jpeg"), 0644))
	_, err = pl.ProcessFile(context.Background(), corrupt)
	assert.ErrorIs(t, err, ErrUnreadableImage)

	_, err = pl.ProcessFile(context.Background(), filepath.Join(dir, "missing.jpg"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = pl.ProcessFile(context.Background(), dir)
	assert.ErrorIs(t, err, ErrUnreadableImage)
}

func TestSaveTierMasks(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "profile.jpg")

	r, err := newPipeline(t, config.Default()).Run(context.Background(), hsvOf(t, solid(6, 6, red)))
	require.NoError(t, err)
	require.NoError(t, SaveTierMasks(src, r))

	lowHue, err := LoadMask(TierMaskPath(src, config.Low, config.Hue))
	require.NoError(t, err)
	assert.Equal(t, 36, lowHue.Count())

	_, err = os.Stat(filepath.Join(dir, "profile_high_value.png"))
	assert.NoError(t, err)
}
