package main

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"rock-density/internal/config"
	"rock-density/internal/mask"
	"rock-density/internal/opencv/conversion"
	"rock-density/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func writeSolid(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 12, 8))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	bgr, err := conversion.ImageToBGR(img)
	require.NoError(t, err)
	defer bgr.Close()
	require.True(t, gocv.IMWrite(path, bgr.GetMat()))
}

func parse(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	fs, o := newFlagSet(io.Discard)
	require.NoError(t, fs.Parse(args))
	return buildConfig(fs, o)
}

func TestBuildConfigDefaults(t *testing.T) {
	cfg, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestBuildConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rocks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fusion: contrast-union\nblur_kernels:\n  hue: 9\nworkers: 3\n"), 0644))

	cfg, err := parse(t, "-config", path, "-workers", "5", "-range", "high.value=10:20", "-shadow-removal=false")
	require.NoError(t, err)

	assert.Equal(t, "contrast-union", cfg.Fusion)
	assert.Equal(t, 9, cfg.BlurKernels.Hue)
	assert.Equal(t, 5, cfg.Workers)
	assert.False(t, cfg.ShadowRemoval)
	assert.Equal(t, config.Range{Min: 10, Max: 20}, cfg.Thresholds.High.Value)
	assert.Equal(t, config.Default().Thresholds.Low, cfg.Thresholds.Low)
}

func TestBuildConfigRejectsBadValues(t *testing.T) {
	_, err := parse(t, "-blur-value", "4")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	fs, _ := newFlagSet(io.Discard)
	for _, bad := range []string{"low.hue", "low=0:3", "huge.hue=0:3", "low.red=0:3", "low.hue=0:999"} {
		assert.Error(t, fs.Parse([]string{"-range", bad}), bad)
	}
}

func TestRunSingleImage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "profile.png")
	writeSolid(t, src, color.NRGBA{B: 255, A: 255})
	maskOut := filepath.Join(dir, "out_mask.png")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-mask", maskOut, src}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "rock fragment density: 100.00%\n", stdout.String())

	m, err := pipeline.LoadMask(maskOut)
	require.NoError(t, err)
	assert.Equal(t, 12*8, m.Count())
}

func TestRunSingleImageWithReference(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "profile.png")
	writeSolid(t, src, color.NRGBA{B: 255, A: 255})

	ref := filepath.Join(dir, "labels.png")
	require.NoError(t, pipeline.SaveMask(ref, mask.Full(12, 8)))

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-reference", ref, src}, &stdout, &stderr), stderr.String())
	assert.Contains(t, stdout.String(), "IoU: 1.0000\n")
	assert.Contains(t, stdout.String(), "recall: 1.0000\n")

	small := filepath.Join(dir, "small.png")
	require.NoError(t, pipeline.SaveMask(small, mask.Full(3, 3)))
	stdout.Reset()
	assert.Equal(t, 1, run([]string{"-reference", small, src}, &stdout, &stderr))
}

func TestRunSingleImageFailures(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.jpg")
	require.NoError(t, os.WriteFile(corrupt, []byte("nope"), 0644))

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{corrupt}, &stdout, &stderr))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "could not be decoded")

	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Equal(t, 2, run([]string{"-fusion", "majority-vote", corrupt}, &stdout, &stderr))
	assert.Equal(t, 2, run([]string{"-no-such-flag"}, &stdout, &stderr))
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	writeSolid(t, filepath.Join(dir, "a.jpg"), color.NRGBA{B: 255, A: 255})
	writeSolid(t, filepath.Join(dir, "b.jpg"), color.NRGBA{R: 255, G: 128, A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.jpg"), []byte("broken"), 0644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-dir", dir, "-workers", "2"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "a.jpg : 100.00%\n")
	assert.Contains(t, out, "b.jpg : 0.00%\n")
	assert.Contains(t, out, "c.jpg : error: ")
	assert.Contains(t, out, "3 images, 1 failed, mean 50.00%")

	_, err := os.Stat(filepath.Join(dir, "a_mask.jpg"))
	assert.NoError(t, err)

	// Second run ignores the masks from the first.
	stdout.Reset()
	require.Equal(t, 0, run([]string{"-dir", dir, "-save-masks=false"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "3 images, 1 failed")
}

func TestRunBatchMissingDir(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"-dir", filepath.Join(t.TempDir(), "missing")}, &stdout, &stderr))
	assert.Equal(t, 2, run([]string{"-dir", t.TempDir(), "extra.jpg"}, &stdout, &stderr))
}
