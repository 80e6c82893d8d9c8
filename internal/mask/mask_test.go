package mask

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomMask(r *rand.Rand, w, h int) *Mask {
	m := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, r.Intn(2) == 1)
		}
	}
	return m
}

func TestGrayRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for _, size := range [][2]int{{1, 1}, {4, 4}, {17, 5}, {64, 33}} {
		m := randomMask(r, size[0], size[1])
		img := m.Gray()

		for _, v := range img.Pix {
			assert.True(t, v == 0 || v == 255, "encoded sample %d", v)
		}

		assert.True(t, m.Equal(FromGray(img)), "size %v", size)
	}
}

func TestFromGrayHonoursBounds(t *testing.T) {
	img := image.NewGray(image.Rect(2, 3, 4, 5))
	img.SetGray(3, 4, color.Gray{Y: 255})

	m := FromGray(img)
	assert.Equal(t, 2, m.Width())
	assert.Equal(t, 2, m.Height())
	assert.True(t, m.At(1, 1))
	assert.Equal(t, 1, m.Count())
}

func TestAlgebra(t *testing.T) {
	a, err := FromBits(2, 2, []bool{true, true, false, false})
	require.NoError(t, err)
	b, err := FromBits(2, 2, []bool{true, false, true, false})
	require.NoError(t, err)

	and, err := a.And(b)
	require.NoError(t, err)
	assert.Equal(t, 1, and.Count())
	assert.True(t, and.At(0, 0))

	or, err := a.Or(b)
	require.NoError(t, err)
	assert.Equal(t, 3, or.Count())
	assert.False(t, or.At(1, 1))

	not := a.Not()
	assert.Equal(t, 2, not.Count())
	assert.True(t, not.At(0, 1))

	sub, err := and.Subset(a)
	require.NoError(t, err)
	assert.True(t, sub)

	sub, err = a.Subset(and)
	require.NoError(t, err)
	assert.False(t, sub)
}

func TestDimensionMismatch(t *testing.T) {
	a := New(2, 2)
	b := New(3, 2)

	_, err := a.And(b)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = a.Or(nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = a.Subset(b)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	assert.False(t, a.Equal(b))
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, 12, Full(4, 3).Count())
	assert.Zero(t, New(4, 3).Count())

	_, err := FromBits(2, 2, []bool{true})
	assert.Error(t, err)

	m, err := FromBytes(3, 1, []byte{0, 1, 255})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Count())
	assert.Equal(t, []byte{0, 255, 255}, m.Bytes())

	_, err = FromBytes(2, 2, []byte{0})
	assert.Error(t, err)
}

func TestOutOfBoundsAccess(t *testing.T) {
	m := Full(2, 2)
	assert.False(t, m.At(-1, 0))
	assert.False(t, m.At(2, 0))

	m.Set(5, 5, false)
	assert.Equal(t, 4, m.Count())

	c := m.Clone()
	c.Set(0, 0, false)
	assert.Equal(t, 4, m.Count())
	assert.Equal(t, 3, c.Count())
}
