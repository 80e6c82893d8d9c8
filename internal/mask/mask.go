// Package mask implements the boolean rasters produced by segmentation.
package mask

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrDimensionMismatch is returned when two masks of different shape are combined.
var ErrDimensionMismatch = errors.New("mask dimensions differ")

// Mask is a row-major boolean raster. True marks a pixel matching some predicate.
type Mask struct {
	width  int
	height int
	bits   []bool
}

// New returns an all-false mask.
func New(width, height int) *Mask {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Mask{
		width:  width,
		height: height,
		bits:   make([]bool, width*height),
	}
}

// Full returns an all-true mask.
func Full(width, height int) *Mask {
	m := New(width, height)
	for i := range m.bits {
		m.bits[i] = true
	}
	return m
}

// FromBits wraps a row-major slice. The slice is copied.
func FromBits(width, height int, bits []bool) (*Mask, error) {
	if width < 0 || height < 0 || len(bits) != width*height {
		return nil, fmt.Errorf("%d bits cannot fill a %dx%d mask", len(bits), width, height)
	}
	m := New(width, height)
	copy(m.bits, bits)
	return m, nil
}

// FromBytes treats every non-zero sample as true.
func FromBytes(width, height int, data []byte) (*Mask, error) {
	if width < 0 || height < 0 || len(data) != width*height {
		return nil, fmt.Errorf("%d bytes cannot fill a %dx%d mask", len(data), width, height)
	}
	m := New(width, height)
	for i, v := range data {
		m.bits[i] = v != 0
	}
	return m, nil
}

func (m *Mask) Width() int  { return m.width }
func (m *Mask) Height() int { return m.height }

// At reports the pixel at (x, y); out-of-bounds reads are false.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.bits[y*m.width+x]
}

// Set writes the pixel at (x, y); out-of-bounds writes are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	m.bits[y*m.width+x] = v
}

// Count returns the number of true pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// SameSize reports whether o has the same width and height.
func (m *Mask) SameSize(o *Mask) bool {
	return o != nil && m.width == o.width && m.height == o.height
}

func (m *Mask) checkSize(o *Mask) error {
	if !m.SameSize(o) {
		if o == nil {
			return fmt.Errorf("%w: %dx%d vs nil", ErrDimensionMismatch, m.width, m.height)
		}
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, m.width, m.height, o.width, o.height)
	}
	return nil
}

// And returns the pixelwise conjunction as a new mask.
func (m *Mask) And(o *Mask) (*Mask, error) {
	if err := m.checkSize(o); err != nil {
		return nil, err
	}
	out := New(m.width, m.height)
	for i := range m.bits {
		out.bits[i] = m.bits[i] && o.bits[i]
	}
	return out, nil
}

// Or returns the pixelwise disjunction as a new mask.
func (m *Mask) Or(o *Mask) (*Mask, error) {
	if err := m.checkSize(o); err != nil {
		return nil, err
	}
	out := New(m.width, m.height)
	for i := range m.bits {
		out.bits[i] = m.bits[i] || o.bits[i]
	}
	return out, nil
}

// Not returns the pixelwise negation as a new mask.
func (m *Mask) Not() *Mask {
	out := New(m.width, m.height)
	for i, b := range m.bits {
		out.bits[i] = !b
	}
	return out
}

// Subset reports whether every true pixel of m is also true in o.
func (m *Mask) Subset(o *Mask) (bool, error) {
	if err := m.checkSize(o); err != nil {
		return false, err
	}
	for i, b := range m.bits {
		if b && !o.bits[i] {
			return false, nil
		}
	}
	return true, nil
}

// Equal reports whether both masks have the same shape and pixels.
func (m *Mask) Equal(o *Mask) bool {
	if !m.SameSize(o) {
		return false
	}
	for i := range m.bits {
		if m.bits[i] != o.bits[i] {
			return false
		}
	}
	return true
}

func (m *Mask) Clone() *Mask {
	out := New(m.width, m.height)
	copy(out.bits, m.bits)
	return out
}

// Bytes encodes the mask row-major as 255 for true and 0 for false.
func (m *Mask) Bytes() []byte {
	data := make([]byte, len(m.bits))
	for i, b := range m.bits {
		if b {
			data[i] = 255
		}
	}
	return data
}

// Gray encodes the mask as an 8-bit image with 255 for true and 0 for false.
func (m *Mask) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.width, m.height))
	copy(img.Pix, m.Bytes())
	return img
}

// FromGray decodes an 8-bit image, treating every non-zero pixel as true.
func FromGray(img *image.Gray) *Mask {
	b := img.Bounds()
	m := New(b.Dx(), b.Dy())
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			m.bits[y*m.width+x] = img.GrayAt(b.Min.X+x, b.Min.Y+y) != color.Gray{Y: 0}
		}
	}
	return m
}
