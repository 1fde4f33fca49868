package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Mask is a binary image stored row-major.
//
// Pixel (x, y) of the mask corresponds to pixel (Origin.X+x, Origin.Y+y) of
// the image it was computed from.
type Mask struct {
	Width  int
	Height int
	Origin image.Point
	Pix    []bool
}

// NewMask allocates an all-false mask.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]bool, width*height),
	}
}

// At reports the mask value at (x, y). Out-of-range coordinates read as false.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// set writes the mask value at (x, y). Out-of-range coordinates are ignored.
func (m *Mask) set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Gray renders the mask as a black image with set pixels in white.
func (m *Mask) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v {
			img.Pix[i] = 255
		}
	}
	return img
}

// MaskFromGray marks every pixel of g at or above level.
func MaskFromGray(g image.Image, level uint8) *Mask {
	bounds := g.Bounds()
	m := NewMask(bounds.Dx(), bounds.Dy())
	m.Origin = bounds.Min
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			gray := color.GrayModel.Convert(g.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.Gray)
			if gray.Y >= level {
				m.Pix[y*m.Width+x] = true
			}
		}
	}
	return m
}

// SaveMask writes the mask to path. The format follows the file extension.
func SaveMask(m *Mask, path string) error {
	if err := imaging.Save(m.Gray(), path); err != nil {
		return fmt.Errorf("failed to save mask: %w", err)
	}
	return nil
}
