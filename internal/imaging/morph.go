package imaging

import (
	"image"
	"math"
)

// EllipseKernel returns the offsets of an elliptical structuring element
// inscribed in a size×size square, centred on (0, 0).
//
// Row dy spans dx in [-w, w] with w = round(r*sqrt(1 - dy²/r²)), r = size/2,
// the same shape OpenCV's MORPH_ELLIPSE produces for odd square sizes.
func EllipseKernel(size int) []image.Point {
	if size < 1 {
		size = 1
	}
	r := size / 2
	if r == 0 {
		return []image.Point{{}}
	}

	kernel := make([]image.Point, 0, size*size)
	rf := float64(r)
	for dy := -r; dy <= r; dy++ {
		w := int(math.Round(rf * math.Sqrt(float64(r*r-dy*dy)/(rf*rf))))
		for dx := -w; dx <= w; dx++ {
			kernel = append(kernel, image.Point{X: dx, Y: dy})
		}
	}
	return kernel
}

// Dilate returns a mask where a pixel is set if any kernel neighbour is set.
// Pixels outside the mask count as unset.
func (m *Mask) Dilate(kernel []image.Point) *Mask {
	out := NewMask(m.Width, m.Height)
	out.Origin = m.Origin
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			for _, k := range kernel {
				if m.At(x+k.X, y+k.Y) {
					out.Pix[y*m.Width+x] = true
					break
				}
			}
		}
	}
	return out
}

// Erode returns a mask where a pixel is set only if every in-bounds kernel
// neighbour is set. Pixels outside the mask do not clear anything.
func (m *Mask) Erode(kernel []image.Point) *Mask {
	out := NewMask(m.Width, m.Height)
	out.Origin = m.Origin
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			keep := true
			for _, k := range kernel {
				nx, ny := x+k.X, y+k.Y
				if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
					continue
				}
				if !m.Pix[ny*m.Width+nx] {
					keep = false
					break
				}
			}
			out.Pix[y*m.Width+x] = keep
		}
	}
	return out
}

// Close is a dilation followed by an erosion. It fills gaps narrower than
// the kernel without growing the overall shape.
func (m *Mask) Close(kernel []image.Point) *Mask {
	return m.Dilate(kernel).Erode(kernel)
}

// Invert flips every pixel in place.
func (m *Mask) Invert() {
	for i, v := range m.Pix {
		m.Pix[i] = !v
	}
}
