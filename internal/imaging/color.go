package imaging

import (
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/target-analyzer-mcp/internal/config"
)

// ColorMask marks the pixels whose color lies in either HSV band.
//
// Parameters:
//   - img: Source image. It is only read.
//   - low, high: Inclusive HSV bands. A pixel is set when it falls in low OR
//     high, which covers hues that wrap around 0°/360° without special cases.
//
// Returns a mask the size of img's bounds. Fully transparent pixels are
// never set.
func ColorMask(img image.Image, low, high config.HSVRange) *Mask {
	bounds := img.Bounds()
	m := NewMask(bounds.Dx(), bounds.Dy())
	m.Origin = bounds.Min

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c, ok := colorful.MakeColor(img.At(x+bounds.Min.X, y+bounds.Min.Y))
			if !ok {
				continue
			}
			h, s, v := c.Hsv()
			if low.Contains(h, s, v) || high.Contains(h, s, v) {
				m.Pix[y*m.Width+x] = true
			}
		}
	}

	return m
}
