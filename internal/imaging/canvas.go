package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
)

// Canvas is an RGBA copy of a source image that overlay primitives draw on.
// The source image is never modified.
type Canvas struct {
	img *image.NRGBA
}

// NewCanvas clones src into a drawable canvas. The canvas is 0-based even
// if src's bounds are not.
func NewCanvas(src image.Image) *Canvas {
	return &Canvas{img: imaging.Clone(src)}
}

// Disc fills a circle of radius r centred on (cx, cy).
func (c *Canvas) Disc(cx, cy, r float64, col color.Color) {
	c.ring(cx, cy, 0, r, col)
}

// Circle strokes a circle of radius r with the given line thickness.
func (c *Canvas) Circle(cx, cy, r float64, thickness int, col color.Color) {
	half := float64(max(thickness, 1)) / 2
	c.ring(cx, cy, math.Max(r-half, 0), r+half, col)
}

func (c *Canvas) ring(cx, cy, inner, outer float64, col color.Color) {
	b := c.img.Bounds()
	x0 := max(int(math.Floor(cx-outer)), b.Min.X)
	x1 := min(int(math.Ceil(cx+outer)), b.Max.X-1)
	y0 := max(int(math.Floor(cy-outer)), b.Min.Y)
	y1 := min(int(math.Ceil(cy+outer)), b.Max.Y-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			if d >= inner && d <= outer {
				c.img.Set(x, y, col)
			}
		}
	}
}

// Line draws a segment from (x1, y1) to (x2, y2).
func (c *Canvas) Line(x1, y1, x2, y2 float64, thickness int, col color.Color) {
	r := float64(max(thickness, 1)) / 2
	steps := int(math.Ceil(math.Hypot(x2-x1, y2-y1)))
	if steps == 0 {
		c.Disc(x1, y1, r, col)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.Disc(x1+(x2-x1)*t, y1+(y2-y1)*t, r, col)
	}
}

// Cross draws a plus-shaped marker with arms of length size.
func (c *Canvas) Cross(cx, cy, size float64, thickness int, col color.Color) {
	c.Line(cx-size, cy, cx+size, cy, thickness, col)
	c.Line(cx, cy-size, cx, cy+size, thickness, col)
}

// labelGlyphs is a 3x5 pixel font for numbers and short units.
var labelGlyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	',': {"000", "000", "000", "010", "010"},
	'.': {"000", "000", "000", "000", "010"},
	'-': {"000", "000", "111", "000", "000"},
	'c': {"000", "111", "100", "100", "111"},
	'm': {"000", "111", "111", "101", "101"},
}

// Label draws text with its top-left corner at (x, y). Each font pixel is
// drawn as a scale×scale block. Unknown runes leave a gap. A nil bg draws
// the glyphs without a background box.
func (c *Canvas) Label(x, y int, text string, scale int, fg, bg color.Color) {
	scale = max(scale, 1)
	b := c.img.Bounds()
	charWidth := 4 * scale
	labelWidth := len([]rune(text)) * charWidth
	labelHeight := 7 * scale

	set := func(px, py int, col color.Color) {
		if px >= b.Min.X && px < b.Max.X && py >= b.Min.Y && py < b.Max.Y {
			c.img.Set(px, py, col)
		}
	}

	if bg != nil {
		for dy := -scale; dy < labelHeight; dy++ {
			for dx := -scale; dx < labelWidth; dx++ {
				set(x+dx, y+dy, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := labelGlyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				for sy := 0; sy < scale; sy++ {
					for sx := 0; sx < scale; sx++ {
						set(cx+col*scale+sx, y+row*scale+sy, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}

// EncodedImage is a canvas encoded as base64 PNG.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Encode serializes the canvas as a base64 PNG.
func (c *Canvas) Encode() (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	b := c.img.Bounds()
	return &EncodedImage{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Save writes the canvas to path; the format follows the extension.
func (c *Canvas) Save(path string) error {
	if err := imaging.Save(c.img, path); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}
