package analysis

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ironsheep/target-analyzer-mcp/internal/config"
	"github.com/ironsheep/target-analyzer-mcp/internal/imaging"
)

var (
	centerRing     = color.RGBA{255, 255, 255, 255}
	stepPointColor = color.RGBA{255, 255, 0, 255}
	labelBg        = color.RGBA{255, 255, 255, 200}

	holeColors = []color.RGBA{
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{255, 255, 0, 255},
		{255, 0, 255, 255},
	}
)

// palette holds the configurable overlay colors.
type palette struct {
	detection, center, group, construction color.Color
}

// newPalette parses c. A color that does not parse falls back to the
// default for that role.
func newPalette(c config.OverlayColors) palette {
	def := config.Default().Overlay
	pick := func(hex, fallback string) color.Color {
		if col, err := config.ParseColor(hex); err == nil {
			return col
		}
		col, _ := config.ParseColor(fallback)
		return col
	}
	return palette{
		detection:    pick(c.Detection, def.Detection),
		center:       pick(c.Center, def.Center),
		group:        pick(c.Group, def.Group),
		construction: pick(c.Construction, def.Construction),
	}
}

// overlay converts centimetre sizes to pixels for one image.
type overlay struct {
	canvas      *imaging.Canvas
	pixelsPerCM float64
	palette
}

func (o *overlay) px(cm float64) int {
	return max(1, int(math.Round(cm*o.pixelsPerCM)))
}

func (o *overlay) pxf(cm float64) float64 {
	return float64(o.px(cm))
}

// RenderOverlay draws the report on a copy of img.
//
// Every merged detection gets a thin gray ring; counted holes are numbered
// in color. When metrics exist the target centre, the group circle, the
// STP and its offset line are drawn, plus the four-shot construction when
// four holes were counted. Colors come from colors. img is not modified.
func RenderOverlay(img image.Image, r *Report, colors config.OverlayColors) *imaging.Canvas {
	o := &overlay{canvas: imaging.NewCanvas(img), pixelsPerCM: r.PixelsPerCM, palette: newPalette(colors)}
	if !(o.pixelsPerCM > 0) {
		o.pixelsPerCM = 1
	}
	// the canvas is 0-based
	offset := img.Bounds().Min
	shift := func(x, y float64) (float64, float64) {
		return x - float64(offset.X), y - float64(offset.Y)
	}

	if r.Detection != nil {
		for _, h := range r.Detection.Merged {
			x, y := shift(h.Center.X, h.Center.Y)
			o.canvas.Circle(x, y, o.pxf(0.15), o.px(0.03), o.detection)
		}
	}

	m := r.Metrics
	if m != nil {
		cx, cy := shift(m.TargetCenter.X, m.TargetCenter.Y)
		o.canvas.Circle(cx, cy, o.pxf(0.4), o.px(0.1), centerRing)
		o.canvas.Cross(cx, cy, o.pxf(0.3), o.px(0.05), o.center)
	}

	labelScale := o.px(0.1)
	for i, h := range r.Holes {
		col := holeColors[i%len(holeColors)]
		x, y := shift(h.Center.X, h.Center.Y)
		o.canvas.Circle(x, y, o.pxf(0.2), o.px(0.06), col)
		o.canvas.Disc(x, y, o.pxf(0.08), col)
		o.canvas.Label(int(x)+o.px(0.25), int(y)-o.px(0.5), fmt.Sprintf("%d", i+1), labelScale, col, labelBg)
	}

	if m == nil {
		return o.canvas
	}

	sx, sy := shift(m.STP.X, m.STP.Y)
	o.canvas.Circle(sx, sy, math.Round(m.GroupRadius), o.px(0.12), o.group)
	o.canvas.Label(o.px(1.0), o.px(1.0), fmt.Sprintf("%.1fcm", m.GroupRadiusCM), labelScale*2, o.group, labelBg)

	if c := r.Construction; c != nil && len(r.Holes) == 4 {
		pts := make([][2]float64, 4)
		for i, h := range r.Holes {
			x, y := shift(h.Center.X, h.Center.Y)
			pts[i] = [2]float64{x, y}
		}
		thick := o.px(0.08)
		a, b := pts[c.Pair[0]], pts[c.Pair[1]]
		o.canvas.Line(a[0], a[1], b[0], b[1], thick, o.construction)

		m1x, m1y := shift(c.M1.X, c.M1.Y)
		o.canvas.Disc(m1x, m1y, o.pxf(0.1), stepPointColor)
		o.canvas.Line(m1x, m1y, pts[c.C][0], pts[c.C][1], thick, o.construction)

		m2x, m2y := shift(c.M2.X, c.M2.Y)
		o.canvas.Disc(m2x, m2y, o.pxf(0.1), stepPointColor)
		o.canvas.Line(m2x, m2y, pts[c.D][0], pts[c.D][1], thick, o.construction)
	}

	cx, cy := shift(m.TargetCenter.X, m.TargetCenter.Y)
	o.canvas.Line(sx, sy, cx, cy, o.px(0.08), centerRing)
	midX, midY := (sx+cx)/2, (sy+cy)/2
	o.canvas.Label(int(midX)+o.px(0.2), int(midY)+o.px(0.2), fmt.Sprintf("%.2fcm", m.DistanceToCenterCM), labelScale, o.center, labelBg)

	o.canvas.Circle(sx, sy, o.pxf(0.3), o.px(0.15), o.group)
	o.canvas.Disc(sx, sy, o.pxf(0.125), o.group)

	return o.canvas
}
