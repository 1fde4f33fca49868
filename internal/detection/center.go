package detection

import (
	"image"

	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/target-analyzer-mcp/internal/config"
	"github.com/ironsheep/target-analyzer-mcp/internal/imaging"
)

// CenterResult reports where the target centre was placed and how.
type CenterResult struct {
	Center Point `json:"center"`
	// Area is the pixel area of the chosen dark region, 0 for the fallback.
	Area int `json:"area"`
	// Fallback is true when no dark region qualified.
	Fallback bool `json:"fallback"`
}

// FindTargetCenter locates the printed centre of the target.
//
// # Algorithm
//
//  1. Grayscale with ITU-R BT.601 weights (bild effect.GrayscaleWithWeights)
//  2. Dark mask: luminance <= cfg.DarkThreshold
//  3. Morphological closing with a cfg.CloseKernelPx elliptical kernel to
//     join fragments of the black aiming mark
//  4. Outer regions of the closed mask: each 8-connected region that is
//     not nested inside another, filled with everything it encloses. A
//     printed ring is measured as the whole disc it bounds.
//  5. The largest region with filled area strictly greater than
//     cfg.MinCenterAreaPx wins, first one on ties
//  6. Centroid = first-order moments / zeroth-order moment of the filled
//     region
//
// When no region qualifies the result is the fallback position: horizontal
// centre, cfg.CenterFallbackRatio of the height. This never fails.
func FindTargetCenter(img image.Image, cfg *config.Config) CenterResult {
	bounds := img.Bounds()
	result := CenterResult{
		Center: Point{
			X: float64(bounds.Min.X) + float64(bounds.Dx())/2.0,
			Y: float64(bounds.Min.Y) + float64(bounds.Dy())*cfg.CenterFallbackRatio,
		},
		Fallback: true,
	}
	if bounds.Empty() {
		return result
	}

	dark := darkMask(img, cfg.DarkThreshold)
	closed := dark.Close(imaging.EllipseKernel(cfg.CloseKernelPx))

	var best component
	for _, c := range outerRegions(closed) {
		if float64(c.area) > cfg.MinCenterAreaPx && c.area > best.area {
			best = c
		}
	}
	if best.area == 0 {
		return result
	}

	return CenterResult{Center: best.centroid(), Area: best.area}
}

// darkMask marks pixels whose luminance is at or below threshold.
func darkMask(img image.Image, threshold int) *imaging.Mask {
	gray := effect.GrayscaleWithWeights(img, 0.299, 0.587, 0.114)
	if threshold >= 255 {
		b := gray.Bounds()
		m := imaging.NewMask(b.Dx(), b.Dy())
		m.Origin = b.Min
		m.Invert()
		return m
	}

	m := imaging.MaskFromGray(gray, uint8(threshold+1))
	m.Invert()
	return m
}

// outerRegions returns the 8-connected regions of m that are not enclosed by
// another region. Each one carries the moments of its pixels plus every
// pixel it encloses: its holes and whatever lies inside them.
//
// Background is 4-connected. Background reachable from the border is
// outside; every other background region is a hole. The pixel directly above
// the first raster pixel of a hole belongs to the region enclosing it, and
// the pixel above the first raster pixel of a nested region lies in the hole
// containing it.
func outerRegions(m *imaging.Mask) []component {
	components, fg := labelComponents(m)
	if len(components) == 0 {
		return nil
	}

	w, h := m.Width, m.Height
	bg := make([]int, len(m.Pix))
	for i := range bg {
		bg[i] = -1
	}

	// id 0 marks outside background, holes are numbered from 1
	seed := func(x, y int) {
		if i := y*w + x; !m.Pix[i] && bg[i] < 0 {
			floodFill(m, bg, 0, x, y, false)
		}
	}
	for x := 0; x < w; x++ {
		seed(x, 0)
		seed(x, h-1)
	}
	for y := 0; y < h; y++ {
		seed(0, y)
		seed(w-1, y)
	}

	holes := make([]component, 0)
	holeParent := make([]int, 0)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			if m.Pix[i] || bg[i] >= 0 {
				continue
			}
			holeParent = append(holeParent, fg[i-w])
			holes = append(holes, floodFill(m, bg, len(holes)+1, x, y, false))
		}
	}

	// An enclosing region is labelled before anything inside it, so its
	// root is already known.
	root := make([]int, len(components))
	for c, comp := range components {
		root[c] = c
		if above := comp.first - w; above >= 0 && bg[above] > 0 {
			root[c] = root[holeParent[bg[above]-1]]
		}
	}

	filled := make([]component, len(components))
	for c, comp := range components {
		filled[root[c]].add(comp)
	}
	for i, hole := range holes {
		filled[root[holeParent[i]]].add(hole)
	}

	outer := make([]component, 0, len(components))
	for c := range components {
		if root[c] == c {
			outer = append(outer, filled[c])
		}
	}
	return outer
}
