package detection

import (
	"github.com/ironsheep/target-analyzer-mcp/internal/imaging"
)

// component accumulates the zeroth and first order moments of one
// connected region.
type component struct {
	area       int
	sumX, sumY float64
	// first is the pixel index where labelling started.
	first int
}

func (c *component) add(o component) {
	c.area += o.area
	c.sumX += o.sumX
	c.sumY += o.sumY
}

func (c component) centroid() Point {
	return Point{X: c.sumX / float64(c.area), Y: c.sumY / float64(c.area)}
}

// ExtractClusters finds the 8-connected components of a mask and returns
// those whose area lies in [minArea, maxArea].
//
// Parameters:
//   - m: Binary mask, typically from imaging.ColorMask.
//   - minArea, maxArea: Inclusive pixel-area bounds. Components outside
//     them are dropped here and never re-enter the pipeline.
//
// Returns holes sorted by PixelCount, largest first. Components of equal
// size keep the order in which they were labelled (raster order of their
// first pixel). Centres are in image coordinates. An empty mask yields an
// empty, non-nil slice.
func ExtractClusters(m *imaging.Mask, minArea, maxArea int) []Hole {
	holes := make([]Hole, 0)
	components, _ := labelComponents(m)
	for _, c := range components {
		if c.area < minArea || c.area > maxArea {
			continue
		}
		holes = append(holes, Hole{Center: c.centroid(), PixelCount: c.area})
	}
	sortByPixelCount(holes)
	return holes
}

// labelComponents labels the 8-connected regions of set pixels.
//
// Regions are returned in label order: a raster scan starts a new region at
// the first unvisited set pixel. Coordinates include the mask origin. The
// second result maps every pixel to its region index, or -1 for unset pixels.
func labelComponents(m *imaging.Mask) ([]component, []int) {
	labels := make([]int, len(m.Pix))
	for i := range labels {
		labels[i] = -1
	}
	components := make([]component, 0)

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			i := y*m.Width + x
			if !m.Pix[i] || labels[i] >= 0 {
				continue
			}
			components = append(components, floodFill(m, labels, len(components), x, y, true))
		}
	}

	return components, labels
}

// floodFill walks one region from a seed pixel with an explicit stack, so
// large regions cannot overflow the goroutine stack. It visits unlabelled
// pixels whose mask value equals that of the seed, 8-connected when diag is
// set and 4-connected otherwise, and writes id into labels.
func floodFill(m *imaging.Mask, labels []int, id, startX, startY int, diag bool) component {
	c := component{first: startY*m.Width + startX}
	ox, oy := float64(m.Origin.X), float64(m.Origin.Y)
	want := m.Pix[startY*m.Width+startX]

	stack := []int{startY*m.Width + startX}
	labels[startY*m.Width+startX] = id

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x, y := i%m.Width, i/m.Width
		c.area++
		c.sumX += float64(x) + ox
		c.sumY += float64(y) + oy

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 || !diag && dx != 0 && dy != 0 {
					continue
				}
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= m.Width || ny < 0 || ny >= m.Height {
					continue
				}
				n := ny*m.Width + nx
				if m.Pix[n] == want && labels[n] < 0 {
					labels[n] = id
					stack = append(stack, n)
				}
			}
		}
	}

	return c
}
