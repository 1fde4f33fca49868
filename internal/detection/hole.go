package detection

import (
	"math"
	"sort"
)

// Point is a sub-pixel image position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p*k.
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Hole is one detected color blob.
//
// For a raw detection Center is the mean pixel position of the component
// and PixelCount its area. For a merged hole Center is the mean of the
// merged centres and PixelCount the sum of their areas.
type Hole struct {
	Center     Point `json:"center"`
	PixelCount int   `json:"pixel_count"`
}

// Centers extracts the centre of every hole, preserving order.
func Centers(holes []Hole) []Point {
	pts := make([]Point, len(holes))
	for i, h := range holes {
		pts[i] = h.Center
	}
	return pts
}

// sortByPixelCount orders holes largest first. Equal sizes keep their
// relative order.
func sortByPixelCount(holes []Hole) {
	sort.SliceStable(holes, func(i, j int) bool {
		return holes[i].PixelCount > holes[j].PixelCount
	})
}
