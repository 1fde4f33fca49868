package metrics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/target-analyzer-mcp/internal/detection"
)

// ErrNoData is returned when a computation receives no holes.
var ErrNoData = errors.New("no holes to measure")

// Construction records the steps of the four-shot STP.
type Construction struct {
	// Pair holds the indices of the closest pair, first minimum in i<j order.
	Pair [2]int          `json:"pair"`
	M1   detection.Point `json:"m1"`
	// C is the index of the remaining hole nearest M1.
	C  int             `json:"c"`
	M2 detection.Point `json:"m2"`
	// D is the index of the last hole.
	D   int             `json:"d"`
	STP detection.Point `json:"stp"`
}

// STPConstruction runs the four-shot construction on exactly four points:
//
//	M1  = midpoint of the closest pair
//	M2  = M1 + (C - M1) / 3, C the nearest remaining point to M1
//	STP = M2 + (D - M2) / 4, D the last point
func STPConstruction(points []detection.Point) (*Construction, error) {
	if len(points) != 4 {
		return nil, fmt.Errorf("four-shot construction needs 4 points, got %d", len(points))
	}

	c := &Construction{}
	best := math.Inf(1)
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if d := points[i].Distance(points[j]); d < best {
				best = d
				c.Pair = [2]int{i, j}
			}
		}
	}
	c.M1 = points[c.Pair[0]].Add(points[c.Pair[1]]).Scale(0.5)

	rest := make([]int, 0, 2)
	for i := 0; i < 4; i++ {
		if i != c.Pair[0] && i != c.Pair[1] {
			rest = append(rest, i)
		}
	}
	c.C, c.D = rest[0], rest[1]
	if points[rest[1]].Distance(c.M1) < points[rest[0]].Distance(c.M1) {
		c.C, c.D = rest[1], rest[0]
	}

	c.M2 = c.M1.Add(points[c.C].Sub(c.M1).Scale(1.0 / 3.0))
	c.STP = c.M2.Add(points[c.D].Sub(c.M2).Scale(1.0 / 4.0))
	return c, nil
}

// STP returns the statistical point of impact of points.
func STP(points []detection.Point) (detection.Point, error) {
	switch len(points) {
	case 0:
		return detection.Point{}, ErrNoData
	case 4:
		c, err := STPConstruction(points)
		if err != nil {
			return detection.Point{}, err
		}
		return c.STP, nil
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	return detection.Point{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}, nil
}
