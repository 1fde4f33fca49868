package detection

import (
	"fmt"

	"github.com/ironsheep/target-analyzer-mcp/internal/config"
)

// MergeCloseHoles collapses fragments of the same physical hole.
//
// The input is processed in order (it is expected to be sorted by size).
// Each hole not yet absorbed seeds a group; every later unabsorbed hole
// within radius of the seed's original centre joins it. The group centre is
// the unweighted mean of its member centres and its PixelCount the sum.
// Distances are never measured against the running group centre, so the
// grouping is not transitive.
//
// The result is re-sorted by PixelCount, largest first, stable.
func MergeCloseHoles(holes []Hole, radius float64) []Hole {
	merged := make([]Hole, 0, len(holes))
	used := make([]bool, len(holes))

	for i := range holes {
		if used[i] {
			continue
		}
		used[i] = true

		seed := holes[i].Center
		sum := seed
		pixels := holes[i].PixelCount
		count := 1

		for j := i + 1; j < len(holes); j++ {
			if used[j] {
				continue
			}
			if seed.Distance(holes[j].Center) <= radius {
				sum = sum.Add(holes[j].Center)
				pixels += holes[j].PixelCount
				count++
				used[j] = true
			}
		}

		merged = append(merged, Hole{
			Center:     sum.Scale(1.0 / float64(count)),
			PixelCount: pixels,
		})
	}

	sortByPixelCount(merged)
	return merged
}

// MergeTransitive groups holes by the transitive closure of "within radius"
// and returns one hole per group.
//
// Group centres are weighted by PixelCount, so a large fragment pulls the
// centre more than a speck. Groups are emitted in order of their first
// member, then re-sorted by PixelCount, largest first, stable.
func MergeTransitive(holes []Hole, radius float64) []Hole {
	parent := make([]int, len(holes))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for i := range holes {
		for j := i + 1; j < len(holes); j++ {
			if holes[i].Center.Distance(holes[j].Center) > radius {
				continue
			}
			ri, rj := find(i), find(j)
			if ri == rj {
				continue
			}
			// keep the lower index as root so groups order by first member
			if rj < ri {
				ri, rj = rj, ri
			}
			parent[rj] = ri
		}
	}

	type group struct {
		weighted   Point
		unweighted Point
		pixels     int
		count      int
	}
	groups := make(map[int]*group)
	order := make([]int, 0)
	for i, h := range holes {
		root := find(i)
		g, ok := groups[root]
		if !ok {
			g = &group{}
			groups[root] = g
			order = append(order, root)
		}
		g.weighted = g.weighted.Add(h.Center.Scale(float64(h.PixelCount)))
		g.unweighted = g.unweighted.Add(h.Center)
		g.pixels += h.PixelCount
		g.count++
	}

	merged := make([]Hole, 0, len(order))
	for _, root := range order {
		g := groups[root]
		center := g.unweighted.Scale(1.0 / float64(g.count))
		if g.pixels > 0 {
			center = g.weighted.Scale(1.0 / float64(g.pixels))
		}
		merged = append(merged, Hole{Center: center, PixelCount: g.pixels})
	}

	sortByPixelCount(merged)
	return merged
}

// Merge dispatches on a config merge strategy name.
func Merge(strategy string, holes []Hole, radius float64) ([]Hole, error) {
	switch strategy {
	case config.MergeSeed, "":
		return MergeCloseHoles(holes, radius), nil
	case config.MergeTransitive:
		return MergeTransitive(holes, radius), nil
	default:
		return nil, fmt.Errorf("unknown merge strategy: %s", strategy)
	}
}
