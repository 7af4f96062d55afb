package shadows

import (
	"slices"
	"sort"
	"sync"
)

// sphereOrder lists every offset within MaxRadius of the origin sorted by
// distance. Because the order is by distance, the cells within radius r are
// exactly the prefix cells[:prefix[r]].
type sphereOrder struct {
	cells  []Coord
	prefix [MaxRadius + 1]int
}

var sphere = sync.OnceValue(buildSphereOrder)

func buildSphereOrder() *sphereOrder {
	const r = MaxRadius
	cells := make([]Coord, 0, 4*r*r*r+1)
	for z := -r; z <= r; z++ {
		for y := -r; y <= r; y++ {
			for x := -r; x <= r; x++ {
				c := Coord{X: x, Y: y, Z: z}
				if c.DistSq() <= r*r {
					cells = append(cells, c)
				}
			}
		}
	}
	// ties are broken by z, y, x so the order never depends on the sort
	slices.SortFunc(cells, func(a, b Coord) int {
		if d := a.DistSq() - b.DistSq(); d != 0 {
			return d
		}
		if a.Z != b.Z {
			return a.Z - b.Z
		}
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})

	o := &sphereOrder{cells: cells}
	for radius := 0; radius <= r; radius++ {
		limit := radius * radius
		o.prefix[radius] = sort.Search(len(cells), func(i int) bool {
			return cells[i].DistSq() > limit
		})
	}
	return o
}

// within returns the cells within radius of the origin, nearest first
func (o *sphereOrder) within(radius int) []Coord {
	return o.cells[:o.prefix[radius]]
}
