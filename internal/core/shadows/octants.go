package shadows

// quadrant is one of the four sign reflections of the plane. Each quadrant is
// scanned twice: once with rings running along x and once, with vert set,
// along y. Together the eight scans cover the whole disc.
type quadrant struct {
	xSign, ySign int
}

var quadrants = [4]quadrant{
	{xSign: 1, ySign: 1},
	{xSign: 1, ySign: -1},
	{xSign: -1, ySign: 1},
	{xSign: -1, ySign: -1},
}

// offset maps a canonical (ring, pos) scan index to a relative offset
func (q quadrant) offset(ring, pos int, vert bool) (dx, dy int) {
	if vert {
		return q.xSign * pos, q.ySign * ring
	}
	return q.xSign * ring, q.ySign * pos
}

// octant3D is one of the 32 volumetric scan orientations: eight sign
// reflections times the vert and top axis swaps. The canonical scan walks a
// square pyramid whose apex is the origin; m is the major (shell) index and
// h, v the horizontal and vertical positions within the shell, both in [0, m].
//
//	vert=false top=false  major x, h y, v z
//	vert=true  top=false  major y, h x, v z
//	vert=false top=true   major z, h y, v x
//	vert=true  top=true   major z, h x, v y
type octant3D struct {
	xSign, ySign, zSign int
	vert, top           bool
}

var octants3D = buildOctants3D()

func buildOctants3D() [32]octant3D {
	var out [32]octant3D
	i := 0
	for _, xs := range [2]int{1, -1} {
		for _, ys := range [2]int{1, -1} {
			for _, zs := range [2]int{1, -1} {
				for _, vert := range [2]bool{false, true} {
					for _, top := range [2]bool{false, true} {
						out[i] = octant3D{xSign: xs, ySign: ys, zSign: zs, vert: vert, top: top}
						i++
					}
				}
			}
		}
	}
	return out
}

// offset maps canonical (m, h, v) to a signed relative offset
func (o octant3D) offset(m, h, v int) (dx, dy, dz int) {
	var x, y, z int
	switch {
	case o.vert && o.top:
		x, y, z = h, v, m
	case o.top:
		x, y, z = v, h, m
	case o.vert:
		x, y, z = h, m, v
	default:
		x, y, z = m, h, v
	}
	return o.xSign * x, o.ySign * y, o.zSign * z
}
