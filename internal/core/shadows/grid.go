package shadows

// Grid is the dense ShadowGrid used by the casters in this package. Values are
// stored row-major; a planar grid holds only the z = 0 slice.
type Grid struct {
	origin     Coord
	radius     int
	resolution int
	planar     bool

	half int // radius * resolution
	side int // 2*half + 1

	data    []float32
	written []bool
}

// NewGrid creates an empty volumetric grid
func NewGrid() *Grid {
	return &Grid{resolution: 1}
}

// NewPlanarGrid creates an empty grid that only stores the z = 0 slice
func NewPlanarGrid() *Grid {
	return &Grid{resolution: 1, planar: true}
}

// Init resizes the grid for radius and resolution and clears every value.
// Backing storage is reused when it is large enough.
func (g *Grid) Init(origin Coord, radius, resolution int) {
	if resolution < 1 {
		resolution = 1
	}
	if radius < 0 {
		radius = 0
	}
	g.origin = origin
	g.radius = radius
	g.resolution = resolution
	g.half = radius * resolution
	g.side = 2*g.half + 1

	n := g.side * g.side
	if !g.planar {
		n *= g.side
	}
	if cap(g.data) >= n {
		g.data = g.data[:n]
		g.written = g.written[:n]
		clear(g.data)
		clear(g.written)
	} else {
		g.data = make([]float32, n)
		g.written = make([]bool, n)
	}
}

// Origin returns the world coordinate the grid was initialised around
func (g *Grid) Origin() Coord { return g.origin }

// Radius returns the radius the grid was initialised with
func (g *Grid) Radius() int { return g.radius }

// Resolution returns the number of shadow cells per world cell on each axis
func (g *Grid) Resolution() int { return g.resolution }

// Planar reports whether the grid only stores the z = 0 slice
func (g *Grid) Planar() bool { return g.planar }

func (g *Grid) index(x, y, z int) (int, bool) {
	h := g.half
	if x < -h || x > h || y < -h || y > h {
		return 0, false
	}
	if g.planar {
		if z != 0 {
			return 0, false
		}
		return (y+h)*g.side + (x + h), true
	}
	if z < -h || z > h {
		return 0, false
	}
	return ((z+h)*g.side+(y+h))*g.side + (x + h), true
}

// SetAtShadowCoord stores v; coordinates outside the grid are ignored
func (g *Grid) SetAtShadowCoord(x, y, z int, v float32) {
	if i, ok := g.index(x, y, z); ok {
		g.data[i] = v
		g.written[i] = true
	}
}

// SetAtShadowCoordIfLess stores v on the first write and afterwards only when
// it is strictly less than the stored value
func (g *Grid) SetAtShadowCoordIfLess(x, y, z int, v float32) {
	i, ok := g.index(x, y, z)
	if !ok {
		return
	}
	if !g.written[i] || v < g.data[i] {
		g.data[i] = v
		g.written[i] = true
	}
}

// ShadowAtShadowCoord returns the stored value, or 0 outside the grid
func (g *Grid) ShadowAtShadowCoord(x, y, z int) float32 {
	if i, ok := g.index(x, y, z); ok {
		return g.data[i]
	}
	return 0
}

// AtWorld returns the value for a world cell. At resolutions above one the
// brightest of the shadow cells inside the world cell is returned.
func (g *Grid) AtWorld(x, y, z int) float32 {
	dx, dy, dz := x-g.origin.X, y-g.origin.Y, z-g.origin.Z
	r := g.resolution
	if r == 1 {
		return g.ShadowAtShadowCoord(dx, dy, dz)
	}
	zs, ze := dz*r, dz*r+r-1
	if g.planar {
		if dz != 0 {
			return 0
		}
		zs, ze = 0, 0
	}
	var best float32
	for sz := zs; sz <= ze; sz++ {
		for sy := dy * r; sy < dy*r+r; sy++ {
			for sx := dx * r; sx < dx*r+r; sx++ {
				best = max(best, g.ShadowAtShadowCoord(sx, sy, sz))
			}
		}
	}
	return best
}

// VisibleWorld reports whether any light reaches the world cell
func (g *Grid) VisibleWorld(x, y, z int) bool {
	return g.AtWorld(x, y, z) > 0
}

var _ ShadowGrid = (*Grid)(nil)
