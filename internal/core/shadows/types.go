package shadows

// Coord is an integer cell position. Depending on context it is either
// world-absolute or relative to the origin of a cast (a shadow coordinate).
type Coord struct {
	X, Y, Z int
}

// Add returns the component-wise sum of c and o
func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

// DistSq returns the squared euclidean length of c
func (c Coord) DistSq() int {
	return c.X*c.X + c.Y*c.Y + c.Z*c.Z
}

// OpacityFunc reports how much a world cell blocks sight, in [0,1].
// Casters treat any value above zero as occluding.
type OpacityFunc func(x, y, z int) float32

// FilterFunc reports whether a world cell takes part in a cast at all.
// Cells that fail the filter are never visited, never occlude and are never emitted.
type FilterFunc func(x, y, z int) bool

// OutputFunc receives a result for one shadow coordinate.
type OutputFunc func(x, y, z int, value float32)

// ShadowGrid is a dense result buffer addressed by shadow coordinate.
// Coordinates range over [-radius*resolution, +radius*resolution] on every axis.
type ShadowGrid interface {
	// Init resets the grid for a cast around origin; every value returns to 0.
	Init(origin Coord, radius, resolution int)
	// SetAtShadowCoord stores v unconditionally.
	SetAtShadowCoord(x, y, z int, v float32)
	// SetAtShadowCoordIfLess stores v on the first write to a coordinate and
	// afterwards only when v is strictly less than the stored value.
	SetAtShadowCoordIfLess(x, y, z int, v float32)
	// ShadowAtShadowCoord reads back a stored value.
	ShadowAtShadowCoord(x, y, z int) float32
}

// Shadowcaster is implemented by every field-of-view algorithm in this package.
type Shadowcaster interface {
	// Shadowcast initialises grid around origin and fills it with visibility.
	Shadowcast(grid ShadowGrid, origin Coord, radius int) error
	// ShadowcastFunc reports visibility through out using shadow coordinates.
	ShadowcastFunc(origin Coord, radius int, out OutputFunc) error
}

// passes applies an optional filter
func passes(filter FilterFunc, x, y, z int) bool {
	return filter == nil || filter(x, y, z)
}
