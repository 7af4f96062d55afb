package shadows

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// minAlignment drops inward neighbours whose direction strays too far from the cell's
	minAlignment = 0.75
	// softGamma is applied to the weighted neighbour light
	softGamma = 0.975
	// filteredCell marks scratch cells that failed the filter
	filteredCell = -1
)

// SoftShadowcaster diffuses light outward from the origin, producing
// continuous values in [0,1] with soft shadow edges. Every cell takes its
// light from the already finished neighbours one step closer to the origin.
type SoftShadowcaster struct {
	Opacity OpacityFunc
	Filter  FilterFunc

	pool *GridPool
}

// NewSoftShadowcaster creates a soft caster drawing scratch grids from pool.
// A nil pool gives the caster a private one.
func NewSoftShadowcaster(opacity OpacityFunc, filter FilterFunc, pool *GridPool) *SoftShadowcaster {
	if pool == nil {
		pool = NewGridPool()
	}
	return &SoftShadowcaster{Opacity: opacity, Filter: filter, pool: pool}
}

// Pool returns the scratch grid pool used by the caster
func (c *SoftShadowcaster) Pool() *GridPool { return c.pool }

// Shadowcast initialises grid and stores the light value of every visited cell in it
func (c *SoftShadowcaster) Shadowcast(grid ShadowGrid, origin Coord, radius int) error {
	if grid == nil {
		return fmt.Errorf("nil grid: %w", ErrInvalidArgument)
	}
	if err := validateRadius(radius, 1); err != nil {
		return err
	}
	grid.Init(origin, radius, 1)
	return c.ShadowcastFunc(origin, radius, grid.SetAtShadowCoord)
}

// ShadowcastFunc visits every cell within radius nearest first and reports its
// light value through out. Opaque cells are lit themselves but pass no light on.
func (c *SoftShadowcaster) ShadowcastFunc(origin Coord, radius int, out OutputFunc) error {
	if out == nil {
		return fmt.Errorf("nil output function: %w", ErrInvalidArgument)
	}
	if c.Opacity == nil {
		return fmt.Errorf("nil opacity function: %w", ErrInvalidArgument)
	}
	if err := validateRadius(radius, 1); err != nil {
		return err
	}
	pool := c.pool
	if pool == nil {
		pool = NewGridPool()
	}

	scratch := pool.Checkout(radius)
	defer pool.Checkin(radius, scratch)
	scratch.Init(origin, radius, 1)

	scratch.SetAtShadowCoord(0, 0, 0, 1)
	out(0, 0, 0, 1)

	cells := sphere().within(radius)
	for _, cell := range cells[1:] {
		wx, wy, wz := origin.X+cell.X, origin.Y+cell.Y, origin.Z+cell.Z
		if !passes(c.Filter, wx, wy, wz) {
			scratch.SetAtShadowCoord(cell.X, cell.Y, cell.Z, filteredCell)
			continue
		}

		shadow := diffuse(scratch, cell)
		opacity := c.Opacity(wx, wy, wz)
		scratch.SetAtShadowCoord(cell.X, cell.Y, cell.Z, shadow*(1-opacity))
		out(cell.X, cell.Y, cell.Z, shadow)
	}
	return nil
}

// diffuse gathers light for cell from its inward neighbours: every
// combination of stepping zero or one cell towards the origin on each axis.
// Terms are summed in sorted order so that relabelling the axes cannot
// change the rounding.
func diffuse(scratch *Grid, cell Coord) float32 {
	// integer vectors keep every dot product exact in float32
	dir := mgl32.Vec3{float32(cell.X), float32(cell.Y), float32(cell.Z)}
	dirLenSq := dir.Dot(dir)
	sx, sy, sz := -sign(cell.X), -sign(cell.Y), -sign(cell.Z)

	var terms [7]softTerm
	k := 0
	for i := 1; i < 8; i++ {
		ox, oy, oz := i&1, (i>>1)&1, (i>>2)&1
		if (ox == 1 && sx == 0) || (oy == 1 && sy == 0) || (oz == 1 && sz == 0) {
			continue
		}
		n := Coord{X: cell.X + ox*sx, Y: cell.Y + oy*sy, Z: cell.Z + oz*sz}

		dot := float32(1)
		if n != (Coord{}) {
			nv := mgl32.Vec3{float32(n.X), float32(n.Y), float32(n.Z)}
			dot = dir.Dot(nv) / math32.Sqrt(dirLenSq*nv.Dot(nv))
		}
		if dot <= minAlignment {
			continue
		}

		f := scratch.ShadowAtShadowCoord(n.X, n.Y, n.Z)
		if f < 0 {
			continue
		}
		d2 := dot * dot
		terms[k] = softTerm{weight: d2 * d2 * dot, light: dampShadow(f)}
		k++
	}
	if k == 0 {
		return 0
	}

	used := terms[:k]
	slices.SortFunc(used, func(a, b softTerm) int {
		if c := cmp.Compare(a.weight, b.weight); c != 0 {
			return c
		}
		return cmp.Compare(a.light, b.light)
	})
	var sum, weights float64
	for _, t := range used {
		sum += float64(t.weight) * float64(t.light)
		weights += float64(t.weight)
	}
	if weights <= 0 {
		return 0
	}
	return clamp01(math32.Pow(float32(sum/weights), softGamma))
}

// softTerm is one inward neighbour's contribution to a cell
type softTerm struct {
	weight, light float32
}

// dampShadow passes mostly blocked light through and nudges mostly clear light towards 1
func dampShadow(f float32) float32 {
	if f < 0.5 {
		return f
	}
	return min(f+0.02, 1)
}

func clamp01(v float32) float32 {
	return max(0, min(v, 1))
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

var _ Shadowcaster = (*SoftShadowcaster)(nil)
