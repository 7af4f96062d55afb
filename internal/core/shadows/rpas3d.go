package shadows

import (
	"fmt"
)

// framePoint is one sample point of a cell's reference frame, given as
// half-cell offsets along the major, horizontal and vertical scan axes.
type framePoint struct {
	dm, dh, dv int
}

// The ten-point frame: the seven cube corners that can face the origin and
// the centres of the near, left and bottom faces.
const (
	nearBottomLeft = iota
	nearBottomRight
	nearTopLeft
	nearTopRight
	farBottomLeft
	farTopLeft
	farBottomRight
	nearCenter
	leftCenter
	bottomCenter

	frameSize
	frameCorners = nearCenter
)

var frame = [frameSize]framePoint{
	nearBottomLeft:  {-1, -1, -1},
	nearBottomRight: {-1, +1, -1},
	nearTopLeft:     {-1, -1, +1},
	nearTopRight:    {-1, +1, +1},
	farBottomLeft:   {+1, -1, -1},
	farTopLeft:      {+1, -1, +1},
	farBottomRight:  {+1, +1, -1},
	nearCenter:      {-1, 0, 0},
	leftCenter:      {0, -1, 0},
	bottomCenter:    {0, 0, -1},
}

// face is a centre point and the four corners around it
type face struct {
	center  int
	corners [4]int
}

var faces = [3]face{
	{center: nearCenter, corners: [4]int{nearBottomLeft, nearBottomRight, nearTopLeft, nearTopRight}},
	{center: leftCenter, corners: [4]int{nearBottomLeft, nearTopLeft, farBottomLeft, farTopLeft}},
	{center: bottomCenter, corners: [4]int{nearBottomLeft, nearBottomRight, farBottomLeft, farBottomRight}},
}

// RPAS3dShadowcaster computes binary visibility over a sphere. At resolutions
// above one, every world cell is scanned as Resolution³ shadow cells.
type RPAS3dShadowcaster struct {
	Opacity OpacityFunc
	Filter  FilterFunc

	// Resolution is the number of shadow cells per world cell on each axis.
	Resolution int
}

// NewRPAS3dShadowcaster creates a volumetric caster at resolution 1
func NewRPAS3dShadowcaster(opacity OpacityFunc, filter FilterFunc) *RPAS3dShadowcaster {
	return &RPAS3dShadowcaster{Opacity: opacity, Filter: filter, Resolution: 1}
}

func (c *RPAS3dShadowcaster) resolution() int {
	if c.Resolution == 0 {
		return 1
	}
	return c.Resolution
}

// Shadowcast initialises grid at the caster's resolution and records every
// visible shadow cell in it.
func (c *RPAS3dShadowcaster) Shadowcast(grid ShadowGrid, origin Coord, radius int) error {
	if grid == nil {
		return fmt.Errorf("nil grid: %w", ErrInvalidArgument)
	}
	if err := validateRadius(radius, c.resolution()); err != nil {
		return err
	}
	grid.Init(origin, radius, c.resolution())
	return c.ShadowcastFunc(origin, radius, grid.SetAtShadowCoordIfLess)
}

// ShadowcastFunc calls out with value 1 for every visible shadow cell.
// Shadow cells scanned by more than one octant may be reported more than once.
func (c *RPAS3dShadowcaster) ShadowcastFunc(origin Coord, radius int, out OutputFunc) error {
	if out == nil {
		return fmt.Errorf("nil output function: %w", ErrInvalidArgument)
	}
	if c.Opacity == nil {
		return fmt.Errorf("nil opacity function: %w", ErrInvalidArgument)
	}
	res := c.resolution()
	if err := validateRadius(radius, res); err != nil {
		return err
	}

	out(0, 0, 0, 1)
	if radius == 0 {
		return nil
	}

	s := scan3d{caster: c, origin: origin, res: res, radius: radius * res, out: out}
	for _, o := range octants3D {
		s.run(o)
	}
	return nil
}

// toWorldOffset maps a shadow cell offset to the world cell offset containing
// it. Negative offsets floor so that sub-cells line up in every octant.
func toWorldOffset(v, r int) int {
	if r == 1 {
		return v
	}
	if v < 0 {
		return (v - (r - 1)) / r
	}
	return v / r
}

// scan3d carries the per-cast state shared by the octant scans
type scan3d struct {
	caster *RPAS3dShadowcaster
	origin Coord
	res    int
	radius int // in shadow cells
	out    OutputFunc

	boxes   boxSet
	pending boxSet

	h, v [frameSize]float32
}

// run walks one octant shell by shell. A shell with no newly visible cell
// marks the octant as obstructed; the next shell still gets scanned and then
// the octant is abandoned.
func (s *scan3d) run(o octant3D) {
	s.boxes.reset()
	rr := s.radius * s.radius
	fullyObstructed := false

	for m := 1; m <= s.radius; m++ {
		s.pending.reset()
		visibleInSlice := 0

		for v := 0; v <= m; v++ {
			for h := 0; h <= m; h++ {
				if m*m+h*h+v*v > rr {
					break
				}
				if s.cell(o, m, h, v) {
					visibleInSlice++
				}
			}
		}

		d := s.pending.data
		for i := 0; i+boxStride <= len(d); i += boxStride {
			s.boxes.insert(d[i], d[i+1], d[i+2], d[i+3])
		}

		if fullyObstructed {
			return
		}
		if visibleInSlice == 0 {
			fullyObstructed = true
		}
	}
}

// cell scans one shadow cell and reports whether it is visible
func (s *scan3d) cell(o octant3D, m, h, v int) bool {
	dx, dy, dz := o.offset(m, h, v)
	wx := s.origin.X + toWorldOffset(dx, s.res)
	wy := s.origin.Y + toWorldOffset(dy, s.res)
	wz := s.origin.Z + toWorldOffset(dz, s.res)
	if !passes(s.caster.Filter, wx, wy, wz) {
		return false
	}

	ha, va := anglesAt(m, h), anglesAt(m, v)
	opacity := s.caster.Opacity(wx, wy, wz)

	if opacity <= 0 {
		if s.boxes.covers(ha.center(), va.center()) {
			return false
		}
		s.out(dx, dy, dz, 1)
		return true
	}

	for i, p := range frame {
		s.h[i] = ha[p.dm+1][p.dh+1]
		s.v[i] = va[p.dm+1][p.dv+1]
	}

	visible := s.facesVisible()
	if visible {
		s.out(dx, dy, dz, 1)
	}

	hNear, hFar := s.h[0], s.h[0]
	vNear, vFar := s.v[0], s.v[0]
	for i := 1; i < frameCorners; i++ {
		hNear, hFar = min(hNear, s.h[i]), max(hFar, s.h[i])
		vNear, vFar = min(vNear, s.v[i]), max(vFar, s.v[i])
	}
	s.pending.add(hNear, hFar, vNear, vFar)
	return visible
}

// facesVisible votes over the three faces turned towards the origin. A face
// counts when its centre and at least two of its corners are unobstructed.
func (s *scan3d) facesVisible() bool {
	var open [frameSize]bool
	for i := range open {
		open[i] = !s.boxes.covers(s.h[i], s.v[i])
	}
	for _, f := range faces {
		if !open[f.center] {
			continue
		}
		n := 0
		for _, c := range f.corners {
			if open[c] {
				n++
			}
		}
		if n >= 2 {
			return true
		}
	}
	return false
}

var _ Shadowcaster = (*RPAS3dShadowcaster)(nil)
