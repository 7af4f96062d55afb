package shadows

import (
	"fmt"
)

// Algorithm selects how RPAS2dShadowcaster samples each cell
type Algorithm int

const (
	// AlgorithmVariant samples cell corners and edge midpoints from the angle
	// table and lets light leak diagonally past single-width obstacles.
	AlgorithmVariant Algorithm = iota
	// AlgorithmSimple splits every ring into equal angular slots.
	AlgorithmSimple
)

// String returns the name used in configuration files
func (a Algorithm) String() string {
	switch a {
	case AlgorithmVariant:
		return "variant"
	case AlgorithmSimple:
		return "simple"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm maps a configuration name to an Algorithm
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "", "variant":
		return AlgorithmVariant, nil
	case "simple":
		return AlgorithmSimple, nil
	}
	return 0, fmt.Errorf("unknown rpas algorithm %q: %w", name, ErrInvalidArgument)
}

// wiggleFactor scales the centre double test relative to the cell's near edge
const wiggleFactor = 0.35

// RPAS2dShadowcaster computes binary visibility over a disc using restrictive
// precise angle shadowcasting.
type RPAS2dShadowcaster struct {
	Opacity OpacityFunc
	Filter  FilterFunc

	// Algorithm defaults to AlgorithmVariant.
	Algorithm Algorithm
	// NonVisibleOccludes makes every invisible cell block sight, not only opaque ones.
	NonVisibleOccludes bool
}

// NewRPAS2dShadowcaster creates a planar caster using the default algorithm
func NewRPAS2dShadowcaster(opacity OpacityFunc, filter FilterFunc) *RPAS2dShadowcaster {
	return &RPAS2dShadowcaster{Opacity: opacity, Filter: filter}
}

// Shadowcast fills the z = 0 slice of grid with 1 for every visible cell
// within radius of origin. Invisible cells keep 0.
func (c *RPAS2dShadowcaster) Shadowcast(grid ShadowGrid, origin Coord, radius int) error {
	if grid == nil {
		return fmt.Errorf("nil grid: %w", ErrInvalidArgument)
	}
	if c.Opacity == nil {
		return fmt.Errorf("nil opacity function: %w", ErrInvalidArgument)
	}
	if err := validateRadius(radius, 1); err != nil {
		return err
	}
	if c.Algorithm != AlgorithmVariant && c.Algorithm != AlgorithmSimple {
		return fmt.Errorf("unknown algorithm %v: %w", c.Algorithm, ErrInvalidArgument)
	}

	grid.Init(origin, radius, 1)
	grid.SetAtShadowCoord(0, 0, 0, 1)
	if radius == 0 {
		return nil
	}

	s := scan2d{caster: c, grid: grid, origin: origin, radius: radius}
	for _, q := range quadrants {
		for _, vert := range [2]bool{false, true} {
			s.run(q, vert)
		}
	}
	return nil
}

// ShadowcastFunc is not supported by the planar caster; use Shadowcast.
func (c *RPAS2dShadowcaster) ShadowcastFunc(origin Coord, radius int, out OutputFunc) error {
	return fmt.Errorf("RPAS2dShadowcaster.ShadowcastFunc: %w", ErrNotImplemented)
}

// scan2d carries the per-cast state shared by the eight octant scans
type scan2d struct {
	caster *RPAS2dShadowcaster
	grid   ShadowGrid
	origin Coord
	radius int

	obstructions obstructionSet
	pending      obstructionSet
}

// run scans one octant ring by ring. Wedges found in a ring only take effect
// from the next ring on, so cells of one ring never shadow each other.
func (s *scan2d) run(q quadrant, vert bool) {
	s.obstructions = s.obstructions[:0]
	rr := s.radius * s.radius

	for ring := 1; ring <= s.radius; ring++ {
		s.pending = s.pending[:0]
		for pos := 0; pos <= ring; pos++ {
			if ring*ring+pos*pos > rr {
				break
			}
			dx, dy := q.offset(ring, pos, vert)
			wx, wy, wz := s.origin.X+dx, s.origin.Y+dy, s.origin.Z
			if !passes(s.caster.Filter, wx, wy, wz) {
				continue
			}
			opacity := s.caster.Opacity(wx, wy, wz)

			var visible bool
			if s.caster.Algorithm == AlgorithmSimple {
				visible = s.simple(ring, pos, opacity)
			} else {
				visible = s.variant(ring, pos, opacity)
			}
			if visible {
				s.grid.SetAtShadowCoord(dx, dy, 0, 1)
			}
		}
		s.obstructions = append(s.obstructions, s.pending...)
	}
}

// simple tests a cell against equal angular slots of its ring
func (s *scan2d) simple(ring, pos int, opacity float32) bool {
	delta := 1 / float32(ring+1)
	near := float32(pos) * delta
	center := near + 0.5*delta
	far := near + delta

	visible := !s.obstructions.obstructs(center) &&
		(!s.obstructions.obstructs(near) || !s.obstructions.obstructs(far))

	if opacity > 0 || (s.caster.NonVisibleOccludes && !visible) {
		s.pending = append(s.pending, obstruction{near: near, far: far, opacity: opacity})
	}
	return visible
}

// variant tests a cell against table angles sampled on its close and distant edges
func (s *scan2d) variant(ring, pos int, opacity float32) bool {
	a := anglesAt(ring, pos)
	obs := s.obstructions

	distNear := a[majDist][minNear]
	closeNear := a[majClose][minNear]
	closeFar := a[majClose][minFar]

	distCenter := !obs.obstructs(a[majDist][minMid])
	distFar := !obs.obstructs(a[majDist][minFar])
	closeNearOpen := !obs.obstructs(closeNear)
	closeCenter := !obs.obstructs(a[majClose][minMid])
	closeFarOpen := !obs.obstructs(closeFar)

	visible := (distCenter && (distFar || closeNearOpen)) ||
		(closeCenter && (closeNearOpen || closeFarOpen))

	if visible && opacity <= 0 {
		// near the diagonal the centre angle is ambiguous, so either side of
		// it may carry the light
		wiggle := (closeNear - distNear) * wiggleFactor
		center := a.center()
		visible = !obs.obstructs(center+wiggle) || !obs.obstructs(center-wiggle)
	}

	if opacity > 0 || (s.caster.NonVisibleOccludes && !visible) {
		if !obs.covered(distNear, closeFar) && !s.pending.covered(distNear, closeFar) {
			s.pending = append(s.pending, obstruction{near: distNear, far: closeFar, opacity: opacity})
		}
	}
	return visible
}

var _ Shadowcaster = (*RPAS2dShadowcaster)(nil)
