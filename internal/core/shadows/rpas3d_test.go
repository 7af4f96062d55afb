package shadows

import (
	"errors"
	"math/rand"
	"slices"
	"testing"
)

// volume is a sparse opacity map for volumetric tests
type volume map[Coord]float32

func (v volume) opacity(x, y, z int) float32 {
	return v[Coord{X: x, Y: y, Z: z}]
}

func cast3d(t *testing.T, c *RPAS3dShadowcaster, origin Coord, radius int) *Grid {
	t.Helper()
	g := NewGrid()
	if err := c.Shadowcast(g, origin, radius); err != nil {
		t.Fatalf("Shadowcast failed: %v", err)
	}
	return g
}

func chebyshev(x, y, z int) int {
	return max(abs(x), abs(y), abs(z))
}

func TestToWorldOffset(t *testing.T) {
	tests := []struct {
		v, r, want int
	}{
		{0, 1, 0},
		{-3, 1, -3},
		{0, 2, 0},
		{1, 2, 0},
		{2, 2, 1},
		{-1, 2, -1},
		{-2, 2, -1},
		{-3, 2, -2},
		{5, 3, 1},
		{-4, 3, -2},
		{-3, 3, -1},
	}
	for _, tt := range tests {
		if got := toWorldOffset(tt.v, tt.r); got != tt.want {
			t.Errorf("toWorldOffset(%d, %d) = %d, want %d", tt.v, tt.r, got, tt.want)
		}
	}
}

func TestRPAS3dAllTransparent(t *testing.T) {
	const radius = 6
	g := cast3d(t, NewRPAS3dShadowcaster(func(x, y, z int) float32 { return 0 }, nil), Coord{}, radius)

	for z := -radius; z <= radius; z++ {
		for y := -radius; y <= radius; y++ {
			for x := -radius; x <= radius; x++ {
				want := float32(0)
				if x*x+y*y+z*z <= radius*radius {
					want = 1
				}
				if got := g.ShadowAtShadowCoord(x, y, z); got != want {
					t.Fatalf("cell (%d,%d,%d) expected %v, got %v", x, y, z, want, got)
				}
			}
		}
	}
}

func TestRPAS3dOriginAndRadiusZero(t *testing.T) {
	var got []Coord
	c := NewRPAS3dShadowcaster(func(x, y, z int) float32 { return 1 }, nil)
	err := c.ShadowcastFunc(Coord{X: 3, Y: 3, Z: 3}, 0, func(x, y, z int, v float32) {
		if v != 1 {
			t.Errorf("Expected value 1, got %v", v)
		}
		got = append(got, Coord{X: x, Y: y, Z: z})
	})
	if err != nil {
		t.Fatalf("ShadowcastFunc failed: %v", err)
	}
	if len(got) != 1 || got[0] != (Coord{}) {
		t.Errorf("Expected only the origin, got %v", got)
	}
}

func TestRPAS3dSingleWall(t *testing.T) {
	wall := volume{{X: 2}: 1}
	g := cast3d(t, NewRPAS3dShadowcaster(wall.opacity, nil), Coord{}, 5)

	if g.ShadowAtShadowCoord(2, 0, 0) != 1 {
		t.Error("Expected the wall itself to be visible")
	}
	for x := 3; x <= 5; x++ {
		if v := g.ShadowAtShadowCoord(x, 0, 0); v != 0 {
			t.Errorf("Expected (%d,0,0) hidden behind the wall, got %v", x, v)
		}
	}
	for _, c := range []Coord{{X: 3, Y: 2}, {X: 3, Z: -2}, {X: -3}, {Y: 4}} {
		if v := g.ShadowAtShadowCoord(c.X, c.Y, c.Z); v != 1 {
			t.Errorf("Expected %v visible, got %v", c, v)
		}
	}
}

func TestRPAS3dOpaqueShellHidesEverythingBeyond(t *testing.T) {
	const radius = 8
	var visited []Coord
	opacity := func(x, y, z int) float32 {
		visited = append(visited, Coord{X: x, Y: y, Z: z})
		if chebyshev(x, y, z) == 1 {
			return 1
		}
		return 0
	}
	g := cast3d(t, NewRPAS3dShadowcaster(opacity, nil), Coord{}, radius)

	for z := -radius; z <= radius; z++ {
		for y := -radius; y <= radius; y++ {
			for x := -radius; x <= radius; x++ {
				got := g.ShadowAtShadowCoord(x, y, z)
				switch chebyshev(x, y, z) {
				case 0, 1:
					if got != 1 {
						t.Errorf("Expected (%d,%d,%d) visible, got %v", x, y, z, got)
					}
				default:
					if got != 0 {
						t.Errorf("Expected (%d,%d,%d) hidden by the shell, got %v", x, y, z, got)
					}
				}
			}
		}
	}

	// the shell with nothing visible is followed by one more shell before the scan stops
	deepest := 0
	for _, c := range visited {
		deepest = max(deepest, chebyshev(c.X, c.Y, c.Z))
	}
	if deepest != 3 {
		t.Errorf("Expected scanning to stop after shell 3, deepest visited was %d", deepest)
	}
}

func TestRPAS3dSignSymmetry(t *testing.T) {
	const radius = 7
	rng := rand.New(rand.NewSource(11))
	walls := volume{}
	for i := 0; i < 30; i++ {
		c := Coord{X: rng.Intn(radius + 1), Y: rng.Intn(radius + 1), Z: rng.Intn(radius + 1)}
		if c != (Coord{}) {
			walls[c] = 1
		}
	}
	opacity := func(x, y, z int) float32 {
		return walls[Coord{X: abs(x), Y: abs(y), Z: abs(z)}]
	}
	g := cast3d(t, NewRPAS3dShadowcaster(opacity, nil), Coord{}, radius)

	for z := 0; z <= radius; z++ {
		for y := 0; y <= radius; y++ {
			for x := 0; x <= radius; x++ {
				v := g.ShadowAtShadowCoord(x, y, z)
				for _, s := range octants3D {
					if w := g.ShadowAtShadowCoord(s.xSign*x, s.ySign*y, s.zSign*z); w != v {
						t.Fatalf("cell (%d,%d,%d)=%v but reflection (%d,%d,%d)=%v",
							x, y, z, v, s.xSign*x, s.ySign*y, s.zSign*z, w)
					}
				}
			}
		}
	}
}

// octahedralVolume scatters walls so that every axis swap and sign flip of
// the volume is the volume itself
func octahedralVolume(seed int64, radius, count int) OpacityFunc {
	rng := rand.New(rand.NewSource(seed))
	walls := volume{}
	for i := 0; i < count; i++ {
		c := Coord{X: rng.Intn(radius + 1), Y: rng.Intn(radius + 1), Z: rng.Intn(radius + 1)}
		walls[canonical(c)] = 1
	}
	delete(walls, Coord{})
	return func(x, y, z int) float32 {
		return walls[canonical(Coord{X: x, Y: y, Z: z})]
	}
}

// canonical sorts the absolute coordinates of c
func canonical(c Coord) Coord {
	v := []int{abs(c.X), abs(c.Y), abs(c.Z)}
	slices.Sort(v)
	return Coord{X: v[0], Y: v[1], Z: v[2]}
}

// axisSwaps permutes the coordinates of a cell
var axisSwaps = []struct {
	name string
	swap func(c Coord) Coord
}{
	{"x<->y", func(c Coord) Coord { return Coord{X: c.Y, Y: c.X, Z: c.Z} }},
	{"x<->z", func(c Coord) Coord { return Coord{X: c.Z, Y: c.Y, Z: c.X} }},
	{"y<->z", func(c Coord) Coord { return Coord{X: c.X, Y: c.Z, Z: c.Y} }},
	{"rotate", func(c Coord) Coord { return Coord{X: c.Y, Y: c.Z, Z: c.X} }},
}

func TestRPAS3dAxisSwapSymmetry(t *testing.T) {
	const radius = 6
	g := cast3d(t, NewRPAS3dShadowcaster(octahedralVolume(5, radius, 25), nil), Coord{}, radius)

	for _, s := range axisSwaps {
		mismatches := 0
		for z := -radius; z <= radius; z++ {
			for y := -radius; y <= radius; y++ {
				for x := -radius; x <= radius; x++ {
					c := Coord{X: x, Y: y, Z: z}
					p := s.swap(c)
					if v, w := g.ShadowAtShadowCoord(x, y, z), g.ShadowAtShadowCoord(p.X, p.Y, p.Z); v != w {
						if mismatches == 0 {
							t.Errorf("%s: cell %v=%v but %v=%v", s.name, c, v, p, w)
						}
						mismatches++
					}
				}
			}
		}
		if mismatches > 0 {
			t.Errorf("%s: expected no mismatches, got %d", s.name, mismatches)
		}
	}
}

func TestRPAS3dFuncMatchesGrid(t *testing.T) {
	walls := volume{{X: 1, Y: 1}: 1, {X: -2, Z: 1}: 1, {Y: -3, Z: -1}: 0.5}
	c := NewRPAS3dShadowcaster(walls.opacity, nil)
	g := cast3d(t, c, Coord{}, 5)

	seen := map[Coord]bool{}
	err := c.ShadowcastFunc(Coord{}, 5, func(x, y, z int, v float32) {
		seen[Coord{X: x, Y: y, Z: z}] = true
	})
	if err != nil {
		t.Fatalf("ShadowcastFunc failed: %v", err)
	}

	for z := -5; z <= 5; z++ {
		for y := -5; y <= 5; y++ {
			for x := -5; x <= 5; x++ {
				want := seen[Coord{X: x, Y: y, Z: z}]
				if got := g.ShadowAtShadowCoord(x, y, z) == 1; got != want {
					t.Errorf("cell (%d,%d,%d): grid %v, callback %v", x, y, z, got, want)
				}
			}
		}
	}
}

func TestRPAS3dFilter(t *testing.T) {
	// a filtered cell neither shows up nor blocks anything behind it
	filter := func(x, y, z int) bool { return x != 1 || y != 0 || z != 0 }
	solid := volume{{X: 1}: 1}
	g := cast3d(t, NewRPAS3dShadowcaster(solid.opacity, filter), Coord{}, 4)

	if v := g.ShadowAtShadowCoord(1, 0, 0); v != 0 {
		t.Errorf("Expected the filtered cell not emitted, got %v", v)
	}
	for x := 2; x <= 4; x++ {
		if v := g.ShadowAtShadowCoord(x, 0, 0); v != 1 {
			t.Errorf("Expected (%d,0,0) visible past the filtered cell, got %v", x, v)
		}
	}
}

func TestRPAS3dResolution(t *testing.T) {
	const radius = 3
	c := NewRPAS3dShadowcaster(func(x, y, z int) float32 { return 0 }, nil)
	c.Resolution = 2
	origin := Coord{X: 10, Y: 20, Z: 30}
	g := cast3d(t, c, origin, radius)

	if g.Resolution() != 2 {
		t.Fatalf("Expected grid resolution 2, got %d", g.Resolution())
	}
	for z := -radius; z <= radius; z++ {
		for y := -radius; y <= radius; y++ {
			for x := -radius; x <= radius; x++ {
				if x*x+y*y+z*z > radius*radius {
					continue
				}
				if !g.VisibleWorld(origin.X+x, origin.Y+y, origin.Z+z) {
					t.Errorf("Expected world cell offset (%d,%d,%d) visible", x, y, z)
				}
			}
		}
	}
	if g.VisibleWorld(origin.X+radius+1, origin.Y, origin.Z) {
		t.Error("Expected cells past the radius to stay dark")
	}
}

func TestRPAS3dInvalidArguments(t *testing.T) {
	open := func(x, y, z int) float32 { return 0 }
	noop := func(x, y, z int, v float32) {}

	tests := []struct {
		name   string
		caster *RPAS3dShadowcaster
		radius int
		out    OutputFunc
	}{
		{"radius too large", NewRPAS3dShadowcaster(open, nil), MaxRadius + 1, noop},
		{"radius times resolution too large", &RPAS3dShadowcaster{Opacity: open, Resolution: 2}, 16, noop},
		{"negative resolution", &RPAS3dShadowcaster{Opacity: open, Resolution: -1}, 2, noop},
		{"nil opacity", NewRPAS3dShadowcaster(nil, nil), 2, noop},
		{"nil output", NewRPAS3dShadowcaster(open, nil), 2, nil},
	}
	for _, tt := range tests {
		if err := tt.caster.ShadowcastFunc(Coord{}, tt.radius, tt.out); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: expected ErrInvalidArgument, got %v", tt.name, err)
		}
	}

	if err := NewRPAS3dShadowcaster(open, nil).Shadowcast(nil, Coord{}, 2); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for a nil grid, got %v", err)
	}
	c := &RPAS3dShadowcaster{Opacity: open, Resolution: 2}
	if err := c.ShadowcastFunc(Coord{}, 15, noop); err != nil {
		t.Errorf("Expected radius 15 at resolution 2 to be accepted, got %v", err)
	}
}
