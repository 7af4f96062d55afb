package mapgen

import (
	"testing"

	"chosenoffset.com/sightline/internal/world/tileset"
)

func testConfig(seed int64) GeneratorConfig {
	c := DefaultConfig()
	c.Seed = seed
	return c
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := NewGenerator(testConfig(7)).Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	b, err := NewGenerator(testConfig(7)).Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for y := 0; y < a.Height(); y++ {
		for x := 0; x < a.Width(); x++ {
			if a.Glyph(x, y, 0) != b.Glyph(x, y, 0) {
				t.Fatalf("Expected identical maps for the same seed, differ at (%d, %d)", x, y)
			}
		}
	}
}

func TestGenerateShape(t *testing.T) {
	c := testConfig(3)
	c.Depth = 3
	gen := NewGenerator(c)
	m, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if m.Width() != c.Width || m.Height() != c.Height || m.Depth() != 3 {
		t.Errorf("Expected %dx%dx3, got %dx%dx%d", c.Width, c.Height, m.Width(), m.Height(), m.Depth())
	}
	if n := len(gen.Rooms()); n < 1 || n > c.MaxRooms {
		t.Errorf("Expected between 1 and %d rooms, got %d", c.MaxRooms, n)
	}

	// the border is always solid
	for x := 0; x < m.Width(); x++ {
		if !m.BlocksSight(x, 0, 0) || !m.BlocksSight(x, m.Height()-1, 0) {
			t.Fatalf("Expected solid border at column %d", x)
		}
	}

	// upper levels repeat the ground layout
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.Glyph(x, y, 0) != m.Glyph(x, y, 2) {
				t.Fatalf("Expected level 2 to match level 0 at (%d, %d)", x, y)
			}
		}
	}

	s := m.Data.PlayerSpawn
	if !m.IsWalkable(s.X, s.Y, s.Z) {
		t.Errorf("Expected a walkable spawn, got %q", m.Glyph(s.X, s.Y, s.Z))
	}
}

func TestGenerateEveryFloorReachable(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		m, err := NewGenerator(testConfig(seed)).Generate()
		if err != nil {
			t.Fatalf("seed %d: Generate failed: %v", seed, err)
		}

		w, h := m.Width(), m.Height()
		s := m.Data.PlayerSpawn
		seen := map[[2]int]bool{{s.X, s.Y}: true}
		stack := [][2]int{{s.X, s.Y}}
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, d := range [][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}} {
				n := [2]int{p[0] + d[0], p[1] + d[1]}
				if !seen[n] && m.IsWalkable(n[0], n[1], 0) {
					seen[n] = true
					stack = append(stack, n)
				}
			}
		}

		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if m.GetTileType(x, y, 0) == "floor" && !seen[[2]int{x, y}] {
					t.Fatalf("seed %d: floor (%d, %d) cannot be reached from the spawn", seed, x, y)
				}
			}
		}
	}
}

func TestGenerateTorches(t *testing.T) {
	c := testConfig(11)
	c.MinRooms, c.MaxRooms = 6, 6
	m, err := NewGenerator(c).Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, l := range m.Lights() {
		if l.Tile.Name != tileset.Torch {
			t.Errorf("Expected only torches to emit light, got %s", l.Tile.Name)
		}
	}

	c.Torches = false
	m, err = NewGenerator(c).Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if n := len(m.Lights()); n != 0 {
		t.Errorf("Expected no lights with torches disabled, got %d", n)
	}
}

func TestGenerateInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GeneratorConfig)
	}{
		{"tiny level", func(c *GeneratorConfig) { c.Width = 4 }},
		{"room sizes", func(c *GeneratorConfig) { c.MinRoomSize, c.MaxRoomSize = 6, 3 }},
		{"rooms never fit", func(c *GeneratorConfig) { c.Width, c.Height, c.MinRoomSize, c.MaxRoomSize = 8, 8, 20, 20 }},
	}
	for _, tt := range tests {
		c := testConfig(1)
		tt.mutate(&c)
		if _, err := NewGenerator(c).Generate(); err == nil {
			t.Errorf("%s: expected an error", tt.name)
		}
	}
}

func TestRoomIntersects(t *testing.T) {
	a := Room{X: 0, Y: 0, Width: 4, Height: 4}
	tests := []struct {
		b    Room
		pad  int
		want bool
	}{
		{Room{X: 2, Y: 2, Width: 4, Height: 4}, 0, true},
		{Room{X: 4, Y: 0, Width: 2, Height: 2}, 0, false},
		{Room{X: 4, Y: 0, Width: 2, Height: 2}, 1, true},
		{Room{X: 6, Y: 6, Width: 2, Height: 2}, 1, false},
	}
	for _, tt := range tests {
		if got := a.intersects(tt.b, tt.pad); got != tt.want {
			t.Errorf("intersects(%+v, %d) = %v, want %v", tt.b, tt.pad, got, tt.want)
		}
	}
}
