package lighting

import (
	"context"
	"errors"
	"image/color"
	"math"
	"testing"

	"chosenoffset.com/sightline/internal/core/shadows"
	"chosenoffset.com/sightline/internal/world/maploader"
	"chosenoffset.com/sightline/internal/world/tileset"
)

var white = color.NRGBA{255, 255, 255, 255}

// room is a single level with walls at the given cells and solid outside
func room(w, h int, walls ...shadows.Coord) shadows.OpacityFunc {
	solid := make(map[shadows.Coord]bool)
	for _, c := range walls {
		solid[c] = true
	}
	return func(x, y, z int) float32 {
		if x < 0 || y < 0 || x >= w || y >= h || z != 0 || solid[shadows.Coord{X: x, Y: y}] {
			return 1
		}
		return 0
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-4
}

func TestComputeSingleLight(t *testing.T) {
	m := NewManager()
	m.SetAmbientLight(0)
	m.AddLight("lamp", Light{Pos: shadows.Coord{X: 5, Y: 5}, Radius: 4, Intensity: 1, Color: white})

	lm, err := m.Compute(context.Background(), room(12, 12), nil, 12, 12, 1)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	tests := []struct {
		x, y int
		want float64
	}{
		{5, 5, 1},
		{5, 7, 0.6},
		{1, 5, 0.2},
		{0, 0, 0},  // beyond the radius
		{11, 5, 0}, // beyond the radius
	}
	for _, tt := range tests {
		if got := lm.At(tt.x, tt.y, 0); !near(got, tt.want) {
			t.Errorf("At(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestComputeWallCastsShadow(t *testing.T) {
	m := NewManager()
	m.SetAmbientLight(0.1)
	m.AddLight("lamp", Light{Pos: shadows.Coord{X: 2, Y: 5}, Radius: 6, Intensity: 1, Color: white})

	lm, err := m.Compute(context.Background(), room(12, 12, shadows.Coord{X: 4, Y: 5}), nil, 12, 12, 1)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if got := lm.At(4, 5, 0); got <= 0.1 {
		t.Errorf("Expected the wall face to be lit, got %v", got)
	}
	for x := 5; x <= 7; x++ {
		if got := lm.At(x, 5, 0); !near(got, 0.1) {
			t.Errorf("Expected only ambient light behind the wall at x=%d, got %v", x, got)
		}
	}
	if got := lm.At(2, 9, 0); got <= 0.1 {
		t.Errorf("Expected light beside the lamp, got %v", got)
	}
}

func TestComputeSumsAndClamps(t *testing.T) {
	m := NewManager()
	m.SetAmbientLight(0)
	m.AddLight("a", Light{Pos: shadows.Coord{X: 3, Y: 3}, Radius: 4, Intensity: 0.5, Color: white})
	m.AddLight("b", Light{Pos: shadows.Coord{X: 3, Y: 3}, Radius: 4, Intensity: 0.5, Color: white})
	m.AddLight("c", Light{Pos: shadows.Coord{X: 3, Y: 3}, Radius: 4, Intensity: 0.5, Color: white})

	lm, err := m.Compute(context.Background(), room(8, 8), nil, 8, 8, 1)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if got := lm.At(3, 3, 0); got != 1 {
		t.Errorf("Expected the light level to clamp at 1, got %v", got)
	}
	// 3 * 0.5 * (1 - 1/5)
	if got := lm.At(4, 3, 0); got != 1 {
		t.Errorf("Expected 1.2 to clamp to 1, got %v", got)
	}
	// 3 * 0.5 * (1 - 3/5)
	if got := lm.At(6, 3, 0); !near(got, 0.6) {
		t.Errorf("Expected 0.6, got %v", got)
	}
}

func TestComputeWorkersAgree(t *testing.T) {
	build := func(workers int) *LightMap {
		m := NewManager()
		m.SetWorkers(workers)
		for i := 0; i < 6; i++ {
			m.AddLight(string(rune('a'+i)), Light{
				Pos:       shadows.Coord{X: 2 + 3*i, Y: 2 + i},
				Radius:    5,
				Intensity: 0.3,
				Color:     color.NRGBA{uint8(40 * i), 200, 100, 255},
			})
		}
		opacity := room(20, 10, shadows.Coord{X: 5, Y: 3}, shadows.Coord{X: 9, Y: 6}, shadows.Coord{X: 14, Y: 4})
		lm, err := m.Compute(context.Background(), opacity, nil, 20, 10, 1)
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		return lm
	}

	serial, parallel := build(1), build(8)
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			if serial.At(x, y, 0) != parallel.At(x, y, 0) {
				t.Fatalf("Expected identical light at (%d, %d), got %v and %v", x, y, serial.At(x, y, 0), parallel.At(x, y, 0))
			}
			if serial.Shade(white, x, y, 0) != parallel.Shade(white, x, y, 0) {
				t.Fatalf("Expected identical tint at (%d, %d)", x, y)
			}
		}
	}
}

func TestComputeCancelled(t *testing.T) {
	m := NewManager()
	m.AddLight("lamp", Light{Pos: shadows.Coord{X: 1, Y: 1}, Radius: 3, Intensity: 1, Color: white})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Compute(ctx, room(4, 4), nil, 4, 4, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestComputeInvalid(t *testing.T) {
	m := NewManager()
	if _, err := m.Compute(context.Background(), nil, nil, 4, 4, 1); !errors.Is(err, shadows.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for nil opacity, got %v", err)
	}
	if _, err := m.Compute(context.Background(), room(4, 4), nil, -1, 4, 1); !errors.Is(err, shadows.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for a negative size, got %v", err)
	}
}

func TestShade(t *testing.T) {
	m := NewManager()
	m.SetAmbientLight(0)
	m.AddLight("red", Light{Pos: shadows.Coord{X: 1, Y: 1}, Radius: 2, Intensity: 1, Color: color.NRGBA{255, 0, 0, 255}})

	lm, err := m.Compute(context.Background(), room(4, 4), nil, 4, 4, 1)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	got := lm.Shade(white, 1, 1, 0)
	want := color.NRGBA{255, 0, 0, 255}
	if got != want {
		t.Errorf("Expected %v under a red light, got %v", want, got)
	}
	if got := lm.Shade(white, 10, 10, 0); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("Expected black outside the map with no ambient light, got %v", got)
	}
}

func TestPlayerLight(t *testing.T) {
	m := NewManager()
	m.SetPlayerLight(shadows.Coord{X: 1, Y: 1}, 99, 0.5, white)
	m.AddLight("torch", Light{Pos: shadows.Coord{X: 3, Y: 3}, Radius: 2, Intensity: 1, Color: white})

	if n := len(m.GetAllLights()); n != 1 {
		t.Errorf("Expected the player light to start off, got %d lights", n)
	}

	m.EnablePlayerLight(true)
	if !m.IsPlayerLightOn() {
		t.Error("Expected the player light to be on")
	}
	m.UpdatePlayerLightPosition(shadows.Coord{X: 2, Y: 2})

	lights := m.GetAllLights()
	if len(lights) != 2 {
		t.Fatalf("Expected 2 lights, got %d", len(lights))
	}
	if lights[0].Pos != (shadows.Coord{X: 2, Y: 2}) {
		t.Errorf("Expected the player light first at (2, 2), got %v", lights[0].Pos)
	}
	if lights[0].Radius != shadows.MaxRadius {
		t.Errorf("Expected radius clamped to %d, got %d", shadows.MaxRadius, lights[0].Radius)
	}
}

func TestAddMapLights(t *testing.T) {
	levels := [][]string{{
		"#####",
		"#*..#",
		"#..*#",
		"#####",
	}}
	lm, err := maploader.FromGrid("lit", tileset.Default(), levels, maploader.SpawnPoint{X: 2, Y: 1})
	if err != nil {
		t.Fatalf("FromGrid failed: %v", err)
	}

	m := NewManager()
	if n := m.AddMapLights(lm); n != 2 {
		t.Fatalf("Expected 2 map lights, got %d", n)
	}
	lights := m.GetAllLights()
	if lights[0].Pos != (shadows.Coord{X: 1, Y: 1}) || lights[1].Pos != (shadows.Coord{X: 3, Y: 2}) {
		t.Errorf("Expected lights in map order, got %v and %v", lights[0].Pos, lights[1].Pos)
	}
	if lights[0].Radius != 8 {
		t.Errorf("Expected torch radius 8, got %d", lights[0].Radius)
	}

	m.RemoveLight("torch_1_1_0")
	if n := len(m.GetAllLights()); n != 1 {
		t.Errorf("Expected 1 light after removal, got %d", n)
	}
	m.ClearMapLights()
	if n := len(m.GetAllLights()); n != 0 {
		t.Errorf("Expected no lights after clearing, got %d", n)
	}
}
