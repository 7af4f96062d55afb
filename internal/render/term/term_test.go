package term

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"chosenoffset.com/sightline/internal/simulation"
	"chosenoffset.com/sightline/internal/viewer"
	"chosenoffset.com/sightline/internal/world/maploader"
	"chosenoffset.com/sightline/internal/world/tileset"
)

func newScene(t *testing.T) *viewer.Scene {
	t.Helper()
	levels := [][]string{{
		"#######",
		"#.....#",
		"#..#..#",
		"#.....#",
		"#######",
	}}
	m, err := maploader.FromGrid("term", tileset.Default(), levels, maploader.SpawnPoint{X: 1, Y: 2})
	if err != nil {
		t.Fatalf("FromGrid failed: %v", err)
	}
	c := simulation.DefaultConfig()
	c.Lighting.Enabled = false
	s, err := viewer.NewScene(c, m)
	if err != nil {
		t.Fatalf("NewScene failed: %v", err)
	}
	if err := s.Recompute(context.Background()); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	return s
}

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func TestCanvasDraw(t *testing.T) {
	screen := newScreen(t, 21, 9)
	s := newScene(t)
	NewCanvas(screen, s).Draw()

	// the viewer sits at the center of the map area
	if r, _, _, _ := screen.GetContent(10, 4); r != viewer.ViewerGlyph {
		t.Errorf("Expected the viewer glyph at the center, got %q", r)
	}
	// wall two cells to the right of the viewer
	if r, _, _, _ := screen.GetContent(12, 4); r != '#' {
		t.Errorf("Expected the inner wall, got %q", r)
	}
	// hidden behind the wall
	if r, _, _, _ := screen.GetContent(13, 4); r != ' ' {
		t.Errorf("Expected an unexplored cell behind the wall, got %q", r)
	}

	var status strings.Builder
	for x := 0; x < 21; x++ {
		r, _, _, _ := screen.GetContent(x, 8)
		status.WriteRune(r)
	}
	if !strings.HasPrefix(status.String(), "rpas2d/variant") {
		t.Errorf("Expected the status on the bottom row, got %q", status.String())
	}
}

func TestCanvasHandleKey(t *testing.T) {
	screen := newScreen(t, 20, 8)
	s := newScene(t)
	c := NewCanvas(screen, s)

	tests := []struct {
		ev   *tcell.EventKey
		quit bool
	}{
		{tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), false},
		{tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone), false},
		{tcell.NewEventKey(tcell.KeyRune, '+', tcell.ModNone), false},
		{tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), false},
		{tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), true},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), true},
	}
	for _, tt := range tests {
		if got := c.HandleKey(tt.ev); got != tt.quit {
			t.Errorf("HandleKey(%v) = %v, want %v", tt.ev.Name(), got, tt.quit)
		}
	}

	if p := s.Pos(); p.X != 2 || p.Y != 3 {
		t.Errorf("Expected viewer at (2, 3), got %v", p)
	}
	if s.Radius() != 13 {
		t.Errorf("Expected radius 13, got %d", s.Radius())
	}
	if s.Mode() != simulation.ModeRPAS3d {
		t.Errorf("Expected rpas3d, got %s", s.Mode())
	}
}

func TestCanvasRunQuits(t *testing.T) {
	screen := newScreen(t, 20, 8)
	s := newScene(t)
	c := NewCanvas(screen, s)

	screen.InjectKey(tcell.KeyRight, 0, tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if p := s.Pos(); p.X != 2 {
		t.Errorf("Expected the injected key to move the viewer to x=2, got %v", p)
	}
}

func TestDump(t *testing.T) {
	s := newScene(t)
	var buf bytes.Buffer
	if err := Dump(&buf, s); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("Expected 5 map rows and a status line, got %d lines", len(lines))
	}
	if lines[2][1] != '@' || lines[2][3] != '#' {
		t.Errorf("Expected viewer and wall on row 2, got %q", lines[2])
	}
	if lines[2][4] != ' ' {
		t.Errorf("Expected the cell behind the wall unexplored, got %q", lines[2])
	}
	if lines[5] != s.Status() {
		t.Errorf("Expected the status line last, got %q", lines[5])
	}
}
