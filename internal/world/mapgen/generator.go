package mapgen

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/gammazero/deque"

	"chosenoffset.com/sightline/internal/world/maploader"
	"chosenoffset.com/sightline/internal/world/tileset"
)

// Room is a rectangular open area placed in the level
type Room struct {
	X, Y          int // Top-left interior cell
	Width, Height int
}

// Center returns the room's middle cell
func (r Room) Center() (x, y int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// intersects reports whether two rooms overlap once padded by pad cells
func (r Room) intersects(o Room, pad int) bool {
	return r.X-pad < o.X+o.Width && o.X-pad < r.X+r.Width &&
		r.Y-pad < o.Y+o.Height && o.Y-pad < r.Y+r.Height
}

// GeneratorConfig holds configuration for level generation
type GeneratorConfig struct {
	Width        int     // Level width in tiles
	Height       int     // Level height in tiles
	Depth        int     // Number of stacked levels; the layout repeats upwards
	MinRooms     int     // Minimum number of rooms to generate
	MaxRooms     int     // Maximum number of rooms to generate
	MinRoomSize  int     // Smallest room side
	MaxRoomSize  int     // Largest room side
	PillarChance float64 // Chance per interior room cell of a pillar
	Torches      bool    // Put a torch in the corner of every other room
	Seed         int64   // Random seed (0 = use current time)
}

// DefaultConfig returns a medium sized single level layout
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Width:        64,
		Height:       40,
		Depth:        1,
		MinRooms:     6,
		MaxRooms:     10,
		MinRoomSize:  4,
		MaxRoomSize:  10,
		PillarChance: 0.04,
		Torches:      true,
	}
}

// Generator handles procedural level generation
type Generator struct {
	config GeneratorConfig
	rng    *rand.Rand
	tiles  *tileset.TileSet

	grid  [][]rune // [y][x] of the ground level
	rooms []Room
}

// NewGenerator creates a new level generator
func NewGenerator(config GeneratorConfig) *Generator {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if config.Depth <= 0 {
		config.Depth = 1
	}

	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
		tiles:  tileset.Default(),
	}
}

// Rooms returns the rooms that survived the last Generate call
func (g *Generator) Rooms() []Room {
	return g.rooms
}

// Generate builds a new map
func (g *Generator) Generate() (*maploader.Map, error) {
	c := g.config
	if c.Width < 8 || c.Height < 8 {
		return nil, fmt.Errorf("level too small: %dx%d", c.Width, c.Height)
	}
	if c.MinRoomSize < 2 || c.MaxRoomSize < c.MinRoomSize {
		return nil, fmt.Errorf("invalid room size range %d..%d", c.MinRoomSize, c.MaxRoomSize)
	}

	glyph := func(name string) rune {
		t, _ := g.tiles.GetTile(name)
		return t.Rune()
	}
	wall, floor := glyph(tileset.Wall), glyph(tileset.Floor)

	g.grid = make([][]rune, c.Height)
	for y := range g.grid {
		g.grid[y] = []rune(strings.Repeat(string(wall), c.Width))
	}

	// Determine number of rooms to generate
	numRooms := max(c.MinRooms, 1)
	if c.MaxRooms > numRooms {
		numRooms += g.rng.Intn(c.MaxRooms - numRooms + 1)
	}

	g.rooms = g.placeRooms(numRooms)
	if len(g.rooms) == 0 {
		return nil, fmt.Errorf("no room fits in a %dx%d level", c.Width, c.Height)
	}

	for _, r := range g.rooms {
		g.fill(r, floor)
	}
	for i := 1; i < len(g.rooms); i++ {
		x1, y1 := g.rooms[i-1].Center()
		x2, y2 := g.rooms[i].Center()
		g.carveCorridor(x1, y1, x2, y2, floor)
	}

	sx, sy := g.rooms[0].Center()
	g.scatter(sx, sy, glyph(tileset.Pillar), glyph(tileset.Torch))
	g.sealUnreachable(sx, sy, floor, wall)

	rows := make([]string, c.Height)
	for y, row := range g.grid {
		rows[y] = string(row)
	}
	levels := make([][]string, c.Depth)
	for z := range levels {
		levels[z] = rows
	}

	return maploader.FromGrid("Generated Level", g.tiles, levels, maploader.SpawnPoint{X: sx, Y: sy})
}

// placeRooms drops rooms at random, discarding any that would touch an earlier one
func (g *Generator) placeRooms(count int) []Room {
	c := g.config
	var rooms []Room
	for attempt := 0; attempt < count*20 && len(rooms) < count; attempt++ {
		w := c.MinRoomSize + g.rng.Intn(c.MaxRoomSize-c.MinRoomSize+1)
		h := c.MinRoomSize + g.rng.Intn(c.MaxRoomSize-c.MinRoomSize+1)
		if w > c.Width-2 || h > c.Height-2 {
			continue
		}
		r := Room{
			X:      1 + g.rng.Intn(c.Width-w-1),
			Y:      1 + g.rng.Intn(c.Height-h-1),
			Width:  w,
			Height: h,
		}

		ok := true
		for _, other := range rooms {
			if r.intersects(other, 1) {
				ok = false
				break
			}
		}
		if ok {
			rooms = append(rooms, r)
		}
	}
	return rooms
}

func (g *Generator) fill(r Room, tile rune) {
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			g.grid[y][x] = tile
		}
	}
}

// carveCorridor digs an L-shaped corridor, horizontal first then vertical
func (g *Generator) carveCorridor(x1, y1, x2, y2 int, floor rune) {
	x, y := x1, y1

	dx := 0
	if x2 > x {
		dx = 1
	} else if x2 < x {
		dx = -1
	}
	for x != x2 {
		g.grid[y][x] = floor
		x += dx
	}

	dy := 0
	if y2 > y {
		dy = 1
	} else if y2 < y {
		dy = -1
	}
	for y != y2 {
		g.grid[y][x] = floor
		y += dy
	}
	g.grid[y][x] = floor
}

// scatter places pillars inside rooms and torches in room corners. Cells
// next to the spawn and every room centre stay clear so corridors keep working.
func (g *Generator) scatter(sx, sy int, pillar, torch rune) {
	keep := map[[2]int]bool{}
	for _, r := range g.rooms {
		cx, cy := r.Center()
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				keep[[2]int{cx + dx, cy + dy}] = true
			}
		}
	}
	keep[[2]int{sx, sy}] = true

	for i, r := range g.rooms {
		for y := r.Y + 1; y < r.Y+r.Height-1; y++ {
			for x := r.X + 1; x < r.X+r.Width-1; x++ {
				if keep[[2]int{x, y}] {
					continue
				}
				if g.rng.Float64() < g.config.PillarChance {
					g.grid[y][x] = pillar
				}
			}
		}
		if g.config.Torches && i%2 == 1 && !keep[[2]int{r.X, r.Y}] {
			g.grid[r.Y][r.X] = torch
		}
	}
}

// sealUnreachable flood fills walkable cells from the spawn and turns every
// floor cell it cannot reach back into wall
func (g *Generator) sealUnreachable(sx, sy int, floor, wall rune) {
	w, h := g.config.Width, g.config.Height
	reachable := make([]bool, w*h)

	walkable := func(x, y int) bool {
		t, ok := g.tiles.GetTileByGlyph(g.grid[y][x])
		return ok && t.Walkable()
	}

	var todo deque.Deque[int]
	reachable[sy*w+sx] = true
	todo.PushBack(sy*w + sx)

	dirs := [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	for todo.Len() > 0 {
		i := todo.PopFront()
		x, y := i%w, i/w
		for _, d := range dirs {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			n := ny*w + nx
			if reachable[n] || !walkable(nx, ny) {
				continue
			}
			reachable[n] = true
			todo.PushBack(n)
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if g.grid[y][x] == floor && !reachable[y*w+x] {
				g.grid[y][x] = wall
			}
		}
	}
}
