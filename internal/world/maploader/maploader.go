package maploader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"chosenoffset.com/sightline/internal/world/tileset"
)

// ErrOutOfBounds is returned for lookups outside the map volume
var ErrOutOfBounds = errors.New("coordinates out of bounds")

// SpawnPoint defines the viewer's starting cell
type SpawnPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// MapData represents the loaded map configuration
type MapData struct {
	Name        string            `json:"name"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Depth       int               `json:"depth"`   // Number of stacked levels (defaults to 1)
	TileSetPath string            `json:"tileset"` // Relative to the map file; empty uses the built-in set
	Legend      map[string]string `json:"legend"`  // Optional glyph -> tile name overrides
	PlayerSpawn SpawnPoint        `json:"player_spawn"`
	Levels      [][]string        `json:"levels"` // Glyph rows [z][y], one character per x
}

// Map represents a loaded map with its resolved tiles
type Map struct {
	Data  *MapData
	Tiles *tileset.TileSet

	cells   []*tileset.TileDefinition // Flattened [z][y][x]
	glyphs  []rune
	opacity []float32
}

// LoadMap loads a map from a JSON file and its associated tile set
func LoadMap(mapPath string) (*Map, error) {
	// Read the map JSON file
	data, err := os.ReadFile(mapPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file %s: %w", mapPath, err)
	}

	// Parse the JSON
	var mapData MapData
	if err := json.Unmarshal(data, &mapData); err != nil {
		return nil, fmt.Errorf("failed to parse map file %s: %w", mapPath, err)
	}

	// Load the tile set
	ts := tileset.Default()
	if mapData.TileSetPath != "" {
		tsPath := mapData.TileSetPath
		if !filepath.IsAbs(tsPath) {
			tsPath = filepath.Join(filepath.Dir(mapPath), tsPath)
		}
		ts, err = tileset.LoadTileSet(tsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load tileset %s: %w", mapData.TileSetPath, err)
		}
	}

	m, err := New(&mapData, ts)
	if err != nil {
		return nil, fmt.Errorf("invalid map data in %s: %w", mapPath, err)
	}
	return m, nil
}

// FromGrid builds a map from glyph rows, as produced by the map generator
func FromGrid(name string, ts *tileset.TileSet, levels [][]string, spawn SpawnPoint) (*Map, error) {
	data := &MapData{
		Name:        name,
		Depth:       len(levels),
		PlayerSpawn: spawn,
		Levels:      levels,
	}
	if len(levels) > 0 {
		data.Height = len(levels[0])
		if data.Height > 0 {
			data.Width = utf8.RuneCountInString(levels[0][0])
		}
	}
	return New(data, ts)
}

// New validates data and resolves every glyph against ts
func New(data *MapData, ts *tileset.TileSet) (*Map, error) {
	if data.Depth == 0 {
		data.Depth = 1
	}
	if err := validateMapData(data); err != nil {
		return nil, err
	}

	m := &Map{
		Data:    data,
		Tiles:   ts,
		cells:   make([]*tileset.TileDefinition, data.Width*data.Height*data.Depth),
		glyphs:  make([]rune, data.Width*data.Height*data.Depth),
		opacity: make([]float32, data.Width*data.Height*data.Depth),
	}

	for z, level := range data.Levels {
		for y, row := range level {
			x := 0
			for _, glyph := range row {
				tile, err := m.resolve(glyph)
				if err != nil {
					return nil, fmt.Errorf("cell (%d, %d, %d): %w", x, y, z, err)
				}
				i := m.index(x, y, z)
				m.cells[i] = tile
				m.glyphs[i] = glyph
				m.opacity[i] = tile.Opacity()
				x++
			}
		}
	}

	spawn := data.PlayerSpawn
	if tile, _ := m.TileAt(spawn.X, spawn.Y, spawn.Z); !tile.Walkable() {
		return nil, fmt.Errorf("player spawn (%d, %d, %d) is on %s", spawn.X, spawn.Y, spawn.Z, tile.Name)
	}
	return m, nil
}

func (m *Map) resolve(glyph rune) (*tileset.TileDefinition, error) {
	if name, ok := m.Data.Legend[string(glyph)]; ok {
		tile, ok := m.Tiles.GetTile(name)
		if !ok {
			return nil, fmt.Errorf("legend maps %q to unknown tile %s", glyph, name)
		}
		return tile, nil
	}
	tile, ok := m.Tiles.GetTileByGlyph(glyph)
	if !ok {
		return nil, fmt.Errorf("no tile for glyph %q", glyph)
	}
	return tile, nil
}

// validateMapData checks if the map data is valid
func validateMapData(data *MapData) error {
	if data.Width <= 0 || data.Height <= 0 || data.Depth <= 0 {
		return fmt.Errorf("invalid map dimensions: %dx%dx%d", data.Width, data.Height, data.Depth)
	}

	// Validate levels array dimensions
	if len(data.Levels) != data.Depth {
		return fmt.Errorf("levels count mismatch: expected %d, got %d", data.Depth, len(data.Levels))
	}

	for z, level := range data.Levels {
		if len(level) != data.Height {
			return fmt.Errorf("level %d height mismatch: expected %d, got %d", z, data.Height, len(level))
		}
		for y, row := range level {
			if n := utf8.RuneCountInString(row); n != data.Width {
				return fmt.Errorf("level %d width mismatch at row %d: expected %d, got %d", z, y, data.Width, n)
			}
		}
	}

	for glyph := range data.Legend {
		if utf8.RuneCountInString(glyph) != 1 {
			return fmt.Errorf("legend key %q must be a single character", glyph)
		}
	}

	s := data.PlayerSpawn
	if s.X < 0 || s.X >= data.Width || s.Y < 0 || s.Y >= data.Height || s.Z < 0 || s.Z >= data.Depth {
		return fmt.Errorf("player spawn (%d, %d, %d) is outside the map", s.X, s.Y, s.Z)
	}

	return nil
}

func (m *Map) index(x, y, z int) int {
	return (z*m.Data.Height+y)*m.Data.Width + x
}

// Width returns the map width in cells
func (m *Map) Width() int { return m.Data.Width }

// Height returns the map height in cells
func (m *Map) Height() int { return m.Data.Height }

// Depth returns the number of levels
func (m *Map) Depth() int { return m.Data.Depth }

// InBounds reports whether the cell lies inside the map volume
func (m *Map) InBounds(x, y, z int) bool {
	return x >= 0 && x < m.Data.Width && y >= 0 && y < m.Data.Height && z >= 0 && z < m.Data.Depth
}

// Opacity returns how much the cell blocks sight. Everything outside the map is solid.
func (m *Map) Opacity(x, y, z int) float32 {
	if !m.InBounds(x, y, z) {
		return 1
	}
	return m.opacity[m.index(x, y, z)]
}

// TileAt returns the tile definition at the given coordinates
func (m *Map) TileAt(x, y, z int) (*tileset.TileDefinition, error) {
	if !m.InBounds(x, y, z) {
		return nil, fmt.Errorf("(%d, %d, %d): %w", x, y, z, ErrOutOfBounds)
	}
	return m.cells[m.index(x, y, z)], nil
}

// Glyph returns the map character at the given coordinates, or a space outside the map
func (m *Map) Glyph(x, y, z int) rune {
	if !m.InBounds(x, y, z) {
		return ' '
	}
	return m.glyphs[m.index(x, y, z)]
}

// IsWalkable returns whether the tile at the given coordinates is walkable
func (m *Map) IsWalkable(x, y, z int) bool {
	tile, err := m.TileAt(x, y, z)
	if err != nil {
		return false
	}
	return tile.Walkable()
}

// BlocksSight returns whether the tile at the given coordinates fully blocks line of sight
func (m *Map) BlocksSight(x, y, z int) bool {
	return m.Opacity(x, y, z) >= 1
}

// GetTileType returns the type of tile at the given coordinates
func (m *Map) GetTileType(x, y, z int) string {
	tile, err := m.TileAt(x, y, z)
	if err != nil {
		return "unknown"
	}
	return tile.GetTilePropertyString("type", "unknown")
}

// LightSite is a light-emitting tile placed on the map
type LightSite struct {
	X, Y, Z int
	Tile    *tileset.TileDefinition
	Light   tileset.LightSource
}

// Lights returns every light-emitting tile in scan order
func (m *Map) Lights() []LightSite {
	var sites []LightSite
	for z := 0; z < m.Data.Depth; z++ {
		for y := 0; y < m.Data.Height; y++ {
			for x := 0; x < m.Data.Width; x++ {
				tile := m.cells[m.index(x, y, z)]
				if light, ok := tile.Light(); ok {
					sites = append(sites, LightSite{X: x, Y: y, Z: z, Tile: tile, Light: light})
				}
			}
		}
	}
	return sites
}
