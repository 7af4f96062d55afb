package tileset

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"unicode/utf8"
)

// TileDefinition defines a single kind of map cell
type TileDefinition struct {
	Name       string                 `json:"name"`       // Semantic name (e.g., "stone_wall")
	Glyph      string                 `json:"glyph"`      // Single character used in map files and the terminal
	Properties map[string]interface{} `json:"properties"` // Custom properties (opacity, walkable, color, light, ...)
}

// Config defines the JSON layout of a tile set file
type Config struct {
	Name  string           `json:"name"`
	Tiles []TileDefinition `json:"tiles"`
}

// TileSet represents a loaded tile set
type TileSet struct {
	Config       *Config
	TilesByName  map[string]*TileDefinition // Quick lookup by name
	TilesByGlyph map[rune]*TileDefinition   // Quick lookup by map glyph
}

// LoadTileSet loads a tile set from a JSON file
func LoadTileSet(path string) (*TileSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tileset %s: %w", path, err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse tileset %s: %w", path, err)
	}

	ts, err := New(&config)
	if err != nil {
		return nil, fmt.Errorf("invalid tileset %s: %w", path, err)
	}
	return ts, nil
}

// New validates config and builds the lookup tables
func New(config *Config) (*TileSet, error) {
	if len(config.Tiles) == 0 {
		return nil, fmt.Errorf("tileset %q defines no tiles", config.Name)
	}

	ts := &TileSet{
		Config:       config,
		TilesByName:  make(map[string]*TileDefinition),
		TilesByGlyph: make(map[rune]*TileDefinition),
	}
	for i := range config.Tiles {
		tile := &config.Tiles[i]
		if tile.Name == "" {
			return nil, fmt.Errorf("tile %d has no name", i)
		}
		if utf8.RuneCountInString(tile.Glyph) != 1 {
			return nil, fmt.Errorf("tile %s: glyph must be exactly one character, got %q", tile.Name, tile.Glyph)
		}
		if _, dup := ts.TilesByName[tile.Name]; dup {
			return nil, fmt.Errorf("duplicate tile name: %s", tile.Name)
		}
		r := tile.Rune()
		if existing, dup := ts.TilesByGlyph[r]; dup {
			return nil, fmt.Errorf("tiles %s and %s share glyph %q", existing.Name, tile.Name, tile.Glyph)
		}
		ts.TilesByName[tile.Name] = tile
		ts.TilesByGlyph[r] = tile
	}
	return ts, nil
}

// GetTile returns a tile definition by name
func (ts *TileSet) GetTile(name string) (*TileDefinition, bool) {
	tile, ok := ts.TilesByName[name]
	return tile, ok
}

// GetTileByGlyph returns the tile drawn with glyph
func (ts *TileSet) GetTileByGlyph(glyph rune) (*TileDefinition, bool) {
	tile, ok := ts.TilesByGlyph[glyph]
	return tile, ok
}

// Rune returns the tile glyph as a rune
func (td *TileDefinition) Rune() rune {
	r, _ := utf8.DecodeRuneInString(td.Glyph)
	return r
}

// GetTileProperty retrieves a property from a tile definition
func (td *TileDefinition) GetTileProperty(key string) (interface{}, bool) {
	if td.Properties == nil {
		return nil, false
	}
	val, ok := td.Properties[key]
	return val, ok
}

// GetTilePropertyBool retrieves a boolean property
func (td *TileDefinition) GetTilePropertyBool(key string, defaultVal bool) bool {
	val, ok := td.GetTileProperty(key)
	if !ok {
		return defaultVal
	}
	if boolVal, ok := val.(bool); ok {
		return boolVal
	}
	return defaultVal
}

// GetTilePropertyString retrieves a string property
func (td *TileDefinition) GetTilePropertyString(key string, defaultVal string) string {
	val, ok := td.GetTileProperty(key)
	if !ok {
		return defaultVal
	}
	if strVal, ok := val.(string); ok {
		return strVal
	}
	return defaultVal
}

// GetTilePropertyInt retrieves an integer property
func (td *TileDefinition) GetTilePropertyInt(key string, defaultVal int) int {
	val, ok := td.GetTileProperty(key)
	if !ok {
		return defaultVal
	}
	// JSON numbers are float64
	if floatVal, ok := val.(float64); ok {
		return int(floatVal)
	}
	return defaultVal
}

// GetTilePropertyFloat retrieves a floating point property
func (td *TileDefinition) GetTilePropertyFloat(key string, defaultVal float64) float64 {
	val, ok := td.GetTileProperty(key)
	if !ok {
		return defaultVal
	}
	if floatVal, ok := val.(float64); ok {
		return floatVal
	}
	return defaultVal
}

// Opacity returns how much the tile blocks sight, in [0,1]. An explicit
// "opacity" property wins over the "blocks_sight" flag.
func (td *TileDefinition) Opacity() float32 {
	if v, ok := td.GetTileProperty("opacity"); ok {
		if f, ok := v.(float64); ok {
			return float32(min(max(f, 0), 1))
		}
	}
	if td.GetTilePropertyBool("blocks_sight", false) {
		return 1
	}
	return 0
}

// Walkable reports whether the viewer may step onto the tile
func (td *TileDefinition) Walkable() bool {
	return td.GetTilePropertyBool("walkable", td.Opacity() < 1)
}

// Color returns the tile's display colour from a "color" property in RRGGBB form
func (td *TileDefinition) Color() color.NRGBA {
	return parseHexColor(td.GetTilePropertyString("color", ""), color.NRGBA{160, 160, 160, 255})
}

// LightSource describes the light a tile emits
type LightSource struct {
	Radius    int
	Intensity float64
	Color     color.NRGBA
}

// Light returns the light emitted by tiles tagged with "light_radius" and
// "light_intensity". Torches default to a warm orange.
func (td *TileDefinition) Light() (LightSource, bool) {
	radius := td.GetTilePropertyInt("light_radius", 0)
	intensity := td.GetTilePropertyFloat("light_intensity", 0)
	if radius <= 0 || intensity <= 0 {
		return LightSource{}, false
	}
	return LightSource{
		Radius:    radius,
		Intensity: intensity,
		Color:     parseHexColor(td.GetTilePropertyString("light_color", ""), color.NRGBA{255, 200, 100, 255}),
	}, true
}

func parseHexColor(s string, fallback color.NRGBA) color.NRGBA {
	if len(s) != 6 {
		return fallback
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return fallback
	}
	return color.NRGBA{r, g, b, 255}
}
