package tileset

// Names of the built-in tiles used by generated maps
const (
	Floor  = "floor"
	Wall   = "wall"
	Pillar = "pillar"
	Glass  = "glass"
	Torch  = "torch"
	Bush   = "bush"
	Void   = "void"
)

// Default returns the built-in tile set. Each call returns a fresh copy.
func Default() *TileSet {
	config := &Config{
		Name: "default",
		Tiles: []TileDefinition{
			{Name: Floor, Glyph: ".", Properties: map[string]interface{}{"type": "floor", "color": "8a7f6a"}},
			{Name: Wall, Glyph: "#", Properties: map[string]interface{}{"type": "wall", "blocks_sight": true, "walkable": false, "color": "b0a89a"}},
			{Name: Pillar, Glyph: "O", Properties: map[string]interface{}{"type": "wall", "blocks_sight": true, "walkable": false, "color": "d0c8b0"}},
			{Name: Glass, Glyph: "=", Properties: map[string]interface{}{"type": "window", "opacity": 0.3, "walkable": false, "color": "7fc8e0"}},
			{Name: Bush, Glyph: "%", Properties: map[string]interface{}{"type": "foliage", "opacity": 0.6, "walkable": true, "color": "4f8a3c"}},
			{Name: Torch, Glyph: "*", Properties: map[string]interface{}{
				"type": "light", "walkable": false, "color": "ffb040",
				"light_radius": 8.0, "light_intensity": 0.9, "light_color": "ffc870",
			}},
			{Name: Void, Glyph: " ", Properties: map[string]interface{}{"type": "void", "blocks_sight": true, "walkable": false, "color": "000000"}},
		},
	}
	ts, err := New(config)
	if err != nil {
		panic("tileset: invalid built-in tile set: " + err.Error())
	}
	return ts
}
