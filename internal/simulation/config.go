// Package simulation provides configuration for the sight and light simulation.
// Settings are loaded from data files and can be overridden on the command line.
package simulation

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"chosenoffset.com/sightline/internal/core/shadows"
)

// CasterMode names the field of view algorithm used by the viewers
type CasterMode string

const (
	ModeRPAS2d CasterMode = "rpas2d"
	ModeRPAS3d CasterMode = "rpas3d"
	ModeSoft   CasterMode = "soft"
)

// Modes lists every caster mode in cycling order
var Modes = []CasterMode{ModeRPAS2d, ModeRPAS3d, ModeSoft}

// Next returns the mode that follows m in Modes
func (m CasterMode) Next() CasterMode {
	for i, mode := range Modes {
		if mode == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return Modes[0]
}

// String implements flag.Value
func (m *CasterMode) String() string {
	if m == nil {
		return ""
	}
	return string(*m)
}

// Set implements flag.Value and rejects unknown modes
func (m *CasterMode) Set(s string) error {
	mode := CasterMode(s)
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q: %w", s, shadows.ErrInvalidArgument)
	}
	*m = mode
	return nil
}

// Valid reports whether m is a known mode
func (m CasterMode) Valid() bool {
	for _, mode := range Modes {
		if mode == m {
			return true
		}
	}
	return false
}

// Config holds all simulation settings
type Config struct {
	// Field of view rules
	Perception PerceptionConfig `json:"perception"`

	// Light sources and ambient level
	Lighting LightingConfig `json:"lighting"`

	// Window, terminal and map selection
	Viewer ViewerConfig `json:"viewer"`
}

// PerceptionConfig defines how the viewer perceives the world
type PerceptionConfig struct {
	Mode               CasterMode `json:"mode"`                 // rpas2d, rpas3d or soft
	VisionRadius       int        `json:"vision_radius"`        // Radius in tiles, at most shadows.MaxRadius
	RPASAlgorithm      string     `json:"rpas_algorithm"`       // "variant" or "simple" for the planar caster
	NonVisibleOccludes bool       `json:"non_visible_occludes"` // Invisible cells block sight too
	Resolution         int        `json:"resolution"`           // Shadow cells per tile for the volumetric caster
}

// LightingConfig defines the light simulation
type LightingConfig struct {
	Enabled         bool    `json:"enabled"`
	Ambient         float64 `json:"ambient"`          // Global ambient light level (0.0 = pitch black, 1.0 = fully lit)
	PlayerRadius    int     `json:"player_radius"`    // Radius of the viewer's own lantern, 0 for none
	PlayerIntensity float64 `json:"player_intensity"` // Lantern intensity (0.0 to 1.0)
	Workers         int     `json:"workers"`          // Lights cast concurrently
}

// ViewerConfig defines the presentation
type ViewerConfig struct {
	TileSize     int    `json:"tile_size"` // Rendered tile size in pixels
	ScreenWidth  int    `json:"screen_width"`
	ScreenHeight int    `json:"screen_height"`
	TPS          int    `json:"tps"`
	DataDir      string `json:"data_dir"`
	Map          string `json:"map"`      // Map file name inside the data directory, empty for the first found
	Generate     bool   `json:"generate"` // Generate a map instead of loading one
	Seed         int64  `json:"seed"`     // Seed for generated maps
	Depth        int    `json:"depth"`    // Levels in generated maps

	HUD HUDConfig `json:"hud"`
}

// HUDConfig defines what the window viewer's panel shows
type HUDConfig struct {
	ShowHelp     bool    `json:"show_help"`     // Show key bindings
	ShowPosition bool    `json:"show_position"` // Show the viewer's cell
	Compact      bool    `json:"compact"`       // Single status line instead of the full panel
	Position     string  `json:"position"`      // "top-left", "top-right", "bottom-left", "bottom-right"
	Opacity      float64 `json:"opacity"`       // Background opacity (0-1)
}

// DefaultConfig returns sensible defaults for a small dungeon
func DefaultConfig() *Config {
	return &Config{
		Perception: PerceptionConfig{
			Mode:          ModeRPAS2d,
			VisionRadius:  12,
			RPASAlgorithm: shadows.AlgorithmVariant.String(),
			Resolution:    1,
		},
		Lighting: LightingConfig{
			Enabled:         true,
			Ambient:         0.15,
			PlayerRadius:    6,
			PlayerIntensity: 0.8,
			Workers:         4,
		},
		Viewer: ViewerConfig{
			TileSize:     20,
			ScreenWidth:  1280,
			ScreenHeight: 800,
			TPS:          30,
			DataDir:      "data",
			Seed:         1,
			Depth:        1,
			HUD: HUDConfig{
				ShowHelp: true,
				Position: "top-left",
				Opacity:  0.7,
			},
		},
	}
}

// LoadConfig loads the config from a JSON file
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		// Return defaults if file doesn't exist
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read simulation config: %w", err)
	}

	config := DefaultConfig() // Start with defaults
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse simulation config: %w", err)
	}

	return config, nil
}

// LoadWithFlags loads the config file at path and then reapplies every flag
// that was explicitly set on fs, so the command line wins over the file.
func LoadWithFlags(path string, fs *flag.FlagSet) (*Config, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	bound := flag.NewFlagSet(fs.Name(), flag.ContinueOnError)
	config.Bind(bound)

	var setErr error
	fs.Visit(func(f *flag.Flag) {
		if bound.Lookup(f.Name) == nil || setErr != nil {
			return
		}
		setErr = bound.Set(f.Name, f.Value.String())
	})
	if setErr != nil {
		return nil, setErr
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Bind attaches the configuration to the provided FlagSet
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.Var(&c.Perception.Mode, "mode", "field of view caster: rpas2d, rpas3d or soft")
	fs.IntVar(&c.Perception.VisionRadius, "radius", c.Perception.VisionRadius, "vision radius in tiles")
	fs.StringVar(&c.Perception.RPASAlgorithm, "rpas", c.Perception.RPASAlgorithm, "planar caster algorithm: variant or simple")
	fs.BoolVar(&c.Perception.NonVisibleOccludes, "occlude-hidden", c.Perception.NonVisibleOccludes, "hidden cells block sight")
	fs.IntVar(&c.Perception.Resolution, "resolution", c.Perception.Resolution, "shadow cells per tile for rpas3d")
	fs.BoolVar(&c.Lighting.Enabled, "lights", c.Lighting.Enabled, "simulate light sources")
	fs.Float64Var(&c.Lighting.Ambient, "ambient", c.Lighting.Ambient, "ambient light level")
	fs.IntVar(&c.Lighting.Workers, "workers", c.Lighting.Workers, "lights cast concurrently")
	fs.StringVar(&c.Viewer.DataDir, "data", c.Viewer.DataDir, "data directory")
	fs.StringVar(&c.Viewer.Map, "map", c.Viewer.Map, "map file to load")
	fs.BoolVar(&c.Viewer.Generate, "generate", c.Viewer.Generate, "generate a map instead of loading one")
	fs.Int64Var(&c.Viewer.Seed, "seed", c.Viewer.Seed, "seed for generated maps")
	fs.IntVar(&c.Viewer.Depth, "depth", c.Viewer.Depth, "levels in generated maps")
	fs.IntVar(&c.Viewer.TPS, "tps", c.Viewer.TPS, "ticks per second")
}

// Validate checks every setting. Bad values wrap shadows.ErrInvalidArgument.
func (c *Config) Validate() error {
	var errs []error
	p := c.Perception
	if !p.Mode.Valid() {
		errs = append(errs, fmt.Errorf("unknown mode %q", p.Mode))
	}
	if p.VisionRadius < 1 || p.VisionRadius > shadows.MaxRadius {
		errs = append(errs, fmt.Errorf("vision_radius %d must be between 1 and %d", p.VisionRadius, shadows.MaxRadius))
	}
	if _, err := shadows.ParseAlgorithm(p.RPASAlgorithm); err != nil {
		errs = append(errs, err)
	}
	if p.Resolution < 1 || p.VisionRadius*p.Resolution > shadows.MaxRadius {
		errs = append(errs, fmt.Errorf("resolution %d does not fit vision_radius %d", p.Resolution, p.VisionRadius))
	}

	l := c.Lighting
	if l.Ambient < 0 || l.Ambient > 1 {
		errs = append(errs, fmt.Errorf("ambient %v must be within [0, 1]", l.Ambient))
	}
	if l.PlayerRadius < 0 || l.PlayerRadius > shadows.MaxRadius {
		errs = append(errs, fmt.Errorf("player_radius %d must be between 0 and %d", l.PlayerRadius, shadows.MaxRadius))
	}
	if l.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers %d must be at least 1", l.Workers))
	}

	v := c.Viewer
	if v.TileSize < 1 || v.TPS < 1 || v.Depth < 1 {
		errs = append(errs, fmt.Errorf("tile_size, tps and depth must be positive"))
	}
	switch v.HUD.Position {
	case "top-left", "top-right", "bottom-left", "bottom-right":
	default:
		errs = append(errs, fmt.Errorf("unknown hud position %q", v.HUD.Position))
	}
	if v.HUD.Opacity < 0 || v.HUD.Opacity > 1 {
		errs = append(errs, fmt.Errorf("hud opacity %v must be within [0, 1]", v.HUD.Opacity))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w: %w", shadows.ErrInvalidArgument, errors.Join(errs...))
	}
	return nil
}
