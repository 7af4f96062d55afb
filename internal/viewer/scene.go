// Package viewer holds the interactive field of view scene shared by the
// window and terminal front ends.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	"log"

	"chosenoffset.com/sightline/internal/core/shadows"
	"chosenoffset.com/sightline/internal/mapscanner"
	"chosenoffset.com/sightline/internal/render/lighting"
	"chosenoffset.com/sightline/internal/simulation"
	"chosenoffset.com/sightline/internal/world/mapgen"
	"chosenoffset.com/sightline/internal/world/maploader"
)

// ViewerGlyph marks the viewer's own cell
const ViewerGlyph = '@'

var (
	memoryColor = color.NRGBA{70, 70, 90, 255}
	viewerColor = color.NRGBA{255, 255, 255, 255}
)

// Scene is a map, a viewer standing on it and the visibility and light
// computed for the viewer's position
type Scene struct {
	config *simulation.Config
	world  *maploader.Map

	pos       shadows.Coord
	radius    int
	mode      simulation.CasterMode
	algorithm shadows.Algorithm

	rpas2d *shadows.RPAS2dShadowcaster
	rpas3d *shadows.RPAS3dShadowcaster
	soft   *shadows.SoftShadowcaster
	planar *shadows.Grid
	volume *shadows.Grid

	lights   *lighting.Manager
	lightsOn bool
	lightMap *lighting.LightMap

	explored []bool
	visible  int
	dirty    bool
}

// NewScene places a viewer on the map's spawn point. Call Recompute before
// reading visibility.
func NewScene(cfg *simulation.Config, world *maploader.Map) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	algorithm, err := shadows.ParseAlgorithm(cfg.Perception.RPASAlgorithm)
	if err != nil {
		return nil, err
	}

	lights := lighting.NewManager()
	lights.SetAmbientLight(cfg.Lighting.Ambient)
	lights.SetWorkers(cfg.Lighting.Workers)

	spawn := world.Data.PlayerSpawn
	s := &Scene{
		config:    cfg,
		world:     world,
		pos:       shadows.Coord{X: spawn.X, Y: spawn.Y, Z: spawn.Z},
		radius:    cfg.Perception.VisionRadius,
		mode:      cfg.Perception.Mode,
		algorithm: algorithm,
		rpas2d: &shadows.RPAS2dShadowcaster{
			Opacity:            world.Opacity,
			Algorithm:          algorithm,
			NonVisibleOccludes: cfg.Perception.NonVisibleOccludes,
		},
		rpas3d: &shadows.RPAS3dShadowcaster{
			Opacity:    world.Opacity,
			Resolution: cfg.Perception.Resolution,
		},
		soft:     shadows.NewSoftShadowcaster(world.Opacity, nil, lights.Pool()),
		planar:   shadows.NewPlanarGrid(),
		volume:   shadows.NewGrid(),
		lights:   lights,
		lightsOn: cfg.Lighting.Enabled,
		explored: make([]bool, world.Width()*world.Height()*world.Depth()),
		dirty:    true,
	}

	if cfg.Lighting.PlayerRadius > 0 {
		lights.SetPlayerLight(s.pos, cfg.Lighting.PlayerRadius, cfg.Lighting.PlayerIntensity, color.NRGBA{255, 230, 180, 255})
		lights.EnablePlayerLight(true)
	}
	n := lights.AddMapLights(world)
	log.Printf("Scene %q: %dx%dx%d, %d light sources", world.Data.Name, world.Width(), world.Height(), world.Depth(), n)

	return s, nil
}

// LoadWorld returns the map selected by the viewer config: a generated one,
// or a map file found under the data directory
func LoadWorld(cfg *simulation.Config) (*maploader.Map, error) {
	v := cfg.Viewer
	if v.Generate {
		gc := mapgen.DefaultConfig()
		gc.Seed = v.Seed
		gc.Depth = v.Depth
		log.Printf("Generating map with seed %d", v.Seed)
		return mapgen.NewGenerator(gc).Generate()
	}

	entries, err := mapscanner.ScanDataDirectory(v.DataDir)
	if err != nil {
		return nil, err
	}
	path, ok := mapscanner.FindMap(v.DataDir, entries, v.Map)
	if !ok {
		return nil, fmt.Errorf("map %q not found in %s", v.Map, v.DataDir)
	}
	log.Printf("Loading map %s", path)
	return maploader.LoadMap(path)
}

// Recompute casts from the viewer's position with the current mode and
// refreshes the light map. It does nothing if nothing changed since the last call.
func (s *Scene) Recompute(ctx context.Context) error {
	if !s.dirty {
		return nil
	}

	var err error
	switch s.mode {
	case simulation.ModeRPAS2d:
		s.rpas2d.Algorithm = s.algorithm
		err = s.rpas2d.Shadowcast(s.planar, s.pos, s.radius)
	case simulation.ModeRPAS3d:
		err = s.rpas3d.Shadowcast(s.volume, s.pos, s.radius)
	case simulation.ModeSoft:
		err = s.soft.Shadowcast(s.volume, s.pos, s.radius)
	default:
		err = fmt.Errorf("unknown mode %q: %w", s.mode, shadows.ErrInvalidArgument)
	}
	if err != nil {
		return fmt.Errorf("%s cast from %v: %w", s.mode, s.pos, err)
	}
	s.markExplored()

	if s.lightsOn {
		s.lights.UpdatePlayerLightPosition(s.pos)
		lm, err := s.lights.Compute(ctx, s.world.Opacity, nil, s.world.Width(), s.world.Height(), s.world.Depth())
		if err != nil {
			return fmt.Errorf("lighting: %w", err)
		}
		s.lightMap = lm
	}

	s.dirty = false
	return nil
}

func (s *Scene) grid() *shadows.Grid {
	if s.mode == simulation.ModeRPAS2d {
		return s.planar
	}
	return s.volume
}

func (s *Scene) markExplored() {
	g := s.grid()
	s.visible = 0
	for z := s.pos.Z - s.radius; z <= s.pos.Z+s.radius; z++ {
		for y := s.pos.Y - s.radius; y <= s.pos.Y+s.radius; y++ {
			for x := s.pos.X - s.radius; x <= s.pos.X+s.radius; x++ {
				if !s.world.InBounds(x, y, z) || !g.VisibleWorld(x, y, z) {
					continue
				}
				s.explored[s.index(x, y, z)] = true
				s.visible++
			}
		}
	}
}

func (s *Scene) index(x, y, z int) int {
	return (z*s.world.Height()+y)*s.world.Width() + x
}

// Visibility returns how visible a world cell is, in [0,1]
func (s *Scene) Visibility(x, y, z int) float32 {
	if !s.world.InBounds(x, y, z) {
		return 0
	}
	return s.grid().AtWorld(x, y, z)
}

// Light returns the light level of a cell, or 1 with lighting off
func (s *Scene) Light(x, y, z int) float64 {
	if !s.lightsOn || s.lightMap == nil {
		return 1
	}
	return s.lightMap.At(x, y, z)
}

// Explored reports whether the viewer has ever seen the cell
func (s *Scene) Explored(x, y, z int) bool {
	if !s.world.InBounds(x, y, z) {
		return false
	}
	return s.explored[s.index(x, y, z)]
}

// Cell returns what to draw for a world cell: the glyph and its color.
// Cells never seen are not shown.
func (s *Scene) Cell(x, y, z int) (glyph rune, col color.NRGBA, shown bool) {
	if x == s.pos.X && y == s.pos.Y && z == s.pos.Z {
		return ViewerGlyph, viewerColor, true
	}
	if !s.Explored(x, y, z) {
		return ' ', color.NRGBA{}, false
	}

	glyph = s.world.Glyph(x, y, z)
	vis := s.Visibility(x, y, z)
	if vis <= 0 {
		return glyph, memoryColor, true
	}

	tile, _ := s.world.TileAt(x, y, z)
	col = tile.Color()
	if s.lightsOn && s.lightMap != nil {
		col = s.lightMap.Shade(col, x, y, z)
	}
	return glyph, scale(col, float64(vis)), true
}

func scale(c color.NRGBA, f float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}

// Move steps the viewer if the target cell is walkable
func (s *Scene) Move(dx, dy, dz int) bool {
	return s.Teleport(s.pos.X+dx, s.pos.Y+dy, s.pos.Z+dz)
}

// Teleport puts the viewer on any walkable cell
func (s *Scene) Teleport(x, y, z int) bool {
	if !s.world.IsWalkable(x, y, z) {
		return false
	}
	s.pos = shadows.Coord{X: x, Y: y, Z: z}
	s.dirty = true
	return true
}

// CycleMode switches to the next caster
func (s *Scene) CycleMode() {
	s.mode = s.mode.Next()
	// rpas3d at a higher resolution supports a smaller radius
	if s.mode == simulation.ModeRPAS3d {
		s.radius = min(s.radius, shadows.MaxRadius/s.resolution())
	}
	s.dirty = true
}

// ToggleAlgorithm switches the planar caster between its two algorithms
func (s *Scene) ToggleAlgorithm() {
	if s.algorithm == shadows.AlgorithmVariant {
		s.algorithm = shadows.AlgorithmSimple
	} else {
		s.algorithm = shadows.AlgorithmVariant
	}
	s.dirty = true
}

// ToggleLights turns the light simulation on or off
func (s *Scene) ToggleLights() {
	s.lightsOn = !s.lightsOn
	s.dirty = true
}

// AdjustRadius changes the vision radius within the range the current caster supports
func (s *Scene) AdjustRadius(delta int) {
	limit := shadows.MaxRadius
	if s.mode == simulation.ModeRPAS3d {
		limit /= s.resolution()
	}
	r := max(1, min(limit, s.radius+delta))
	if r != s.radius {
		s.radius = r
		s.dirty = true
	}
}

func (s *Scene) resolution() int {
	return max(1, s.config.Perception.Resolution)
}

// World returns the map
func (s *Scene) World() *maploader.Map { return s.world }

// Pos returns the viewer's position
func (s *Scene) Pos() shadows.Coord { return s.pos }

// Mode returns the active caster
func (s *Scene) Mode() simulation.CasterMode { return s.mode }

// Algorithm returns the planar caster's algorithm
func (s *Scene) Algorithm() shadows.Algorithm { return s.algorithm }

// Radius returns the vision radius
func (s *Scene) Radius() int { return s.radius }

// LightsOn reports whether lights are simulated
func (s *Scene) LightsOn() bool { return s.lightsOn }

// VisibleCount returns the number of map cells visible after the last Recompute
func (s *Scene) VisibleCount() int { return s.visible }

// Dirty reports whether Recompute has work to do
func (s *Scene) Dirty() bool { return s.dirty }

// Status is a one line summary for the front ends
func (s *Scene) Status() string {
	mode := string(s.mode)
	if s.mode == simulation.ModeRPAS2d {
		mode += "/" + s.algorithm.String()
	}
	lights := "off"
	if s.lightsOn {
		lights = "on"
	}
	return fmt.Sprintf("%s r=%d level %d/%d lights %s visible %d",
		mode, s.radius, s.pos.Z+1, s.world.Depth(), lights, s.visible)
}
