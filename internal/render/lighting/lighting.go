// Package lighting simulates point lights over a map by soft shadowcasting
// from every light and summing the contributions into a LightMap.
package lighting

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"math"

	"golang.org/x/sync/errgroup"

	"chosenoffset.com/sightline/internal/core/shadows"
	"chosenoffset.com/sightline/internal/world/maploader"
)

// Light represents a single light source in the world
type Light struct {
	Pos       shadows.Coord // Tile position
	Radius    int           // Light radius in tiles
	Intensity float64       // Light intensity (0.0 to 1.0)
	Color     color.NRGBA   // Light color
}

// Manager handles all light sources on the current map
type Manager struct {
	ambientLight  float64 // Global ambient light level (0.0 = pitch black, 1.0 = fully lit)
	playerLight   *Light
	playerLightOn bool
	mapLights     map[string]*Light // Keyed by light ID
	order         []string          // Insertion order of mapLights
	workers       int
	pool          *shadows.GridPool
}

// NewManager creates a new lighting manager
func NewManager() *Manager {
	return &Manager{
		ambientLight: 0.15,
		mapLights:    make(map[string]*Light),
		workers:      4,
		pool:         shadows.NewGridPool(),
	}
}

// SetAmbientLight sets the global ambient light level
func (m *Manager) SetAmbientLight(level float64) {
	m.ambientLight = level
}

// GetAmbientLight returns the current ambient light level
func (m *Manager) GetAmbientLight() float64 {
	return m.ambientLight
}

// SetWorkers sets how many lights are cast concurrently
func (m *Manager) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	m.workers = n
}

// Pool returns the scratch grid pool shared by every cast
func (m *Manager) Pool() *shadows.GridPool {
	return m.pool
}

// SetPlayerLight configures the player's light source
func (m *Manager) SetPlayerLight(pos shadows.Coord, radius int, intensity float64, col color.NRGBA) {
	if m.playerLight == nil {
		m.playerLight = &Light{}
	}
	m.playerLight.Pos = pos
	m.playerLight.Radius = clampRadius(radius)
	m.playerLight.Intensity = intensity
	m.playerLight.Color = col
}

// EnablePlayerLight turns on/off the player's light source
func (m *Manager) EnablePlayerLight(enabled bool) {
	m.playerLightOn = enabled
}

// IsPlayerLightOn returns whether the player's light is currently on
func (m *Manager) IsPlayerLightOn() bool {
	return m.playerLightOn
}

// UpdatePlayerLightPosition moves the player's light
func (m *Manager) UpdatePlayerLightPosition(pos shadows.Coord) {
	if m.playerLight != nil {
		m.playerLight.Pos = pos
	}
}

// AddLight adds or replaces the light with the given ID
func (m *Manager) AddLight(id string, light Light) {
	light.Radius = clampRadius(light.Radius)
	if _, ok := m.mapLights[id]; !ok {
		m.order = append(m.order, id)
	}
	m.mapLights[id] = &light
}

// RemoveLight removes a light source
func (m *Manager) RemoveLight(id string) {
	if _, ok := m.mapLights[id]; !ok {
		return
	}
	delete(m.mapLights, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// AddMapLights registers every light-emitting tile of the map and returns
// how many were added
func (m *Manager) AddMapLights(lm *maploader.Map) int {
	added := 0
	for _, site := range lm.Lights() {
		if site.Light.Radius > shadows.MaxRadius {
			log.Printf("WARNING: %s at (%d, %d, %d) has light_radius %d, clamping to %d",
				site.Tile.Name, site.X, site.Y, site.Z, site.Light.Radius, shadows.MaxRadius)
		}
		id := fmt.Sprintf("%s_%d_%d_%d", site.Tile.Name, site.X, site.Y, site.Z)
		m.AddLight(id, Light{
			Pos:       shadows.Coord{X: site.X, Y: site.Y, Z: site.Z},
			Radius:    site.Light.Radius,
			Intensity: site.Light.Intensity,
			Color:     site.Light.Color,
		})
		added++
	}
	return added
}

// GetAllLights returns all active light sources, the player's first
func (m *Manager) GetAllLights() []Light {
	lights := make([]Light, 0, len(m.order)+1)

	// Add player light if enabled
	if m.playerLightOn && m.playerLight != nil {
		lights = append(lights, *m.playerLight)
	}

	for _, id := range m.order {
		lights = append(lights, *m.mapLights[id])
	}

	return lights
}

// ClearMapLights removes all map lights (called when loading new level)
func (m *Manager) ClearMapLights() {
	m.mapLights = make(map[string]*Light)
	m.order = nil
}

func clampRadius(r int) int {
	if r < 0 {
		return 0
	}
	if r > shadows.MaxRadius {
		return shadows.MaxRadius
	}
	return r
}

// sample is one lit cell reported by a cast
type sample struct {
	x, y, z int
	value   float32
}

// Compute casts every active light over a w by h by d volume and returns
// the summed light. Lights are cast concurrently on the manager's workers.
func (m *Manager) Compute(ctx context.Context, opacity shadows.OpacityFunc, filter shadows.FilterFunc, w, h, d int) (*LightMap, error) {
	if opacity == nil {
		return nil, fmt.Errorf("nil opacity function: %w", shadows.ErrInvalidArgument)
	}
	if w < 0 || h < 0 || d < 0 {
		return nil, fmt.Errorf("negative light map size %dx%dx%d: %w", w, h, d, shadows.ErrInvalidArgument)
	}

	lights := m.GetAllLights()
	results := make([][]sample, len(lights))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i, light := range lights {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			caster := shadows.NewSoftShadowcaster(opacity, filter, m.pool)
			var lit []sample
			err := caster.ShadowcastFunc(light.Pos, light.Radius, func(x, y, z int, v float32) {
				if v <= 0 {
					return
				}
				lit = append(lit, sample{light.Pos.X + x, light.Pos.Y + y, light.Pos.Z + z, v})
			})
			if err != nil {
				return fmt.Errorf("light at %v: %w", light.Pos, err)
			}
			results[i] = lit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lm := newLightMap(w, h, d, m.ambientLight)
	for i, light := range lights {
		for _, s := range results[i] {
			lm.add(s, light)
		}
	}
	return lm, nil
}

// LightMap holds the light level and tint of every cell in a volume
type LightMap struct {
	width, height, depth int
	ambient              float64
	level                []float64
	tint                 [][3]float64
}

func newLightMap(w, h, d int, ambient float64) *LightMap {
	return &LightMap{
		width:   w,
		height:  h,
		depth:   d,
		ambient: ambient,
		level:   make([]float64, w*h*d),
		tint:    make([][3]float64, w*h*d),
	}
}

func (lm *LightMap) index(x, y, z int) (int, bool) {
	if x < 0 || y < 0 || z < 0 || x >= lm.width || y >= lm.height || z >= lm.depth {
		return 0, false
	}
	return (z*lm.height+y)*lm.width + x, true
}

// add accumulates a cast sample, fading linearly to zero just past the radius
func (lm *LightMap) add(s sample, light Light) {
	i, ok := lm.index(s.x, s.y, s.z)
	if !ok {
		return
	}
	dx, dy, dz := s.x-light.Pos.X, s.y-light.Pos.Y, s.z-light.Pos.Z
	dist := math.Sqrt(float64(dx*dx + dy*dy + dz*dz))
	falloff := 1 - dist/float64(light.Radius+1)
	if falloff <= 0 {
		return
	}
	v := float64(s.value) * light.Intensity * falloff
	lm.level[i] += v
	lm.tint[i][0] += v * float64(light.Color.R) / 255
	lm.tint[i][1] += v * float64(light.Color.G) / 255
	lm.tint[i][2] += v * float64(light.Color.B) / 255
}

// At returns the light level of a cell in [ambient, 1]. Cells outside the
// volume only get ambient light.
func (lm *LightMap) At(x, y, z int) float64 {
	i, ok := lm.index(x, y, z)
	if !ok {
		return lm.ambient
	}
	return math.Min(1, lm.ambient+lm.level[i])
}

// Shade multiplies base by the colored light reaching a cell
func (lm *LightMap) Shade(base color.NRGBA, x, y, z int) color.NRGBA {
	var tint [3]float64
	if i, ok := lm.index(x, y, z); ok {
		tint = lm.tint[i]
	}
	channel := func(c uint8, t float64) uint8 {
		return uint8(float64(c) * math.Min(1, lm.ambient+t))
	}
	return color.NRGBA{
		R: channel(base.R, tint[0]),
		G: channel(base.G, tint[1]),
		B: channel(base.B, tint[2]),
		A: base.A,
	}
}
