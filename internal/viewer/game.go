package viewer

import (
	"context"
	"image/color"

	"chosenoffset.com/sightline/internal/render"
)

var (
	backgroundColor = color.NRGBA{12, 12, 16, 255}
	textColor       = color.NRGBA{220, 220, 220, 255}
)

// Game draws a Scene through the render interfaces and maps input to scene changes
type Game struct {
	ctx      context.Context
	scene    *Scene
	renderer render.Renderer
	input    render.InputManager
	hud      *HUD

	tileSize      int
	screenWidth   int
	screenHeight  int
	worldImage    render.Image
	width, height int
}

// NewGame creates the window front end for scene
func NewGame(ctx context.Context, scene *Scene, renderer render.Renderer, input render.InputManager) *Game {
	v := scene.config.Viewer
	return &Game{
		ctx:          ctx,
		scene:        scene,
		renderer:     renderer,
		input:        input,
		hud:          NewHUD(v.HUD, renderer, v.ScreenWidth, v.ScreenHeight),
		tileSize:     v.TileSize,
		screenWidth:  v.ScreenWidth,
		screenHeight: v.ScreenHeight,
	}
}

// bindings maps held keys to movement
var bindings = []struct {
	keys       []render.Key
	dx, dy, dz int
}{
	{[]render.Key{render.KeyW, render.KeyUp}, 0, -1, 0},
	{[]render.Key{render.KeyS, render.KeyDown}, 0, 1, 0},
	{[]render.Key{render.KeyA, render.KeyLeft}, -1, 0, 0},
	{[]render.Key{render.KeyD, render.KeyRight}, 1, 0, 0},
	{[]render.Key{render.KeyPageUp}, 0, 0, 1},
	{[]render.Key{render.KeyPageDown}, 0, 0, -1},
}

// Update handles input and recomputes the scene when it changed
func (g *Game) Update() error {
	if g.input.IsKeyJustPressed(render.KeyEscape) || g.input.IsKeyJustPressed(render.KeyQ) {
		return render.ErrQuit
	}

	for _, b := range bindings {
		for _, k := range b.keys {
			if g.input.IsKeyJustPressed(k) {
				g.scene.Move(b.dx, b.dy, b.dz)
			}
		}
	}

	if g.input.IsKeyJustPressed(render.KeyTab) {
		g.scene.CycleMode()
	}
	if g.input.IsKeyJustPressed(render.KeyV) {
		g.scene.ToggleAlgorithm()
	}
	if g.input.IsKeyJustPressed(render.KeyL) {
		g.scene.ToggleLights()
	}
	if g.input.IsKeyJustPressed(render.KeyEqual) {
		g.scene.AdjustRadius(1)
	}
	if g.input.IsKeyJustPressed(render.KeyMinus) {
		g.scene.AdjustRadius(-1)
	}

	// Click to jump to a tile
	if g.input.IsMouseButtonJustPressed(render.MouseButtonLeft) {
		cx, cy := g.input.GetCursorPosition()
		x, y := g.screenToTile(cx, cy)
		g.scene.Teleport(x, y, g.scene.Pos().Z)
	}

	return g.scene.Recompute(g.ctx)
}

// camera returns the screen offset that centers the viewer
func (g *Game) camera() (ox, oy int) {
	p := g.scene.Pos()
	ts := g.tileSize
	return g.screenWidth/2 - (p.X*ts + ts/2), g.screenHeight/2 - (p.Y*ts + ts/2)
}

func (g *Game) screenToTile(sx, sy int) (int, int) {
	ox, oy := g.camera()
	return floorDiv(sx-ox, g.tileSize), floorDiv(sy-oy, g.tileSize)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Draw renders the viewer's level onto an offscreen image and places it under the camera
func (g *Game) Draw(screen render.Image) {
	screen.Fill(backgroundColor)

	world := g.scene.World()
	ts := g.tileSize
	w, h := world.Width()*ts, world.Height()*ts
	if g.worldImage == nil || g.width != w || g.height != h {
		if g.worldImage != nil {
			g.worldImage.Dispose()
		}
		g.worldImage = g.renderer.NewImage(w, h)
		g.width, g.height = w, h
	}
	g.worldImage.Clear()

	z := g.scene.Pos().Z
	for y := 0; y < world.Height(); y++ {
		for x := 0; x < world.Width(); x++ {
			glyph, col, shown := g.scene.Cell(x, y, z)
			if !shown {
				continue
			}
			px, py := float32(x*ts), float32(y*ts)
			if glyph == ViewerGlyph {
				g.renderer.FillCircle(g.worldImage, px+float32(ts)/2, py+float32(ts)/2, float32(ts)/3, col)
				continue
			}
			if world.BlocksSight(x, y, z) {
				g.renderer.FillRect(g.worldImage, px, py, float32(ts), float32(ts), col)
			} else {
				inset := float32(ts) / 4
				g.renderer.FillRect(g.worldImage, px+inset, py+inset, float32(ts)-2*inset, float32(ts)-2*inset, col)
			}
		}
	}

	// Vision radius
	p := g.scene.Pos()
	g.renderer.StrokeCircle(g.worldImage, float32(p.X*ts+ts/2), float32(p.Y*ts+ts/2),
		float32(g.scene.Radius()*ts), 1, color.NRGBA{255, 255, 255, 40})

	geoM := render.NewGeoM()
	ox, oy := g.camera()
	geoM.Translate(float64(ox), float64(oy))
	screen.DrawImage(g.worldImage, &render.DrawImageOptions{GeoM: geoM})

	g.hud.Draw(screen, g.scene)
}

// Layout returns the configured logical screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.screenWidth, g.screenHeight
}
