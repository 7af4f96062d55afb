// Package term draws a viewer scene in a terminal using tcell.
package term

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/gdamore/tcell/v2"

	"chosenoffset.com/sightline/internal/viewer"
)

// Canvas renders a scene onto a tcell screen, one cell per tile
type Canvas struct {
	screen tcell.Screen
	scene  *viewer.Scene
}

// NewCanvas creates a canvas for an initialised screen
func NewCanvas(screen tcell.Screen, scene *viewer.Scene) *Canvas {
	return &Canvas{screen: screen, scene: scene}
}

// Draw paints the viewer's level centered on the viewer and a status line on the bottom row
func (c *Canvas) Draw() {
	c.screen.Clear()
	width, height := c.screen.Size()
	if width == 0 || height < 2 {
		return
	}

	pos := c.scene.Pos()
	ox, oy := width/2-pos.X, (height-1)/2-pos.Y

	for sy := 0; sy < height-1; sy++ {
		for sx := 0; sx < width; sx++ {
			glyph, col, shown := c.scene.Cell(sx-ox, sy-oy, pos.Z)
			if !shown {
				continue
			}
			style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(col.R), int32(col.G), int32(col.B)))
			c.screen.SetContent(sx, sy, glyph, nil, style)
		}
	}

	status := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	x := 0
	for _, r := range c.scene.Status() {
		if x >= width {
			break
		}
		c.screen.SetContent(x, height-1, r, nil, status)
		x++
	}
	c.screen.Show()
}

// HandleKey applies a key press to the scene and reports whether the user asked to quit
func (c *Canvas) HandleKey(ev *tcell.EventKey) (quit bool) {
	s := c.scene
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		s.Move(0, -1, 0)
	case tcell.KeyDown:
		s.Move(0, 1, 0)
	case tcell.KeyLeft:
		s.Move(-1, 0, 0)
	case tcell.KeyRight:
		s.Move(1, 0, 0)
	case tcell.KeyPgUp:
		s.Move(0, 0, 1)
	case tcell.KeyPgDn:
		s.Move(0, 0, -1)
	case tcell.KeyTab:
		s.CycleMode()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'w', 'k':
			s.Move(0, -1, 0)
		case 's', 'j':
			s.Move(0, 1, 0)
		case 'a', 'h':
			s.Move(-1, 0, 0)
		case 'd', 'l':
			s.Move(1, 0, 0)
		case '>':
			s.Move(0, 0, 1)
		case '<':
			s.Move(0, 0, -1)
		case '+', '=':
			s.AdjustRadius(1)
		case '-':
			s.AdjustRadius(-1)
		case 'm':
			s.CycleMode()
		case 'v':
			s.ToggleAlgorithm()
		case 'L':
			s.ToggleLights()
		}
	}
	return false
}

// Run draws the scene and handles events until the user quits or ctx is done
func (c *Canvas) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		c.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	if err := c.scene.Recompute(ctx); err != nil {
		return err
	}
	c.Draw()

	for {
		switch ev := c.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			c.screen.Sync()
		case *tcell.EventKey:
			if c.HandleKey(ev) {
				return nil
			}
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				log.Println("Interrupted")
				return nil
			}
		}
		if err := c.scene.Recompute(ctx); err != nil {
			return err
		}
		c.Draw()
	}
}

// Dump writes the viewer's level as plain text: what the viewer sees or
// remembers, spaces for unexplored cells and the status line last
func Dump(w io.Writer, scene *viewer.Scene) error {
	bw := bufio.NewWriter(w)
	world := scene.World()
	z := scene.Pos().Z
	for y := 0; y < world.Height(); y++ {
		line := make([]rune, world.Width())
		for x := range line {
			glyph, _, shown := scene.Cell(x, y, z)
			if !shown {
				glyph = ' '
			}
			line[x] = glyph
		}
		if _, err := fmt.Fprintln(bw, string(line)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(bw, scene.Status()); err != nil {
		return err
	}
	return bw.Flush()
}
