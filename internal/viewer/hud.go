package viewer

import (
	"fmt"
	"image/color"

	"chosenoffset.com/sightline/internal/render"
	"chosenoffset.com/sightline/internal/simulation"
)

const (
	hudPadding    = 10
	hudLineHeight = 16
	hudMinWidth   = 180
)

var (
	hudTitleColor = color.NRGBA{255, 255, 200, 255}
	hudDimColor   = color.NRGBA{150, 150, 150, 255}
)

var helpLines = []string{
	"WASD/arrows move",
	"PgUp/PgDn change level",
	"Tab caster  V algorithm",
	"+/- radius  L lights",
	"Click jump  Q quit",
}

// hudLine is one row of the panel; an empty text draws a divider
type hudLine struct {
	text string
	clr  color.Color
}

// HUD draws the scene summary panel
type HUD struct {
	config       simulation.HUDConfig
	renderer     render.Renderer
	screenWidth  int
	screenHeight int
}

// NewHUD creates a HUD for a screen of the given size
func NewHUD(config simulation.HUDConfig, renderer render.Renderer, screenWidth, screenHeight int) *HUD {
	return &HUD{config: config, renderer: renderer, screenWidth: screenWidth, screenHeight: screenHeight}
}

// lines collects the panel content for scene
func (h *HUD) lines(s *Scene) []hudLine {
	lines := []hudLine{{s.World().Data.Name, hudTitleColor}}
	if h.config.Compact {
		return append(lines, hudLine{s.Status(), textColor})
	}

	mode := string(s.Mode())
	if s.Mode() == simulation.ModeRPAS2d {
		mode += " (" + s.Algorithm().String() + ")"
	}
	lights := "off"
	if s.LightsOn() {
		lights = "on"
	}
	lines = append(lines,
		hudLine{},
		hudLine{"Caster: " + mode, textColor},
		hudLine{fmt.Sprintf("Radius: %d", s.Radius()), textColor},
		hudLine{fmt.Sprintf("Level: %d/%d", s.Pos().Z+1, s.World().Depth()), textColor},
		hudLine{"Lights: " + lights, textColor},
		hudLine{fmt.Sprintf("Visible: %d", s.VisibleCount()), textColor},
	)
	if h.config.ShowPosition {
		p := s.Pos()
		lines = append(lines, hudLine{fmt.Sprintf("Pos: %d, %d, %d", p.X, p.Y, p.Z), hudDimColor})
	}
	if h.config.ShowHelp {
		lines = append(lines, hudLine{})
		for _, l := range helpLines {
			lines = append(lines, hudLine{l, hudDimColor})
		}
	}
	return lines
}

// calculatePosition returns the top-left corner of a panel of the given size
func (h *HUD) calculatePosition(width, height int) (int, int) {
	switch h.config.Position {
	case "top-right":
		return h.screenWidth - width - hudPadding, hudPadding
	case "bottom-left":
		return hudPadding, h.screenHeight - height - hudPadding
	case "bottom-right":
		return h.screenWidth - width - hudPadding, h.screenHeight - height - hudPadding
	default: // "top-left"
		return hudPadding, hudPadding
	}
}

// panelSize fits the panel around lines
func (h *HUD) panelSize(lines []hudLine) (int, int) {
	width := hudMinWidth
	for _, l := range lines {
		tw, _ := h.renderer.MeasureText(l.text, 1)
		width = max(width, tw+16)
	}
	return width, len(lines)*hudLineHeight + 16
}

// Draw renders the panel for scene
func (h *HUD) Draw(screen render.Image, s *Scene) {
	lines := h.lines(s)
	width, height := h.panelSize(lines)
	x, y := h.calculatePosition(width, height)

	// Panel with transparency
	alpha := uint8(h.config.Opacity * 255)
	h.renderer.FillRect(screen, float32(x), float32(y), float32(width), float32(height), color.NRGBA{20, 20, 30, alpha})
	h.renderer.StrokeRect(screen, float32(x), float32(y), float32(width), float32(height), 1, color.NRGBA{60, 60, 80, alpha})

	currentY := y + 8
	for _, l := range lines {
		if l.text == "" {
			h.renderer.FillRect(screen, float32(x+4), float32(currentY+hudLineHeight/2), float32(width-8), 1, color.NRGBA{80, 80, 100, 200})
		} else {
			h.renderer.DrawText(screen, l.text, x+8, currentY, l.clr, 1)
		}
		currentY += hudLineHeight
	}
}
