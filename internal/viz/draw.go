package viz

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/arcane-sim/arcaneviz/internal/api"
	"github.com/arcane-sim/arcaneviz/internal/history"
	"github.com/arcane-sim/arcaneviz/internal/panel"
)

// Side panel layout.
const (
	panelLineH   = 11
	feedTop      = 64
	feedBottom   = 392
	rosterTop    = 412
	rosterCardH  = 28
	rosterMargin = 6
)

// feedTagColors maps each feed tag to its indicator colour.
var feedTagColors = [feedTagCount]color.RGBA{
	panel.TagOther:   {R: 204, G: 204, B: 204, A: 255},
	panel.TagMessage: {R: 0, G: 210, B: 255, A: 255},
	panel.TagReveal:  {R: 255, G: 68, B: 68, A: 255},
	panel.TagTactic:  {R: 255, G: 102, B: 0, A: 255},
	panel.TagTrust:   {R: 255, G: 170, B: 0, A: 255},
	panel.TagPhase:   {R: 255, G: 0, B: 255, A: 255},
	panel.TagMove:    {R: 136, G: 136, B: 136, A: 255},
	panel.TagPlan:    {R: 170, G: 170, B: 170, A: 255},
	panel.TagSystem:  {R: 85, G: 85, B: 85, A: 255},
}

// feedTagCount mirrors the panel package's tag range for the colour table.
const feedTagCount = 9

// Trust tier bar colours.
var tierColors = [3]color.RGBA{
	panel.TierDefault:  {R: 70, G: 160, B: 90, A: 255},
	panel.TierWarning:  {R: 230, G: 160, B: 30, A: 255},
	panel.TierCritical: {R: 220, G: 60, B: 60, A: 255},
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 13, B: 16, A: 255})

	// World content renders at (0,0) origin in the buffer, camera applied on blit.
	g.worldBuf.Clear()
	g.drawWorld(g.worldBuf)

	var cam ebiten.GeoM
	cam.Translate(-g.cam.X, -g.cam.Y)
	cam.Scale(g.cam.Zoom, g.cam.Zoom)
	cam.Translate(viewW/2, viewH/2)
	cam.Translate(float64(g.offX), float64(g.offY))
	screen.DrawImage(g.worldBuf, &ebiten.DrawImageOptions{GeoM: cam})

	// Viewport frame.
	ox, oy := float32(g.offX), float32(g.offY)
	vector.StrokeRect(screen, ox-1, oy-1, viewW+2, viewH+2, 2.0, color.RGBA{R: 60, G: 70, B: 90, A: 255}, false)

	g.drawSidePanel(screen)

	if g.cam.Zoom != 1.0 {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("zoom: %.1fx", g.cam.Zoom), g.offX+6, g.offY+6)
	}

	// Overlays over the viewport, last so they sit on top.
	if g.browser.Mode() != history.ModeClosed {
		g.drawHistory(screen)
	} else if g.resultsOpen {
		g.drawResultsOverlay(screen)
	}
	if g.showHelp {
		g.drawHelp(screen)
	}
}

// drawWorld composites the static layers and the entity layer: ground and
// decor below agents, overhead above them. The collision layer never draws.
func (g *Game) drawWorld(dst *ebiten.Image) {
	ww, wh := g.tiles.PixelSize()
	vector.FillRect(dst, 0, 0, float32(ww), float32(wh), color.RGBA{R: 24, G: 28, B: 24, A: 255}, false)
	g.tiles.DrawLayer(dst, g.tiles.Ground, g.tileset)
	g.tiles.DrawLayer(dst, g.tiles.Decor, g.tileset)
	g.drawEntities(dst)
	g.tiles.DrawLayer(dst, g.tiles.Overhead, g.tileset)
}

// drawEntities paints agents in painter's order (lower on screen = in front).
func (g *Game) drawEntities(dst *ebiten.Image) {
	movers := make([]*Mover, 0, g.interp.Count())
	g.interp.Each(func(m *Mover) { movers = append(movers, m) })
	sort.Slice(movers, func(i, j int) bool {
		if movers[i].VisualY != movers[j].VisualY {
			return movers[i].VisualY < movers[j].VisualY
		}
		return movers[i].ID < movers[j].ID
	})
	for _, m := range movers {
		g.drawAgent(dst, m)
	}
}

func (g *Game) drawAgent(dst *ebiten.Image, m *Mover) {
	a := g.agents[m.ID]
	x := m.VisualX
	y := m.VisualY

	var img *ebiten.Image
	if m.Moving() {
		img = g.sprites.Frame(a.Sprite, m.Facing, g.frame/8)
	}
	if img == nil {
		img = g.sprites.Profile(a.Sprite)
	}

	if img != nil {
		var op ebiten.DrawImageOptions
		op.GeoM.Translate(x-spriteSize/2, y-spriteSize/2)
		dst.DrawImage(img, &op)
	} else {
		// Sprite assets missing: a tinted disc with the name's initial.
		tint := color.RGBA{R: 52, G: 152, B: 219, A: 255}
		if a.Type == api.AgentDeviant {
			tint = color.RGBA{R: 231, G: 76, B: 60, A: 255}
		}
		vector.FillCircle(dst, float32(x), float32(y), spriteSize/2-2, tint, false)
		if a.Name != "" {
			ebitenutil.DebugPrintAt(dst, a.Name[:1], int(x)-3, int(y)-8)
		}
	}

	// Name label under the sprite, status glyph above it.
	name := panel.Sanitize(a.Name)
	if name != "" {
		ebitenutil.DebugPrintAt(dst, name, int(x)-len(name)*3, int(y)+spriteSize/2+2)
	}
	if glyph := panel.Sanitize(a.Glyph); glyph != "" {
		ebitenutil.DebugPrintAt(dst, glyph, int(x)-len(glyph)*3, int(y)-spriteSize/2-14)
	}
}

// --- side panel ---

func (g *Game) panelX() int { return g.offX + viewW + g.offX }

func (g *Game) drawSidePanel(screen *ebiten.Image) {
	px := g.panelX()
	vector.FillRect(screen, float32(px), 0, panelWidth, float32(g.height), color.RGBA{R: 10, G: 11, B: 14, A: 248}, false)
	vector.StrokeLine(screen, float32(px), 0, float32(px), float32(g.height), 1.0, color.RGBA{R: 50, G: 60, B: 80, A: 255}, false)

	// Title bar and step indicator.
	vector.FillRect(screen, float32(px), 0, panelWidth, 16, color.RGBA{R: 18, G: 22, B: 30, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "ARCANE LIVE VIEW", px+8, 2)
	ebitenutil.DebugPrintAt(screen, panel.StepLine(g.snap), px+8, 20)
	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("msgs %d | reveals %d | tactics %d (recent window)",
			g.counters.Messages, g.counters.Reveals, g.counters.Tactics),
		px+8, 34)
	vector.StrokeLine(screen, float32(px), 50, float32(px+panelWidth), 50, 1.0, color.RGBA{R: 50, G: 60, B: 80, A: 200}, false)

	g.drawFeed(screen, px)

	vector.StrokeLine(screen, float32(px), float32(rosterTop-10), float32(px+panelWidth), float32(rosterTop-10), 1.0, color.RGBA{R: 50, G: 60, B: 80, A: 200}, false)
	g.drawRoster(screen, px)
}

func (g *Game) drawFeed(screen *ebiten.Image, px int) {
	ebitenutil.DebugPrintAt(screen, "ACTIVITY", px+8, feedTop-12)
	if len(g.feed) == 0 {
		ebitenutil.DebugPrintAt(screen, "no events yet", px+12, feedTop+4)
		return
	}
	maxVisible := (feedBottom - feedTop) / panelLineH
	y := feedTop
	for i, e := range g.feed {
		if i >= maxVisible {
			break
		}
		vector.FillRect(screen, float32(px+5), float32(y+3), 3, 5, feedTagColors[e.Tag], false)
		line := e.Line
		if len(line) > 54 {
			line = line[:54]
		}
		ebitenutil.DebugPrintAt(screen, line, px+12, y)
		y += panelLineH
	}
}

func (g *Game) drawRoster(screen *ebiten.Image, px int) {
	ebitenutil.DebugPrintAt(screen, "AGENTS (click to focus)", px+8, rosterTop-4)
	for i, card := range g.roster {
		r, ok := g.rosterCardRect(i)
		if !ok {
			break
		}
		bg := color.RGBA{R: 18, G: 22, B: 28, A: 255}
		if card.ID == g.focusID {
			bg = color.RGBA{R: 28, G: 36, B: 48, A: 255}
		}
		vector.FillRect(screen, float32(r.x), float32(r.y), float32(r.w), float32(r.h), bg, false)

		dot := color.RGBA{R: 52, G: 152, B: 219, A: 255}
		if card.Category == api.AgentDeviant {
			dot = color.RGBA{R: 231, G: 76, B: 60, A: 255}
		}
		vector.FillRect(screen, float32(r.x+4), float32(r.y+5), 4, 8, dot, false)

		title := card.Name
		if card.Glyph != "" {
			title += " " + card.Glyph
		}
		ebitenutil.DebugPrintAt(screen, title, r.x+14, r.y+2)
		sub := fmt.Sprintf("%s | %s", card.Location, card.Activity)
		if len(sub) > 52 {
			sub = sub[:52]
		}
		ebitenutil.DebugPrintAt(screen, sub, r.x+14, r.y+13)
	}
}

type cardRect struct{ x, y, w, h int }

// rosterCardRect is the single source of card layout, shared by drawing and
// click hit-testing.
func (g *Game) rosterCardRect(i int) (cardRect, bool) {
	y := rosterTop + 8 + i*rosterCardH
	if y+rosterCardH > g.height-rosterMargin {
		return cardRect{}, false
	}
	return cardRect{x: g.panelX() + rosterMargin, y: y, w: panelWidth - 2*rosterMargin, h: rosterCardH - 4}, true
}

func (g *Game) rosterCardAt(mx, my int) string {
	for i, card := range g.roster {
		r, ok := g.rosterCardRect(i)
		if !ok {
			return ""
		}
		if mx >= r.x && mx < r.x+r.w && my >= r.y && my < r.y+r.h {
			return card.ID
		}
	}
	return ""
}

func (g *Game) drawHelp(screen *ebiten.Image) {
	lines := []string{
		"WASD/arrows  pan camera",
		"wheel, =/-   zoom",
		"click        focus agent / roster card",
		"R            attack results",
		"H            run history",
		"C            copy report to clipboard",
		"F1           hide this help",
	}
	x := g.offX + 10
	y := g.offY + viewH - len(lines)*panelLineH - 14
	vector.FillRect(screen, float32(x-4), float32(y-4), 250, float32(len(lines)*panelLineH+8), color.RGBA{R: 0, G: 0, B: 0, A: 190}, false)
	for _, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, x, y)
		y += panelLineH
	}
}
