package viz

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/arcane-sim/arcaneviz/internal/history"
	"github.com/arcane-sim/arcaneviz/internal/panel"
)

// Overlay geometry, centred over the world viewport.
const (
	overlayMargin = 40
	trustBarW     = 140
	trustBarH     = 6
)

// overlayFrame fills and outlines the overlay backdrop and returns its
// content origin.
func (g *Game) overlayFrame(screen *ebiten.Image, title string) (int, int) {
	x := g.offX + overlayMargin
	y := g.offY + overlayMargin
	w := viewW - 2*overlayMargin
	h := viewH - 2*overlayMargin
	vector.FillRect(screen, float32(x), float32(y), float32(w), float32(h), color.RGBA{R: 8, G: 10, B: 14, A: 240}, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 1.5, color.RGBA{R: 70, G: 90, B: 120, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, title, x+12, y+8)
	vector.StrokeLine(screen, float32(x), float32(y+24), float32(x+w), float32(y+24), 1.0, color.RGBA{R: 50, G: 60, B: 80, A: 200}, false)
	return x + 12, y + 32
}

func (g *Game) drawResultsOverlay(screen *ebiten.Image) {
	x, y := g.overlayFrame(screen, "ATTACK RESULTS  [R to close, C to copy]")
	g.drawResultsVM(screen, g.results, x, y)
}

// drawResultsVM renders a results viewmodel. Shared by the live overlay and
// the history detail view.
func (g *Game) drawResultsVM(screen *ebiten.Image, vm panel.ResultsVM, x, y int) {
	if !vm.Available {
		ebitenutil.DebugPrintAt(screen, vm.Message, x, y)
		return
	}
	bottom := g.offY + viewH - overlayMargin - 16

	ebitenutil.DebugPrintAt(screen, "Attacker: "+vm.Attacker, x, y)
	y += panelLineH
	ebitenutil.DebugPrintAt(screen, vm.RunLine, x, y)
	y += panelLineH + 4

	for _, t := range vm.Targets {
		if y > bottom-5*panelLineH {
			ebitenutil.DebugPrintAt(screen, "...", x, y)
			break
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s  %s", t.Name, t.PhaseLine), x, y)
		y += panelLineH

		// Trust bar, tier-coloured, with the raw value beside it.
		bx := float32(x + 8)
		by := float32(y + 2)
		vector.FillRect(screen, bx, by, trustBarW, trustBarH, color.RGBA{R: 30, G: 34, B: 42, A: 255}, false)
		vector.FillRect(screen, bx, by, float32(trustBarW*t.Trust), trustBarH, tierColors[t.Tier], false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("trust %.2f", t.Trust), x+8+trustBarW+8, y)
		y += panelLineH

		ebitenutil.DebugPrintAt(screen, "  msgs "+t.MessageLine+" | via "+t.ChannelLine, x, y)
		y += panelLineH
		for _, tc := range t.Tactics {
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  tactic: %s (x%d)", tc.Name, tc.Count), x, y)
			y += panelLineH
		}
		for _, item := range t.Items {
			mark := " "
			if item.High {
				mark = "!"
			}
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf(" %s %s", mark, item.Line), x, y)
			y += panelLineH
		}
		y += 4
	}

	y += 4
	ebitenutil.DebugPrintAt(screen, vm.SummaryLine, x, y)
	y += panelLineH
	verdictCol := color.RGBA{R: 150, G: 160, B: 170, A: 255}
	if vm.Success {
		verdictCol = color.RGBA{R: 220, G: 60, B: 60, A: 255}
	}
	vector.FillRect(screen, float32(x-4), float32(y), 3, panelLineH, verdictCol, false)
	ebitenutil.DebugPrintAt(screen, vm.VerdictLine, x+4, y)
}

func (g *Game) drawHistory(screen *ebiten.Image) {
	switch g.browser.Mode() {
	case history.ModeListLoading:
		x, y := g.overlayFrame(screen, "RUN HISTORY")
		ebitenutil.DebugPrintAt(screen, "loading run list...", x, y)
	case history.ModeListError:
		x, y := g.overlayFrame(screen, "RUN HISTORY")
		ebitenutil.DebugPrintAt(screen, "could not load run list", x, y)
		ebitenutil.DebugPrintAt(screen, "Esc to close, H to retry", x, y+panelLineH)
	case history.ModeList:
		g.drawRunList(screen)
	case history.ModeDetailLoading:
		x, y := g.overlayFrame(screen, "RUN "+g.browser.SelectedRun())
		ebitenutil.DebugPrintAt(screen, "loading results...", x, y)
	case history.ModeDetail:
		x, y := g.overlayFrame(screen, "RUN "+g.browser.SelectedRun()+"  [Esc back, C copy]")
		res, err := g.browser.Detail()
		g.drawResultsVM(screen, panel.BuildResults(res, err), x, y)
	case history.ModeDetailError:
		x, y := g.overlayFrame(screen, "RUN "+g.browser.SelectedRun())
		ebitenutil.DebugPrintAt(screen, "could not load this run", x, y)
		ebitenutil.DebugPrintAt(screen, "Esc to go back", x, y+panelLineH)
	}
}

func (g *Game) drawRunList(screen *ebiten.Image) {
	x, y := g.overlayFrame(screen, "RUN HISTORY  [Up/Down, Enter opens, Esc closes]")
	runs := g.browser.Runs()
	if len(runs) == 0 {
		ebitenutil.DebugPrintAt(screen, "no archived runs", x, y)
		return
	}
	bottom := g.offY + viewH - overlayMargin - 16
	maxVisible := (bottom - y) / (panelLineH + 4)

	// Keep the cursor on screen by scrolling the window.
	first := 0
	if c := g.browser.Cursor(); c >= maxVisible {
		first = c - maxVisible + 1
	}
	for i := first; i < len(runs) && i < first+maxVisible; i++ {
		r := runs[i]
		if i == g.browser.Cursor() {
			vector.FillRect(screen, float32(x-6), float32(y-1), viewW-2*overlayMargin-12, panelLineH+2, color.RGBA{R: 28, G: 36, B: 48, A: 255}, false)
		}
		line := fmt.Sprintf("%-28s %-18s %5d steps %3d reveals %7.1f KB",
			panel.Sanitize(r.RunID), panel.Sanitize(r.Date), r.Steps, r.Reveals, r.SizeKB)
		ebitenutil.DebugPrintAt(screen, line, x, y)
		y += panelLineH + 4
	}
}
