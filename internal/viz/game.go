// Package viz is the Ebiten client: a camera over the tile world with
// animated agents, plus the live side panels. All simulation state arrives
// through the poll engine; nothing here computes simulation results.
package viz

import (
	"math"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/arcane-sim/arcaneviz/internal/api"
	"github.com/arcane-sim/arcaneviz/internal/history"
	"github.com/arcane-sim/arcaneviz/internal/panel"
	"github.com/arcane-sim/arcaneviz/internal/poll"
	"github.com/arcane-sim/arcaneviz/internal/report"
)

// borderWidth is the pixel gap between the window edge and the world viewport.
const borderWidth = 16

// Viewport and side panel dimensions.
const (
	viewW      = 960
	viewH      = 640
	panelWidth = 360
)

// Config carries the wiring the command layer resolved.
type Config struct {
	ServerURL    string
	PollInterval time.Duration
	EventsWindow int
	AssetsDir    string
}

// Game is the Ebiten client. Everything it owns is mutated only from Update,
// so the poll goroutine and the frame loop never race.
type Game struct {
	width  int
	height int
	offX   int // viewport origin
	offY   int

	log     *zap.Logger
	engine  *poll.Engine
	browser *history.Browser
	sprites *SpriteStore

	tiles   *TileMap
	tileset *ebiten.Image
	cam     *Camera
	interp  *Interp

	// Offscreen buffer for the world — camera transform applied on blit.
	worldBuf *ebiten.Image

	// Latest synchronized views, replaced wholesale per update.
	snap     *api.Snapshot
	agents   map[string]api.AgentState
	feed     []panel.FeedEntry
	counters panel.Counters
	roster   []panel.RosterCard
	results  panel.ResultsVM
	lastRes  *api.ResultsSnapshot

	resultsOpen bool
	showHelp    bool
	focusID     string
	frame       int

	prevKeys      map[ebiten.Key]bool
	prevMouseLeft bool
}

// New wires the client together. The engine is constructed here but started
// by Run, so a Game can be built and inspected without touching the network.
func New(cfg Config, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	client := api.NewClient(cfg.ServerURL, log)

	g := &Game{
		width:    borderWidth + viewW + borderWidth + panelWidth,
		height:   borderWidth + viewH + borderWidth,
		offX:     borderWidth,
		offY:     borderWidth,
		log:      log,
		browser:  history.New(client, log),
		sprites:  NewSpriteStore(cfg.AssetsDir, log),
		interp:   NewInterp(),
		agents:   map[string]api.AgentState{},
		results:  panel.BuildResults(nil, nil),
		prevKeys: map[ebiten.Key]bool{},
	}

	g.tiles = loadMapWithFallback(filepath.Join(cfg.AssetsDir, "maps", "office.json"), log)
	g.tileset = loadTileset(filepath.Join(cfg.AssetsDir, "maps", "tiles.png"), log)
	ww, wh := g.tiles.PixelSize()
	g.cam = NewCamera(viewW, viewH, ww, wh)
	g.worldBuf = ebiten.NewImage(int(ww), int(wh))

	g.engine = poll.NewEngine(client, cfg.PollInterval, cfg.EventsWindow, log)
	g.engine.OnState(g.applySnapshot)
	g.engine.OnEvents(g.applyEvents)
	g.engine.OnResults(g.applyResults)
	return g
}

func loadMapWithFallback(path string, log *zap.Logger) *TileMap {
	m, err := LoadTileMap(path)
	if err != nil {
		log.Info("no tile map, using generated ground", zap.String("path", path), zap.Error(err))
		return GenerateFallbackMap(0, 0)
	}
	return m
}

func loadTileset(path string, log *zap.Logger) *ebiten.Image {
	store := NewSpriteStore("", log)
	img := store.decode(path)
	if img == nil {
		return nil
	}
	return ebiten.NewImageFromImage(img)
}

// Run starts polling and hands control to Ebiten until the window closes.
func (g *Game) Run(title string) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(g.width, g.height)
	g.engine.Start()
	defer g.engine.Stop()
	return ebiten.RunGame(g)
}

// --- poll observers (invoked from Update via engine.Deliver) ---

func (g *Game) applySnapshot(s *api.Snapshot) {
	firstSnap := g.snap == nil
	g.snap = s
	g.agents = s.Agents
	g.roster = panel.BuildRoster(s)
	added, removed := g.interp.Apply(s)
	for _, id := range removed {
		if id == g.focusID {
			g.focusID = ""
			g.cam.CancelFocus()
		}
	}
	// Warm the sprite cache for new arrivals so their first frame doesn't
	// stall on disk I/O mid-draw.
	for _, id := range added {
		g.sprites.Profile(s.Agents[id].Sprite)
	}
	// A generated map sizes itself from the first snapshot's grid.
	if firstSnap && g.tiles.Generated() && s.Grid.Width > 0 {
		g.tiles = GenerateFallbackMap(s.Grid.Width, s.Grid.Height)
		ww, wh := g.tiles.PixelSize()
		g.cam.Resize(ww, wh)
		g.worldBuf = ebiten.NewImage(int(ww), int(wh))
	}
}

func (g *Game) applyEvents(events []api.EventRecord) {
	g.feed = panel.BuildFeed(events)
	g.counters = panel.CountWindow(events)
}

func (g *Game) applyResults(res *api.ResultsSnapshot, err error) {
	g.results = panel.BuildResults(res, err)
	g.lastRes = res
}

// --- ebiten.Game ---

func (g *Game) Update() error {
	g.frame++
	g.engine.Deliver()
	g.browser.Pump()
	g.handleInput()
	g.interp.Advance()

	if g.cam.Focusing() && g.focusID != "" {
		if m := g.interp.Mover(g.focusID); m != nil {
			g.cam.StepFocus(m.VisualX, m.VisualY)
		} else {
			g.cam.CancelFocus()
		}
	}
	return nil
}

func (g *Game) Layout(_, _ int) (int, int) { return g.width, g.height }

// FocusAgent eases the camera to an agent. Exposed so panel surfaces (roster
// card clicks) can drive the world camera without touching its internals.
func (g *Game) FocusAgent(id string) {
	if g.interp.Mover(id) == nil {
		return
	}
	g.focusID = id
	g.cam.StartFocus()
}

// --- input ---

func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k] && !g.prevKeys[k]
	}

	historyOpen := g.browser.Mode() != history.ModeClosed

	// Camera pan: WASD or arrows when the history browser isn't capturing keys.
	if !historyOpen {
		panSpeed := 6.0 / g.cam.Zoom
		var dx, dy float64
		if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
			dy -= panSpeed
		}
		if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
			dy += panSpeed
		}
		if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
			dx -= panSpeed
		}
		if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
			dx += panSpeed
		}
		g.cam.Pan(dx, dy)
	}

	// Zoom: mouse wheel or =/- keys.
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.cam.ZoomBy(math.Pow(1.12, wy))
	}
	if pressed(ebiten.KeyEqual) {
		g.cam.ZoomBy(1.25)
	}
	if pressed(ebiten.KeyMinus) {
		g.cam.ZoomBy(1 / 1.25)
	}

	// R: toggle the results view.
	if pressed(ebiten.KeyR) {
		g.resultsOpen = !g.resultsOpen
	}

	// H: toggle the history browser.
	if pressed(ebiten.KeyH) {
		g.browser.Toggle()
	}

	// History navigation.
	if historyOpen {
		if pressed(ebiten.KeyArrowUp) {
			g.browser.MoveCursor(-1)
		}
		if pressed(ebiten.KeyArrowDown) {
			g.browser.MoveCursor(1)
		}
		if pressed(ebiten.KeyEnter) {
			g.browser.Select()
		}
		if pressed(ebiten.KeyEscape) {
			g.browser.Back()
		}
	}

	// C: copy the visible report to the clipboard.
	if pressed(ebiten.KeyC) {
		g.copyReport()
	}

	// F1: toggle the key legend.
	if pressed(ebiten.KeyF1) {
		g.showHelp = !g.showHelp
	}

	// Left click: entity focus in the viewport, roster card focus in the panel.
	mousePressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if mousePressed && !g.prevMouseLeft {
		mx, my := ebiten.CursorPosition()
		g.handleClick(mx, my)
	}
	g.prevMouseLeft = mousePressed

	g.prevKeys = currentKeys
}

func (g *Game) copyReport() {
	var res *api.ResultsSnapshot
	if g.browser.Mode() == history.ModeDetail {
		res, _ = g.browser.Detail()
	} else {
		res = g.lastRes
	}
	if res == nil {
		return
	}
	if err := clipboard.WriteAll(report.Format(res)); err != nil {
		g.log.Debug("clipboard write failed", zap.Error(err))
	}
}

func (g *Game) handleClick(mx, my int) {
	// Inside the world viewport: hit-test entities in world space.
	if mx >= g.offX && mx < g.offX+viewW && my >= g.offY && my < g.offY+viewH {
		wx, wy := g.cam.ScreenToWorld(float64(mx-g.offX), float64(my-g.offY))
		pickRadius := 16.0 / g.cam.Zoom
		best := pickRadius * pickRadius
		hit := ""
		g.interp.Each(func(m *Mover) {
			dx := m.VisualX - wx
			dy := m.VisualY - wy
			if d2 := dx*dx + dy*dy; d2 < best {
				best = d2
				hit = m.ID
			}
		})
		if hit != "" {
			g.FocusAgent(hit)
		}
		return
	}
	// Inside the side panel: roster card hit test.
	if id := g.rosterCardAt(mx, my); id != "" {
		g.FocusAgent(id)
	}
}
