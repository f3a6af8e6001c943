package viz

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Layer names expected in the map file. The collision layer is parsed and
// retained for tooling but never drawn.
const (
	layerGround    = "ground"
	layerDecor     = "decor"
	layerCollision = "collision"
	layerOverhead  = "overhead"
)

// TileMap is the static scene: ground and decor under the agents, overhead
// composited above them.
type TileMap struct {
	Width     int // tiles
	Height    int
	Ground    []int
	Decor     []int
	Collision []int
	Overhead  []int
	generated bool
}

// tiledFile is the subset of the Tiled JSON map format the client reads.
type tiledFile struct {
	Width     int `json:"width"`
	Height    int `json:"height"`
	TileWidth int `json:"tilewidth"`
	Layers    []struct {
		Name string `json:"name"`
		Data []int  `json:"data"`
	} `json:"layers"`
}

// LoadTileMap reads a Tiled-style JSON map. Callers fall back to
// GenerateFallbackMap when this fails; a broken map file never takes the
// client down.
func LoadTileMap(path string) (*TileMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tf tiledFile
	if err := json.Unmarshal(raw, &tf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if tf.Width <= 0 || tf.Height <= 0 {
		return nil, fmt.Errorf("map %s has no extent", path)
	}
	m := &TileMap{Width: tf.Width, Height: tf.Height}
	for _, l := range tf.Layers {
		if len(l.Data) != tf.Width*tf.Height {
			return nil, fmt.Errorf("layer %s has %d cells, want %d", l.Name, len(l.Data), tf.Width*tf.Height)
		}
		switch l.Name {
		case layerGround:
			m.Ground = l.Data
		case layerDecor:
			m.Decor = l.Data
		case layerCollision:
			m.Collision = l.Data
		case layerOverhead:
			m.Overhead = l.Data
		}
	}
	if m.Ground == nil {
		return nil, fmt.Errorf("map %s has no ground layer", path)
	}
	return m, nil
}

// GenerateFallbackMap builds a plain checker ground matching the simulation
// grid, used when no map asset is available.
func GenerateFallbackMap(w, h int) *TileMap {
	if w <= 0 {
		w = 60
	}
	if h <= 0 {
		h = 40
	}
	m := &TileMap{Width: w, Height: h, generated: true}
	m.Ground = make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gid := 1
			if (x+y)%2 == 0 {
				gid = 2
			}
			m.Ground[y*w+x] = gid
		}
	}
	return m
}

// Generated reports whether this is the fallback map.
func (m *TileMap) Generated() bool { return m.generated }

// PixelSize returns the map extents in world pixels.
func (m *TileMap) PixelSize() (float64, float64) {
	return float64(m.Width * tileSize), float64(m.Height * tileSize)
}

// Blocked reports whether the collision layer marks a cell. Kept for hover
// tooling; nothing renders it.
func (m *TileMap) Blocked(x, y int) bool {
	if m.Collision == nil || x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Collision[y*m.Width+x] != 0
}

// flatTileColors is the palette used when the tileset image is missing.
var flatTileColors = []color.RGBA{
	{R: 52, G: 64, B: 52, A: 255},
	{R: 46, G: 58, B: 46, A: 255},
	{R: 70, G: 62, B: 48, A: 255},
	{R: 58, G: 70, B: 82, A: 255},
	{R: 80, G: 76, B: 60, A: 255},
	{R: 44, G: 52, B: 64, A: 255},
}

// DrawLayer paints one tile layer. With a tileset image, gids index 32px
// tiles left-to-right, top-to-bottom, 1-based (0 = empty). Without one, each
// gid maps to a flat palette colour so the scene still reads.
func (m *TileMap) DrawLayer(dst *ebiten.Image, layer []int, tileset *ebiten.Image) {
	if layer == nil {
		return
	}
	perRow := 0
	if tileset != nil {
		perRow = tileset.Bounds().Dx() / tileSize
		if perRow == 0 {
			tileset = nil
		}
	}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			gid := layer[y*m.Width+x]
			if gid <= 0 {
				continue
			}
			px := float64(x * tileSize)
			py := float64(y * tileSize)
			if tileset == nil {
				col := flatTileColors[(gid-1)%len(flatTileColors)]
				vector.FillRect(dst, float32(px), float32(py), tileSize, tileSize, col, false)
				continue
			}
			idx := gid - 1
			sx := (idx % perRow) * tileSize
			sy := (idx / perRow) * tileSize
			src := tileset.SubImage(image.Rect(sx, sy, sx+tileSize, sy+tileSize)).(*ebiten.Image)
			var op ebiten.DrawImageOptions
			op.GeoM.Translate(px, py)
			dst.DrawImage(src, &op)
		}
	}
}
