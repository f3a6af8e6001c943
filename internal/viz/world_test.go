package viz

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMap(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "map.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write map: %v", err)
	}
	return path
}

func TestLoadTileMap_Layers(t *testing.T) {
	path := writeMap(t, `{
		"width": 2, "height": 2, "tilewidth": 32,
		"layers": [
			{"name": "ground", "data": [1, 1, 2, 2]},
			{"name": "decor", "data": [0, 3, 0, 0]},
			{"name": "collision", "data": [0, 0, 1, 0]},
			{"name": "overhead", "data": [0, 0, 0, 4]}
		]
	}`)
	m, err := LoadTileMap(path)
	if err != nil {
		t.Fatalf("LoadTileMap: %v", err)
	}
	if m.Width != 2 || m.Height != 2 {
		t.Fatalf("extent = %dx%d, want 2x2", m.Width, m.Height)
	}
	if m.Ground == nil || m.Decor == nil || m.Collision == nil || m.Overhead == nil {
		t.Fatalf("missing layers: %+v", m)
	}
	if m.Generated() {
		t.Fatal("loaded map reported as generated")
	}
	ww, wh := m.PixelSize()
	if ww != 2*tileSize || wh != 2*tileSize {
		t.Fatalf("PixelSize = %v,%v", ww, wh)
	}
}

func TestLoadTileMap_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `tiles!`},
		{"no extent", `{"width": 0, "height": 4, "layers": []}`},
		{"cell count mismatch", `{"width": 2, "height": 2, "layers": [{"name": "ground", "data": [1]}]}`},
		{"no ground layer", `{"width": 1, "height": 1, "layers": [{"name": "decor", "data": [1]}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadTileMap(writeMap(t, tc.body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, err := LoadTileMap(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestGenerateFallbackMap(t *testing.T) {
	m := GenerateFallbackMap(3, 2)
	if !m.Generated() {
		t.Fatal("fallback map not marked generated")
	}
	if len(m.Ground) != 6 {
		t.Fatalf("ground cells = %d, want 6", len(m.Ground))
	}
	for i, gid := range m.Ground {
		if gid != 1 && gid != 2 {
			t.Fatalf("cell %d has gid %d", i, gid)
		}
	}

	// Non-positive extents fall back to the default grid.
	d := GenerateFallbackMap(0, -1)
	if d.Width != 60 || d.Height != 40 {
		t.Fatalf("default extent = %dx%d", d.Width, d.Height)
	}
}

func TestBlocked(t *testing.T) {
	m := &TileMap{Width: 2, Height: 2, Collision: []int{0, 1, 0, 0}}
	if !m.Blocked(1, 0) {
		t.Fatal("marked cell not blocked")
	}
	if m.Blocked(0, 0) {
		t.Fatal("clear cell blocked")
	}
	// Out of range and missing layer are never blocked.
	if m.Blocked(-1, 0) || m.Blocked(0, 5) {
		t.Fatal("out-of-range cell blocked")
	}
	empty := &TileMap{Width: 2, Height: 2}
	if empty.Blocked(0, 0) {
		t.Fatal("blocked without a collision layer")
	}
}
