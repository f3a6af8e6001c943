package viz

import (
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
)

// Sheet geometry: 4 direction rows (down, left, right, up) of walkFrames
// columns each.
const walkFrames = 3

// spriteSize is the on-map pixel size every sprite is normalized to.
const spriteSize = 32

// SpriteStore resolves agent sprite keys to images by naming convention:
// <assets>/characters/profile/<key>.png for the single image and
// <assets>/characters/sheets/<key>.png for the walk sheet. A missing or
// unreadable file is cached as absent; callers draw a fallback disc instead.
type SpriteStore struct {
	dir string
	log *zap.Logger

	profiles map[string]*ebiten.Image        // nil value = known missing
	frames   map[string][]*ebiten.Image      // 4*walkFrames frames, nil slice = known missing
}

// NewSpriteStore builds a store rooted at the assets directory.
func NewSpriteStore(dir string, log *zap.Logger) *SpriteStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SpriteStore{
		dir:      dir,
		log:      log,
		profiles: make(map[string]*ebiten.Image),
		frames:   make(map[string][]*ebiten.Image),
	}
}

// Profile returns the agent's single-image sprite, or nil when missing.
func (s *SpriteStore) Profile(key string) *ebiten.Image {
	if img, ok := s.profiles[key]; ok {
		return img
	}
	img := s.loadScaled(filepath.Join(s.dir, "characters", "profile", key+".png"))
	s.profiles[key] = img
	return img
}

// Frame returns one walk-sheet frame for a facing, or nil when the sheet is
// missing. frame wraps modulo the sheet's column count.
func (s *SpriteStore) Frame(key string, f Facing, frame int) *ebiten.Image {
	fs, ok := s.frames[key]
	if !ok {
		fs = s.loadSheet(filepath.Join(s.dir, "characters", "sheets", key+".png"))
		s.frames[key] = fs
	}
	if fs == nil {
		return nil
	}
	row := int(f)
	return fs[row*walkFrames+frame%walkFrames]
}

// loadScaled decodes an image and normalizes it to spriteSize.
func (s *SpriteStore) loadScaled(path string) *ebiten.Image {
	src := s.decode(path)
	if src == nil {
		return nil
	}
	return ebiten.NewImageFromImage(scaleTo(src, spriteSize, spriteSize))
}

// loadSheet decodes a 4-row walk sheet and slices it into normalized frames.
func (s *SpriteStore) loadSheet(path string) []*ebiten.Image {
	src := s.decode(path)
	if src == nil {
		return nil
	}
	b := src.Bounds()
	fw := b.Dx() / walkFrames
	fh := b.Dy() / 4
	if fw == 0 || fh == 0 {
		s.log.Debug("sheet too small", zap.String("path", path))
		return nil
	}
	out := make([]*ebiten.Image, 0, 4*walkFrames)
	for row := 0; row < 4; row++ {
		for col := 0; col < walkFrames; col++ {
			r := image.Rect(b.Min.X+col*fw, b.Min.Y+row*fh, b.Min.X+(col+1)*fw, b.Min.Y+(row+1)*fh)
			cell := image.NewRGBA(image.Rect(0, 0, fw, fh))
			xdraw.Draw(cell, cell.Bounds(), src, r.Min, xdraw.Src)
			out = append(out, ebiten.NewImageFromImage(scaleTo(cell, spriteSize, spriteSize)))
		}
	}
	return out
}

func (s *SpriteStore) decode(path string) image.Image {
	f, err := os.Open(path)
	if err != nil {
		s.log.Debug("sprite missing", zap.String("path", path))
		return nil
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		s.log.Debug("sprite unreadable", zap.String("path", path), zap.Error(err))
		return nil
	}
	return img
}

func scaleTo(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}
