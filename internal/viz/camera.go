package viz

import "math"

const (
	zoomMin = 0.5
	zoomMax = 4.0
	// focusFrames is the duration of a programmatic focus ease.
	focusFrames = 45
)

// Camera is a bounded view over the world. X/Y is the world-space centre of
// the viewport. All units are world pixels.
type Camera struct {
	X    float64
	Y    float64
	Zoom float64

	viewW  float64
	viewH  float64
	worldW float64
	worldH float64

	focusActive bool
	focusFrame  int
	focusFromX  float64
	focusFromY  float64
}

// NewCamera builds a camera centred on the world.
func NewCamera(viewW, viewH, worldW, worldH float64) *Camera {
	c := &Camera{
		X: worldW / 2, Y: worldH / 2, Zoom: 1.0,
		viewW: viewW, viewH: viewH, worldW: worldW, worldH: worldH,
	}
	c.clamp()
	return c
}

// Resize updates the world extents (a new map was loaded) and re-clamps.
func (c *Camera) Resize(worldW, worldH float64) {
	c.worldW = worldW
	c.worldH = worldH
	c.clamp()
}

// Pan moves the centre by a world-space delta. Manual panning cancels any
// focus ease in progress.
func (c *Camera) Pan(dx, dy float64) {
	if dx != 0 || dy != 0 {
		c.focusActive = false
	}
	c.X += dx
	c.Y += dy
	c.clamp()
}

// ZoomBy multiplies the zoom factor, clamped to [zoomMin, zoomMax].
func (c *Camera) ZoomBy(f float64) {
	c.Zoom *= f
	if c.Zoom < zoomMin {
		c.Zoom = zoomMin
	}
	if c.Zoom > zoomMax {
		c.Zoom = zoomMax
	}
	c.clamp()
}

// StartFocus begins an ease toward a (possibly moving) focus point. The
// caller feeds the point each frame via StepFocus.
func (c *Camera) StartFocus() {
	c.focusActive = true
	c.focusFrame = 0
	c.focusFromX = c.X
	c.focusFromY = c.Y
}

// Focusing reports whether a focus ease is running.
func (c *Camera) Focusing() bool { return c.focusActive }

// CancelFocus aborts the ease, leaving the camera where it is.
func (c *Camera) CancelFocus() { c.focusActive = false }

// StepFocus advances the ease one frame toward (tx, ty). The target is
// re-read every frame so a walking agent stays centred when the ease lands.
func (c *Camera) StepFocus(tx, ty float64) {
	if !c.focusActive {
		return
	}
	c.focusFrame++
	t := float64(c.focusFrame) / focusFrames
	if t >= 1 {
		c.X = tx
		c.Y = ty
		c.focusActive = false
		c.clamp()
		return
	}
	s := smoothstep(t)
	c.X = c.focusFromX + (tx-c.focusFromX)*s
	c.Y = c.focusFromY + (ty-c.focusFromY)*s
	c.clamp()
}

func smoothstep(t float64) float64 { return t * t * (3 - 2*t) }

// clamp keeps the visible region inside the world's pixel extents. When the
// world is smaller than the viewport on an axis, the camera centres it.
func (c *Camera) clamp() {
	halfW := c.viewW / 2 / c.Zoom
	halfH := c.viewH / 2 / c.Zoom
	c.X = clampAxis(c.X, halfW, c.worldW)
	c.Y = clampAxis(c.Y, halfH, c.worldH)
}

func clampAxis(v, half, world float64) float64 {
	if world <= 2*half {
		return world / 2
	}
	return math.Min(math.Max(v, half), world-half)
}

// ScreenToWorld inverts the draw transform for a viewport-relative screen
// point (already offset by the viewport origin).
func (c *Camera) ScreenToWorld(sx, sy float64) (float64, float64) {
	wx := (sx-c.viewW/2)/c.Zoom + c.X
	wy := (sy-c.viewH/2)/c.Zoom + c.Y
	return wx, wy
}
