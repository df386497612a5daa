// Package interact handles pan and zoom of the workspace view.
package interact

import (
	"gioui.org/io/pointer"

	"github.com/elektrokombinacija/drone-route-planner/internal/geo"
)

// Zoom limits in screen pixels per world unit. Projected scenarios span
// anything from a few hundred to a few hundred thousand units.
const (
	MinZoom = 1e-4
	MaxZoom = 100
)

// Camera maps world coordinates to screen pixels.
type Camera struct {
	OffsetX float32 // pan offset in screen pixels
	OffsetY float32
	Zoom    float32

	dragging bool
	lastX    float32
	lastY    float32

	home   geo.Box
	fitted bool
}

// NewCamera creates a camera that fits home on the first frame.
func NewCamera(home geo.Box) *Camera {
	return &Camera{Zoom: 1, home: home}
}

// Reset refits the home bounds on the next frame.
func (c *Camera) Reset() { c.fitted = false }

// EnsureFitted fits the home bounds into a screen of the given size once.
func (c *Camera) EnsureFitted(screenWidth, screenHeight float32) {
	if c.fitted || screenWidth <= 0 || screenHeight <= 0 {
		return
	}
	c.FitBounds(c.home, screenWidth, screenHeight, 40)
	c.fitted = true
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(worldX, worldY float64) (screenX, screenY float32) {
	screenX = float32(worldX)*c.Zoom + c.OffsetX
	screenY = float32(worldY)*c.Zoom + c.OffsetY
	return
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(screenX, screenY float32) (worldX, worldY float64) {
	worldX = float64((screenX - c.OffsetX) / c.Zoom)
	worldY = float64((screenY - c.OffsetY) / c.Zoom)
	return
}

// HandleEvent pans on secondary or middle drag and zooms on scroll.
func (c *Camera) HandleEvent(ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		if ev.Buttons.Contain(pointer.ButtonSecondary) || ev.Buttons.Contain(pointer.ButtonTertiary) {
			c.dragging = true
		}
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y

	case pointer.Drag:
		if c.dragging {
			c.Pan(ev.Position.X-c.lastX, ev.Position.Y-c.lastY)
		}
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y

	case pointer.Release:
		c.dragging = false

	case pointer.Scroll:
		switch {
		case ev.Scroll.Y > 0:
			c.ZoomBy(1/1.1, ev.Position.X, ev.Position.Y)
		case ev.Scroll.Y < 0:
			c.ZoomBy(1.1, ev.Position.X, ev.Position.Y)
		}
	}
}

// Pan moves the view by a screen delta.
func (c *Camera) Pan(dx, dy float32) {
	c.OffsetX += dx
	c.OffsetY += dy
}

// ZoomBy zooms by factor keeping the world point under (centerX, centerY) fixed.
func (c *Camera) ZoomBy(factor float32, centerX, centerY float32) {
	worldX, worldY := c.ScreenToWorld(centerX, centerY)
	c.Zoom = clampZoom(c.Zoom * factor)
	newX, newY := c.WorldToScreen(worldX, worldY)
	c.OffsetX += centerX - newX
	c.OffsetY += centerY - newY
}

// CenterOn centers the camera on a world position.
func (c *Camera) CenterOn(worldX, worldY float64, screenWidth, screenHeight float32) {
	c.OffsetX = screenWidth/2 - float32(worldX)*c.Zoom
	c.OffsetY = screenHeight/2 - float32(worldY)*c.Zoom
}

// FitBounds zooms and centers so b fills the screen less margin pixels on
// every side. A degenerate box is only centered.
func (c *Camera) FitBounds(b geo.Box, screenWidth, screenHeight float32, margin float32) {
	worldW := b.MaxX - b.MinX
	worldH := b.MaxY - b.MinY
	if worldW > 0 || worldH > 0 {
		zoomX := float32(MaxZoom)
		if worldW > 0 {
			zoomX = (screenWidth - 2*margin) / float32(worldW)
		}
		zoomY := float32(MaxZoom)
		if worldH > 0 {
			zoomY = (screenHeight - 2*margin) / float32(worldH)
		}
		c.Zoom = clampZoom(min(zoomX, zoomY))
	}
	c.CenterOn((b.MinX+b.MaxX)/2, (b.MinY+b.MaxY)/2, screenWidth, screenHeight)
}

func clampZoom(z float32) float32 {
	return min(max(z, MinZoom), MaxZoom)
}
