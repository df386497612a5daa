// Package draw renders scenario elements onto a Gio canvas.
package draw

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/vis/interact"
)

var (
	ColorDelivery       = color.NRGBA{R: 100, G: 140, B: 220, A: 255}
	ColorDeliveryDone   = color.NRGBA{R: 80, G: 180, B: 100, A: 255}
	ColorDeliveryMissed = color.NRGBA{R: 220, G: 80, B: 70, A: 255}
	ColorDroneStart     = color.NRGBA{R: 100, G: 120, B: 140, A: 255}
	ColorEdge           = color.NRGBA{R: 80, G: 90, B: 100, A: 90}
	ColorGrid           = color.NRGBA{R: 40, G: 45, B: 50, A: 255}
	ColorSelected       = color.NRGBA{R: 255, G: 200, B: 80, A: 255}
)

// DeliveryStatus picks the marker colour of a delivery point.
type DeliveryStatus int

const (
	StatusPending DeliveryStatus = iota
	StatusDone
	StatusMissed
)

// DrawDeliveries draws every delivery point, sized by priority.
func DrawDeliveries(gtx layout.Context, deliveries []*core.DeliveryPoint, status func(core.DeliveryID) DeliveryStatus, camera *interact.Camera) {
	for _, dp := range deliveries {
		col := ColorDelivery
		switch status(dp.ID) {
		case StatusDone:
			col = ColorDeliveryDone
		case StatusMissed:
			col = ColorDeliveryMissed
		}
		sx, sy := camera.WorldToScreen(dp.Pos.X, dp.Pos.Y)
		r := (3 + float32(dp.Priority)) * min(camera.Zoom, 1.5)
		drawDiamond(gtx, sx, sy, r, col)
	}
}

// DrawStarts marks each drone's launch pad.
func DrawStarts(gtx layout.Context, drones []*core.Drone, camera *interact.Camera) {
	for _, d := range drones {
		sx, sy := camera.WorldToScreen(d.Start.X, d.Start.Y)
		DrawCircleOutline(gtx, sx, sy, 9*min(camera.Zoom, 1.5), ColorDroneStart, 2)
	}
}

// DrawGraph renders the edges of the spatial graph. Each pair is drawn once.
func DrawGraph(gtx layout.Context, ws *core.Workspace, camera *interact.Camera) {
	for _, from := range ws.Nodes() {
		edges, err := ws.Neighbors(from)
		if err != nil {
			continue
		}
		a, _ := ws.Position(from)
		for _, e := range edges {
			if !nodeLess(from, e.To) {
				if _, back := ws.Edge(e.To, from); back {
					continue
				}
			}
			b, _ := ws.Position(e.To)
			DrawEdge(gtx, a, b, camera, ColorEdge)
		}
	}
}

func nodeLess(a, b core.NodeID) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.ID < b.ID
}

// DrawEdge draws a thin line between two world positions.
func DrawEdge(gtx layout.Context, p1, p2 core.Pos, camera *interact.Camera, col color.NRGBA) {
	x1, y1 := camera.WorldToScreen(p1.X, p1.Y)
	x2, y2 := camera.WorldToScreen(p2.X, p2.Y)
	drawLine(gtx, x1, y1, x2, y2, 1, col)
}

// DrawCircleOutline draws a ring of the given stroke width.
func DrawCircleOutline(gtx layout.Context, centerX, centerY float32, radius float32, col color.NRGBA, strokeWidth float32) {
	const segments = 24
	var path clip.Path
	path.Begin(gtx.Ops)
	ring := func(r float32) {
		path.MoveTo(f32.Pt(centerX+r, centerY))
		for i := 1; i <= segments; i++ {
			angle := float64(i) * 2 * math.Pi / segments
			path.LineTo(f32.Pt(centerX+r*float32(math.Cos(angle)), centerY+r*float32(math.Sin(angle))))
		}
		path.Close()
	}
	ring(radius)
	ring(max(radius-strokeWidth, 0))
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

// HitTest checks whether a screen point lies within radius pixels of pos.
func HitTest(screenX, screenY float32, pos core.Pos, camera *interact.Camera, radius float32) bool {
	vx, vy := camera.WorldToScreen(pos.X, pos.Y)
	dx := screenX - vx
	dy := screenY - vy
	return dx*dx+dy*dy <= radius*radius
}

// DrawGrid draws a background grid with gridSize world units per cell.
func DrawGrid(gtx layout.Context, camera *interact.Camera, gridSize float64, col color.NRGBA) {
	bounds := gtx.Constraints.Max
	minX, minY := camera.ScreenToWorld(0, 0)
	maxX, maxY := camera.ScreenToWorld(float32(bounds.X), float32(bounds.Y))
	// Keep the line count bounded when zoomed far out.
	for (maxX-minX)/gridSize > 80 {
		gridSize *= 5
	}

	for x := math.Floor(minX/gridSize) * gridSize; x <= maxX; x += gridSize {
		sx, _ := camera.WorldToScreen(x, 0)
		if sx >= 0 && sx <= float32(bounds.X) {
			paint.FillShape(gtx.Ops, col, clip.Rect(image.Rect(int(sx), 0, int(sx)+1, bounds.Y)).Op())
		}
	}
	for y := math.Floor(minY/gridSize) * gridSize; y <= maxY; y += gridSize {
		_, sy := camera.WorldToScreen(0, y)
		if sy >= 0 && sy <= float32(bounds.Y) {
			paint.FillShape(gtx.Ops, col, clip.Rect(image.Rect(0, int(sy), bounds.X, int(sy)+1)).Op())
		}
	}
}

func drawDiamond(gtx layout.Context, cx, cy, r float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(cx, cy-r))
	path.LineTo(f32.Pt(cx+r, cy))
	path.LineTo(f32.Pt(cx, cy+r))
	path.LineTo(f32.Pt(cx-r, cy))
	path.Close()
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}
