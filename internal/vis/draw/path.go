package draw

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/vis/interact"
)

// DrawPath draws a polyline through world points.
func DrawPath(gtx layout.Context, points []core.Pos, camera *interact.Camera, col color.NRGBA, width float32) {
	for i := 0; i+1 < len(points); i++ {
		x1, y1 := camera.WorldToScreen(points[i].X, points[i].Y)
		x2, y2 := camera.WorldToScreen(points[i+1].X, points[i+1].Y)
		drawLine(gtx, x1, y1, x2, y2, width, col)
	}
}

// DrawPathTrail draws the flown part of a route, fading towards its start.
func DrawPathTrail(gtx layout.Context, history []core.Pos, camera *interact.Camera, baseColor color.NRGBA, maxWidth float32) {
	n := len(history)
	for i := 0; i < n-1; i++ {
		col := baseColor
		col.A = uint8(60 + float64(i+1)/float64(n)*180)
		w := maxWidth * (0.4 + 0.6*float32(i+1)/float32(n))

		x1, y1 := camera.WorldToScreen(history[i].X, history[i].Y)
		x2, y2 := camera.WorldToScreen(history[i+1].X, history[i+1].Y)
		drawLine(gtx, x1, y1, x2, y2, w, col)
	}
}

// DrawRoute draws a planned route dimmed, with an arrow on each leg.
func DrawRoute(gtx layout.Context, route []core.Pos, camera *interact.Camera, col color.NRGBA) {
	dim := col
	dim.A = 80
	DrawPath(gtx, route, camera, dim, 1.5)

	for i := 0; i+1 < len(route); i++ {
		a, b := route[i], route[i+1]
		length := a.Dist(b)
		if length*float64(camera.Zoom) < 20 {
			continue
		}
		drawArrow(gtx, (a.X+b.X)/2, (a.Y+b.Y)/2, (b.X-a.X)/length, (b.Y-a.Y)/length, camera, dim)
	}
}

// DrawStops marks the intermediate nodes of a path.
func DrawStops(gtx layout.Context, points []core.Pos, camera *interact.Camera, col color.NRGBA) {
	for _, p := range points {
		x, y := camera.WorldToScreen(p.X, p.Y)
		drawFilledCircle(gtx, x, y, 3, col)
	}
}

func drawArrow(gtx layout.Context, x, y, dirX, dirY float64, camera *interact.Camera, col color.NRGBA) {
	sx, sy := camera.WorldToScreen(x, y)
	const size = 6

	tipX := sx + float32(dirX)*size
	tipY := sy + float32(dirY)*size
	perpX := -float32(dirY) * size * 0.5
	perpY := float32(dirX) * size * 0.5
	baseX := sx - float32(dirX)*size*0.3
	baseY := sy - float32(dirY)*size*0.3

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(tipX, tipY))
	path.LineTo(f32.Pt(baseX+perpX, baseY+perpY))
	path.LineTo(f32.Pt(baseX-perpX, baseY-perpY))
	path.Close()
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

// drawLine fills a quad of the given pixel width between two screen points.
func drawLine(gtx layout.Context, x1, y1, x2, y2, width float32, col color.NRGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length < 0.1 {
		return
	}
	px := -dy / length * width / 2
	py := dx / length * width / 2

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x1+px, y1+py))
	path.LineTo(f32.Pt(x2+px, y2+py))
	path.LineTo(f32.Pt(x2-px, y2-py))
	path.LineTo(f32.Pt(x1-px, y1-py))
	path.Close()
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func drawFilledCircle(gtx layout.Context, cx, cy, radius float32, col color.NRGBA) {
	const segments = 12
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(cx+radius, cy))
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / segments
		path.LineTo(f32.Pt(cx+radius*float32(math.Cos(angle)), cy+radius*float32(math.Sin(angle))))
	}
	path.Close()
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}
