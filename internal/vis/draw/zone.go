package draw

import (
	"image/color"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/vis/interact"
)

var (
	ColorZoneActive   = color.NRGBA{R: 220, G: 70, B: 60, A: 90}
	ColorZoneInactive = color.NRGBA{R: 140, G: 140, B: 150, A: 35}
	ColorZoneBorder   = color.NRGBA{R: 220, G: 90, B: 80, A: 200}
)

// DrawZones fills each no-fly zone polygon, brighter while it is active.
func DrawZones(gtx layout.Context, zones []*core.NoFlyZone, active map[int]bool, camera *interact.Camera) {
	for _, z := range zones {
		ring := z.Ring()
		if len(ring) < 3 {
			continue
		}
		var path clip.Path
		path.Begin(gtx.Ops)
		x, y := camera.WorldToScreen(ring[0].X, ring[0].Y)
		path.MoveTo(f32.Pt(x, y))
		for _, p := range ring[1:] {
			x, y := camera.WorldToScreen(p.X, p.Y)
			path.LineTo(f32.Pt(x, y))
		}
		path.Close()

		fill := ColorZoneInactive
		if active[z.ID] {
			fill = ColorZoneActive
		}
		paint.FillShape(gtx.Ops, fill, clip.Outline{Path: path.End()}.Op())

		if active[z.ID] {
			closed := append(append([]core.Pos{}, ring...), ring[0])
			DrawPath(gtx, closed, camera, ColorZoneBorder, 1.5)
		}
	}
}
