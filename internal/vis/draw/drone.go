package draw

import (
	"image/color"
	"math"

	"gioui.org/layout"

	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/vis/interact"
)

var dronePalette = []color.NRGBA{
	{R: 100, G: 200, B: 255, A: 255},
	{R: 255, G: 150, B: 100, A: 255},
	{R: 200, G: 100, B: 255, A: 255},
	{R: 120, G: 220, B: 120, A: 255},
	{R: 255, G: 210, B: 90, A: 255},
	{R: 240, G: 110, B: 170, A: 255},
}

// DroneColor returns a stable colour for a drone id.
func DroneColor(id core.DroneID) color.NRGBA {
	return dronePalette[(int(id)%len(dronePalette)+len(dronePalette))%len(dronePalette)]
}

// DrawDrone draws a quadcopter marker at pos.
func DrawDrone(gtx layout.Context, pos core.Pos, id core.DroneID, camera *interact.Camera, selected bool) {
	cx, cy := camera.WorldToScreen(pos.X, pos.Y)
	size := float32(14)
	col := DroneColor(id)
	if selected {
		col = ColorSelected
		DrawCircleOutline(gtx, cx, cy, size*1.4, col, 2)
	}

	armLen := size * 0.7
	rotorR := size * 0.3
	for _, angle := range []float64{45, 135, 225, 315} {
		rad := angle * math.Pi / 180
		dx := float32(math.Cos(rad)) * armLen
		dy := float32(math.Sin(rad)) * armLen
		drawLine(gtx, cx, cy, cx+dx, cy+dy, 2, col)
		drawFilledCircle(gtx, cx+dx, cy+dy, rotorR, col)
	}
	drawFilledCircle(gtx, cx, cy, size*0.25, col)
}

// DrawDrones draws every drone at its current position.
func DrawDrones(gtx layout.Context, drones []*core.Drone, positions map[core.DroneID]core.Pos, camera *interact.Camera, selected core.DroneID) {
	for _, d := range drones {
		if pos, ok := positions[d.ID]; ok {
			DrawDrone(gtx, pos, d.ID, camera, d.ID == selected)
		}
	}
}
