// Package widgets provides Gio UI widgets for the visualiser.
package widgets

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/vis/draw"
	"github.com/elektrokombinacija/drone-route-planner/internal/vis/interact"
	"github.com/elektrokombinacija/drone-route-planner/internal/vis/state"
)

// Workspace is the main 2D map.
type Workspace struct {
	state  *state.State
	camera *interact.Camera
}

// NewWorkspace creates a new workspace widget.
func NewWorkspace(st *state.State, camera *interact.Camera) *Workspace {
	return &Workspace{state: st, camera: camera}
}

// Layout renders zones, the current view's overlay and the drones.
func (w *Workspace) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()
	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	w.camera.EnsureFitted(float32(bounds.X), float32(bounds.Y))
	w.handlePointerEvents(gtx)

	st := w.state
	inst := st.Instance
	draw.DrawGrid(gtx, w.camera, 50, draw.ColorGrid)
	draw.DrawZones(gtx, inst.Zones, st.ZoneActive(), w.camera)

	switch st.View {
	case state.ViewGraph:
		draw.DrawGraph(gtx, st.Graph(), w.camera)
	case state.ViewPaths:
		for _, line := range st.Paths() {
			col := draw.DroneColor(line.Drone)
			draw.DrawPath(gtx, line.Points, w.camera, col, 2)
			draw.DrawStops(gtx, line.Points, w.camera, col)
		}
	default:
		for _, d := range inst.Drones {
			col := draw.DroneColor(d.ID)
			draw.DrawRoute(gtx, st.Route(d.ID), w.camera, col)
			if trail := st.Trail(d.ID); len(trail) > 1 {
				draw.DrawPathTrail(gtx, trail, w.camera, col, 3)
			}
		}
	}

	done, missed := st.Delivered(), st.Missed()
	draw.DrawDeliveries(gtx, inst.Deliveries, func(id core.DeliveryID) draw.DeliveryStatus {
		switch {
		case done[id]:
			return draw.StatusDone
		case missed[id]:
			return draw.StatusMissed
		}
		return draw.StatusPending
	}, w.camera)
	draw.DrawStarts(gtx, inst.Drones, w.camera)
	draw.DrawDrones(gtx, inst.Drones, st.CurrentPositions(), w.camera, st.Selected)

	return layout.Dimensions{Size: bounds}
}

func (w *Workspace) handlePointerEvents(gtx layout.Context) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  w,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -10, Max: 10},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		w.camera.HandleEvent(pe)
		if pe.Kind == pointer.Press && pe.Buttons.Contain(pointer.ButtonPrimary) {
			w.handleClick(pe.Position.X, pe.Position.Y)
		}
	}
}

// handleClick selects the drone under the cursor, or clears the selection.
func (w *Workspace) handleClick(screenX, screenY float32) {
	positions := w.state.CurrentPositions()
	for _, d := range w.state.Instance.Drones {
		if draw.HitTest(screenX, screenY, positions[d.ID], w.camera, 15) {
			w.state.SelectDrone(d.ID)
			return
		}
	}
	w.state.Selected = 0
}
