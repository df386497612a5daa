// Package vis implements a Gio viewer for drone delivery plans.
package vis

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/drone-route-planner/internal/algo"
	"github.com/elektrokombinacija/drone-route-planner/internal/core"
	"github.com/elektrokombinacija/drone-route-planner/internal/geo"
	"github.com/elektrokombinacija/drone-route-planner/internal/planner"
	"github.com/elektrokombinacija/drone-route-planner/internal/scenario"
	"github.com/elektrokombinacija/drone-route-planner/internal/vis/draw"
	"github.com/elektrokombinacija/drone-route-planner/internal/vis/interact"
	"github.com/elektrokombinacija/drone-route-planner/internal/vis/state"
	"github.com/elektrokombinacija/drone-route-planner/internal/vis/widgets"
)

// App is the viewer application.
type App struct {
	state     *state.State
	theme     *material.Theme
	workspace *widgets.Workspace
	timeline  *widgets.Timeline
	toolbar   *widgets.Toolbar
	camera    *interact.Camera
}

// NewApp creates a viewer for inst and the planner report rep.
func NewApp(inst *core.Instance, rep *planner.Report, mode geo.Mode) *App {
	st := state.NewState(inst, rep, mode)
	camera := interact.NewCamera(inst.Bounds())

	return &App{
		state:     st,
		theme:     material.NewTheme(),
		workspace: widgets.NewWorkspace(st, camera),
		timeline:  widgets.NewTimeline(st),
		toolbar:   widgets.NewToolbar(st),
		camera:    camera,
	}
}

// Run drives the window event loop until the window is closed.
func (a *App) Run(w *app.Window) error {
	var ops op.Ops
	tag := new(int)

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag, Optional: key.ModShift})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKeyEvent(ke)
				}
			}
			event.Op(gtx.Ops, tag)

			a.layout(gtx)
			e.Frame(gtx.Ops)

			if a.state.Playback.Playing {
				a.state.Playback.Advance()
				w.Invalidate()
			}
		}
	}
}

func (a *App) handleKeyEvent(e key.Event) {
	pb := a.state.Playback
	switch e.Name {
	case key.NameSpace:
		pb.TogglePlay()
	case key.NameLeftArrow:
		pb.StepBack()
	case key.NameRightArrow:
		pb.StepForward()
	case key.NameHome:
		pb.Reset()
	case key.NameEscape:
		a.state.Selected = 0
	case "R":
		a.camera.Reset()
	case "V":
		a.state.NextView()
	case "+", "=":
		pb.SetSpeed(pb.Speed * 2)
	case "-":
		pb.SetSpeed(pb.Speed / 2)
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, color.NRGBA{R: 30, G: 30, B: 35, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.toolbar.Layout(gtx, a.theme)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return a.workspace.Layout(gtx, a.theme)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					if a.state.Selected == 0 {
						return layout.Dimensions{}
					}
					return a.layoutDronePanel(gtx)
				}),
			)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.timeline.Layout(gtx, a.theme)
		}),
	)
}

// layoutDronePanel lists the selected drone's legs in the active plan.
func (a *App) layoutDronePanel(gtx layout.Context) layout.Dimensions {
	const width = 300
	gtx.Constraints.Min.X, gtx.Constraints.Max.X = width, width
	paint.FillShape(gtx.Ops, color.NRGBA{R: 40, G: 40, B: 45, A: 255},
		clip.Rect(image.Rect(0, 0, width, gtx.Constraints.Max.Y)).Op())

	lines := droneLines(a.state)
	children := make([]layout.FlexChild, 0, len(lines))
	for i, text := range lines {
		text := text
		size := unit.Sp(12)
		col := color.NRGBA{R: 200, G: 200, B: 200, A: 255}
		if i == 0 {
			size = 14
			col = draw.DroneColor(a.state.Selected)
		}
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			l := material.Label(a.theme, size, text)
			l.Color = col
			return layout.Inset{Bottom: unit.Dp(2)}.Layout(gtx, l.Layout)
		}))
	}

	layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
	})
	return layout.Dimensions{Size: image.Point{X: width, Y: gtx.Constraints.Max.Y}}
}

// droneLines describes the selected drone and its legs.
func droneLines(st *state.State) []string {
	d, err := st.Instance.DroneByID(st.Selected)
	if err != nil {
		return nil
	}
	lines := []string{
		fmt.Sprintf("Drone %d", d.ID),
		fmt.Sprintf("payload %.1f  battery %.0f  speed %.1f", d.MaxWeight, d.Battery, d.Speed),
	}
	plan := st.ActivePlan()
	if plan == nil {
		return append(lines, "no plan in this view")
	}
	for _, tl := range plan.Timelines {
		if tl.Drone != d.ID {
			continue
		}
		if len(tl.Legs) == 0 {
			lines = append(lines, "idle")
		}
		for _, l := range tl.Legs {
			line := fmt.Sprintf("#%d  %s-%s  %.0f%%", l.Delivery,
				scenario.FormatClock(l.Depart), scenario.FormatClock(l.Arrive), 100*l.BatteryAfter/d.Battery)
			if l.Recharged {
				line += "  charged"
			}
			if l.Violation != algo.ViolationNone {
				line += "  " + l.Violation.String()
			}
			lines = append(lines, line)
		}
	}
	return lines
}
