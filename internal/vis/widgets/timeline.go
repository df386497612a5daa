package widgets

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/drone-route-planner/internal/scenario"
	"github.com/elektrokombinacija/drone-route-planner/internal/vis/state"
)

const (
	timelineHeight = 60
	timelineMargin = 20
)

// Timeline is a clock scrubber with zone activity bands.
type Timeline struct {
	state    *state.State
	dragging bool
}

// NewTimeline creates a new timeline widget.
func NewTimeline(st *state.State) *Timeline {
	return &Timeline{state: st}
}

// Layout renders the timeline.
func (t *Timeline) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	width := gtx.Constraints.Max.X
	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255},
		clip.Rect(image.Rect(0, 0, width, timelineHeight)).Op())

	trackWidth := width - 2*timelineMargin
	t.handlePointerEvents(gtx, trackWidth)

	pb := t.state.Playback
	trackY := timelineHeight / 2
	const trackHeight = 6
	paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255},
		clip.Rect(image.Rect(timelineMargin, trackY-trackHeight/2, timelineMargin+trackWidth, trackY+trackHeight/2)).Op())

	// Zone activity bands above the track.
	if pb.Duration() > 0 {
		for _, z := range t.state.Instance.Zones {
			from := max(z.Active.Start, pb.Start)
			to := min(z.Active.End, pb.End)
			if to <= from {
				continue
			}
			x0 := timelineMargin + int(float64(trackWidth)*(from-pb.Start)/pb.Duration())
			x1 := timelineMargin + int(float64(trackWidth)*(to-pb.Start)/pb.Duration())
			paint.FillShape(gtx.Ops, color.NRGBA{R: 220, G: 70, B: 60, A: 140},
				clip.Rect(image.Rect(x0, trackY-trackHeight/2-4, x1, trackY-trackHeight/2-1)).Op())
		}
	}

	fillWidth := int(float64(trackWidth) * pb.Progress())
	if fillWidth > 0 {
		paint.FillShape(gtx.Ops, color.NRGBA{R: 100, G: 180, B: 255, A: 255},
			clip.Rect(image.Rect(timelineMargin, trackY-trackHeight/2, timelineMargin+fillWidth, trackY+trackHeight/2)).Op())
	}

	headX := timelineMargin + fillWidth
	const headSize = 12
	paint.FillShape(gtx.Ops, color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		clip.Rect(image.Rect(headX-headSize/2, trackY-headSize/2, headX+headSize/2, trackY+headSize/2)).Op())

	t.drawLabels(gtx, th)

	return layout.Dimensions{Size: image.Point{X: width, Y: timelineHeight}}
}

func (t *Timeline) drawLabels(gtx layout.Context, th *material.Theme) {
	pb := t.state.Playback
	label := func(text string, col color.NRGBA) layout.Widget {
		l := material.Label(th, 12, text)
		l.Color = col
		return l.Layout
	}

	layout.Inset{Top: unit.Dp(4), Left: unit.Dp(timelineMargin), Right: unit.Dp(timelineMargin)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
			layout.Rigid(label(scenario.FormatClock(pb.Current), color.NRGBA{R: 200, G: 200, B: 200, A: 255})),
			layout.Rigid(label(formatSpeed(pb.Speed), color.NRGBA{R: 150, G: 180, B: 200, A: 255})),
			layout.Rigid(label(scenario.FormatClock(pb.End), color.NRGBA{R: 150, G: 150, B: 150, A: 255})),
		)
	})
}

func (t *Timeline) handlePointerEvents(gtx layout.Context, trackWidth int) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, timelineHeight)).Push(gtx.Ops)
	event.Op(gtx.Ops, t)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: t,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release,
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch pe.Kind {
		case pointer.Press:
			t.dragging = true
			t.seek(pe.Position.X, trackWidth)
		case pointer.Drag:
			if t.dragging {
				t.seek(pe.Position.X, trackWidth)
			}
		case pointer.Release:
			t.dragging = false
		}
	}
}

func (t *Timeline) seek(screenX float32, trackWidth int) {
	if trackWidth <= 0 {
		return
	}
	t.state.Playback.SeekProgress((float64(screenX) - timelineMargin) / float64(trackWidth))
}
