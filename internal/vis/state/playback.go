package state

import "time"

// Playback speed limits in plan minutes per wall-clock second.
const (
	MinSpeed     = 0.25
	MaxSpeed     = 120
	DefaultSpeed = 5
)

// PlaybackState walks the plan clock between Start and End.
type PlaybackState struct {
	Start   float64 // plan minutes
	End     float64
	Current float64
	Speed   float64
	Playing bool

	lastUpdate time.Time
	now        func() time.Time
}

// NewPlaybackState creates a paused playback over [start, end].
func NewPlaybackState(start, end float64) *PlaybackState {
	if end < start {
		end = start
	}
	return &PlaybackState{
		Start:   start,
		End:     end,
		Current: start,
		Speed:   DefaultSpeed,
		now:     time.Now,
	}
}

// Duration is the length of the playback span in minutes.
func (p *PlaybackState) Duration() float64 { return p.End - p.Start }

// TogglePlay starts or pauses playback, rewinding first when at the end.
func (p *PlaybackState) TogglePlay() {
	p.Playing = !p.Playing
	if p.Playing {
		p.lastUpdate = p.now()
		if p.Current >= p.End {
			p.Current = p.Start
		}
	}
}

// Pause stops playback.
func (p *PlaybackState) Pause() { p.Playing = false }

// Reset rewinds to the start.
func (p *PlaybackState) Reset() {
	p.Current = p.Start
	p.Playing = false
}

// Advance moves the clock by the wall time elapsed since the last call.
func (p *PlaybackState) Advance() {
	if !p.Playing {
		return
	}
	now := p.now()
	elapsed := now.Sub(p.lastUpdate).Seconds()
	p.lastUpdate = now

	p.Current += elapsed * p.Speed
	if p.Current >= p.End {
		p.Current = p.End
		p.Playing = false
	}
}

// SetTime moves the clock to t, clamped to the span.
func (p *PlaybackState) SetTime(t float64) {
	p.Current = min(max(t, p.Start), p.End)
}

func (p *PlaybackState) step() float64 {
	return max(p.Duration()/100, 0.1)
}

// StepForward pauses and moves one percent of the span ahead.
func (p *PlaybackState) StepForward() {
	p.Pause()
	p.SetTime(p.Current + p.step())
}

// StepBack pauses and moves one percent of the span back.
func (p *PlaybackState) StepBack() {
	p.Pause()
	p.SetTime(p.Current - p.step())
}

// SetSpeed sets the playback rate within [MinSpeed, MaxSpeed].
func (p *PlaybackState) SetSpeed(speed float64) {
	p.Speed = min(max(speed, MinSpeed), MaxSpeed)
}

// Progress returns the position within the span as 0..1.
func (p *PlaybackState) Progress() float64 {
	if p.Duration() <= 0 {
		return 0
	}
	return (p.Current - p.Start) / p.Duration()
}

// SeekProgress moves the clock to fraction f of the span.
func (p *PlaybackState) SeekProgress(f float64) {
	f = min(max(f, 0), 1)
	p.SetTime(p.Start + f*p.Duration())
}
