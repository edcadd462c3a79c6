package core

import (
	"time"

	"ledstrip-go/x/mathx"
)

// Default pacing between ticks, per mode.
const (
	DefaultStaticPace  = 100 * time.Millisecond
	DefaultFadePace    = 40 * time.Millisecond
	DefaultRainbowPace = 60 * time.Millisecond

	minPace = 5 * time.Millisecond
)

// Engine runs one animation tick for the active mode.
type Engine struct {
	pace [numModes]time.Duration
}

func NewEngine() *Engine {
	e := &Engine{}
	e.pace[ModeRainbow] = DefaultRainbowPace
	e.pace[ModeFade] = DefaultFadePace
	e.pace[ModeStatic] = DefaultStaticPace
	return e
}

// Pacing is the delay the host should wait after a tick in mode m.
func (e *Engine) Pacing(m Mode) time.Duration {
	if !m.Valid() {
		return DefaultStaticPace
	}
	return e.pace[m]
}

// SetPacing overrides the delay for m. Zero keeps the current value.
func (e *Engine) SetPacing(m Mode, d time.Duration) {
	if !m.Valid() || d == 0 {
		return
	}
	e.pace[m] = max(d, minPace)
}

// Play advances the active mode by exactly one tick and updates the raw target.
func (e *Engine) Play(s *State) {
	switch s.mode {
	case ModeFade:
		tickFade(s)
	case ModeRainbow:
		tickRainbow(s)
	default:
		tickStatic(s)
	}
}

func tickStatic(s *State) {
	s.SetRaw(scaled(s, 255))
}

// tickFade moves the offset one step along a triangle wave over [0, 255].
func tickFade(s *State) {
	f := &s.fade
	switch next := f.offset + f.step; {
	case next > 255:
		f.offset = 255
		f.step = -f.step
	case next < 0:
		f.offset = 0
		f.step = -f.step
	default:
		f.offset = next
	}
	s.SetRaw(scaled(s, uint8(255-f.offset)))
}

// tickRainbow rotates hue by moving rainbowStep between two channels.
// Channels are clamped after every step so no value leaves [0, 255].
func tickRainbow(s *State) {
	r := &s.rainbow
	switch r.phase {
	case 0:
		r.step(Red, Green)
		if r.raw[Green] >= 255 {
			r.phase = 1
		}
	case 1:
		r.step(Green, Blue)
		if r.raw[Blue] >= 255 {
			r.phase = 2
		}
	case 2:
		r.step(Blue, Red)
		if r.raw[Red] >= 255 {
			r.phase = 0
		}
	default:
		r.raw = [3]int16{255, 0, 0}
		r.phase = 0
	}
	s.SetRaw(RGB{uint8(r.raw[Red]), uint8(r.raw[Green]), uint8(r.raw[Blue])})
}

func (r *rainbowPhase) step(down, up Channel) {
	r.raw[down] = mathx.Clamp(r.raw[down]-rainbowStep, 0, 255)
	r.raw[up] = mathx.Clamp(r.raw[up]+rainbowStep, 0, 255)
}

func scaled(s *State, v uint8) RGB {
	return RGB{
		R: mathx.ScaleU8(v, s.scalar[Red]),
		G: mathx.ScaleU8(v, s.scalar[Green]),
		B: mathx.ScaleU8(v, s.scalar[Blue]),
	}
}
