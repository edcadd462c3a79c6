package core

import "ledstrip-go/x/mathx"

// RGB is one 8-bit triple, red first.
type RGB struct{ R, G, B uint8 }

// Channel indexes the per-channel arrays in State.
type Channel uint8

const (
	Red Channel = iota
	Green
	Blue
)

const (
	adjustStep = 0.1

	// Brightness requests landing outside [-brightnessLowTol, 1+brightnessHighTol]
	// are ignored; anything inside is clamped to [0, 1].
	brightnessLowTol  = 0.01
	brightnessHighTol = 0.05

	// Scalars and brightness live on a 1/100 grid.
	snapSteps = 100

	fadeInitialStep = 13
	rainbowStep     = 5
	rainbowSentinel = -1
)

type fadePhase struct {
	offset int16 // 0..255
	step   int16 // +/-fadeInitialStep
}

type rainbowPhase struct {
	phase int8     // rainbowSentinel, 0, 1, 2
	raw   [3]int16 // 0..255 after every step
}

// State is the single owned aggregate of everything the loop mutates.
// It is not safe for concurrent use; one goroutine owns it.
type State struct {
	mode       Mode
	power      bool
	brightness float32
	scalar     [3]float32

	raw     RGB // target before brightness/power, written by animation ticks
	fade    fadePhase
	rainbow rainbowPhase
}

// NewState returns a baseline state in mode m.
func NewState(m Mode) *State {
	s := &State{}
	s.reset()
	if m.Valid() {
		s.mode = m
	}
	return s
}

// reset restores the baseline; the mode is kept.
func (s *State) reset() {
	s.raw = RGB{255, 255, 255}
	s.scalar = [3]float32{1, 1, 1}
	s.brightness = 1
	s.power = true
	s.fade = fadePhase{offset: 0, step: fadeInitialStep}
	s.rainbow = rainbowPhase{phase: rainbowSentinel}
}

func (s *State) Mode() Mode                 { return s.mode }
func (s *State) Power() bool                { return s.power }
func (s *State) Brightness() float32        { return s.brightness }
func (s *State) Scalar(c Channel) float32   { return s.scalar[c] }
func (s *State) Raw() RGB                   { return s.raw }
func (s *State) FadeOffset() (int16, int16) { return s.fade.offset, s.fade.step }
func (s *State) RainbowPhase() int8         { return s.rainbow.phase }

// SetRaw is the only writer of the raw target.
func (s *State) SetRaw(c RGB) { s.raw = c }

func (s *State) setMode(m Mode) { s.mode = m }

func (s *State) togglePower() { s.power = !s.power }

// adjustBrightness applies delta under the tolerance rule and reports
// whether the request was accepted.
func (s *State) adjustBrightness(delta float32) bool {
	next := mathx.Snap(s.brightness+delta, snapSteps)
	if !mathx.Between(next, -brightnessLowTol, 1+brightnessHighTol) {
		return false
	}
	s.brightness = mathx.Clamp[float32](next, 0, 1)
	return true
}

// adjustScalar always lands in [0, 1].
func (s *State) adjustScalar(c Channel, delta float32) {
	if c > Blue {
		return
	}
	next := mathx.Snap(s.scalar[c]+delta, snapSteps)
	s.scalar[c] = mathx.Clamp[float32](next, 0, 1)
}

// Derive computes the physical output from the raw target, the brightness
// limit and the power flag. Truncates toward zero.
func (s *State) Derive() RGB {
	if !s.power {
		return RGB{}
	}
	b := s.brightness
	return RGB{
		R: mathx.ScaleU8(s.raw.R, b),
		G: mathx.ScaleU8(s.raw.G, b),
		B: mathx.ScaleU8(s.raw.B, b),
	}
}
