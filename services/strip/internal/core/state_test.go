package core

import "testing"

func TestNewState_Baseline(t *testing.T) {
	s := NewState(ModeFade)
	if s.Mode() != ModeFade {
		t.Fatalf("mode = %v, want fade", s.Mode())
	}
	if !s.Power() || s.Brightness() != 1 {
		t.Fatalf("power=%v brightness=%v, want on/1", s.Power(), s.Brightness())
	}
	if s.Raw() != (RGB{255, 255, 255}) {
		t.Fatalf("raw = %+v, want full white", s.Raw())
	}
	for c := Red; c <= Blue; c++ {
		if s.Scalar(c) != 1 {
			t.Fatalf("scalar[%d] = %v, want 1", c, s.Scalar(c))
		}
	}
	if off, step := s.FadeOffset(); off != 0 || step != fadeInitialStep {
		t.Fatalf("fade = (%d,%d), want (0,%d)", off, step, fadeInitialStep)
	}
	if s.RainbowPhase() != rainbowSentinel {
		t.Fatalf("rainbow phase = %d, want sentinel", s.RainbowPhase())
	}
}

func TestNewState_InvalidModeFallsBack(t *testing.T) {
	if m := NewState(Mode(9)).Mode(); m != ModeRainbow {
		t.Fatalf("mode = %v, want rainbow", m)
	}
}

func TestDerive_PowerOffIsBlack(t *testing.T) {
	s := NewState(ModeStatic)
	tickStatic(s)
	s.togglePower()
	if got := s.Derive(); got != (RGB{}) {
		t.Fatalf("Derive() = %+v, want black", got)
	}
}

func TestDerive_StaticScalars(t *testing.T) {
	s := NewState(ModeStatic)
	s.scalar = [3]float32{0.5, 1, 0}
	tickStatic(s)
	if got, want := s.Derive(), (RGB{127, 255, 0}); got != want {
		t.Fatalf("Derive() = %+v, want %+v", got, want)
	}
}

func TestDerive_BrightnessScalesRaw(t *testing.T) {
	s := NewState(ModeRainbow)
	s.SetRaw(RGB{200, 100, 0})
	s.brightness = 0.5
	if got, want := s.Derive(), (RGB{100, 50, 0}); got != want {
		t.Fatalf("Derive() = %+v, want %+v", got, want)
	}
}

func TestAdjustBrightness_ToleranceAndClamp(t *testing.T) {
	s := NewState(ModeStatic)

	if s.adjustBrightness(0.1) {
		t.Fatal("brightness above 1 accepted")
	}
	if s.Brightness() != 1 {
		t.Fatalf("rejected request changed brightness to %v", s.Brightness())
	}

	for i := 0; i < 10; i++ {
		if !s.adjustBrightness(-0.1) {
			t.Fatalf("step %d rejected", i)
		}
	}
	if s.Brightness() != 0 {
		t.Fatalf("after ten decrements brightness = %v, want 0", s.Brightness())
	}
	if s.adjustBrightness(-0.1) {
		t.Fatal("brightness below 0 accepted")
	}

	// Inside the upper tolerance band: accepted and clamped.
	s.brightness = 0.97
	if !s.adjustBrightness(0.05) || s.Brightness() != 1 {
		t.Fatalf("0.97+0.05: brightness = %v, want clamp to 1", s.Brightness())
	}
}

func TestAdjustScalar_Clamps(t *testing.T) {
	s := NewState(ModeStatic)
	s.adjustScalar(Red, 0.1)
	if s.Scalar(Red) != 1 {
		t.Fatalf("red = %v, want 1", s.Scalar(Red))
	}
	for i := 0; i < 15; i++ {
		s.adjustScalar(Green, -0.1)
	}
	if s.Scalar(Green) != 0 {
		t.Fatalf("green = %v, want 0", s.Scalar(Green))
	}
	s.adjustScalar(Channel(7), 0.1) // ignored
}

func TestReset_Idempotent(t *testing.T) {
	s := NewState(ModeFade)
	s.togglePower()
	s.adjustBrightness(-0.3)
	s.adjustScalar(Blue, -0.5)
	tickFade(s)
	tickRainbow(s)

	s.reset()
	once := *s
	s.reset()
	if *s != once {
		t.Fatalf("second reset changed state:\n%+v\n%+v", once, *s)
	}
	if s.Mode() != ModeFade {
		t.Fatalf("reset changed mode to %v", s.Mode())
	}
}
