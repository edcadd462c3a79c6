package mathx

// ScaleU8 returns v*f truncated toward zero and clamped to [0, 255].
// NaN factors yield 0.
func ScaleU8(v uint8, f float32) uint8 {
	if !(f > 0) {
		return 0
	}
	p := float32(v) * f
	if p >= 255 {
		return 255
	}
	return uint8(p)
}

// Snap rounds f to the nearest 1/steps. It keeps repeated +/-0.1 adjustments
// on the decimal grid instead of accumulating float error.
func Snap(f float32, steps int) float32 {
	if steps <= 0 {
		return f
	}
	s := float32(steps)
	x := f * s
	if x < 0 {
		return float32(int32(x-0.5)) / s
	}
	return float32(int32(x+0.5)) / s
}
