package platform

// PWMChannel is one PWM output with a full-scale duty of Top.
type PWMChannel interface {
	Set(duty uint32)
	Top() uint32
}

// RGBPWM maps 8-bit channel values onto three PWM outputs.
type RGBPWM struct {
	ch        [3]PWMChannel
	activeLow bool
}

func NewRGBPWM(r, g, b PWMChannel, activeLow bool) *RGBPWM {
	return &RGBPWM{ch: [3]PWMChannel{r, g, b}, activeLow: activeLow}
}

func (p *RGBPWM) Write(r, g, b uint8) {
	for i, v := range [3]uint8{r, g, b} {
		if c := p.ch[i]; c != nil {
			c.Set(Duty(v, c.Top(), p.activeLow))
		}
	}
}

// Duty scales v from 0..255 to 0..top, inverted when the output sinks.
func Duty(v uint8, top uint32, activeLow bool) uint32 {
	d := uint32(uint64(v) * uint64(top) / 255)
	if activeLow {
		return top - d
	}
	return d
}
