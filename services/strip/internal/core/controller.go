package core

import (
	"ledstrip-go/x/conv"
)

// Controller interprets remote codes against a State.
type Controller struct {
	codes *CodeTable
	diag  Diagnostics
}

// NewController uses DefaultCodes when codes is nil. diag may be nil.
func NewController(codes *CodeTable, diag Diagnostics) *Controller {
	if codes == nil {
		codes = DefaultCodes()
	}
	return &Controller{codes: codes, diag: diag}
}

func (c *Controller) Codes() *CodeTable { return c.codes }

// Handle decodes code and applies it. The result reports whether the caller
// must Reset before the next animation tick.
func (c *Controller) Handle(s *State, code uint32) bool {
	cmd := c.codes.Lookup(code)
	if cmd == CmdUnknown {
		c.say("unrecognized " + conv.Hex32(code))
		return false
	}
	return c.Apply(s, cmd)
}

// Apply runs an already decoded command.
func (c *Controller) Apply(s *State, cmd Command) bool {
	switch cmd {
	case CmdPower:
		s.togglePower()
		if s.power {
			c.say("power on")
		} else {
			c.say("power off")
		}
		return false

	case CmdNextMode:
		return c.switchMode(s, s.mode.Next())
	case CmdPrevMode:
		return c.switchMode(s, s.mode.Prev())
	case CmdSelectRainbow:
		return c.switchMode(s, ModeRainbow)
	case CmdSelectFade:
		return c.switchMode(s, ModeFade)
	case CmdSelectStatic:
		return c.switchMode(s, ModeStatic)

	case CmdReset:
		c.say("reset")
		return true

	case CmdBrightnessUp, CmdBrightnessDown:
		delta := float32(adjustStep)
		if cmd == CmdBrightnessDown {
			delta = -delta
		}
		if !s.adjustBrightness(delta) {
			c.say("brightness limit " + pct(s.brightness))
			return false
		}
		c.say("brightness " + pct(s.brightness))
		return false

	case CmdRedUp, CmdRedDown, CmdGreenUp, CmdGreenDown, CmdBlueUp, CmdBlueDown:
		ch := Channel((cmd - CmdRedUp) / 2)
		delta := float32(adjustStep)
		if (cmd-CmdRedUp)%2 == 1 {
			delta = -delta
		}
		s.adjustScalar(ch, delta)
		c.say(channelNames[ch] + " " + pct(s.scalar[ch]))
		return false
	}

	c.say("unrecognized " + cmd.String())
	return false
}

// Reset restores the baseline. Idempotent; the mode is untouched.
func (c *Controller) Reset(s *State) { s.reset() }

func (c *Controller) switchMode(s *State, m Mode) bool {
	s.setMode(m)
	c.say("mode " + m.String())
	return true
}

func (c *Controller) say(msg string) {
	if c.diag != nil {
		c.diag.Diag(msg)
	}
}

var channelNames = [3]string{"red", "green", "blue"}

func pct(f float32) string { return conv.Dec(int64(f*100+0.5)) + "%" }
