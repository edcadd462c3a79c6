//go:build rp2040

package platform

import (
	"context"
	"image/color"
	"io"
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/irremote"
	"tinygo.org/x/drivers/ws2812"

	"ledstrip-go/errcode"
	"ledstrip-go/platform/boards"
	"ledstrip-go/platform/edge"
	"ledstrip-go/services/console"
	"ledstrip-go/x/timex"
)

// Setup configures the selected board plan.
func Setup() (*Board, error) {
	plan := boards.Selected
	b := &Board{Plan: plan}

	switch plan.Output {
	case boards.OutputWS2812:
		pin := machine.Pin(plan.DataPin)
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		b.Output = &pixelOutput{dev: ws2812.New(pin), buf: make([]color.RGBA, plan.NumLEDs)}
	default:
		out, err := setupPWM(plan)
		if err != nil {
			return nil, err
		}
		b.Output = out
	}

	ir := irremote.NewReceiver(machine.Pin(plan.IRPin))
	ir.Configure()
	b.ir = func(in Inputs) {
		feed := remoteFeed{latch: in.Latch}
		ir.SetCommandHandler(func(d irremote.Data) {
			feed.frame(d.Code, d.Flags&irremote.DataFlagIsRepeat != 0)
		})
	}

	if plan.ButtonPin >= 0 {
		p := &rp2Pin{p: machine.Pin(plan.ButtonPin)}
		mode := machine.PinInputPulldown
		if plan.ButtonActiveLow {
			mode = machine.PinInputPullup
		}
		p.p.Configure(machine.PinConfig{Mode: mode})
		b.button = p
	}

	console.UARTDial = dialUART(plan)
	return b, nil
}

// -----------------------------------------------------------------------------
// PWM
// -----------------------------------------------------------------------------

// Local interface to avoid depending on an unexported concrete type in machine.
type pwmCtrl interface {
	Configure(cfg machine.PWMConfig) error
	Top() uint32
	Set(channel uint8, value uint32)
	Channel(pin machine.Pin) (uint8, error)
}

// Select controller handle for a given slice number (0..7).
func pwmGroupBySlice(slice uint8) pwmCtrl {
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

type pwmChannel struct {
	ctrl pwmCtrl
	ch   uint8
}

func (c pwmChannel) Set(duty uint32) { c.ctrl.Set(c.ch, duty) }
func (c pwmChannel) Top() uint32     { return c.ctrl.Top() }

// setupPWM configures each slice once; pins sharing a slice share its period.
func setupPWM(plan boards.Plan) (*RGBPWM, error) {
	period := timex.PeriodFromHz(plan.PWMFreqHz)
	configured := map[uint8]bool{}
	var chans [3]PWMChannel
	for i, n := range plan.PWMPins {
		pin := machine.Pin(n)
		slice, err := machine.PWMPeripheral(pin)
		if err != nil {
			return nil, errcode.Wrap(errcode.UnknownPin, "pwm", err)
		}
		ctrl := pwmGroupBySlice(slice)
		if !configured[slice] {
			if err := ctrl.Configure(machine.PWMConfig{Period: period}); err != nil {
				return nil, errcode.Wrap(errcode.Error, "pwm", err)
			}
			configured[slice] = true
		}
		ch, err := ctrl.Channel(pin)
		if err != nil {
			return nil, errcode.Wrap(errcode.PinInUse, "pwm", err)
		}
		chans[i] = pwmChannel{ctrl: ctrl, ch: ch}
	}
	return NewRGBPWM(chans[0], chans[1], chans[2], plan.ActiveLow), nil
}

// -----------------------------------------------------------------------------
// WS2812
// -----------------------------------------------------------------------------

type pixelOutput struct {
	dev ws2812.Device
	buf []color.RGBA
}

func (o *pixelOutput) Write(r, g, b uint8) {
	c := color.RGBA{R: r, G: g, B: b, A: 255}
	for i := range o.buf {
		o.buf[i] = c
	}
	_ = o.dev.WriteColors(o.buf)
}

// -----------------------------------------------------------------------------
// GPIO
// -----------------------------------------------------------------------------

type rp2Pin struct{ p machine.Pin }

func (r *rp2Pin) Get() bool { return r.p.Get() }

func (r *rp2Pin) SetIRQ(e edge.Edge, handler func()) error {
	var ch machine.PinChange
	switch e {
	case edge.Rising:
		ch = machine.PinRising
	case edge.Falling:
		ch = machine.PinFalling
	default:
		ch = machine.PinToggle
	}
	return r.p.SetInterrupt(ch, func(machine.Pin) { handler() })
}

func (r *rp2Pin) ClearIRQ() error { return r.p.SetInterrupt(0, nil) }

// -----------------------------------------------------------------------------
// Console UART
// -----------------------------------------------------------------------------

func dialUART(plan boards.Plan) func(context.Context, console.UARTConfig) (io.ReadWriteCloser, error) {
	return func(ctx context.Context, u console.UARTConfig) (io.ReadWriteCloser, error) {
		var hw *uartx.UART
		switch plan.UART {
		case "uart0":
			hw = uartx.UART0
		case "uart1":
			hw = uartx.UART1
		default:
			return nil, errcode.Unsupported
		}
		baud := plan.UARTBaud
		if u.Baud > 0 {
			baud = uint32(u.Baud)
		}
		tx, rx := plan.UARTTxPin, plan.UARTRxPin
		if u.TxPin != 0 || u.RxPin != 0 {
			tx, rx = u.TxPin, u.RxPin
		}
		if err := hw.Configure(uartx.UARTConfig{
			BaudRate: baud,
			TX:       machine.Pin(tx),
			RX:       machine.Pin(rx),
		}); err != nil {
			return nil, errcode.Wrap(errcode.LinkDown, "uart", err)
		}
		lctx, cancel := context.WithCancel(ctx)
		return &uartLink{u: hw, ctx: lctx, cancel: cancel}, nil
	}
}

// uartLink adapts uartx to io.ReadWriteCloser. Close ends a pending read.
type uartLink struct {
	u      *uartx.UART
	ctx    context.Context
	cancel context.CancelFunc
}

func (l *uartLink) Read(p []byte) (int, error)  { return l.u.RecvSomeContext(l.ctx, p) }
func (l *uartLink) Write(p []byte) (int, error) { return l.u.Write(p) }
func (l *uartLink) Close() error                { l.cancel(); return nil }
