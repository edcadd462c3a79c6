// Command striptest is a bring-up check for a freshly wired board. It drives
// the strip through a fixed command script and prints PASS or FAIL per step.
package main

import (
	"context"
	"time"

	"ledstrip-go/bus"
	"ledstrip-go/errcode"
	"ledstrip-go/platform"
	"ledstrip-go/services/strip"
	"ledstrip-go/types"
	"ledstrip-go/x/conv"
)

const (
	requestTimeout = 500 * time.Millisecond
	applyTimeout   = time.Second
	dwell          = 700 * time.Millisecond

	// 0 = loop forever
	cyclesToRun = 0
)

type step struct {
	cmd    string
	repeat int
	check  func(types.StripState) bool
}

var script = []step{
	{cmd: "static", check: rgbIs(255, 255, 255)},
	{cmd: "red-", repeat: 10, check: rgbIs(0, 255, 255)},
	{cmd: "bright-", repeat: 5, check: rgbIs(0, 127, 127)},
	{cmd: "power", check: rgbIs(0, 0, 0)},
	{cmd: "power", check: rgbIs(0, 127, 127)},
	{cmd: "reset", check: rgbIs(255, 255, 255)},
	{cmd: "fade", check: func(s types.StripState) bool { return s.Mode == "fade" && s.BrightnessPct == 100 }},
	{cmd: "next", check: func(s types.StripState) bool { return s.Mode == "static" }},
	{cmd: "rainbow", check: func(s types.StripState) bool { return s.Mode == "rainbow" }},
}

func rgbIs(r, g, b uint8) func(types.StripState) bool {
	return func(s types.StripState) bool { return s.RGB == [3]uint8{r, g, b} }
}

func main() {
	board, err := platform.Setup()
	if err != nil {
		println("[striptest] board setup failed:", err.Error())
		return
	}
	time.Sleep(time.Duration(board.Plan.BootDelayMs) * time.Millisecond)

	ctx := context.Background()
	b := bus.NewBus(8)
	if err := strip.New(board.Output, nil).Start(ctx, b.NewConnection("strip")); err != nil {
		println("[striptest] strip start failed:", err.Error())
		return
	}
	ui := b.NewConnection("ui")

	for cycle := 1; cyclesToRun == 0 || cycle <= cyclesToRun; cycle++ {
		println("=== striptest: cycle", cycle, "===")
		failed := 0
		for _, st := range script {
			if err := run(ctx, ui, st); err != nil {
				failed++
				println("[FAIL]", st.cmd, err.Error())
			} else {
				println("[PASS]", st.cmd)
			}
			time.Sleep(dwell)
		}
		if failed == 0 {
			println("[striptest] cycle", cycle, "passed")
		} else {
			println("[striptest] cycle", cycle, "failed steps:", failed)
		}
	}
}

// run sends the step's command and waits until the loop has applied it.
func run(ctx context.Context, ui *bus.Connection, st step) error {
	n := st.repeat
	if n == 0 {
		n = 1
	}
	var last types.StripState
	for i := 0; i < n; i++ {
		before, err := read(ctx, ui)
		if err != nil {
			return err
		}
		if _, err := request(ctx, ui, strip.VerbCommand, types.StripCommand{Name: st.cmd}); err != nil {
			return err
		}
		if last, err = waitApplied(ctx, ui, before.Commands); err != nil {
			return err
		}
	}
	if !st.check(last) {
		return &errcode.E{C: errcode.Error, Op: st.cmd, Msg: "unexpected " + last.String()}
	}
	return nil
}

func waitApplied(ctx context.Context, ui *bus.Connection, prev uint32) (types.StripState, error) {
	deadline := time.Now().Add(applyTimeout)
	for time.Now().Before(deadline) {
		s, err := read(ctx, ui)
		if err != nil {
			return s, err
		}
		// One more tick so the derived output reflects the command.
		if s.Commands > prev {
			time.Sleep(120 * time.Millisecond)
			return read(ctx, ui)
		}
		time.Sleep(10 * time.Millisecond)
	}
	return types.StripState{}, &errcode.E{C: errcode.Timeout, Op: "apply", Msg: "commands still " + conv.Dec(int64(prev))}
}

func read(ctx context.Context, ui *bus.Connection) (types.StripState, error) {
	p, err := request(ctx, ui, strip.VerbRead, nil)
	if err != nil {
		return types.StripState{}, err
	}
	s, ok := p.(types.StripState)
	if !ok {
		return s, errcode.InvalidPayload
	}
	return s, nil
}

func request(ctx context.Context, ui *bus.Connection, verb string, payload any) (any, error) {
	rctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	rep, err := ui.RequestWait(rctx, ui.NewMessage(strip.TopicControl(verb), payload, false))
	if err != nil {
		return nil, errcode.Wrap(errcode.Timeout, verb, err)
	}
	if er, ok := rep.Payload.(types.ErrorReply); ok {
		return nil, errcode.Code(er.Error)
	}
	return rep.Payload, nil
}
